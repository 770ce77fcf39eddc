package backtest

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/backtest-engine/src/models"
)

const walkForwardMinBars = 100
const minInSampleBars = 30
const minOutOfSampleBars = 10

// RunWalkForward splits the series into rolling windows, runs the full engine
// independently on each in-sample and out-of-sample slice and reports the
// efficiency ratio of aggregate out-of-sample to in-sample profit. Slices are
// treated as independent series: indicator warm-up restarts at each boundary.
func RunWalkForward(bars []models.Bar, graph *models.StrategyGraph, cfg *models.BacktestConfig, windowCount int, inSampleRatio float64) (*models.WalkForwardResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("RunWalkForward: invalid config: %w", err)
	}

	if windowCount <= 0 {
		return nil, fmt.Errorf("RunWalkForward: %w", models.InvalidWindowCountErr)
	}

	if inSampleRatio <= 0 || inSampleRatio >= 1 {
		return nil, fmt.Errorf("RunWalkForward: %w", models.InvalidInSampleRatioErr)
	}

	if len(bars) < walkForwardMinBars {
		return nil, fmt.Errorf("RunWalkForward: have %d bars, need at least %d: %w", len(bars), walkForwardMinBars, models.NotEnoughBarsErr)
	}

	// Consecutive windows advance by the out-of-sample portion so every
	// out-of-sample slice is evaluated exactly once.
	windowSize := windowSizeFor(len(bars), windowCount, inSampleRatio)
	inSampleSize := int(float64(windowSize) * inSampleRatio)
	outOfSampleSize := windowSize - inSampleSize

	result := &models.WalkForwardResult{}

	for w := 0; w < windowCount; w++ {
		startBar := w * outOfSampleSize
		endBar := startBar + windowSize
		if endBar > len(bars) {
			break
		}

		inSample := bars[startBar : startBar+inSampleSize]
		outOfSample := bars[startBar+inSampleSize : endBar]

		if len(inSample) < minInSampleBars || len(outOfSample) < minOutOfSampleBars {
			log.Warnf("walk-forward window %d skipped: %d in-sample / %d out-of-sample bars below minimum", w, len(inSample), len(outOfSample))
			continue
		}

		inResult, err := RunBacktest(inSample, graph, cfg)
		if err != nil {
			log.Warnf("walk-forward window %d skipped: in-sample run failed: %v", w, err)
			continue
		}

		outResult, err := RunBacktest(outOfSample, graph, cfg)
		if err != nil {
			log.Warnf("walk-forward window %d skipped: out-of-sample run failed: %v", w, err)
			continue
		}

		result.Windows = append(result.Windows, models.WalkForwardWindow{
			Index:             w,
			InSampleStart:     startBar,
			InSampleEnd:       startBar + inSampleSize,
			OutOfSampleEnd:    endBar,
			InSample:          inResult,
			OutOfSample:       outResult,
			InSampleProfit:    inResult.Summary.NetProfit,
			OutOfSampleProfit: outResult.Summary.NetProfit,
		})

		result.TotalInSampleProfit += inResult.Summary.NetProfit
		result.TotalOutOfSampleProfit += outResult.Summary.NetProfit
	}

	if result.TotalInSampleProfit != 0 {
		result.WalkForwardEfficiency = result.TotalOutOfSampleProfit / result.TotalInSampleProfit
	}

	return result, nil
}

// windowSizeFor sizes windows so that windowCount windows, each advancing by
// its out-of-sample portion, exactly tile the series.
func windowSizeFor(totalBars, windowCount int, inSampleRatio float64) int {
	// total = windowSize + (windowCount-1) * outOfSampleSize
	//       = windowSize * (1 + (windowCount-1)*(1-inSampleRatio))
	return int(float64(totalBars) / (1.0 + float64(windowCount-1)*(1.0-inSampleRatio)))
}
