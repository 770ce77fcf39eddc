package indicators

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeIchimoku fills Tenkan (fast conversion line) and Kijun (slow base
// line). Both are midpoints of the highest high and lowest low over their
// lookback.
func computeIchimoku(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	return &Buffers{
		Tenkan: midpointSeries(bars, cfg.FastPeriod),
		Kijun:  midpointSeries(bars, cfg.SlowPeriod),
	}
}

func midpointSeries(bars []models.Bar, period int) []float64 {
	out := nanSeries(len(bars))

	for i := period - 1; i < len(bars); i++ {
		highest := math.Inf(-1)
		lowest := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if bars[j].High > highest {
				highest = bars[j].High
			}
			if bars[j].Low < lowest {
				lowest = bars[j].Low
			}
		}

		out[i] = (highest + lowest) / 2.0
	}

	return out
}
