package indicators

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeCci follows Lambert's definition: (tp - sma) / (0.015 * mean
// deviation of tp from the sma over the window).
func computeCci(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	out := nanSeries(len(bars))
	period := cfg.Period

	typical := make([]float64, len(bars))
	for i, b := range bars {
		typical[i] = b.TypicalPrice()
	}

	for i := period - 1; i < len(bars); i++ {
		window := typical[i-period+1 : i+1]

		sma, err := stats.Mean(window)
		if err != nil {
			continue
		}

		meanDev := 0.0
		for _, v := range window {
			meanDev += math.Abs(v - sma)
		}
		meanDev /= float64(period)

		if meanDev == 0 {
			out[i] = 0
			continue
		}

		out[i] = (typical[i] - sma) / (0.015 * meanDev)
	}

	return &Buffers{Value: out}
}
