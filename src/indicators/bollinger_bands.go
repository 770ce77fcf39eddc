package indicators

import (
	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeBollingerBands fills Upper/Middle/Lower from a moving average of the
// typical price plus/minus a standard-deviation envelope.
func computeBollingerBands(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	upper := nanSeries(len(bars))
	middle := nanSeries(len(bars))
	lower := nanSeries(len(bars))
	period := cfg.Period

	typical := make([]float64, len(bars))
	for i, b := range bars {
		typical[i] = b.TypicalPrice()
	}

	for i := period - 1; i < len(bars); i++ {
		window := typical[i-period+1 : i+1]

		movingAverage, err := stats.Mean(window)
		if err != nil {
			continue
		}

		sd, err := stats.StandardDeviation(window)
		if err != nil {
			continue
		}

		middle[i] = movingAverage
		upper[i] = movingAverage + cfg.Deviation*sd
		lower[i] = movingAverage - cfg.Deviation*sd
	}

	return &Buffers{Upper: upper, Middle: middle, Lower: lower}
}
