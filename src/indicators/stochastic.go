package indicators

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeStochastic fills Main with %K and Signal with its %D smoothing.
func computeStochastic(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	k := nanSeries(len(bars))
	period := cfg.Period

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

		if highest == lowest {
			k[i] = 50
			continue
		}

		k[i] = (bars[i].Close - lowest) / (highest - lowest) * 100
	}

	d := nanSeries(len(bars))
	for i := period - 1 + cfg.SignalPeriod - 1; i < len(bars); i++ {
		sum := 0.0
		for j := 0; j < cfg.SignalPeriod; j++ {
			sum += k[i-j]
		}
		d[i] = sum / float64(cfg.SignalPeriod)
	}

	return &Buffers{Main: k, Signal: d}
}
