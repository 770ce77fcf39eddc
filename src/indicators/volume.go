package indicators

import (
	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeObv accumulates volume with the sign of the close-to-close move.
func computeObv(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	out := nanSeries(len(bars))
	if len(bars) < 2 {
		return &Buffers{Value: out}
	}

	obv := 0.0
	for i := 1; i < len(bars); i++ {
		if bars[i].Close > bars[i-1].Close {
			obv += bars[i].Volume
		} else if bars[i].Close < bars[i-1].Close {
			obv -= bars[i].Volume
		}

		out[i] = obv
	}

	return &Buffers{Value: out}
}

// computeMfi is the volume-weighted RSI analogue over the typical price.
func computeMfi(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	out := nanSeries(len(bars))
	period := cfg.Period

	if len(bars) <= period {
		return &Buffers{Value: out}
	}

	positive := make([]float64, len(bars))
	negative := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		flow := bars[i].TypicalPrice() * bars[i].Volume
		if bars[i].TypicalPrice() > bars[i-1].TypicalPrice() {
			positive[i] = flow
		} else if bars[i].TypicalPrice() < bars[i-1].TypicalPrice() {
			negative[i] = flow
		}
	}

	for i := period; i < len(bars); i++ {
		var posSum, negSum float64
		for j := i - period + 1; j <= i; j++ {
			posSum += positive[j]
			negSum += negative[j]
		}

		if negSum == 0 {
			out[i] = 100
			continue
		}

		ratio := posSum / negSum
		out[i] = 100 - (100 / (1 + ratio))
	}

	return &Buffers{Value: out}
}
