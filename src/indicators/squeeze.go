package indicators

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeSqueeze marks bars where the Bollinger envelope sits fully inside a
// Keltner channel of the same period. Middle carries the band midpoint used
// to pick the breakout direction once the squeeze releases.
func computeSqueeze(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	n := len(bars)
	squeeze := make([]bool, n)
	middle := nanSeries(n)
	period := cfg.Period

	atrCfg := cfg
	atrCfg.Kind = models.IndicatorKindAtr
	atr := computeAtr(bars, atrCfg).Value

	typical := make([]float64, n)
	for i, b := range bars {
		typical[i] = b.TypicalPrice()
	}

	for i := period; i < n; i++ {
		window := typical[i-period+1 : i+1]

		mean, err := stats.Mean(window)
		if err != nil {
			continue
		}

		sd, err := stats.StandardDeviation(window)
		if err != nil {
			continue
		}

		middle[i] = mean

		if math.IsNaN(atr[i]) {
			continue
		}

		bbUpper := mean + cfg.Deviation*sd
		bbLower := mean - cfg.Deviation*sd
		kcUpper := mean + cfg.Multiplier*atr[i]
		kcLower := mean - cfg.Multiplier*atr[i]

		squeeze[i] = bbUpper <= kcUpper && bbLower >= kcLower
	}

	return &Buffers{Middle: middle, Squeeze: squeeze}
}
