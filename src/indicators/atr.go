package indicators

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

func trueRange(current, previous models.Bar) float64 {
	tr := current.High - current.Low
	tr = math.Max(tr, math.Abs(current.High-previous.Close))
	tr = math.Max(tr, math.Abs(current.Low-previous.Close))
	return tr
}

// computeAtr applies Wilder's smoothing to the true range, seeded by a simple
// average over the first period true ranges.
func computeAtr(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	out := nanSeries(len(bars))
	period := cfg.Period

	if len(bars) <= period {
		return &Buffers{Value: out}
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += trueRange(bars[i], bars[i-1])
	}

	atr := sum / float64(period)
	out[period] = atr

	for i := period + 1; i < len(bars); i++ {
		atr = (atr*(float64(period)-1.0) + trueRange(bars[i], bars[i-1])) / float64(period)
		out[i] = atr
	}

	return &Buffers{Value: out}
}
