package indicators

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeRsi uses Wilder's smoothing: the first average gain/loss is a simple
// average over period deltas, every later value is the recursive blend.
func computeRsi(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	out := nanSeries(len(bars))
	period := cfg.Period

	if len(bars) <= period {
		return &Buffers{Value: out}
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += math.Abs(delta)
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close

		var deltaGain, deltaLoss float64
		if delta > 0 {
			deltaGain = delta
		} else {
			deltaLoss = math.Abs(delta)
		}

		avgGain = (avgGain*(float64(period)-1.0) + deltaGain) / float64(period)
		avgLoss = (avgLoss*(float64(period)-1.0) + deltaLoss) / float64(period)

		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return &Buffers{Value: out}
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
