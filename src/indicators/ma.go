package indicators

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

func computeMovingAverage(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	return &Buffers{
		Value: movingAverageSeries(closeSeries(bars), cfg.Period, cfg.MAMethod),
	}
}

// movingAverageSeries is shared by every component that smooths a series:
// the MA indicator itself, MACD's EMAs and the stochastic %D line.
func movingAverageSeries(values []float64, period int, method models.MovingAverageMethod) []float64 {
	switch method {
	case models.MovingAverageMethodExponential:
		return emaSeries(values, period)
	case models.MovingAverageMethodWeighted:
		return wmaSeries(values, period)
	default:
		return smaSeries(values, period)
	}
}

func smaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// emaSeries seeds the first value with a simple average over period bars.
func emaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	out[period-1] = seed / float64(period)

	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			out[i] = out[i-1]
			continue
		}

		out[i] = values[i]*k + out[i-1]*(1.0-k)
	}

	return out
}

func wmaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	denom := float64(period*(period+1)) / 2.0
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += values[i-j] * float64(period-j)
		}
		out[i] = sum / denom
	}

	return out
}
