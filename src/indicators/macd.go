package indicators

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeMacd fills Main with the MACD line, Signal with its EMA and Value
// with the histogram (main - signal).
func computeMacd(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	closes := closeSeries(bars)

	fast := emaSeries(closes, cfg.FastPeriod)
	slow := emaSeries(closes, cfg.SlowPeriod)

	main := nanSeries(len(bars))
	for i := range bars {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			continue
		}
		main[i] = fast[i] - slow[i]
	}

	signal := nanSeries(len(bars))
	offset := cfg.SlowPeriod - 1
	if offset < len(bars) {
		smoothed := emaSeries(main[offset:], cfg.SignalPeriod)
		copy(signal[offset:], smoothed)
	}

	histogram := nanSeries(len(bars))
	for i := range bars {
		if math.IsNaN(main[i]) || math.IsNaN(signal[i]) {
			continue
		}
		histogram[i] = main[i] - signal[i]
	}

	return &Buffers{Main: main, Signal: signal, Value: histogram}
}
