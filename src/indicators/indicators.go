package indicators

import (
	"fmt"
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// Buffers holds one value series per buffer role, each the same length as the
// input bar series. Entries are NaN until the indicator's warm-up is
// satisfied. A kind only populates the roles it produces.
type Buffers struct {
	Value   []float64
	Main    []float64
	Signal  []float64
	Upper   []float64
	Middle  []float64
	Lower   []float64
	PlusDI  []float64
	MinusDI []float64
	Tenkan  []float64
	Kijun   []float64
	Squeeze []bool
}

// Compute evaluates one indicator over the entire bar series. It is pure:
// identical bars and config always yield identical buffers.
func Compute(bars []models.Bar, config models.IndicatorConfig) (*Buffers, error) {
	if len(bars) == 0 {
		return nil, models.EmptyBarSeriesErr
	}

	cfg := withDefaults(config)

	switch cfg.Kind {
	case models.IndicatorKindMovingAverage:
		return computeMovingAverage(bars, cfg), nil
	case models.IndicatorKindRsi:
		return computeRsi(bars, cfg), nil
	case models.IndicatorKindStochastic:
		return computeStochastic(bars, cfg), nil
	case models.IndicatorKindCci:
		return computeCci(bars, cfg), nil
	case models.IndicatorKindMacd:
		return computeMacd(bars, cfg), nil
	case models.IndicatorKindBollingerBands:
		return computeBollingerBands(bars, cfg), nil
	case models.IndicatorKindAtr:
		return computeAtr(bars, cfg), nil
	case models.IndicatorKindAdx:
		return computeAdx(bars, cfg), nil
	case models.IndicatorKindIchimoku:
		return computeIchimoku(bars, cfg), nil
	case models.IndicatorKindSqueeze:
		return computeSqueeze(bars, cfg), nil
	case models.IndicatorKindObv:
		return computeObv(bars, cfg), nil
	case models.IndicatorKindMfi:
		return computeMfi(bars, cfg), nil
	default:
		return nil, fmt.Errorf("Compute: unsupported indicator kind %v", cfg.Kind)
	}
}

// WarmupBars reports how many leading bars the indicator needs before its
// buffers carry valid values.
func WarmupBars(config models.IndicatorConfig) int {
	cfg := withDefaults(config)

	switch cfg.Kind {
	case models.IndicatorKindMovingAverage:
		return cfg.Period
	case models.IndicatorKindRsi:
		return cfg.Period + 1
	case models.IndicatorKindStochastic:
		return cfg.Period + cfg.SignalPeriod
	case models.IndicatorKindCci:
		return cfg.Period
	case models.IndicatorKindMacd:
		return cfg.SlowPeriod + cfg.SignalPeriod
	case models.IndicatorKindBollingerBands:
		return cfg.Period
	case models.IndicatorKindAtr:
		return cfg.Period + 1
	case models.IndicatorKindAdx:
		return 2 * cfg.Period
	case models.IndicatorKindIchimoku:
		return cfg.SlowPeriod
	case models.IndicatorKindSqueeze:
		return cfg.Period + 1
	case models.IndicatorKindObv:
		return 1
	case models.IndicatorKindMfi:
		return cfg.Period + 1
	default:
		return 0
	}
}

func withDefaults(cfg models.IndicatorConfig) models.IndicatorConfig {
	if cfg.Period <= 0 {
		switch cfg.Kind {
		case models.IndicatorKindBollingerBands, models.IndicatorKindSqueeze:
			cfg.Period = 20
		default:
			cfg.Period = 14
		}
	}

	if cfg.FastPeriod <= 0 {
		if cfg.Kind == models.IndicatorKindIchimoku {
			cfg.FastPeriod = 9
		} else {
			cfg.FastPeriod = 12
		}
	}

	if cfg.SlowPeriod <= 0 {
		cfg.SlowPeriod = 26
	}

	if cfg.SignalPeriod <= 0 {
		switch cfg.Kind {
		case models.IndicatorKindStochastic:
			cfg.SignalPeriod = 3
		default:
			cfg.SignalPeriod = 9
		}
	}

	if cfg.Deviation <= 0 {
		cfg.Deviation = 2.0
	}

	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 1.5
	}

	if cfg.Overbought <= 0 {
		switch cfg.Kind {
		case models.IndicatorKindStochastic:
			cfg.Overbought = 80
		case models.IndicatorKindCci:
			cfg.Overbought = 100
		default:
			cfg.Overbought = 70
		}
	}

	if cfg.Oversold == 0 {
		switch cfg.Kind {
		case models.IndicatorKindStochastic:
			cfg.Oversold = 20
		case models.IndicatorKindCci:
			cfg.Oversold = -100
		default:
			cfg.Oversold = 30
		}
	}

	if cfg.Threshold <= 0 {
		cfg.Threshold = 25
	}

	return cfg
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func closeSeries(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
