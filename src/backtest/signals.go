package backtest

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/indicators"
	"github.com/jiaming2012/backtest-engine/src/models"
)

type EntrySignal struct {
	Buy  bool
	Sell bool
}

type ExitSignal struct {
	CloseBuy  bool
	CloseSell bool
}

type contribution struct {
	buy  bool
	sell bool
}

// EvaluateEntry combines every indicator and candlestick contribution at the
// given bar per the plan's condition mode. Before the warm-up bar count (and
// always before bar index 2) both signals are false.
func EvaluateEntry(barIndex int, bars []models.Bar, plan *EvaluationPlan) EntrySignal {
	if barIndex < plan.WarmupBars || barIndex < 2 || barIndex >= len(bars) {
		return EntrySignal{}
	}

	contributions := collectContributions(barIndex, bars, plan)
	if len(contributions) == 0 {
		return EntrySignal{}
	}

	if plan.Mode == models.ConditionModeAll {
		signal := EntrySignal{Buy: true, Sell: true}
		for _, c := range contributions {
			signal.Buy = signal.Buy && c.buy
			signal.Sell = signal.Sell && c.sell
		}
		return signal
	}

	signal := EntrySignal{}
	for _, c := range contributions {
		signal.Buy = signal.Buy || c.buy
		signal.Sell = signal.Sell || c.sell
	}
	return signal
}

// EvaluateExit reports opposite-signal exits: a sell entry closes buys and a
// buy entry closes sells.
func EvaluateExit(barIndex int, bars []models.Bar, plan *EvaluationPlan) ExitSignal {
	entry := EvaluateEntry(barIndex, bars, plan)
	return ExitSignal{CloseBuy: entry.Sell, CloseSell: entry.Buy}
}

func collectContributions(barIndex int, bars []models.Bar, plan *EvaluationPlan) []contribution {
	var out []contribution

	for _, cfg := range plan.Indicators {
		buffers, ok := plan.Buffers[cfg.ID]
		if !ok {
			continue
		}

		c, ok := indicatorContribution(barIndex, bars, cfg, buffers)
		if !ok {
			// Missing or NaN values at this bar: the indicator yields no
			// signal but still participates in an all-must-hold combination.
			c = contribution{}
		}
		out = append(out, c)
	}

	for _, pattern := range plan.Candlesticks {
		out = append(out, patternContribution(barIndex, bars, pattern))
	}

	return out
}

func indicatorContribution(i int, bars []models.Bar, cfg models.IndicatorConfig, b *indicators.Buffers) (contribution, bool) {
	price := bars[i].Close
	prevPrice := bars[i-1].Close

	switch cfg.Kind {
	case models.IndicatorKindMovingAverage:
		ma := b.Value[i]
		prevMA := b.Value[i-1]
		if math.IsNaN(ma) {
			return contribution{}, false
		}

		if cfg.TrendFilter {
			// Trend filter mode: pure directional bias, not a crossover.
			return contribution{
				buy:  GreaterThan(price, ma),
				sell: LessThan(price, ma),
			}, true
		}

		if math.IsNaN(prevMA) {
			return contribution{}, false
		}

		return contribution{
			buy:  CrossesAbove(prevPrice, prevMA, price, ma),
			sell: CrossesBelow(prevPrice, prevMA, price, ma),
		}, true

	case models.IndicatorKindRsi, models.IndicatorKindCci, models.IndicatorKindMfi:
		return oscillatorContribution(b.Value[i-1], b.Value[i], cfg)

	case models.IndicatorKindStochastic:
		return oscillatorContribution(b.Main[i-1], b.Main[i], cfg)

	case models.IndicatorKindMacd:
		return macdContribution(i, cfg, b)

	case models.IndicatorKindBollingerBands:
		upper, lower := b.Upper[i], b.Lower[i]
		if math.IsNaN(upper) || math.IsNaN(lower) {
			return contribution{}, false
		}

		// Band touch or breach, not a crossover.
		return contribution{
			buy:  LessThanOrEqual(price, lower),
			sell: GreaterThanOrEqual(price, upper),
		}, true

	case models.IndicatorKindAdx:
		return adxContribution(i, cfg, b)

	case models.IndicatorKindIchimoku:
		tenkan, kijun := b.Tenkan[i], b.Kijun[i]
		if math.IsNaN(tenkan) || math.IsNaN(kijun) {
			return contribution{}, false
		}

		prevTenkan, prevKijun := b.Tenkan[i-1], b.Kijun[i-1]
		if math.IsNaN(prevTenkan) || math.IsNaN(prevKijun) {
			return contribution{
				buy:  GreaterThan(tenkan, kijun),
				sell: LessThan(tenkan, kijun),
			}, true
		}

		return contribution{
			buy:  CrossesAbove(prevTenkan, prevKijun, tenkan, kijun),
			sell: CrossesBelow(prevTenkan, prevKijun, tenkan, kijun),
		}, true

	case models.IndicatorKindSqueeze:
		// Only the release bar signals: squeeze on the prior bar, off now.
		if !b.Squeeze[i-1] || b.Squeeze[i] {
			return contribution{}, true
		}

		midpoint := b.Middle[i]
		if math.IsNaN(midpoint) {
			return contribution{}, false
		}

		return contribution{
			buy:  GreaterThan(price, midpoint),
			sell: LessThan(price, midpoint),
		}, true

	case models.IndicatorKindObv:
		obv, prevObv := b.Value[i], b.Value[i-1]
		if math.IsNaN(obv) || math.IsNaN(prevObv) {
			return contribution{}, false
		}

		return contribution{
			buy:  GreaterThan(obv, prevObv),
			sell: LessThan(obv, prevObv),
		}, true

	default:
		return contribution{}, false
	}
}

// oscillatorContribution implements reversal-from-extreme logic: the line must
// cross back over its threshold, not merely touch the extreme zone.
func oscillatorContribution(prev, cur float64, cfg models.IndicatorConfig) (contribution, bool) {
	if math.IsNaN(prev) || math.IsNaN(cur) {
		return contribution{}, false
	}

	return contribution{
		buy:  CrossesAbove(prev, cfg.Oversold, cur, cfg.Oversold),
		sell: CrossesBelow(prev, cfg.Overbought, cur, cfg.Overbought),
	}, true
}

func macdContribution(i int, cfg models.IndicatorConfig, b *indicators.Buffers) (contribution, bool) {
	switch cfg.MacdMode {
	case models.MacdSignalModeZeroCross:
		prev, cur := b.Main[i-1], b.Main[i]
		if math.IsNaN(prev) || math.IsNaN(cur) {
			return contribution{}, false
		}

		return contribution{
			buy:  CrossesAbove(prev, 0, cur, 0),
			sell: CrossesBelow(prev, 0, cur, 0),
		}, true

	case models.MacdSignalModeHistogramFlip:
		prev, cur := b.Value[i-1], b.Value[i]
		if math.IsNaN(prev) || math.IsNaN(cur) {
			return contribution{}, false
		}

		return contribution{
			buy:  CrossesAbove(prev, 0, cur, 0),
			sell: CrossesBelow(prev, 0, cur, 0),
		}, true

	default:
		prevMain, curMain := b.Main[i-1], b.Main[i]
		prevSignal, curSignal := b.Signal[i-1], b.Signal[i]
		if math.IsNaN(prevMain) || math.IsNaN(curMain) || math.IsNaN(prevSignal) || math.IsNaN(curSignal) {
			return contribution{}, false
		}

		return contribution{
			buy:  CrossesAbove(prevMain, prevSignal, curMain, curSignal),
			sell: CrossesBelow(prevMain, prevSignal, curMain, curSignal),
		}, true
	}
}

// adxContribution gates on trend strength, then reads the directional lines.
func adxContribution(i int, cfg models.IndicatorConfig, b *indicators.Buffers) (contribution, bool) {
	adx := b.Value[i]
	plusDI, minusDI := b.PlusDI[i], b.MinusDI[i]
	if math.IsNaN(adx) || math.IsNaN(plusDI) || math.IsNaN(minusDI) {
		return contribution{}, false
	}

	if !GreaterThan(adx, cfg.Threshold) {
		return contribution{}, true
	}

	prevPlus, prevMinus := b.PlusDI[i-1], b.MinusDI[i-1]
	if math.IsNaN(prevPlus) || math.IsNaN(prevMinus) {
		return contribution{
			buy:  GreaterThan(plusDI, minusDI),
			sell: LessThan(plusDI, minusDI),
		}, true
	}

	return contribution{
		buy:  CrossesAbove(prevPlus, prevMinus, plusDI, minusDI),
		sell: CrossesBelow(prevPlus, prevMinus, plusDI, minusDI),
	}, true
}
