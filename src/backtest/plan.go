package backtest

import (
	"fmt"
	"math"

	"github.com/jiaming2012/backtest-engine/src/indicators"
	"github.com/jiaming2012/backtest-engine/src/models"
)

const warmupSafetyBars = 10
const warmupFloorBars = 5

// EvaluationPlan is the immutable artifact derived from a strategy graph:
// every indicator pre-computed over the full series, trade management per
// side, and the warm-up bar count below which no signals fire.
type EvaluationPlan struct {
	Indicators   []models.IndicatorConfig
	Buffers      map[string]*indicators.Buffers
	Candlesticks []models.CandlestickParams
	LongConfig   models.TradeConfig
	ShortConfig  models.TradeConfig
	Mode         models.ConditionMode
	WarmupBars   int
	Warnings     []string

	// atrBuffers holds pre-computed ATR series keyed by period for stop-loss
	// and take-profit rules that reference an ATR multiple.
	atrBuffers map[int][]float64
}

// AtrValue returns the pre-computed ATR for the given period at a bar, or
// false when the value is unavailable so callers can fall back to fixed
// distances.
func (p *EvaluationPlan) AtrValue(period, barIndex int) (float64, bool) {
	buffer, ok := p.atrBuffers[period]
	if !ok || barIndex < 0 || barIndex >= len(buffer) {
		return 0, false
	}

	v := buffer[barIndex]
	if math.IsNaN(v) {
		return 0, false
	}

	return v, true
}

// BuildPlan never fails: unsupported node kinds are dropped with a warning so
// a partially-unsupported strategy still backtests on its supported parts.
func BuildPlan(graph *models.StrategyGraph, bars []models.Bar) *EvaluationPlan {
	plan := &EvaluationPlan{
		Buffers: make(map[string]*indicators.Buffers),
		Mode:    graph.ConditionMode,
		LongConfig: models.TradeConfig{
			Direction:  models.DirectionLong,
			Sizing:     models.SizingParams{Method: models.SizingMethodFixedLot, FixedLot: 0.1},
			StopLoss:   models.StopLossParams{Method: models.StopLossMethodFixedDistance, Distance: fallbackStopPoints},
			TakeProfit: models.TakeProfitParams{Method: models.TakeProfitMethodFixedDistance, Distance: fallbackTargetPoints},
		},
		ShortConfig: models.TradeConfig{
			Direction:  models.DirectionShort,
			Sizing:     models.SizingParams{Method: models.SizingMethodFixedLot, FixedLot: 0.1},
			StopLoss:   models.StopLossParams{Method: models.StopLossMethodFixedDistance, Distance: fallbackStopPoints},
			TakeProfit: models.TakeProfitParams{Method: models.TakeProfitMethodFixedDistance, Distance: fallbackTargetPoints},
		},
	}

	for _, node := range graph.Nodes {
		switch node.Kind {
		case models.NodeKindIndicator:
			if node.Indicator == nil {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf("indicator node %s has no parameters; skipped", node.ID))
				continue
			}

			cfg := *node.Indicator
			if cfg.ID == "" {
				cfg.ID = node.ID
			}

			buffers, err := indicators.Compute(bars, cfg)
			if err != nil {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf("indicator node %s: %v; skipped", node.ID, err))
				continue
			}

			plan.Indicators = append(plan.Indicators, cfg)
			plan.Buffers[cfg.ID] = buffers

		case models.NodeKindCandlestick:
			if node.Candlestick == nil {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf("candlestick node %s has no parameters; skipped", node.ID))
				continue
			}
			plan.Candlesticks = append(plan.Candlesticks, *node.Candlestick)

		case models.NodeKindSizing:
			if node.Sizing != nil {
				applyToSide(plan, node.Side, func(tc *models.TradeConfig) { tc.Sizing = *node.Sizing })
			}

		case models.NodeKindStopLoss:
			if node.StopLoss != nil {
				applyToSide(plan, node.Side, func(tc *models.TradeConfig) { tc.StopLoss = *node.StopLoss })
			}

		case models.NodeKindTakeProfit:
			if node.TakeProfit != nil {
				applyToSide(plan, node.Side, func(tc *models.TradeConfig) { tc.TakeProfit = *node.TakeProfit })
			}

		case models.NodeKindTrailingStop:
			if node.TrailingStop != nil {
				params := *node.TrailingStop
				applyToSide(plan, node.Side, func(tc *models.TradeConfig) { tc.TrailingStop = &params })
			}

		case models.NodeKindBreakeven:
			if node.Breakeven != nil {
				params := *node.Breakeven
				applyToSide(plan, node.Side, func(tc *models.TradeConfig) { tc.Breakeven = &params })
			}

		case models.NodeKindPartialClose:
			if node.PartialClose != nil {
				params := *node.PartialClose
				applyToSide(plan, node.Side, func(tc *models.TradeConfig) { tc.PartialClose = &params })
			}

		case models.NodeKindTimeExit:
			if node.TimeExit != nil {
				params := *node.TimeExit
				applyToSide(plan, node.Side, func(tc *models.TradeConfig) { tc.TimeExit = &params })
			}

		default:
			label := node.RawKind
			if label == "" {
				label = "unknown"
			}
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("unsupported node kind %q (node %s); skipped", label, node.ID))
		}
	}

	plan.WarmupBars = computeWarmup(plan.Indicators)
	plan.atrBuffers = computeAtrBuffers(bars, []models.TradeConfig{plan.LongConfig, plan.ShortConfig})

	return plan
}

func computeAtrBuffers(bars []models.Bar, configs []models.TradeConfig) map[int][]float64 {
	periods := make(map[int]bool)
	for _, tc := range configs {
		if tc.StopLoss.Method == models.StopLossMethodAtrMultiple {
			periods[normalizeAtrPeriod(tc.StopLoss.AtrPeriod)] = true
		}
		if tc.TakeProfit.Method == models.TakeProfitMethodAtrMultiple {
			periods[normalizeAtrPeriod(tc.TakeProfit.AtrPeriod)] = true
		}
	}

	out := make(map[int][]float64, len(periods))
	for period := range periods {
		buffers, err := indicators.Compute(bars, models.IndicatorConfig{Kind: models.IndicatorKindAtr, Period: period})
		if err != nil {
			continue
		}
		out[period] = buffers.Value
	}

	return out
}

func normalizeAtrPeriod(period int) int {
	if period <= 0 {
		return 14
	}
	return period
}

// computeWarmup sums the requirement of every indicator when more than one is
// present, since indicators may logically chain. The safety buffer and floor
// deliberately over-provision to avoid subtly invalid early signals.
func computeWarmup(configs []models.IndicatorConfig) int {
	warmup := 0

	if len(configs) == 1 {
		warmup = indicators.WarmupBars(configs[0])
	} else {
		for _, cfg := range configs {
			warmup += indicators.WarmupBars(cfg)
		}
	}

	warmup += warmupSafetyBars
	if warmup < warmupFloorBars {
		warmup = warmupFloorBars
	}

	return warmup
}

func applyToSide(plan *EvaluationPlan, side models.Direction, apply func(*models.TradeConfig)) {
	if side == models.DirectionLong {
		apply(&plan.LongConfig)
	} else {
		apply(&plan.ShortConfig)
	}
}
