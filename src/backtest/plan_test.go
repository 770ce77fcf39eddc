package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/backtest-engine/src/models"
)

func TestBuildPlan(t *testing.T) {
	bars := barsFromCloses(risingCloses(100, 1.1, 0.0001))

	t.Run("single indicator warmup uses its own requirement", func(t *testing.T) {
		plan := BuildPlan(trendFilterGraph(20), bars)

		// 20 + 10 safety
		assert.Equal(t, 30, plan.WarmupBars)
		assert.Empty(t, plan.Warnings)
	})

	t.Run("multiple indicators sum their warmups", func(t *testing.T) {
		plan := BuildPlan(trendFilterGraph(5, 20), bars)

		// (5 + 20) + 10 safety
		assert.Equal(t, 35, plan.WarmupBars)
	})

	t.Run("warmup floors at five bars", func(t *testing.T) {
		plan := BuildPlan(&models.StrategyGraph{}, bars)

		assert.GreaterOrEqual(t, plan.WarmupBars, 5)
	})

	t.Run("unsupported node kinds warn instead of failing", func(t *testing.T) {
		graph := trendFilterGraph(10)
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:      "mystery",
			Kind:    models.NodeKindUnknown,
			RawKind: "NEURAL_NET",
		})

		plan := BuildPlan(graph, bars)

		require.Len(t, plan.Warnings, 1)
		assert.Contains(t, plan.Warnings[0], "NEURAL_NET")
		assert.Len(t, plan.Indicators, 1)
	})

	t.Run("trade nodes land on their side", func(t *testing.T) {
		graph := trendFilterGraph(10)
		graph.Nodes = append(graph.Nodes,
			models.StrategyNode{
				ID:     "sz",
				Kind:   models.NodeKindSizing,
				Side:   models.DirectionLong,
				Sizing: &models.SizingParams{Method: models.SizingMethodRiskPercent, RiskPercent: 2},
			},
			models.StrategyNode{
				ID:           "tr",
				Kind:         models.NodeKindTrailingStop,
				Side:         models.DirectionShort,
				TrailingStop: &models.TrailingStopParams{Distance: 50, MinProfit: 30},
			},
		)

		plan := BuildPlan(graph, bars)

		assert.Equal(t, models.SizingMethodRiskPercent, plan.LongConfig.Sizing.Method)
		assert.Equal(t, models.SizingMethodFixedLot, plan.ShortConfig.Sizing.Method)
		assert.Nil(t, plan.LongConfig.TrailingStop)
		require.NotNil(t, plan.ShortConfig.TrailingStop)
		assert.Equal(t, 50.0, plan.ShortConfig.TrailingStop.Distance)
	})

	t.Run("atr stop rules precompute their buffer", func(t *testing.T) {
		graph := trendFilterGraph(10)
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:       "sl",
			Kind:     models.NodeKindStopLoss,
			Side:     models.DirectionLong,
			StopLoss: &models.StopLossParams{Method: models.StopLossMethodAtrMultiple, AtrPeriod: 14, Multiplier: 2},
		})

		plan := BuildPlan(graph, bars)

		_, ok := plan.AtrValue(14, 50)
		assert.True(t, ok)

		_, ok = plan.AtrValue(14, 5)
		assert.False(t, ok)
	})
}
