package backtest

import (
	"math"
	"time"

	"github.com/jiaming2012/backtest-engine/src/models"
)

func barsFromCloses(closes []float64) []models.Bar {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 0.0005,
			Low:       c - 0.0005,
			Close:     c,
			Volume:    1000,
		}
	}

	return bars
}

func risingCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return closes
}

func oscillatingCloses(n int, center, amplitude float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = center + amplitude*math.Sin(float64(i)/4.0)
	}
	return closes
}

func trendFilterGraph(periods ...int) *models.StrategyGraph {
	graph := &models.StrategyGraph{ConditionMode: models.ConditionModeAll}

	for i, period := range periods {
		id := string(rune('a' + i))
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:   id,
			Kind: models.NodeKindIndicator,
			Indicator: &models.IndicatorConfig{
				ID:          id,
				Kind:        models.IndicatorKindMovingAverage,
				Period:      period,
				TrendFilter: true,
			},
		})
	}

	return graph
}

func testConfig() *models.BacktestConfig {
	return models.NewBacktestConfig(10000, "EURUSD")
}
