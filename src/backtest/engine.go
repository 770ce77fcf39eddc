package backtest

import (
	"fmt"
	"time"

	"github.com/jiaming2012/backtest-engine/src/metrics"
	"github.com/jiaming2012/backtest-engine/src/models"
)

// RunBacktest evaluates one strategy configuration against one bar series.
// The walk is single-threaded and strictly ordered per bar: signal evaluation,
// then trade simulation, then equity sampling. Runs on identical inputs
// produce identical trade ledgers.
func RunBacktest(bars []models.Bar, graph *models.StrategyGraph, cfg *models.BacktestConfig) (*models.BacktestResult, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("RunBacktest: invalid config: %w", err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("RunBacktest: %w", models.EmptyBarSeriesErr)
	}

	plan := BuildPlan(graph, bars)

	if len(bars) <= plan.WarmupBars {
		return nil, fmt.Errorf("RunBacktest: have %d bars but warm-up needs %d: %w", len(bars), plan.WarmupBars, models.NotEnoughBarsErr)
	}

	tracker := NewEquityTracker(cfg.InitialBalance)
	sim := NewSimulator(cfg, plan, bars, tracker)

	for i := plan.WarmupBars; i < len(bars); i++ {
		entry := EvaluateEntry(i, bars, plan)
		exit := EvaluateExit(i, bars, plan)

		sim.ProcessBar(i, entry, exit)

		tracker.UpdateEquity(i, bars[i], sim.UnrealizedProfit(i), sim.HasOpenPositions())
	}

	sim.CloseAll(len(bars)-1, models.CloseReasonManual)
	tracker.UpdateEquity(len(bars)-1, bars[len(bars)-1], 0, false)

	summary := metrics.Summarize(sim.Ledger(), tracker.Curve, metrics.SummaryInputs{
		InitialBalance:     cfg.InitialBalance,
		MaxDrawdown:        tracker.MaxDrawdown,
		MaxDrawdownPercent: tracker.MaxDrawdownPercent,
	})

	return &models.BacktestResult{
		Summary:       summary,
		Trades:        sim.Ledger(),
		EquityCurve:   tracker.Curve,
		Warnings:      plan.Warnings,
		BarsProcessed: len(bars),
		Duration:      time.Since(start),
	}, nil
}
