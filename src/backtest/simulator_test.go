package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/backtest-engine/src/models"
)

func ohlcBar(i int, open, high, low, close float64) models.Bar {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return models.Bar{
		Timestamp: start.Add(time.Duration(i) * time.Hour),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    1000,
	}
}

func newTestSimulator(cfg *models.BacktestConfig, bars []models.Bar) (*Simulator, *EvaluationPlan, *EquityTracker) {
	plan := BuildPlan(&models.StrategyGraph{}, bars)
	tracker := NewEquityTracker(cfg.InitialBalance)
	return NewSimulator(cfg, plan, bars, tracker), plan, tracker
}

func TestSimulatorTakeProfitExit(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10105, 1.10060, 1.10100),
	}

	sim, plan, tracker := newTestSimulator(testConfig(), bars)
	plan.LongConfig.Sizing.FixedLot = 1.0

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	require.Len(t, sim.OpenPositions(), 1)

	sim.ProcessBar(1, EntrySignal{}, ExitSignal{})
	require.Len(t, sim.Ledger(), 1)

	trade := sim.Ledger()[0]
	assert.Equal(t, models.CloseReasonTakeProfit, trade.Reason)
	assert.InDelta(t, 1.10100, trade.ClosePrice, 1e-9)

	// 100 points at 1.0 point value on 1 lot, no spread or commission.
	assert.InDelta(t, 100.0, trade.Profit, 1e-6)
	assert.InDelta(t, 10100.0, tracker.Balance, 1e-6)
	assert.False(t, sim.HasOpenPositions())
}

func TestSimulatorStopBeforeTargetSameBar(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10200, 1.09900, 1.10000),
	}

	sim, _, _ := newTestSimulator(testConfig(), bars)

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	sim.ProcessBar(1, EntrySignal{}, ExitSignal{})

	require.Len(t, sim.Ledger(), 1)
	trade := sim.Ledger()[0]
	assert.Equal(t, models.CloseReasonStopLoss, trade.Reason)
	assert.InDelta(t, 1.09950, trade.ClosePrice, 1e-9)
}

func TestSimulatorShortStopLoss(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10060, 1.09990, 1.10040),
	}

	sim, _, _ := newTestSimulator(testConfig(), bars)

	sim.ProcessBar(0, EntrySignal{Sell: true}, ExitSignal{})
	sim.ProcessBar(1, EntrySignal{}, ExitSignal{})

	require.Len(t, sim.Ledger(), 1)
	trade := sim.Ledger()[0]
	assert.Equal(t, models.DirectionShort, trade.Direction)
	assert.Equal(t, models.CloseReasonStopLoss, trade.Reason)
	assert.InDelta(t, 1.10050, trade.ClosePrice, 1e-9)
	assert.Negative(t, trade.Profit)
}

func TestSimulatorTrailingStopOnlyTightens(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10055, 1.10000, 1.10050),
		ohlcBar(2, 1.10050, 1.10060, 1.10035, 1.10040),
		ohlcBar(3, 1.10040, 1.10085, 1.10040, 1.10080),
	}

	sim, plan, _ := newTestSimulator(testConfig(), bars)
	plan.LongConfig.TakeProfit.Distance = 10000
	plan.LongConfig.TrailingStop = &models.TrailingStopParams{Distance: 20, MinProfit: 10}

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	require.Len(t, sim.OpenPositions(), 1)
	p := sim.OpenPositions()[0]

	sim.ProcessBar(1, EntrySignal{}, ExitSignal{})
	assert.InDelta(t, 1.10030, p.StopLoss, 1e-9)

	// Retracement must not loosen the stop.
	sim.ProcessBar(2, EntrySignal{}, ExitSignal{})
	assert.InDelta(t, 1.10030, p.StopLoss, 1e-9)

	sim.ProcessBar(3, EntrySignal{}, ExitSignal{})
	assert.InDelta(t, 1.10060, p.StopLoss, 1e-9)
}

func TestSimulatorBreakeven(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10030, 1.10000, 1.10025),
	}

	sim, plan, _ := newTestSimulator(testConfig(), bars)
	plan.LongConfig.TakeProfit.Distance = 10000
	plan.LongConfig.Breakeven = &models.BreakevenParams{Trigger: 20, LockIn: 2}

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	p := sim.OpenPositions()[0]

	sim.ProcessBar(1, EntrySignal{}, ExitSignal{})
	assert.InDelta(t, 1.10002, p.StopLoss, 1e-9)
}

func TestSimulatorPartialCloseFiresOnce(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10020, 1.10000, 1.10015),
		ohlcBar(2, 1.10015, 1.10035, 1.10010, 1.10030),
	}

	sim, plan, _ := newTestSimulator(testConfig(), bars)
	plan.LongConfig.Sizing.FixedLot = 1.0
	plan.LongConfig.TakeProfit.Distance = 10000
	plan.LongConfig.PartialClose = &models.PartialCloseParams{ClosePercent: 50, TriggerDistance: 10}

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	p := sim.OpenPositions()[0]

	sim.ProcessBar(1, EntrySignal{}, ExitSignal{})
	require.Len(t, sim.Ledger(), 1)
	assert.Equal(t, models.CloseReasonRiskMgmt, sim.Ledger()[0].Reason)
	assert.InDelta(t, 0.5, sim.Ledger()[0].Lots, 1e-9)
	assert.InDelta(t, 0.5, p.Lots, 1e-9)
	assert.True(t, p.PartialClosed)

	// Still above the trigger, but the rule is one-shot.
	sim.ProcessBar(2, EntrySignal{}, ExitSignal{})
	assert.Len(t, sim.Ledger(), 1)
	assert.InDelta(t, 0.5, p.Lots, 1e-9)
}

func TestSimulatorSpreadCost(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10000, 1.10000, 1.10000),
		ohlcBar(1, 1.10000, 1.10000, 1.10000, 1.10000),
	}

	cfg := testConfig()
	cfg.Spread = 2

	sim, plan, _ := newTestSimulator(cfg, bars)
	plan.LongConfig.Sizing.FixedLot = 1.0

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	sim.ProcessBar(1, EntrySignal{}, ExitSignal{CloseBuy: true})

	require.Len(t, sim.Ledger(), 1)

	// Flat price: the round trip pays the full spread, one point each side.
	assert.InDelta(t, -2.0, sim.Ledger()[0].Profit, 1e-6)
}

func TestSimulatorCommissionAndSwap(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10000, 1.10000, 1.10000),
		ohlcBar(1, 1.10000, 1.10000, 1.10000, 1.10000),
		ohlcBar(2, 1.10000, 1.10000, 1.10000, 1.10000),
	}

	cfg := testConfig()
	cfg.Commission = 3.5
	cfg.SwapLong = -0.5

	sim, plan, _ := newTestSimulator(cfg, bars)
	plan.LongConfig.Sizing.FixedLot = 1.0

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	sim.ProcessBar(1, EntrySignal{}, ExitSignal{})
	sim.ProcessBar(2, EntrySignal{}, ExitSignal{CloseBuy: true})

	require.Len(t, sim.Ledger(), 1)
	trade := sim.Ledger()[0]

	assert.InDelta(t, 7.0, trade.Commission, 1e-9)
	assert.InDelta(t, -1.0, trade.Swap, 1e-9)
	assert.InDelta(t, -8.0, trade.Profit, 1e-6)
}

func TestSimulatorRiskPercentSizing(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
	}

	sim, plan, _ := newTestSimulator(testConfig(), bars)
	plan.LongConfig.Sizing = models.SizingParams{Method: models.SizingMethodRiskPercent, RiskPercent: 2}

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})

	// 2% of 10000 over a 50 point stop at 1.0 point value.
	require.Len(t, sim.OpenPositions(), 1)
	assert.InDelta(t, 4.0, sim.OpenPositions()[0].Lots, 1e-9)
}

func TestSimulatorOnePositionPerDirection(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10005, 1.09995, 1.10000),
	}

	sim, _, _ := newTestSimulator(testConfig(), bars)

	sim.ProcessBar(0, EntrySignal{Buy: true, Sell: true}, ExitSignal{})
	assert.Len(t, sim.OpenPositions(), 2)

	sim.ProcessBar(1, EntrySignal{Buy: true, Sell: true}, ExitSignal{})
	assert.Len(t, sim.OpenPositions(), 2)
}

func TestSimulatorCloseAll(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
		ohlcBar(1, 1.10000, 1.10015, 1.09995, 1.10010),
	}

	sim, _, _ := newTestSimulator(testConfig(), bars)

	sim.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	sim.CloseAll(1, models.CloseReasonManual)

	assert.False(t, sim.HasOpenPositions())
	require.Len(t, sim.Ledger(), 1)
	assert.Equal(t, models.CloseReasonManual, sim.Ledger()[0].Reason)
}

func TestSimulatorDeterministicIDs(t *testing.T) {
	bars := []models.Bar{
		ohlcBar(0, 1.10000, 1.10005, 1.09995, 1.10000),
	}

	first, _, _ := newTestSimulator(testConfig(), bars)
	second, _, _ := newTestSimulator(testConfig(), bars)

	first.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})
	second.ProcessBar(0, EntrySignal{Buy: true}, ExitSignal{})

	require.Len(t, first.OpenPositions(), 1)
	require.Len(t, second.OpenPositions(), 1)
	assert.Equal(t, first.OpenPositions()[0].ID, second.OpenPositions()[0].ID)
}
