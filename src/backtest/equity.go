package backtest

import (
	"github.com/jiaming2012/backtest-engine/src/models"
)

const equitySampleInterval = 10

// EquityTracker accumulates realized P&L into a running balance and tracks
// unrealized equity against a high-water-mark. Balance only ever changes
// through RecordTrade.
type EquityTracker struct {
	Balance            float64
	HighWaterMark      float64
	MaxDrawdown        float64
	MaxDrawdownPercent float64
	Curve              []models.EquityCurvePoint
}

func NewEquityTracker(initialBalance float64) *EquityTracker {
	return &EquityTracker{
		Balance:       initialBalance,
		HighWaterMark: initialBalance,
	}
}

// RecordTrade applies a realized profit on position close. The high-water-mark
// is monotonically non-decreasing.
func (t *EquityTracker) RecordTrade(profit float64) {
	t.Balance += profit
	if t.Balance > t.HighWaterMark {
		t.HighWaterMark = t.Balance
	}
}

// UpdateEquity recomputes drawdown from the current unrealized P&L and samples
// the equity curve every 10th bar, plus every bar with an open position so
// drawdown detail is never lost during active trades.
func (t *EquityTracker) UpdateEquity(barIndex int, bar models.Bar, unrealized float64, hasOpenPositions bool) {
	equity := t.Balance + unrealized

	drawdown := t.HighWaterMark - equity
	if drawdown > t.MaxDrawdown {
		t.MaxDrawdown = drawdown
	}

	drawdownPercent := 0.0
	if t.HighWaterMark > 0 {
		drawdownPercent = drawdown / t.HighWaterMark
	}
	if drawdownPercent < 0 {
		drawdownPercent = 0
	}
	if drawdownPercent > t.MaxDrawdownPercent {
		t.MaxDrawdownPercent = drawdownPercent
	}

	if hasOpenPositions || barIndex%equitySampleInterval == 0 {
		t.Curve = append(t.Curve, models.EquityCurvePoint{
			BarIndex:        barIndex,
			Timestamp:       bar.Timestamp,
			Balance:         t.Balance,
			Equity:          equity,
			DrawdownPercent: drawdownPercent,
		})
	}
}
