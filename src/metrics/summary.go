package metrics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/backtest-engine/src/models"
)

type SummaryInputs struct {
	InitialBalance     float64
	MaxDrawdown        float64
	MaxDrawdownPercent float64
}

// Summarize reduces a closed-trade ledger and equity curve into summary
// statistics. It performs no simulation and never mutates its inputs.
func Summarize(trades []*models.ClosedTrade, curve []models.EquityCurvePoint, inputs SummaryInputs) models.BacktestSummary {
	summary := models.BacktestSummary{
		MaxDrawdown:        inputs.MaxDrawdown,
		MaxDrawdownPercent: inputs.MaxDrawdownPercent,
		MonthlyProfit:      make(map[string]float64),
	}

	var (
		profits      []float64
		totalBars    int
		consecWins   int
		consecLosses int
		longWins     int
		shortWins    int
	)

	for _, t := range trades {
		summary.TotalTrades++
		summary.NetProfit += t.Profit
		profits = append(profits, t.Profit)
		totalBars += t.DurationBars()
		summary.MonthlyProfit[t.CloseTime.Format("2006-01")] += t.Profit

		if t.Direction == models.DirectionLong {
			summary.LongTrades++
		} else {
			summary.ShortTrades++
		}

		if t.Profit > 0 {
			summary.WinningTrades++
			summary.GrossProfit += t.Profit

			if t.Profit > summary.LargestWin {
				summary.LargestWin = t.Profit
			}

			if t.Direction == models.DirectionLong {
				longWins++
			} else {
				shortWins++
			}

			consecWins++
			consecLosses = 0
		} else {
			summary.LosingTrades++
			summary.GrossLoss += math.Abs(t.Profit)

			if t.Profit < summary.LargestLoss {
				summary.LargestLoss = t.Profit
			}

			consecLosses++
			consecWins = 0
		}

		if consecWins > summary.MaxConsecutiveWins {
			summary.MaxConsecutiveWins = consecWins
		}
		if consecLosses > summary.MaxConsecutiveLosses {
			summary.MaxConsecutiveLosses = consecLosses
		}
	}

	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.WinningTrades) / float64(summary.TotalTrades)
		summary.ExpectedPayoff = summary.NetProfit / float64(summary.TotalTrades)
		summary.AverageTradeBars = float64(totalBars) / float64(summary.TotalTrades)
	}

	if summary.WinningTrades > 0 {
		summary.AverageWin = summary.GrossProfit / float64(summary.WinningTrades)
	}

	if summary.LosingTrades > 0 {
		summary.AverageLoss = -summary.GrossLoss / float64(summary.LosingTrades)
	}

	if summary.GrossLoss > 0 {
		summary.ProfitFactor = summary.GrossProfit / summary.GrossLoss
	}

	if summary.LongTrades > 0 {
		summary.LongWinRate = float64(longWins) / float64(summary.LongTrades)
	}

	if summary.ShortTrades > 0 {
		summary.ShortWinRate = float64(shortWins) / float64(summary.ShortTrades)
	}

	summary.SharpeRatio = sharpeRatio(profits)
	summary.SortinoRatio = sortinoRatio(profits)
	summary.CalmarRatio = calmarRatio(summary.NetProfit, inputs.InitialBalance, inputs.MaxDrawdownPercent)
	summary.UlcerIndex = ulcerIndex(curve)

	if inputs.MaxDrawdown > 0 {
		summary.RecoveryFactor = summary.NetProfit / inputs.MaxDrawdown
	}

	summary.Underwater = underwaterCurve(curve)

	return summary
}

// sharpeRatio uses per-trade returns as its sampling basis.
func sharpeRatio(profits []float64) float64 {
	if len(profits) < 2 {
		return 0
	}

	mean, err := stats.Mean(profits)
	if err != nil {
		return 0
	}

	sd, err := stats.StandardDeviationSample(profits)
	if err != nil || sd == 0 {
		return 0
	}

	return mean / sd
}

// sortinoRatio penalizes only downside deviation.
func sortinoRatio(profits []float64) float64 {
	if len(profits) < 2 {
		return 0
	}

	mean, err := stats.Mean(profits)
	if err != nil {
		return 0
	}

	downsideSquared := 0.0
	for _, p := range profits {
		if p < 0 {
			downsideSquared += p * p
		}
	}

	downside := math.Sqrt(downsideSquared / float64(len(profits)))
	if downside == 0 {
		return 0
	}

	return mean / downside
}

func calmarRatio(netProfit, initialBalance, maxDrawdownPercent float64) float64 {
	if initialBalance <= 0 || maxDrawdownPercent <= 0 {
		return 0
	}

	return netProfit / initialBalance / maxDrawdownPercent
}

// ulcerIndex is the root-mean-square of the drawdown-percent series.
func ulcerIndex(curve []models.EquityCurvePoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	sumSquared := 0.0
	for _, point := range curve {
		dd := point.DrawdownPercent * 100.0
		sumSquared += dd * dd
	}

	return math.Sqrt(sumSquared / float64(len(curve)))
}

func underwaterCurve(curve []models.EquityCurvePoint) []models.UnderwaterPoint {
	out := make([]models.UnderwaterPoint, 0, len(curve))
	for _, point := range curve {
		out = append(out, models.UnderwaterPoint{
			Timestamp:       point.Timestamp,
			DrawdownPercent: point.DrawdownPercent,
		})
	}
	return out
}
