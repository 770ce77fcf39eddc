package models

import (
	"time"
)

// BacktestSummary is the reduction of a closed-trade ledger and equity curve
// into summary statistics. Produced by the metrics package; carried here so
// results and their inputs share one package.
type BacktestSummary struct {
	TotalTrades          int
	WinningTrades        int
	LosingTrades         int
	WinRate              float64
	NetProfit            float64
	GrossProfit          float64
	GrossLoss            float64
	ProfitFactor         float64
	LargestWin           float64
	LargestLoss          float64
	AverageWin           float64
	AverageLoss          float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	SharpeRatio          float64
	SortinoRatio         float64
	CalmarRatio          float64
	UlcerIndex           float64
	RecoveryFactor       float64
	ExpectedPayoff       float64
	AverageTradeBars     float64
	MaxDrawdown          float64
	MaxDrawdownPercent   float64
	LongTrades           int
	ShortTrades          int
	LongWinRate          float64
	ShortWinRate         float64
	MonthlyProfit        map[string]float64
	Underwater           []UnderwaterPoint
}

type UnderwaterPoint struct {
	Timestamp       time.Time
	DrawdownPercent float64
}

type BacktestResult struct {
	Summary       BacktestSummary
	Trades        []*ClosedTrade
	EquityCurve   []EquityCurvePoint
	Warnings      []string
	BarsProcessed int
	Duration      time.Duration
}

type WalkForwardWindow struct {
	Index             int
	InSampleStart     int
	InSampleEnd       int
	OutOfSampleEnd    int
	InSample          *BacktestResult
	OutOfSample       *BacktestResult
	InSampleProfit    float64
	OutOfSampleProfit float64
}

type WalkForwardResult struct {
	Windows                []WalkForwardWindow
	TotalInSampleProfit    float64
	TotalOutOfSampleProfit float64
	WalkForwardEfficiency  float64
}
