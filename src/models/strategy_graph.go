package models

type NodeKind int

const (
	NodeKindUnknown NodeKind = iota
	NodeKindIndicator
	NodeKindCandlestick
	NodeKindSizing
	NodeKindStopLoss
	NodeKindTakeProfit
	NodeKindTrailingStop
	NodeKindBreakeven
	NodeKindPartialClose
	NodeKindTimeExit
)

type ConditionMode int

const (
	ConditionModeAll ConditionMode = iota
	ConditionModeAny
)

type CandlePattern int

const (
	CandlePatternEngulfing CandlePattern = iota
	CandlePatternHammer
	CandlePatternShootingStar
	CandlePatternDoji
	CandlePatternMorningStar
	CandlePatternEveningStar
	CandlePatternThreeSoldiers
	CandlePatternThreeCrows
	CandlePatternHarami
)

type CandlestickParams struct {
	Pattern     CandlePattern
	MinBodySize float64
}

type SizingMethod int

const (
	SizingMethodRiskPercent SizingMethod = iota
	SizingMethodFixedLot
)

type SizingParams struct {
	Method      SizingMethod
	RiskPercent float64
	FixedLot    float64
}

type StopLossMethod int

const (
	StopLossMethodFixedDistance StopLossMethod = iota
	StopLossMethodAtrMultiple
	StopLossMethodPercentPrice
)

// StopLossParams distances are quoted in points.
type StopLossParams struct {
	Method     StopLossMethod
	Distance   float64
	AtrPeriod  int
	Multiplier float64
	Percent    float64
}

type TakeProfitMethod int

const (
	TakeProfitMethodFixedDistance TakeProfitMethod = iota
	TakeProfitMethodRiskReward
	TakeProfitMethodAtrMultiple
)

type TakeProfitParams struct {
	Method     TakeProfitMethod
	Distance   float64
	RiskReward float64
	AtrPeriod  int
	Multiplier float64
}

// TrailingStopParams: Distance is the gap kept behind price, MinProfit is the
// profit (both in points) required before trailing engages.
type TrailingStopParams struct {
	Distance  float64
	MinProfit float64
}

type BreakevenParams struct {
	Trigger float64
	LockIn  float64
}

type PartialCloseParams struct {
	ClosePercent      float64
	TriggerDistance   float64
	TriggerPercent    float64
	MoveStopBreakeven bool
}

type TimeExitParams struct {
	MaxBars int
}

// StrategyNode is a closed tagged variant over the supported node kinds. Only
// the parameter struct matching Kind is set; all others are nil. Unsupported
// kinds arrive as NodeKindUnknown with RawKind holding the original label.
type StrategyNode struct {
	ID      string
	Kind    NodeKind
	RawKind string
	Side    Direction

	Indicator    *IndicatorConfig
	Candlestick  *CandlestickParams
	Sizing       *SizingParams
	StopLoss     *StopLossParams
	TakeProfit   *TakeProfitParams
	TrailingStop *TrailingStopParams
	Breakeven    *BreakevenParams
	PartialClose *PartialCloseParams
	TimeExit     *TimeExitParams
}

type Edge struct {
	From string
	To   string
}

// StrategyGraph is the read-only strategy definition supplied by the caller.
// The engine never mutates it.
type StrategyGraph struct {
	Nodes         []StrategyNode
	Edges         []Edge
	ConditionMode ConditionMode
}
