package models

// TradeConfig is the trade-management configuration for one side of the book.
// Optional rules being nil means the behavior is disabled, not defaulted.
type TradeConfig struct {
	Direction    Direction
	Sizing       SizingParams
	StopLoss     StopLossParams
	TakeProfit   TakeProfitParams
	TrailingStop *TrailingStopParams
	Breakeven    *BreakevenParams
	PartialClose *PartialCloseParams
	TimeExit     *TimeExitParams
}
