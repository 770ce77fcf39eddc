package models

import "math"

// BacktestConfig describes the account and symbol the simulation runs against.
// Spread is quoted in points, Commission per lot per side.
type BacktestConfig struct {
	InitialBalance     float64
	Symbol             string
	Spread             float64
	Commission         float64
	Digits             int
	PointValue         float64
	LotStep            float64
	MinLot             float64
	MaxLot             float64
	SwapLong           float64
	SwapShort          float64
	RequoteProbability float64
}

// PointSize returns the price value of one point for the configured precision.
func (c *BacktestConfig) PointSize() float64 {
	return math.Pow(10, -float64(c.Digits))
}

func (c *BacktestConfig) Validate() error {
	if c.InitialBalance <= 0 {
		return InvalidBalanceErr
	}

	if c.LotStep <= 0 {
		return InvalidLotStepErr
	}

	if c.PointValue <= 0 {
		return InvalidPointValueErr
	}

	if c.MinLot <= 0 || c.MinLot > c.MaxLot {
		return InvalidLotRangeErr
	}

	if c.Digits < 0 {
		return InvalidDigitsErr
	}

	if c.Spread < 0 {
		return InvalidSpreadErr
	}

	return nil
}

func NewBacktestConfig(initialBalance float64, symbol string) *BacktestConfig {
	return &BacktestConfig{
		InitialBalance: initialBalance,
		Symbol:         symbol,
		Spread:         0,
		Commission:     0,
		Digits:         5,
		PointValue:     1.0,
		LotStep:        0.01,
		MinLot:         0.01,
		MaxLot:         100.0,
	}
}
