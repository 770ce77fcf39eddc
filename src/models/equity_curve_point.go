package models

import "time"

type EquityCurvePoint struct {
	BarIndex        int
	Timestamp       time.Time
	Balance         float64
	Equity          float64
	DrawdownPercent float64
}
