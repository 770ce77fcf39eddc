package models

import (
	"time"

	"github.com/google/uuid"
)

type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "SL"
	CloseReasonTakeProfit CloseReason = "TP"
	CloseReasonSignal     CloseReason = "SIGNAL"
	CloseReasonRiskMgmt   CloseReason = "RISK_MGMT"
	CloseReasonManual     CloseReason = "MANUAL"
)

// ClosedTrade is written once when a position (or part of one) is closed and
// never modified afterwards. The ledger is an append-only ordered sequence.
type ClosedTrade struct {
	ID            uuid.UUID
	Direction     Direction
	OpenTime      time.Time
	CloseTime     time.Time
	OpenPrice     float64
	ClosePrice    float64
	Lots          float64
	Profit        float64
	Swap          float64
	Commission    float64
	Reason        CloseReason
	OpenBarIndex  int
	CloseBarIndex int
}

func (t ClosedTrade) DurationBars() int {
	return t.CloseBarIndex - t.OpenBarIndex
}
