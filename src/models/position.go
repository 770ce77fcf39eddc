package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Position is the engine-owned mutable state of one open trade. StopLoss is
// the only price that moves after open (trailing/breakeven); TakeProfit is
// fixed at open.
type Position struct {
	ID            uuid.UUID
	Direction     Direction
	OpenTime      time.Time
	OpenPrice     float64
	OpenBarIndex  int
	Lots          float64
	OriginalLots  float64
	StopLoss      float64
	TakeProfit    float64
	PartialClosed bool
	Swap          float64
	Commission    float64
}

func (p Position) String() string {
	return fmt.Sprintf("%s %.2f lots @%v (sl=%v, tp=%v)", p.Direction, p.Lots, p.OpenPrice, p.StopLoss, p.TakeProfit)
}

// NewPosition takes its id from the caller so runs on identical inputs
// produce identical ledgers.
func NewPosition(id uuid.UUID, direction Direction, openTime time.Time, openPrice float64, openBarIndex int, lots, stopLoss, takeProfit float64) *Position {
	return &Position{
		ID:           id,
		Direction:    direction,
		OpenTime:     openTime,
		OpenPrice:    openPrice,
		OpenBarIndex: openBarIndex,
		Lots:         lots,
		OriginalLots: lots,
		StopLoss:     stopLoss,
		TakeProfit:   takeProfit,
	}
}
