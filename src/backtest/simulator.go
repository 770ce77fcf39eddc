package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// Fallback distances in points when an ATR-based rule has no indicator value
// available at the bar being processed.
const fallbackStopPoints = 50.0
const fallbackTargetPoints = 100.0

// Simulator owns the position lifecycle: Flat -> Open -> (Adjusting)* ->
// Closed. At most one position per direction is open at a time. All state is
// instance-scoped; two simulators never share anything mutable.
type Simulator struct {
	cfg     *models.BacktestConfig
	plan    *EvaluationPlan
	bars    []models.Bar
	tracker *EquityTracker
	open    []*models.Position
	ledger  []*models.ClosedTrade
	seq     int
}

// nextPositionID derives ids from the open sequence so identical runs yield
// byte-identical ledgers.
func (s *Simulator) nextPositionID() uuid.UUID {
	s.seq++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s-position-%d", s.cfg.Symbol, s.seq)))
}

func NewSimulator(cfg *models.BacktestConfig, plan *EvaluationPlan, bars []models.Bar, tracker *EquityTracker) *Simulator {
	return &Simulator{
		cfg:     cfg,
		plan:    plan,
		bars:    bars,
		tracker: tracker,
	}
}

func (s *Simulator) Ledger() []*models.ClosedTrade {
	return s.ledger
}

func (s *Simulator) OpenPositions() []*models.Position {
	return s.open
}

func (s *Simulator) HasOpenPositions() bool {
	return len(s.open) > 0
}

func (s *Simulator) halfSpread() float64 {
	return s.cfg.Spread / 2.0 * s.cfg.PointSize()
}

// exitPrice is the price a position would close at: longs sell at the bid,
// shorts buy back at the ask.
func (s *Simulator) exitPrice(direction models.Direction, price float64) float64 {
	if direction == models.DirectionLong {
		return price - s.halfSpread()
	}
	return price + s.halfSpread()
}

// ProcessBar runs one bar of the state machine: stop/target checks first,
// then stop adjustments, then time and opposite-signal exits, then entries.
func (s *Simulator) ProcessBar(barIndex int, entry EntrySignal, exit ExitSignal) {
	bar := s.bars[barIndex]

	for _, p := range s.openSnapshot() {
		s.accrueSwap(p, barIndex)

		if s.checkStopAndTarget(p, barIndex, bar) {
			continue
		}

		s.applyTrailingStop(p, bar)
		s.applyBreakeven(p, bar)
		s.applyPartialClose(p, barIndex, bar)

		if p.Lots <= 0 {
			continue
		}

		if s.checkTimeExit(p, barIndex, bar) {
			continue
		}

		s.checkSignalExit(p, barIndex, bar, exit)
	}

	if entry.Buy && !s.hasOpenPosition(models.DirectionLong) {
		s.openPosition(models.DirectionLong, barIndex, bar)
	}

	if entry.Sell && !s.hasOpenPosition(models.DirectionShort) {
		s.openPosition(models.DirectionShort, barIndex, bar)
	}
}

// CloseAll force-closes every open position at the last bar's close.
func (s *Simulator) CloseAll(barIndex int, reason models.CloseReason) {
	bar := s.bars[barIndex]
	for _, p := range s.openSnapshot() {
		s.closePosition(p, barIndex, bar.Timestamp, s.exitPrice(p.Direction, bar.Close), p.Lots, reason)
	}
}

// UnrealizedProfit sums the floating P&L of all open positions at the bar's
// close, net of round-trip commission and accrued swap.
func (s *Simulator) UnrealizedProfit(barIndex int) float64 {
	bar := s.bars[barIndex]

	total := 0.0
	for _, p := range s.open {
		total += s.profit(p.Direction, p.OpenPrice, s.exitPrice(p.Direction, bar.Close), p.Lots) -
			s.roundTripCommission(p.Lots) + p.Swap
	}

	return total
}

func (s *Simulator) openSnapshot() []*models.Position {
	snapshot := make([]*models.Position, len(s.open))
	copy(snapshot, s.open)
	return snapshot
}

func (s *Simulator) hasOpenPosition(direction models.Direction) bool {
	for _, p := range s.open {
		if p.Direction == direction {
			return true
		}
	}
	return false
}

func (s *Simulator) tradeConfig(direction models.Direction) *models.TradeConfig {
	if direction == models.DirectionLong {
		return &s.plan.LongConfig
	}
	return &s.plan.ShortConfig
}

func (s *Simulator) openPosition(direction models.Direction, barIndex int, bar models.Bar) {
	tc := s.tradeConfig(direction)
	point := s.cfg.PointSize()

	var entryPrice float64
	if direction == models.DirectionLong {
		entryPrice = bar.Close + s.halfSpread()
	} else {
		entryPrice = bar.Close - s.halfSpread()
	}

	// Stop-loss first: sizing and the risk-reward target both depend on the
	// realized stop distance.
	stopDistance := s.stopDistance(tc, barIndex, entryPrice)

	var stopLoss float64
	if direction == models.DirectionLong {
		stopLoss = entryPrice - stopDistance
	} else {
		stopLoss = entryPrice + stopDistance
	}

	lots := s.positionSize(tc, stopDistance)
	if lots <= 0 {
		return
	}

	var targetDistance float64
	switch tc.TakeProfit.Method {
	case models.TakeProfitMethodRiskReward:
		targetDistance = tc.TakeProfit.RiskReward * stopDistance
	case models.TakeProfitMethodAtrMultiple:
		if atr, ok := s.plan.AtrValue(normalizeAtrPeriod(tc.TakeProfit.AtrPeriod), barIndex); ok {
			targetDistance = tc.TakeProfit.Multiplier * atr
		} else {
			targetDistance = fallbackTargetPoints * point
		}
	default:
		targetDistance = tc.TakeProfit.Distance * point
	}

	var takeProfit float64
	if direction == models.DirectionLong {
		takeProfit = entryPrice + targetDistance
	} else {
		takeProfit = entryPrice - targetDistance
	}

	position := models.NewPosition(s.nextPositionID(), direction, bar.Timestamp, entryPrice, barIndex, lots, stopLoss, takeProfit)
	position.Commission = s.roundTripCommission(lots)
	s.open = append(s.open, position)
}

func (s *Simulator) stopDistance(tc *models.TradeConfig, barIndex int, entryPrice float64) float64 {
	point := s.cfg.PointSize()

	switch tc.StopLoss.Method {
	case models.StopLossMethodAtrMultiple:
		if atr, ok := s.plan.AtrValue(normalizeAtrPeriod(tc.StopLoss.AtrPeriod), barIndex); ok {
			return tc.StopLoss.Multiplier * atr
		}
		return fallbackStopPoints * point
	case models.StopLossMethodPercentPrice:
		return entryPrice * tc.StopLoss.Percent / 100.0
	default:
		if tc.StopLoss.Distance <= 0 {
			return fallbackStopPoints * point
		}
		return tc.StopLoss.Distance * point
	}
}

// positionSize derives lots from the sizing rule, floors them to the lot step
// and clamps to the configured bounds.
func (s *Simulator) positionSize(tc *models.TradeConfig, stopDistance float64) float64 {
	var lots float64

	switch tc.Sizing.Method {
	case models.SizingMethodRiskPercent:
		riskAmount := s.tracker.Balance * tc.Sizing.RiskPercent / 100.0
		stopPoints := stopDistance / s.cfg.PointSize()
		riskPerLot := stopPoints * s.cfg.PointValue
		if riskPerLot <= 0 {
			return 0
		}
		lots = riskAmount / riskPerLot
	default:
		lots = tc.Sizing.FixedLot
	}

	lots = math.Floor(lots/s.cfg.LotStep) * s.cfg.LotStep

	if lots < s.cfg.MinLot {
		lots = s.cfg.MinLot
	}
	if lots > s.cfg.MaxLot {
		lots = s.cfg.MaxLot
	}

	return lots
}

func (s *Simulator) accrueSwap(p *models.Position, barIndex int) {
	if barIndex <= p.OpenBarIndex {
		return
	}

	if p.Direction == models.DirectionLong {
		p.Swap += s.cfg.SwapLong * p.Lots
	} else {
		p.Swap += s.cfg.SwapShort * p.Lots
	}
}

// checkStopAndTarget resolves intra-bar stop and target touches. When both
// could have been hit within the same bar's range the stop-loss wins: true
// intra-bar sequencing is unrecoverable from OHLC alone, so the engine takes
// the conservative fill. Returns true if the position was closed.
func (s *Simulator) checkStopAndTarget(p *models.Position, barIndex int, bar models.Bar) bool {
	if p.Direction == models.DirectionLong {
		exitLow := s.exitPrice(p.Direction, bar.Low)
		exitHigh := s.exitPrice(p.Direction, bar.High)

		if p.StopLoss > 0 && LessThanOrEqual(exitLow, p.StopLoss) {
			s.closePosition(p, barIndex, bar.Timestamp, p.StopLoss, p.Lots, models.CloseReasonStopLoss)
			return true
		}

		if p.TakeProfit > 0 && GreaterThanOrEqual(exitHigh, p.TakeProfit) {
			s.closePosition(p, barIndex, bar.Timestamp, p.TakeProfit, p.Lots, models.CloseReasonTakeProfit)
			return true
		}

		return false
	}

	exitLow := s.exitPrice(p.Direction, bar.Low)
	exitHigh := s.exitPrice(p.Direction, bar.High)

	if p.StopLoss > 0 && GreaterThanOrEqual(exitHigh, p.StopLoss) {
		s.closePosition(p, barIndex, bar.Timestamp, p.StopLoss, p.Lots, models.CloseReasonStopLoss)
		return true
	}

	if p.TakeProfit > 0 && LessThanOrEqual(exitLow, p.TakeProfit) {
		s.closePosition(p, barIndex, bar.Timestamp, p.TakeProfit, p.Lots, models.CloseReasonTakeProfit)
		return true
	}

	return false
}

// applyTrailingStop only ever tightens: the candidate must beat both the
// current stop and the entry price, and trailing engages only after the
// configured minimum profit distance.
func (s *Simulator) applyTrailingStop(p *models.Position, bar models.Bar) {
	tc := s.tradeConfig(p.Direction)
	if tc.TrailingStop == nil {
		return
	}

	point := s.cfg.PointSize()
	current := s.exitPrice(p.Direction, bar.Close)
	minProfit := tc.TrailingStop.MinProfit * point
	trailDistance := tc.TrailingStop.Distance * point

	if p.Direction == models.DirectionLong {
		if current-p.OpenPrice < minProfit {
			return
		}

		candidate := current - trailDistance
		if GreaterThan(candidate, p.StopLoss) && GreaterThan(candidate, p.OpenPrice) {
			p.StopLoss = candidate
		}
		return
	}

	if p.OpenPrice-current < minProfit {
		return
	}

	candidate := current + trailDistance
	if (p.StopLoss == 0 || LessThan(candidate, p.StopLoss)) && LessThan(candidate, p.OpenPrice) {
		p.StopLoss = candidate
	}
}

// applyBreakeven moves the stop to entry plus the lock-in offset once profit
// crosses the trigger distance, accepted only if more favorable than the
// current stop.
func (s *Simulator) applyBreakeven(p *models.Position, bar models.Bar) {
	tc := s.tradeConfig(p.Direction)
	if tc.Breakeven == nil {
		return
	}

	point := s.cfg.PointSize()
	current := s.exitPrice(p.Direction, bar.Close)
	trigger := tc.Breakeven.Trigger * point
	lockIn := tc.Breakeven.LockIn * point

	if p.Direction == models.DirectionLong {
		if current-p.OpenPrice < trigger {
			return
		}

		candidate := p.OpenPrice + lockIn
		if GreaterThan(candidate, p.StopLoss) {
			p.StopLoss = candidate
		}
		return
	}

	if p.OpenPrice-current < trigger {
		return
	}

	candidate := p.OpenPrice - lockIn
	if p.StopLoss == 0 || LessThan(candidate, p.StopLoss) {
		p.StopLoss = candidate
	}
}

// applyPartialClose executes at most once per position, triggered by profit
// in distance or in percent of the open price.
func (s *Simulator) applyPartialClose(p *models.Position, barIndex int, bar models.Bar) {
	tc := s.tradeConfig(p.Direction)
	if tc.PartialClose == nil || p.PartialClosed {
		return
	}

	point := s.cfg.PointSize()
	current := s.exitPrice(p.Direction, bar.Close)

	var profitDistance float64
	if p.Direction == models.DirectionLong {
		profitDistance = current - p.OpenPrice
	} else {
		profitDistance = p.OpenPrice - current
	}

	triggered := false
	if tc.PartialClose.TriggerDistance > 0 && profitDistance >= tc.PartialClose.TriggerDistance*point {
		triggered = true
	}
	if tc.PartialClose.TriggerPercent > 0 && p.OpenPrice > 0 &&
		profitDistance/p.OpenPrice*100.0 >= tc.PartialClose.TriggerPercent {
		triggered = true
	}

	if !triggered {
		return
	}

	closeLots := math.Floor(p.OriginalLots*tc.PartialClose.ClosePercent/100.0/s.cfg.LotStep) * s.cfg.LotStep
	if closeLots <= 0 {
		p.PartialClosed = true
		return
	}

	if closeLots >= p.Lots {
		s.closePosition(p, barIndex, bar.Timestamp, current, p.Lots, models.CloseReasonRiskMgmt)
		return
	}

	s.closePosition(p, barIndex, bar.Timestamp, current, closeLots, models.CloseReasonRiskMgmt)
	p.PartialClosed = true

	if tc.PartialClose.MoveStopBreakeven {
		if p.Direction == models.DirectionLong {
			if GreaterThan(p.OpenPrice, p.StopLoss) {
				p.StopLoss = p.OpenPrice
			}
		} else {
			if p.StopLoss == 0 || LessThan(p.OpenPrice, p.StopLoss) {
				p.StopLoss = p.OpenPrice
			}
		}
	}
}

func (s *Simulator) checkTimeExit(p *models.Position, barIndex int, bar models.Bar) bool {
	tc := s.tradeConfig(p.Direction)
	if tc.TimeExit == nil || tc.TimeExit.MaxBars <= 0 {
		return false
	}

	if barIndex-p.OpenBarIndex < tc.TimeExit.MaxBars {
		return false
	}

	s.closePosition(p, barIndex, bar.Timestamp, s.exitPrice(p.Direction, bar.Close), p.Lots, models.CloseReasonRiskMgmt)
	return true
}

func (s *Simulator) checkSignalExit(p *models.Position, barIndex int, bar models.Bar, exit ExitSignal) bool {
	closeIt := (p.Direction == models.DirectionLong && exit.CloseBuy) ||
		(p.Direction == models.DirectionShort && exit.CloseSell)
	if !closeIt {
		return false
	}

	s.closePosition(p, barIndex, bar.Timestamp, s.exitPrice(p.Direction, bar.Close), p.Lots, models.CloseReasonSignal)
	return true
}

func (s *Simulator) profit(direction models.Direction, openPrice, closePrice, lots float64) float64 {
	var diff float64
	if direction == models.DirectionLong {
		diff = closePrice - openPrice
	} else {
		diff = openPrice - closePrice
	}

	return diff / s.cfg.PointSize() * s.cfg.PointValue * lots
}

// roundTripCommission charges both sides symmetrically regardless of
// direction.
func (s *Simulator) roundTripCommission(lots float64) float64 {
	return s.cfg.Commission * lots * 2.0
}

// closePosition realizes part or all of a position into the ledger. Swap is
// apportioned by closed lots; commission is the round trip on the closed
// lots. A full close removes the position from the open set.
func (s *Simulator) closePosition(p *models.Position, barIndex int, closeTime time.Time, closePrice, lots float64, reason models.CloseReason) {
	if lots > p.Lots {
		lots = p.Lots
	}
	if lots <= 0 {
		return
	}

	swapShare := 0.0
	if p.Lots > 0 {
		swapShare = p.Swap * lots / p.Lots
	}

	commission := s.roundTripCommission(lots)
	realized := s.profit(p.Direction, p.OpenPrice, closePrice, lots) - commission + swapShare

	s.ledger = append(s.ledger, &models.ClosedTrade{
		ID:            p.ID,
		Direction:     p.Direction,
		OpenTime:      p.OpenTime,
		CloseTime:     closeTime,
		OpenPrice:     p.OpenPrice,
		ClosePrice:    closePrice,
		Lots:          lots,
		Profit:        realized,
		Swap:          swapShare,
		Commission:    commission,
		Reason:        reason,
		OpenBarIndex:  p.OpenBarIndex,
		CloseBarIndex: barIndex,
	})

	s.tracker.RecordTrade(realized)

	p.Lots -= lots
	p.Swap -= swapShare

	if p.Lots < s.cfg.LotStep/2 {
		s.removePosition(p)
	}
}

func (s *Simulator) removePosition(target *models.Position) {
	for i, p := range s.open {
		if p.ID == target.ID {
			s.open = append(s.open[:i], s.open[i+1:]...)
			return
		}
	}
}
