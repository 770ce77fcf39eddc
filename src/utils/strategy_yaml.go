package utils

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/backtest-engine/src/models"
)

type IndicatorYAML struct {
	ID           string  `yaml:"id"`
	Kind         string  `yaml:"kind"`
	Period       int     `yaml:"period"`
	FastPeriod   int     `yaml:"fastPeriod"`
	SlowPeriod   int     `yaml:"slowPeriod"`
	SignalPeriod int     `yaml:"signalPeriod"`
	Deviation    float64 `yaml:"deviation"`
	Multiplier   float64 `yaml:"multiplier"`
	Overbought   float64 `yaml:"overbought"`
	Oversold     float64 `yaml:"oversold"`
	Threshold    float64 `yaml:"threshold"`
	Method       string  `yaml:"method"`
	MacdMode     string  `yaml:"macdMode"`
	TrendFilter  bool    `yaml:"trendFilter"`
}

type CandlestickYAML struct {
	Pattern     string  `yaml:"pattern"`
	MinBodySize float64 `yaml:"minBodySize"`
}

type SizingYAML struct {
	Method      string  `yaml:"method"`
	RiskPercent float64 `yaml:"riskPercent"`
	FixedLot    float64 `yaml:"fixedLot"`
}

type StopLossYAML struct {
	Method     string  `yaml:"method"`
	Distance   float64 `yaml:"distance"`
	AtrPeriod  int     `yaml:"atrPeriod"`
	Multiplier float64 `yaml:"multiplier"`
	Percent    float64 `yaml:"percent"`
}

type TakeProfitYAML struct {
	Method     string  `yaml:"method"`
	Distance   float64 `yaml:"distance"`
	RiskReward float64 `yaml:"riskReward"`
	AtrPeriod  int     `yaml:"atrPeriod"`
	Multiplier float64 `yaml:"multiplier"`
}

type TrailingStopYAML struct {
	Distance  float64 `yaml:"distance"`
	MinProfit float64 `yaml:"minProfit"`
}

type BreakevenYAML struct {
	Trigger float64 `yaml:"trigger"`
	LockIn  float64 `yaml:"lockIn"`
}

type PartialCloseYAML struct {
	ClosePercent      float64 `yaml:"closePercent"`
	TriggerDistance   float64 `yaml:"triggerDistance"`
	TriggerPercent    float64 `yaml:"triggerPercent"`
	MoveStopBreakeven bool    `yaml:"moveStopBreakeven"`
}

type TimeExitYAML struct {
	MaxBars int `yaml:"maxBars"`
}

type TradeSideYAML struct {
	Side         string            `yaml:"side"`
	Sizing       *SizingYAML       `yaml:"sizing"`
	StopLoss     *StopLossYAML     `yaml:"stopLoss"`
	TakeProfit   *TakeProfitYAML   `yaml:"takeProfit"`
	TrailingStop *TrailingStopYAML `yaml:"trailingStop"`
	Breakeven    *BreakevenYAML    `yaml:"breakeven"`
	PartialClose *PartialCloseYAML `yaml:"partialClose"`
	TimeExit     *TimeExitYAML     `yaml:"timeExit"`
}

type StrategyYAML struct {
	ConditionMode string            `yaml:"conditionMode"`
	Indicators    []IndicatorYAML   `yaml:"indicators"`
	Candlesticks  []CandlestickYAML `yaml:"candlesticks"`
	Trade         []TradeSideYAML   `yaml:"trade"`
}

func LoadStrategyFromYaml(path string) (*models.StrategyGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadStrategyFromYaml: failed to read %s: %w", path, err)
	}

	return ParseStrategyYAML(data)
}

// ParseStrategyYAML converts the YAML strategy document into the typed node
// graph the engine consumes. Unknown indicator kinds and patterns become
// NodeKindUnknown nodes so the plan builder can surface them as warnings
// instead of failing the load.
func ParseStrategyYAML(data []byte) (*models.StrategyGraph, error) {
	var doc StrategyYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ParseStrategyYAML: failed to unmarshal: %w", err)
	}

	graph := &models.StrategyGraph{
		ConditionMode: parseConditionMode(doc.ConditionMode),
	}

	for i, ind := range doc.Indicators {
		id := ind.ID
		if id == "" {
			id = fmt.Sprintf("indicator-%d", i)
		}

		kind := parseIndicatorKind(ind.Kind)
		if kind == models.IndicatorKindUnknown {
			graph.Nodes = append(graph.Nodes, models.StrategyNode{ID: id, Kind: models.NodeKindUnknown, RawKind: ind.Kind})
			continue
		}

		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:   id,
			Kind: models.NodeKindIndicator,
			Indicator: &models.IndicatorConfig{
				ID:           id,
				Kind:         kind,
				Period:       ind.Period,
				FastPeriod:   ind.FastPeriod,
				SlowPeriod:   ind.SlowPeriod,
				SignalPeriod: ind.SignalPeriod,
				Deviation:    ind.Deviation,
				Multiplier:   ind.Multiplier,
				Overbought:   ind.Overbought,
				Oversold:     ind.Oversold,
				Threshold:    ind.Threshold,
				MAMethod:     parseMAMethod(ind.Method),
				MacdMode:     parseMacdMode(ind.MacdMode),
				TrendFilter:  ind.TrendFilter,
			},
		})
	}

	for i, c := range doc.Candlesticks {
		id := fmt.Sprintf("candlestick-%d", i)

		pattern, ok := parseCandlePattern(c.Pattern)
		if !ok {
			graph.Nodes = append(graph.Nodes, models.StrategyNode{ID: id, Kind: models.NodeKindUnknown, RawKind: c.Pattern})
			continue
		}

		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:          id,
			Kind:        models.NodeKindCandlestick,
			Candlestick: &models.CandlestickParams{Pattern: pattern, MinBodySize: c.MinBodySize},
		})
	}

	for i, side := range doc.Trade {
		for _, direction := range parseSides(side.Side) {
			appendTradeNodes(graph, fmt.Sprintf("trade-%d-%s", i, strings.ToLower(direction.String())), direction, side)
		}
	}

	return graph, nil
}

func appendTradeNodes(graph *models.StrategyGraph, prefix string, direction models.Direction, side TradeSideYAML) {
	if side.Sizing != nil {
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:   prefix + "-sizing",
			Kind: models.NodeKindSizing,
			Side: direction,
			Sizing: &models.SizingParams{
				Method:      parseSizingMethod(side.Sizing.Method),
				RiskPercent: side.Sizing.RiskPercent,
				FixedLot:    side.Sizing.FixedLot,
			},
		})
	}

	if side.StopLoss != nil {
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:   prefix + "-stoploss",
			Kind: models.NodeKindStopLoss,
			Side: direction,
			StopLoss: &models.StopLossParams{
				Method:     parseStopLossMethod(side.StopLoss.Method),
				Distance:   side.StopLoss.Distance,
				AtrPeriod:  side.StopLoss.AtrPeriod,
				Multiplier: side.StopLoss.Multiplier,
				Percent:    side.StopLoss.Percent,
			},
		})
	}

	if side.TakeProfit != nil {
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:   prefix + "-takeprofit",
			Kind: models.NodeKindTakeProfit,
			Side: direction,
			TakeProfit: &models.TakeProfitParams{
				Method:     parseTakeProfitMethod(side.TakeProfit.Method),
				Distance:   side.TakeProfit.Distance,
				RiskReward: side.TakeProfit.RiskReward,
				AtrPeriod:  side.TakeProfit.AtrPeriod,
				Multiplier: side.TakeProfit.Multiplier,
			},
		})
	}

	if side.TrailingStop != nil {
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:           prefix + "-trailing",
			Kind:         models.NodeKindTrailingStop,
			Side:         direction,
			TrailingStop: &models.TrailingStopParams{Distance: side.TrailingStop.Distance, MinProfit: side.TrailingStop.MinProfit},
		})
	}

	if side.Breakeven != nil {
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:        prefix + "-breakeven",
			Kind:      models.NodeKindBreakeven,
			Side:      direction,
			Breakeven: &models.BreakevenParams{Trigger: side.Breakeven.Trigger, LockIn: side.Breakeven.LockIn},
		})
	}

	if side.PartialClose != nil {
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:   prefix + "-partialclose",
			Kind: models.NodeKindPartialClose,
			Side: direction,
			PartialClose: &models.PartialCloseParams{
				ClosePercent:      side.PartialClose.ClosePercent,
				TriggerDistance:   side.PartialClose.TriggerDistance,
				TriggerPercent:    side.PartialClose.TriggerPercent,
				MoveStopBreakeven: side.PartialClose.MoveStopBreakeven,
			},
		})
	}

	if side.TimeExit != nil {
		graph.Nodes = append(graph.Nodes, models.StrategyNode{
			ID:       prefix + "-timeexit",
			Kind:     models.NodeKindTimeExit,
			Side:     direction,
			TimeExit: &models.TimeExitParams{MaxBars: side.TimeExit.MaxBars},
		})
	}
}

func parseConditionMode(s string) models.ConditionMode {
	if strings.EqualFold(s, "any") || strings.EqualFold(s, "or") {
		return models.ConditionModeAny
	}
	return models.ConditionModeAll
}

func parseSides(s string) []models.Direction {
	switch strings.ToLower(s) {
	case "long", "buy":
		return []models.Direction{models.DirectionLong}
	case "short", "sell":
		return []models.Direction{models.DirectionShort}
	default:
		return []models.Direction{models.DirectionLong, models.DirectionShort}
	}
}

func parseIndicatorKind(s string) models.IndicatorKind {
	switch strings.ToUpper(s) {
	case "MOVING_AVERAGE", "MA", "SMA", "EMA":
		return models.IndicatorKindMovingAverage
	case "RSI":
		return models.IndicatorKindRsi
	case "STOCHASTIC":
		return models.IndicatorKindStochastic
	case "CCI":
		return models.IndicatorKindCci
	case "MACD":
		return models.IndicatorKindMacd
	case "BOLLINGER_BANDS", "BOLLINGER":
		return models.IndicatorKindBollingerBands
	case "ATR":
		return models.IndicatorKindAtr
	case "ADX":
		return models.IndicatorKindAdx
	case "ICHIMOKU":
		return models.IndicatorKindIchimoku
	case "SQUEEZE":
		return models.IndicatorKindSqueeze
	case "OBV":
		return models.IndicatorKindObv
	case "MFI":
		return models.IndicatorKindMfi
	default:
		return models.IndicatorKindUnknown
	}
}

func parseMAMethod(s string) models.MovingAverageMethod {
	switch strings.ToUpper(s) {
	case "EMA", "EXPONENTIAL":
		return models.MovingAverageMethodExponential
	case "WMA", "WEIGHTED":
		return models.MovingAverageMethodWeighted
	default:
		return models.MovingAverageMethodSimple
	}
}

func parseMacdMode(s string) models.MacdSignalMode {
	switch strings.ToUpper(s) {
	case "ZERO_CROSS":
		return models.MacdSignalModeZeroCross
	case "HISTOGRAM":
		return models.MacdSignalModeHistogramFlip
	default:
		return models.MacdSignalModeSignalCross
	}
}

func parseCandlePattern(s string) (models.CandlePattern, bool) {
	switch strings.ToUpper(s) {
	case "ENGULFING":
		return models.CandlePatternEngulfing, true
	case "HAMMER":
		return models.CandlePatternHammer, true
	case "SHOOTING_STAR":
		return models.CandlePatternShootingStar, true
	case "DOJI":
		return models.CandlePatternDoji, true
	case "MORNING_STAR":
		return models.CandlePatternMorningStar, true
	case "EVENING_STAR":
		return models.CandlePatternEveningStar, true
	case "THREE_SOLDIERS":
		return models.CandlePatternThreeSoldiers, true
	case "THREE_CROWS":
		return models.CandlePatternThreeCrows, true
	case "HARAMI":
		return models.CandlePatternHarami, true
	default:
		return 0, false
	}
}

func parseSizingMethod(s string) models.SizingMethod {
	if strings.EqualFold(s, "FIXED_LOT") || strings.EqualFold(s, "FIXED") {
		return models.SizingMethodFixedLot
	}
	return models.SizingMethodRiskPercent
}

func parseStopLossMethod(s string) models.StopLossMethod {
	switch strings.ToUpper(s) {
	case "ATR_MULTIPLE", "ATR":
		return models.StopLossMethodAtrMultiple
	case "PERCENT_PRICE", "PERCENT":
		return models.StopLossMethodPercentPrice
	default:
		return models.StopLossMethodFixedDistance
	}
}

func parseTakeProfitMethod(s string) models.TakeProfitMethod {
	switch strings.ToUpper(s) {
	case "RISK_REWARD", "RR":
		return models.TakeProfitMethodRiskReward
	case "ATR_MULTIPLE", "ATR":
		return models.TakeProfitMethodAtrMultiple
	default:
		return models.TakeProfitMethodFixedDistance
	}
}
