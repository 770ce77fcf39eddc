package models

type IndicatorKind int

const (
	IndicatorKindUnknown IndicatorKind = iota
	IndicatorKindMovingAverage
	IndicatorKindRsi
	IndicatorKindStochastic
	IndicatorKindCci
	IndicatorKindMacd
	IndicatorKindBollingerBands
	IndicatorKindAtr
	IndicatorKindAdx
	IndicatorKindIchimoku
	IndicatorKindSqueeze
	IndicatorKindObv
	IndicatorKindMfi
)

func (k IndicatorKind) String() string {
	switch k {
	case IndicatorKindMovingAverage:
		return "MOVING_AVERAGE"
	case IndicatorKindRsi:
		return "RSI"
	case IndicatorKindStochastic:
		return "STOCHASTIC"
	case IndicatorKindCci:
		return "CCI"
	case IndicatorKindMacd:
		return "MACD"
	case IndicatorKindBollingerBands:
		return "BOLLINGER_BANDS"
	case IndicatorKindAtr:
		return "ATR"
	case IndicatorKindAdx:
		return "ADX"
	case IndicatorKindIchimoku:
		return "ICHIMOKU"
	case IndicatorKindSqueeze:
		return "SQUEEZE"
	case IndicatorKindObv:
		return "OBV"
	case IndicatorKindMfi:
		return "MFI"
	default:
		return "UNKNOWN"
	}
}

type MovingAverageMethod int

const (
	MovingAverageMethodSimple MovingAverageMethod = iota
	MovingAverageMethodExponential
	MovingAverageMethodWeighted
)

type MacdSignalMode int

const (
	MacdSignalModeSignalCross MacdSignalMode = iota
	MacdSignalModeZeroCross
	MacdSignalModeHistogramFlip
)

// IndicatorConfig holds the parameters of a single indicator instance. Fields
// that do not apply to a given kind are ignored by that kind's computation.
type IndicatorConfig struct {
	ID           string
	Kind         IndicatorKind
	Period       int
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	Deviation    float64
	Multiplier   float64
	Overbought   float64
	Oversold     float64
	Threshold    float64
	MAMethod     MovingAverageMethod
	MacdMode     MacdSignalMode
	TrendFilter  bool
}
