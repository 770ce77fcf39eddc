package backtest

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// patternContribution detects one candlestick pattern at the given bar using
// raw OHLC relationships across the current and up to two prior bars. The
// min-body filter is in price-distance units and applies to the bar that
// carries the pattern's conviction.
func patternContribution(i int, bars []models.Bar, params models.CandlestickParams) contribution {
	cur := bars[i]
	prev := bars[i-1]

	switch params.Pattern {
	case models.CandlePatternEngulfing:
		if cur.Body() < params.MinBodySize {
			return contribution{}
		}

		bullish := prev.IsBearish() && cur.IsBullish() &&
			GreaterThanOrEqual(cur.Close, prev.Open) && LessThanOrEqual(cur.Open, prev.Close)
		bearish := prev.IsBullish() && cur.IsBearish() &&
			LessThanOrEqual(cur.Close, prev.Open) && GreaterThanOrEqual(cur.Open, prev.Close)

		return contribution{buy: bullish, sell: bearish}

	case models.CandlePatternHammer:
		return contribution{buy: isHammer(cur, params.MinBodySize)}

	case models.CandlePatternShootingStar:
		return contribution{sell: isShootingStar(cur, params.MinBodySize)}

	case models.CandlePatternDoji:
		// Indecision: contributes to both sides so either entry can gate on it.
		doji := isDoji(cur)
		return contribution{buy: doji, sell: doji}

	case models.CandlePatternMorningStar:
		first := bars[i-2]
		ok := first.IsBearish() && first.Body() >= params.MinBodySize &&
			prev.Body() < first.Body()/2 &&
			cur.IsBullish() && cur.Body() >= params.MinBodySize &&
			GreaterThan(cur.Close, (first.Open+first.Close)/2)
		return contribution{buy: ok}

	case models.CandlePatternEveningStar:
		first := bars[i-2]
		ok := first.IsBullish() && first.Body() >= params.MinBodySize &&
			prev.Body() < first.Body()/2 &&
			cur.IsBearish() && cur.Body() >= params.MinBodySize &&
			LessThan(cur.Close, (first.Open+first.Close)/2)
		return contribution{sell: ok}

	case models.CandlePatternThreeSoldiers:
		first := bars[i-2]
		ok := first.IsBullish() && prev.IsBullish() && cur.IsBullish() &&
			first.Body() >= params.MinBodySize && prev.Body() >= params.MinBodySize && cur.Body() >= params.MinBodySize &&
			GreaterThan(prev.Close, first.Close) && GreaterThan(cur.Close, prev.Close)
		return contribution{buy: ok}

	case models.CandlePatternThreeCrows:
		first := bars[i-2]
		ok := first.IsBearish() && prev.IsBearish() && cur.IsBearish() &&
			first.Body() >= params.MinBodySize && prev.Body() >= params.MinBodySize && cur.Body() >= params.MinBodySize &&
			LessThan(prev.Close, first.Close) && LessThan(cur.Close, prev.Close)
		return contribution{sell: ok}

	case models.CandlePatternHarami:
		if prev.Body() < params.MinBodySize {
			return contribution{}
		}

		inside := LessThanOrEqual(math.Max(cur.Open, cur.Close), math.Max(prev.Open, prev.Close)) &&
			GreaterThanOrEqual(math.Min(cur.Open, cur.Close), math.Min(prev.Open, prev.Close))

		return contribution{
			buy:  inside && prev.IsBearish() && cur.IsBullish(),
			sell: inside && prev.IsBullish() && cur.IsBearish(),
		}

	default:
		return contribution{}
	}
}

func isHammer(b models.Bar, minBody float64) bool {
	body := b.Body()
	if body < minBody {
		return false
	}

	upperWick := b.High - math.Max(b.Open, b.Close)
	lowerWick := math.Min(b.Open, b.Close) - b.Low

	return lowerWick >= 2*body && upperWick <= body
}

func isShootingStar(b models.Bar, minBody float64) bool {
	body := b.Body()
	if body < minBody {
		return false
	}

	upperWick := b.High - math.Max(b.Open, b.Close)
	lowerWick := math.Min(b.Open, b.Close) - b.Low

	return upperWick >= 2*body && lowerWick <= body
}

func isDoji(b models.Bar) bool {
	barRange := b.High - b.Low
	if barRange <= 0 {
		return false
	}

	return b.Body()/barRange <= 0.1
}
