package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jiaming2012/backtest-engine/src/models"
)

func TestPatternContribution(t *testing.T) {
	t.Run("bullish engulfing", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1000, 1.1010, 1.0990, 1.1000),
			ohlcBar(1, 1.1000, 1.1005, 1.0985, 1.0990),
			ohlcBar(2, 1.0988, 1.1015, 1.0985, 1.1010),
		}

		c := patternContribution(2, bars, models.CandlestickParams{Pattern: models.CandlePatternEngulfing})
		assert.True(t, c.buy)
		assert.False(t, c.sell)
	})

	t.Run("engulfing below the body filter is ignored", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1000, 1.1010, 1.0990, 1.1000),
			ohlcBar(1, 1.1000, 1.1005, 1.0985, 1.0990),
			ohlcBar(2, 1.0988, 1.1015, 1.0985, 1.1010),
		}

		c := patternContribution(2, bars, models.CandlestickParams{Pattern: models.CandlePatternEngulfing, MinBodySize: 0.01})
		assert.False(t, c.buy)
	})

	t.Run("hammer", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1000, 1.1010, 1.0990, 1.1000),
			ohlcBar(1, 1.1000, 1.1002, 1.0970, 1.1001),
		}

		c := patternContribution(1, bars, models.CandlestickParams{Pattern: models.CandlePatternHammer})
		assert.True(t, c.buy)
		assert.False(t, c.sell)
	})

	t.Run("shooting star", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1000, 1.1010, 1.0990, 1.1000),
			ohlcBar(1, 1.1001, 1.1030, 1.0999, 1.1000),
		}

		c := patternContribution(1, bars, models.CandlestickParams{Pattern: models.CandlePatternShootingStar})
		assert.True(t, c.sell)
		assert.False(t, c.buy)
	})

	t.Run("doji contributes to both sides", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1000, 1.1010, 1.0990, 1.1000),
			ohlcBar(1, 1.1000, 1.1020, 1.0980, 1.10005),
		}

		c := patternContribution(1, bars, models.CandlestickParams{Pattern: models.CandlePatternDoji})
		assert.True(t, c.buy)
		assert.True(t, c.sell)
	})

	t.Run("morning star", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1040, 1.1045, 1.0995, 1.1000),
			ohlcBar(1, 1.0998, 1.1002, 1.0990, 1.0996),
			ohlcBar(2, 1.0998, 1.1045, 1.0995, 1.1040),
		}

		c := patternContribution(2, bars, models.CandlestickParams{Pattern: models.CandlePatternMorningStar})
		assert.True(t, c.buy)
	})

	t.Run("three white soldiers", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1000, 1.1012, 1.0998, 1.1010),
			ohlcBar(1, 1.1010, 1.1022, 1.1008, 1.1020),
			ohlcBar(2, 1.1020, 1.1032, 1.1018, 1.1030),
		}

		c := patternContribution(2, bars, models.CandlestickParams{Pattern: models.CandlePatternThreeSoldiers})
		assert.True(t, c.buy)
		assert.False(t, c.sell)
	})

	t.Run("three black crows", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1030, 1.1032, 1.1018, 1.1020),
			ohlcBar(1, 1.1020, 1.1022, 1.1008, 1.1010),
			ohlcBar(2, 1.1010, 1.1012, 1.0998, 1.1000),
		}

		c := patternContribution(2, bars, models.CandlestickParams{Pattern: models.CandlePatternThreeCrows})
		assert.True(t, c.sell)
	})

	t.Run("bullish harami", func(t *testing.T) {
		bars := []models.Bar{
			ohlcBar(0, 1.1030, 1.1035, 1.0995, 1.1000),
			ohlcBar(1, 1.1010, 1.1022, 1.1008, 1.1020),
		}

		c := patternContribution(1, bars, models.CandlestickParams{Pattern: models.CandlePatternHarami})
		assert.True(t, c.buy)
		assert.False(t, c.sell)
	})
}
