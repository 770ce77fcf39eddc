package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/backtest-engine/src/models"
)

func barsFromCloses(closes []float64) []models.Bar {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000,
		}
	}

	return bars
}

func TestComputeMovingAverage(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		bars := barsFromCloses([]float64{1, 2, 3, 4, 5, 6})

		buffers, err := Compute(bars, models.IndicatorConfig{Kind: models.IndicatorKindMovingAverage, Period: 3})
		require.NoError(t, err)

		assert.True(t, math.IsNaN(buffers.Value[0]))
		assert.True(t, math.IsNaN(buffers.Value[1]))
		assert.InDelta(t, 2.0, buffers.Value[2], 1e-9)
		assert.InDelta(t, 3.0, buffers.Value[3], 1e-9)
		assert.InDelta(t, 5.0, buffers.Value[5], 1e-9)
	})

	t.Run("exponential seeds with simple average", func(t *testing.T) {
		bars := barsFromCloses([]float64{2, 4, 6, 8})

		buffers, err := Compute(bars, models.IndicatorConfig{
			Kind:     models.IndicatorKindMovingAverage,
			Period:   3,
			MAMethod: models.MovingAverageMethodExponential,
		})
		require.NoError(t, err)

		assert.InDelta(t, 4.0, buffers.Value[2], 1e-9)

		// k = 2/(3+1) = 0.5 -> 8*0.5 + 4*0.5
		assert.InDelta(t, 6.0, buffers.Value[3], 1e-9)
	})

	t.Run("weighted", func(t *testing.T) {
		bars := barsFromCloses([]float64{1, 2, 3})

		buffers, err := Compute(bars, models.IndicatorConfig{
			Kind:     models.IndicatorKindMovingAverage,
			Period:   3,
			MAMethod: models.MovingAverageMethodWeighted,
		})
		require.NoError(t, err)

		// (3*3 + 2*2 + 1*1) / 6
		assert.InDelta(t, 14.0/6.0, buffers.Value[2], 1e-9)
	})
}

func TestComputeRsi(t *testing.T) {
	t.Run("all gains saturates at 100", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		buffers, err := Compute(barsFromCloses(closes), models.IndicatorConfig{Kind: models.IndicatorKindRsi, Period: 14})
		require.NoError(t, err)

		assert.True(t, math.IsNaN(buffers.Value[13]))
		assert.InDelta(t, 100.0, buffers.Value[14], 1e-9)
		assert.InDelta(t, 100.0, buffers.Value[29], 1e-9)
	})

	t.Run("balanced gains and losses near 50", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			if i%2 == 0 {
				closes[i] = 100
			} else {
				closes[i] = 101
			}
		}

		buffers, err := Compute(barsFromCloses(closes), models.IndicatorConfig{Kind: models.IndicatorKindRsi, Period: 14})
		require.NoError(t, err)

		assert.InDelta(t, 50.0, buffers.Value[39], 5.0)
	})
}

func TestComputeBollingerBands(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 50
	}

	buffers, err := Compute(barsFromCloses(closes), models.IndicatorConfig{Kind: models.IndicatorKindBollingerBands, Period: 20, Deviation: 2})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(buffers.Middle[18]))

	// Constant typical price: zero deviation collapses the bands.
	assert.InDelta(t, 50.0, buffers.Middle[20], 1e-9)
	assert.InDelta(t, buffers.Middle[20], buffers.Upper[20], 1e-9)
	assert.InDelta(t, buffers.Middle[20], buffers.Lower[20], 1e-9)
}

func TestComputeAtr(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}

	buffers, err := Compute(barsFromCloses(closes), models.IndicatorConfig{Kind: models.IndicatorKindAtr, Period: 14})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(buffers.Value[13]))

	// Every bar has high-low = 1.0 and no gaps, so ATR settles at 1.0.
	assert.InDelta(t, 1.0, buffers.Value[14], 1e-9)
	assert.InDelta(t, 1.0, buffers.Value[19], 1e-9)
}

func TestComputeAdx(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	buffers, err := Compute(barsFromCloses(closes), models.IndicatorConfig{Kind: models.IndicatorKindAdx, Period: 14})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(buffers.Value[27]))
	require.False(t, math.IsNaN(buffers.Value[28]))

	// A one-way trend keeps +DI above -DI and pushes ADX well above zero.
	assert.Greater(t, buffers.PlusDI[40], buffers.MinusDI[40])
	assert.Greater(t, buffers.Value[79], 25.0)
}

func TestComputeStochastic(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	buffers, err := Compute(barsFromCloses(closes), models.IndicatorConfig{Kind: models.IndicatorKindStochastic, Period: 14, SignalPeriod: 3})
	require.NoError(t, err)

	// Close sits 0.5 below each bar's high, so %K stays pinned near the top.
	require.False(t, math.IsNaN(buffers.Main[15]))
	assert.Greater(t, buffers.Main[20], 90.0)
	assert.Greater(t, buffers.Signal[20], 90.0)
}

func TestComputeObv(t *testing.T) {
	buffers, err := Compute(barsFromCloses([]float64{1, 2, 3, 2}), models.IndicatorConfig{Kind: models.IndicatorKindObv})
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, buffers.Value[1], 1e-9)
	assert.InDelta(t, 2000.0, buffers.Value[2], 1e-9)
	assert.InDelta(t, 1000.0, buffers.Value[3], 1e-9)
}

func TestComputeIsPure(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/3.0)*5
	}
	bars := barsFromCloses(closes)
	cfg := models.IndicatorConfig{Kind: models.IndicatorKindMacd}

	first, err := Compute(bars, cfg)
	require.NoError(t, err)

	second, err := Compute(bars, cfg)
	require.NoError(t, err)

	// Compare past the warm-up so NaN prefixes don't defeat equality.
	warmup := WarmupBars(cfg)
	assert.Equal(t, first.Main[warmup:], second.Main[warmup:])
	assert.Equal(t, first.Signal[warmup:], second.Signal[warmup:])
	assert.Equal(t, first.Value[warmup:], second.Value[warmup:])
}

func TestWarmupBars(t *testing.T) {
	assert.Equal(t, 10, WarmupBars(models.IndicatorConfig{Kind: models.IndicatorKindMovingAverage, Period: 10}))
	assert.Equal(t, 15, WarmupBars(models.IndicatorConfig{Kind: models.IndicatorKindRsi, Period: 14}))
	assert.Equal(t, 28, WarmupBars(models.IndicatorConfig{Kind: models.IndicatorKindAdx, Period: 14}))
	assert.Equal(t, 35, WarmupBars(models.IndicatorConfig{Kind: models.IndicatorKindMacd}))
}
