package indicators

import (
	"math"

	"github.com/jiaming2012/backtest-engine/src/models"
)

// computeAdx fills Value with the ADX trend-strength line and PlusDI/MinusDI
// with the directional lines.
//
// The smoothing follows Wilder exactly: directional movement and true range
// per bar, smoothed series seeded by an unweighted sum over the first period
// values, then smoothed[i] = smoothed[i-1] - smoothed[i-1]/period + raw[i].
// The ADX line itself is Wilder-smoothed over the directional index and only
// starts once 2*period bars exist.
func computeAdx(bars []models.Bar, cfg models.IndicatorConfig) *Buffers {
	n := len(bars)
	adx := nanSeries(n)
	plusDI := nanSeries(n)
	minusDI := nanSeries(n)
	period := cfg.Period

	if n <= 2*period {
		return &Buffers{Value: adx, PlusDI: plusDI, MinusDI: minusDI}
	}

	rawPlusDM := make([]float64, n)
	rawMinusDM := make([]float64, n)
	rawTR := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low

		if upMove > downMove && upMove > 0 {
			rawPlusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			rawMinusDM[i] = downMove
		}

		rawTR[i] = trueRange(bars[i], bars[i-1])
	}

	var smPlusDM, smMinusDM, smTR float64
	for i := 1; i <= period; i++ {
		smPlusDM += rawPlusDM[i]
		smMinusDM += rawMinusDM[i]
		smTR += rawTR[i]
	}

	dx := nanSeries(n)
	setDI := func(i int) {
		if smTR == 0 {
			return
		}

		plusDI[i] = smPlusDM / smTR * 100
		minusDI[i] = smMinusDM / smTR * 100

		diSum := plusDI[i] + minusDI[i]
		if diSum == 0 {
			dx[i] = 0
			return
		}

		dx[i] = math.Abs(plusDI[i]-minusDI[i]) / diSum * 100
	}

	setDI(period)

	for i := period + 1; i < n; i++ {
		smPlusDM = smPlusDM - smPlusDM/float64(period) + rawPlusDM[i]
		smMinusDM = smMinusDM - smMinusDM/float64(period) + rawMinusDM[i]
		smTR = smTR - smTR/float64(period) + rawTR[i]

		setDI(i)
	}

	seed := 0.0
	for i := period + 1; i <= 2*period; i++ {
		if math.IsNaN(dx[i]) {
			seed += 0
		} else {
			seed += dx[i]
		}
	}

	current := seed / float64(period)
	adx[2*period] = current

	for i := 2*period + 1; i < n; i++ {
		raw := dx[i]
		if math.IsNaN(raw) {
			raw = 0
		}

		current = (current*(float64(period)-1.0) + raw) / float64(period)
		adx[i] = current
	}

	return &Buffers{Value: adx, PlusDI: plusDI, MinusDI: minusDI}
}
