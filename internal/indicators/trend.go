package indicators

import (
	"math"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// ADX computes the Average Directional Index with Wilder smoothing of the
// directional movement and true range. DI lines stabilize at index period;
// ADX itself needs a further period of DX values and first appears at index
// 2*period - 1.
func ADX(bars []models.PriceBar, period int) Series {
	out := newSeries(len(bars))
	if period <= 0 || len(bars) < 2*period {
		return out
	}

	tr := make([]float64, len(bars))
	plusDM := make([]float64, len(bars))
	minusDM := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		tr[i] = trueRange(bars, i)
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	// seed the smoothed sums over bars 1..period
	smTR, smPlus, smMinus := 0.0, 0.0, 0.0
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := make([]float64, len(bars))
	alpha := 1.0 / float64(period)
	dx[period] = dxValue(smPlus, smMinus, smTR)
	for i := period + 1; i < len(bars); i++ {
		smTR = smTR*(1-alpha) + tr[i]
		smPlus = smPlus*(1-alpha) + plusDM[i]
		smMinus = smMinus*(1-alpha) + minusDM[i]
		dx[i] = dxValue(smPlus, smMinus, smTR)
	}

	// ADX seeds as the average of the first period DX values
	adx := 0.0
	for i := period; i < 2*period; i++ {
		adx += dx[i]
	}
	adx /= float64(period)
	out[2*period-1] = valid(adx)

	for i := 2 * period; i < len(bars); i++ {
		adx = adx*(1-alpha) + dx[i]*alpha
		out[i] = valid(adx)
	}
	return out
}

func dxValue(smPlus, smMinus, smTR float64) float64 {
	if smTR == 0 {
		return 0
	}
	pdi := 100.0 * smPlus / smTR
	mdi := 100.0 * smMinus / smTR
	sum := pdi + mdi
	if sum == 0 {
		return 0
	}
	return 100.0 * math.Abs(pdi-mdi) / sum
}

// CCI computes the Commodity Channel Index over the window. A window with
// zero mean deviation (flat price) yields 0, the numerator being zero as
// well.
func CCI(bars []models.PriceBar, n int) Series {
	out := newSeries(len(bars))
	if n <= 0 || len(bars) < n {
		return out
	}

	tps := make([]float64, len(bars))
	for i, bar := range bars {
		tps[i] = typicalPrice(bar)
	}

	for i := n - 1; i < len(bars); i++ {
		mean := 0.0
		for j := i - n + 1; j <= i; j++ {
			mean += tps[j]
		}
		mean /= float64(n)

		meanDev := 0.0
		for j := i - n + 1; j <= i; j++ {
			meanDev += math.Abs(tps[j] - mean)
		}
		meanDev /= float64(n)

		if meanDev == 0 {
			out[i] = valid(0)
			continue
		}
		out[i] = valid((tps[i] - mean) / (0.015 * meanDev))
	}
	return out
}
