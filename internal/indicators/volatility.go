package indicators

import (
	"math"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// Bollinger computes the middle SMA band and upper/lower bands at ±k standard
// deviations (population) over the window
func Bollinger(closes []float64, n int, k float64) (upper, middle, lower Series) {
	upper = newSeries(len(closes))
	middle = SMA(closes, n)
	lower = newSeries(len(closes))
	if n <= 0 || len(closes) < n {
		return upper, middle, lower
	}

	for i := n - 1; i < len(closes); i++ {
		mean := middle[i].Float
		variance := 0.0
		for j := i - n + 1; j <= i; j++ {
			diff := closes[j] - mean
			variance += diff * diff
		}
		std := math.Sqrt(variance / float64(n))
		upper[i] = valid(mean + k*std)
		lower[i] = valid(mean - k*std)
	}
	return upper, middle, lower
}

// trueRange computes TR at bar i (i >= 1)
func trueRange(bars []models.PriceBar, i int) float64 {
	hl := bars[i].High - bars[i].Low
	hc := math.Abs(bars[i].High - bars[i-1].Close)
	lc := math.Abs(bars[i].Low - bars[i-1].Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR computes the Wilder-smoothed Average True Range. The first value
// appears at index period (the seed is the SMA of the first period true
// ranges, which start at bar 1).
func ATR(bars []models.PriceBar, period int) Series {
	out := newSeries(len(bars))
	if period <= 0 || len(bars) < period+1 {
		return out
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(bars, i)
	}
	atr /= float64(period)
	out[period] = valid(atr)

	alpha := 1.0 / float64(period)
	for i := period + 1; i < len(bars); i++ {
		atr = atr*(1-alpha) + trueRange(bars, i)*alpha
		out[i] = valid(atr)
	}
	return out
}
