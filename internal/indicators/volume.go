package indicators

import (
	"github.com/BAPNuSigma/StockAI/internal/models"
)

// OBV computes On-Balance Volume: cumulative volume signed by the
// close-to-close direction. Valid from the first bar, which contributes zero.
func OBV(bars []models.PriceBar) Series {
	out := newSeries(len(bars))
	if len(bars) == 0 {
		return out
	}

	obv := 0.0
	out[0] = valid(obv)
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			obv += bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			obv -= bars[i].Volume
		}
		out[i] = valid(obv)
	}
	return out
}

// ADLine computes the Accumulation/Distribution line: cumulative money flow
// volume weighted by the close location value. A bar with high == low has a
// zero close location value.
func ADLine(bars []models.PriceBar) Series {
	out := newSeries(len(bars))

	adl := 0.0
	for i, bar := range bars {
		rng := bar.High - bar.Low
		if rng > 0 {
			clv := ((bar.Close - bar.Low) - (bar.High - bar.Close)) / rng
			adl += clv * bar.Volume
		}
		out[i] = valid(adl)
	}
	return out
}

// MFI computes the Money Flow Index over the trailing window. The first
// value appears at index period. A window with no negative flow yields 100;
// a window with no flow in either direction yields a neutral 50.
func MFI(bars []models.PriceBar, period int) Series {
	out := newSeries(len(bars))
	if period <= 0 || len(bars) < period+1 {
		return out
	}

	// signed raw money flow per bar, by typical price direction
	flows := make([]float64, len(bars))
	prevTP := typicalPrice(bars[0])
	for i := 1; i < len(bars); i++ {
		tp := typicalPrice(bars[i])
		raw := tp * bars[i].Volume
		switch {
		case tp > prevTP:
			flows[i] = raw
		case tp < prevTP:
			flows[i] = -raw
		}
		prevTP = tp
	}

	for i := period; i < len(bars); i++ {
		positive, negative := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			if flows[j] > 0 {
				positive += flows[j]
			} else {
				negative += -flows[j]
			}
		}
		switch {
		case positive == 0 && negative == 0:
			out[i] = valid(50.0)
		case negative == 0:
			out[i] = valid(100.0)
		default:
			ratio := positive / negative
			out[i] = valid(100.0 - 100.0/(1.0+ratio))
		}
	}
	return out
}

func typicalPrice(bar models.PriceBar) float64 {
	return (bar.High + bar.Low + bar.Close) / 3.0
}
