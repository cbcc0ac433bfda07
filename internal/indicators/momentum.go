package indicators

import (
	"github.com/BAPNuSigma/StockAI/internal/models"
)

// RSI computes the Relative Strength Index with Wilder smoothing. The first
// value appears at index period (period price changes are required). A
// series with no gains and no losses yields 50; no losses at all yields 100.
func RSI(closes []float64, period int) Series {
	out := newSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = valid(rsiValue(avgGain, avgLoss))

	alpha := 1.0 / float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = avgGain*(1-alpha) + gain*alpha
		avgLoss = avgLoss*(1-alpha) + loss*alpha
		out[i] = valid(rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgGain == 0 && avgLoss == 0 {
		// flat price: no gains, no losses
		return 50.0
	}
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// MACD computes the fast/slow EMA difference, its signal EMA and the
// histogram. The MACD line warms up with the slow EMA; the signal line needs
// a further signalN-1 values.
func MACD(closes []float64, fast, slow, signalN int) (macd, signal, hist Series) {
	macd = newSeries(len(closes))
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	for i := range closes {
		if emaFast[i].Valid && emaSlow[i].Valid {
			macd[i] = valid(emaFast[i].Float - emaSlow[i].Float)
		}
	}

	signal = emaOverSeries(macd, signalN)

	hist = newSeries(len(closes))
	for i := range closes {
		if macd[i].Valid && signal[i].Valid {
			hist[i] = valid(macd[i].Float - signal[i].Float)
		}
	}
	return macd, signal, hist
}

// Stochastic computes %K over the lookback window and %D as its smooth-period
// SMA. A flat window (highest high equals lowest low) yields a neutral 50.
func Stochastic(bars []models.PriceBar, lookback, smooth int) (k, d Series) {
	k = newSeries(len(bars))
	if lookback <= 0 || len(bars) < lookback {
		return k, newSeries(len(bars))
	}

	for i := lookback - 1; i < len(bars); i++ {
		hh := bars[i-lookback+1].High
		ll := bars[i-lookback+1].Low
		for j := i - lookback + 2; j <= i; j++ {
			if bars[j].High > hh {
				hh = bars[j].High
			}
			if bars[j].Low < ll {
				ll = bars[j].Low
			}
		}
		if hh == ll {
			k[i] = valid(50.0)
			continue
		}
		k[i] = valid((bars[i].Close - ll) / (hh - ll) * 100.0)
	}

	d = smaOverSeries(k, smooth)
	return k, d
}
