package indicators

// SMA computes the simple moving average over window n. The first n-1
// positions are warm-up.
func SMA(values []float64, n int) Series {
	out := newSeries(len(values))
	if n <= 0 || len(values) < n {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out[i] = valid(sum / float64(n))
		}
	}
	return out
}

// EMA computes the exponential moving average with smoothing k = 2/(n+1),
// seeded with the SMA of the first n values. The first n-1 positions are
// warm-up.
func EMA(values []float64, n int) Series {
	out := newSeries(len(values))
	if n <= 0 || len(values) < n {
		return out
	}

	seed := 0.0
	for i := 0; i < n; i++ {
		seed += values[i]
	}
	ema := seed / float64(n)
	out[n-1] = valid(ema)

	k := 2.0 / float64(n+1)
	for i := n; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = valid(ema)
	}
	return out
}

// emaOverSeries applies an n-period EMA to the valid suffix of an input
// series, used for the MACD signal line
func emaOverSeries(in Series, n int) Series {
	out := newSeries(len(in))
	start := in.WarmUp()
	if n <= 0 || len(in)-start < n {
		return out
	}

	seed := 0.0
	for i := start; i < start+n; i++ {
		seed += in[i].Float
	}
	ema := seed / float64(n)
	out[start+n-1] = valid(ema)

	k := 2.0 / float64(n+1)
	for i := start + n; i < len(in); i++ {
		ema = in[i].Float*k + ema*(1-k)
		out[i] = valid(ema)
	}
	return out
}

// smaOverSeries applies an n-period SMA to the valid suffix of an input
// series, used for the stochastic %D line
func smaOverSeries(in Series, n int) Series {
	out := newSeries(len(in))
	start := in.WarmUp()
	if n <= 0 || len(in)-start < n {
		return out
	}

	sum := 0.0
	for i := start; i < len(in); i++ {
		sum += in[i].Float
		if i >= start+n {
			sum -= in[i-n].Float
		}
		if i >= start+n-1 {
			out[i] = valid(sum / float64(n))
		}
	}
	return out
}
