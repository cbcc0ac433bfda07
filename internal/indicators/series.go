package indicators

// Value is one aligned indicator output. Warm-up positions where the formula
// has insufficient history carry Valid=false instead of a sentinel number.
type Value struct {
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Series is an indicator output aligned 1:1 with the input price series
type Series []Value

// Set maps indicator names ("RSI_14", "MACD_Signal") to their aligned series
type Set map[string]Series

func valid(v float64) Value {
	return Value{Float: v, Valid: true}
}

// newSeries allocates an all-invalid series of length n
func newSeries(n int) Series {
	return make(Series, n)
}

// Last returns the final value of the series
func (s Series) Last() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	last := s[len(s)-1]
	return last.Float, last.Valid
}

// At returns the value at index i
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return s[i].Float, s[i].Valid
}

// WarmUp returns the number of leading invalid positions
func (s Series) WarmUp() int {
	for i, v := range s {
		if v.Valid {
			return i
		}
	}
	return len(s)
}

// Last looks up an indicator by name and returns its latest value
func (set Set) Last(name string) (float64, bool) {
	series, ok := set[name]
	if !ok {
		return 0, false
	}
	return series.Last()
}
