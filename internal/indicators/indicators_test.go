package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

func testSeries(closes []float64) *models.PriceSeries {
	bars := make([]models.PriceBar, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
		}
	}
	return &models.PriceSeries{Symbol: "TEST", Resolution: models.ResolutionDaily, Source: "test", Bars: bars}
}

func flatSeries(n int, price float64) *models.PriceSeries {
	bars := make([]models.PriceBar, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price, High: price, Low: price, Close: price,
			Volume: 1000,
		}
	}
	return &models.PriceSeries{Symbol: "FLAT", Resolution: models.ResolutionDaily, Source: "test", Bars: bars}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	s := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if len(s) != 5 {
		t.Fatalf("output length %d, want 5", len(s))
	}
	if s.WarmUp() != 2 {
		t.Fatalf("warm-up %d, want 2", s.WarmUp())
	}
	want := []float64{0, 0, 2, 3, 4}
	for i := 2; i < 5; i++ {
		if v, ok := s.At(i); !ok || !almostEqual(v, want[i]) {
			t.Errorf("SMA[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestSMAInsufficientData(t *testing.T) {
	s := SMA([]float64{1, 2}, 5)
	if len(s) != 2 {
		t.Fatalf("output must stay aligned with input, got length %d", len(s))
	}
	if s.WarmUp() != 2 {
		t.Fatal("all positions should be warm-up when data is short")
	}
}

func TestEMAHandComputed(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14}
	s := EMA(closes, 3)

	// seed = SMA(10,11,12) = 11, k = 2/4 = 0.5
	// EMA[3] = 13*0.5 + 11*0.5 = 12; EMA[4] = 14*0.5 + 12*0.5 = 13
	want := []float64{0, 0, 11, 12, 13}
	if s.WarmUp() != 2 {
		t.Fatalf("warm-up %d, want 2", s.WarmUp())
	}
	for i := 2; i < 5; i++ {
		if v, ok := s.At(i); !ok || !almostEqual(v, want[i]) {
			t.Errorf("EMA[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestRSIBoundsAndFlat(t *testing.T) {
	up := make([]float64, 40)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	s := RSI(up, 14)
	if v, ok := s.Last(); !ok || v != 100 {
		t.Fatalf("monotonic rise should give RSI 100, got %v", v)
	}

	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	s = RSI(flat, 14)
	if v, ok := s.Last(); !ok || v != 50 {
		t.Fatalf("flat price should give neutral RSI 50, got %v", v)
	}

	mixed := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64}
	s = RSI(mixed, 14)
	if s.WarmUp() != 14 {
		t.Fatalf("RSI warm-up %d, want 14", s.WarmUp())
	}
	for i := 14; i < len(mixed); i++ {
		v, _ := s.At(i)
		if v < 0 || v > 100 {
			t.Fatalf("RSI[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestMACDAlignment(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*10
	}
	macd, signal, hist := MACD(closes, 12, 26, 9)

	if len(macd) != 60 || len(signal) != 60 || len(hist) != 60 {
		t.Fatal("all MACD outputs must stay aligned with input")
	}
	if macd.WarmUp() != 25 {
		t.Fatalf("MACD line warm-up %d, want 25 (slow EMA)", macd.WarmUp())
	}
	if signal.WarmUp() != 33 {
		t.Fatalf("signal line warm-up %d, want 33", signal.WarmUp())
	}
	for i := range hist {
		if hist[i].Valid && !almostEqual(hist[i].Float, macd[i].Float-signal[i].Float) {
			t.Fatalf("hist[%d] must equal macd - signal", i)
		}
	}
}

func TestStochasticFlatWindow(t *testing.T) {
	flat := flatSeries(20, 100)
	k, d := Stochastic(flat.Bars, 14, 3)
	if v, ok := k.Last(); !ok || v != 50 {
		t.Fatalf("flat window should give neutral %%K 50, got %v", v)
	}
	if v, ok := d.Last(); !ok || v != 50 {
		t.Fatalf("flat window should give neutral %%D 50, got %v", v)
	}
}

func TestBollingerFlat(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	upper, middle, lower := Bollinger(closes, 20, 2.0)

	if v, ok := middle.At(19); !ok || v != 100 {
		t.Fatalf("middle band should be 100 at index 19, got %v", v)
	}
	u, _ := upper.At(19)
	l, _ := lower.At(19)
	if u != 100 || l != 100 {
		t.Fatalf("flat price means zero band width, got upper %v lower %v", u, l)
	}
	if upper.WarmUp() != 19 {
		t.Fatalf("bollinger warm-up %d, want 19", upper.WarmUp())
	}
}

func TestOBV(t *testing.T) {
	s := testSeries([]float64{10, 11, 11, 9, 12})
	obv := OBV(s.Bars)

	if obv.WarmUp() != 0 {
		t.Fatal("OBV is valid from the first bar")
	}
	// +1000 (up), +0 (unchanged), -1000 (down), +1000 (up)
	want := []float64{0, 1000, 1000, 0, 1000}
	for i, w := range want {
		if v, ok := obv.At(i); !ok || v != w {
			t.Fatalf("OBV[%d] = %v, want %v", i, v, w)
		}
	}
}

func TestMFIEdges(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	s := testSeries(up)
	mfi := MFI(s.Bars, 14)
	if v, ok := mfi.Last(); !ok || v != 100 {
		t.Fatalf("all-positive flow should give MFI 100, got %v", v)
	}

	flat := flatSeries(20, 100)
	mfi = MFI(flat.Bars, 14)
	if v, ok := mfi.Last(); !ok || v != 50 {
		t.Fatalf("no flow should give neutral MFI 50, got %v", v)
	}
	if mfi.WarmUp() != 14 {
		t.Fatalf("MFI warm-up %d, want 14", mfi.WarmUp())
	}
}

func TestATRWarmUpAndFlat(t *testing.T) {
	flat := flatSeries(30, 100)
	atr := ATR(flat.Bars, 14)
	if atr.WarmUp() != 14 {
		t.Fatalf("ATR warm-up %d, want 14", atr.WarmUp())
	}
	if v, ok := atr.Last(); !ok || v != 0 {
		t.Fatalf("flat bars have zero true range, got ATR %v", v)
	}
}

func TestADXWarmUp(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	s := testSeries(closes)
	adx := ADX(s.Bars, 14)
	if adx.WarmUp() != 27 {
		t.Fatalf("ADX warm-up %d, want 27 (2*period - 1)", adx.WarmUp())
	}
	if v, ok := adx.Last(); !ok || v < 0 || v > 100 {
		t.Fatalf("ADX out of range: %v", v)
	}
}

func TestCCIFlatIsZero(t *testing.T) {
	flat := flatSeries(25, 100)
	cci := CCI(flat.Bars, 20)
	if v, ok := cci.Last(); !ok || v != 0 {
		t.Fatalf("flat price should give CCI 0, got %v", v)
	}
}

func TestEngineComputeNamesAndAlignment(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/10)*20 + float64(i)*0.1
	}
	s := testSeries(closes)

	engine := NewEngine(DefaultConfig())
	set, err := engine.Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{
		"SMA_20", "SMA_50", "SMA_200",
		"EMA_20", "EMA_50", "EMA_200",
		"RSI_14", "MACD", "MACD_Signal", "MACD_Hist",
		"Stoch_K", "Stoch_D",
		"BB_Upper", "BB_Middle", "BB_Lower",
		"ATR_14", "OBV", "ADL", "ADX_14", "CCI_20", "MFI_14",
	} {
		series, ok := set[name]
		if !ok {
			t.Errorf("missing indicator %s", name)
			continue
		}
		if len(series) != len(closes) {
			t.Errorf("%s length %d, want %d", name, len(series), len(closes))
		}
	}
}

func TestEngineComputeRejectsEmptySeries(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if _, err := engine.Compute(&models.PriceSeries{Symbol: "X"}); err == nil {
		t.Fatal("empty series must be rejected")
	}
	if _, err := engine.Compute(nil); err == nil {
		t.Fatal("nil series must be rejected")
	}
}

func TestEngineComputeDeterministic(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + math.Cos(float64(i)/7)*15
	}
	s := testSeries(closes)
	engine := NewEngine(DefaultConfig())

	a, err := engine.Compute(s)
	if err != nil {
		t.Fatal(err)
	}
	b, err := engine.Compute(s)
	if err != nil {
		t.Fatal(err)
	}
	for name, sa := range a {
		sb := b[name]
		for i := range sa {
			if sa[i] != sb[i] {
				t.Fatalf("%s[%d] differs between identical runs", name, i)
			}
		}
	}
}

func TestSignalsFixedOrder(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	s := testSeries(closes)
	engine := NewEngine(DefaultConfig())
	set, err := engine.Compute(s)
	if err != nil {
		t.Fatal(err)
	}

	groups := engine.Signals(set, s)
	wantOrder := []string{"Moving Averages", "RSI", "MACD", "Bollinger Bands", "Volume", "Trend"}
	if len(groups) != len(wantOrder) {
		t.Fatalf("got %d groups, want %d", len(groups), len(wantOrder))
	}
	for i, g := range groups {
		if g.Name != wantOrder[i] {
			t.Fatalf("group %d is %q, want %q", i, g.Name, wantOrder[i])
		}
	}

	// a steadily rising series should read bullish on the moving averages
	if len(groups[0].Signals) == 0 {
		t.Fatal("expected moving average signals for trending series")
	}
}

func TestChartData(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14}
	s := testSeries(closes)
	set := Set{"SMA_3": SMA(closes, 3)}

	timestamps, got, lines := ChartData(s, set, []string{"SMA_3", "MISSING"})
	if len(timestamps) != 5 || len(got) != 5 {
		t.Fatal("chart columns must align with bars")
	}
	if _, ok := lines["SMA_3"]; !ok {
		t.Fatal("requested overlay missing")
	}
	if _, ok := lines["MISSING"]; ok {
		t.Fatal("unknown overlay must be skipped, not invented")
	}
}
