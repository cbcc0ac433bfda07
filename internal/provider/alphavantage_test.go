package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

func avTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func avAdapter(baseURL string) *AlphaVantageAdapter {
	return NewAlphaVantageAdapter(AdapterConfig{
		BaseURL: baseURL,
		APIKey:  "demo",
		RPS:     100,
		Burst:   10,
		Timeout: 5 * time.Second,
	})
}

func TestAlphaVantageDailyHistory(t *testing.T) {
	srv := avTestServer(t, `{
		"Time Series (Daily)": {
			"2024-01-03": {"1. open": "101.0", "2. high": "103.0", "3. low": "100.5", "4. close": "102.5", "5. volume": "12000"},
			"2024-01-02": {"1. open": "100.0", "2. high": "102.0", "3. low": "99.0", "4. close": "101.0", "5. volume": "10000"},
			"2023-12-29": {"1. open": "98.0", "2. high": "99.5", "3. low": "97.0", "4. close": "99.0", "5. volume": "9000"}
		}
	}`)
	a := avAdapter(srv.URL)

	rng := models.Range{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	series, err := a.GetPriceHistory(context.Background(), "AAPL", models.ResolutionDaily, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Bars) != 2 {
		t.Fatalf("range filter should keep 2 bars, got %d", len(series.Bars))
	}
	if !series.Bars[0].Timestamp.Before(series.Bars[1].Timestamp) {
		t.Fatal("bars should be sorted ascending")
	}
	if series.Bars[1].Close != 102.5 {
		t.Fatalf("unexpected close: %v", series.Bars[1].Close)
	}
	if err := series.Validate(); err != nil {
		t.Fatalf("returned series should validate: %v", err)
	}
}

func TestAlphaVantageIntradayUnsupported(t *testing.T) {
	a := avAdapter("http://127.0.0.1:0")
	_, err := a.GetPriceHistory(context.Background(), "AAPL", models.ResolutionIntraday, models.Range{})
	fe, ok := AsFetchError(err)
	if !ok || fe.Code != ErrCodeUnsupported {
		t.Fatalf("intraday should be rejected as unsupported, got %v", err)
	}
}

func TestAlphaVantageNoteMeansRateLimit(t *testing.T) {
	srv := avTestServer(t, `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`)
	a := avAdapter(srv.URL)

	_, err := a.GetPriceHistory(context.Background(), "AAPL", models.ResolutionDaily, models.Range{})
	fe, ok := AsFetchError(err)
	if !ok || fe.Code != ErrCodeRateLimit {
		t.Fatalf("in-body Note should map to RATE_LIMIT, got %v", err)
	}
	if !fe.RateLimited || !fe.Temporary {
		t.Fatal("rate limit errors are temporary and rate-limited")
	}
}

func TestAlphaVantageErrorMessageMeansNotFound(t *testing.T) {
	srv := avTestServer(t, `{"Error Message": "Invalid API call."}`)
	a := avAdapter(srv.URL)

	_, err := a.GetProfile(context.Background(), "NOTREAL")
	fe, ok := AsFetchError(err)
	if !ok || fe.Code != ErrCodeNotFound {
		t.Fatalf("in-body Error Message should map to NOT_FOUND, got %v", err)
	}
}

func TestAlphaVantageProfile(t *testing.T) {
	srv := avTestServer(t, `{
		"Symbol": "IBM",
		"Name": "International Business Machines",
		"Sector": "TECHNOLOGY",
		"MarketCapitalization": "170000000000",
		"PERatio": "22.5",
		"ForwardPE": "None",
		"EPS": "8.23",
		"BookValue": "25.1",
		"DividendYield": "0.037",
		"52WeekHigh": "199.18",
		"52WeekLow": "130.68"
	}`)
	a := avAdapter(srv.URL)

	p, err := a.GetProfile(context.Background(), "IBM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "International Business Machines" {
		t.Fatalf("unexpected name %q", p.Name)
	}
	if p.PERatio != 22.5 || p.EPS != 8.23 {
		t.Fatalf("numeric fields not parsed: %+v", p)
	}
	if p.ForwardPE != 0 {
		t.Fatalf(`"None" should parse to zero, got %v`, p.ForwardPE)
	}
}

func TestAlphaVantageEmptyProfileIsNotFound(t *testing.T) {
	srv := avTestServer(t, `{}`)
	a := avAdapter(srv.URL)

	_, err := a.GetProfile(context.Background(), "ZZZZ")
	fe, ok := AsFetchError(err)
	if !ok || fe.Code != ErrCodeNotFound {
		t.Fatalf("empty overview should map to NOT_FOUND, got %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	a := avAdapter(srv.URL)

	_, err := a.GetProfile(context.Background(), "IBM")
	fe, ok := AsFetchError(err)
	if !ok || fe.Code != ErrCodeRateLimit {
		t.Fatalf("429 should map to RATE_LIMIT, got %v", err)
	}
}
