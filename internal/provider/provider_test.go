package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrFromStatus(t *testing.T) {
	cases := []struct {
		status      int
		code        string
		rateLimited bool
		temporary   bool
	}{
		{429, ErrCodeRateLimit, true, true},
		{401, ErrCodeAuthInvalid, false, false},
		{403, ErrCodeAuthInvalid, false, false},
		{404, ErrCodeNotFound, false, false},
		{500, ErrCodeAPIError, false, true},
		{503, ErrCodeAPIError, false, true},
		{418, ErrCodeAPIError, false, false},
	}
	for _, tc := range cases {
		fe := errFromStatus("test", tc.status)
		if fe.Code != tc.code {
			t.Errorf("status %d: code %s, want %s", tc.status, fe.Code, tc.code)
		}
		if fe.RateLimited != tc.rateLimited {
			t.Errorf("status %d: rate_limited %v, want %v", tc.status, fe.RateLimited, tc.rateLimited)
		}
		if fe.Temporary != tc.temporary {
			t.Errorf("status %d: temporary %v, want %v", tc.status, fe.Temporary, tc.temporary)
		}
		if fe.HTTPStatus != tc.status {
			t.Errorf("status %d not carried through, got %d", tc.status, fe.HTTPStatus)
		}
	}
}

func TestErrFromTransportTimeout(t *testing.T) {
	wrapped := fmt.Errorf("Get http://x: %w", context.DeadlineExceeded)
	fe := errFromTransport("test", wrapped)
	if fe.Code != ErrCodeTimeout {
		t.Fatalf("deadline exceeded should map to TIMEOUT, got %s", fe.Code)
	}
	if !fe.Temporary {
		t.Fatal("timeouts are temporary")
	}

	fe = errFromTransport("test", errors.New("connection refused"))
	if fe.Code != ErrCodeNetwork {
		t.Fatalf("other transport errors map to NETWORK_ERROR, got %s", fe.Code)
	}
}

func TestAsFetchError(t *testing.T) {
	inner := errFromStatus("alpaca", 429)
	wrapped := fmt.Errorf("fetch quote: %w", inner)

	fe, ok := AsFetchError(wrapped)
	if !ok {
		t.Fatal("expected FetchError in chain")
	}
	if fe.Provider != "alpaca" || fe.Code != ErrCodeRateLimit {
		t.Fatalf("unexpected unwrap result: %+v", fe)
	}

	if _, ok := AsFetchError(errors.New("plain")); ok {
		t.Fatal("plain error should not unwrap to FetchError")
	}
}

func TestSupports(t *testing.T) {
	av := NewAlphaVantageAdapter(AdapterConfig{RPS: 1, Burst: 1})
	if !Supports(av, CapPriceHistory) || !Supports(av, CapProfile) {
		t.Fatal("alphavantage should advertise price history and profile")
	}
	if Supports(av, CapQuote) || Supports(av, CapNews) {
		t.Fatal("alphavantage should not advertise quote or news")
	}
}

func TestUnsupportedOperationsReturnTypedError(t *testing.T) {
	fmp := NewFMPAdapter(AdapterConfig{RPS: 1, Burst: 1})
	_, err := fmp.GetQuote(context.Background(), "AAPL")
	fe, ok := AsFetchError(err)
	if !ok || fe.Code != ErrCodeUnsupported {
		t.Fatalf("expected UNSUPPORTED fetch error, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewAlphaVantageAdapter(AdapterConfig{RPS: 1, Burst: 1}))
	r.Register(NewFMPAdapter(AdapterConfig{RPS: 1, Burst: 1}))

	if _, err := r.Get("alphavantage"); err != nil {
		t.Fatalf("registered adapter not found: %v", err)
	}
	if _, err := r.Get("nope"); err == nil {
		t.Fatal("unknown adapter should error")
	}

	with := r.WithCapability(CapFundamentals)
	if len(with) != 1 || with[0].Name() != "fmp" {
		t.Fatalf("expected only fmp to serve fundamentals, got %v", with)
	}
}
