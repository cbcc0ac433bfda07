package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// Capability identifies one kind of data a source adapter can serve
type Capability string

const (
	CapPriceHistory Capability = "price_history"
	CapQuote        Capability = "quote"
	CapFundamentals Capability = "fundamentals"
	CapProfile      Capability = "profile"
	CapNews         Capability = "news"
)

// SourceAdapter is the common contract for market data providers. Each
// adapter implements a subset of capabilities; callers check Capabilities()
// before dispatching, and unsupported operations return a FetchError with
// ErrCodeUnsupported.
type SourceAdapter interface {
	Name() string
	Capabilities() []Capability

	GetPriceHistory(ctx context.Context, symbol, resolution string, rng models.Range) (*models.PriceSeries, error)
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)
	GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error)
	GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// Supports reports whether the adapter advertises a capability
func Supports(a SourceAdapter, cap Capability) bool {
	for _, c := range a.Capabilities() {
		if c == cap {
			return true
		}
	}
	return false
}

// FetchError represents a provider-level failure. All fetch errors are
// recoverable by the caller via retry or fallback, never fatal.
type FetchError struct {
	Provider    string `json:"provider"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	HTTPStatus  int    `json:"http_status,omitempty"`
	RateLimited bool   `json:"rate_limited"`
	Temporary   bool   `json:"temporary"`
	Cause       error  `json:"-"`
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("provider %s: %s (%s)", e.Provider, e.Message, e.Code)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Fetch error codes
const (
	ErrCodeTimeout     = "TIMEOUT"
	ErrCodeRateLimit   = "RATE_LIMIT"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeAuthInvalid = "AUTH_ERROR"
	ErrCodeMalformed   = "MALFORMED_RESPONSE"
	ErrCodeUnsupported = "UNSUPPORTED"
	ErrCodeCircuitOpen = "CIRCUIT_OPEN"
	ErrCodeAPIError    = "API_ERROR"
	ErrCodeNetwork     = "NETWORK_ERROR"
)

// AsFetchError unwraps an error chain to the FetchError inside it, if any
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// errUnsupported builds the standard error for a capability an adapter does
// not implement
func errUnsupported(provider string, cap Capability) *FetchError {
	return &FetchError{
		Provider: provider,
		Code:     ErrCodeUnsupported,
		Message:  fmt.Sprintf("capability %s not supported", cap),
	}
}

// errFromStatus maps an HTTP response status to the fetch error taxonomy
func errFromStatus(provider string, status int) *FetchError {
	switch {
	case status == 429:
		return &FetchError{
			Provider:    provider,
			Code:        ErrCodeRateLimit,
			Message:     "provider rate limit exceeded",
			HTTPStatus:  status,
			RateLimited: true,
			Temporary:   true,
		}
	case status == 401 || status == 403:
		return &FetchError{
			Provider:   provider,
			Code:       ErrCodeAuthInvalid,
			Message:    "invalid or missing API credentials",
			HTTPStatus: status,
		}
	case status == 404:
		return &FetchError{
			Provider:   provider,
			Code:       ErrCodeNotFound,
			Message:    "symbol not found",
			HTTPStatus: status,
		}
	case status >= 500:
		return &FetchError{
			Provider:   provider,
			Code:       ErrCodeAPIError,
			Message:    fmt.Sprintf("upstream error: HTTP %d", status),
			HTTPStatus: status,
			Temporary:  true,
		}
	default:
		return &FetchError{
			Provider:   provider,
			Code:       ErrCodeAPIError,
			Message:    fmt.Sprintf("unexpected HTTP status %d", status),
			HTTPStatus: status,
		}
	}
}

// errFromTransport classifies a transport-level failure
func errFromTransport(provider string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{
			Provider:  provider,
			Code:      ErrCodeTimeout,
			Message:   "request timed out",
			Temporary: true,
			Cause:     err,
		}
	}
	return &FetchError{
		Provider:  provider,
		Code:      ErrCodeNetwork,
		Message:   "request failed",
		Temporary: true,
		Cause:     err,
	}
}

// errMalformed wraps a decode failure
func errMalformed(provider string, err error) *FetchError {
	return &FetchError{
		Provider: provider,
		Code:     ErrCodeMalformed,
		Message:  "failed to parse provider response",
		Cause:    err,
	}
}

// AdapterConfig holds the settings shared by all HTTP adapters
type AdapterConfig struct {
	BaseURL   string        `json:"base_url"`
	APIKey    string        `json:"api_key"`
	APISecret string        `json:"api_secret,omitempty"`
	Timeout   time.Duration `json:"timeout"`
	RPS       float64       `json:"rps"`
	Burst     int           `json:"burst"`
	UserAgent string        `json:"user_agent"`
}
