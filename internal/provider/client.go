package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// restClient bundles the HTTP client, token-bucket rate limiter and circuit
// breaker every adapter carries. Safe for concurrent use.
type restClient struct {
	provider  string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	userAgent string
}

func newRESTClient(provider string, cfg AdapterConfig) *restClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rps * 2)
		if burst < 1 {
			burst = 1
		}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "StockAI/1.0"
	}

	settings := gobreaker.Settings{
		Name:        provider,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("provider circuit state change")
		},
		IsSuccessful: func(err error) bool {
			// Client-side misuse must not trip the breaker
			if fe, ok := AsFetchError(err); ok {
				switch fe.Code {
				case ErrCodeNotFound, ErrCodeAuthInvalid, ErrCodeUnsupported:
					return true
				}
			}
			return err == nil
		},
	}

	return &restClient{
		provider:  provider,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		userAgent: userAgent,
	}
}

// getJSON performs a rate-limited, breaker-protected GET and decodes the JSON
// body into out. All failures are returned as *FetchError.
func (c *restClient) getJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errFromTransport(c.provider, context.DeadlineExceeded)
		}
		if errors.Is(err, context.Canceled) {
			return &FetchError{
				Provider: c.provider,
				Code:     ErrCodeNetwork,
				Message:  "request cancelled while waiting for rate limit slot",
				Cause:    err,
			}
		}
		return &FetchError{
			Provider:    c.provider,
			Code:        ErrCodeRateLimit,
			Message:     "local rate budget exhausted",
			RateLimited: true,
			Temporary:   true,
			Cause:       err,
		}
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doGet(ctx, url, headers)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &FetchError{
				Provider:  c.provider,
				Code:      ErrCodeCircuitOpen,
				Message:   "circuit breaker open",
				Temporary: true,
				Cause:     err,
			}
		}
		if fe, ok := AsFetchError(err); ok {
			return fe
		}
		return errFromTransport(c.provider, err)
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return errMalformed(c.provider, err)
	}
	return nil
}

func (c *restClient) doGet(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errFromTransport(c.provider, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("provider", c.provider).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("provider request")

	if resp.StatusCode != http.StatusOK {
		return nil, errFromStatus(c.provider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errFromTransport(c.provider, err)
	}
	return body, nil
}
