package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BAPNuSigma/StockAI/internal/models"
	"github.com/BAPNuSigma/StockAI/internal/provider"
)

// AggregationError is returned when a data kind could not be produced after
// exhausting every configured provider
type AggregationError struct {
	Kind    string `json:"kind"`
	Symbol  string `json:"symbol"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation %s for %s: %s", e.Kind, e.Symbol, e.Message)
}

func (e *AggregationError) Unwrap() error {
	return e.Cause
}

// Aggregation error kinds
const (
	ErrAllSourcesFailed = "ALL_SOURCES_FAILED"
	ErrNoDataForRange   = "NO_DATA_FOR_RANGE"
)

// Chains maps each capability to its provider names in priority order
type Chains map[provider.Capability][]string

// Aggregator reconciles data from multiple source adapters into one
// canonical per-symbol dataset. Provider priority is configuration, not code:
// each capability has an ordered chain and the first usable answer wins,
// with lower-priority sources only backfilling what is missing.
type Aggregator struct {
	registry *provider.Registry
	chains   Chains
	cache    *flightCache

	// onFetch is invoked after every provider call for metrics collection
	onFetch func(providerName string, cap provider.Capability, err error)
}

// NewAggregator creates an aggregator over the registered adapters
func NewAggregator(registry *provider.Registry, chains Chains, cacheTTL time.Duration) *Aggregator {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &Aggregator{
		registry: registry,
		chains:   chains,
		cache:    newFlightCache(cacheTTL),
	}
}

// SetFetchObserver installs a callback invoked after each provider call
func (a *Aggregator) SetFetchObserver(fn func(providerName string, cap provider.Capability, err error)) {
	a.onFetch = fn
}

// chain resolves the configured adapters for a capability, skipping names
// that are not registered or do not advertise the capability
func (a *Aggregator) chain(cap provider.Capability) []provider.SourceAdapter {
	var adapters []provider.SourceAdapter
	for _, name := range a.chains[cap] {
		adapter, err := a.registry.Get(name)
		if err != nil {
			log.Warn().Str("provider", name).Str("capability", string(cap)).
				Msg("configured provider not registered, skipping")
			continue
		}
		if !provider.Supports(adapter, cap) {
			log.Warn().Str("provider", name).Str("capability", string(cap)).
				Msg("configured provider lacks capability, skipping")
			continue
		}
		adapters = append(adapters, adapter)
	}
	return adapters
}

func (a *Aggregator) observe(name string, cap provider.Capability, err error) {
	if a.onFetch != nil {
		a.onFetch(name, cap, err)
	}
}

// GetPriceSeries produces the canonical price series for (symbol, resolution,
// range). Providers are queried in priority order; partial coverage from the
// primary is backfilled from fallbacks by timestamp-disjoint union, and a
// timestamp already present from a higher-priority source is never
// overwritten.
func (a *Aggregator) GetPriceSeries(ctx context.Context, symbol, resolution string, rng models.Range) (*models.PriceSeries, error) {
	key := fmt.Sprintf("price|%s|%s|%d|%d", symbol, resolution, rng.Start.Unix(), rng.End.Unix())
	val, err := a.cache.Do(ctx, key, func() (interface{}, error) {
		return a.fetchPriceSeries(ctx, symbol, resolution, rng)
	})
	if err != nil {
		return nil, err
	}
	return val.(*models.PriceSeries), nil
}

func (a *Aggregator) fetchPriceSeries(ctx context.Context, symbol, resolution string, rng models.Range) (*models.PriceSeries, error) {
	adapters := a.chain(provider.CapPriceHistory)
	if len(adapters) == 0 {
		return nil, &AggregationError{
			Kind:    ErrAllSourcesFailed,
			Symbol:  symbol,
			Message: "no providers configured for price history",
		}
	}

	var (
		bars      []models.PriceBar
		sources   []string
		succeeded int
		lastErr   error
	)

	for _, adapter := range adapters {
		series, err := adapter.GetPriceHistory(ctx, symbol, resolution, rng)
		a.observe(adapter.Name(), provider.CapPriceHistory, err)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).
				Str("provider", adapter.Name()).
				Str("symbol", symbol).
				Msg("price history fetch failed, trying next source")
			continue
		}
		succeeded++
		if len(series.Bars) == 0 {
			continue
		}

		var conflicts int
		bars, conflicts = mergeBars(symbol, bars, series.Bars, adapter.Name())
		if conflicts > 0 {
			log.Info().
				Str("symbol", symbol).
				Str("provider", adapter.Name()).
				Int("conflicts", conflicts).
				Msg("overlapping timestamps resolved by priority")
		}
		sources = append(sources, adapter.Name())

		if covers(bars, rng) {
			break
		}
	}

	if succeeded == 0 {
		return nil, &AggregationError{
			Kind:    ErrAllSourcesFailed,
			Symbol:  symbol,
			Message: "every price history provider failed",
			Cause:   lastErr,
		}
	}
	if len(bars) == 0 {
		return nil, &AggregationError{
			Kind:    ErrNoDataForRange,
			Symbol:  symbol,
			Message: fmt.Sprintf("no bars for %s in requested range", symbol),
		}
	}

	series := &models.PriceSeries{
		Symbol:     symbol,
		Resolution: resolution,
		Source:     strings.Join(sources, "+"),
		Bars:       bars,
	}
	if err := series.Validate(); err != nil {
		return nil, &AggregationError{
			Kind:    ErrAllSourcesFailed,
			Symbol:  symbol,
			Message: "merged series failed validation",
			Cause:   err,
		}
	}
	return series, nil
}

// GetQuote returns the latest quote from the highest-priority source that
// answers
func (a *Aggregator) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	key := "quote|" + symbol
	val, err := a.cache.Do(ctx, key, func() (interface{}, error) {
		return firstResult(a, provider.CapQuote, symbol, func(ad provider.SourceAdapter) (*models.Quote, error) {
			return ad.GetQuote(ctx, symbol)
		})
	})
	if err != nil {
		return nil, err
	}
	return val.(*models.Quote), nil
}

// GetFundamentals returns statement line items. Single-provider capability:
// no merge logic, but a provider without coverage for the symbol fails
// explicitly rather than returning an empty set.
func (a *Aggregator) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	key := "fundamentals|" + symbol
	val, err := a.cache.Do(ctx, key, func() (interface{}, error) {
		return firstResult(a, provider.CapFundamentals, symbol, func(ad provider.SourceAdapter) (*models.Fundamentals, error) {
			return ad.GetFundamentals(ctx, symbol)
		})
	})
	if err != nil {
		return nil, err
	}
	return val.(*models.Fundamentals), nil
}

// GetProfile returns the company overview snapshot
func (a *Aggregator) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	key := "profile|" + symbol
	val, err := a.cache.Do(ctx, key, func() (interface{}, error) {
		return firstResult(a, provider.CapProfile, symbol, func(ad provider.SourceAdapter) (*models.CompanyProfile, error) {
			return ad.GetProfile(ctx, symbol)
		})
	})
	if err != nil {
		return nil, err
	}
	return val.(*models.CompanyProfile), nil
}

// GetNews returns recent articles for the symbol
func (a *Aggregator) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	key := fmt.Sprintf("news|%s|%d", symbol, limit)
	val, err := a.cache.Do(ctx, key, func() (interface{}, error) {
		return firstResult(a, provider.CapNews, symbol, func(ad provider.SourceAdapter) ([]models.NewsItem, error) {
			return ad.GetNews(ctx, symbol, limit)
		})
	})
	if err != nil {
		return nil, err
	}
	return val.([]models.NewsItem), nil
}

// CacheStats exposes the per-build cache counters
func (a *Aggregator) CacheStats() (hits, misses int64) {
	return a.cache.Stats()
}

// firstResult walks the capability chain and returns the first successful
// answer, wrapping total failure in an AggregationError
func firstResult[T any](a *Aggregator, cap provider.Capability, symbol string, fetch func(provider.SourceAdapter) (T, error)) (T, error) {
	var zero T
	adapters := a.chain(cap)
	if len(adapters) == 0 {
		return zero, &AggregationError{
			Kind:    ErrAllSourcesFailed,
			Symbol:  symbol,
			Message: fmt.Sprintf("no providers configured for %s", cap),
		}
	}

	var lastErr error
	for _, adapter := range adapters {
		result, err := fetch(adapter)
		a.observe(adapter.Name(), cap, err)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Warn().Err(err).
			Str("provider", adapter.Name()).
			Str("capability", string(cap)).
			Str("symbol", symbol).
			Msg("fetch failed, trying next source")
	}

	return zero, &AggregationError{
		Kind:    ErrAllSourcesFailed,
		Symbol:  symbol,
		Message: fmt.Sprintf("every %s provider failed", cap),
		Cause:   lastErr,
	}
}
