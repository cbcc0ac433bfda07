package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BAPNuSigma/StockAI/internal/aggregate"
	"github.com/BAPNuSigma/StockAI/internal/config"
	"github.com/BAPNuSigma/StockAI/internal/indicators"
	"github.com/BAPNuSigma/StockAI/internal/metrics"
	"github.com/BAPNuSigma/StockAI/internal/models"
	"github.com/BAPNuSigma/StockAI/internal/provider"
	"github.com/BAPNuSigma/StockAI/internal/report"
	"github.com/BAPNuSigma/StockAI/internal/valuation"
)

// Request describes one report build. Resolution and RangeYears fall back to
// the configured defaults when zero.
type Request struct {
	Symbol     string
	Template   models.TemplateKind
	Resolution string
	RangeYears int
}

// Builder runs the full pipeline for one request: fan out the fetches,
// compute indicators and valuation on whatever arrived, compose the document.
type Builder struct {
	cfg        *config.Config
	aggregator *aggregate.Aggregator
	indicators *indicators.Engine
	valuation  *valuation.Engine
	registry   *metrics.Registry
	log        zerolog.Logger

	statsMu    sync.Mutex
	lastHits   int64
	lastMisses int64
}

// NewBuilder wires the provider registry and aggregator from config
func NewBuilder(cfg *config.Config, reg *metrics.Registry, log zerolog.Logger) (*Builder, error) {
	providers := provider.NewRegistry()
	for name, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		ac := provider.AdapterConfig{
			BaseURL:   pc.BaseURL,
			APIKey:    pc.APIKey,
			APISecret: pc.APISecret,
			Timeout:   pc.Timeout(),
			RPS:       pc.RPS,
			Burst:     pc.Burst,
		}
		adapter, err := newAdapter(name, ac)
		if err != nil {
			return nil, err
		}
		if err := providers.Register(adapter); err != nil {
			return nil, err
		}
	}

	chains := make(aggregate.Chains, len(cfg.Aggregator.Chains))
	for cap, chain := range cfg.Aggregator.Chains {
		chains[provider.Capability(cap)] = chain
	}

	agg := aggregate.NewAggregator(providers, chains, cfg.Aggregator.CacheTTL())
	if reg != nil {
		agg.SetFetchObserver(func(name string, cap provider.Capability, err error) {
			result := "ok"
			if err != nil {
				result = "error"
				if fe, ok := provider.AsFetchError(err); ok {
					result = strings.ToLower(fe.Code)
				}
			}
			reg.ProviderRequests.WithLabelValues(name, string(cap), result).Inc()
		})
	}

	return &Builder{
		cfg:        cfg,
		aggregator: agg,
		indicators: indicators.NewEngine(cfg.Indicators),
		valuation:  valuation.NewEngine(),
		registry:   reg,
		log:        log.With().Str("component", "builder").Logger(),
	}, nil
}

func newAdapter(name string, ac provider.AdapterConfig) (provider.SourceAdapter, error) {
	switch name {
	case "alpaca":
		return provider.NewAlpacaAdapter(ac), nil
	case "alphavantage":
		return provider.NewAlphaVantageAdapter(ac), nil
	case "fmp":
		return provider.NewFMPAdapter(ac), nil
	case "tiingo":
		return provider.NewTiingoAdapter(ac), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// Aggregator exposes the underlying aggregator, mainly for cache inspection
func (b *Builder) Aggregator() *aggregate.Aggregator {
	return b.aggregator
}

// fetched collects the fan-out results. Each arm records its own failure
// reason; a failed arm never blocks the others.
type fetched struct {
	series  *models.PriceSeries
	quote   *models.Quote
	funds   *models.Fundamentals
	profile *models.CompanyProfile
	news    []models.NewsItem

	seriesErr  error
	quoteErr   error
	fundsErr   error
	profileErr error
	newsErr    error
}

// Build runs the pipeline for one request and returns the composed document.
// The document is best-effort: aggregation failures surface as unavailable
// sections with the failure reason, never as a build error. Build errors are
// reserved for invalid requests.
func (b *Builder) Build(ctx context.Context, req Request) (*report.Document, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if _, err := models.ParseTemplateKind(string(req.Template)); err != nil {
		return nil, err
	}
	resolution := req.Resolution
	if resolution == "" {
		resolution = b.cfg.Report.Resolution
	}
	years := req.RangeYears
	if years <= 0 {
		years = b.cfg.Report.RangeYears
	}
	rng := models.LastYears(years)

	start := time.Now()
	f := b.fetch(ctx, symbol, resolution, rng)

	in := report.Inputs{
		Symbol:   symbol,
		Template: req.Template,
		Quote:    f.quote,
		Profile:  f.profile,
		News:     f.news,
	}
	if f.profileErr != nil {
		in.ProfileReason = f.profileErr.Error()
	}
	if f.newsErr != nil {
		in.NewsReason = f.newsErr.Error()
	}

	if f.seriesErr != nil {
		in.SeriesReason = f.seriesErr.Error()
		in.IndicatorsReason = f.seriesErr.Error()
	} else {
		in.Series = f.series
		set, err := b.indicators.Compute(f.series)
		if err != nil {
			in.IndicatorsReason = err.Error()
			b.log.Warn().Err(err).Str("symbol", symbol).Msg("indicator computation failed")
		} else {
			in.Indicators = set
			in.Signals = b.indicators.Signals(set, f.series)
		}
	}

	// Valuation runs on whatever fundamentals arrived; the engine itself
	// marks individual metrics unavailable.
	if f.fundsErr != nil && f.profileErr != nil && f.quoteErr != nil {
		in.ValuationReason = f.fundsErr.Error()
	} else {
		in.Valuation = b.valuation.Evaluate(req.Template, f.funds, f.profile, f.quote)
	}

	doc := report.Compose(in)
	b.record(req.Template, doc, time.Since(start))

	b.log.Info().
		Str("symbol", symbol).
		Str("template", string(req.Template)).
		Int("sections", len(doc.Sections)).
		Dur("elapsed", time.Since(start)).
		Msg("report built")
	return doc, nil
}

// fetch fans out one goroutine per capability and waits for all of them
func (b *Builder) fetch(ctx context.Context, symbol, resolution string, rng models.Range) *fetched {
	f := &fetched{}
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		f.series, f.seriesErr = b.aggregator.GetPriceSeries(ctx, symbol, resolution, rng)
	}()
	go func() {
		defer wg.Done()
		f.quote, f.quoteErr = b.aggregator.GetQuote(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		f.funds, f.fundsErr = b.aggregator.GetFundamentals(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		f.profile, f.profileErr = b.aggregator.GetProfile(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		f.news, f.newsErr = b.aggregator.GetNews(ctx, symbol, b.cfg.Report.NewsLimit)
	}()

	wg.Wait()

	for _, arm := range []struct {
		name string
		err  error
	}{
		{"price_history", f.seriesErr},
		{"quote", f.quoteErr},
		{"fundamentals", f.fundsErr},
		{"profile", f.profileErr},
		{"news", f.newsErr},
	} {
		if arm.err != nil {
			b.log.Warn().Err(arm.err).Str("symbol", symbol).Str("capability", arm.name).Msg("fetch failed")
		}
	}
	return f
}

func (b *Builder) record(kind models.TemplateKind, doc *report.Document, elapsed time.Duration) {
	if b.registry == nil {
		return
	}
	b.registry.BuildDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	result := "ok"
	for _, s := range doc.Sections {
		if s.Unavailable {
			result = "partial"
			b.registry.UnavailableSections.WithLabelValues(s.Name).Inc()
		}
	}
	b.registry.BuildsTotal.WithLabelValues(string(kind), result).Inc()

	// Cache stats are cumulative; export the delta since the last build.
	hits, misses := b.aggregator.CacheStats()
	b.statsMu.Lock()
	b.registry.CacheHits.Add(float64(hits - b.lastHits))
	b.registry.CacheMisses.Add(float64(misses - b.lastMisses))
	b.lastHits, b.lastMisses = hits, misses
	b.statsMu.Unlock()
}
