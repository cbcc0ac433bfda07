package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry holds the pipeline's Prometheus metrics
type Registry struct {
	// Provider fetch outcomes by provider, capability and result
	ProviderRequests *prometheus.CounterVec

	// Aggregator cache performance
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Report build outcomes
	BuildDuration *prometheus.HistogramVec
	BuildsTotal   *prometheus.CounterVec

	// Section-level data gaps in composed documents
	UnavailableSections *prometheus.CounterVec
}

var (
	defaultRegistry *Registry
	registerOnce    sync.Once
)

// NewRegistry creates the metric set without registering it, for tests
func NewRegistry() *Registry {
	return &Registry{
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockai_provider_requests_total",
				Help: "Provider fetch attempts by provider, capability and result",
			},
			[]string{"provider", "capability", "result"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockai_cache_hits_total",
				Help: "Aggregator cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockai_cache_misses_total",
				Help: "Aggregator cache misses",
			},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockai_report_build_seconds",
				Help:    "Report build duration by template",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"template"},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockai_report_builds_total",
				Help: "Report builds by template and result",
			},
			[]string{"template", "result"},
		),
		UnavailableSections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockai_unavailable_sections_total",
				Help: "Sections rendered with a data-unavailable marker, by section name",
			},
			[]string{"section"},
		),
	}
}

// Default returns the process-wide registry, registering its collectors with
// the default Prometheus registerer exactly once
func Default() *Registry {
	registerOnce.Do(func() {
		defaultRegistry = NewRegistry()
		collectors := []prometheus.Collector{
			defaultRegistry.ProviderRequests,
			defaultRegistry.CacheHits,
			defaultRegistry.CacheMisses,
			defaultRegistry.BuildDuration,
			defaultRegistry.BuildsTotal,
			defaultRegistry.UnavailableSections,
		}
		for _, c := range collectors {
			if err := prometheus.Register(c); err != nil {
				log.Warn().Err(err).Msg("failed to register metrics collector")
			}
		}
	})
	return defaultRegistry
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
