package report

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BAPNuSigma/StockAI/internal/indicators"
	"github.com/BAPNuSigma/StockAI/internal/models"
	"github.com/BAPNuSigma/StockAI/internal/valuation"
)

// Section is one named block of the one-pager. A section whose inputs could
// not be produced is rendered with Unavailable set and an explicit reason —
// sections are never silently dropped.
type Section struct {
	Name        string      `json:"name"`
	Unavailable bool        `json:"unavailable,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	Content     interface{} `json:"content,omitempty"`
}

// Document is the composed one-pager. Immutable once composed; regenerating
// a report produces a new document with a new ID.
type Document struct {
	ID          string              `json:"id"`
	Symbol      string              `json:"symbol"`
	Template    models.TemplateKind `json:"template"`
	GeneratedAt time.Time           `json:"generated_at"`
	Sections    []Section           `json:"sections"`
}

// Section names in template order
const (
	SectionOverview           = "overview"
	SectionGrowthMetrics      = "growth_metrics"
	SectionValueMetrics       = "value_metrics"
	SectionCoreMetrics        = "core_metrics"
	SectionPriceChart         = "price_chart"
	SectionMomentumIndicators = "momentum_indicators"
	SectionTrendIndicators    = "trend_indicators"
	SectionTechnicalSummary   = "technical_summary"
	SectionNews               = "news"
)

// OverviewContent is the company header block
type OverviewContent struct {
	Name        string  `json:"name"`
	Sector      string  `json:"sector,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	Description string  `json:"description,omitempty"`
	Website     string  `json:"website,omitempty"`
	MarketCap   float64 `json:"market_cap,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Bid         float64 `json:"bid,omitempty"`
	Ask         float64 `json:"ask,omitempty"`
}

// MetricsContent carries the valuation metric table
type MetricsContent struct {
	Kind    models.TemplateKind `json:"kind"`
	Metrics []valuation.Metric  `json:"metrics"`
}

// ChartContent is the aligned price chart payload: timestamps, closes and the
// price-axis overlay series
type ChartContent struct {
	Resolution string                        `json:"resolution"`
	Source     string                        `json:"source"`
	Timestamps []int64                       `json:"timestamps"`
	Closes     []float64                     `json:"closes"`
	Overlays   map[string][]indicators.Value `json:"overlays,omitempty"`
}

// IndicatorsContent carries the latest value of a group of indicators, in
// stable name order
type IndicatorsContent struct {
	Latest []IndicatorReading `json:"latest"`
}

// IndicatorReading is one indicator's most recent value
type IndicatorReading struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

// SummaryContent carries the human-readable technical signal groups
type SummaryContent struct {
	Groups []indicators.SignalGroup `json:"groups"`
}

// NewsContent carries the recent articles block
type NewsContent struct {
	Items []models.NewsItem `json:"items"`
}

// Inputs collects everything the composer consumes. All inputs are
// pre-computed and injected; the composer itself performs no I/O. A nil
// input renders as an unavailable section.
type Inputs struct {
	Symbol      string
	Template    models.TemplateKind
	GeneratedAt time.Time

	Quote      *models.Quote
	Profile    *models.CompanyProfile
	Series     *models.PriceSeries
	Indicators indicators.Set
	Signals    []indicators.SignalGroup
	Valuation  *valuation.Result
	News       []models.NewsItem

	// QuoteErr and friends carry the aggregation failure reasons rendered
	// into unavailable sections
	ProfileReason    string
	SeriesReason     string
	ValuationReason  string
	NewsReason       string
	IndicatorsReason string
}

// Compose assembles the one-pager for the requested template. Section order
// is fixed per template kind and identical across calls with identical
// inputs.
func Compose(in Inputs) *Document {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	doc := &Document{
		ID:          uuid.NewString(),
		Symbol:      strings.ToUpper(in.Symbol),
		Template:    in.Template,
		GeneratedAt: generatedAt,
	}

	switch in.Template {
	case models.TemplateGrowth:
		doc.Sections = []Section{
			overviewSection(in),
			metricsSection(SectionGrowthMetrics, in),
			chartSection(in),
			indicatorsSection(SectionMomentumIndicators, in, momentumIndicator),
			newsSection(in),
		}
	case models.TemplateValue:
		doc.Sections = []Section{
			overviewSection(in),
			metricsSection(SectionValueMetrics, in),
			chartSection(in),
			indicatorsSection(SectionTrendIndicators, in, trendIndicator),
			newsSection(in),
		}
	default: // core
		doc.Sections = []Section{
			overviewSection(in),
			metricsSection(SectionCoreMetrics, in),
			chartSection(in),
			summarySection(in),
			newsSection(in),
		}
	}
	return doc
}

func overviewSection(in Inputs) Section {
	if in.Profile == nil {
		reason := in.ProfileReason
		if reason == "" {
			reason = "company profile unavailable"
		}
		return Section{Name: SectionOverview, Unavailable: true, Reason: reason}
	}
	content := OverviewContent{
		Name:        in.Profile.Name,
		Sector:      in.Profile.Sector,
		Industry:    in.Profile.Industry,
		Description: in.Profile.Description,
		Website:     in.Profile.Website,
		MarketCap:   in.Profile.MarketCap,
	}
	if in.Quote != nil {
		content.Price = in.Quote.Price
		content.Bid = in.Quote.Bid
		content.Ask = in.Quote.Ask
	}
	return Section{Name: SectionOverview, Content: content}
}

func metricsSection(name string, in Inputs) Section {
	if in.Valuation == nil {
		reason := in.ValuationReason
		if reason == "" {
			reason = "valuation inputs unavailable"
		}
		return Section{Name: name, Unavailable: true, Reason: reason}
	}
	return Section{Name: name, Content: MetricsContent{
		Kind:    in.Valuation.Kind,
		Metrics: in.Valuation.Metrics,
	}}
}

func chartSection(in Inputs) Section {
	if in.Series == nil || len(in.Series.Bars) == 0 {
		reason := in.SeriesReason
		if reason == "" {
			reason = "price history unavailable"
		}
		return Section{Name: SectionPriceChart, Unavailable: true, Reason: reason}
	}

	timestamps, closes, overlays := indicators.ChartData(in.Series, in.Indicators, overlayNames(in.Indicators))
	return Section{Name: SectionPriceChart, Content: ChartContent{
		Resolution: in.Series.Resolution,
		Source:     in.Series.Source,
		Timestamps: timestamps,
		Closes:     closes,
		Overlays:   overlays,
	}}
}

func indicatorsSection(name string, in Inputs, match func(string) bool) Section {
	if len(in.Indicators) == 0 {
		reason := in.IndicatorsReason
		if reason == "" {
			reason = "indicators unavailable"
		}
		return Section{Name: name, Unavailable: true, Reason: reason}
	}

	names := make([]string, 0, len(in.Indicators))
	for indicator := range in.Indicators {
		if match(indicator) {
			names = append(names, indicator)
		}
	}
	sort.Strings(names)

	readings := make([]IndicatorReading, 0, len(names))
	for _, indicator := range names {
		value, ok := in.Indicators.Last(indicator)
		readings = append(readings, IndicatorReading{
			Name:        indicator,
			Value:       value,
			Unavailable: !ok,
		})
	}
	return Section{Name: name, Content: IndicatorsContent{Latest: readings}}
}

func summarySection(in Inputs) Section {
	if len(in.Signals) == 0 {
		reason := in.IndicatorsReason
		if reason == "" {
			reason = "technical summary unavailable"
		}
		return Section{Name: SectionTechnicalSummary, Unavailable: true, Reason: reason}
	}
	return Section{Name: SectionTechnicalSummary, Content: SummaryContent{Groups: in.Signals}}
}

func newsSection(in Inputs) Section {
	if in.News == nil {
		reason := in.NewsReason
		if reason == "" {
			reason = "news unavailable"
		}
		return Section{Name: SectionNews, Unavailable: true, Reason: reason}
	}
	return Section{Name: SectionNews, Content: NewsContent{Items: in.News}}
}

func momentumIndicator(name string) bool {
	return strings.HasPrefix(name, "RSI_") ||
		strings.HasPrefix(name, "MACD") ||
		strings.HasPrefix(name, "Stoch_")
}

func trendIndicator(name string) bool {
	return strings.HasPrefix(name, "ADX_") ||
		strings.HasPrefix(name, "CCI_") ||
		strings.HasPrefix(name, "MFI_") ||
		strings.HasPrefix(name, "ATR_")
}

// overlayNames selects the indicators that render on the price axis
func overlayNames(set indicators.Set) []string {
	var names []string
	for name := range set {
		if strings.HasPrefix(name, "SMA_") ||
			strings.HasPrefix(name, "EMA_") ||
			strings.HasPrefix(name, "BB_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
