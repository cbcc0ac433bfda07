package report

import (
	"strings"
	"testing"
	"time"

	"github.com/BAPNuSigma/StockAI/internal/indicators"
	"github.com/BAPNuSigma/StockAI/internal/models"
	"github.com/BAPNuSigma/StockAI/internal/valuation"
)

func fullInputs(kind models.TemplateKind) Inputs {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := make([]models.PriceBar, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.PriceBar{Timestamp: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	series := &models.PriceSeries{Symbol: "AAPL", Resolution: models.ResolutionDaily, Source: "test", Bars: bars}

	engine := indicators.NewEngine(indicators.DefaultConfig())
	set, _ := engine.Compute(series)

	profile := &models.CompanyProfile{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", MarketCap: 3e12, EPS: 6.1, BookValuePerShare: 4.0}
	quote := &models.Quote{Symbol: "AAPL", Price: 190, Bid: 189.9, Ask: 190.1}

	val := valuation.NewEngine().Evaluate(kind, nil, profile, quote)

	return Inputs{
		Symbol:     "aapl",
		Template:   kind,
		Quote:      quote,
		Profile:    profile,
		Series:     series,
		Indicators: set,
		Signals:    engine.Signals(set, series),
		Valuation:  val,
		News:       []models.NewsItem{{Title: "Apple releases results", Publisher: "Newswire"}},
	}
}

func sectionNames(doc *Document) []string {
	names := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		names[i] = s.Name
	}
	return names
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d sections %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("section %d is %q, want %q (full order %v)", i, got[i], want[i], got)
		}
	}
}

func TestComposeSectionOrderPerTemplate(t *testing.T) {
	growth := Compose(fullInputs(models.TemplateGrowth))
	assertOrder(t, sectionNames(growth), []string{
		SectionOverview, SectionGrowthMetrics, SectionPriceChart, SectionMomentumIndicators, SectionNews,
	})

	value := Compose(fullInputs(models.TemplateValue))
	assertOrder(t, sectionNames(value), []string{
		SectionOverview, SectionValueMetrics, SectionPriceChart, SectionTrendIndicators, SectionNews,
	})

	core := Compose(fullInputs(models.TemplateCore))
	assertOrder(t, sectionNames(core), []string{
		SectionOverview, SectionCoreMetrics, SectionPriceChart, SectionTechnicalSummary, SectionNews,
	})
}

func TestComposeSymbolUppercased(t *testing.T) {
	doc := Compose(fullInputs(models.TemplateCore))
	if doc.Symbol != "AAPL" {
		t.Fatalf("symbol should be uppercased, got %q", doc.Symbol)
	}
}

func TestComposeNewIDPerDocument(t *testing.T) {
	in := fullInputs(models.TemplateCore)
	a := Compose(in)
	b := Compose(in)
	if a.ID == b.ID {
		t.Fatal("regenerating a report must produce a new document ID")
	}
}

func TestComposeDeterministicSections(t *testing.T) {
	in := fullInputs(models.TemplateGrowth)
	in.GeneratedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a := Compose(in)
	b := Compose(in)
	assertOrder(t, sectionNames(a), sectionNames(b))

	// indicator readings inside a section keep a stable order too
	ia := a.Sections[3].Content.(IndicatorsContent)
	ib := b.Sections[3].Content.(IndicatorsContent)
	if len(ia.Latest) != len(ib.Latest) {
		t.Fatal("indicator reading counts differ between identical composes")
	}
	for i := range ia.Latest {
		if ia.Latest[i].Name != ib.Latest[i].Name {
			t.Fatalf("indicator order differs at %d: %s vs %s", i, ia.Latest[i].Name, ib.Latest[i].Name)
		}
	}
}

func TestComposeMissingInputsBecomeUnavailableSections(t *testing.T) {
	doc := Compose(Inputs{
		Symbol:       "GME",
		Template:     models.TemplateCore,
		SeriesReason: "every price history provider failed",
	})

	if len(doc.Sections) != 5 {
		t.Fatalf("sections must never be dropped, got %d", len(doc.Sections))
	}
	for _, s := range doc.Sections {
		if !s.Unavailable {
			t.Fatalf("section %s should be unavailable with no inputs", s.Name)
		}
		if s.Reason == "" {
			t.Fatalf("unavailable section %s must carry a reason", s.Name)
		}
	}

	chart := doc.Sections[2]
	if chart.Name != SectionPriceChart || chart.Reason != "every price history provider failed" {
		t.Fatalf("chart section should carry the fetch failure reason, got %+v", chart)
	}
}

func TestMomentumAndTrendSplit(t *testing.T) {
	growth := Compose(fullInputs(models.TemplateGrowth))
	momentum := growth.Sections[3].Content.(IndicatorsContent)
	for _, r := range momentum.Latest {
		if !momentumIndicator(r.Name) {
			t.Fatalf("%s leaked into momentum section", r.Name)
		}
	}

	value := Compose(fullInputs(models.TemplateValue))
	trend := value.Sections[3].Content.(IndicatorsContent)
	for _, r := range trend.Latest {
		if !trendIndicator(r.Name) {
			t.Fatalf("%s leaked into trend section", r.Name)
		}
	}
	if len(momentum.Latest) == 0 || len(trend.Latest) == 0 {
		t.Fatal("expected readings in both indicator groups")
	}
}

func TestChartOverlaysArePriceAxisOnly(t *testing.T) {
	doc := Compose(fullInputs(models.TemplateGrowth))
	chart := doc.Sections[2].Content.(ChartContent)

	if len(chart.Timestamps) != len(chart.Closes) {
		t.Fatal("chart columns must align")
	}
	for name, line := range chart.Overlays {
		if len(line) != len(chart.Closes) {
			t.Fatalf("overlay %s not aligned with closes", name)
		}
		if !strings.HasPrefix(name, "SMA_") && !strings.HasPrefix(name, "EMA_") && !strings.HasPrefix(name, "BB_") {
			t.Fatalf("%s is not a price-axis overlay", name)
		}
	}
}
