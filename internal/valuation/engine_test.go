package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

func testFundamentals() *models.Fundamentals {
	f := &models.Fundamentals{Symbol: "AAPL"}
	f.Add(models.ItemRevenue, "2024", 400)
	f.Add(models.ItemRevenue, "2023", 380)
	f.Add(models.ItemRevenue, "2022", 360)
	f.Add(models.ItemRevenue, "2021", 340)
	f.Add(models.ItemNetIncome, "2024", 100)
	f.Add(models.ItemNetIncome, "2023", 95)
	f.Add(models.ItemEBITDA, "2024", 130)
	f.Add(models.ItemTotalDebt, "2024", 110)
	f.Add(models.ItemCashAndEquivalents, "2024", 30)
	f.Add(models.ItemTotalAssets, "2024", 360)
	f.Add(models.ItemTotalLiabilities, "2024", 300)
	f.Add(models.ItemCurrentAssets, "2024", 150)
	f.Add(models.ItemCurrentLiabilities, "2024", 100)
	f.Add(models.ItemInventory, "2024", 10)
	return f
}

func testProfile() *models.CompanyProfile {
	return &models.CompanyProfile{
		Symbol:            "AAPL",
		Name:              "Apple Inc.",
		MarketCap:         3000,
		EPS:               6.0,
		ForwardPE:         28,
		BookValuePerShare: 4.0,
		DividendYield:     0.005,
		FiftyTwoWeekHigh:  200,
		FiftyTwoWeekLow:   150,
	}
}

func testQuote() *models.Quote {
	return &models.Quote{Symbol: "AAPL", Price: 180}
}

func TestGrowthMetrics(t *testing.T) {
	r := NewEngine().Evaluate(models.TemplateGrowth, testFundamentals(), testProfile(), testQuote())

	m, ok := r.Get("revenue_growth_yoy")
	require.True(t, ok)
	require.False(t, m.Unavailable)
	assert.InDelta(t, (400.0-380.0)/380.0, m.Value, 1e-9)

	m, ok = r.Get("revenue_cagr_3y")
	require.True(t, ok)
	require.False(t, m.Unavailable)
	assert.InDelta(t, math.Pow(400.0/340.0, 1.0/3.0)-1.0, m.Value, 1e-9)

	// only two net income periods: the 3y CAGR cannot be computed
	m, ok = r.Get("net_income_cagr_3y")
	require.True(t, ok)
	assert.True(t, m.Unavailable)
	assert.NotEmpty(t, m.Reason)
}

func TestValueMetrics(t *testing.T) {
	r := NewEngine().Evaluate(models.TemplateValue, testFundamentals(), testProfile(), testQuote())

	m, ok := r.Get("pe_ratio")
	require.True(t, ok)
	require.False(t, m.Unavailable)
	assert.InDelta(t, 30.0, m.Value, 1e-9)

	m, _ = r.Get("ev_to_ebitda")
	require.False(t, m.Unavailable)
	assert.InDelta(t, (3000.0+110.0-30.0)/130.0, m.Value, 1e-9)

	m, _ = r.Get("debt_to_equity")
	require.False(t, m.Unavailable)
	assert.InDelta(t, 300.0/60.0, m.Value, 1e-9)

	m, _ = r.Get("quick_ratio")
	require.False(t, m.Unavailable)
	assert.InDelta(t, (150.0-10.0)/100.0, m.Value, 1e-9)

	m, _ = r.Get("graham_number")
	require.False(t, m.Unavailable)
	assert.InDelta(t, math.Sqrt(22.5*6.0*4.0), m.Value, 1e-9)
}

func TestZeroDenominatorsBecomeUnavailable(t *testing.T) {
	f := testFundamentals()
	f.Items[models.ItemCurrentLiabilities] = []models.LineItem{{Period: "2024", Value: 0}}

	p := testProfile()
	p.EPS = -2.5 // loss-making

	r := NewEngine().Evaluate(models.TemplateValue, f, p, testQuote())

	m, _ := r.Get("current_ratio")
	assert.True(t, m.Unavailable, "zero current liabilities must not divide")
	assert.NotEmpty(t, m.Reason)

	m, _ = r.Get("quick_ratio")
	assert.True(t, m.Unavailable)

	m, _ = r.Get("graham_number")
	assert.True(t, m.Unavailable, "negative EPS invalidates the Graham number")

	// unrelated metrics still compute
	m, _ = r.Get("price_to_book")
	assert.False(t, m.Unavailable)
}

func TestNegativeEquityUnavailable(t *testing.T) {
	f := testFundamentals()
	f.Items[models.ItemTotalLiabilities] = []models.LineItem{{Period: "2024", Value: 500}}

	r := NewEngine().Evaluate(models.TemplateValue, f, testProfile(), testQuote())
	m, _ := r.Get("debt_to_equity")
	assert.True(t, m.Unavailable, "negative equity must not produce a ratio")
}

func TestMetricsAreTraceable(t *testing.T) {
	r := NewEngine().Evaluate(models.TemplateValue, testFundamentals(), testProfile(), testQuote())
	for _, m := range r.Metrics {
		assert.NotEmpty(t, m.Formula, "metric %s missing formula", m.Name)
		if !m.Unavailable {
			assert.NotEmpty(t, m.Inputs, "metric %s missing inputs", m.Name)
		}
	}
}

func TestNilInputsAllUnavailable(t *testing.T) {
	r := NewEngine().Evaluate(models.TemplateCore, nil, nil, nil)
	require.NotEmpty(t, r.Metrics)
	assert.Equal(t, 0, r.Available())
	for _, m := range r.Metrics {
		assert.True(t, m.Unavailable)
		assert.NotEmpty(t, m.Reason)
	}
}

func TestProfileFallbackForGrowth(t *testing.T) {
	p := testProfile()
	p.RevenueGrowthYoY = 0.08

	r := NewEngine().Evaluate(models.TemplateGrowth, nil, p, testQuote())
	m, _ := r.Get("revenue_growth_yoy")
	require.False(t, m.Unavailable)
	assert.InDelta(t, 0.08, m.Value, 1e-9)
}

func TestCoreRangePosition(t *testing.T) {
	r := NewEngine().Evaluate(models.TemplateCore, nil, testProfile(), testQuote())
	m, ok := r.Get("range_52w_position")
	require.True(t, ok)
	require.False(t, m.Unavailable)
	assert.InDelta(t, (180.0-150.0)/(200.0-150.0), m.Value, 1e-9)
}

func TestMetricOrderFixedPerKind(t *testing.T) {
	a := NewEngine().Evaluate(models.TemplateGrowth, testFundamentals(), testProfile(), testQuote())
	b := NewEngine().Evaluate(models.TemplateGrowth, testFundamentals(), testProfile(), testQuote())
	require.Equal(t, len(a.Metrics), len(b.Metrics))
	for i := range a.Metrics {
		assert.Equal(t, a.Metrics[i].Name, b.Metrics[i].Name)
	}
}
