package models

import (
	"fmt"
	"time"
)

// PriceBar represents a single OHLCV candle
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is an ordered sequence of bars for one symbol at one resolution.
// Timestamps are strictly increasing. Daily series follow the exchange
// calendar, so weekend/holiday gaps are expected and never filled.
type PriceSeries struct {
	Symbol     string     `json:"symbol"`
	Resolution string     `json:"resolution"`
	Source     string     `json:"source"`
	Bars       []PriceBar `json:"bars"`
}

// Resolution tokens understood by providers and the aggregator
const (
	ResolutionDaily    = "1d"
	ResolutionIntraday = "1min"
)

// Validate checks the strictly-increasing timestamp invariant
func (s *PriceSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("series %s: bar %d timestamp %s not after %s",
				s.Symbol, i, s.Bars[i].Timestamp.Format(time.RFC3339),
				s.Bars[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes extracts the close column
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}
	return closes
}

// Range bounds a historical data request. Zero Start or End means unbounded
// on that side.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the range
func (r Range) Contains(ts time.Time) bool {
	if !r.Start.IsZero() && ts.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && ts.After(r.End) {
		return false
	}
	return true
}

// LastYears builds a range covering the trailing n years up to now
func LastYears(n int) Range {
	now := time.Now().UTC()
	return Range{Start: now.AddDate(-n, 0, 0), End: now}
}

// Quote is the latest price snapshot for a symbol. Superseded on each
// refresh, never updated in place.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Timestamp time.Time `json:"timestamp"`
}

// LineItem is one reported value of a statement line item for one fiscal
// period ("2024", "2024-Q3")
type LineItem struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// Fundamentals maps statement line-item names to their reported values,
// newest period first. (item, period) pairs are unique.
type Fundamentals struct {
	Symbol string                `json:"symbol"`
	Items  map[string][]LineItem `json:"items"`
}

// Well-known line item names as normalized by the fundamentals adapters
const (
	ItemRevenue            = "revenue"
	ItemNetIncome          = "net_income"
	ItemEBITDA             = "ebitda"
	ItemTotalAssets        = "total_assets"
	ItemTotalLiabilities   = "total_liabilities"
	ItemCurrentAssets      = "total_current_assets"
	ItemCurrentLiabilities = "total_current_liabilities"
	ItemInventory          = "inventory"
	ItemTotalDebt          = "total_debt"
	ItemTotalEquity        = "total_equity"
	ItemCashAndEquivalents = "cash_and_equivalents"
	ItemOperatingCashFlow  = "operating_cash_flow"
)

// Latest returns the most recent value for an item
func (f *Fundamentals) Latest(item string) (LineItem, bool) {
	vals := f.Items[item]
	if len(vals) == 0 {
		return LineItem{}, false
	}
	return vals[0], true
}

// History returns up to n most recent values for an item, newest first
func (f *Fundamentals) History(item string, n int) []LineItem {
	vals := f.Items[item]
	if len(vals) > n {
		vals = vals[:n]
	}
	return vals
}

// Add appends a line item value, keeping (item, period) unique. A duplicate
// period is ignored; the first writer for a period wins.
func (f *Fundamentals) Add(item, period string, value float64) {
	if f.Items == nil {
		f.Items = make(map[string][]LineItem)
	}
	for _, existing := range f.Items[item] {
		if existing.Period == period {
			return
		}
	}
	f.Items[item] = append(f.Items[item], LineItem{Period: period, Value: value})
}

// CompanyProfile is the overview snapshot used for the report header and the
// ratio-style valuation inputs that providers report directly
type CompanyProfile struct {
	Symbol               string  `json:"symbol"`
	Name                 string  `json:"name"`
	Sector               string  `json:"sector"`
	Industry             string  `json:"industry"`
	Description          string  `json:"description"`
	Website              string  `json:"website"`
	MarketCap            float64 `json:"market_cap"`
	PERatio              float64 `json:"pe_ratio"`
	ForwardPE            float64 `json:"forward_pe"`
	EPS                  float64 `json:"eps"`
	BookValuePerShare    float64 `json:"book_value_per_share"`
	DividendYield        float64 `json:"dividend_yield"`
	Beta                 float64 `json:"beta"`
	RevenueGrowthYoY     float64 `json:"revenue_growth_yoy"`
	EarningsGrowthYoY    float64 `json:"earnings_growth_yoy"`
	DebtToEquity         float64 `json:"debt_to_equity"`
	CurrentRatio         float64 `json:"current_ratio"`
	QuickRatio           float64 `json:"quick_ratio"`
	FiftyTwoWeekHigh     float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow      float64 `json:"fifty_two_week_low"`
	FiftyDayAverage      float64 `json:"fifty_day_average"`
	TwoHundredDayAverage float64 `json:"two_hundred_day_average"`
	SharesOutstanding    float64 `json:"shares_outstanding"`
}

// NewsItem is one normalized news article
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
