package valuation

import (
	"fmt"
	"math"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// Metric is one named valuation output. Every metric reports its formula and
// the inputs it consumed, so the result is traceable. A metric whose required
// input is absent, zero or negative where a denominator needs to be positive
// is marked Unavailable with a reason instead of carrying a misleading value.
type Metric struct {
	Name        string             `json:"name"`
	Value       float64            `json:"value"`
	Formula     string             `json:"formula"`
	Inputs      map[string]float64 `json:"inputs,omitempty"`
	Unavailable bool               `json:"unavailable"`
	Reason      string             `json:"reason,omitempty"`
}

// Result is the valuation output for one symbol and analysis kind. Metric
// order is fixed per kind so composed documents are deterministic.
type Result struct {
	Symbol  string              `json:"symbol"`
	Kind    models.TemplateKind `json:"kind"`
	Metrics []Metric            `json:"metrics"`
}

// Get looks a metric up by name
func (r *Result) Get(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Available counts the metrics that were computed
func (r *Result) Available() int {
	n := 0
	for _, m := range r.Metrics {
		if !m.Unavailable {
			n++
		}
	}
	return n
}

// Engine computes valuation metric sets from fundamentals, the company
// profile snapshot and the latest quote. Pure and deterministic; any input
// may be nil and only the metrics needing it become unavailable.
type Engine struct{}

// NewEngine creates a valuation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate computes the metric set for the requested analysis kind
func (e *Engine) Evaluate(kind models.TemplateKind, f *models.Fundamentals, p *models.CompanyProfile, q *models.Quote) *Result {
	in := inputs{fundamentals: f, profile: p, quote: q}
	symbol := in.symbol()

	var metrics []Metric
	switch kind {
	case models.TemplateGrowth:
		metrics = []Metric{
			in.revenueGrowthYoY(),
			in.earningsGrowthYoY(),
			in.cagr("revenue_cagr_3y", models.ItemRevenue, 3),
			in.cagr("net_income_cagr_3y", models.ItemNetIncome, 3),
			in.forwardPE(),
			in.pegRatio(),
			in.marketCap(),
		}
	case models.TemplateValue:
		metrics = []Metric{
			in.peRatio(),
			in.forwardPE(),
			in.priceToBook(),
			in.evToEBITDA(),
			in.dividendYield(),
			in.debtToEquity(),
			in.currentRatio(),
			in.quickRatio(),
			in.grahamNumber(),
		}
	default: // core
		metrics = []Metric{
			in.currentPrice(),
			in.marketCap(),
			in.peRatio(),
			in.eps(),
			in.revenueGrowthYoY(),
			in.dividendYield(),
			in.quickRatio(),
			in.range52wPosition(),
		}
	}

	return &Result{Symbol: symbol, Kind: kind, Metrics: metrics}
}

type inputs struct {
	fundamentals *models.Fundamentals
	profile      *models.CompanyProfile
	quote        *models.Quote
}

func (in inputs) symbol() string {
	switch {
	case in.profile != nil && in.profile.Symbol != "":
		return in.profile.Symbol
	case in.fundamentals != nil:
		return in.fundamentals.Symbol
	case in.quote != nil:
		return in.quote.Symbol
	}
	return ""
}

func available(name string, value float64, formula string, ins map[string]float64) Metric {
	return Metric{Name: name, Value: value, Formula: formula, Inputs: ins}
}

func unavailable(name, formula, reason string) Metric {
	return Metric{Name: name, Formula: formula, Unavailable: true, Reason: reason}
}

func (in inputs) price() (float64, bool) {
	if in.quote != nil && in.quote.Price > 0 {
		return in.quote.Price, true
	}
	return 0, false
}

// latestPair returns the two most recent values of an item
func (in inputs) latestPair(item string) (current, previous models.LineItem, ok bool) {
	if in.fundamentals == nil {
		return current, previous, false
	}
	hist := in.fundamentals.History(item, 2)
	if len(hist) < 2 {
		return current, previous, false
	}
	return hist[0], hist[1], true
}

func growthMetric(name, item string, current, previous models.LineItem) Metric {
	formula := fmt.Sprintf("(%s[t] - %s[t-1]) / %s[t-1]", item, item, item)
	if previous.Value <= 0 {
		return unavailable(name, formula, fmt.Sprintf("prior-period %s not positive", item))
	}
	value := (current.Value - previous.Value) / previous.Value
	return available(name, value, formula, map[string]float64{
		item + "_current":  current.Value,
		item + "_previous": previous.Value,
	})
}

func (in inputs) revenueGrowthYoY() Metric {
	if current, previous, ok := in.latestPair(models.ItemRevenue); ok {
		return growthMetric("revenue_growth_yoy", models.ItemRevenue, current, previous)
	}
	// fall back to the provider-reported quarterly growth snapshot
	if in.profile != nil && in.profile.RevenueGrowthYoY != 0 {
		return available("revenue_growth_yoy", in.profile.RevenueGrowthYoY,
			"provider-reported quarterly revenue growth YoY",
			map[string]float64{"reported_growth": in.profile.RevenueGrowthYoY})
	}
	return unavailable("revenue_growth_yoy", "(revenue[t] - revenue[t-1]) / revenue[t-1]",
		"revenue history unavailable")
}

func (in inputs) earningsGrowthYoY() Metric {
	if current, previous, ok := in.latestPair(models.ItemNetIncome); ok {
		return growthMetric("earnings_growth_yoy", models.ItemNetIncome, current, previous)
	}
	if in.profile != nil && in.profile.EarningsGrowthYoY != 0 {
		return available("earnings_growth_yoy", in.profile.EarningsGrowthYoY,
			"provider-reported quarterly earnings growth YoY",
			map[string]float64{"reported_growth": in.profile.EarningsGrowthYoY})
	}
	return unavailable("earnings_growth_yoy", "(net_income[t] - net_income[t-1]) / net_income[t-1]",
		"net income history unavailable")
}

// cagr computes the trailing multi-period compound annual growth rate
func (in inputs) cagr(name, item string, years int) Metric {
	formula := fmt.Sprintf("(%s[t] / %s[t-%d])^(1/%d) - 1", item, item, years, years)
	if in.fundamentals == nil {
		return unavailable(name, formula, "fundamentals unavailable")
	}
	hist := in.fundamentals.History(item, years+1)
	if len(hist) < years+1 {
		return unavailable(name, formula,
			fmt.Sprintf("need %d periods of %s, have %d", years+1, item, len(hist)))
	}
	end := hist[0].Value
	start := hist[years].Value
	if start <= 0 || end <= 0 {
		return unavailable(name, formula, fmt.Sprintf("%s not positive over window", item))
	}
	value := math.Pow(end/start, 1.0/float64(years)) - 1.0
	return available(name, value, formula, map[string]float64{
		item + "_end":   end,
		item + "_start": start,
		"years":         float64(years),
	})
}

func (in inputs) peRatio() Metric {
	const formula = "price / eps"
	price, ok := in.price()
	if ok && in.profile != nil && in.profile.EPS > 0 {
		return available("pe_ratio", price/in.profile.EPS, formula, map[string]float64{
			"price": price, "eps": in.profile.EPS,
		})
	}
	// provider-reported ratio when we lack a live quote
	if in.profile != nil && in.profile.PERatio > 0 {
		return available("pe_ratio", in.profile.PERatio, "provider-reported trailing P/E",
			map[string]float64{"reported_pe": in.profile.PERatio})
	}
	if in.profile != nil && in.profile.EPS <= 0 {
		return unavailable("pe_ratio", formula, "EPS not positive")
	}
	return unavailable("pe_ratio", formula, "price and reported P/E unavailable")
}

func (in inputs) forwardPE() Metric {
	if in.profile != nil && in.profile.ForwardPE > 0 {
		return available("forward_pe", in.profile.ForwardPE, "provider-reported forward P/E",
			map[string]float64{"reported_forward_pe": in.profile.ForwardPE})
	}
	return unavailable("forward_pe", "provider-reported forward P/E", "forward estimate unavailable")
}

func (in inputs) pegRatio() Metric {
	const formula = "pe_ratio / (earnings_growth_yoy * 100)"
	pe := in.peRatio()
	growth := in.earningsGrowthYoY()
	if pe.Unavailable {
		return unavailable("peg_ratio", formula, "P/E unavailable")
	}
	if growth.Unavailable || growth.Value <= 0 {
		return unavailable("peg_ratio", formula, "earnings growth not positive")
	}
	return available("peg_ratio", pe.Value/(growth.Value*100), formula, map[string]float64{
		"pe_ratio": pe.Value, "earnings_growth_yoy": growth.Value,
	})
}

func (in inputs) priceToBook() Metric {
	const formula = "price / book_value_per_share"
	price, ok := in.price()
	if !ok {
		return unavailable("price_to_book", formula, "quote unavailable")
	}
	if in.profile == nil || in.profile.BookValuePerShare <= 0 {
		return unavailable("price_to_book", formula, "book value per share not positive")
	}
	return available("price_to_book", price/in.profile.BookValuePerShare, formula, map[string]float64{
		"price": price, "book_value_per_share": in.profile.BookValuePerShare,
	})
}

func (in inputs) evToEBITDA() Metric {
	const formula = "(market_cap + total_debt - cash) / ebitda"
	if in.profile == nil || in.profile.MarketCap <= 0 {
		return unavailable("ev_to_ebitda", formula, "market cap unavailable")
	}
	if in.fundamentals == nil {
		return unavailable("ev_to_ebitda", formula, "fundamentals unavailable")
	}
	ebitda, okE := in.fundamentals.Latest(models.ItemEBITDA)
	if !okE || ebitda.Value <= 0 {
		return unavailable("ev_to_ebitda", formula, "EBITDA not positive")
	}
	debt, _ := in.fundamentals.Latest(models.ItemTotalDebt)
	cash, _ := in.fundamentals.Latest(models.ItemCashAndEquivalents)
	ev := in.profile.MarketCap + debt.Value - cash.Value
	return available("ev_to_ebitda", ev/ebitda.Value, formula, map[string]float64{
		"market_cap": in.profile.MarketCap,
		"total_debt": debt.Value,
		"cash":       cash.Value,
		"ebitda":     ebitda.Value,
	})
}

func (in inputs) dividendYield() Metric {
	if in.profile != nil && in.profile.DividendYield > 0 {
		return available("dividend_yield", in.profile.DividendYield, "provider-reported dividend yield",
			map[string]float64{"reported_yield": in.profile.DividendYield})
	}
	return unavailable("dividend_yield", "provider-reported dividend yield", "no dividend reported")
}

func (in inputs) debtToEquity() Metric {
	const formula = "total_liabilities / (total_assets - total_liabilities)"
	if in.fundamentals == nil {
		return unavailable("debt_to_equity", formula, "fundamentals unavailable")
	}
	liabilities, okL := in.fundamentals.Latest(models.ItemTotalLiabilities)
	assets, okA := in.fundamentals.Latest(models.ItemTotalAssets)
	if !okL || !okA {
		return unavailable("debt_to_equity", formula, "balance sheet unavailable")
	}
	equity := assets.Value - liabilities.Value
	if equity <= 0 {
		return unavailable("debt_to_equity", formula, "equity not positive")
	}
	return available("debt_to_equity", liabilities.Value/equity, formula, map[string]float64{
		"total_liabilities": liabilities.Value,
		"total_assets":      assets.Value,
	})
}

func (in inputs) currentRatio() Metric {
	const formula = "total_current_assets / total_current_liabilities"
	if in.fundamentals == nil {
		return unavailable("current_ratio", formula, "fundamentals unavailable")
	}
	assets, okA := in.fundamentals.Latest(models.ItemCurrentAssets)
	liabilities, okL := in.fundamentals.Latest(models.ItemCurrentLiabilities)
	if !okA || !okL {
		return unavailable("current_ratio", formula, "balance sheet unavailable")
	}
	if liabilities.Value <= 0 {
		return unavailable("current_ratio", formula, "current liabilities not positive")
	}
	return available("current_ratio", assets.Value/liabilities.Value, formula, map[string]float64{
		"total_current_assets":      assets.Value,
		"total_current_liabilities": liabilities.Value,
	})
}

func (in inputs) quickRatio() Metric {
	const formula = "(total_current_assets - inventory) / total_current_liabilities"
	if in.fundamentals == nil {
		if in.profile != nil && in.profile.QuickRatio > 0 {
			return available("quick_ratio", in.profile.QuickRatio, "provider-reported quick ratio",
				map[string]float64{"reported_quick_ratio": in.profile.QuickRatio})
		}
		return unavailable("quick_ratio", formula, "fundamentals unavailable")
	}
	assets, okA := in.fundamentals.Latest(models.ItemCurrentAssets)
	liabilities, okL := in.fundamentals.Latest(models.ItemCurrentLiabilities)
	if !okA || !okL {
		return unavailable("quick_ratio", formula, "balance sheet unavailable")
	}
	if liabilities.Value <= 0 {
		return unavailable("quick_ratio", formula, "current liabilities not positive")
	}
	inventory, _ := in.fundamentals.Latest(models.ItemInventory)
	return available("quick_ratio", (assets.Value-inventory.Value)/liabilities.Value, formula, map[string]float64{
		"total_current_assets":      assets.Value,
		"inventory":                 inventory.Value,
		"total_current_liabilities": liabilities.Value,
	})
}

// grahamNumber is the intrinsic-value estimate sqrt(22.5 * EPS * BVPS)
func (in inputs) grahamNumber() Metric {
	const formula = "sqrt(22.5 * eps * book_value_per_share)"
	if in.profile == nil || in.profile.EPS <= 0 || in.profile.BookValuePerShare <= 0 {
		return unavailable("graham_number", formula, "requires positive EPS and book value per share")
	}
	value := math.Sqrt(22.5 * in.profile.EPS * in.profile.BookValuePerShare)
	return available("graham_number", value, formula, map[string]float64{
		"eps":                  in.profile.EPS,
		"book_value_per_share": in.profile.BookValuePerShare,
	})
}

func (in inputs) marketCap() Metric {
	if in.profile != nil && in.profile.MarketCap > 0 {
		return available("market_cap", in.profile.MarketCap, "provider-reported market capitalization",
			map[string]float64{"reported_market_cap": in.profile.MarketCap})
	}
	return unavailable("market_cap", "provider-reported market capitalization", "market cap unavailable")
}

func (in inputs) currentPrice() Metric {
	const formula = "latest trade price"
	if price, ok := in.price(); ok {
		return available("current_price", price, formula, map[string]float64{"price": price})
	}
	return unavailable("current_price", formula, "quote unavailable")
}

func (in inputs) eps() Metric {
	if in.profile != nil && in.profile.EPS != 0 {
		return available("eps", in.profile.EPS, "provider-reported trailing EPS",
			map[string]float64{"reported_eps": in.profile.EPS})
	}
	return unavailable("eps", "provider-reported trailing EPS", "EPS unavailable")
}

// range52wPosition places the current price inside the 52-week range, 0 at
// the low and 1 at the high
func (in inputs) range52wPosition() Metric {
	const formula = "(price - low_52w) / (high_52w - low_52w)"
	price, ok := in.price()
	if !ok {
		return unavailable("range_52w_position", formula, "quote unavailable")
	}
	if in.profile == nil || in.profile.FiftyTwoWeekHigh <= in.profile.FiftyTwoWeekLow {
		return unavailable("range_52w_position", formula, "52-week range unavailable")
	}
	value := (price - in.profile.FiftyTwoWeekLow) /
		(in.profile.FiftyTwoWeekHigh - in.profile.FiftyTwoWeekLow)
	return available("range_52w_position", value, formula, map[string]float64{
		"price":    price,
		"high_52w": in.profile.FiftyTwoWeekHigh,
		"low_52w":  in.profile.FiftyTwoWeekLow,
	})
}
