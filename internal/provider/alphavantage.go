package provider

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// AlphaVantageAdapter serves daily price history and the company overview
// snapshot. Free-tier Alpha Vantage only supports daily/weekly/monthly
// candles, so intraday requests are rejected as unsupported.
type AlphaVantageAdapter struct {
	config AdapterConfig
	client *restClient
}

// NewAlphaVantageAdapter creates an Alpha Vantage adapter
func NewAlphaVantageAdapter(config AdapterConfig) *AlphaVantageAdapter {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.alphavantage.co"
	}
	return &AlphaVantageAdapter{
		config: config,
		client: newRESTClient("alphavantage", config),
	}
}

func (a *AlphaVantageAdapter) Name() string { return "alphavantage" }

func (a *AlphaVantageAdapter) Capabilities() []Capability {
	return []Capability{CapPriceHistory, CapProfile}
}

type avDailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
}

// GetPriceHistory fetches the full daily series and trims it to the range
func (a *AlphaVantageAdapter) GetPriceHistory(ctx context.Context, symbol, resolution string, rng models.Range) (*models.PriceSeries, error) {
	if resolution != models.ResolutionDaily {
		return nil, &FetchError{
			Provider: a.Name(),
			Code:     ErrCodeUnsupported,
			Message:  fmt.Sprintf("resolution %s not supported, daily only", resolution),
		}
	}

	endpoint := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=full&apikey=%s",
		a.config.BaseURL, url.QueryEscape(symbol), url.QueryEscape(a.config.APIKey))

	var resp avDailyResponse
	if err := a.client.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if err := a.checkEnvelope(resp.ErrorMessage, resp.Note); err != nil {
		return nil, err
	}
	if len(resp.Series) == 0 {
		return nil, errMalformed(a.Name(), fmt.Errorf("empty daily time series for %s", symbol))
	}

	bars := make([]models.PriceBar, 0, len(resp.Series))
	for day, fields := range resp.Series {
		ts, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, errMalformed(a.Name(), fmt.Errorf("bad date key %q: %w", day, err))
		}
		if !rng.Contains(ts) {
			continue
		}
		bar, err := parseAVBar(ts, fields)
		if err != nil {
			return nil, errMalformed(a.Name(), err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })

	return &models.PriceSeries{
		Symbol:     symbol,
		Resolution: models.ResolutionDaily,
		Source:     a.Name(),
		Bars:       bars,
	}, nil
}

func parseAVBar(ts time.Time, fields map[string]string) (models.PriceBar, error) {
	bar := models.PriceBar{Timestamp: ts}
	for key, dst := range map[string]*float64{
		"1. open":   &bar.Open,
		"2. high":   &bar.High,
		"3. low":    &bar.Low,
		"4. close":  &bar.Close,
		"5. volume": &bar.Volume,
	} {
		raw, ok := fields[key]
		if !ok {
			return bar, fmt.Errorf("missing field %q at %s", key, ts.Format("2006-01-02"))
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bar, fmt.Errorf("bad value %q for %q: %w", raw, key, err)
		}
		*dst = v
	}
	return bar, nil
}

type avOverviewResponse struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`

	Symbol                 string `json:"Symbol"`
	Name                   string `json:"Name"`
	Sector                 string `json:"Sector"`
	Industry               string `json:"Industry"`
	Description            string `json:"Description"`
	Website                string `json:"OfficialSite"`
	MarketCapitalization   string `json:"MarketCapitalization"`
	PERatio                string `json:"PERatio"`
	ForwardPE              string `json:"ForwardPE"`
	EPS                    string `json:"EPS"`
	BookValue              string `json:"BookValue"`
	DividendYield          string `json:"DividendYield"`
	Beta                   string `json:"Beta"`
	QuarterlyRevenueGrowth string `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrow  string `json:"QuarterlyEarningsGrowthYOY"`
	High52Week             string `json:"52WeekHigh"`
	Low52Week              string `json:"52WeekLow"`
	MovingAverage50Day     string `json:"50DayMovingAverage"`
	MovingAverage200Day    string `json:"200DayMovingAverage"`
	SharesOutstanding      string `json:"SharesOutstanding"`
}

// GetProfile fetches the company overview snapshot
func (a *AlphaVantageAdapter) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	endpoint := fmt.Sprintf("%s/query?function=OVERVIEW&symbol=%s&apikey=%s",
		a.config.BaseURL, url.QueryEscape(symbol), url.QueryEscape(a.config.APIKey))

	var resp avOverviewResponse
	if err := a.client.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if err := a.checkEnvelope(resp.ErrorMessage, resp.Note); err != nil {
		return nil, err
	}
	// Alpha Vantage returns an empty object for unknown symbols
	if resp.Symbol == "" && resp.Name == "" {
		return nil, &FetchError{
			Provider: a.Name(),
			Code:     ErrCodeNotFound,
			Message:  fmt.Sprintf("no overview data for %s", symbol),
		}
	}

	return &models.CompanyProfile{
		Symbol:               symbol,
		Name:                 resp.Name,
		Sector:               resp.Sector,
		Industry:             resp.Industry,
		Description:          resp.Description,
		Website:              resp.Website,
		MarketCap:            avFloat(resp.MarketCapitalization),
		PERatio:              avFloat(resp.PERatio),
		ForwardPE:            avFloat(resp.ForwardPE),
		EPS:                  avFloat(resp.EPS),
		BookValuePerShare:    avFloat(resp.BookValue),
		DividendYield:        avFloat(resp.DividendYield),
		Beta:                 avFloat(resp.Beta),
		RevenueGrowthYoY:     avFloat(resp.QuarterlyRevenueGrowth),
		EarningsGrowthYoY:    avFloat(resp.QuarterlyEarningsGrow),
		FiftyTwoWeekHigh:     avFloat(resp.High52Week),
		FiftyTwoWeekLow:      avFloat(resp.Low52Week),
		FiftyDayAverage:      avFloat(resp.MovingAverage50Day),
		TwoHundredDayAverage: avFloat(resp.MovingAverage200Day),
		SharesOutstanding:    avFloat(resp.SharesOutstanding),
	}, nil
}

// checkEnvelope handles Alpha Vantage's habit of reporting failures inside a
// 200 response body
func (a *AlphaVantageAdapter) checkEnvelope(errorMessage, note string) error {
	if note != "" {
		return &FetchError{
			Provider:    a.Name(),
			Code:        ErrCodeRateLimit,
			Message:     "API call frequency limit reached",
			RateLimited: true,
			Temporary:   true,
		}
	}
	if errorMessage != "" {
		return &FetchError{
			Provider: a.Name(),
			Code:     ErrCodeNotFound,
			Message:  errorMessage,
		}
	}
	return nil
}

// avFloat parses Alpha Vantage's stringly-typed numerics; "None" and "-" are
// reported for fields the provider has no value for
func avFloat(raw string) float64 {
	if raw == "" || raw == "None" || raw == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func (a *AlphaVantageAdapter) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, errUnsupported(a.Name(), CapQuote)
}

func (a *AlphaVantageAdapter) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return nil, errUnsupported(a.Name(), CapFundamentals)
}

func (a *AlphaVantageAdapter) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return nil, errUnsupported(a.Name(), CapNews)
}
