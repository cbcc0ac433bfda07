package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// TiingoAdapter is the historical-data fallback feed: deep daily history plus
// curated news.
type TiingoAdapter struct {
	config AdapterConfig
	client *restClient
}

// NewTiingoAdapter creates a Tiingo adapter
func NewTiingoAdapter(config AdapterConfig) *TiingoAdapter {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.tiingo.com"
	}
	return &TiingoAdapter{
		config: config,
		client: newRESTClient("tiingo", config),
	}
}

func (t *TiingoAdapter) Name() string { return "tiingo" }

func (t *TiingoAdapter) Capabilities() []Capability {
	return []Capability{CapPriceHistory, CapNews}
}

func (t *TiingoAdapter) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Token " + t.config.APIKey}
}

type tiingoBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// GetPriceHistory fetches daily candles for the requested range
func (t *TiingoAdapter) GetPriceHistory(ctx context.Context, symbol, resolution string, rng models.Range) (*models.PriceSeries, error) {
	if resolution != models.ResolutionDaily {
		return nil, &FetchError{
			Provider: t.Name(),
			Code:     ErrCodeUnsupported,
			Message:  fmt.Sprintf("resolution %s not supported, daily only", resolution),
		}
	}

	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices", t.config.BaseURL, url.PathEscape(symbol))
	sep := "?"
	if !rng.Start.IsZero() {
		endpoint += sep + "startDate=" + rng.Start.UTC().Format("2006-01-02")
		sep = "&"
	}
	if !rng.End.IsZero() {
		endpoint += sep + "endDate=" + rng.End.UTC().Format("2006-01-02")
	}

	var bars []tiingoBar
	if err := t.client.getJSON(ctx, endpoint, t.authHeaders(), &bars); err != nil {
		return nil, err
	}

	series := &models.PriceSeries{
		Symbol:     symbol,
		Resolution: models.ResolutionDaily,
		Source:     t.Name(),
	}
	for _, bar := range bars {
		ts, err := time.Parse(time.RFC3339, bar.Date)
		if err != nil {
			return nil, errMalformed(t.Name(), fmt.Errorf("bad date %q: %w", bar.Date, err))
		}
		series.Bars = append(series.Bars, models.PriceBar{
			Timestamp: ts.UTC(),
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
		})
	}

	if err := series.Validate(); err != nil {
		return nil, errMalformed(t.Name(), err)
	}
	return series, nil
}

type tiingoArticle struct {
	Title         string    `json:"title"`
	Source        string    `json:"source"`
	URL           string    `json:"url"`
	Description   string    `json:"description"`
	PublishedDate time.Time `json:"publishedDate"`
}

// GetNews fetches the most recent articles tagged with the symbol
func (t *TiingoAdapter) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint := fmt.Sprintf("%s/tiingo/news?tickers=%s&limit=%d",
		t.config.BaseURL, url.QueryEscape(symbol), limit)

	var articles []tiingoArticle
	if err := t.client.getJSON(ctx, endpoint, t.authHeaders(), &articles); err != nil {
		return nil, err
	}

	news := make([]models.NewsItem, 0, len(articles))
	for _, art := range articles {
		news = append(news, models.NewsItem{
			Title:       art.Title,
			Publisher:   art.Source,
			URL:         art.URL,
			Summary:     art.Description,
			PublishedAt: art.PublishedDate.UTC(),
		})
	}
	return news, nil
}

func (t *TiingoAdapter) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, errUnsupported(t.Name(), CapQuote)
}

func (t *TiingoAdapter) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return nil, errUnsupported(t.Name(), CapFundamentals)
}

func (t *TiingoAdapter) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	return nil, errUnsupported(t.Name(), CapProfile)
}
