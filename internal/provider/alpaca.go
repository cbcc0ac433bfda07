package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// AlpacaAdapter is the primary trading feed: recent intraday/daily bars and
// the latest quote snapshot. Historical depth is limited compared to the
// historical-data providers, so the aggregator backfills older ranges from
// them.
type AlpacaAdapter struct {
	config AdapterConfig
	client *restClient
}

// NewAlpacaAdapter creates an Alpaca market data adapter
func NewAlpacaAdapter(config AdapterConfig) *AlpacaAdapter {
	if config.BaseURL == "" {
		config.BaseURL = "https://data.alpaca.markets"
	}
	return &AlpacaAdapter{
		config: config,
		client: newRESTClient("alpaca", config),
	}
}

func (a *AlpacaAdapter) Name() string { return "alpaca" }

func (a *AlpacaAdapter) Capabilities() []Capability {
	return []Capability{CapPriceHistory, CapQuote}
}

func (a *AlpacaAdapter) authHeaders() map[string]string {
	return map[string]string{
		"APCA-API-KEY-ID":     a.config.APIKey,
		"APCA-API-SECRET-KEY": a.config.APISecret,
	}
}

type alpacaBar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    float64   `json:"v"`
}

type alpacaBarsResponse struct {
	Bars          []alpacaBar `json:"bars"`
	Symbol        string      `json:"symbol"`
	NextPageToken string      `json:"next_page_token"`
}

// GetPriceHistory fetches bars at the requested resolution. Alpaca pages
// results; pages are followed until the range is covered.
func (a *AlpacaAdapter) GetPriceHistory(ctx context.Context, symbol, resolution string, rng models.Range) (*models.PriceSeries, error) {
	var timeframe string
	switch resolution {
	case models.ResolutionDaily:
		timeframe = "1Day"
	case models.ResolutionIntraday:
		timeframe = "1Min"
	default:
		return nil, &FetchError{
			Provider: a.Name(),
			Code:     ErrCodeUnsupported,
			Message:  fmt.Sprintf("resolution %s not supported", resolution),
		}
	}

	series := &models.PriceSeries{
		Symbol:     symbol,
		Resolution: resolution,
		Source:     a.Name(),
	}

	pageToken := ""
	for {
		endpoint := fmt.Sprintf("%s/v2/stocks/%s/bars?timeframe=%s&limit=10000&adjustment=split",
			a.config.BaseURL, url.PathEscape(symbol), timeframe)
		if !rng.Start.IsZero() {
			endpoint += "&start=" + url.QueryEscape(rng.Start.UTC().Format(time.RFC3339))
		}
		if !rng.End.IsZero() {
			endpoint += "&end=" + url.QueryEscape(rng.End.UTC().Format(time.RFC3339))
		}
		if pageToken != "" {
			endpoint += "&page_token=" + url.QueryEscape(pageToken)
		}

		var resp alpacaBarsResponse
		if err := a.client.getJSON(ctx, endpoint, a.authHeaders(), &resp); err != nil {
			return nil, err
		}

		for _, bar := range resp.Bars {
			series.Bars = append(series.Bars, models.PriceBar{
				Timestamp: bar.Timestamp.UTC(),
				Open:      bar.Open,
				High:      bar.High,
				Low:       bar.Low,
				Close:     bar.Close,
				Volume:    bar.Volume,
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if err := series.Validate(); err != nil {
		return nil, errMalformed(a.Name(), err)
	}
	return series, nil
}

type alpacaLatestTradeResponse struct {
	Symbol string `json:"symbol"`
	Trade  struct {
		Timestamp time.Time `json:"t"`
		Price     float64   `json:"p"`
	} `json:"trade"`
}

type alpacaLatestQuoteResponse struct {
	Symbol string `json:"symbol"`
	Quote  struct {
		Timestamp time.Time `json:"t"`
		BidPrice  float64   `json:"bp"`
		AskPrice  float64   `json:"ap"`
	} `json:"quote"`
}

// GetQuote combines the latest trade (price) with the latest NBBO (bid/ask)
func (a *AlpacaAdapter) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	tradeURL := fmt.Sprintf("%s/v2/stocks/%s/trades/latest", a.config.BaseURL, url.PathEscape(symbol))
	var trade alpacaLatestTradeResponse
	if err := a.client.getJSON(ctx, tradeURL, a.authHeaders(), &trade); err != nil {
		return nil, err
	}
	if trade.Trade.Price <= 0 {
		return nil, errMalformed(a.Name(), fmt.Errorf("latest trade for %s has no price", symbol))
	}

	quoteURL := fmt.Sprintf("%s/v2/stocks/%s/quotes/latest", a.config.BaseURL, url.PathEscape(symbol))
	var quote alpacaLatestQuoteResponse
	if err := a.client.getJSON(ctx, quoteURL, a.authHeaders(), &quote); err != nil {
		return nil, err
	}

	ts := trade.Trade.Timestamp
	if quote.Quote.Timestamp.After(ts) {
		ts = quote.Quote.Timestamp
	}

	return &models.Quote{
		Symbol:    symbol,
		Price:     trade.Trade.Price,
		Bid:       quote.Quote.BidPrice,
		Ask:       quote.Quote.AskPrice,
		Timestamp: ts.UTC(),
	}, nil
}

func (a *AlpacaAdapter) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return nil, errUnsupported(a.Name(), CapFundamentals)
}

func (a *AlpacaAdapter) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	return nil, errUnsupported(a.Name(), CapProfile)
}

func (a *AlpacaAdapter) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return nil, errUnsupported(a.Name(), CapNews)
}
