package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// FMPAdapter pulls annual financial statements from Financial Modeling Prep
// and normalizes them into fundamentals line items. FMP only covers
// US-listed equities; unknown symbols fail explicitly.
type FMPAdapter struct {
	config AdapterConfig
	client *restClient
}

// NewFMPAdapter creates a Financial Modeling Prep adapter
func NewFMPAdapter(config AdapterConfig) *FMPAdapter {
	if config.BaseURL == "" {
		config.BaseURL = "https://financialmodelingprep.com/api/v3"
	}
	return &FMPAdapter{
		config: config,
		client: newRESTClient("fmp", config),
	}
}

func (f *FMPAdapter) Name() string { return "fmp" }

func (f *FMPAdapter) Capabilities() []Capability {
	return []Capability{CapFundamentals}
}

type fmpIncomeStatement struct {
	Date      string  `json:"date"`
	Period    string  `json:"calendarYear"`
	Revenue   float64 `json:"revenue"`
	NetIncome float64 `json:"netIncome"`
	EBITDA    float64 `json:"ebitda"`
}

type fmpBalanceSheet struct {
	Date                 string  `json:"date"`
	Period               string  `json:"calendarYear"`
	TotalAssets          float64 `json:"totalAssets"`
	TotalLiabilities     float64 `json:"totalLiabilities"`
	CurrentAssets        float64 `json:"totalCurrentAssets"`
	CurrentLiabilities   float64 `json:"totalCurrentLiabilities"`
	Inventory            float64 `json:"inventory"`
	TotalDebt            float64 `json:"totalDebt"`
	StockholdersEquity   float64 `json:"totalStockholdersEquity"`
	CashAndCashEquivalen float64 `json:"cashAndCashEquivalents"`
}

type fmpCashFlow struct {
	Date              string  `json:"date"`
	Period            string  `json:"calendarYear"`
	OperatingCashFlow float64 `json:"operatingCashFlow"`
}

// GetFundamentals fetches income statement, balance sheet and cash flow and
// merges them into one Fundamentals set, newest period first
func (f *FMPAdapter) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	var income []fmpIncomeStatement
	if err := f.client.getJSON(ctx, f.statementURL("income-statement", symbol), nil, &income); err != nil {
		return nil, err
	}
	if len(income) == 0 {
		return nil, &FetchError{
			Provider: f.Name(),
			Code:     ErrCodeNotFound,
			Message:  fmt.Sprintf("no statement coverage for %s", symbol),
		}
	}

	var balance []fmpBalanceSheet
	if err := f.client.getJSON(ctx, f.statementURL("balance-sheet-statement", symbol), nil, &balance); err != nil {
		return nil, err
	}

	var cashflow []fmpCashFlow
	if err := f.client.getJSON(ctx, f.statementURL("cash-flow-statement", symbol), nil, &cashflow); err != nil {
		return nil, err
	}

	fund := &models.Fundamentals{Symbol: symbol}
	for _, stmt := range income {
		fund.Add(models.ItemRevenue, stmt.Period, stmt.Revenue)
		fund.Add(models.ItemNetIncome, stmt.Period, stmt.NetIncome)
		fund.Add(models.ItemEBITDA, stmt.Period, stmt.EBITDA)
	}
	for _, sheet := range balance {
		fund.Add(models.ItemTotalAssets, sheet.Period, sheet.TotalAssets)
		fund.Add(models.ItemTotalLiabilities, sheet.Period, sheet.TotalLiabilities)
		fund.Add(models.ItemCurrentAssets, sheet.Period, sheet.CurrentAssets)
		fund.Add(models.ItemCurrentLiabilities, sheet.Period, sheet.CurrentLiabilities)
		fund.Add(models.ItemInventory, sheet.Period, sheet.Inventory)
		fund.Add(models.ItemTotalDebt, sheet.Period, sheet.TotalDebt)
		fund.Add(models.ItemTotalEquity, sheet.Period, sheet.StockholdersEquity)
		fund.Add(models.ItemCashAndEquivalents, sheet.Period, sheet.CashAndCashEquivalen)
	}
	for _, flow := range cashflow {
		fund.Add(models.ItemOperatingCashFlow, flow.Period, flow.OperatingCashFlow)
	}

	return fund, nil
}

func (f *FMPAdapter) statementURL(statement, symbol string) string {
	return fmt.Sprintf("%s/%s/%s?period=annual&apikey=%s",
		f.config.BaseURL, statement, url.PathEscape(symbol), url.QueryEscape(f.config.APIKey))
}

func (f *FMPAdapter) GetPriceHistory(ctx context.Context, symbol, resolution string, rng models.Range) (*models.PriceSeries, error) {
	return nil, errUnsupported(f.Name(), CapPriceHistory)
}

func (f *FMPAdapter) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, errUnsupported(f.Name(), CapQuote)
}

func (f *FMPAdapter) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	return nil, errUnsupported(f.Name(), CapProfile)
}

func (f *FMPAdapter) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return nil, errUnsupported(f.Name(), CapNews)
}
