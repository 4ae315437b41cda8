package dataflows

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/models"
)

// RateFetcher returns the current rate for a pair. Failures are reported in
// the result, never as an error.
type RateFetcher interface {
	FetchRate(ctx context.Context, pair models.CurrencyPair) models.RateResult
}

// NewsFetcher returns recent articles about a pair. Failures are reported in
// the result, never as an error.
type NewsFetcher interface {
	FetchNews(ctx context.Context, pair models.CurrencyPair) models.NewsResult
}

// TrendAnalyzer produces a trend snapshot for a pair.
type TrendAnalyzer interface {
	AnalyzeTrend(ctx context.Context, pair models.CurrencyPair) models.TrendSnapshot
}

// NewRateFetcher picks the rate provider named by cfg.RateProvider.
func NewRateFetcher(cfg *config.Config) RateFetcher {
	if cfg.RateProvider == config.RateProviderYahoo {
		return NewYahooRateClient()
	}
	return NewExchangeRateClient(cfg.ExchangeRateBaseURL, cfg.ExchangeRateAPIKey, cfg.HTTPTimeout)
}

func NewNewsFetcher(cfg *config.Config) NewsFetcher {
	return NewNewsAPIClient(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, cfg.NewsPageSize, cfg.HTTPTimeout)
}

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.SetHeader("Accept", "application/json")
	return client
}
