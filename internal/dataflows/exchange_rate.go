package dataflows

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/MoneyScope/internal/logger"
	"github.com/dyike/MoneyScope/internal/models"
)

// ExchangeRateClient reads pair rates from exchangerate-api.com.
type ExchangeRateClient struct {
	client *resty.Client
	apiKey string
}

func NewExchangeRateClient(baseURL, apiKey string, timeout time.Duration) *ExchangeRateClient {
	if baseURL == "" {
		baseURL = "https://v6.exchangerate-api.com"
	}
	return &ExchangeRateClient{
		client: newRestyClient(baseURL, timeout),
		apiKey: apiKey,
	}
}

// FetchRate performs a single GET; there are no retries.
func (c *ExchangeRateClient) FetchRate(ctx context.Context, pair models.CurrencyPair) models.RateResult {
	var payload pairResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"key":    c.apiKey,
			"base":   pair.Base,
			"target": pair.Target,
		}).
		SetResult(&payload).
		ForceContentType("application/json").
		Get("/v6/{key}/pair/{base}/{target}")
	if err != nil {
		logger.Log.WithField("pair", pair.String()).Warnf("exchange rate request failed: %v", err)
		return models.RateFailure("%s", err.Error())
	}
	if resp.StatusCode() != http.StatusOK {
		logger.Log.WithField("pair", pair.String()).Warnf("exchange rate api status %d", resp.StatusCode())
		return models.RateFailure("API returned status code %d", resp.StatusCode())
	}
	if msg := payload.failure(); msg != "" {
		logger.Log.WithField("pair", pair.String()).Warn(msg)
		return models.RateFailure("%s", msg)
	}

	return models.RateSuccess(models.ExchangeRate{
		BaseCurrency:   pair.Base,
		TargetCurrency: pair.Target,
		Rate:           *payload.ConversionRate,
		LastUpdated:    payload.TimeLastUpdateUTC,
		NextUpdate:     payload.TimeNextUpdateUTC,
	})
}

// Quote is FetchRate for callers holding two codes instead of a pair.
func (c *ExchangeRateClient) Quote(ctx context.Context, base, target string) models.RateResult {
	return c.FetchRate(ctx, models.CurrencyPair{Base: base, Target: target})
}
