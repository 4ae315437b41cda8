package dataflows

import (
	"context"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"github.com/dyike/MoneyScope/internal/logger"
	"github.com/dyike/MoneyScope/internal/models"
)

const yahooTimeLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// YahooRateClient reads FX quotes from Yahoo Finance. It needs no API key and
// has no next-update schedule.
type YahooRateClient struct {
	getQuote func(symbol string) (*finance.Quote, error)
}

func NewYahooRateClient() *YahooRateClient {
	return &YahooRateClient{getQuote: quote.Get}
}

// YahooSymbol is the Yahoo ticker for a pair, e.g. USDINR=X.
func YahooSymbol(pair models.CurrencyPair) string {
	return pair.Base + pair.Target + "=X"
}

func (c *YahooRateClient) FetchRate(ctx context.Context, pair models.CurrencyPair) models.RateResult {
	if err := ctx.Err(); err != nil {
		return models.RateFailure("%s", err.Error())
	}

	symbol := YahooSymbol(pair)
	q, err := c.getQuote(symbol)
	if err != nil {
		logger.Log.WithField("symbol", symbol).Warnf("yahoo quote failed: %v", err)
		return models.RateFailure("%s", err.Error())
	}
	if q == nil || q.RegularMarketPrice <= 0 {
		return models.RateFailure("no quote available for %s", symbol)
	}

	var updated string
	if q.RegularMarketTime > 0 {
		updated = time.Unix(int64(q.RegularMarketTime), 0).UTC().Format(yahooTimeLayout)
	}
	return models.RateSuccess(models.ExchangeRate{
		BaseCurrency:   pair.Base,
		TargetCurrency: pair.Target,
		Rate:           q.RegularMarketPrice,
		LastUpdated:    updated,
	})
}
