package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/models"
)

// Conversion is the outcome of the quick converter.
type Conversion struct {
	Pair        models.CurrencyPair
	Amount      decimal.Decimal
	Rate        decimal.Decimal
	Converted   decimal.Decimal
	LastUpdated string
}

func (c Conversion) String() string {
	return fmt.Sprintf("%s %s = %s %s", c.Amount.StringFixed(2), c.Pair.Base, c.Converted.StringFixed(2), c.Pair.Target)
}

// Convert multiplies amount by the current base/target rate, rounded to two
// decimal places.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, base, target string) (*Conversion, error) {
	if s.cfg.RateProvider != config.RateProviderYahoo && s.cfg.ExchangeRateAPIKey == "" {
		return nil, fmt.Errorf("%w: Exchange Rate API Key", ErrMissingKeys)
	}
	if amount.IsNegative() {
		return nil, errors.New("amount must not be negative")
	}
	pair, err := models.NewPair(base, target)
	if err != nil {
		return nil, err
	}

	res := s.rates.FetchRate(ctx, pair)
	if !res.OK() {
		return nil, fmt.Errorf("could not fetch exchange rate: %s", res.Message)
	}

	rate := decimal.NewFromFloat(res.Rate.Rate)
	return &Conversion{
		Pair:        pair,
		Amount:      amount,
		Rate:        rate,
		Converted:   amount.Mul(rate).Round(2),
		LastUpdated: res.Rate.LastUpdated,
	}, nil
}
