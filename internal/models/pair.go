package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPair  = errors.New("currency pair should be in format 'XXX/YYY' (e.g., 'USD/INR')")
	ErrSameCurrency = errors.New("base and target currency must differ")
)

// CurrencyPair is an ordered pair of ISO 4217 codes.
type CurrencyPair struct {
	Base   string `json:"base_currency"`
	Target string `json:"target_currency"`
}

// ParsePair accepts "XXX/YYY" in any case, surrounded by optional whitespace.
func ParsePair(s string) (CurrencyPair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return CurrencyPair{}, ErrInvalidPair
	}
	base, target := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if !isCurrencyCode(base) || !isCurrencyCode(target) {
		return CurrencyPair{}, fmt.Errorf("%w: got %q", ErrInvalidPair, s)
	}
	if base == target {
		return CurrencyPair{}, fmt.Errorf("%w: %s", ErrSameCurrency, base)
	}
	return CurrencyPair{Base: base, Target: target}, nil
}

// NewPair builds a pair from two separate codes, applying ParsePair's rules.
func NewPair(base, target string) (CurrencyPair, error) {
	return ParsePair(base + "/" + target)
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

func (p CurrencyPair) String() string {
	return p.Base + "/" + p.Target
}

// FileTag renders the pair for use in file names.
func (p CurrencyPair) FileTag() string {
	return p.Base + "_" + p.Target
}

func (p CurrencyPair) IsZero() bool {
	return p.Base == "" && p.Target == ""
}

// Currencies offered by the interactive selector.
var Currencies = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "NZD",
	"INR", "CNY", "BRL", "ZAR", "MXN", "RUB", "TRY", "SGD",
}

var DefaultPair = CurrencyPair{Base: "USD", Target: "INR"}
