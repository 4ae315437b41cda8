package models

import (
	"encoding/json"
	"fmt"

	"github.com/dyike/MoneyScope/consts"
)

type Status string

const (
	StatusSuccess Status = consts.Status_Success
	StatusError   Status = consts.Status_Error
)

type ExchangeRate struct {
	BaseCurrency   string  `json:"base_currency"`
	TargetCurrency string  `json:"target_currency"`
	Rate           float64 `json:"rate"`
	LastUpdated    string  `json:"last_updated"`
	NextUpdate     string  `json:"next_update"`
}

// RateResult is the outcome of the exchange rate stage. A failed fetch is
// carried as data so the run can continue.
type RateResult struct {
	Status  Status
	Rate    ExchangeRate
	Message string
}

func RateSuccess(rate ExchangeRate) RateResult {
	return RateResult{Status: StatusSuccess, Rate: rate}
}

func RateFailure(format string, args ...any) RateResult {
	return RateResult{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

func (r RateResult) OK() bool { return r.Status == StatusSuccess }

func (r RateResult) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(failureRecord{Status: StatusError, Message: r.Message})
	}
	return json.Marshal(struct {
		ExchangeRate
		Status Status `json:"status"`
	}{r.Rate, StatusSuccess})
}

type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// NewsResult is the outcome of the news stage.
type NewsResult struct {
	Status   Status
	Articles []Article
	Message  string
}

func NewsSuccess(articles []Article) NewsResult {
	return NewsResult{Status: StatusSuccess, Articles: articles}
}

func NewsFailure(format string, args ...any) NewsResult {
	return NewsResult{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

func (r NewsResult) OK() bool { return r.Status == StatusSuccess }

// MarshalJSON renders a success as the bare article list.
func (r NewsResult) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(failureRecord{Status: StatusError, Message: r.Message})
	}
	if r.Articles == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Articles)
}

type failureRecord struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// TrendSnapshot is a point-in-time market trend reading for a pair.
type TrendSnapshot struct {
	BaseCurrency    string  `json:"base_currency"`
	TargetCurrency  string  `json:"target_currency"`
	CurrentTrend    string  `json:"current_trend"`
	TrendStrength   int     `json:"trend_strength"`
	PublicSentiment string  `json:"public_sentiment"`
	Volatility      float64 `json:"volatility"`
	TradingVolume   string  `json:"trading_volume"`
}

func (t TrendSnapshot) IsZero() bool {
	return t == TrendSnapshot{}
}

// PrettyJSON renders v with two-space indentation, as embedded in prompts.
func PrettyJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
