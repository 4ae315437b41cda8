package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/MoneyScope/internal/models"
)

var usdInr = models.CurrencyPair{Base: "USD", Target: "INR"}

func TestExchangeRateClientSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v6/test-key/pair/USD/INR", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": "success",
			"base_code": "USD",
			"target_code": "INR",
			"conversion_rate": 83.5,
			"time_last_update_utc": "Fri, 01 Mar 2024 00:00:01 +0000",
			"time_next_update_utc": "Sat, 02 Mar 2024 00:00:01 +0000"
		}`))
	}))
	defer srv.Close()

	client := NewExchangeRateClient(srv.URL, "test-key", time.Second)
	res := client.FetchRate(context.Background(), usdInr)

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, 83.5, res.Rate.Rate)
	assert.Equal(t, "USD", res.Rate.BaseCurrency)
	assert.Equal(t, "INR", res.Rate.TargetCurrency)
	assert.Equal(t, "Fri, 01 Mar 2024 00:00:01 +0000", res.Rate.LastUpdated)
	assert.Equal(t, "Sat, 02 Mar 2024 00:00:01 +0000", res.Rate.NextUpdate)

	quote := client.Quote(context.Background(), "USD", "INR")
	assert.Equal(t, res, quote)
}

func TestExchangeRateClientStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewExchangeRateClient(srv.URL, "k", time.Second).FetchRate(context.Background(), usdInr)
	assert.False(t, res.OK())
	assert.Equal(t, models.StatusError, res.Status)
	assert.Equal(t, "API returned status code 404", res.Message)
	assert.Equal(t, 1, calls, "no retries")
}

func TestExchangeRateClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := NewExchangeRateClient(url, "k", time.Second).FetchRate(context.Background(), usdInr)
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Message)
}

func TestExchangeRateClientWithoutContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte(`{"conversion_rate": 83.5, "time_last_update_utc": "Fri, 01 Mar 2024 00:00:01 +0000"}`))
	}))
	defer srv.Close()

	res := NewExchangeRateClient(srv.URL, "k", time.Second).FetchRate(context.Background(), usdInr)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 83.5, res.Rate.Rate)
}

func TestExchangeRateClientBadBodies(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMsg     string
	}{
		{"api error", "application/json", `{"result":"error","error-type":"unsupported-code"}`, "API returned error: unsupported-code"},
		{"missing rate", "application/json", `{"result":"success","base_code":"USD"}`, "response has no conversion_rate"},
		{"html page", "text/html", `<html><body>maintenance</body></html>`, ""},
		{"empty body", "", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := NewExchangeRateClient(srv.URL, "k", time.Second).FetchRate(context.Background(), usdInr)
			assert.False(t, res.OK())
			assert.Equal(t, models.StatusError, res.Status)
			assert.Zero(t, res.Rate.Rate)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, res.Message)
			} else {
				assert.NotEmpty(t, res.Message)
			}
		})
	}
}
