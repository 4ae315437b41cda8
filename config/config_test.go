package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EXCHANGE_RATE_API_KEY", "rate-key")
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("ANALYST_TEMPERATURE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rate-key", cfg.ExchangeRateAPIKey)
	assert.Equal(t, "news-key", cfg.NewsAPIKey)
	assert.Equal(t, "groq-key", cfg.LLMAPIKey)
	assert.Equal(t, "llama3-70b-8192", cfg.LLMModel)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLMBaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.InDelta(t, 0.5, cfg.AnalystTemperature, 1e-6)
	assert.InDelta(t, 0.2, cfg.ReporterTemperature, 1e-6)
	assert.Equal(t, 3, cfg.NewsPageSize)
	assert.Empty(t, cfg.MissingKeys())
	assert.NoError(t, cfg.Validate())
}

func TestMissingKeys(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.ExchangeRateAPIKey = ""
	cfg.NewsAPIKey = ""
	cfg.LLMAPIKey = ""
	assert.Equal(t, []string{"Exchange Rate API Key", "News API Key", "LLM API Key"}, cfg.MissingKeys())

	cfg.NewsAPIKey = "n"
	cfg.LLMAPIKey = "l"
	cfg.RateProvider = RateProviderYahoo
	assert.Empty(t, cfg.MissingKeys())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	require.NoError(t, cfg.Validate())

	cfg.ReporterTemperature = 3
	cfg.RateProvider = "ecb"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reporter_temperature")
	assert.Contains(t, err.Error(), "rate_provider")
}
