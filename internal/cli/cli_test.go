package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/dataflows"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/internal/service"
	"github.com/dyike/MoneyScope/internal/testutil"
)

type stubRates struct{}

func (stubRates) FetchRate(_ context.Context, pair models.CurrencyPair) models.RateResult {
	return models.RateSuccess(models.ExchangeRate{BaseCurrency: pair.Base, TargetCurrency: pair.Target, Rate: 83.5})
}

type stubNews struct{}

func (stubNews) FetchNews(context.Context, models.CurrencyPair) models.NewsResult {
	return models.NewsSuccess([]models.Article{{Title: "Rupee steady", Source: "Wire"}})
}

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("EXCHANGE_RATE_API_KEY", "rate-key")
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("LLM_API_KEY", "llm-key")
	t.Setenv("EINO_DEBUG_ENABLED", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	return dir
}

func testOptions() *rootOptions {
	o := newRootOptions()
	o.newService = func(ctx context.Context, cfg *config.Config) (*service.Service, error) {
		return service.New(ctx, cfg,
			service.WithChatModel(testutil.NewFakeChatModel("analysis", "# USD/INR Outlook\n\nRange bound.")),
			service.WithRateFetcher(stubRates{}),
			service.WithNewsFetcher(stubNews{}),
			service.WithTrendAnalyzer(dataflows.NewSeededTrendSampler(1)),
		)
	}
	o.pickPair = func() (models.CurrencyPair, error) {
		return models.CurrencyPair{Base: "EUR", Target: "JPY"}, nil
	}
	return o
}

func execute(t *testing.T, o *rootOptions, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(o)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := testEnv(t)

	out, err := execute(t, testOptions(), "", "analyze", "usd/inr")
	require.NoError(t, err)
	assert.Contains(t, out, "Starting analysis for USD/INR")
	assert.Contains(t, out, "[5/5]")
	assert.Contains(t, out, "Forex Analysis Report: USD/INR")
	assert.Contains(t, out, "Range bound.")
	assert.Contains(t, out, "Report saved to: "+filepath.Join(dir, "results", "forex_analysis_USD_INR_"))

	out, err = execute(t, testOptions(), "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "USD/INR")
	assert.Contains(t, out, "done")

	csvPath := filepath.Join(dir, "runs.csv")
	out, err = execute(t, testOptions(), "", "history", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 run(s) exported")
	assert.FileExists(t, csvPath)
}

func TestAnalyzeCommandPromptsForPair(t *testing.T) {
	testEnv(t)
	out, err := execute(t, testOptions(), "", "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Forex Analysis Report: EUR/JPY")
}

func TestAnalyzeCommandErrors(t *testing.T) {
	testEnv(t)

	_, err := execute(t, testOptions(), "", "analyze", "USDINR")
	require.ErrorIs(t, err, models.ErrInvalidPair)

	t.Setenv("NEWS_API_KEY", "")
	_, err = execute(t, testOptions(), "", "analyze", "USD/INR")
	require.ErrorIs(t, err, service.ErrMissingKeys)
	assert.Contains(t, errorMessage(err), "config set")
}

func TestConvertCommand(t *testing.T) {
	testEnv(t)
	out, err := execute(t, testOptions(), "", "convert", "10", "usd", "inr")
	require.NoError(t, err)
	assert.Contains(t, out, "10.00 USD = 835.00 INR")

	_, err = execute(t, testOptions(), "", "convert", "ten", "USD", "INR")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	dir := testEnv(t)
	path := filepath.Join(dir, "moneyscope.json")

	out, err := execute(t, testOptions(), "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "****-key")
	assert.NotContains(t, out, "rate-key")

	out, err = execute(t, testOptions(), "", "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	_, err = execute(t, testOptions(), "", "--config", path, "config", "set", "news_page_size", "2")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"news_page_size": 2`)

	_, err = execute(t, testOptions(), "", "--config", path, "config", "init")
	assert.Error(t, err, "init must not overwrite without --force")

	out, err = execute(t, testOptions(), "", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "api keys: ok")
}

func TestInteractiveSession(t *testing.T) {
	dir := testEnv(t)
	input := strings.Join([]string{
		"convert 2 USD INR",
		"analyze GBP/USD",
		"history 5",
		"bogus",
		"config set news_page_size 2",
		"exit",
	}, "\n") + "\n"

	out, err := execute(t, testOptions(), input, "--config", filepath.Join(dir, "repl.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "MoneyScope v1.0.0")
	assert.Contains(t, out, "2.00 USD = 167.00 INR")
	assert.Contains(t, out, "Forex Analysis Report: GBP/USD")
	assert.Contains(t, out, `unknown command "bogus"`)
	assert.Contains(t, out, "Configuration reloaded.")
	assert.Contains(t, out, "Thank you for using MoneyScope!")
}

func TestSetConfigValue(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())

	js, err := setConfigValue(cfg, "HTTP_TIMEOUT", "5s")
	require.NoError(t, err)
	assert.Contains(t, js, `"http_timeout":5000000000`)

	js, err = setConfigValue(cfg, "history_enabled", "false")
	require.NoError(t, err)
	assert.Contains(t, js, `"history_enabled":false`)

	js, err = setConfigValue(cfg, "llm_model", "123")
	require.NoError(t, err)
	assert.Contains(t, js, `"llm_model":"123"`)

	_, err = setConfigValue(cfg, "no_such_key", "1")
	assert.Error(t, err)
}

func TestTargetOptions(t *testing.T) {
	targets := targetOptions("INR")
	assert.Len(t, targets, len(models.Currencies)-1)
	assert.NotContains(t, targets, "INR")
	assert.Equal(t, "USD", defaultTarget("INR", targets))
	assert.Equal(t, "INR", defaultTarget("USD", targetOptions("USD")))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, testOptions(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "MoneyScope v1.0.0")
}

func TestConfigSetProviderSwitchesModel(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("OPENAI_API_KEY", "openai-key")
	path := filepath.Join(dir, "moneyscope.json")

	_, err := execute(t, testOptions(), "", "--config", path, "config", "set", "llm_provider", "openai")
	require.NoError(t, err)

	cfg, err := config.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Empty(t, cfg.LLMBaseURL)
	assert.Equal(t, "openai-key", cfg.LLMAPIKey)
}

func TestAnalyzeCommandPrintsStageSummaryOnFailure(t *testing.T) {
	testEnv(t)
	o := testOptions()
	o.newService = func(ctx context.Context, cfg *config.Config) (*service.Service, error) {
		cm := testutil.NewFakeChatModel()
		cm.Err = errors.New("quota exceeded")
		return service.New(ctx, cfg,
			service.WithChatModel(cm),
			service.WithRateFetcher(stubRates{}),
			service.WithNewsFetcher(stubNews{}),
			service.WithTrendAnalyzer(dataflows.NewSeededTrendSampler(1)),
		)
	}

	out, err := execute(t, o, "", "analyze", "USD/INR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, out, "3/5 stages completed, stopped at Processing Data Analysis")
	assert.Contains(t, out, "Analyzing Market Trends: completed")
}
