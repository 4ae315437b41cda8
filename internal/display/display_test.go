package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dyike/MoneyScope/consts"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/internal/service"
	"github.com/dyike/MoneyScope/internal/storage"
)

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressPrinter(&buf)

	p.Observe(models.StageEvent{Stage: models.StageExchangeRate, Status: consts.State_Running})
	p.Observe(models.StageEvent{Stage: models.StageExchangeRate, Status: consts.State_Finished})
	p.Observe(models.StageEvent{Stage: models.StageAnalysis, Status: consts.State_Running})
	p.Observe(models.StageEvent{Stage: models.StageAnalysis, Status: consts.State_Failed, Err: errors.New("quota")})

	out := buf.String()
	assert.Contains(t, out, "[1/5]")
	assert.Contains(t, out, "Collecting Exchange Rate Data...")
	assert.Contains(t, out, "[4/5]")
	assert.Contains(t, out, "failed: quota")

	buf.Reset()
	p.Summary()
	summary := buf.String()
	assert.Contains(t, summary, "1/5 stages completed, stopped at Processing Data Analysis")
	assert.Contains(t, summary, "Collecting Exchange Rate Data: completed")
	assert.Contains(t, summary, "Processing Data Analysis: failed (quota)")
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, &service.AnalysisResult{
		ID:          "0d4f1c1e-7a3c-4f0e-9a57-4b3c1d2e3f40",
		Pair:        models.CurrencyPair{Base: "USD", Target: "INR"},
		Report:      "# Weekly view\n\nRupee steady.\n",
		GeneratedAt: time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		FilePath:    "/tmp/results/forex_analysis_USD_INR_20240305_1430.md",
	})

	out := buf.String()
	assert.Contains(t, out, "Forex Analysis Report: USD/INR")
	assert.Contains(t, out, "Run 0d4f1c1e")
	assert.Contains(t, out, "Rupee steady.")
	assert.Contains(t, out, "Report saved to: /tmp/results/forex_analysis_USD_INR_20240305_1430.md")
}

func TestConversion(t *testing.T) {
	var buf bytes.Buffer
	Conversion(&buf, &service.Conversion{
		Pair:      models.CurrencyPair{Base: "EUR", Target: "USD"},
		Amount:    decimal.NewFromInt(100),
		Rate:      decimal.RequireFromString("1.0843"),
		Converted: decimal.RequireFromString("108.43"),
	})
	assert.Contains(t, buf.String(), "100.00 EUR = 108.43 USD")
	assert.Contains(t, buf.String(), "1 EUR = 1.0843 USD")
}

func TestHistory(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	History(&buf, []storage.RunRecord{
		{ID: "aaaaaaaa-1", Pair: "USD/INR", Status: storage.StatusDone, Rate: 83.5, ReportPath: "/r/a.md", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "bbbbbbbb-2", Pair: "EUR/GBP", Status: storage.StatusError, Error: "analyze_data: boom", CreatedAt: now.Add(-3 * 24 * time.Hour)},
	}, now)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.Contains(t, lines[0], "aaaaaaaa")
		assert.Contains(t, lines[0], "2 hours ago")
		assert.Contains(t, lines[0], "83.5")
		assert.Contains(t, lines[1], "3 days ago")
		assert.Contains(t, lines[1], "analyze_data: boom")
	}

	buf.Reset()
	History(&buf, nil, now)
	assert.Contains(t, buf.String(), "No analyses recorded yet.")
}
