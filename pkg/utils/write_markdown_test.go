package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReportFileName(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 59, 0, time.UTC)
	assert.Equal(t, "forex_analysis_USD_INR_20240305_1407.md", ReportFileName("USD_INR", at))
}

func TestRenderAndWriteReport(t *testing.T) {
	meta := ReportMeta{
		RunID:       "run-1",
		Pair:        "USD/INR",
		GeneratedAt: time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
		Rate:        83.5,
	}
	data, err := RenderReport(meta, "# Report")
	require.NoError(t, err)

	text := string(data)
	require.True(t, strings.HasPrefix(text, "---\n"))
	parts := strings.SplitN(strings.TrimPrefix(text, "---\n"), "---\n", 2)
	require.Len(t, parts, 2)

	var decoded ReportMeta
	require.NoError(t, yaml.Unmarshal([]byte(parts[0]), &decoded))
	assert.Equal(t, meta.Pair, decoded.Pair)
	assert.Equal(t, meta.RunID, decoded.RunID)
	assert.True(t, meta.GeneratedAt.Equal(decoded.GeneratedAt))
	assert.Equal(t, "\n# Report\n", parts[1])

	dir := filepath.Join(t.TempDir(), "results")
	path, err := WriteMarkdown(dir, "r.md", data)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "r.md"), path)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
}
