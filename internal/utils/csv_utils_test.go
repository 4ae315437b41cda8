package utils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/MoneyScope/internal/storage"
)

func TestExportRunsCSV(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	records := []storage.RunRecord{
		{ID: "a", Pair: "USD/INR", Status: storage.StatusDone, Rate: 83.5, ReportPath: "/r/a.md", CreatedAt: at},
		{ID: "b", Pair: "EUR/GBP", Status: storage.StatusError, Error: "analyze_data: boom, again", CreatedAt: at},
	}
	path := filepath.Join(t.TempDir(), "export", "runs.csv")
	require.NoError(t, ExportRunsCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, runHeaders, rows[0])
	assert.Equal(t, []string{"a", "USD/INR", "done", "83.5", "", "/r/a.md", "2024-03-05T09:00:00Z"}, rows[1])
	assert.Equal(t, "analyze_data: boom, again", rows[2][4])
	assert.Equal(t, "", rows[2][3])
}
