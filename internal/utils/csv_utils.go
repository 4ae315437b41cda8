package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dyike/MoneyScope/internal/storage"
)

var runHeaders = []string{"ID", "Pair", "Status", "Rate", "Error", "ReportPath", "CreatedAt"}

// WriteRunsCSV writes records with a header row. CreatedAt is RFC 3339.
func WriteRunsCSV(w io.Writer, records []storage.RunRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(runHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, rec := range records {
		rate := ""
		if rec.Rate != 0 {
			rate = strconv.FormatFloat(rec.Rate, 'f', -1, 64)
		}
		row := []string{
			rec.ID,
			rec.Pair,
			rec.Status,
			rate,
			rec.Error,
			rec.ReportPath,
			rec.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportRunsCSV writes records to path, creating its directory.
func ExportRunsCSV(path string, records []storage.RunRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteRunsCSV(file, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
