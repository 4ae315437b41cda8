package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyike/MoneyScope/internal/logger"
)

// ReportMeta is written as YAML front matter ahead of a report.
type ReportMeta struct {
	RunID       string    `yaml:"run_id"`
	Pair        string    `yaml:"pair"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Rate        float64   `yaml:"rate,omitempty"`
	Model       string    `yaml:"model,omitempty"`
}

// ReportFileName is forex_analysis_<BASE>_<TARGET>_<YYYYMMDD_HHMM>.md.
func ReportFileName(pairTag string, at time.Time) string {
	return fmt.Sprintf("forex_analysis_%s_%s.md", pairTag, at.Format("20060102_1504"))
}

// RenderReport prefixes content with meta as a front matter block.
func RenderReport(meta ReportMeta, content string) ([]byte, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(content)
	if n := len(content); n == 0 || content[n-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteMarkdown writes content to dir/fileName, creating dir as needed, and
// returns the full path.
func WriteMarkdown(dir, fileName string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	logger.Log.Debugf("written to: %s", path)
	return path, nil
}
