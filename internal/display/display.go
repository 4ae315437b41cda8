// Package display renders analysis progress and results for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dyike/MoneyScope/consts"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/internal/service"
	"github.com/dyike/MoneyScope/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	inProgressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))
)

// ProgressPrinter prints one line per stage transition. Observe matches the
// pipeline observer signature.
type ProgressPrinter struct {
	w      io.Writer
	buffer *models.ProgressBuffer
}

func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	return &ProgressPrinter{w: w, buffer: models.NewProgressBuffer(50)}
}

func (p *ProgressPrinter) Observe(evt models.StageEvent) {
	p.buffer.Observe(evt)

	step := stepNumber(evt.Stage)
	switch evt.Status {
	case consts.State_Running:
		fmt.Fprintf(p.w, "%s %s...\n", dimStyle.Render(fmt.Sprintf("[%d/%d]", step, len(models.Stages))), inProgressStyle.Render(evt.Stage.Title()))
	case consts.State_Finished:
		fmt.Fprintf(p.w, "      %s %s\n", completedStyle.Render("done"), pendingStyle.Render(evt.Stage.Title()))
	case consts.State_Failed:
		msg := "failed"
		if evt.Err != nil {
			msg = "failed: " + evt.Err.Error()
		}
		fmt.Fprintf(p.w, "      %s\n", errorStyle.Render(msg))
	}
}

// Summary prints how far the observed run got followed by its stage log.
func (p *ProgressPrinter) Summary() {
	line := fmt.Sprintf("%d/%d stages completed", p.buffer.Completed(), len(models.Stages))
	if cur := p.buffer.Current(); p.buffer.Status(cur) == consts.State_Failed {
		line += ", stopped at " + cur.Title()
	}
	fmt.Fprintln(p.w, errorStyle.Render(line))
	for _, m := range p.buffer.Messages() {
		fmt.Fprintf(p.w, "  %s %s\n", dimStyle.Render(m.Timestamp), m.Content)
	}
}

func stepNumber(s models.Stage) int {
	for i, st := range models.Stages {
		if st == s {
			return i + 1
		}
	}
	return 0
}

// Report prints the report under a styled header and ends with the file path.
func Report(w io.Writer, res *service.AnalysisResult) {
	header := fmt.Sprintf("Forex Analysis Report: %s\nGenerated %s  |  Run %s",
		res.Pair,
		res.GeneratedAt.Format("2006-01-02 15:04"),
		shortID(res.ID),
	)
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(header))
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimSpace(res.Report))
	fmt.Fprintln(w)
	if res.FilePath != "" {
		fmt.Fprintf(w, "%s %s\n", completedStyle.Render("Report saved to:"), res.FilePath)
	}
}

func Conversion(w io.Writer, c *service.Conversion) {
	fmt.Fprintln(w, completedStyle.Render(c.String()))
	line := fmt.Sprintf("1 %s = %s %s", c.Pair.Base, c.Rate.String(), c.Pair.Target)
	if c.LastUpdated != "" {
		line += "  (updated " + c.LastUpdated + ")"
	}
	fmt.Fprintln(w, dimStyle.Render(line))
}

// History lists runs newest first with times relative to now.
func History(w io.Writer, records []storage.RunRecord, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, pendingStyle.Render("No analyses recorded yet."))
		return
	}
	for _, rec := range records {
		when := humanize.RelTime(rec.CreatedAt, now, "ago", "from now")
		status := completedStyle.Render(rec.Status)
		detail := rec.ReportPath
		if rec.Status == storage.StatusError {
			status = errorStyle.Render(rec.Status)
			detail = rec.Error
		}
		rate := ""
		if rec.Rate > 0 {
			rate = humanize.FormatFloat("#,###.####", rec.Rate)
		}
		fmt.Fprintf(w, "%-8s %-8s %-15s %-6s %-10s %s\n",
			shortID(rec.ID), rec.Pair, when, status, rate, dimStyle.Render(detail))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
