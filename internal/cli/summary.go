package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// RenderSummary renders the outcome of a run. dryRun marks results that were not written back.
func RenderSummary(sum report.Summary, dryRun bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  • Month: %s (%s)\n", sum.Month.Label(), sum.Month)
	fmt.Fprintf(&b, "  • Inserted: %d\n", sum.Inserted)
	if sum.Deleted > 0 {
		fmt.Fprintf(&b, "  • Deleted: %d\n", sum.Deleted)
	}
	if sum.Updated > 0 || sum.Locked > 0 {
		fmt.Fprintf(&b, "  • Overwritten: %d (%d locked %s)\n", sum.Updated, sum.Locked, LockIcon)
	}
	if sum.Suppressed > 0 {
		b.WriteString("  • " + WarningStyle.Render(fmt.Sprintf("Suppressed overrides: %d", sum.Suppressed)) + "\n")
	}
	if sum.OverQuota > 0 {
		b.WriteString("  • " + ErrorStyle.Render(fmt.Sprintf("Over quota: %d", sum.OverQuota)) + "\n")
	}
	b.WriteString("  • " + SubtleStyle.Render("Run "+sum.RunID))

	title := "Ledger updated"
	if dryRun {
		title = "Dry run (nothing written)"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderBox(title, b.String()),
		SuccessStyle.Render(sum.Message),
	)
}

// RenderQuotaSummary renders the outcome of a quota recompute.
func RenderQuotaSummary(sum report.QuotaSummary) string {
	content := fmt.Sprintf("  • Rows: %d\n  • Changed: %d\n  • Over quota: %d", sum.Rows, sum.Changed, sum.Over)
	return RenderBox(ChartIcon+" Quotas recomputed", content)
}

// RenderLogs renders run log entries as a table, oldest first.
func RenderLogs(entries []service.LogEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return SubtleStyle.Render("No log entries.")
	}
	if loc == nil {
		loc = time.UTC
	}

	header := []string{"Time", "Run", "Level", "Message"}
	rows := make([][]string, len(entries))
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for i, e := range entries {
		rows[i] = []string{e.Timestamp.In(loc).Format("02/01/2006 15:04:05"), e.RunID, e.Level, e.Message}
		for j, c := range rows[i] {
			widths[j] = max(widths[j], lipgloss.Width(c))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = TableCellStyle.Width(widths[i] + 2).Render(c)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	out := []string{line(header, TableHeaderStyle)}
	for i, r := range rows {
		style := lipgloss.NewStyle()
		switch entries[i].Level {
		case "ERROR":
			style = ErrorStyle
		case "SUCCESS":
			style = SuccessStyle
		case "DEBUG", "TIMER-START", "TIMER-END":
			style = SubtleStyle
		}
		out = append(out, line(r, style))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// RenderAudits renders audit records, newest first.
func RenderAudits(records []service.AuditRecord, loc *time.Location) string {
	if len(records) == 0 {
		return SubtleStyle.Render("No runs recorded.")
	}
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	for _, r := range records {
		line := fmt.Sprintf("%s  %s  %s  %s", r.Timestamp.In(loc).Format("02/01/2006 15:04:05"), r.RunID, r.MonthLabel, r.Outcome)
		if r.Detail != "" {
			b.WriteString(FormatError(line+"  "+r.Detail) + "\n")
			continue
		}
		b.WriteString(FormatSuccess(line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
