package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"hotspot-monitor/internal/models"
)

// WriteText renders the daily summaries and the most recent events (given
// newest first)
func (g *Generator) WriteText(w io.Writer, summaries []models.DailySummary, events []models.LogEvent) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, strings.Repeat("=", 60))
	fmt.Fprintln(bw, "INTERNET CONNECTIVITY LOGBOOK REPORT")
	fmt.Fprintln(bw, strings.Repeat("=", 60))
	fmt.Fprintf(bw, "Generated: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Database: %s\n\n", g.dbPath)

	fmt.Fprintf(bw, "DAILY SUMMARY (Last %d Days)\n", len(summaries))
	fmt.Fprintln(bw, strings.Repeat("-", 40))
	for _, s := range summaries {
		writeSummary(bw, s)
	}
	writeTotals(bw, summaries)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "RECENT CONNECTIVITY EVENTS")
	fmt.Fprintln(bw, strings.Repeat("-", 40))
	if len(events) == 0 {
		fmt.Fprintln(bw, "No events recorded.")
	}
	for _, e := range events {
		fmt.Fprintln(bw, e.String())
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, strings.Repeat("=", 60))
	return bw.Flush()
}

// WriteExport renders the full records export; events are given oldest first
func (g *Generator) WriteExport(w io.Writer, summaries []models.DailySummary, events []models.LogEvent) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, strings.Repeat("=", 80))
	fmt.Fprintln(bw, "INTERNET CONNECTIVITY FULL RECORDS EXPORT")
	fmt.Fprintln(bw, strings.Repeat("=", 80))
	fmt.Fprintf(bw, "Generated: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Total Events: %d\n", len(events))
	fmt.Fprintf(bw, "Database: %s\n", g.dbPath)
	fmt.Fprintln(bw, strings.Repeat("=", 80))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "DAILY SUMMARY")
	fmt.Fprintln(bw, strings.Repeat("-", 40))
	for _, s := range summaries {
		writeSummary(bw, s)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "ALL CONNECTIVITY EVENTS")
	fmt.Fprintln(bw, strings.Repeat("-", 40))
	for _, e := range events {
		fmt.Fprintln(bw, e.String())
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, strings.Repeat("=", 80))
	fmt.Fprintln(bw, "END OF EXPORT")
	fmt.Fprintln(bw, strings.Repeat("=", 80))
	return bw.Flush()
}

func writeSummary(w io.Writer, s models.DailySummary) {
	fmt.Fprintf(w, "%s: %d/%d checks (%.1f%% success)\n",
		s.Date, s.SuccessfulChecks, s.TotalChecks, s.SuccessRate)
	if s.DisconnectCount > 0 {
		fmt.Fprintf(w, "  - Disconnects: %d, Total downtime: %s, Avg recovery: %s\n",
			s.DisconnectCount, models.HumanDuration(s.TotalDowntime), models.HumanDuration(s.AvgRecoveryTime))
	}
	if s.LoginAttempts > 0 {
		fmt.Fprintf(w, "  - Logins: %d/%d succeeded (%.1f%%)\n",
			s.LoginSuccesses, s.LoginAttempts, s.LoginSuccessRate)
	}
}

func writeTotals(w io.Writer, summaries []models.DailySummary) {
	t := totals(summaries)
	if t.TotalChecks == 0 && t.DisconnectCount == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Overall: %d/%d checks (%.1f%% success), %d disconnects, %s downtime\n",
		t.SuccessfulChecks, t.TotalChecks, t.SuccessRate, t.DisconnectCount, models.HumanDuration(t.TotalDowntime))
}
