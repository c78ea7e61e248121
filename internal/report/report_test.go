package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hotspot-monitor/internal/logger"
	"hotspot-monitor/internal/models"
)

type stubSource struct {
	summaries []models.DailySummary
	events    []models.LogEvent // oldest first
}

func (s *stubSource) QueryEvents(ctx context.Context, since time.Time, limit int) ([]models.LogEvent, error) {
	var out []models.LogEvent
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *stubSource) SummarizeRange(ctx context.Context, days int) ([]models.DailySummary, error) {
	return s.summaries, nil
}

func (s *stubSource) AllEvents(ctx context.Context) ([]models.LogEvent, error) {
	return s.events, nil
}

func sampleSource() *stubSource {
	ts := time.Date(2024, 5, 2, 9, 30, 0, 0, time.Local)
	return &stubSource{
		summaries: []models.DailySummary{
			{Date: "2024-05-01", TotalChecks: 100, SuccessfulChecks: 100, SuccessRate: 100},
			{
				Date: "2024-05-02", TotalChecks: 100, SuccessfulChecks: 95, FailedChecks: 5, SuccessRate: 95,
				DisconnectCount: 1, TotalDowntime: 150 * time.Second, AvgRecoveryTime: 150 * time.Second,
				LoginAttempts: 2, LoginSuccesses: 1, LoginSuccessRate: 50,
			},
		},
		events: []models.LogEvent{
			{Timestamp: ts, Kind: models.EventDisconnected, Network: "EE WiFi", Detail: "redirected"},
			{Timestamp: ts.Add(150 * time.Second), Kind: models.EventReconnected, Network: "EE WiFi", Downtime: 150 * time.Second},
		},
	}
}

func newTestGenerator(src Source) *Generator {
	g := NewGenerator(src, "internet_logbook.db", logger.Discard())
	g.now = func() time.Time { return time.Date(2024, 5, 2, 12, 0, 0, 0, time.Local) }
	return g
}

func TestWriteText(t *testing.T) {
	src := sampleSource()
	g := newTestGenerator(src)
	events, _ := src.QueryEvents(context.Background(), time.Time{}, recentEvents)

	var buf bytes.Buffer
	if err := g.WriteText(&buf, src.summaries, events); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"INTERNET CONNECTIVITY LOGBOOK REPORT",
		"Generated: 2024-05-02 12:00:00",
		"DAILY SUMMARY (Last 2 Days)",
		"2024-05-02: 95/100 checks (95.0% success)",
		"Disconnects: 1, Total downtime: 2 minutes 30 seconds",
		"Logins: 1/2 succeeded (50.0%)",
		"Overall: 195/200 checks (97.5% success), 1 disconnects",
		"[RECONNECTED] 2024-05-02 09:32:30 | Network: EE WiFi | Downtime: 150 seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}

	// newest event first
	if strings.Index(out, "[RECONNECTED]") > strings.Index(out, "[DISCONNECTED]") {
		t.Error("recent events not listed newest first")
	}
}

func TestExport(t *testing.T) {
	g := newTestGenerator(sampleSource())
	path := filepath.Join(t.TempDir(), "exports", "full.txt")

	n, err := g.Export(context.Background(), path, 7)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d events, want 2", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Total Events: 2") || !strings.HasSuffix(strings.TrimSpace(out), strings.Repeat("=", 80)) {
		t.Errorf("unexpected export:\n%s", out)
	}
	if strings.Index(out, "[DISCONNECTED]") > strings.Index(out, "[RECONNECTED]") {
		t.Error("export not oldest first")
	}
}

func TestGenerateReport(t *testing.T) {
	g := newTestGenerator(sampleSource())
	dir, err := g.GenerateReport(context.Background(), t.TempDir(), 7)
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	if filepath.Base(dir) != "hotspot_report_2024-05-02_12-00-00" {
		t.Errorf("report dir = %s", dir)
	}
	for _, name := range []string{"summary.txt", "daily_downtime.png", "daily_success_rate.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s not written: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestGenerateReportWithoutDowntime(t *testing.T) {
	src := &stubSource{summaries: []models.DailySummary{{Date: "2024-05-01"}, {Date: "2024-05-02"}}}
	g := newTestGenerator(src)
	dir, err := g.GenerateReport(context.Background(), t.TempDir(), 2)
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "summary.txt"))
	if !strings.Contains(string(data), "No events recorded.") {
		t.Errorf("empty report should say so:\n%s", data)
	}
}
