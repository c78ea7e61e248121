package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/models"
)

// Source is the read side of the logbook used for reports
type Source interface {
	QueryEvents(ctx context.Context, since time.Time, limit int) ([]models.LogEvent, error)
	SummarizeRange(ctx context.Context, days int) ([]models.DailySummary, error)
	AllEvents(ctx context.Context) ([]models.LogEvent, error)
}

// recentEvents is how many events the text report lists
const recentEvents = 20

// Generator writes connectivity reports and exports
type Generator struct {
	src    Source
	dbPath string
	logger *logrus.Logger
	now    func() time.Time
}

// NewGenerator creates a new report generator. dbPath is only printed in
// report headers.
func NewGenerator(src Source, dbPath string, logger *logrus.Logger) *Generator {
	return &Generator{src: src, dbPath: dbPath, logger: logger, now: time.Now}
}

// GenerateReport writes summary.txt and PNG charts covering the last days
// days into a new timestamped directory under outputDir and returns it.
func (g *Generator) GenerateReport(ctx context.Context, outputDir string, days int) (string, error) {
	summaries, err := g.src.SummarizeRange(ctx, days)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	events, err := g.src.QueryEvents(ctx, time.Time{}, recentEvents)
	if err != nil {
		return "", fmt.Errorf("recent events: %w", err)
	}

	reportDir := filepath.Join(outputDir, fmt.Sprintf("hotspot_report_%s", g.now().Format("2006-01-02_15-04-05")))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := g.writeFile(filepath.Join(reportDir, "summary.txt"), func(f *os.File) error {
		return g.WriteText(f, summaries, events)
	}); err != nil {
		return "", fmt.Errorf("text report: %w", err)
	}

	// Charts are best effort; the text report is the record
	if err := g.generateDowntimeChart(reportDir, summaries); err != nil {
		g.logger.WithError(err).Warn("Failed to generate downtime chart")
	}
	if err := g.generateSuccessRateChart(reportDir, summaries); err != nil {
		g.logger.WithError(err).Warn("Failed to generate success rate chart")
	}

	g.logger.WithField("dir", reportDir).Info("Report generated")
	return reportDir, nil
}

// Export writes every stored event, oldest first, plus daily summaries to path
func (g *Generator) Export(ctx context.Context, path string, days int) (int, error) {
	events, err := g.src.AllEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("load events: %w", err)
	}
	summaries, err := g.src.SummarizeRange(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("summarize: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	err = g.writeFile(path, func(f *os.File) error {
		return g.WriteExport(f, summaries, events)
	})
	if err != nil {
		return 0, err
	}

	g.logger.WithFields(logrus.Fields{"file": path, "events": len(events)}).Info("Records exported")
	return len(events), nil
}

func (g *Generator) writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
