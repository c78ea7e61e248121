package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hotspot-monitor/internal/models"
)

const dateLayout = "2006-01-02"

// dayBounds returns local midnight of t's day and of the following day
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.Local()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}

// Summarize derives the DailySummary for day's local calendar date
func (lb *Logbook) Summarize(ctx context.Context, day time.Time) (models.DailySummary, error) {
	var s models.DailySummary
	err := lb.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		s, err = summarize(ctx, tx, day)
		return err
	})
	return s, err
}

// SummarizeRange returns summaries for the last days days, oldest first,
// ending with today.
func (lb *Logbook) SummarizeRange(ctx context.Context, days int) ([]models.DailySummary, error) {
	if days < 1 {
		days = 1
	}
	today, _ := dayBounds(lb.now())

	summaries := make([]models.DailySummary, 0, days)
	err := lb.readTx(ctx, func(tx *sql.Tx) error {
		for i := days - 1; i >= 0; i-- {
			s, err := summarize(ctx, tx, today.AddDate(0, 0, -i))
			if err != nil {
				return err
			}
			summaries = append(summaries, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// readTx runs fn in a read-only transaction so every statement sees the
// same WAL snapshot, even while Maintain moves checks into daily_checks.
func (lb *Logbook) readTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := lb.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func summarize(ctx context.Context, q queryer, day time.Time) (models.DailySummary, error) {
	start, end := dayBounds(day)
	date := start.Format(dateLayout)

	events, err := eventsBetween(ctx, q, start, end)
	if err != nil {
		return models.DailySummary{}, err
	}
	total, successful, err := checkCounts(ctx, q, date, start, end)
	if err != nil {
		return models.DailySummary{}, err
	}
	return BuildSummary(date, events, total, successful), nil
}

// BuildSummary aggregates one day's events and check counts. It depends
// only on the multiset of events, never on their order.
func BuildSummary(date string, events []models.LogEvent, totalChecks, successfulChecks int) models.DailySummary {
	s := models.DailySummary{
		Date:             date,
		TotalChecks:      totalChecks,
		SuccessfulChecks: successfulChecks,
		FailedChecks:     totalChecks - successfulChecks,
	}
	if totalChecks > 0 {
		s.SuccessRate = percent(successfulChecks, totalChecks)
	}

	var downtimeMs int64
	var reconnects int64
	for _, e := range events {
		switch e.Kind {
		case models.EventDisconnected:
			s.DisconnectCount++
		case models.EventReconnected:
			reconnects++
			downtimeMs += e.Downtime.Milliseconds()
		case models.EventLoginAttempt:
			s.LoginAttempts++
		case models.EventLoginSuccess:
			s.LoginSuccesses++
		}
	}

	s.TotalDowntime = time.Duration(downtimeMs) * time.Millisecond
	if reconnects > 0 {
		s.AvgRecoveryTime = time.Duration(downtimeMs/reconnects) * time.Millisecond
	}
	if s.LoginAttempts > 0 {
		s.LoginSuccessRate = percent(s.LoginSuccesses, s.LoginAttempts)
	}
	return s
}

func percent(part, whole int) float64 {
	return float64(part) * 100 / float64(whole)
}
