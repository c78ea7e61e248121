package logbook

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/metrics"
	"hotspot-monitor/internal/models"
)

const maxBackoff = 2 * time.Second

// Record durably appends one event. It retries with exponential backoff
// and returns ErrStorageExhausted once every attempt has failed.
func (lb *Logbook) Record(ctx context.Context, event models.LogEvent) error {
	if !event.Kind.Valid() {
		return fmt.Errorf("record event: unknown kind %q", event.Kind)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = lb.now()
	}

	lb.writeMu.Lock()
	defer lb.writeMu.Unlock()

	err := lb.withRetry(ctx, "events", func() error {
		_, err := lb.exec(ctx, `
            INSERT INTO events (ts_ms, kind, network, detail, downtime_ms, episode_id)
            VALUES (?, ?, ?, ?, ?, ?)
        `,
			event.Timestamp.UnixMilli(),
			string(event.Kind),
			nullable(event.Network),
			event.Detail,
			event.Downtime.Milliseconds(),
			nullable(event.EpisodeID),
		)
		return err
	})
	if err != nil {
		return err
	}

	lb.appendRecord(event)
	return nil
}

// RecordCheck stores one probe verdict with the same guarantees as Record
func (lb *Logbook) RecordCheck(ctx context.Context, check models.CheckRecord) error {
	if check.Timestamp.IsZero() {
		check.Timestamp = lb.now()
	}

	lb.writeMu.Lock()
	defer lb.writeMu.Unlock()

	return lb.withRetry(ctx, "checks", func() error {
		_, err := lb.exec(ctx, `
            INSERT INTO checks (ts_ms, reachable, latency_ms, reason)
            VALUES (?, ?, ?, ?)
        `,
			check.Timestamp.UnixMilli(),
			check.Reachable,
			check.Latency.Milliseconds(),
			check.Reason,
		)
		return err
	})
}

func (lb *Logbook) withRetry(ctx context.Context, table string, fn func() error) error {
	backoff := lb.opts.RetryBackoff
	var lastErr error

	for attempt := 1; attempt <= lb.opts.WriteRetries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			metrics.RecordWrite(table, true)
			return nil
		}

		lb.logger.WithFields(logrus.Fields{
			"table":   table,
			"attempt": attempt,
			"of":      lb.opts.WriteRetries,
		}).WithError(lastErr).Warn("Logbook write failed")

		if attempt == lb.opts.WriteRetries {
			break
		}
		metrics.LogbookWriteRetries.Inc()

		select {
		case <-ctx.Done():
			metrics.RecordWrite(table, false)
			return fmt.Errorf("%w: %s: %w", models.ErrStorageExhausted, table, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}

	metrics.RecordWrite(table, false)
	return fmt.Errorf("%w: %s after %d attempts: %w", models.ErrStorageExhausted, table, lb.opts.WriteRetries, lastErr)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
