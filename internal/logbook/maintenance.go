package logbook

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MaintenanceResult reports what one maintenance pass did
type MaintenanceResult struct {
	RolledChecks int64
	RolledDays   int
	Vacuumed     bool
}

// Maintain rolls check rows older than the retention window into
// daily_checks, deletes them, and checkpoints the WAL. Events are never
// touched. The roll-up and delete share one transaction so summaries read
// the same totals before and after.
func (lb *Logbook) Maintain(ctx context.Context) (MaintenanceResult, error) {
	var res MaintenanceResult

	today, _ := dayBounds(lb.now())
	cutoff := today.AddDate(0, 0, -lb.opts.RetentionDays)

	lb.writeMu.Lock()
	defer lb.writeMu.Unlock()

	tx, err := lb.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin maintenance: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT ts_ms, reachable FROM checks WHERE ts_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return res, fmt.Errorf("select old checks: %w", err)
	}

	type counts struct{ total, ok int }
	perDay := make(map[string]*counts)
	for rows.Next() {
		var tsMs int64
		var reachable bool
		if err := rows.Scan(&tsMs, &reachable); err != nil {
			rows.Close()
			return res, fmt.Errorf("scan old check: %w", err)
		}
		start, _ := dayBounds(timeFromMs(tsMs))
		date := start.Format(dateLayout)
		c := perDay[date]
		if c == nil {
			c = &counts{}
			perDay[date] = c
		}
		c.total++
		if reachable {
			c.ok++
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return res, err
	}
	rows.Close()

	for date, c := range perDay {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO daily_checks (date, total, successful) VALUES (?, ?, ?)
            ON CONFLICT(date) DO UPDATE SET
                total = total + excluded.total,
                successful = successful + excluded.successful
        `, date, c.total, c.ok)
		if err != nil {
			return res, fmt.Errorf("roll up %s: %w", date, err)
		}
	}

	deleted, err := tx.ExecContext(ctx, `DELETE FROM checks WHERE ts_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return res, fmt.Errorf("delete old checks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit maintenance: %w", err)
	}

	res.RolledChecks, _ = deleted.RowsAffected()
	res.RolledDays = len(perDay)

	if _, err := lb.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		lb.logger.WithError(err).Warn("WAL checkpoint failed")
	}

	// Reclaim space on the first day of the month
	if lb.now().Day() == 1 && res.RolledChecks > 0 {
		if _, err := lb.db.ExecContext(ctx, "VACUUM"); err != nil {
			return res, fmt.Errorf("vacuum: %w", err)
		}
		res.Vacuumed = true
	}

	lb.logger.WithFields(logrus.Fields{
		"rolled_checks": res.RolledChecks,
		"rolled_days":   res.RolledDays,
		"vacuumed":      res.Vacuumed,
	}).Info("Logbook maintenance completed")

	return res, nil
}
