package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hotspot-monitor/internal/models"
)

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 1000
)

// ClampLimit applies the default and the upper bound to a query limit
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	}
	return limit
}

// QueryEvents returns events strictly after since, newest first
func (lb *Logbook) QueryEvents(ctx context.Context, since time.Time, limit int) ([]models.LogEvent, error) {
	rows, err := lb.db.QueryContext(ctx, `
        SELECT id, ts_ms, kind, network, detail, downtime_ms, episode_id
        FROM events
        WHERE ts_ms > ?
        ORDER BY ts_ms DESC, id DESC
        LIMIT ?
    `, since.UnixMilli(), ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// AllEvents returns every stored event, oldest first
func (lb *Logbook) AllEvents(ctx context.Context) ([]models.LogEvent, error) {
	rows, err := lb.db.QueryContext(ctx, `
        SELECT id, ts_ms, kind, network, detail, downtime_ms, episode_id
        FROM events
        ORDER BY ts_ms ASC, id ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("query all events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func eventsBetween(ctx context.Context, q queryer, start, end time.Time) ([]models.LogEvent, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, ts_ms, kind, network, detail, downtime_ms, episode_id
        FROM events
        WHERE ts_ms >= ? AND ts_ms < ?
        ORDER BY ts_ms ASC, id ASC
    `, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query events for day: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.LogEvent, error) {
	var events []models.LogEvent
	for rows.Next() {
		var (
			e          models.LogEvent
			tsMs, dtMs int64
			kind       string
			network    sql.NullString
			episodeID  sql.NullString
		)
		if err := rows.Scan(&e.ID, &tsMs, &kind, &network, &e.Detail, &dtMs, &episodeID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = timeFromMs(tsMs)
		e.Kind = models.EventKind(kind)
		e.Downtime = time.Duration(dtMs) * time.Millisecond
		if network.Valid {
			e.Network = network.String
		}
		if episodeID.Valid {
			e.EpisodeID = episodeID.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// checkCounts returns total and successful checks in [start, end) from raw
// rows plus any rolled-up total for the given date.
func checkCounts(ctx context.Context, q queryer, date string, start, end time.Time) (total, successful int, err error) {
	var rawTotal, rawOK sql.NullInt64
	err = q.QueryRowContext(ctx, `
        SELECT COUNT(*), SUM(CASE WHEN reachable THEN 1 ELSE 0 END)
        FROM checks
        WHERE ts_ms >= ? AND ts_ms < ?
    `, start.UnixMilli(), end.UnixMilli()).Scan(&rawTotal, &rawOK)
	if err != nil {
		return 0, 0, fmt.Errorf("count checks: %w", err)
	}

	var rolledTotal, rolledOK int
	err = q.QueryRowContext(ctx,
		`SELECT total, successful FROM daily_checks WHERE date = ?`, date,
	).Scan(&rolledTotal, &rolledOK)
	if err != nil && err != sql.ErrNoRows {
		return 0, 0, fmt.Errorf("read daily checks: %w", err)
	}

	return int(rawTotal.Int64) + rolledTotal, int(rawOK.Int64) + rolledOK, nil
}

func timeFromMs(ms int64) time.Time {
	return time.UnixMilli(ms).Local()
}
