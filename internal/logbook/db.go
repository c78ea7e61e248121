package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"hotspot-monitor/internal/models"
)

var _ models.Logbook = (*Logbook)(nil)

// Options tunes write retries and the plain-text records mirror
type Options struct {
	RecordsFile   string
	WriteRetries  int
	RetryBackoff  time.Duration // first backoff, doubled per retry
	RetentionDays int
}

// Logbook is the SQLite-backed event and check store
type Logbook struct {
	db     *sql.DB
	opts   Options
	logger *logrus.Logger
	now    func() time.Time

	// exec runs the inserts of Record and RecordCheck
	exec func(ctx context.Context, query string, args ...any) (sql.Result, error)

	// writeMu serialises writers; WAL readers never wait on it
	writeMu sync.Mutex
}

// Open opens (creating if needed) the logbook database at path
func Open(path string, opts Options, logger *logrus.Logger) (*Logbook, error) {
	if opts.WriteRetries < 1 {
		opts.WriteRetries = 1
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 100 * time.Millisecond
	}
	if opts.RetentionDays < 1 {
		opts.RetentionDays = 7
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("logbook open failed: %w", err)
	}

	lb := &Logbook{db: db, opts: opts, logger: logger, now: time.Now, exec: db.ExecContext}
	if err := lb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return lb, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func (lb *Logbook) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts_ms INTEGER NOT NULL,
        kind TEXT NOT NULL,
        network TEXT,
        detail TEXT NOT NULL DEFAULT '',
        downtime_ms INTEGER NOT NULL DEFAULT 0,
        episode_id TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_ms);
    CREATE INDEX IF NOT EXISTS idx_events_kind_ts ON events(kind, ts_ms);

    CREATE TABLE IF NOT EXISTS checks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts_ms INTEGER NOT NULL,
        reachable BOOLEAN NOT NULL,
        latency_ms INTEGER NOT NULL DEFAULT 0,
        reason TEXT NOT NULL DEFAULT ''
    );

    CREATE INDEX IF NOT EXISTS idx_checks_ts ON checks(ts_ms);

    -- check rows past retention, rolled up per local calendar day
    CREATE TABLE IF NOT EXISTS daily_checks (
        date TEXT PRIMARY KEY,
        total INTEGER NOT NULL,
        successful INTEGER NOT NULL
    );
    `

	if _, err := lb.db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

// Ping reports whether the database answers
func (lb *Logbook) Ping(ctx context.Context) error {
	return lb.db.PingContext(ctx)
}

// Close closes the database
func (lb *Logbook) Close() error {
	return lb.db.Close()
}
