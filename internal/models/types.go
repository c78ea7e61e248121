package models

import (
	"context"
	"time"
)

// Prober checks outbound reachability. It always returns a verdict.
type Prober interface {
	Probe(ctx context.Context) ProbeResult
}

// LoginExecutor performs one captive-portal login attempt
type LoginExecutor interface {
	AttemptLogin(ctx context.Context, profile HotspotProfile, timeout time.Duration) LoginResult
}

// Recorder is the write side of the logbook
type Recorder interface {
	Record(ctx context.Context, event LogEvent) error
	RecordCheck(ctx context.Context, check CheckRecord) error
}

// Logbook defines durable event storage and its derived statistics
type Logbook interface {
	Recorder
	QueryEvents(ctx context.Context, since time.Time, limit int) ([]LogEvent, error)
	Summarize(ctx context.Context, day time.Time) (DailySummary, error)
	SummarizeRange(ctx context.Context, days int) ([]DailySummary, error)
	Close() error
}
