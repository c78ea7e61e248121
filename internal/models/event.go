package models

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"
)

// EventKind identifies what a logbook row records
type EventKind string

const (
	EventConnected    EventKind = "CONNECTED"
	EventDisconnected EventKind = "DISCONNECTED"
	EventReconnected  EventKind = "RECONNECTED"
	EventLoginAttempt EventKind = "LOGIN_ATTEMPT"
	EventLoginSuccess EventKind = "LOGIN_SUCCESS"
	EventLoginFailed  EventKind = "LOGIN_FAILED"
)

// Valid reports whether k is one of the known event kinds
func (k EventKind) Valid() bool {
	switch k {
	case EventConnected, EventDisconnected, EventReconnected,
		EventLoginAttempt, EventLoginSuccess, EventLoginFailed:
		return true
	}
	return false
}

// LogEvent is an immutable logbook row
type LogEvent struct {
	ID        int64         `json:"id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Kind      EventKind     `json:"kind"`
	Network   string        `json:"network,omitempty"` // empty when not tied to a hotspot
	Detail    string        `json:"detail,omitempty"`
	Downtime  time.Duration `json:"downtime_ns,omitempty"` // RECONNECTED only
	EpisodeID string        `json:"episode_id,omitempty"`
}

// String renders the event as a single human-readable record line.
func (e LogEvent) String() string {
	ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
	network := e.Network
	if network == "" {
		network = "-"
	}

	switch e.Kind {
	case EventDisconnected:
		return fmt.Sprintf("[%s] %s | Network: %s | Error: %s", e.Kind, ts, network, e.Detail)
	case EventReconnected:
		return fmt.Sprintf("[%s] %s | Network: %s | Downtime: %d seconds (%s)",
			e.Kind, ts, network, int64(e.Downtime.Seconds()), HumanDuration(e.Downtime))
	case EventConnected:
		return fmt.Sprintf("[%s] %s | Network: %s", e.Kind, ts, network)
	default:
		if e.Detail == "" {
			return fmt.Sprintf("[%s] %s | Network: %s", e.Kind, ts, network)
		}
		return fmt.Sprintf("[%s] %s | Network: %s | %s", e.Kind, ts, network, e.Detail)
	}
}

// HumanDuration formats d as at most two units, e.g. "2 minutes 5 seconds"
func HumanDuration(d time.Duration) string {
	if d < time.Second {
		return "0 seconds"
	}
	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2).String()
}
