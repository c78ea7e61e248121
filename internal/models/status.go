package models

import "time"

// Mode is the coordinator's control state
type Mode string

const (
	ModeMonitoring Mode = "MONITORING"
	ModeRecovering Mode = "RECOVERING"
)

// Connectivity is the link state as seen by the coordinator
type Connectivity string

const (
	ConnectivityUnknown Connectivity = "UNKNOWN"
	ConnectivityUp      Connectivity = "UP"
	ConnectivityDown    Connectivity = "DOWN"
)

// EpisodeOutcome is how a recovery episode ended
type EpisodeOutcome string

const (
	OutcomeOpen      EpisodeOutcome = ""
	OutcomeRecovered EpisodeOutcome = "recovered"
	OutcomeExhausted EpisodeOutcome = "exhausted"
)

// RecoveryEpisode spans one disconnection from recovery start to resolution
type RecoveryEpisode struct {
	ID       string         `json:"id"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end,omitempty"`
	Attempts int            `json:"attempts"`
	Outcome  EpisodeOutcome `json:"outcome,omitempty"`
}

// Status is a read-only snapshot of the coordinator
type Status struct {
	Mode                Mode             `json:"mode"`
	Connectivity        Connectivity     `json:"connectivity"`
	ConsecutiveFailures int              `json:"consecutive_failures"`
	DownSince           *time.Time       `json:"down_since,omitempty"`
	LastCheckAt         *time.Time       `json:"last_check_at,omitempty"`
	LastEventAt         *time.Time       `json:"last_event_at,omitempty"`
	Episode             *RecoveryEpisode `json:"episode,omitempty"`
	LastEpisode         *RecoveryEpisode `json:"last_episode,omitempty"`
	StorageHealthy      bool             `json:"storage_healthy"`
}

// CycleResult reports what a single check cycle observed and did
type CycleResult struct {
	Probe        ProbeResult  `json:"probe"`
	Connectivity Connectivity `json:"connectivity"`
	Recovered    bool         `json:"recovered"`
	Attempts     int          `json:"attempts"`
}
