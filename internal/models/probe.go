package models

import "time"

// TargetResult is the outcome of one reachability check against one endpoint
type TargetResult struct {
	Target  string        `json:"target"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency_ns"`
	Error   string        `json:"error,omitempty"`
}

// ProbeResult is the verdict of one probe round across all endpoints
type ProbeResult struct {
	Timestamp time.Time      `json:"timestamp"`
	Reachable bool           `json:"reachable"`
	Latency   time.Duration  `json:"latency_ns"` // fastest successful target
	Reason    string         `json:"reason,omitempty"`
	Targets   []TargetResult `json:"targets,omitempty"`
}

// CheckRecord is the stored form of a probe round
type CheckRecord struct {
	Timestamp time.Time     `json:"timestamp"`
	Reachable bool          `json:"reachable"`
	Latency   time.Duration `json:"latency_ns"`
	Reason    string        `json:"reason,omitempty"`
}

// Record converts the probe verdict into its stored form
func (r ProbeResult) Record() CheckRecord {
	return CheckRecord{
		Timestamp: r.Timestamp,
		Reachable: r.Reachable,
		Latency:   r.Latency,
		Reason:    r.Reason,
	}
}
