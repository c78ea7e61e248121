package models

import "time"

// DailySummary is derived from stored checks and events for one calendar day
type DailySummary struct {
	Date             string        `json:"date"` // YYYY-MM-DD, local time
	TotalChecks      int           `json:"total_checks"`
	SuccessfulChecks int           `json:"successful_checks"`
	FailedChecks     int           `json:"failed_checks"`
	SuccessRate      float64       `json:"success_rate"` // percent
	DisconnectCount  int           `json:"disconnect_count"`
	TotalDowntime    time.Duration `json:"total_downtime_ns"`
	AvgRecoveryTime  time.Duration `json:"avg_recovery_time_ns"`
	LoginAttempts    int           `json:"login_attempts"`
	LoginSuccesses   int           `json:"login_successes"`
	LoginSuccessRate float64       `json:"login_success_rate"` // percent
}
