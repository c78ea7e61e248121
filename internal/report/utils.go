package report

import (
	"time"

	"hotspot-monitor/internal/models"
)

// totals folds daily summaries into one period summary
func totals(summaries []models.DailySummary) models.DailySummary {
	var t models.DailySummary
	for _, s := range summaries {
		t.TotalChecks += s.TotalChecks
		t.SuccessfulChecks += s.SuccessfulChecks
		t.FailedChecks += s.FailedChecks
		t.DisconnectCount += s.DisconnectCount
		t.TotalDowntime += s.TotalDowntime
		t.LoginAttempts += s.LoginAttempts
		t.LoginSuccesses += s.LoginSuccesses
	}
	if t.TotalChecks > 0 {
		t.SuccessRate = float64(t.SuccessfulChecks) * 100 / float64(t.TotalChecks)
	}
	if t.LoginAttempts > 0 {
		t.LoginSuccessRate = float64(t.LoginSuccesses) * 100 / float64(t.LoginAttempts)
	}
	return t
}

// dayTime parses a summary date back into local midnight
func dayTime(date string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
