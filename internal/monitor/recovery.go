package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/metrics"
	"hotspot-monitor/internal/models"
)

// recover runs one recovery episode. A call while an episode is open is a
// no-op and returns (false, 0).
func (m *Monitor) recover(ctx context.Context) (recovered bool, attempts int) {
	if len(m.profiles) == 0 {
		m.logger.Error("No hotspot profiles configured, cannot recover")
		return false, 0
	}
	if !m.recovering.CompareAndSwap(false, true) {
		m.logger.Debug("Recovery already in progress")
		return false, 0
	}
	defer m.recovering.Store(false)

	episode := &models.RecoveryEpisode{ID: uuid.NewString(), Start: m.clock.Now()}
	m.mu.Lock()
	m.state.mode = models.ModeRecovering
	m.state.episode = episode
	failures := m.state.failures
	m.mu.Unlock()
	metrics.RecordState(false, true, failures)

	log := m.logger.WithField("episode", episode.ID)
	log.WithField("max_retries", m.cfg.MaxRetries).Info("Starting captive portal recovery")

	maxRetries := m.cfg.MaxRetries
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 && !m.sleep(ctx, m.cfg.RetryBackoff) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		profile := m.profiles[attempt%len(m.profiles)]
		alog := log.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"network": profile.SSID,
		})

		m.emit(ctx, models.LogEvent{
			Kind:      models.EventLoginAttempt,
			Network:   profile.SSID,
			Detail:    fmt.Sprintf("attempt %d/%d (%s)", attempt+1, maxRetries, profile.Strategy),
			EpisodeID: episode.ID,
		})

		res := m.executor.AttemptLogin(ctx, profile, m.cfg.AttemptTimeout)
		m.mu.Lock()
		episode.Attempts++
		attempts = episode.Attempts
		m.mu.Unlock()

		if res.Success {
			m.recovered(ctx, episode, profile, res)
			return true, attempts
		}

		detail := res.Error
		if attempt == maxRetries-1 {
			detail = fmt.Sprintf("%s; retries exhausted (%d/%d)", detail, attempts, maxRetries)
		}
		alog.WithField("error", res.Error).Warn("Login attempt failed")
		m.emit(ctx, models.LogEvent{
			Kind:      models.EventLoginFailed,
			Network:   profile.SSID,
			Detail:    detail,
			EpisodeID: episode.ID,
		})
	}

	m.closeEpisode(episode, models.OutcomeExhausted)
	metrics.RecordEpisode(string(models.OutcomeExhausted), 0)
	log.WithField("attempts", attempts).Error("Recovery exhausted, will retry on the next failed check")
	return false, attempts
}

func (m *Monitor) recovered(ctx context.Context, episode *models.RecoveryEpisode, profile models.HotspotProfile, res models.LoginResult) {
	now := m.clock.Now()

	m.mu.Lock()
	downtime := now.Sub(m.state.downSince)
	m.state.connectivity = models.ConnectivityUp
	m.state.failures = 0
	m.state.downSince = time.Time{}
	m.state.network = profile.SSID
	m.mu.Unlock()

	m.emit(ctx, models.LogEvent{
		Timestamp: now,
		Kind:      models.EventLoginSuccess,
		Network:   profile.SSID,
		Detail:    fmt.Sprintf("logged in after %s", models.HumanDuration(res.Elapsed)),
		EpisodeID: episode.ID,
	})
	m.emit(ctx, models.LogEvent{
		Timestamp: now,
		Kind:      models.EventReconnected,
		Network:   profile.SSID,
		Downtime:  downtime,
		EpisodeID: episode.ID,
	})

	m.closeEpisode(episode, models.OutcomeRecovered)
	metrics.RecordEpisode(string(models.OutcomeRecovered), downtime)

	m.logger.WithFields(logrus.Fields{
		"episode":  episode.ID,
		"network":  profile.SSID,
		"attempts": episode.Attempts,
		"downtime": models.HumanDuration(downtime),
	}).Info("Internet connection restored")
}

func (m *Monitor) closeEpisode(episode *models.RecoveryEpisode, outcome models.EpisodeOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	episode.End = m.clock.Now()
	episode.Outcome = outcome
	m.state.mode = models.ModeMonitoring
	m.state.episode = nil
	m.state.lastEpisode = episode
}

// sleep waits d or until ctx is done; it reports whether the full wait elapsed
func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-m.clock.After(d):
		return true
	}
}
