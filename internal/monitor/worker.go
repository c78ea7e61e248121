package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/metrics"
	"hotspot-monitor/internal/models"
)

// RunOnce performs one check cycle: probe, record the check, update the
// connectivity state and, when the failure threshold is reached, run a
// recovery episode before returning.
func (m *Monitor) RunOnce(ctx context.Context) (models.CycleResult, error) {
	if err := ctx.Err(); err != nil {
		return models.CycleResult{}, err
	}

	probe := m.prober.Probe(ctx)
	metrics.RecordProbe(probe.Reachable)
	if probe.Timestamp.IsZero() {
		probe.Timestamp = m.clock.Now()
	}

	if err := m.book.RecordCheck(context.WithoutCancel(ctx), probe.Record()); err != nil {
		m.storageFailed(err, "check")
	} else {
		m.storageHealthy()
	}

	result := models.CycleResult{Probe: probe}
	if probe.Reachable {
		m.onReachable(ctx, probe)
	} else if m.onUnreachable(ctx, probe) {
		result.Recovered, result.Attempts = m.recover(ctx)
	}

	status := m.Status()
	result.Connectivity = status.Connectivity
	metrics.RecordState(status.Connectivity == models.ConnectivityUp, m.recovering.Load(), status.ConsecutiveFailures)
	return result, nil
}

func (m *Monitor) onReachable(ctx context.Context, probe models.ProbeResult) {
	m.mu.Lock()
	m.state.lastCheck = probe.Timestamp
	m.state.failures = 0

	// an open episode owns the DOWN -> UP transition
	if m.recovering.Load() {
		m.mu.Unlock()
		return
	}

	prev := m.state.connectivity
	downSince := m.state.downSince
	network := m.state.network
	m.state.connectivity = models.ConnectivityUp
	m.state.downSince = time.Time{}
	m.mu.Unlock()

	switch prev {
	case models.ConnectivityUnknown:
		m.logger.WithField("latency", probe.Latency).Info("Internet connection available")
		m.emit(ctx, models.LogEvent{Kind: models.EventConnected, Network: network})
	case models.ConnectivityDown:
		now := m.clock.Now()
		downtime := now.Sub(downSince)
		m.logger.WithFields(logrus.Fields{
			"downtime": models.HumanDuration(downtime),
		}).Info("Internet connection restored without login")
		metrics.RecordEpisode("self-healed", downtime)
		m.emit(ctx, models.LogEvent{
			Timestamp: now,
			Kind:      models.EventReconnected,
			Network:   network,
			Detail:    "restored without login",
			Downtime:  downtime,
		})
	}
}

// onUnreachable counts the failure and reports whether recovery should run
func (m *Monitor) onUnreachable(ctx context.Context, probe models.ProbeResult) bool {
	m.mu.Lock()
	m.state.lastCheck = probe.Timestamp
	m.state.failures++
	failures := m.state.failures
	if failures < m.cfg.FailureThreshold {
		m.mu.Unlock()
		m.logger.WithFields(logrus.Fields{
			"failures":  failures,
			"threshold": m.cfg.FailureThreshold,
			"reason":    probe.Reason,
		}).Warn("Connectivity check failed")
		return false
	}

	wasDown := m.state.connectivity == models.ConnectivityDown
	network := m.state.network
	if !wasDown {
		m.state.connectivity = models.ConnectivityDown
		m.state.downSince = probe.Timestamp
	}
	m.mu.Unlock()

	if !wasDown {
		m.logger.WithFields(logrus.Fields{
			"failures": failures,
			"reason":   probe.Reason,
		}).Warn("Internet connection lost")
		m.emit(ctx, models.LogEvent{
			Timestamp: probe.Timestamp,
			Kind:      models.EventDisconnected,
			Network:   network,
			Detail:    probe.Reason,
		})
	}
	return true
}
