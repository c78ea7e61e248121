package monitor

import (
	"context"

	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/models"
)

// emit records an event. Outcomes are written even after shutdown has
// started, so the write uses a context that ignores cancellation.
func (m *Monitor) emit(ctx context.Context, event models.LogEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = m.clock.Now()
	}

	err := m.book.Record(context.WithoutCancel(ctx), event)

	m.mu.Lock()
	m.state.lastEvent = event.Timestamp
	m.mu.Unlock()

	if err != nil {
		m.storageFailed(err, string(event.Kind))
		return
	}
	m.storageHealthy()
}

func (m *Monitor) storageHealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.storageOK {
		m.logger.Info("Logbook writes succeeding again")
	}
	m.state.storageOK = true
}

func (m *Monitor) storageFailed(err error, what string) {
	m.mu.Lock()
	m.state.storageOK = false
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"record": what,
	}).WithError(err).Error("Logbook write failed, monitoring continues")
}
