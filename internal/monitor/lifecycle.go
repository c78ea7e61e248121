package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Start runs the check loop in the background until Stop is called
func (m *Monitor) Start() error {
	m.logger.WithFields(logrus.Fields{
		"interval":  m.cfg.CheckInterval,
		"threshold": m.cfg.FailureThreshold,
		"retries":   m.cfg.MaxRetries,
		"hotspots":  len(m.profiles),
	}).Info("Starting connectivity monitor")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Run(m.ctx)
	}()
	return nil
}

// Stop cancels the check loop. An in-flight login finishes tearing down
// its browser session before Wait returns.
func (m *Monitor) Stop() {
	m.logger.Info("Stopping connectivity monitor...")
	m.cancel()
}

// Wait blocks until the background loop has exited
func (m *Monitor) Wait() {
	m.wg.Wait()
	m.logger.Info("Connectivity monitor stopped")
}

// Run checks connectivity immediately and then every check interval until
// ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	m.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	if _, err := m.RunOnce(ctx); err != nil {
		m.logger.WithError(err).Debug("Check cycle skipped")
	}
}
