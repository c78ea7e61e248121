package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/config"
	"hotspot-monitor/internal/models"
)

// clock is replaced in tests
type clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Monitor is the recovery coordinator. It polls connectivity, opens a
// recovery episode when the failure threshold is reached, and records
// every transition in the logbook.
type Monitor struct {
	cfg      config.MonitorConfig
	profiles []models.HotspotProfile
	prober   models.Prober
	executor models.LoginExecutor
	book     models.Recorder
	logger   *logrus.Logger
	clock    clock

	// recovering guards against a second episode while one is open
	recovering atomic.Bool

	mu    sync.RWMutex
	state state

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type state struct {
	mode         models.Mode
	connectivity models.Connectivity
	failures     int
	downSince    time.Time
	lastCheck    time.Time
	lastEvent    time.Time
	network      string
	episode      *models.RecoveryEpisode
	lastEpisode  *models.RecoveryEpisode
	storageOK    bool
}

// New creates a Monitor. profiles must be non-empty; they are tried in
// order, cycling, one per login attempt.
func New(cfg config.MonitorConfig, profiles []models.HotspotProfile, prober models.Prober,
	executor models.LoginExecutor, book models.Recorder, logger *logrus.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		cfg:      cfg,
		profiles: append([]models.HotspotProfile(nil), profiles...),
		prober:   prober,
		executor: executor,
		book:     book,
		logger:   logger,
		clock:    realClock{},
		ctx:      ctx,
		cancel:   cancel,
	}
	m.state = state{
		mode:         models.ModeMonitoring,
		connectivity: models.ConnectivityUnknown,
		storageOK:    true,
	}
	if len(profiles) > 0 {
		m.state.network = profiles[0].SSID
	}
	return m
}

// Status returns a read-only snapshot of the coordinator
func (m *Monitor) Status() models.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := models.Status{
		Mode:                m.state.mode,
		Connectivity:        m.state.connectivity,
		ConsecutiveFailures: m.state.failures,
		DownSince:           timePtr(m.state.downSince),
		LastCheckAt:         timePtr(m.state.lastCheck),
		LastEventAt:         timePtr(m.state.lastEvent),
		StorageHealthy:      m.state.storageOK,
	}
	if m.state.episode != nil {
		ep := *m.state.episode
		s.Episode = &ep
	}
	if m.state.lastEpisode != nil {
		ep := *m.state.lastEpisode
		s.LastEpisode = &ep
	}
	return s
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
