package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/config"
	"hotspot-monitor/internal/logbook"
	"hotspot-monitor/internal/metrics"
)

const (
	jobMaintenance = "Logbook Maintenance"
	jobReport      = "Daily Report"
)

// Maintainer compacts logbook storage
type Maintainer interface {
	Maintain(ctx context.Context) (logbook.MaintenanceResult, error)
}

// Reporter writes a report directory
type Reporter interface {
	GenerateReport(ctx context.Context, outputDir string, days int) (string, error)
}

type CronScheduler struct {
	cron           *cron.Cron
	maintainer     Maintainer
	reporter       Reporter
	reports        config.ReportsConfig
	logger         *logrus.Logger
	jobTimeout     time.Duration
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	mu    sync.Mutex
	names map[cron.EntryID]string
}

func NewCronScheduler(maintainer Maintainer, reporter Reporter, reports config.ReportsConfig, logger *logrus.Logger) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &CronScheduler{
		cron:           cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		maintainer:     maintainer,
		reporter:       reporter,
		reports:        reports,
		logger:         logger,
		jobTimeout:     10 * time.Minute,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
		names:          make(map[cron.EntryID]string),
	}
}

func (s *CronScheduler) Start() error {
	var errs []error

	if s.maintainer != nil {
		if err := s.add("@hourly", jobMaintenance, s.maintain); err != nil {
			errs = append(errs, err)
		}
	}

	if s.reports.Enabled && s.reporter != nil {
		if err := s.add(s.reports.Schedule, jobReport, s.report); err != nil {
			errs = append(errs, err)
		}
	}

	s.cron.Start()
	s.logger.WithField("jobs", len(s.cron.Entries())).Info("Cron scheduler started")
	return errors.Join(errs...)
}

func (s *CronScheduler) add(spec, name string, job func(context.Context) error) error {
	id, err := s.cron.AddFunc(spec, s.runJob(name, job))
	if err != nil {
		s.logger.WithError(err).WithField("job", name).Error("Failed to schedule job")
		return err
	}
	s.mu.Lock()
	s.names[id] = name
	s.mu.Unlock()
	return nil
}

func (s *CronScheduler) maintain(ctx context.Context) error {
	_, err := s.maintainer.Maintain(ctx)
	return err
}

func (s *CronScheduler) report(ctx context.Context) error {
	_, err := s.reporter.GenerateReport(ctx, s.reports.Dir, s.reports.Days)
	return err
}

// runJob adapts job to cron. A panic is reported as a job failure.
func (s *CronScheduler) runJob(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.shutdownCtx, s.jobTimeout)
		defer cancel()

		log := s.logger.WithField("job", name)
		began := time.Now()

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return job(ctx)
		}()
		metrics.RecordJob(name, err == nil)

		log = log.WithField("took", time.Since(began).Round(time.Millisecond))
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			log.WithError(err).Warnf("Job exceeded %s", s.jobTimeout)
		case err != nil:
			log.WithError(err).Error("Job failed")
		default:
			log.Debug("Job done")
		}
	}
}

// Stop prevents new runs, cancels running jobs and waits up to a minute
// for them to return.
func (s *CronScheduler) Stop() {
	s.shutdownCancel()
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		s.logger.Info("Cron scheduler stopped")
	case <-time.After(time.Minute):
		s.logger.Warn("Cron jobs still running after shutdown timeout")
	}
}

// JobStatus describes one scheduled job
type JobStatus struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	PrevRun time.Time `json:"prev_run,omitempty"`
}

// Jobs returns the scheduled jobs and their run times
func (s *CronScheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	jobs := make([]JobStatus, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, JobStatus{
			Name:    s.names[entry.ID],
			NextRun: entry.Next,
			PrevRun: entry.Prev,
		})
	}
	return jobs
}
