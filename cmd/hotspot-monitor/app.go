package main

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hotspot-monitor/internal/config"
	"hotspot-monitor/internal/logbook"
	"hotspot-monitor/internal/logger"
	"hotspot-monitor/internal/login"
	"hotspot-monitor/internal/monitor"
	"hotspot-monitor/internal/probe"
)

// app holds the components shared by the commands
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	logCloser io.Closer
	book      *logbook.Logbook
}

// loadConfig reads the configuration file and applies explicit flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(overrides.Path)
	if err != nil {
		return nil, err
	}
	if err := overrides.Apply(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openApp(cfg)
}

func openApp(cfg *config.Config) (*app, error) {
	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}

	book, err := logbook.Open(cfg.Logbook.Path, logbook.Options{
		RecordsFile:   cfg.Logbook.RecordsFile,
		WriteRetries:  cfg.Logbook.WriteRetries,
		RetryBackoff:  200 * time.Millisecond,
		RetentionDays: cfg.Logbook.CheckRetentionDays,
	}, log)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open logbook: %w", err)
	}

	return &app{cfg: cfg, log: log, logCloser: closer, book: book}, nil
}

// newMonitor wires prober, browser login executor and coordinator
func (a *app) newMonitor() *monitor.Monitor {
	prober := probe.New(a.cfg.Monitor.ProbeTargets, a.cfg.Monitor.ProbeTimeout, a.log)
	executor := login.NewExecutor(login.NewChrome(a.log), prober, login.Options{
		Headless:      a.cfg.Monitor.Headless,
		ExecPath:      a.cfg.Browser.ExecPath,
		StepTimeout:   a.cfg.Browser.StepTimeout,
		SettleDelay:   a.cfg.Browser.SettleDelay,
		Debug:         a.cfg.Monitor.Debug,
		ScreenshotDir: a.cfg.Browser.ScreenshotDir,
	}, a.log)
	return monitor.New(a.cfg.Monitor, a.cfg.Hotspots, prober, executor, a.book, a.log)
}

func (a *app) Close() {
	if err := a.book.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close logbook")
	}
	a.logCloser.Close()
}
