package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"hotspot-monitor/internal/models"
)

// Config holds all configuration for the hotspot monitor
type Config struct {
	Monitor  MonitorConfig
	Browser  BrowserConfig
	Logbook  LogbookConfig
	Logging  LoggingConfig
	Status   StatusConfig
	Reports  ReportsConfig
	Hotspots []models.HotspotProfile

	// Path is the file the configuration was loaded from
	Path string
}

// MonitorConfig drives the check/recovery loop
type MonitorConfig struct {
	CheckInterval    time.Duration
	FailureThreshold int
	AttemptTimeout   time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	Headless         bool
	Debug            bool
	ProbeTimeout     time.Duration
	ProbeTargets     []string
}

// BrowserConfig tunes the login executor's browser sessions
type BrowserConfig struct {
	ExecPath      string
	StepTimeout   time.Duration
	SettleDelay   time.Duration
	ScreenshotDir string
}

// LogbookConfig locates and tunes event storage
type LogbookConfig struct {
	Path               string
	RecordsFile        string
	WriteRetries       int
	CheckRetentionDays int
}

// LoggingConfig selects logrus level, format and file
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// StatusConfig controls the read-only status API
type StatusConfig struct {
	Enabled bool
	Listen  string
}

// ReportsConfig controls scheduled report generation
type ReportsConfig struct {
	Enabled  bool
	Dir      string
	Schedule string
	Days     int
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	m := c.Monitor
	if m.CheckInterval <= 0 {
		add("monitor.check_interval must be positive")
	}
	if m.FailureThreshold < 1 {
		add("monitor.failure_threshold must be at least 1")
	}
	if m.AttemptTimeout <= 0 {
		add("monitor.attempt_timeout must be positive")
	}
	if m.MaxRetries < 1 {
		add("monitor.max_retries must be at least 1")
	}
	if m.RetryBackoff < 0 {
		add("monitor.retry_backoff cannot be negative")
	}
	if m.ProbeTimeout <= 0 {
		add("monitor.probe_timeout must be positive")
	}
	if len(m.ProbeTargets) < 2 {
		add("monitor.probe_targets needs at least two independent endpoints")
	}
	for _, target := range m.ProbeTargets {
		if err := validateTarget(target); err != nil {
			add("monitor.probe_targets: %v", err)
		}
	}

	if c.Browser.StepTimeout <= 0 {
		add("browser.step_timeout must be positive")
	}
	if c.Browser.SettleDelay < 0 {
		add("browser.settle_delay cannot be negative")
	}

	if c.Logbook.Path == "" {
		add("logbook.path cannot be empty")
	}
	if c.Logbook.WriteRetries < 1 {
		add("logbook.write_retries must be at least 1")
	}
	if c.Logbook.CheckRetentionDays < 1 {
		add("logbook.check_retention_days must be at least 1")
	}

	if c.Status.Enabled && c.Status.Listen == "" {
		add("status.listen cannot be empty when the status API is enabled")
	}
	if c.Reports.Enabled {
		if c.Reports.Dir == "" {
			add("reports.dir cannot be empty when reports are enabled")
		}
		if _, err := cron.ParseStandard(c.Reports.Schedule); err != nil {
			add("reports.schedule: %v", err)
		}
	}
	if c.Reports.Days < 1 {
		add("reports.days must be at least 1")
	}

	if len(c.Hotspots) == 0 {
		add("at least one [[hotspots]] entry must be configured")
	}
	seen := make(map[string]bool, len(c.Hotspots))
	for i, h := range c.Hotspots {
		if h.SSID == "" {
			add("hotspots[%d].ssid cannot be empty", i)
		} else if seen[h.SSID] {
			add("hotspots[%d].ssid %q is configured more than once", i, h.SSID)
		}
		seen[h.SSID] = true

		if _, err := models.ParseStrategy(string(h.Strategy)); err != nil {
			add("hotspots[%d].login_type: %v", i, err)
		}
		if err := validatePortalURL(h.PortalURL); err != nil {
			add("hotspots[%d].portal_url: %v", i, err)
		}
		if h.Strategy.NeedsCredentials() {
			if h.Username.Reveal() == "" {
				add("hotspots[%d].username is required for %s login", i, h.Strategy)
			}
			if h.Password.Reveal() == "" {
				add("hotspots[%d].password is required for %s login", i, h.Strategy)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", models.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%q: %v", target, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%q has no host", target)
		}
	case "tcp":
		if u.Host == "" || u.Port() == "" {
			return fmt.Errorf("%q must be tcp://host:port", target)
		}
	default:
		return fmt.Errorf("%q: scheme must be http, https or tcp", target)
	}
	return nil
}

func validatePortalURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q must be an absolute http(s) URL", raw)
	}
	return nil
}
