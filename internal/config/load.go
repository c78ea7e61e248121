package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"

	"hotspot-monitor/internal/models"
)

const DefaultPath = "hotspot_config.toml"

var defaultProbeTargets = []string{
	"http://connectivitycheck.gstatic.com/generate_204",
	"http://cp.cloudflare.com/generate_204",
}

// fileConfig mirrors the TOML document. Pointers distinguish "absent" from
// an explicit zero so that a literal 0 interval is rejected, not defaulted.
type fileConfig struct {
	Monitor  monitorSection   `toml:"monitor"`
	Browser  browserSection   `toml:"browser"`
	Logbook  logbookSection   `toml:"logbook"`
	Logging  loggingSection   `toml:"logging"`
	Status   statusSection    `toml:"status"`
	Reports  reportsSection   `toml:"reports"`
	Hotspots []hotspotSection `toml:"hotspots"`
}

type monitorSection struct {
	CheckInterval    *int     `toml:"check_interval" comment:"seconds between connectivity checks"`
	FailureThreshold *int     `toml:"failure_threshold" comment:"consecutive failed checks before recovery starts"`
	AttemptTimeout   *int     `toml:"attempt_timeout" comment:"seconds allowed for one login attempt"`
	MaxRetries       *int     `toml:"max_retries" comment:"login attempts per disconnection episode"`
	RetryBackoff     *int     `toml:"retry_backoff" comment:"seconds to wait between login attempts"`
	HeadlessBrowser  *bool    `toml:"headless_browser" comment:"false shows the browser window"`
	DebugMode        *bool    `toml:"debug_mode"`
	ProbeTimeout     *int     `toml:"probe_timeout" comment:"seconds per reachability check"`
	ProbeTargets     []string `toml:"probe_targets" comment:"http(s) generate_204 URLs or tcp://host:port"`
}

type browserSection struct {
	ExecPath      string `toml:"exec_path" comment:"Chrome/Chromium binary, empty searches PATH"`
	StepTimeout   *int   `toml:"step_timeout" comment:"seconds to wait for each page element"`
	SettleDelay   *int   `toml:"settle_delay" comment:"seconds to wait after the final step before re-probing"`
	ScreenshotDir string `toml:"screenshot_dir" comment:"debug screenshots of failed attempts"`
}

type logbookSection struct {
	Path               string `toml:"path"`
	RecordsFile        string `toml:"records_file" comment:"plain-text mirror of every event, empty disables"`
	WriteRetries       *int   `toml:"write_retries"`
	CheckRetentionDays *int   `toml:"check_retention_days" comment:"raw check rows older than this are rolled into daily totals"`
}

type loggingSection struct {
	Level  string `toml:"level"`
	Format string `toml:"format" comment:"text or json"`
	File   string `toml:"file"`
}

type statusSection struct {
	Enabled *bool  `toml:"enabled"`
	Listen  string `toml:"listen"`
}

type reportsSection struct {
	Enabled  *bool  `toml:"enabled"`
	Dir      string `toml:"dir"`
	Schedule string `toml:"schedule" comment:"cron expression for the daily report"`
	Days     *int   `toml:"days"`
}

type hotspotSection struct {
	SSID        string            `toml:"ssid"`
	LoginType   string            `toml:"login_type" comment:"click-through, form-based or multi-step-business"`
	Username    string            `toml:"username"`
	Password    string            `toml:"password" comment:"$VAR or ${VAR} is read from the environment or .env"`
	PortalURL   string            `toml:"portal_url"`
	Description string            `toml:"description"`
	Selectors   map[string]string `toml:"selectors"`
}

// Default returns the built-in configuration without any hotspots
func Default() Config {
	return Config{
		Monitor: MonitorConfig{
			CheckInterval:    30 * time.Second,
			FailureThreshold: 1,
			AttemptTimeout:   90 * time.Second,
			MaxRetries:       3,
			RetryBackoff:     5 * time.Second,
			Headless:         true,
			ProbeTimeout:     5 * time.Second,
			ProbeTargets:     append([]string(nil), defaultProbeTargets...),
		},
		Browser: BrowserConfig{
			StepTimeout: 10 * time.Second,
			SettleDelay: 3 * time.Second,
		},
		Logbook: LogbookConfig{
			Path:               "internet_logbook.db",
			RecordsFile:        "internet_connectivity_records.txt",
			WriteRetries:       5,
			CheckRetentionDays: 7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "internet_monitor.log",
		},
		Status: StatusConfig{
			Enabled: true,
			Listen:  "127.0.0.1:8089",
		},
		Reports: ReportsConfig{
			Dir:      "reports",
			Schedule: "5 0 * * *",
			Days:     7,
		},
	}
}

// Load reads, expands and validates the configuration at path. A .env file
// next to the configuration (or in the working directory) is loaded first so
// credentials can stay out of the TOML document.
func Load(path string) (*Config, error) {
	loadDotEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrInvalidConfig, path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a TOML document on top of the defaults and expands
// environment references in credentials. It does not validate.
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: parse toml: %v", models.ErrInvalidConfig, err)
	}

	cfg := Default()

	m := fc.Monitor
	setSeconds(&cfg.Monitor.CheckInterval, m.CheckInterval)
	setInt(&cfg.Monitor.FailureThreshold, m.FailureThreshold)
	setSeconds(&cfg.Monitor.AttemptTimeout, m.AttemptTimeout)
	setInt(&cfg.Monitor.MaxRetries, m.MaxRetries)
	setSeconds(&cfg.Monitor.RetryBackoff, m.RetryBackoff)
	setBool(&cfg.Monitor.Headless, m.HeadlessBrowser)
	setBool(&cfg.Monitor.Debug, m.DebugMode)
	setSeconds(&cfg.Monitor.ProbeTimeout, m.ProbeTimeout)
	if m.ProbeTargets != nil {
		cfg.Monitor.ProbeTargets = m.ProbeTargets
	}

	b := fc.Browser
	setString(&cfg.Browser.ExecPath, b.ExecPath)
	setSeconds(&cfg.Browser.StepTimeout, b.StepTimeout)
	setSeconds(&cfg.Browser.SettleDelay, b.SettleDelay)
	setString(&cfg.Browser.ScreenshotDir, b.ScreenshotDir)

	setString(&cfg.Logbook.Path, fc.Logbook.Path)
	setString(&cfg.Logbook.RecordsFile, fc.Logbook.RecordsFile)
	setInt(&cfg.Logbook.WriteRetries, fc.Logbook.WriteRetries)
	setInt(&cfg.Logbook.CheckRetentionDays, fc.Logbook.CheckRetentionDays)

	setString(&cfg.Logging.Level, fc.Logging.Level)
	setString(&cfg.Logging.Format, fc.Logging.Format)
	setString(&cfg.Logging.File, fc.Logging.File)

	setBool(&cfg.Status.Enabled, fc.Status.Enabled)
	setString(&cfg.Status.Listen, fc.Status.Listen)

	setBool(&cfg.Reports.Enabled, fc.Reports.Enabled)
	setString(&cfg.Reports.Dir, fc.Reports.Dir)
	setString(&cfg.Reports.Schedule, fc.Reports.Schedule)
	setInt(&cfg.Reports.Days, fc.Reports.Days)

	var missing []string
	for _, h := range fc.Hotspots {
		strategy, err := models.ParseStrategy(h.LoginType)
		if err != nil {
			// keep the raw tag so Validate reports it with its index
			strategy = models.Strategy(h.LoginType)
		}
		username, m1 := expandSecret(h.Username)
		password, m2 := expandSecret(h.Password)
		missing = append(missing, m1...)
		missing = append(missing, m2...)

		cfg.Hotspots = append(cfg.Hotspots, models.HotspotProfile{
			SSID:        strings.TrimSpace(h.SSID),
			Strategy:    strategy,
			Username:    models.Secret(username),
			Password:    models.Secret(password),
			PortalURL:   strings.TrimSpace(h.PortalURL),
			Description: h.Description,
			Selectors:   h.Selectors,
		})
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: credentials reference unset environment variables: %s",
			models.ErrInvalidConfig, strings.Join(missing, ", "))
	}

	return &cfg, nil
}

// expandSecret resolves $VAR and ${VAR}; "$$" stands for a literal dollar sign.
func expandSecret(raw string) (string, []string) {
	if !strings.Contains(raw, "$") {
		return raw, nil
	}
	var missing []string
	out := os.Expand(raw, func(key string) string {
		if key == "$" {
			return "$"
		}
		v, ok := os.LookupEnv(key)
		if !ok {
			missing = append(missing, key)
		}
		return v
	})
	return out, missing
}

func loadDotEnv(configPath string) {
	candidates := []string{filepath.Join(filepath.Dir(configPath), ".env"), ".env"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			// Existing environment variables win over the file.
			_ = godotenv.Load(p)
		}
	}
}

func applyEnv(cfg *Config) {
	cfg.Logging.Level = getEnv("HOTSPOT_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("HOTSPOT_LOG_FORMAT", cfg.Logging.Format)
	cfg.Status.Listen = getEnv("HOTSPOT_STATUS_LISTEN", cfg.Status.Listen)
	cfg.Logbook.Path = getEnv("HOTSPOT_DB_PATH", cfg.Logbook.Path)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setSeconds(dst *time.Duration, v *int) {
	if v != nil {
		*dst = time.Duration(*v) * time.Second
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
