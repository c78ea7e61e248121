package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Overrides holds command-line values that take precedence over the file
type Overrides struct {
	Path      string
	Interval  time.Duration
	Threshold int
	Retries   int
	Debug     bool
	Visible   bool
	DBPath    string
}

// BindFlags registers the shared configuration flags on fs
func BindFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{}
	fs.StringVarP(&o.Path, "config", "c", DefaultPath, "Configuration file path")
	fs.DurationVar(&o.Interval, "interval", 0, "Check interval (overrides monitor.check_interval)")
	fs.IntVar(&o.Threshold, "threshold", 0, "Consecutive failures before recovery")
	fs.IntVar(&o.Retries, "retries", 0, "Login attempts per disconnection episode")
	fs.BoolVar(&o.Debug, "debug", false, "Debug logging, visible browser and failure screenshots")
	fs.BoolVar(&o.Visible, "visible", false, "Show the browser window during login attempts")
	fs.StringVar(&o.DBPath, "db", "", "Logbook database path")
	return o
}

// Apply copies every flag that was set explicitly into cfg and revalidates.
func (o *Overrides) Apply(fs *pflag.FlagSet, cfg *Config) error {
	if fs.Changed("interval") {
		cfg.Monitor.CheckInterval = o.Interval
	}
	if fs.Changed("threshold") {
		cfg.Monitor.FailureThreshold = o.Threshold
	}
	if fs.Changed("retries") {
		cfg.Monitor.MaxRetries = o.Retries
	}
	if fs.Changed("debug") && o.Debug {
		cfg.Monitor.Debug = true
		cfg.Monitor.Headless = false
		cfg.Logging.Level = "debug"
	}
	if fs.Changed("visible") && o.Visible {
		cfg.Monitor.Headless = false
	}
	if fs.Changed("db") {
		cfg.Logbook.Path = o.DBPath
	}
	return cfg.Validate()
}
