package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Example renders a complete configuration document with one sample hotspot
func Example() ([]byte, error) {
	def := Default()
	num := func(v int) *int { return &v }
	boolp := func(v bool) *bool { return &v }

	fc := fileConfig{
		Monitor: monitorSection{
			CheckInterval:    num(int(def.Monitor.CheckInterval.Seconds())),
			FailureThreshold: num(def.Monitor.FailureThreshold),
			AttemptTimeout:   num(int(def.Monitor.AttemptTimeout.Seconds())),
			MaxRetries:       num(def.Monitor.MaxRetries),
			RetryBackoff:     num(int(def.Monitor.RetryBackoff.Seconds())),
			HeadlessBrowser:  boolp(def.Monitor.Headless),
			DebugMode:        boolp(false),
			ProbeTimeout:     num(int(def.Monitor.ProbeTimeout.Seconds())),
			ProbeTargets:     def.Monitor.ProbeTargets,
		},
		Browser: browserSection{
			StepTimeout:   num(int(def.Browser.StepTimeout.Seconds())),
			SettleDelay:   num(int(def.Browser.SettleDelay.Seconds())),
			ScreenshotDir: "screenshots",
		},
		Logbook: logbookSection{
			Path:               def.Logbook.Path,
			RecordsFile:        def.Logbook.RecordsFile,
			WriteRetries:       num(def.Logbook.WriteRetries),
			CheckRetentionDays: num(def.Logbook.CheckRetentionDays),
		},
		Logging: loggingSection{
			Level:  def.Logging.Level,
			Format: def.Logging.Format,
			File:   def.Logging.File,
		},
		Status: statusSection{
			Enabled: boolp(def.Status.Enabled),
			Listen:  def.Status.Listen,
		},
		Reports: reportsSection{
			Enabled:  boolp(def.Reports.Enabled),
			Dir:      def.Reports.Dir,
			Schedule: def.Reports.Schedule,
			Days:     num(def.Reports.Days),
		},
		Hotspots: []hotspotSection{
			{
				SSID:        "EE WiFi",
				LoginType:   "multi-step-business",
				Username:    "${HOTSPOT_USERNAME}",
				Password:    "${HOTSPOT_PASSWORD}",
				PortalURL:   "http://www.google.com",
				Description: "Business broadband hotspot behind the access point",
			},
		},
	}

	data, err := toml.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("marshal example config: %w", err)
	}
	return data, nil
}

// WriteExample writes the example document to path unless it already exists
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := Example()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// SetHeadless rewrites monitor.headless_browser in the document at path,
// leaving every other key as it was.
func SetHeadless(path string, headless bool) error {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	tree.Set("monitor.headless_browser", headless)

	out, err := tree.ToTomlString()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out), 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
