package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hotspot-monitor/internal/config"
	"hotspot-monitor/internal/models"
)

const statusTimeout = 3 * time.Second

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, cfgErr := loadConfig(cmd)
	if cfgErr != nil {
		// Still show what the logbook knows; the default paths are the best guess
		def := config.Default()
		cfg = &def
		if overrides.DBPath != "" {
			cfg.Logbook.Path = overrides.DBPath
		}
	}

	if cfg.Status.Enabled {
		status, err := fetchStatus(cmd.Context(), cfg.Status.Listen)
		if err == nil {
			printStatus(out, status)
			printConfigHealth(out, cfg, cfgErr)
			return nil
		}
		fmt.Fprintf(out, "Monitor not reachable at %s (%v), reading logbook\n\n", cfg.Status.Listen, err)
	}

	if _, err := os.Stat(cfg.Logbook.Path); err != nil {
		fmt.Fprintf(out, "No logbook at %s\n", cfg.Logbook.Path)
		printConfigHealth(out, cfg, cfgErr)
		return nil
	}

	// Keep the logbook snapshot off the log file
	cfg.Logging.File = ""
	cfg.Logging.Level = "warn"
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	events, err := a.book.QueryEvents(ctx, time.Time{}, 1)
	if err != nil {
		return err
	}
	today, err := a.book.Summarize(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Logbook snapshot")
	if len(events) > 0 {
		fmt.Fprintf(out, "  Last event: %s\n", events[0])
	} else {
		fmt.Fprintln(out, "  Last event: none recorded")
	}
	printSummary(out, today)
	printConfigHealth(out, cfg, cfgErr)
	return nil
}

func fetchStatus(ctx context.Context, listen string) (models.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	var status models.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+listen+"/api/status", nil)
	if err != nil {
		return status, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return status, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("status API returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}

func printStatus(w io.Writer, s models.Status) {
	fmt.Fprintln(w, "Monitor status")
	fmt.Fprintf(w, "  Mode:                 %s\n", s.Mode)
	fmt.Fprintf(w, "  Connectivity:         %s\n", s.Connectivity)
	fmt.Fprintf(w, "  Consecutive failures: %d\n", s.ConsecutiveFailures)
	if s.DownSince != nil {
		fmt.Fprintf(w, "  Down for:             %s\n", models.HumanDuration(time.Since(*s.DownSince)))
	}
	if s.LastCheckAt != nil {
		fmt.Fprintf(w, "  Last check:           %s\n", s.LastCheckAt.Local().Format(time.DateTime))
	}
	if s.LastEventAt != nil {
		fmt.Fprintf(w, "  Last event:           %s\n", s.LastEventAt.Local().Format(time.DateTime))
	}
	if s.Episode != nil {
		fmt.Fprintf(w, "  Recovery episode:     %s (%d attempts so far)\n", s.Episode.ID, s.Episode.Attempts)
	} else if s.LastEpisode != nil {
		fmt.Fprintf(w, "  Last episode:         %s, %s after %d attempts\n",
			s.LastEpisode.ID, s.LastEpisode.Outcome, s.LastEpisode.Attempts)
	}
	storage := "ok"
	if !s.StorageHealthy {
		storage = "FAILING"
	}
	fmt.Fprintf(w, "  Logbook writes:       %s\n", storage)
}

func printSummary(w io.Writer, s models.DailySummary) {
	fmt.Fprintf(w, "  Today (%s):\n", s.Date)
	fmt.Fprintf(w, "    Checks:        %d (%.1f%% successful)\n", s.TotalChecks, s.SuccessRate)
	fmt.Fprintf(w, "    Disconnects:   %d\n", s.DisconnectCount)
	fmt.Fprintf(w, "    Downtime:      %s\n", models.HumanDuration(s.TotalDowntime))
	fmt.Fprintf(w, "    Logins:        %d/%d successful\n", s.LoginSuccesses, s.LoginAttempts)
}

func printConfigHealth(w io.Writer, cfg *config.Config, err error) {
	fmt.Fprintln(w)
	if err != nil {
		fmt.Fprintf(w, "Configuration: INVALID\n  %v\n", err)
		return
	}
	mode := "headless"
	if !cfg.Monitor.Headless {
		mode = "visible"
	}
	fmt.Fprintf(w, "Configuration: OK (%s, %d hotspots, browser %s)\n", cfg.Path, len(cfg.Hotspots), mode)
}
