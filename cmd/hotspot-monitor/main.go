package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hotspot-monitor/internal/config"
)

var appVersion = "1.2.0"

// errNotConnected makes `once` exit 1 without printing an error
var errNotConnected = errors.New("not connected")

var overrides *config.Overrides

var rootCmd = &cobra.Command{
	Use:           "hotspot-monitor",
	Short:         "hotspot-monitor – captive portal logout recovery",
	Long:          "Watches internet connectivity and logs back in to captive-portal WiFi hotspots when the session is dropped.",
	RunE:          runMonitor,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Monitor continuously until interrupted",
	RunE:  runMonitor,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single check cycle",
	Long:  "Run one check cycle, recovering if needed. Exits 0 when connected and 1 otherwise.",
	RunE:  runOnce,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the monitor status",
	Long:  "Query the running monitor's status API, falling back to a snapshot read from the logbook.",
	RunE:  runStatus,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a connectivity report with charts",
	RunE:  runReport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every recorded event to a text file",
	RunE:  runExport,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an example configuration file",
	RunE:  runConfigGenerate,
}

var configBrowserCmd = &cobra.Command{
	Use:       "browser visible|headless",
	Short:     "Show or hide the browser window during login attempts",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"visible", "headless"},
	RunE:      runConfigBrowser,
}

var (
	reportDays int
	reportDir  string
	exportPath string
)

func init() {
	rootCmd.Version = appVersion
	overrides = config.BindFlags(rootCmd.PersistentFlags())

	reportCmd.Flags().IntVar(&reportDays, "days", 0, "Days to cover (default: reports.days)")
	reportCmd.Flags().StringVar(&reportDir, "dir", "", "Output directory (default: reports.dir)")
	exportCmd.Flags().IntVar(&reportDays, "days", 0, "Days of summaries to include (default: reports.days)")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output file (default: timestamped file in the working directory)")

	configCmd.AddCommand(configGenerateCmd, configBrowserCmd)
	rootCmd.AddCommand(runCmd, onceCmd, statusCmd, reportCmd, exportCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errNotConnected) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
