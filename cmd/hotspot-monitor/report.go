package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hotspot-monitor/internal/report"
)

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	days := a.cfg.Reports.Days
	if cmd.Flags().Changed("days") {
		days = reportDays
	}
	dir := a.cfg.Reports.Dir
	if reportDir != "" {
		dir = reportDir
	}

	generator := report.NewGenerator(a.book, a.cfg.Logbook.Path, a.log)
	out, err := generator.GenerateReport(cmd.Context(), dir, days)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	days := a.cfg.Reports.Days
	if cmd.Flags().Changed("days") {
		days = reportDays
	}
	path := exportPath
	if path == "" {
		path = fmt.Sprintf("internet_connectivity_export_%s.txt", time.Now().Format("20060102_150405"))
	}

	generator := report.NewGenerator(a.book, a.cfg.Logbook.Path, a.log)
	n, err := generator.Export(cmd.Context(), path, days)
	if err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events to %s\n", n, path)
	return nil
}
