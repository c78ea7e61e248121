package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotspot-monitor/internal/config"
)

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	if err := config.WriteExample(overrides.Path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", overrides.Path)
	fmt.Fprintln(cmd.OutOrStdout(), "Set HOTSPOT_USERNAME and HOTSPOT_PASSWORD in .env or the environment before running.")
	return nil
}

func runConfigBrowser(cmd *cobra.Command, args []string) error {
	headless := args[0] == "headless"
	if err := config.SetHeadless(overrides.Path, headless); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Browser mode set to %s in %s\n", args[0], overrides.Path)
	return nil
}
