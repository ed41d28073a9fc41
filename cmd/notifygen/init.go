package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/notifygen/internal/config"
	"github.com/robert-at-pretension-io/notifygen/internal/validator"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a notifygen.json configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath := config.FileNames[0]
			force, _ := cmd.Flags().GetBool("force")
			out := cmd.OutOrStdout()

			if _, err := os.Stat(configPath); err == nil && !force {
				fmt.Fprintf(out, "Config file %s already exists. Overwrite? [y/N]: ", configPath)
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.TrimSpace(response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			cfg := config.DefaultConfig()
			v, err := validator.NewConfigValidator()
			if err != nil {
				return fmt.Errorf("loading config schema: %w", err)
			}
			if err := v.Validate(cfg); err != nil {
				return fmt.Errorf("default config failed schema check: %w", err)
			}
			if err := cfg.Save(configPath); err != nil {
				return fmt.Errorf("creating config: %w", err)
			}

			fmt.Fprintf(out, "Created %s\n", configPath)
			fmt.Fprintln(out, "\nEdit this file to configure:")
			fmt.Fprintln(out, "  - Source include/exclude patterns")
			fmt.Fprintln(out, "  - Companion naming and output directory")
			fmt.Fprintln(out, "  - Lint rule severities")
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "overwrite an existing config without asking")
	return cmd
}
