package logger

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddFlags registers the logging flags on a command.
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-level", string(InfoLevel), "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-json", false, "log as JSON")
	cmd.PersistentFlags().Bool("log-source", false, "include caller location in log lines")
}

// ConfigFromFlags reads the logging flags registered by AddFlags.
func ConfigFromFlags(cmd *cobra.Command) (*Config, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-json flag: %w", err)
	}
	source, err := cmd.Flags().GetBool("log-source")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-source flag: %w", err)
	}

	switch Level(level) {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	cfg := DefaultConfig()
	cfg.Level = Level(level)
	cfg.JSON = asJSON
	cfg.AddSource = source
	cfg.Output = cmd.ErrOrStderr()
	return cfg, nil
}
