package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/notifygen/internal/config"
	"github.com/robert-at-pretension-io/notifygen/internal/indexer"
	"github.com/robert-at-pretension-io/notifygen/internal/logger"
)

// NewRootCommand builds the notifygen command tree. Running it with only a
// path is the same as "notifygen generate <path>".
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "notifygen [path]",
		Short:         "Generate INotifyPropertyChanged wrappers for NotifyRecord structs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logCfg, err := logger.ConfigFromFlags(cmd)
			if err != nil {
				return err
			}
			log := logger.New(logCfg)
			cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
			return nil
		},
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (default: search notifygen.json / notifygen.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log every companion and its dependency map")
	logger.AddFlags(root)

	gen := newGenerateCommand()
	root.Flags().AddFlagSet(gen.Flags())
	root.RunE = gen.RunE

	root.AddCommand(
		gen,
		newCheckCommand(),
		newLintCommand(),
		newFactsCommand(),
		newInitCommand(),
		newWatchCommand(),
		newInspectCommand(),
	)
	return root
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// loadConfig honours --config, otherwise searches the default locations.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	if file != "" {
		cfg, err := config.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", file, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newIndexer(cmd *cobra.Command, path string) (*indexer.Indexer, error) {
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return nil, err
	}
	idx := indexer.NewWithConfig(cfg)
	idx.Log = logger.FromContext(cmd.Context())
	idx.Verbose, _ = cmd.Flags().GetBool("verbose")
	return idx, nil
}
