package main

import (
	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/notifygen/internal/indexer"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Regenerate companions whenever a source changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			idx, err := newIndexer(cmd, path)
			if err != nil {
				return err
			}

			res, err := idx.Run(cmd.Context(), path)
			if err != nil {
				return err
			}
			printRun(cmd.OutOrStdout(), res, false)

			return idx.Watch(cmd.Context(), path, func(res *indexer.Result, err error) {
				if err != nil {
					idx.Log.Error("regeneration failed", "error", err)
					return
				}
				printRun(cmd.OutOrStdout(), res, false)
			})
		},
	}
}
