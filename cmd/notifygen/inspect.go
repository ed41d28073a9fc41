package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/notifygen/internal/indexer"
)

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Show which members are notified when each field changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			idx, err := newIndexer(cmd, path)
			if err != nil {
				return err
			}
			reports, err := idx.Inspect(cmd.Context(), path)
			if err != nil {
				return err
			}
			if reports == nil {
				reports = []indexer.RecordReport{}
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			for _, rep := range reports {
				fmt.Fprint(cmd.OutOrStdout(), indexer.FormatRecordReport(rep))
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print reports as JSON")
	return cmd
}
