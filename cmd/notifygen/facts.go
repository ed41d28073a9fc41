package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/notifygen/internal/facts"
)

func newFactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts [path]",
		Short: "Print the fact tables extracted from path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			output, _ := cmd.Flags().GetString("output")
			deltaFrom, _ := cmd.Flags().GetString("delta-from")
			deltaOut, _ := cmd.Flags().GetString("delta-out")
			sinceLast, _ := cmd.Flags().GetBool("since-last")
			only, _ := cmd.Flags().GetStringSlice("files")

			if (deltaFrom != "" || sinceLast) && deltaOut == "" {
				return errors.New("--delta-out is required with --delta-from or --since-last")
			}

			idx, err := newIndexer(cmd, path)
			if err != nil {
				return err
			}
			_, tables, err := idx.Facts(cmd.Context(), path)
			if err != nil {
				return err
			}

			var filter map[string]bool
			if len(only) > 0 {
				filter = make(map[string]bool, len(only))
				for _, f := range only {
					abs, err := filepath.Abs(f)
					if err != nil {
						return fmt.Errorf("resolving %s: %w", f, err)
					}
					filter[abs] = true
					filter[f] = true
				}
				tables = facts.FilterTablesByFiles(tables, filter)
			}

			if output != "" {
				if err := writeJSON(output, tables); err != nil {
					return fmt.Errorf("writing facts: %w", err)
				}
			} else {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(tables); err != nil {
					return fmt.Errorf("encoding facts: %w", err)
				}
			}

			if deltaOut != "" {
				var prev facts.Tables
				switch {
				case deltaFrom != "":
					if prev, err = readTables(deltaFrom); err != nil {
						return fmt.Errorf("reading delta-from: %w", err)
					}
				default:
					if prev, _, err = idx.LoadSnapshot(path); err != nil {
						return err
					}
				}
				if filter != nil {
					prev = facts.FilterTablesByFiles(prev, filter)
				}
				if err := writeJSON(deltaOut, facts.ComputeDelta(prev, tables)); err != nil {
					return fmt.Errorf("writing delta: %w", err)
				}
			}

			if filter == nil {
				if err := idx.SaveSnapshot(path, tables); err != nil {
					idx.Log.Warn("snapshot not saved", "error", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "write facts JSON to file (default: stdout)")
	cmd.Flags().String("delta-from", "", "previous facts JSON to compute a delta from")
	cmd.Flags().String("delta-out", "", "write delta JSON to file")
	cmd.Flags().Bool("since-last", false, "compute the delta against the previous facts run")
	cmd.Flags().StringSlice("files", nil, "only report rows for these files")
	return cmd
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
