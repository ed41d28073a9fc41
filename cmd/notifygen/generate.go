package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/notifygen/internal/indexer"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Write a companion file for every NotifyRecord under path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			check, _ := cmd.Flags().GetBool("check")
			return runGenerate(cmd, pathArg(args), check)
		},
	}
	addGenerateFlags(cmd)
	cmd.Flags().Bool("check", false, "report stale companions without writing (exit 1 if any)")
	return cmd
}

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Fail when a companion is missing or out of date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, pathArg(args), true)
		},
	}
	addGenerateFlags(cmd)
	return cmd
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("fix-partial", false, "insert missing partial modifiers on enclosing types")
	cmd.Flags().Bool("json", false, "print the run result as JSON")
	cmd.Flags().Bool("no-cache", false, "ignore the generation cache")
	cmd.Flags().Bool("timing", false, "write per-file timing events as JSONL")
	cmd.Flags().String("timing-path", "", "timing JSONL destination (default: <path>/timing.jsonl)")
}

func runGenerate(cmd *cobra.Command, path string, check bool) error {
	idx, err := newIndexer(cmd, path)
	if err != nil {
		return err
	}
	idx.Check = check
	idx.FixPartial, _ = cmd.Flags().GetBool("fix-partial")
	idx.NoCache, _ = cmd.Flags().GetBool("no-cache")
	idx.Timing, _ = cmd.Flags().GetBool("timing")
	idx.TimingPath, _ = cmd.Flags().GetString("timing-path")

	res, err := idx.Run(cmd.Context(), path)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		printRun(cmd.OutOrStdout(), res, check)
	}

	switch {
	case res.Summary.Failed > 0:
		return &exitError{code: 1, msg: fmt.Sprintf("%d companion(s) failed", res.Summary.Failed)}
	case check && res.Summary.Stale > 0:
		return &exitError{code: 1, msg: fmt.Sprintf("%d companion(s) out of date", res.Summary.Stale)}
	}
	return nil
}

func printRun(w io.Writer, res *indexer.Result, check bool) {
	for _, f := range res.Files {
		for _, c := range f.Fixed {
			fmt.Fprintf(w, "%s: added partial to %s\n", f.Path, c)
		}
		for _, u := range f.Units {
			if u.Status == indexer.StatusUnchanged {
				continue
			}
			fmt.Fprintf(w, "%-9s %s (%s)\n", u.Status, u.Output, u.Container)
		}
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "error     %s: %s\n", e.File, e.Message)
	}

	s := res.Summary
	if check {
		fmt.Fprintf(w, "\n%d file(s), %d record(s): %d up to date, %d stale, %d failed\n",
			s.Files, s.Records, s.Unchanged, s.Stale, s.Failed)
		return
	}
	fmt.Fprintf(w, "\n%d file(s), %d record(s): %d written, %d unchanged, %d failed\n",
		s.Files, s.Records, s.Written, s.Unchanged, s.Failed)
}
