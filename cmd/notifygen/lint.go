package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/notifygen/internal/policy"
)

func newLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Evaluate lint rules over the records under path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			idx, err := newIndexer(cmd, path)
			if err != nil {
				return err
			}
			idx.PolicyDirs, _ = cmd.Flags().GetStringSlice("policy-dir")

			result, err := idx.Lint(cmd.Context(), path)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
			} else {
				printViolations(cmd.OutOrStdout(), result)
			}

			if result.Summary.Errors > 0 {
				return &exitError{code: 1, msg: fmt.Sprintf("%d error(s)", result.Summary.Errors)}
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print violations as JSON")
	cmd.Flags().StringSlice("policy-dir", nil, "extra directory of .rego rules (repeatable)")
	return cmd
}

func printViolations(w io.Writer, result *policy.Result) {
	for _, v := range result.Violations {
		fmt.Fprintf(w, "%s:%d: %s [%s] %s\n", v.File, v.Line, v.Severity, v.Rule, v.Message)
	}
	s := result.Summary
	fmt.Fprintf(w, "\n%d violation(s): %d error(s), %d warning(s), %d info\n", s.TotalViolations, s.Errors, s.Warnings, s.Info)
}
