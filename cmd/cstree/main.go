// cstree prints the tree-sitter C# syntax tree of a file with field names,
// the same view the extractor lowers from.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		named bool
		kind  string
	)
	cmd := &cobra.Command{
		Use:          "cstree [--named] [--kind struct_declaration] <file.cs>",
		Short:        "Dump the tree-sitter C# tree of a file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			parser := sitter.NewParser()
			defer parser.Close()
			parser.SetLanguage(csharp.GetLanguage())

			tree, err := parser.ParseCtx(cmd.Context(), nil, source)
			if err != nil {
				return err
			}
			defer tree.Close()

			out := cmd.OutOrStdout()
			root := tree.RootNode()
			if kind == "" {
				dump(out, root, "", 0, source, named)
				return nil
			}

			var find func(n *sitter.Node)
			find = func(n *sitter.Node) {
				if n.Type() == kind {
					dump(out, n, "", 0, source, named)
					return
				}
				for i := 0; i < int(n.ChildCount()); i++ {
					find(n.Child(i))
				}
			}
			find(root)
			return nil
		},
	}
	cmd.Flags().BoolVar(&named, "named", false, "only print named nodes")
	cmd.Flags().StringVar(&kind, "kind", "", "only print subtrees rooted at this node kind")
	return cmd
}

func dump(w io.Writer, n *sitter.Node, field string, depth int, source []byte, namedOnly bool) {
	if namedOnly && !n.IsNamed() {
		return
	}
	label := n.Type()
	if field != "" {
		label = field + ": " + label
	}
	if n.IsMissing() {
		label += " (MISSING)"
	}
	line := fmt.Sprintf("%s%s [%d:%d]", strings.Repeat("  ", depth), label, n.StartPoint().Row+1, n.StartPoint().Column)
	if n.ChildCount() == 0 {
		line += fmt.Sprintf(" %q", n.Content(source))
	}
	fmt.Fprintln(w, line)

	for i := 0; i < int(n.ChildCount()); i++ {
		dump(w, n.Child(i), n.FieldNameForChild(i), depth+1, source, namedOnly)
	}
}
