// =============================================================================
// notifygen - Main Entry Point
// =============================================================================
//
// notifygen turns a nested "struct NotifyRecord" inside a partial C# class
// into an INotifyPropertyChanged wrapper written next to the source.
//
// THE PIPELINE:
//   1. Tree-sitter parses C# into a syntax tree (tree-sitter-c-sharp)
//   2. Extractor finds records, their enclosing types and the file usings
//   3. Model resolves which fields every derived member reads
//   4. Generator synthesizes members and prints the companion file
//   5. Indexer writes companions, caches results and records facts
//   6. CUE validates facts, OPA evaluates lint rules over them
//
// WHEN A COMPANION LOOKS WRONG:
//   Start at the beginning of the pipeline, not the end!
//   Run cstree on the source first, then check the fact tables.
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitError ends the process with a status code after output was printed.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}
