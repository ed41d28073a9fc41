// Package generator turns a NotifyRecord declaration into the companion
// source unit that wraps it with change-notifying properties.
//
// The pipeline is Build (internal/model), Synthesize, Reconstruct, and
// NormalizeImports; Render prints the resulting Unit.
package generator

import (
	"errors"
	"fmt"

	"github.com/robert-at-pretension-io/notifygen/internal/model"
	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

// ErrNotApplicable is returned for inputs that cannot produce a companion:
// no record, or a record outside any container.
var ErrNotApplicable = errors.New("record is not applicable for generation")

// SetterStyle selects how wrapper setters are written.
type SetterStyle string

const (
	// SetterInline compares, assigns and notifies in the setter body.
	SetterInline SetterStyle = "inline"
	// SetterSetProperty delegates to a SetProperty(ref field, value, token)
	// helper on the container and notifies dependents when it reports a
	// change.
	SetterSetProperty SetterStyle = "set-property"
)

// Options control the generated text. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	BackingField     string
	NotifyMethod     string
	SetMethod        string
	SupportNamespace string
	TokenType        string
	TokenSuffix      string
	SetterStyle      SetterStyle
	// KeepDuplicateNotifications emits one notification per occurrence of a
	// field inside a derived body instead of one per derived member.
	KeepDuplicateNotifications bool
	Indent                     string
	Newline                    string
}

// DefaultOptions returns the standard output conventions.
func DefaultOptions() Options {
	return Options{
		BackingField:     "_value",
		NotifyMethod:     "OnPropertyChanged",
		SetMethod:        "SetProperty",
		SupportNamespace: "System.ComponentModel",
		TokenType:        "PropertyChangedEventArgs",
		TokenSuffix:      "Property",
		SetterStyle:      SetterInline,
		Indent:           "    ",
		Newline:          "\n",
	}
}

// Input is everything the generator needs about one record.
type Input struct {
	Record *syntax.Node
	Chain  model.Chain
	Usings []syntax.Using
}

// Result is the generated companion.
type Result struct {
	Definition *model.RecordDefinition
	Unit       *Unit
	Source     []byte
}

// Generate runs the whole pipeline for one record.
func Generate(in Input, opts Options) (*Result, error) {
	if in.Record == nil || len(in.Chain.Containers) == 0 {
		return nil, ErrNotApplicable
	}

	def, err := model.Build(in.Record)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Chain.QualifiedName(), err)
	}

	members, err := Synthesize(def, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Chain.QualifiedName(), err)
	}

	root, err := Reconstruct(members, in.Chain)
	if err != nil {
		return nil, err
	}

	unit := &Unit{
		Usings: NormalizeImports(in.Usings, opts.SupportNamespace),
		Root:   root,
	}
	return &Result{
		Definition: def,
		Unit:       unit,
		Source:     Render(unit, opts),
	}, nil
}
