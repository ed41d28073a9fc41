// Package model holds the record definition the generator works from: the
// plain data fields of a NotifyRecord, its computed members, and the
// field-to-member dependency graph.
package model

import (
	"errors"
	"fmt"

	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

// ErrNotRecord is returned when Build is given something other than a type
// declaration.
var ErrNotRecord = errors.New("not a record declaration")

// SimpleProperty is a plain data field of the record.
type SimpleProperty struct {
	Name     string
	Type     string
	Leading  syntax.Trivia
	Trailing syntax.Trivia
	// Declared lists every variable of the declaration. Only the first one
	// becomes a property.
	Declared []string
	Line     int
}

// DependentProperty is a computed member whose value is derived from the
// record's fields.
type DependentProperty struct {
	Name     string
	Type     string
	Leading  syntax.Trivia
	Trailing syntax.Trivia
	Body     []*syntax.Node
	Line     int
}

// RecordDefinition is the analysed contents of one record declaration.
type RecordDefinition struct {
	Name    string
	Fields  []SimpleProperty
	Derived []DependentProperty
	Graph   Graph
	Line    int
}

// Build reads the members of a record declaration and resolves which
// computed members read which fields.
func Build(record *syntax.Node) (*RecordDefinition, error) {
	decl, ok := syntax.AsTypeDecl(record)
	if !ok {
		kind := syntax.Kind("<nil>")
		if record != nil {
			kind = record.Kind
		}
		return nil, fmt.Errorf("build record from %s: %w", kind, ErrNotRecord)
	}
	def := &RecordDefinition{Name: decl.Name(), Line: record.Line}
	for _, member := range decl.Members() {
		if f, ok := syntax.AsField(member); ok {
			if prop, ok := simpleProperty(f); ok {
				def.Fields = append(def.Fields, prop)
			}
			continue
		}
		if p, ok := syntax.AsProperty(member); ok {
			if p.HasModifier("static") {
				continue
			}
			def.Derived = append(def.Derived, DependentProperty{
				Name:     p.Name(),
				Type:     p.Type(),
				Leading:  member.Leading,
				Trailing: member.Trailing,
				Body:     p.Body(),
				Line:     member.Line,
			})
		}
	}
	def.Graph = Resolve(def.Fields, def.Derived)
	return def, nil
}

func simpleProperty(f syntax.FieldDecl) (SimpleProperty, bool) {
	if f.HasModifier("static") || f.HasModifier("const") {
		return SimpleProperty{}, false
	}
	names := f.Names()
	if len(names) == 0 {
		return SimpleProperty{}, false
	}
	return SimpleProperty{
		Name:     names[0],
		Type:     f.Type(),
		Leading:  f.Leading,
		Trailing: f.Trailing,
		Declared: names,
		Line:     f.Line,
	}, true
}

// FieldIndex returns the position of the named field.
func (r *RecordDefinition) FieldIndex(name string) (int, bool) {
	for i, f := range r.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// DependsOn returns the field names derived member d reads, one entry per
// occurrence in its body.
func (r *RecordDefinition) DependsOn(d int) []string {
	idx := r.Graph.DependsOn(d)
	names := make([]string, len(idx))
	for i, f := range idx {
		names[i] = r.Fields[f].Name
	}
	return names
}

// Dependents returns the names of the derived members that read field f,
// in discovery order.
func (r *RecordDefinition) Dependents(f int) []string {
	idx := r.Graph.Dependents(f)
	names := make([]string, len(idx))
	for i, d := range idx {
		names[i] = r.Derived[d].Name
	}
	return names
}
