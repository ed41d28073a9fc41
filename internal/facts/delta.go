package facts

import (
	"strconv"
	"strings"
)

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// IsEmpty reports whether nothing was added or removed.
func (d Delta) IsEmpty() bool {
	return d.Added.RowCount() == 0 && d.Removed.RowCount() == 0
}

// RowCount is the number of rows across all relations.
func (t Tables) RowCount() int {
	return len(t.Files) + len(t.Containers) + len(t.Records) + len(t.Fields) +
		len(t.Derived) + len(t.Edges) + len(t.Usings) + len(t.Outputs)
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Files = diffRows(from.Files, to.Files, func(r FileRow) string {
		return key(r.Path, boolKey(r.HasErrors), boolKey(r.Parsed))
	})
	out.Containers = diffRows(from.Containers, to.Containers, func(r ContainerRow) string {
		return key(r.QualifiedName, r.Keyword, boolKey(r.IsPartial), r.File, intKey(r.Line))
	})
	out.Records = diffRows(from.Records, to.Records, func(r RecordRow) string {
		return key(r.Container, r.Name, intKey(r.FieldCount), intKey(r.DerivedCount), r.File, intKey(r.Line))
	})
	out.Fields = diffRows(from.Fields, to.Fields, func(r FieldRow) string {
		return key(r.Container, r.Name, r.Type, intKey(r.Index), intKey(r.DeclaredNames), boolKey(r.Documented), r.File, intKey(r.Line))
	})
	out.Derived = diffRows(from.Derived, to.Derived, func(r DerivedRow) string {
		return key(r.Container, r.Name, r.Type, intKey(r.Index), intKey(r.DependencyCount), r.File, intKey(r.Line))
	})
	out.Edges = diffRows(from.Edges, to.Edges, func(r EdgeRow) string {
		return key(r.Container, r.Field, r.Derived, intKey(r.Occurrence), r.File)
	})
	out.Usings = diffRows(from.Usings, to.Usings, func(r UsingRow) string {
		return key(r.File, r.Name, r.Alias, boolKey(r.Static), boolKey(r.Global), intKey(r.Line))
	})
	out.Outputs = diffRows(from.Outputs, to.Outputs, func(r OutputRow) string {
		return key(r.Container, r.Source, r.Path, boolKey(r.Exists), boolKey(r.UpToDate))
	})

	return out
}

func emptyTables() Tables {
	return Tables{
		Files:      []FileRow{},
		Containers: []ContainerRow{},
		Records:    []RecordRow{},
		Fields:     []FieldRow{},
		Derived:    []DerivedRow{},
		Edges:      []EdgeRow{},
		Usings:     []UsingRow{},
		Outputs:    []OutputRow{},
	}
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func intKey(v int) string {
	return strconv.Itoa(v)
}
