package facts

import (
	"sort"
	"strings"

	"github.com/robert-at-pretension-io/notifygen/internal/extractor"
	"github.com/robert-at-pretension-io/notifygen/internal/model"
)

// Tables is the relational fact model fed to the policy engine and written
// by the facts command. Each slice is a relation (table) with flat rows.
type Tables struct {
	Files      []FileRow      `json:"files"`
	Containers []ContainerRow `json:"containers"`
	Records    []RecordRow    `json:"records"`
	Fields     []FieldRow     `json:"fields"`
	Derived    []DerivedRow   `json:"derived"`
	Edges      []EdgeRow      `json:"edges"`
	Usings     []UsingRow     `json:"usings"`
	Outputs    []OutputRow    `json:"outputs"`
}

type FileRow struct {
	Path      string `json:"path"`
	HasErrors bool   `json:"has_errors"`
	Parsed    bool   `json:"parsed"`
}

type ContainerRow struct {
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualified_name"`
	Keyword       string   `json:"keyword"`
	TypeParams    []string `json:"type_params"`
	Namespace     string   `json:"namespace"`
	Depth         int      `json:"depth"`
	IsPartial     bool     `json:"is_partial"`
	File          string   `json:"file"`
	Line          int      `json:"line"`
}

type RecordRow struct {
	Container    string `json:"container"`
	Name         string `json:"name"`
	FieldCount   int    `json:"field_count"`
	DerivedCount int    `json:"derived_count"`
	File         string `json:"file"`
	Line         int    `json:"line"`
}

type FieldRow struct {
	Container     string `json:"container"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Index         int    `json:"index"`
	DeclaredNames int    `json:"declared_names"`
	Documented    bool   `json:"documented"`
	File          string `json:"file"`
	Line          int    `json:"line"`
}

type DerivedRow struct {
	Container       string `json:"container"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Index           int    `json:"index"`
	DependencyCount int    `json:"dependency_count"`
	File            string `json:"file"`
	Line            int    `json:"line"`
}

// EdgeRow is one occurrence of a field read in a derived member. Occurrence
// counts from 1 per (field, derived) pair.
type EdgeRow struct {
	Container  string `json:"container"`
	Field      string `json:"field"`
	Derived    string `json:"derived"`
	Occurrence int    `json:"occurrence"`
	File       string `json:"file"`
	Line       int    `json:"line"`
}

type UsingRow struct {
	File   string `json:"file"`
	Name   string `json:"name"`
	Alias  string `json:"alias"`
	Static bool   `json:"static"`
	Global bool   `json:"global"`
	Line   int    `json:"line"`
}

type OutputRow struct {
	Container string `json:"container"`
	Source    string `json:"source"`
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	UpToDate  bool   `json:"up_to_date"`
}

// Unit is one record with its generation status.
type Unit struct {
	Candidate  extractor.Candidate
	Definition *model.RecordDefinition
	OutputPath string
	Exists     bool
	UpToDate   bool
}

// Source is one analysed file.
type Source struct {
	Facts extractor.FileFacts
	Units []Unit
}

// BuildTables flattens analysed files into relations.
func BuildTables(sources []Source) Tables {
	tables := emptyTables()

	sorted := append([]Source(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Facts.File < sorted[j].Facts.File })

	seenFiles := make(map[string]bool)
	for _, src := range sorted {
		f := src.Facts
		if !seenFiles[f.File] {
			seenFiles[f.File] = true
			tables.Files = append(tables.Files, FileRow{
				Path:      f.File,
				HasErrors: f.HasErrors,
				Parsed:    !f.Skipped,
			})
		}

		for _, u := range f.Usings {
			tables.Usings = append(tables.Usings, UsingRow{
				File:   f.File,
				Name:   u.Name,
				Alias:  u.Alias,
				Static: u.Static,
				Global: u.Global,
				Line:   u.Line,
			})
		}

		for _, c := range f.Containers {
			inner := c.Chain.Innermost()
			params := inner.TypeParams
			if params == nil {
				params = []string{}
			}
			tables.Containers = append(tables.Containers, ContainerRow{
				Name:          inner.Name,
				QualifiedName: c.Chain.QualifiedName(),
				Keyword:       inner.Keyword,
				TypeParams:    params,
				Namespace:     c.Chain.Namespace,
				Depth:         len(c.Chain.Containers) - 1,
				IsPartial:     inner.Partial,
				File:          f.File,
				Line:          c.Line,
			})
		}

		for _, u := range src.Units {
			addUnit(&tables, f.File, u)
		}
	}

	return tables
}

func addUnit(tables *Tables, file string, u Unit) {
	container := u.Candidate.Chain.QualifiedName()

	tables.Outputs = append(tables.Outputs, OutputRow{
		Container: container,
		Source:    file,
		Path:      u.OutputPath,
		Exists:    u.Exists,
		UpToDate:  u.UpToDate,
	})

	def := u.Definition
	if def == nil {
		return
	}
	tables.Records = append(tables.Records, RecordRow{
		Container:    container,
		Name:         def.Name,
		FieldCount:   len(def.Fields),
		DerivedCount: len(def.Derived),
		File:         file,
		Line:         def.Line,
	})

	for i, fld := range def.Fields {
		tables.Fields = append(tables.Fields, FieldRow{
			Container:     container,
			Name:          fld.Name,
			Type:          fld.Type,
			Index:         i,
			DeclaredNames: len(fld.Declared),
			Documented:    isDocumented(fld.Leading.Comments),
			File:          file,
			Line:          fld.Line,
		})
	}

	for i, d := range def.Derived {
		deps := def.DependsOn(i)
		tables.Derived = append(tables.Derived, DerivedRow{
			Container:       container,
			Name:            d.Name,
			Type:            d.Type,
			Index:           i,
			DependencyCount: len(deps),
			File:            file,
			Line:            d.Line,
		})
		occurrences := make(map[string]int)
		for _, field := range deps {
			occurrences[field]++
			tables.Edges = append(tables.Edges, EdgeRow{
				Container:  container,
				Field:      field,
				Derived:    d.Name,
				Occurrence: occurrences[field],
				File:       file,
				Line:       d.Line,
			})
		}
	}
}

func isDocumented(comments []string) bool {
	for _, c := range comments {
		if strings.HasPrefix(c, "///") || strings.HasPrefix(c, "/**") {
			return true
		}
	}
	return false
}
