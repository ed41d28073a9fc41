package indexer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/robert-at-pretension-io/notifygen/internal/model"
)

// dependentsGraph maps a member name to the derived members that read it.
type dependentsGraph map[string]map[string]bool

// buildDependentsGraph links fields to the derived members reading them and
// derived members to the derived members reading those in turn.
func buildDependentsGraph(def *model.RecordDefinition) dependentsGraph {
	graph := make(dependentsGraph)
	add := func(from, to string) {
		if from == to {
			return
		}
		if graph[from] == nil {
			graph[from] = make(map[string]bool)
		}
		graph[from][to] = true
	}

	derivedNames := make(map[string]bool, len(def.Derived))
	for _, d := range def.Derived {
		derivedNames[d.Name] = true
	}
	for i, d := range def.Derived {
		for _, f := range def.DependsOn(i) {
			add(f, d.Name)
		}
		for _, name := range model.References(d.Body) {
			if _, isField := def.FieldIndex(name); derivedNames[name] && !isField {
				add(name, d.Name)
			}
		}
	}
	return graph
}

// ImpactReport lists the members reached from Root, nearest first.
type ImpactReport struct {
	Root   string     `json:"root"`
	Levels [][]string `json:"levels"`
}

// Notified is the set of members raised when Root changes.
func (r ImpactReport) Notified() []string {
	if len(r.Levels) == 0 {
		return nil
	}
	return r.Levels[0]
}

// Unnotified are transitive readers reached only through another derived
// member.
func (r ImpactReport) Unnotified() []string {
	var out []string
	for _, level := range r.Levels[min(1, len(r.Levels)):] {
		out = append(out, level...)
	}
	return out
}

func computeImpact(root string, dependents dependentsGraph) ImpactReport {
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var levels [][]string

	for len(frontier) > 0 {
		var next []string
		for _, f := range frontier {
			for dep := range dependents[f] {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				next = append(next, dep)
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Strings(next)
		levels = append(levels, next)
		frontier = next
	}

	return ImpactReport{Root: root, Levels: levels}
}

func formatImpactReport(report ImpactReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s\n", report.Root))
	for i, level := range report.Levels {
		b.WriteString(fmt.Sprintf("    level %d (%d): %s\n", i+1, len(level), strings.Join(level, ", ")))
	}
	return b.String()
}

// formatDependencyReport renders the impact of every field of a record.
func formatDependencyReport(def *model.RecordDefinition) string {
	graph := buildDependentsGraph(def)
	var b strings.Builder
	for _, f := range def.Fields {
		b.WriteString(formatImpactReport(computeImpact(f.Name, graph)))
	}
	return b.String()
}

// RecordReport describes how changes to each field propagate.
type RecordReport struct {
	Container string         `json:"container"`
	File      string         `json:"file"`
	Fields    []ImpactReport `json:"fields"`
	Derived   []string       `json:"derived"`
}

// Inspect analyses rootPath and reports field impact for every record.
func (idx *Indexer) Inspect(ctx context.Context, rootPath string) ([]RecordReport, error) {
	res, err := idx.Analyze(ctx, rootPath)
	if err != nil {
		return nil, err
	}
	var reports []RecordReport
	for _, src := range res.Sources() {
		for _, u := range src.Units {
			if u.Definition == nil {
				continue
			}
			graph := buildDependentsGraph(u.Definition)
			rep := RecordReport{
				Container: u.Candidate.Chain.QualifiedName(),
				File:      src.Facts.File,
				Fields:    []ImpactReport{},
				Derived:   []string{},
			}
			for _, f := range u.Definition.Fields {
				rep.Fields = append(rep.Fields, computeImpact(f.Name, graph))
			}
			for _, d := range u.Definition.Derived {
				rep.Derived = append(rep.Derived, d.Name)
			}
			reports = append(reports, rep)
		}
	}
	return reports, nil
}

// FormatRecordReport renders a report for terminal output.
func FormatRecordReport(rep RecordReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (%s)\n", rep.Container, rep.File))
	for _, f := range rep.Fields {
		b.WriteString(formatImpactReport(f))
		if extra := f.Unnotified(); len(extra) > 0 {
			b.WriteString(fmt.Sprintf("    not notified: %s\n", strings.Join(extra, ", ")))
		}
	}
	return b.String()
}
