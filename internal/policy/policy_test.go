package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/notifygen/internal/facts"
)

func sampleTables() facts.Tables {
	return facts.Tables{
		Files: []facts.FileRow{
			{Path: "Sample.cs", Parsed: true},
			{Path: "Broken.cs", HasErrors: true, Parsed: true},
		},
		Containers: []facts.ContainerRow{
			{Name: "Outer", QualifiedName: "App.Outer", Keyword: "class", Namespace: "App", File: "Sample.cs", Line: 3},
			{Name: "Sample", QualifiedName: "App.Outer.Sample", Keyword: "class", Namespace: "App", Depth: 1, IsPartial: true, File: "Sample.cs", Line: 5},
			{Name: "Unrelated", QualifiedName: "App.OuterSibling", Keyword: "class", Namespace: "App", File: "Sample.cs", Line: 30},
		},
		Records: []facts.RecordRow{
			{Container: "App.Outer.Sample", Name: "NotifyRecord", FieldCount: 2, DerivedCount: 2, File: "Sample.cs", Line: 7},
		},
		Fields: []facts.FieldRow{
			{Container: "App.Outer.Sample", Name: "X", Type: "int", DeclaredNames: 2, File: "Sample.cs", Line: 9},
			{Container: "App.Outer.Sample", Name: "Y", Type: "int", Index: 1, DeclaredNames: 1, File: "Sample.cs", Line: 10},
		},
		Derived: []facts.DerivedRow{
			{Container: "App.Outer.Sample", Name: "Square", Type: "int", DependencyCount: 2, File: "Sample.cs", Line: 11},
			{Container: "App.Outer.Sample", Name: "Answer", Type: "int", Index: 1, File: "Sample.cs", Line: 12},
		},
		Edges: []facts.EdgeRow{
			{Container: "App.Outer.Sample", Field: "X", Derived: "Square", Occurrence: 1, File: "Sample.cs", Line: 11},
			{Container: "App.Outer.Sample", Field: "X", Derived: "Square", Occurrence: 2, File: "Sample.cs", Line: 11},
		},
		Outputs: []facts.OutputRow{
			{Container: "App.Outer.Sample", Source: "Sample.cs", Path: "Sample.ValueChanged.cs", Exists: true},
		},
	}
}

func rulesOf(vs []Violation) map[string]int {
	out := make(map[string]int)
	for _, v := range vs {
		out[v.Rule]++
	}
	return out
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	engine, err := New(ctx)
	require.NoError(t, err)

	t.Run("Should report every built-in rule", func(t *testing.T) {
		vs, err := engine.Evaluate(ctx, sampleTables())
		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			"notify-record":         1,
			"container-not-partial": 1,
			"multi-variable-field":  1,
			"duplicate-dependency":  1,
			"unused-derived":        1,
			"stale-output":          1,
			"parse-error":           1,
		}, rulesOf(vs))
	})

	t.Run("Should only flag enclosing containers", func(t *testing.T) {
		vs, err := engine.Evaluate(ctx, sampleTables())
		require.NoError(t, err)
		for _, v := range vs {
			if v.Rule == "container-not-partial" {
				assert.Equal(t, 3, v.Line)
				assert.Equal(t, "error", v.Severity)
				assert.Contains(t, v.Message, "App.Outer ")
			}
		}
	})

	t.Run("Should sort by file then line", func(t *testing.T) {
		vs, err := engine.Evaluate(ctx, sampleTables())
		require.NoError(t, err)
		require.NotEmpty(t, vs)
		assert.Equal(t, "Broken.cs", vs[0].File)
		for i := 1; i < len(vs); i++ {
			if vs[i].File == vs[i-1].File {
				assert.LessOrEqual(t, vs[i-1].Line, vs[i].Line)
			}
		}
	})

	t.Run("Should report nothing for empty tables", func(t *testing.T) {
		vs, err := engine.Evaluate(ctx, facts.Tables{})
		require.NoError(t, err)
		assert.Empty(t, vs)
	})
}

func TestExtraPolicyDirs(t *testing.T) {
	t.Run("Should load extra rules into the same package", func(t *testing.T) {
		dir := t.TempDir()
		rule := `package notifygen.lint

import rego.v1

violations contains v if {
	some f in input.fields
	f.type == "int"
	v := {"rule": "no-int", "severity": "warning", "file": f.file, "line": f.line, "message": sprintf("%s is an int", [f.name])}
}
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.rego"), []byte(rule), 0o644))

		ctx := context.Background()
		engine, err := New(ctx, dir)
		require.NoError(t, err)
		vs, err := engine.Evaluate(ctx, sampleTables())
		require.NoError(t, err)
		assert.Equal(t, 2, rulesOf(vs)["no-int"])
	})
}

func TestSeverities(t *testing.T) {
	vs := []Violation{
		{Rule: "stale-output", Severity: "warning"},
		{Rule: "unused-derived", Severity: "info"},
		{Rule: "container-not-partial", Severity: "error"},
	}
	overrides := map[string]string{"unused-derived": "off", "stale-output": "error"}
	lookup := func(rule, def string) string {
		if s, ok := overrides[rule]; ok {
			return s
		}
		return def
	}

	t.Run("Should apply overrides and drop disabled rules", func(t *testing.T) {
		out := ApplySeverities(vs, lookup)
		require.Len(t, out, 2)
		assert.Equal(t, "error", out[0].Severity)
		assert.Equal(t, Summary{TotalViolations: 2, Errors: 2}, Summarize(out))
	})

	t.Run("Should count each severity", func(t *testing.T) {
		assert.Equal(t, Summary{TotalViolations: 3, Errors: 1, Warnings: 1, Info: 1}, Summarize(vs))
	})
}
