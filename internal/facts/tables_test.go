package facts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/notifygen/internal/extractor"
	"github.com/robert-at-pretension-io/notifygen/internal/model"
)

const tablesSource = `using System;

namespace App
{
    class Outer
    {
        partial class Sample<T>
        {
            struct NotifyRecord
            {
                /// <summary>Horizontal.</summary>
                public int X, Extra;
                public int Y;
                public int Square => X * X;
                public int Constant => 42;
            }
        }
    }
}
`

func sourceFor(t *testing.T, path, src string) Source {
	t.Helper()
	ff, err := extractor.New().Extract(context.Background(), path, []byte(src))
	require.NoError(t, err)
	src2 := Source{Facts: ff}
	for _, cand := range ff.Candidates {
		def, err := model.Build(cand.Record)
		require.NoError(t, err)
		src2.Units = append(src2.Units, Unit{
			Candidate:  cand,
			Definition: def,
			OutputPath: "Sample.ValueChanged.cs",
		})
	}
	return src2
}

func TestBuildTables(t *testing.T) {
	tables := BuildTables([]Source{sourceFor(t, "Sample.cs", tablesSource)})

	require.Len(t, tables.Files, 1)
	assert.Equal(t, FileRow{Path: "Sample.cs", Parsed: true}, tables.Files[0])

	require.Len(t, tables.Containers, 2)
	assert.Equal(t, "App.Outer", tables.Containers[0].QualifiedName)
	assert.False(t, tables.Containers[0].IsPartial)
	assert.Equal(t, 0, tables.Containers[0].Depth)
	assert.Equal(t, "App.Outer.Sample<T>", tables.Containers[1].QualifiedName)
	assert.Equal(t, []string{"T"}, tables.Containers[1].TypeParams)
	assert.Equal(t, 1, tables.Containers[1].Depth)

	require.Len(t, tables.Records, 1)
	assert.Equal(t, RecordRow{Container: "App.Outer.Sample<T>", Name: "NotifyRecord", FieldCount: 2, DerivedCount: 2, File: "Sample.cs", Line: 9}, tables.Records[0])

	require.Len(t, tables.Fields, 2)
	assert.Equal(t, "X", tables.Fields[0].Name)
	assert.Equal(t, 2, tables.Fields[0].DeclaredNames)
	assert.True(t, tables.Fields[0].Documented)
	assert.False(t, tables.Fields[1].Documented)

	require.Len(t, tables.Derived, 2)
	assert.Equal(t, 2, tables.Derived[0].DependencyCount)
	assert.Equal(t, 0, tables.Derived[1].DependencyCount)

	require.Len(t, tables.Edges, 2)
	assert.Equal(t, 1, tables.Edges[0].Occurrence)
	assert.Equal(t, 2, tables.Edges[1].Occurrence)

	require.Len(t, tables.Usings, 1)
	assert.Equal(t, "System", tables.Usings[0].Name)

	require.Len(t, tables.Outputs, 1)
	assert.Equal(t, OutputRow{Container: "App.Outer.Sample<T>", Source: "Sample.cs", Path: "Sample.ValueChanged.cs"}, tables.Outputs[0])
}

func TestBuildTablesSortsFilesAndSkipsMissingDefinitions(t *testing.T) {
	b := Source{Facts: extractor.FileFacts{File: "b.cs", Skipped: true}}
	a := sourceFor(t, "a.cs", tablesSource)
	a.Units[0].Definition = nil

	tables := BuildTables([]Source{b, a})

	require.Len(t, tables.Files, 2)
	assert.Equal(t, "a.cs", tables.Files[0].Path)
	assert.False(t, tables.Files[1].Parsed)
	assert.Empty(t, tables.Records)
	assert.Len(t, tables.Outputs, 1)
	assert.NotNil(t, tables.Fields)
}
