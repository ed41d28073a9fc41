package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeltaAddsAndRemoves(t *testing.T) {
	prev := Tables{
		Fields: []FieldRow{
			{Container: "App.Sample<T>", Name: "X", Type: "int", File: "Sample.cs", Line: 3, DeclaredNames: 1},
		},
		Usings: []UsingRow{
			{File: "Sample.cs", Name: "System", Line: 1},
		},
	}
	next := Tables{
		Fields: []FieldRow{
			{Container: "App.Sample<T>", Name: "Y", Type: "int", File: "Sample.cs", Line: 3, DeclaredNames: 1},
		},
		Usings: []UsingRow{
			{File: "Sample.cs", Name: "System.Linq", Line: 1},
		},
	}

	delta := ComputeDelta(prev, next)

	require.Len(t, delta.Added.Fields, 1)
	assert.Equal(t, "Y", delta.Added.Fields[0].Name)
	require.Len(t, delta.Removed.Fields, 1)
	assert.Equal(t, "X", delta.Removed.Fields[0].Name)
	require.Len(t, delta.Added.Usings, 1)
	assert.Equal(t, "System.Linq", delta.Added.Usings[0].Name)
	require.Len(t, delta.Removed.Usings, 1)
	assert.Equal(t, "System", delta.Removed.Usings[0].Name)
	assert.False(t, delta.IsEmpty())
}

func TestComputeDeltaIdenticalSnapshots(t *testing.T) {
	tables := Tables{
		Edges: []EdgeRow{{Container: "Sample", Field: "X", Derived: "Z", Occurrence: 1, File: "Sample.cs"}},
	}
	delta := ComputeDelta(tables, tables)
	assert.True(t, delta.IsEmpty())
	assert.NotNil(t, delta.Added.Edges, "empty relations marshal as [] rather than null")
}

func TestComputeDeltaOutputStatusChange(t *testing.T) {
	prev := Tables{Outputs: []OutputRow{{Container: "Sample", Source: "Sample.cs", Path: "Sample.ValueChanged.cs", Exists: true, UpToDate: false}}}
	next := Tables{Outputs: []OutputRow{{Container: "Sample", Source: "Sample.cs", Path: "Sample.ValueChanged.cs", Exists: true, UpToDate: true}}}

	delta := ComputeDelta(prev, next)
	require.Len(t, delta.Added.Outputs, 1)
	require.Len(t, delta.Removed.Outputs, 1)
	assert.True(t, delta.Added.Outputs[0].UpToDate)
}
