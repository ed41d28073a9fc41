package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterTablesByFiles(t *testing.T) {
	tables := Tables{
		Files: []FileRow{
			{Path: "A.cs"},
			{Path: "B.cs"},
		},
		Records: []RecordRow{
			{Container: "A", Name: "NotifyRecord", File: "A.cs"},
			{Container: "B", Name: "NotifyRecord", File: "B.cs"},
		},
		Fields: []FieldRow{
			{Container: "A", Name: "X", File: "A.cs"},
			{Container: "B", Name: "Y", File: "B.cs"},
		},
		Outputs: []OutputRow{
			{Container: "A", Source: "A.cs", Path: "A.ValueChanged.cs"},
			{Container: "B", Source: "B.cs", Path: "B.ValueChanged.cs"},
		},
	}

	filtered := FilterTablesByFiles(tables, map[string]bool{"A.cs": true})

	assert.Equal(t, []FileRow{{Path: "A.cs"}}, filtered.Files)
	assert.Len(t, filtered.Records, 1)
	assert.Equal(t, "A", filtered.Records[0].Container)
	assert.Len(t, filtered.Fields, 1)
	assert.Equal(t, "X", filtered.Fields[0].Name)
	assert.Len(t, filtered.Outputs, 1)
	assert.Equal(t, "A.ValueChanged.cs", filtered.Outputs[0].Path)
	assert.Empty(t, filtered.Edges)
}

func TestFilterDeltaByFilesEmpty(t *testing.T) {
	delta := Delta{
		Added: Tables{
			Files: []FileRow{{Path: "A.cs"}},
		},
		Removed: Tables{
			Files: []FileRow{{Path: "B.cs"}},
		},
	}

	filtered := FilterDeltaByFiles(delta, map[string]bool{})
	assert.Empty(t, filtered.Added.Files)
	assert.Empty(t, filtered.Removed.Files)
}
