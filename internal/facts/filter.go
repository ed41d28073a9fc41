package facts

// FilterTablesByFiles returns a new Tables object containing only rows whose
// file, path or source is present in the provided file set.
func FilterTablesByFiles(tables Tables, files map[string]bool) Tables {
	out := emptyTables()
	if len(files) == 0 {
		return out
	}

	out.Files = filterRows(tables.Files, files, func(r FileRow) string { return r.Path })
	out.Containers = filterRows(tables.Containers, files, func(r ContainerRow) string { return r.File })
	out.Records = filterRows(tables.Records, files, func(r RecordRow) string { return r.File })
	out.Fields = filterRows(tables.Fields, files, func(r FieldRow) string { return r.File })
	out.Derived = filterRows(tables.Derived, files, func(r DerivedRow) string { return r.File })
	out.Edges = filterRows(tables.Edges, files, func(r EdgeRow) string { return r.File })
	out.Usings = filterRows(tables.Usings, files, func(r UsingRow) string { return r.File })
	out.Outputs = filterRows(tables.Outputs, files, func(r OutputRow) string { return r.Source })

	return out
}

// FilterDeltaByFiles returns a new Delta containing only rows for the specified files.
func FilterDeltaByFiles(delta Delta, files map[string]bool) Delta {
	return Delta{
		Added:   FilterTablesByFiles(delta.Added, files),
		Removed: FilterTablesByFiles(delta.Removed, files),
	}
}

func filterRows[T any](rows []T, files map[string]bool, file func(T) string) []T {
	out := []T{}
	for _, row := range rows {
		if files[file(row)] {
			out = append(out, row)
		}
	}
	return out
}
