package config

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveSources expands the include patterns over fsys, drops excluded
// and generated files, and returns sorted slash-separated paths.
func (c *Config) ResolveSources(fsys fs.FS) ([]string, error) {
	fileSet := make(map[string]bool)

	for _, pattern := range c.Sources.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, match := range matches {
			if path.Ext(match) == ".cs" {
				fileSet[match] = true
			}
		}
	}

	var files []string
	for f := range fileSet {
		if c.isExcluded(f) || c.IsGeneratedFile(f) || c.ShouldIgnoreFile(f) {
			continue
		}
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func (c *Config) isExcluded(file string) bool {
	for _, pattern := range c.Sources.Exclude {
		if matched, _ := doublestar.Match(pattern, file); matched {
			return true
		}
	}
	return false
}
