package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Run("Should pass validation", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("Should enable the cache and companion naming", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.True(t, cfg.Analysis.Cache.Enabled)
		assert.Equal(t, "companion", cfg.Output.Naming)
		assert.Equal(t, ".ValueChanged.cs", cfg.Output.Suffix)
		assert.Equal(t, "inline", cfg.Generator.SetterStyle)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("Should merge a JSON file over the defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "notifygen.json", `{
  "output": {"naming": "hint", "dir": "Generated"},
  "generator": {"setterStyle": "set-property"},
  "lint": {"rules": {"unused-derived": "off"}}
}`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hint", cfg.Output.Naming)
		assert.Equal(t, "Generated", cfg.Output.Dir)
		assert.Equal(t, ".ValueChanged.cs", cfg.Output.Suffix)
		assert.Equal(t, "set-property", cfg.Generator.SetterStyle)
		assert.Equal(t, "_value", cfg.Generator.BackingField)
		assert.Equal(t, "off", cfg.Lint.Rules["unused-derived"])
	})

	t.Run("Should read YAML files", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "notifygen.yaml", `
sources:
  include:
    - "src/**/*.cs"
output:
  lineEnding: crlf
analysis:
  maxParallelFiles: 2
  cache:
    enabled: false
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"src/**/*.cs"}, cfg.Sources.Include)
		assert.Equal(t, "crlf", cfg.Output.LineEnding)
		assert.Equal(t, 2, cfg.Analysis.MaxParallelFiles)
		assert.False(t, cfg.Analysis.Cache.Enabled)
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "notifygen.json", `{"output": {"naming": "sideways"}}`)
		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("Should report malformed files", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "notifygen.json", `{"output": [`)
		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "parsing config file")
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Run("Should apply NOTIFYGEN_ variables last", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "notifygen.json", `{"output": {"naming": "companion"}}`)
		t.Setenv("NOTIFYGEN_OUTPUT_NAMING", "hint")
		t.Setenv("NOTIFYGEN_ANALYSIS_MAX_PARALLEL_FILES", "4")
		t.Setenv("NOTIFYGEN_ANALYSIS_CACHE_ENABLED", "false")
		t.Setenv("NOTIFYGEN_UNKNOWN_KEY", "ignored")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hint", cfg.Output.Naming)
		assert.Equal(t, 4, cfg.Analysis.MaxParallelFiles)
		assert.False(t, cfg.Analysis.Cache.Enabled)
	})

	t.Run("Should derive variable names from keys", func(t *testing.T) {
		assert.Equal(t, "NOTIFYGEN_ANALYSIS_MAX_PARALLEL_FILES", EnvName("analysis.maxParallelFiles"))
		assert.Equal(t, "NOTIFYGEN_GENERATOR_KEEP_DUPLICATE_NOTIFICATIONS", EnvName("generator.keepDuplicateNotifications"))
		assert.Equal(t, "NOTIFYGEN_OUTPUT_SUFFIX", EnvName("output.suffix"))
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should find a config under the root path", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		dir := t.TempDir()
		writeFile(t, dir, ".notifygen.json", `{"generator": {"marker": "State"}}`)
		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "State", cfg.Generator.Marker)
	})

	t.Run("Should fall back to defaults", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		cfg, err := Load(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Generator, cfg.Generator)
	})
}

func TestSave(t *testing.T) {
	t.Run("Should round-trip through LoadFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notifygen.json")
		cfg := DefaultConfig()
		cfg.Output.Naming = "hint"
		cfg.Lint.Rules["stale-output"] = "error"
		require.NoError(t, cfg.Save(path))

		loaded, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hint", loaded.Output.Naming)
		assert.Equal(t, "error", loaded.Lint.Rules["stale-output"])
	})
}

func TestRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lint.Rules = map[string]string{"unused-derived": "off", "stale-output": "error"}
	cfg.Lint.IgnorePatterns = []string{"**/Legacy/**", "*.Designer.cs"}

	t.Run("Should resolve severities", func(t *testing.T) {
		assert.Equal(t, "error", cfg.GetRuleSeverity("stale-output", "warning"))
		assert.Equal(t, "info", cfg.GetRuleSeverity("notify-record", "info"))
		assert.False(t, cfg.IsRuleEnabled("unused-derived"))
		assert.True(t, cfg.IsRuleEnabled("parse-error"))
	})

	t.Run("Should match ignore patterns on paths and base names", func(t *testing.T) {
		assert.True(t, cfg.ShouldIgnoreFile("src/Legacy/Old.cs"))
		assert.True(t, cfg.ShouldIgnoreFile("/abs/Form1.Designer.cs"))
		assert.False(t, cfg.ShouldIgnoreFile("src/Point.cs"))
	})

	t.Run("Should recognise generated files", func(t *testing.T) {
		assert.True(t, cfg.IsGeneratedFile("src/Point.ValueChanged.cs"))
		assert.True(t, cfg.IsGeneratedFile("Demo.Point.g.cs"))
		assert.False(t, cfg.IsGeneratedFile("Point.cs"))
	})
}

func TestResolveSources(t *testing.T) {
	fsys := fstest.MapFS{
		"Point.cs":                  {Data: []byte("class Point {}")},
		"Point.ValueChanged.cs":     {Data: []byte("")},
		"Models/Order.cs":           {Data: []byte("")},
		"Models/Order.g.cs":         {Data: []byte("")},
		"obj/Debug/AssemblyInfo.cs": {Data: []byte("")},
		"bin/Release/Gen.cs":        {Data: []byte("")},
		"Legacy/Old.cs":             {Data: []byte("")},
		"README.md":                 {Data: []byte("")},
	}

	t.Run("Should keep only hand-written sources", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Lint.IgnorePatterns = []string{"Legacy/**"}
		files, err := cfg.ResolveSources(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"Models/Order.cs", "Point.cs"}, files)
	})

	t.Run("Should reject invalid patterns", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Sources.Include = []string{"[oops"}
		_, err := cfg.ResolveSources(fsys)
		assert.Error(t, err)
	})
}
