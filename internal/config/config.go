package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Config is the top-level configuration for notifygen
type Config struct {
	// Sources selects the C# files to scan
	Sources SourcesConfig `json:"sources" koanf:"sources"`

	// Output controls where companion files go and how they are named
	Output OutputConfig `json:"output" koanf:"output"`

	// Generator controls the generated code
	Generator GeneratorConfig `json:"generator" koanf:"generator"`

	// Lint contains linting rule configuration
	Lint LintConfig `json:"lint" koanf:"lint"`

	// Analysis contains analysis options
	Analysis AnalysisConfig `json:"analysis" koanf:"analysis"`
}

// SourcesConfig lists glob patterns relative to the project root
type SourcesConfig struct {
	Include []string `json:"include" koanf:"include" validate:"min=1,dive,required"`
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`
}

// OutputConfig controls companion file placement
type OutputConfig struct {
	// Naming is "companion" (<Container><suffix> next to the source) or
	// "hint" (<namespace>.<Outer>.<Inner>_<arity>.g.cs)
	Naming string `json:"naming" koanf:"naming" validate:"oneof=companion hint"`

	// Suffix is appended to the container name in companion naming
	Suffix string `json:"suffix" koanf:"suffix" validate:"required,endswith=.cs"`

	// Dir places every output in one directory instead of next to its source
	Dir string `json:"dir,omitempty" koanf:"dir"`

	// LineEnding is "lf" or "crlf"
	LineEnding string `json:"lineEnding" koanf:"lineEnding" validate:"oneof=lf crlf"`
}

// GeneratorConfig mirrors the generator options
type GeneratorConfig struct {
	Marker                     string `json:"marker" koanf:"marker" validate:"required"`
	BackingField               string `json:"backingField" koanf:"backingField" validate:"required"`
	NotifyMethod               string `json:"notifyMethod" koanf:"notifyMethod" validate:"required"`
	SetMethod                  string `json:"setMethod" koanf:"setMethod" validate:"required"`
	SupportNamespace           string `json:"supportNamespace" koanf:"supportNamespace" validate:"required"`
	SetterStyle                string `json:"setterStyle" koanf:"setterStyle" validate:"oneof=inline set-property"`
	KeepDuplicateNotifications bool   `json:"keepDuplicateNotifications,omitempty" koanf:"keepDuplicateNotifications"`
}

// LintConfig contains linting configuration
type LintConfig struct {
	// Rules maps rule names to severity: "off", "info", "warning", "error"
	Rules map[string]string `json:"rules,omitempty" koanf:"rules" validate:"dive,oneof=off info warning error"`

	// IgnorePatterns is a list of file patterns to skip entirely
	IgnorePatterns []string `json:"ignorePatterns,omitempty" koanf:"ignorePatterns"`
}

// CacheConfig controls incremental generation cache behavior
type CacheConfig struct {
	// Enabled turns on incremental cache usage
	Enabled bool `json:"enabled" koanf:"enabled"`

	// Dir is the cache directory (relative to project root if not absolute)
	Dir string `json:"dir,omitempty" koanf:"dir"`
}

// AnalysisConfig contains analysis options
type AnalysisConfig struct {
	// MaxParallelFiles limits concurrent file processing (0 = auto)
	MaxParallelFiles int `json:"maxParallelFiles,omitempty" koanf:"maxParallelFiles" validate:"gte=0"`

	// Cache controls incremental generation cache behavior
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// TimingPath enables JSONL stage timings when set
	TimingPath string `json:"timingPath,omitempty" koanf:"timingPath"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Include: []string{"**/*.cs"},
			Exclude: []string{"**/bin/**", "**/obj/**"},
		},
		Output: OutputConfig{
			Naming:     "companion",
			Suffix:     ".ValueChanged.cs",
			LineEnding: "lf",
		},
		Generator: GeneratorConfig{
			Marker:           "NotifyRecord",
			BackingField:     "_value",
			NotifyMethod:     "OnPropertyChanged",
			SetMethod:        "SetProperty",
			SupportNamespace: "System.ComponentModel",
			SetterStyle:      "inline",
		},
		Lint: LintConfig{
			Rules:          map[string]string{},
			IgnorePatterns: []string{},
		},
		Analysis: AnalysisConfig{
			MaxParallelFiles: 0, // auto
			Cache: CacheConfig{
				Enabled: true,
				Dir:     ".notifygen_cache",
			},
		},
	}
}

// FileNames are the config files looked up in a directory, in order
var FileNames = []string{"notifygen.json", ".notifygen.json", "notifygen.yaml", "notifygen.yml"}

// Load finds and loads the configuration file
// Search order:
//  1. ./notifygen.json, ./.notifygen.json, ./notifygen.yaml (current working directory)
//  2. the same names under <rootPath> (if different from cwd)
//  3. ~/.config/notifygen/config.json
//
// Returns DefaultConfig (with environment overrides) if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	var searchPaths []string
	for _, name := range FileNames {
		searchPaths = append(searchPaths, filepath.Join(cwd, name))
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			for _, name := range FileNames {
				searchPaths = append(searchPaths, filepath.Join(rootPath, name))
			}
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "notifygen", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return loadLayers("")
}

// LoadFile loads configuration from a specific file. JSON and YAML are both
// accepted.
func LoadFile(path string) (*Config, error) {
	return loadLayers(path)
}

// Save writes the configuration to a file as indented JSON
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}

// ShouldIgnoreFile checks if a file should be skipped entirely
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	slashed := filepath.ToSlash(filePath)
	for _, pattern := range c.Lint.IgnorePatterns {
		if matched, _ := doublestar.Match(pattern, slashed); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}

// IsGeneratedFile reports whether path is a generator output rather than
// a source.
func (c *Config) IsGeneratedFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, c.Output.Suffix) || strings.HasSuffix(base, ".g.cs")
}
