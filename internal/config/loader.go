package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// NOTIFYGEN_OUTPUT_NAMING=hint or NOTIFYGEN_ANALYSIS_MAX_PARALLEL_FILES=4.
const EnvPrefix = "NOTIFYGEN_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// loadLayers merges defaults, the optional file, then the environment.
func loadLayers(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if err := k.Load(rawMap(raw), nil); err != nil {
			return nil, fmt.Errorf("merging config file %s: %w", path, err)
		}
	}

	mappings := envMappings(k.Keys())
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return mappings[key], value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if cfg.Lint.Rules == nil {
		cfg.Lint.Rules = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// envMappings maps NOTIFYGEN_* variable names to config keys:
// "analysis.cache.enabled" is NOTIFYGEN_ANALYSIS_CACHE_ENABLED and
// "analysis.maxParallelFiles" is NOTIFYGEN_ANALYSIS_MAX_PARALLEL_FILES.
func envMappings(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[EnvName(key)] = key
	}
	return out
}

// EnvName returns the environment variable overriding a config key.
func EnvName(key string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	for i, r := range key {
		switch {
		case r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r) && i > 0:
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
