package config

import (
	"context"
	"time"

	"github.com/compozy/bomkit/pkg/config/definition"
)

// Config is the complete bomkit configuration.
type Config struct {
	Output     OutputConfig     `koanf:"output"`
	Validation ValidationConfig `koanf:"validation"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// OutputConfig controls how a BOM is rendered.
type OutputConfig struct {
	SpecVersion  string `koanf:"spec_version"  validate:"required,spec_version" env:"BOMKIT_SPEC_VERSION"`
	Format       string `koanf:"format"        validate:"required,bom_format"   env:"BOMKIT_FORMAT"`
	Indent       int    `koanf:"indent"        validate:"min=0,max=16"          env:"BOMKIT_INDENT"`
	IndentString string `koanf:"indent_string"                                  env:"BOMKIT_INDENT_STRING"`
	SortLists    bool   `koanf:"sort_lists"                                     env:"BOMKIT_SORT_LISTS"`
}

type ValidationConfig struct {
	Enabled              bool `koanf:"enabled"                 env:"BOMKIT_VALIDATE"`
	FailOnMissingBackend bool `koanf:"fail_on_missing_backend" env:"BOMKIT_FAIL_ON_MISSING_BACKEND"`
}

type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error disabled" env:"BOMKIT_LOG_LEVEL"`
	JSON   bool   `koanf:"json"                                                   env:"BOMKIT_LOG_JSON"`
	Source bool   `koanf:"source"                                                 env:"BOMKIT_LOG_SOURCE"`
}

// MetricsConfig enables the Prometheus textfile export when File is set.
type MetricsConfig struct {
	File string `koanf:"file" env:"BOMKIT_METRICS_FILE"`
}

// Service loads and validates configuration.
type Service interface {
	// Load applies defaults, then sources in order, then environment variables.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	Validate(config *Config) error
	// GetSource returns the source type that provided a configuration key.
	GetSource(key string) SourceType
}

// Source is one layer of configuration.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads defaults and environment variables with a fresh service.
func Load() (*Config, error) {
	service := NewService()
	return service.Load(context.Background())
}

// Default returns the built-in configuration.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		Output: OutputConfig{
			SpecVersion:  getString(registry, "output.spec_version"),
			Format:       getString(registry, "output.format"),
			Indent:       getInt(registry, "output.indent"),
			IndentString: getString(registry, "output.indent_string"),
			SortLists:    getBool(registry, "output.sort_lists"),
		},
		Validation: ValidationConfig{
			Enabled:              getBool(registry, "validation.enabled"),
			FailOnMissingBackend: getBool(registry, "validation.fail_on_missing_backend"),
		},
		Log: LogConfig{
			Level:  getString(registry, "log.level"),
			JSON:   getBool(registry, "log.json"),
			Source: getBool(registry, "log.source"),
		},
		Metrics: MetricsConfig{
			File: getString(registry, "metrics.file"),
		},
	}
}

func getString(registry *definition.Registry, path string) string {
	if val := registry.GetDefault(path); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if val := registry.GetDefault(path); val != nil {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if val := registry.GetDefault(path); val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
