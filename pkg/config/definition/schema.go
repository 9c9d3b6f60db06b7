package definition

import (
	"reflect"
)

var (
	stringType = reflect.TypeOf("")
	intType    = reflect.TypeOf(0)
	boolType   = reflect.TypeOf(false)
)

// CreateRegistry creates and populates the configuration registry.
// Defaults, CLI flags and environment variables are all derived from it.
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerOutputFields(registry)
	registerValidationFields(registry)
	registerLogFields(registry)
	registerMetricsFields(registry)
	return registry
}

func registerOutputFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:      "output.spec_version",
		Default:   "1.6",
		CLIFlag:   "spec",
		Shorthand: "s",
		EnvVar:    "BOMKIT_SPEC_VERSION",
		Type:      stringType,
		Help:      "CycloneDX specification version to render (1.0 to 1.6)",
	})
	registry.Register(&FieldDef{
		Path:      "output.format",
		Default:   "json",
		CLIFlag:   "format",
		Shorthand: "f",
		EnvVar:    "BOMKIT_FORMAT",
		Type:      stringType,
		Help:      "Output format (json, xml)",
	})
	registry.Register(&FieldDef{
		Path:    "output.indent",
		Default: 2,
		CLIFlag: "indent",
		EnvVar:  "BOMKIT_INDENT",
		Type:    intType,
		Help:    "Number of spaces per indentation level, 0 renders compact output",
	})
	registry.Register(&FieldDef{
		Path:    "output.indent_string",
		Default: "",
		CLIFlag: "indent-string",
		EnvVar:  "BOMKIT_INDENT_STRING",
		Type:    stringType,
		Help:    "Literal indentation string, overrides --indent",
	})
	registry.Register(&FieldDef{
		Path:    "output.sort_lists",
		Default: false,
		CLIFlag: "sort",
		EnvVar:  "BOMKIT_SORT_LISTS",
		Type:    boolType,
		Help:    "Sort unordered collections by stable keys instead of input order",
	})
}

func registerValidationFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "validation.enabled",
		Default: false,
		CLIFlag: "validate",
		EnvVar:  "BOMKIT_VALIDATE",
		Type:    boolType,
		Help:    "Validate the rendered document against the bundled schema",
	})
	registry.Register(&FieldDef{
		Path:    "validation.fail_on_missing_backend",
		Default: false,
		CLIFlag: "fail-on-missing-backend",
		EnvVar:  "BOMKIT_FAIL_ON_MISSING_BACKEND",
		Type:    boolType,
		Help:    "Fail when no validation backend is installed instead of warning",
	})
}

func registerLogFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "log.level",
		CLIFlag: "log-level",
		Default: "info",
		EnvVar:  "BOMKIT_LOG_LEVEL",
		Type:    stringType,
		Help:    "Log level (debug, info, warn, error, disabled)",
	})
	registry.Register(&FieldDef{
		Path:    "log.json",
		CLIFlag: "log-json",
		Default: false,
		EnvVar:  "BOMKIT_LOG_JSON",
		Type:    boolType,
		Help:    "Emit logs as JSON",
	})
	registry.Register(&FieldDef{
		Path:    "log.source",
		CLIFlag: "log-source",
		Default: false,
		EnvVar:  "BOMKIT_LOG_SOURCE",
		Type:    boolType,
		Help:    "Include source locations in logs",
	})
}

func registerMetricsFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "metrics.file",
		CLIFlag: "metrics-file",
		Default: "",
		EnvVar:  "BOMKIT_METRICS_FILE",
		Type:    stringType,
		Help:    "Write Prometheus metrics to this .prom file when the command finishes",
	})
}
