package definition

import (
	"reflect"
	"sort"
)

// FieldDef describes one configuration key.
type FieldDef struct {
	Path      string       // Config path like "output.indent"
	Default   any          // Default value
	CLIFlag   string       // CLI flag name like "indent"
	Shorthand string       // Single character shorthand like "i"
	EnvVar    string       // Environment variable name like "BOMKIT_INDENT"
	Type      reflect.Type // Field type, selects the cobra flag kind
	Help      string       // Help text for CLI
}

// Registry holds all configuration field definitions
type Registry struct {
	fields map[string]FieldDef
}

func NewRegistry() *Registry {
	return &Registry{
		fields: make(map[string]FieldDef),
	}
}

func (r *Registry) Register(field *FieldDef) {
	r.fields[field.Path] = *field
}

func (r *Registry) GetField(path string) (FieldDef, bool) {
	field, exists := r.fields[path]
	return field, exists
}

func (r *Registry) GetDefault(path string) any {
	if field, exists := r.fields[path]; exists {
		return field.Default
	}
	return nil
}

// Fields returns every definition ordered by path.
func (r *Registry) Fields() []FieldDef {
	out := make([]FieldDef, 0, len(r.fields))
	for _, f := range r.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// GetCLIFlagMapping returns a map of CLI flag names to config paths
func (r *Registry) GetCLIFlagMapping() map[string]string {
	mapping := make(map[string]string)
	for path, field := range r.fields {
		if field.CLIFlag != "" {
			mapping[field.CLIFlag] = path
		}
	}
	return mapping
}
