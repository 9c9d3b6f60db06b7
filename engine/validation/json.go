package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kaptinlin/jsonschema"
	"github.com/tidwall/gjson"

	"github.com/compozy/bomkit/engine/schema"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/pkg/backend"
)

const BackendJSONSchema = "jsonschema"

// maxValueLength bounds the offending value copied into a ValidationError.
const maxValueLength = 256

func jsonCandidates() []backend.Candidate[engine] {
	return []backend.Candidate[engine]{
		{Name: BackendJSONSchema, Load: func() (engine, error) { return jsonSchemaEngine{}, nil }},
	}
}

var defaultJSONEngines = backend.NewResolver("json validator", jsonCandidates()...)

type JSONValidator struct {
	*base
}

// NewJSONValidator fails only for unknown versions. Versions without a JSON schema build a
// validator whose Validate reports ErrNotImplemented.
func NewJSONValidator(v spec.Version, opts ...Option) (*JSONValidator, error) {
	b, err := newBase(v, spec.FormatJSON, "json schema", defaultJSONEngines, jsonCandidates, opts)
	if err != nil {
		return nil, err
	}
	return &JSONValidator{base: b}, nil
}

type jsonSchemaEngine struct{}

func (jsonSchemaEngine) validate(ctx context.Context, v spec.Version, doc string) (Errors, error) {
	if !gjson.Valid(doc) {
		return nil, &MalformedDocumentError{Format: spec.FormatJSON, Cause: errors.New("invalid JSON syntax")}
	}
	var instance any
	if err := json.Unmarshal([]byte(doc), &instance); err != nil {
		return nil, &MalformedDocumentError{Format: spec.FormatJSON, Cause: err}
	}
	result, err := schema.Validate(ctx, v, instance)
	if err != nil {
		return nil, fmt.Errorf("validate json: %w", err)
	}
	if result.Valid {
		return nil, nil
	}
	c := &collector{doc: doc, seen: make(map[string]struct{})}
	c.walk(result)
	if len(c.errs) == 0 {
		c.errs = append(c.errs, ValidationError{Path: "/", Message: "document does not match the schema"})
	}
	return c.errs, nil
}

type collector struct {
	doc  string
	errs Errors
	seen map[string]struct{}
}

// walk gathers the errors of every failing node, deepest evaluation order preserved.
func (c *collector) walk(r *jsonschema.EvaluationResult) {
	if r == nil || r.Valid {
		return
	}
	keywords := make([]string, 0, len(r.Errors))
	for k := range r.Errors {
		keywords = append(keywords, k)
	}
	slices.Sort(keywords)
	for _, k := range keywords {
		e := r.Errors[k]
		if e == nil {
			continue
		}
		c.add(r.InstanceLocation, e.Error())
	}
	for _, d := range r.Details {
		c.walk(d)
	}
}

func (c *collector) add(location, message string) {
	path := location
	if path == "" {
		path = "/"
	}
	key := path + "\x00" + message
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	ve := ValidationError{Path: path, Message: message}
	if path != "/" {
		if raw := gjson.Get(c.doc, pointerToPath(path)).Raw; raw != "" && len(raw) <= maxValueLength {
			ve.Value = raw
		}
	}
	c.errs = append(c.errs, ve)
}

// pointerToPath converts a JSON pointer into a gjson path.
func pointerToPath(pointer string) string {
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = escapePathComponent(p)
	}
	return strings.Join(parts, ".")
}

func escapePathComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '$':
		default:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
