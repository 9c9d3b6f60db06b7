package schema

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DraftURI is the dialect the embedded schemas are compiled under. The CycloneDX schemas
// are published as draft-07 and are rewritten into this dialect before compiling.
const DraftURI = "https://json-schema.org/draft/2020-12/schema"

// schemaBase is where relative references in the CycloneDX schemas resolve.
const schemaBase = "http://cyclonedx.org/schema/"

// Keywords whose value is a single subschema.
var subschemaKeywords = map[string]bool{
	"additionalProperties":  true,
	"not":                   true,
	"if":                    true,
	"then":                  true,
	"else":                  true,
	"contains":              true,
	"propertyNames":         true,
	"unevaluatedItems":      true,
	"unevaluatedProperties": true,
}

// Keywords whose value maps names to subschemas.
var schemaMapKeywords = map[string]bool{
	"properties":        true,
	"patternProperties": true,
	"$defs":             true,
	"dependentSchemas":  true,
}

// Keywords whose value is a list of subschemas.
var schemaListKeywords = map[string]bool{
	"allOf":       true,
	"anyOf":       true,
	"oneOf":       true,
	"prefixItems": true,
}

type translator struct {
	base  *url.URL
	known map[string]bool
}

// translate rewrites a draft-07 schema document into DraftURI and fails with
// ErrRemoteReference when a $ref resolves outside known. Property names are left alone;
// only keywords in schema position are rewritten.
func translate(raw []byte, known ...string) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	base, err := url.Parse(schemaBase)
	if err != nil {
		return nil, err
	}
	if id, ok := doc["$id"].(string); ok {
		if u, err := base.Parse(id); err == nil {
			base = u
		}
	}
	tr := &translator{base: base, known: make(map[string]bool, len(known)+1)}
	tr.known[stripFragment(base)] = true
	for _, k := range known {
		tr.known[k] = true
	}
	if err := tr.schema(doc); err != nil {
		return nil, err
	}
	doc["$schema"] = DraftURI
	return json.Marshal(doc)
}

func (tr *translator) schema(node any) error {
	s, ok := node.(map[string]any)
	if !ok {
		// true, false or a malformed value, which the compiler reports.
		return nil
	}
	if defs, ok := s["definitions"]; ok {
		delete(s, "definitions")
		if _, clash := s["$defs"]; !clash {
			s["$defs"] = defs
		}
	}
	if id, ok := s["$id"].(string); ok && strings.HasPrefix(id, "#") {
		delete(s, "$id")
		s["$anchor"] = strings.TrimPrefix(id, "#")
	}
	if ref, ok := s["$ref"].(string); ok {
		rewritten, err := tr.ref(ref)
		if err != nil {
			return err
		}
		s["$ref"] = rewritten
	}
	tr.items(s)
	tr.dependencies(s)

	for key, value := range s {
		var err error
		switch {
		case subschemaKeywords[key] || key == "items":
			err = tr.schema(value)
		case schemaMapKeywords[key]:
			if m, ok := value.(map[string]any); ok {
				for _, sub := range m {
					if err = tr.schema(sub); err != nil {
						break
					}
				}
			}
		case schemaListKeywords[key]:
			if list, ok := value.([]any); ok {
				for _, sub := range list {
					if err = tr.schema(sub); err != nil {
						break
					}
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// items turns the draft-07 tuple form into prefixItems, with additionalItems taking the
// place of items.
func (tr *translator) items(s map[string]any) {
	tuple, isTuple := s["items"].([]any)
	additional, hasAdditional := s["additionalItems"]
	delete(s, "additionalItems")
	if !isTuple {
		return
	}
	s["prefixItems"] = tuple
	if hasAdditional {
		s["items"] = additional
	} else {
		delete(s, "items")
	}
}

func (tr *translator) dependencies(s map[string]any) {
	deps, ok := s["dependencies"].(map[string]any)
	if !ok {
		return
	}
	delete(s, "dependencies")
	required := map[string]any{}
	schemas := map[string]any{}
	for name, dep := range deps {
		if _, isList := dep.([]any); isList {
			required[name] = dep
		} else {
			schemas[name] = dep
		}
	}
	if len(required) > 0 {
		s["dependentRequired"] = required
	}
	if len(schemas) > 0 {
		s["dependentSchemas"] = schemas
	}
}

func (tr *translator) ref(ref string) (string, error) {
	target, err := tr.base.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid $ref %q: %w", ref, err)
	}
	if !tr.known[stripFragment(target)] {
		return "", fmt.Errorf("%w: %s", ErrRemoteReference, ref)
	}
	doc, fragment, found := strings.Cut(ref, "#")
	if !found {
		return ref, nil
	}
	if fragment == "/definitions" || strings.HasPrefix(fragment, "/definitions/") {
		fragment = "/$defs" + strings.TrimPrefix(fragment, "/definitions")
	}
	return doc + "#" + fragment, nil
}

func stripFragment(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}
