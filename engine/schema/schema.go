// Package schema embeds the CycloneDX JSON schemas and XML schema definitions that bomkit
// validates against, and compiles the JSON schemas on demand.
//
// Schemas exist for 1.2 and later. The JSON schemas keep their published draft-07 layout
// and are translated to 2020-12 when compiled. References between schemas resolve only
// against the embedded set; no document is ever fetched from the network.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/compozy/bomkit/engine/spec"
)

//go:embed cyclonedx/*.json cyclonedx/*.xsd
var resources embed.FS

const resourceDir = "cyclonedx"

const (
	SPDXJSONSchemaFile = "spdx.schema.json"
	SPDXXSDFile        = "spdx.xsd"
	JSFJSONSchemaFile  = "jsf-0.82.schema.json"
	// SPDXJSONSchemaID is the $id the bom schemas reference license ids through.
	SPDXJSONSchemaID = "http://cyclonedx.org/schema/spdx.schema.json"
	// JSFJSONSchemaID is the $id the bom schemas reference enveloped signatures through.
	JSFJSONSchemaID = "http://cyclonedx.org/schema/jsf-0.82.schema.json"
)

var (
	// ErrNoSchema is returned for a version/format pair without an embedded schema.
	ErrNoSchema = errors.New("no schema available")
	// ErrRemoteReference is returned when a schema reference points outside the embedded set.
	ErrRemoteReference = errors.New("remote schema references are not allowed")
)

func JSONSchemaFile(v spec.Version) string {
	return fmt.Sprintf("bom-%s.schema.json", v)
}

func XSDFile(v spec.Version) string {
	return fmt.Sprintf("bom-%s.xsd", v)
}

func HasJSONSchema(v spec.Version) bool {
	return exists(JSONSchemaFile(v))
}

func HasXSD(v spec.Version) bool {
	return exists(XSDFile(v))
}

// Has reports whether a schema exists for v in format f.
func Has(v spec.Version, f spec.Format) bool {
	switch f {
	case spec.FormatJSON:
		return HasJSONSchema(v)
	case spec.FormatXML:
		return HasXSD(v)
	default:
		return false
	}
}

// JSONSchema returns the raw JSON schema for v.
func JSONSchema(v spec.Version) ([]byte, error) {
	return read(v, spec.FormatJSON, JSONSchemaFile(v))
}

// XSD returns the raw XML schema definition for v.
func XSD(v spec.Version) ([]byte, error) {
	return read(v, spec.FormatXML, XSDFile(v))
}

// FS exposes the embedded resources with file names at the root.
func FS() fs.FS {
	sub, err := fs.Sub(resources, resourceDir)
	if err != nil {
		panic(fmt.Sprintf("schema: embedded resources: %v", err))
	}
	return sub
}

// ExtractXSDs writes every embedded XSD into dir, so external validators can resolve the
// spdx import next to each bom schema.
func ExtractXSDs(dir string) error {
	entries, err := fs.Glob(FS(), "*.xsd")
	if err != nil {
		return fmt.Errorf("list xsd resources: %w", err)
	}
	for _, name := range entries {
		data, err := fs.ReadFile(FS(), name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func exists(name string) bool {
	_, err := fs.Stat(FS(), name)
	return err == nil
}

func read(v spec.Version, f spec.Format, name string) ([]byte, error) {
	data, err := fs.ReadFile(FS(), name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: CycloneDX %s %s", ErrNoSchema, v, f)
	}
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	return data, nil
}
