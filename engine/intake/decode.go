package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/compozy/bomkit/engine/spec"
)

// BomFormat is the only accepted bomFormat value.
const BomFormat = "CycloneDX"

var (
	ErrEmptyDocument    = errors.New("empty document")
	ErrUnknownBomFormat = errors.New("unknown bomFormat")
)

// Load reads the document at path. JSON is read through the YAML decoder.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open BOM file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read BOM: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode BOM: %w", err)
	}
	if raw == nil {
		return nil, ErrEmptyDocument
	}
	return FromMap(raw)
}

// FromMap decodes an already parsed document.
func FromMap(data map[string]any) (*Document, error) {
	var doc Document
	if err := decodeInto(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode BOM: %w", err)
	}
	if doc.BomFormat != "" && doc.BomFormat != BomFormat {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBomFormat, doc.BomFormat)
	}
	if doc.SpecVersion != "" {
		if _, err := spec.ParseVersion(doc.SpecVersion); err != nil {
			return nil, fmt.Errorf("specVersion: %w", err)
		}
	}
	return &doc, nil
}

// Spec returns the declared specVersion, or false when the document does not carry one.
func (d *Document) Spec() (spec.Version, bool) {
	if d.SpecVersion == "" {
		return "", false
	}
	v, err := spec.ParseVersion(d.SpecVersion)
	if err != nil {
		return "", false
	}
	return v, true
}

func decodeInto(data any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       timeToStringHook,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}

// timeToStringHook keeps unquoted YAML timestamps as RFC 3339 text.
func timeToStringHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if tm, ok := data.(time.Time); ok && to.Kind() == reflect.String {
		return tm.Format(time.RFC3339Nano), nil
	}
	return data, nil
}
