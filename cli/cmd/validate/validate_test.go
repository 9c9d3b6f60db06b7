package validate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/validation"
)

func TestDetectVersion(t *testing.T) {
	t.Run("Should read specVersion from JSON", func(t *testing.T) {
		v, ok := DetectVersion(spec.FormatJSON, `{"bomFormat":"CycloneDX","specVersion":"1.5"}`)
		assert.True(t, ok)
		assert.Equal(t, spec.V1_5, v)
	})

	t.Run("Should read the namespace from XML", func(t *testing.T) {
		v, ok := DetectVersion(spec.FormatXML, `<bom xmlns="http://cyclonedx.org/schema/bom/1.2" version="1"/>`)
		assert.True(t, ok)
		assert.Equal(t, spec.V1_2, v)
	})

	t.Run("Should report documents without a known version", func(t *testing.T) {
		for _, tc := range []struct {
			format spec.Format
			doc    string
		}{
			{spec.FormatJSON, `{"bomFormat":"CycloneDX"}`},
			{spec.FormatJSON, `{"specVersion":"2.0"}`},
			{spec.FormatXML, `<bom xmlns="urn:example"/>`},
			{spec.FormatXML, `<bom>`},
		} {
			_, ok := DetectVersion(tc.format, tc.doc)
			assert.False(t, ok, tc.doc)
		}
	})
}

func TestReport(t *testing.T) {
	t.Run("Should be valid without violations", func(t *testing.T) {
		report := NewReport(spec.V1_6, spec.FormatJSON, nil)
		assert.True(t, report.Valid)
		assert.NoError(t, reportError(report))

		var buf bytes.Buffer
		WriteReport(&buf, report)
		assert.Contains(t, buf.String(), "valid CycloneDX 1.6 json")
	})

	t.Run("Should list violations", func(t *testing.T) {
		report := NewReport(spec.V1_4, spec.FormatJSON, validation.Errors{
			{Path: "components.0.type", Message: "value must be one of the allowed values", Value: `"gadget"`},
		})
		assert.False(t, report.Valid)
		assert.Error(t, reportError(report))

		var buf bytes.Buffer
		WriteReport(&buf, report)
		assert.Contains(t, buf.String(), "1 violation(s)")
		assert.Contains(t, buf.String(), "components.0.type")
		assert.Contains(t, buf.String(), `(got "gadget")`)
	})
}
