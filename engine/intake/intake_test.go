package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
)

const sampleYAML = `
bomFormat: CycloneDX
specVersion: "1.5"
serialNumber: urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79
version: 2
metadata:
  timestamp: "2024-03-01T10:00:00Z"
  lifecycles:
    - phase: build
  tools:
    components:
      - type: application
        name: bomkit
        version: "0.1.0"
  component:
    type: application
    name: shop
    bom-ref: app
    dependsOn: [lib]
components:
  - type: library
    name: left-pad
    version: "1.3.0"
    bom-ref: lib
    purl: pkg:npm/left-pad@1.3.0
    hashes:
      - alg: SHA-256
        content: 8a5e0f1c2b3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7
    licenses:
      - license:
          id: mit
      - expression: MIT OR Apache-2.0
      - license:
          name: Internal
        acknowledgement: concluded
    components:
      - type: file
        name: index.js
        bom-ref: file
services:
  - name: api
    bom-ref: svc
    authenticated: true
    endpoints: [https://api.example.com]
dependencies:
  - ref: svc
    dependsOn: [lib, file]
vulnerabilities:
  - id: CVE-2024-0001
    bom-ref: vuln
    ratings:
      - score: 7.5
        severity: high
        method: CVSSv31
    cwes: [79]
    affects:
      - ref: lib
        versions:
          - version: "1.3.0"
            status: affected
`

func TestParse(t *testing.T) {
	t.Run("Should decode YAML into the document shape", func(t *testing.T) {
		doc, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, BomFormat, doc.BomFormat)
		assert.Equal(t, 2, doc.Version)
		require.Len(t, doc.Components, 1)
		assert.Equal(t, "lib", doc.Components[0].BomRef)
		v, ok := doc.Spec()
		assert.True(t, ok)
		assert.Equal(t, spec.V1_5, v)
	})
	t.Run("Should accept JSON input", func(t *testing.T) {
		doc, err := Parse([]byte(`{"components":[{"type":"library","name":"x","version":1.2}]}`))
		require.NoError(t, err)
		require.Len(t, doc.Components, 1)
		assert.Equal(t, "1.2", doc.Components[0].Version)
		_, ok := doc.Spec()
		assert.False(t, ok)
	})
	t.Run("Should reject empty documents", func(t *testing.T) {
		_, err := Parse([]byte("  \n"))
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
	t.Run("Should reject foreign BOM formats", func(t *testing.T) {
		_, err := Parse([]byte("bomFormat: SPDX\n"))
		assert.ErrorIs(t, err, ErrUnknownBomFormat)
	})
	t.Run("Should reject unknown spec versions", func(t *testing.T) {
		_, err := Parse([]byte(`specVersion: "2.0"`))
		assert.ErrorIs(t, err, spec.ErrUnknownVersion)
	})
	t.Run("Should reject unknown fields", func(t *testing.T) {
		_, err := Parse([]byte("components:\n  - name: x\n    colour: red\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "colour")
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should read a document from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bom.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
		doc, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, doc.Services, 1)
	})
	t.Run("Should report missing files", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("Should decode from a reader", func(t *testing.T) {
		doc, err := Decode(strings.NewReader(sampleYAML))
		require.NoError(t, err)
		assert.Len(t, doc.Vulnerabilities, 1)
	})
}

func TestToModel(t *testing.T) {
	load := func(t *testing.T, src string) (*model.Bom, error) {
		t.Helper()
		doc, err := Parse([]byte(src))
		require.NoError(t, err)
		return doc.ToModel()
	}

	t.Run("Should build the model with resolved references", func(t *testing.T) {
		b, err := load(t, sampleYAML)
		require.NoError(t, err)
		assert.Equal(t, 2, b.Version)
		require.NotNil(t, b.Metadata)
		require.NotNil(t, b.Metadata.Timestamp)
		assert.Equal(t, 2024, b.Metadata.Timestamp.Year())
		require.NotNil(t, b.Metadata.Tools)
		require.Len(t, b.Metadata.Tools.Components, 1)

		lib := b.Components[0]
		file := lib.Components[0]
		svc := b.Services[0]
		app := b.Metadata.Component
		require.Len(t, app.Dependencies, 1)
		assert.Same(t, lib.Ref(), app.Dependencies[0])
		require.Len(t, svc.Dependencies, 2)
		assert.Same(t, lib.Ref(), svc.Dependencies[0])
		assert.Same(t, file.Ref(), svc.Dependencies[1])

		vuln := b.Vulnerabilities[0]
		require.Len(t, vuln.Affects, 1)
		assert.Same(t, lib.Ref(), vuln.Affects[0].Ref)
		assert.Equal(t, model.StatusAffected, vuln.Affects[0].Versions[0].Status)
		require.NotNil(t, vuln.Ratings[0].Score)
		assert.InDelta(t, 7.5, *vuln.Ratings[0].Score, 0.0001)
	})
	t.Run("Should map every license form", func(t *testing.T) {
		b, err := load(t, sampleYAML)
		require.NoError(t, err)
		ls := b.Components[0].Licenses
		require.Len(t, ls, 3)
		spdx, ok := ls[0].(*model.SpdxLicense)
		require.True(t, ok)
		assert.Equal(t, "MIT", spdx.ID)
		_, ok = ls[1].(*model.LicenseExpression)
		assert.True(t, ok)
		named, ok := ls[2].(*model.NamedLicense)
		require.True(t, ok)
		assert.Equal(t, model.AcknowledgementConcluded, named.Acknowledgement)
	})
	t.Run("Should share one BomRef between rewrites and references", func(t *testing.T) {
		b, err := load(t, sampleYAML)
		require.NoError(t, err)
		b.Components[0].BomRef.Set("renamed")
		assert.Equal(t, "renamed", b.Metadata.Component.Dependencies[0].Value())
		assert.Equal(t, "renamed", b.Vulnerabilities[0].Affects[0].Ref.Value())
	})
	t.Run("Should accept the legacy tools list", func(t *testing.T) {
		b, err := load(t, "metadata:\n  tools:\n    - vendor: acme\n      name: scanner\n      version: \"2\"\n")
		require.NoError(t, err)
		require.Len(t, b.Metadata.Tools.Tools, 1)
		assert.Equal(t, "acme", b.Metadata.Tools.Tools[0].Vendor)
	})
	t.Run("Should fail on unknown dependency targets", func(t *testing.T) {
		_, err := load(t, "components:\n  - name: a\n    bom-ref: a\n    dependsOn: [ghost]\n")
		require.ErrorIs(t, err, ErrUnknownRef)
		assert.Contains(t, err.Error(), "components[0].dependsOn[0]")
	})
	t.Run("Should fail on unknown dependency owners", func(t *testing.T) {
		_, err := load(t, "dependencies:\n  - ref: ghost\n")
		assert.ErrorIs(t, err, ErrUnknownRef)
	})
	t.Run("Should refuse edges to vulnerabilities", func(t *testing.T) {
		src := "components:\n  - name: a\n    bom-ref: a\n    dependsOn: [v]\nvulnerabilities:\n  - id: X\n    bom-ref: v\n"
		_, err := load(t, src)
		assert.ErrorIs(t, err, ErrNotDependable)
	})
	t.Run("Should fail on unknown affected refs", func(t *testing.T) {
		_, err := load(t, "vulnerabilities:\n  - id: X\n    affects:\n      - ref: ghost\n")
		assert.ErrorIs(t, err, ErrUnknownRef)
	})
	t.Run("Should resolve duplicate tokens to the first entity", func(t *testing.T) {
		src := "components:\n  - name: a\n    bom-ref: dup\n  - name: b\n    bom-ref: dup\n  - name: c\n    dependsOn: [dup]\n"
		b, err := load(t, src)
		require.NoError(t, err)
		assert.Same(t, b.Components[0].Ref(), b.Components[2].Dependencies[0])
	})
	t.Run("Should accept any listed SPDX id", func(t *testing.T) {
		b, err := load(t, "components:\n  - name: a\n    licenses:\n      - license:\n          id: BSD-3-Clause-Attribution\n")
		require.NoError(t, err)
		spdx, ok := b.Components[0].Licenses[0].(*model.SpdxLicense)
		require.True(t, ok)
		assert.Equal(t, "BSD-3-Clause-Attribution", spdx.ID)
	})
	t.Run("Should reject unknown SPDX ids", func(t *testing.T) {
		_, err := load(t, "components:\n  - name: a\n    licenses:\n      - license:\n          id: Not-A-License\n")
		assert.ErrorIs(t, err, model.ErrUnknownSPDXLicense)
	})
	t.Run("Should reject empty license entries", func(t *testing.T) {
		_, err := load(t, "components:\n  - name: a\n    licenses:\n      - acknowledgement: declared\n")
		assert.ErrorIs(t, err, ErrInvalidLicense)
	})
	t.Run("Should reject components without a name", func(t *testing.T) {
		_, err := load(t, "components:\n  - type: library\n")
		assert.ErrorIs(t, err, model.ErrEmptyName)
	})
	t.Run("Should reject malformed timestamps", func(t *testing.T) {
		_, err := load(t, "metadata:\n  timestamp: yesterday\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metadata.timestamp")
	})
	t.Run("Should default the BOM version to one", func(t *testing.T) {
		b, err := load(t, "components: []\n")
		require.NoError(t, err)
		assert.Equal(t, 1, b.Version)
	})
}
