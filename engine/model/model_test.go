package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBom_SerialNumber(t *testing.T) {
	t.Run("Should generate valid serial numbers", func(t *testing.T) {
		b := NewBom()
		assert.True(t, IsSerialNumber(b.SerialNumber))
		assert.Equal(t, 1, b.Version)
	})
	t.Run("Should derive stable serial numbers from a seed", func(t *testing.T) {
		assert.Equal(t, SerialNumberFrom("acme/app@1.0"), SerialNumberFrom("acme/app@1.0"))
		assert.NotEqual(t, SerialNumberFrom("a"), SerialNumberFrom("b"))
		assert.True(t, IsSerialNumber(SerialNumberFrom("a")))
	})
	t.Run("Should reject malformed serial numbers", func(t *testing.T) {
		b := &Bom{}
		err := b.SetSerialNumber("urn:uuid:not-a-uuid")
		assert.ErrorIs(t, err, ErrInvalidSerialNumber)
		require.NoError(t, b.SetSerialNumber(""))
	})
	t.Run("Should reject versions below one", func(t *testing.T) {
		b := &Bom{}
		assert.ErrorIs(t, b.SetVersion(0), ErrInvalidBomVersion)
		assert.Equal(t, 1, b.EffectiveVersion())
		require.NoError(t, b.SetVersion(3))
		assert.Equal(t, 3, b.EffectiveVersion())
	})
}

func TestLicenses(t *testing.T) {
	t.Run("Should canonicalize SPDX ids", func(t *testing.T) {
		l, err := NewSpdxLicense("apache-2.0")
		require.NoError(t, err)
		assert.Equal(t, "Apache-2.0", l.ID)
	})
	t.Run("Should know the full license and exception list", func(t *testing.T) {
		for _, id := range []string{"BSD-3-Clause-Attribution", "Zlib", "LLVM-exception", "GPL-2.0", "CERN-OHL-S-2.0"} {
			l, err := NewSpdxLicense(strings.ToLower(id))
			require.NoError(t, err, id)
			assert.Equal(t, id, l.ID)
		}
		assert.Greater(t, len(SPDXLicenseIDs()), 600)
	})
	t.Run("Should reject unknown SPDX ids", func(t *testing.T) {
		_, err := NewSpdxLicense("Not-A-License")
		assert.ErrorIs(t, err, ErrUnknownSPDXLicense)
	})
	t.Run("Should reject empty names and expressions", func(t *testing.T) {
		_, err := NewNamedLicense("  ")
		assert.ErrorIs(t, err, ErrEmptyLicense)
		_, err = NewLicenseExpression("")
		assert.ErrorIs(t, err, ErrEmptyLicense)
	})
	t.Run("Should expose a sorted id list", func(t *testing.T) {
		ids := SPDXLicenseIDs()
		require.NotEmpty(t, ids)
		for i := 1; i < len(ids); i++ {
			assert.Less(t, ids[i-1], ids[i])
		}
		assert.Contains(t, ids, "MIT")
	})
}

func TestBomLink(t *testing.T) {
	serial := "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79"
	t.Run("Should build document links", func(t *testing.T) {
		link, err := NewBomLinkDocument(serial, 1)
		require.NoError(t, err)
		assert.Equal(t, "urn:cdx:3e671687-395b-41f5-a30f-a58921a69b79/1", link)
		assert.True(t, IsBomLink(link))
	})
	t.Run("Should escape element fragments", func(t *testing.T) {
		link, err := NewBomLinkElement(serial, 2, "pkg#a b")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(link, "/2#pkg%23a%20b"))
		assert.True(t, IsBomLink(link))
	})
	t.Run("Should reject bad input", func(t *testing.T) {
		_, err := NewBomLinkDocument("nope", 1)
		assert.Error(t, err)
		_, err = NewBomLinkDocument(serial, 0)
		assert.Error(t, err)
		assert.False(t, IsBomLink("https://example.com"))
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should accept a consistent graph", func(t *testing.T) {
		c, err := NewComponent(ComponentTypeLibrary, "left-pad")
		require.NoError(t, err)
		c.Licenses = []License{&SpdxLicense{ID: "MIT"}}
		c.Hashes = []Hash{{Algorithm: HashSHA1, Content: "da39a3ee5e6b4b0d3255bfef95601890afd80709"}}
		b := NewBom()
		b.Components = []*Component{c}
		b.Metadata = &Metadata{Lifecycles: []Lifecycle{{Phase: PhaseBuild}}}
		assert.NoError(t, Validate(b))
	})
	t.Run("Should report missing component names", func(t *testing.T) {
		b := NewBom()
		b.Components = []*Component{{Type: ComponentTypeLibrary}}
		err := Validate(b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Name")
	})
	t.Run("Should reject SPDX ids that bypassed the constructor", func(t *testing.T) {
		b := NewBom()
		b.Components = []*Component{{Type: ComponentTypeLibrary, Name: "x", Licenses: []License{&SpdxLicense{ID: "bogus"}}}}
		assert.Error(t, Validate(b))
	})
	t.Run("Should reject ambiguous lifecycles", func(t *testing.T) {
		b := NewBom()
		b.Metadata = &Metadata{Lifecycles: []Lifecycle{{Phase: PhaseBuild, Name: "custom"}}}
		assert.Error(t, Validate(b))
	})
}

func TestComponent_DependsOn(t *testing.T) {
	t.Run("Should reference the target's token holder", func(t *testing.T) {
		a, _ := NewComponent(ComponentTypeLibrary, "a")
		b, _ := NewComponent(ComponentTypeLibrary, "b")
		a.DependsOn(b, nil)
		require.Len(t, a.Dependencies, 1)
		b.BomRef.Set("b-ref")
		assert.Equal(t, "b-ref", a.Dependencies[0].Value())
	})
}

func TestToolFromComponent(t *testing.T) {
	t.Run("Should prefer group as vendor", func(t *testing.T) {
		c := &Component{Name: "tool", Version: "1", Group: "acme", Supplier: &OrganizationalEntity{Name: "other"}}
		assert.Equal(t, "acme", ToolFromComponent(c).Vendor)
		c.Group = ""
		assert.Equal(t, "other", ToolFromComponent(c).Vendor)
	})
}
