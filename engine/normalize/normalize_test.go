package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/bomkit/engine/bomref"
	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
	"github.com/compozy/bomkit/pkg/logger"
)

const sha1Digest = "da39a3ee5e6b4b0d3255bfef95601890afd80709"

func factory(t *testing.T, v spec.Version, opts ...Option) *Factory {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewForTests())}, opts...)
	f, err := NewFactory(v, opts...)
	require.NoError(t, err)
	return f
}

func library(name, version string) *model.Component {
	return &model.Component{Type: model.ComponentTypeLibrary, Name: name, Version: version}
}

func names(list *tree.Node, child string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list.Children))
	for _, c := range list.Children {
		out = append(out, c.Child(child).Value())
	}
	return out
}

func TestNewFactory(t *testing.T) {
	t.Run("Should reject unknown versions", func(t *testing.T) {
		_, err := NewFactory("0.9")
		assert.ErrorIs(t, err, spec.ErrUnknownVersion)
	})
	t.Run("Should expose the target spec", func(t *testing.T) {
		f := factory(t, spec.V1_3, WithSortLists(true))
		assert.Equal(t, spec.V1_3, f.Spec().Version())
		assert.True(t, f.Options().SortLists)
	})
}

func TestFactory_License(t *testing.T) {
	expr := &model.LicenseExpression{Expression: "MIT OR Apache-2.0"}

	t.Run("Should drop expressions for versions without expression support", func(t *testing.T) {
		f := factory(t, spec.V1_0)
		n, err := f.License(expr)
		require.NoError(t, err)
		assert.Nil(t, n)

		licenses, err := f.Licenses([]model.License{expr})
		require.NoError(t, err)
		assert.Nil(t, licenses)

		c := library("x", "1")
		c.Licenses = []model.License{expr}
		node, err := f.Component(c)
		require.NoError(t, err)
		assert.Nil(t, node.Child("licenses"))
	})
	t.Run("Should keep sibling licenses when the expression is dropped", func(t *testing.T) {
		f := factory(t, spec.V1_0)
		licenses, err := f.Licenses([]model.License{expr, &model.SpdxLicense{ID: "MIT"}})
		require.NoError(t, err)
		require.Len(t, licenses.Children, 1)
		assert.Equal(t, "license", licenses.Children[0].Name)
		assert.Equal(t, "MIT", licenses.Children[0].Child("id").Value())
	})
	t.Run("Should emit a lone expression when supported", func(t *testing.T) {
		f := factory(t, spec.V1_4)
		licenses, err := f.Licenses([]model.License{&model.SpdxLicense{ID: "MIT"}, expr})
		require.NoError(t, err)
		require.Len(t, licenses.Children, 1)
		n := licenses.Children[0]
		assert.Equal(t, "expression", n.Name)
		assert.False(t, n.Wrap)
		assert.Equal(t, "MIT OR Apache-2.0", n.Text.Value())
	})
	t.Run("Should only emit fields of the constructed variant", func(t *testing.T) {
		f := factory(t, spec.V1_6)
		n, err := f.License(&model.NamedLicense{
			Name:            "Custom",
			URL:             "https://example.com/license",
			Text:            &model.Attachment{Content: "text", ContentType: "text/plain"},
			Acknowledgement: model.AcknowledgementDeclared,
		})
		require.NoError(t, err)
		assert.True(t, n.Wrap)
		assert.Nil(t, n.Child("id"))
		assert.Equal(t, "Custom", n.Child("name").Value())
		assert.Equal(t, "declared", n.Child("acknowledgement").Value())
		text := n.Child("text")
		require.NotNil(t, text)
		assert.Equal(t, "content-type", text.Child("contentType").ElementName())
	})
	t.Run("Should gate acknowledgements to versions that define them", func(t *testing.T) {
		f := factory(t, spec.V1_5)
		n, err := f.License(&model.SpdxLicense{ID: "MIT", Acknowledgement: model.AcknowledgementConcluded})
		require.NoError(t, err)
		assert.Nil(t, n.Child("acknowledgement"))
	})
	t.Run("Should render less common SPDX ids", func(t *testing.T) {
		f := factory(t, spec.V1_6)
		n, err := f.License(&model.SpdxLicense{ID: "BSD-3-Clause-Attribution"})
		require.NoError(t, err)
		assert.Equal(t, "BSD-3-Clause-Attribution", n.Child("id").Value())
	})
	t.Run("Should report SPDX ids outside the list", func(t *testing.T) {
		f := factory(t, spec.V1_6)
		c := library("x", "1")
		c.BomRef = model.NewBomRef("x-ref")
		c.Licenses = []model.License{&model.SpdxLicense{ID: "nope"}}
		_, err := f.Component(c)
		var nerr *Error
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, KindComponent, nerr.Kind)
		assert.Equal(t, "licenses.id", nerr.Field)
		assert.Equal(t, "x-ref", nerr.Ref)
	})
	t.Run("Should gate metadata licenses independently", func(t *testing.T) {
		md := &model.Metadata{
			Licenses:  []model.License{&model.SpdxLicense{ID: "MIT"}},
			Component: &model.Component{Type: model.ComponentTypeApplication, Name: "app", Licenses: []model.License{&model.SpdxLicense{ID: "MIT"}}},
		}
		n, err := factory(t, spec.V1_2).Metadata(md)
		require.NoError(t, err)
		assert.Nil(t, n.Child("licenses"))
		assert.NotNil(t, n.Path("component", "licenses"))

		n, err = factory(t, spec.V1_3).Metadata(md)
		require.NoError(t, err)
		assert.NotNil(t, n.Child("licenses"))
	})
}

func TestFactory_Component(t *testing.T) {
	t.Run("Should require a name", func(t *testing.T) {
		_, err := factory(t, spec.V1_4).Component(&model.Component{Type: model.ComponentTypeLibrary})
		assert.ErrorIs(t, err, ErrMissingName)
	})
	t.Run("Should drop component types the version does not know", func(t *testing.T) {
		c := &model.Component{Type: model.ComponentTypeContainer, Name: "img"}
		n, err := factory(t, spec.V1_1).Component(c)
		require.NoError(t, err)
		assert.Nil(t, n)

		n, err = factory(t, spec.V1_2).Component(c)
		require.NoError(t, err)
		assert.NotNil(t, n)
	})
	t.Run("Should emit an empty version where one is required", func(t *testing.T) {
		n, err := factory(t, spec.V1_3).Component(library("x", ""))
		require.NoError(t, err)
		require.NotNil(t, n.Child("version"))
		assert.Equal(t, "", n.Child("version").Value())

		n, err = factory(t, spec.V1_4).Component(library("x", ""))
		require.NoError(t, err)
		assert.Nil(t, n.Child("version"))
	})
	t.Run("Should emit modified only for 1.0", func(t *testing.T) {
		n, err := factory(t, spec.V1_0).Component(library("x", "1"))
		require.NoError(t, err)
		require.NotNil(t, n.Child("modified"))
		assert.False(t, n.Child("modified").BoolValue())

		n, err = factory(t, spec.V1_1).Component(library("x", "1"))
		require.NoError(t, err)
		assert.Nil(t, n.Child("modified"))
	})
	t.Run("Should gate fields by version", func(t *testing.T) {
		c := library("x", "1")
		c.BomRef = model.NewBomRef("x")
		c.MimeType = "application/java-archive"
		c.Scope = model.ScopeOptional
		c.Author = "someone"
		c.Supplier = &model.OrganizationalEntity{Name: "acme", URLs: []string{"https://acme.example"}}
		c.OmniborIDs = []string{"gitoid:blob:sha1:" + sha1Digest}
		c.Properties = []model.Property{{Name: "k", Value: "v"}}

		n, err := factory(t, spec.V1_0).Component(c)
		require.NoError(t, err)
		for _, field := range []string{"bom-ref", "mime-type", "scope", "author", "supplier", "omniborId", "properties"} {
			assert.Nil(t, n.Child(field), field)
		}

		n, err = factory(t, spec.V1_6).Component(c)
		require.NoError(t, err)
		for _, field := range []string{"bom-ref", "mime-type", "scope", "author", "supplier", "omniborId", "properties"} {
			assert.NotNil(t, n.Child(field), field)
		}
		assert.True(t, n.Child("omniborId").Inline)
		assert.True(t, n.Path("supplier", "url").Inline)
	})
	t.Run("Should drop invalid hashes", func(t *testing.T) {
		c := library("x", "1")
		c.Hashes = []model.Hash{
			{Algorithm: model.HashSHA1, Content: sha1Digest},
			{Algorithm: model.HashSHA1, Content: "abc"},
			{Algorithm: model.HashBLAKE3, Content: sha1Digest},
		}
		n, err := factory(t, spec.V1_1).Component(c)
		require.NoError(t, err)
		require.Len(t, n.Child("hashes").Children, 1)

		n, err = factory(t, spec.V1_2).Component(c)
		require.NoError(t, err)
		assert.Len(t, n.Child("hashes").Children, 2)
	})
	t.Run("Should not mutate the input", func(t *testing.T) {
		c := library("x", "")
		c.Components = []*model.Component{library("b", "1"), library("a", "1")}
		_, err := factory(t, spec.V1_3, WithSortLists(true)).Component(c)
		require.NoError(t, err)
		assert.Equal(t, "b", c.Components[0].Name)
		assert.Equal(t, "", c.Version)
		assert.False(t, c.BomRef.IsSet())
	})
}

func TestFactory_ExternalReference(t *testing.T) {
	link := "urn:cdx:3e671687-395b-41f5-a30f-a58921a69b79/1"
	t.Run("Should drop BomLink targets before BomLink support", func(t *testing.T) {
		ref := &model.ExternalReference{Type: model.ExternalReferenceBOM, URL: link}
		n, err := factory(t, spec.V1_4).ExternalReference(ref)
		require.NoError(t, err)
		assert.Nil(t, n)
		n, err = factory(t, spec.V1_5).ExternalReference(ref)
		require.NoError(t, err)
		assert.Equal(t, link, n.Child("url").Value())
	})
	t.Run("Should drop unknown reference types", func(t *testing.T) {
		ref := &model.ExternalReference{Type: model.ExternalReferenceReleaseNotes, URL: "https://x.example"}
		n, err := factory(t, spec.V1_3).ExternalReference(ref)
		require.NoError(t, err)
		assert.Nil(t, n)
	})
	t.Run("Should gate reference hashes", func(t *testing.T) {
		ref := &model.ExternalReference{
			Type:   model.ExternalReferenceDistribution,
			URL:    "https://x.example/a.tgz",
			Hashes: []model.Hash{{Algorithm: model.HashSHA1, Content: sha1Digest}},
		}
		n, _ := factory(t, spec.V1_2).ExternalReference(ref)
		assert.Nil(t, n.Child("hashes"))
		n, _ = factory(t, spec.V1_3).ExternalReference(ref)
		assert.NotNil(t, n.Child("hashes"))
	})
}

func TestFactory_Tools(t *testing.T) {
	tool := &model.Component{Type: model.ComponentTypeApplication, Name: "bomkit", Version: "1.0", Group: "compozy"}
	t.Run("Should use the structured shape when tool references are supported", func(t *testing.T) {
		n, err := factory(t, spec.V1_5).Tools(&model.Tools{Components: []*model.Component{tool}})
		require.NoError(t, err)
		assert.Equal(t, tree.KindObject, n.Kind)
		require.NotNil(t, n.Child("components"))
		assert.Equal(t, []string{"bomkit"}, names(n.Child("components"), "name"))
	})
	t.Run("Should convert to the legacy list when a legacy tool exists", func(t *testing.T) {
		n, err := factory(t, spec.V1_5).Tools(&model.Tools{
			Components: []*model.Component{tool},
			Tools:      []*model.Tool{{Vendor: "acme", Name: "scan"}},
		})
		require.NoError(t, err)
		assert.Equal(t, tree.KindList, n.Kind)
		assert.Equal(t, []string{"scan", "bomkit"}, names(n, "name"))
		assert.Equal(t, "compozy", n.Children[1].Child("vendor").Value())
	})
	t.Run("Should convert structured tools for older versions", func(t *testing.T) {
		n, err := factory(t, spec.V1_4).Tools(&model.Tools{Services: []*model.Service{{Name: "api", Group: "acme"}}})
		require.NoError(t, err)
		assert.Equal(t, tree.KindList, n.Kind)
		assert.Equal(t, "tool", n.Children[0].Name)
	})
}

func TestFactory_Bom(t *testing.T) {
	t.Run("Should order root children by the schema sequence", func(t *testing.T) {
		ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		a := library("a", "1")
		a.BomRef = model.NewBomRef("a")
		vuln := &model.Vulnerability{ID: "CVE-1"}
		vuln.Affect(a)
		b := &model.Bom{
			Version:         2,
			SerialNumber:    "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79",
			Metadata:        &model.Metadata{Timestamp: &ts},
			Components:      []*model.Component{a},
			Services:        []*model.Service{{Name: "svc", BomRef: model.NewBomRef("svc")}},
			Properties:      []model.Property{{Name: "k", Value: "v"}},
			Vulnerabilities: []*model.Vulnerability{vuln},
			Formulation:     []*model.Formula{{BomRef: model.NewBomRef("f")}},
		}
		n, err := factory(t, spec.V1_6).Bom(b)
		require.NoError(t, err)
		var order []string
		for _, c := range n.Children {
			order = append(order, c.Name)
		}
		assert.Equal(t, []string{
			"metadata", "components", "services", "dependencies", "properties", "vulnerabilities", "formulation",
		}, order)
		assert.Equal(t, "2024-01-02T03:04:05Z", n.Path("metadata", "timestamp").Value())
		assert.Equal(t, "2", n.Child("version").Value())
		assert.Equal(t, "a", n.Path("vulnerabilities").Children[0].Path("affects").Children[0].Child("ref").Value())
	})
	t.Run("Should keep only the components element for 1.0", func(t *testing.T) {
		n, err := factory(t, spec.V1_0).Bom(&model.Bom{
			Version:      1,
			SerialNumber: "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79",
			Metadata:     &model.Metadata{Component: library("app", "1")},
			Services:     []*model.Service{{Name: "svc"}},
		})
		require.NoError(t, err)
		require.Len(t, n.Children, 1)
		assert.Equal(t, "components", n.Children[0].Name)
		assert.Nil(t, n.Child("serialNumber"))
	})
	t.Run("Should drop affects that point outside the document", func(t *testing.T) {
		outside := library("outside", "1")
		outside.BomRef = model.NewBomRef("outside")
		vuln := &model.Vulnerability{ID: "CVE-1"}
		vuln.Affect(outside)
		n, err := factory(t, spec.V1_4).Bom(&model.Bom{Vulnerabilities: []*model.Vulnerability{vuln}})
		require.NoError(t, err)
		assert.Nil(t, n.Child("vulnerabilities").Children[0].Child("affects"))
	})
	t.Run("Should drop ratings with unknown methods", func(t *testing.T) {
		score := 9.8
		v := &model.Vulnerability{ID: "CVE-1", Ratings: []model.VulnerabilityRating{
			{Score: &score, Method: model.RatingCVSSv4},
			{Score: &score, Method: model.RatingCVSSv31, Severity: model.SeverityCritical},
		}}
		n, err := factory(t, spec.V1_4).Vulnerability(v)
		require.NoError(t, err)
		require.Len(t, n.Child("ratings").Children, 1)
		assert.Equal(t, "9.8", n.Child("ratings").Children[0].Child("score").Value())
	})
	t.Run("Should name the analysis response list per format", func(t *testing.T) {
		v := &model.Vulnerability{ID: "CVE-1", Analysis: &model.VulnerabilityAnalysis{
			State:     model.AnalysisExploitable,
			Responses: []model.AnalysisResponse{model.ResponseUpdate},
		}}
		n, err := factory(t, spec.V1_4).Vulnerability(v)
		require.NoError(t, err)
		responses := n.Path("analysis", "response")
		require.NotNil(t, responses)
		assert.Equal(t, "responses", responses.ElementName())
	})
}

func TestFactory_DependencyGraph(t *testing.T) {
	t.Run("Should use the discriminated token of a duplicate", func(t *testing.T) {
		first := library("first", "1")
		first.BomRef = model.NewBomRef("foo")
		second := library("second", "1")
		second.BomRef = model.NewBomRef("foo")
		second.DependsOn(first)
		first.DependsOn(second)
		b := &model.Bom{Components: []*model.Component{first, second}}

		var graph *tree.Node
		err := bomref.Session(b, func(_ *bomref.Discriminator) error {
			var err error
			graph, err = factory(t, spec.V1_6).DependencyGraph(b)
			return err
		})
		require.NoError(t, err)
		require.Len(t, graph.Children, 2)
		assert.Equal(t, "foo", graph.Children[0].Child("ref").Value())
		newRef := graph.Children[1].Child("ref").Value()
		assert.NotEqual(t, "foo", newRef)
		assert.Contains(t, newRef, bomref.Prefix)
		assert.Equal(t, newRef, graph.Children[0].Child("dependsOn").Children[0].Value())
		deps := graph.Children[1].Child("dependsOn")
		require.NotNil(t, deps)
		assert.Equal(t, "foo", deps.Children[0].Value())
		assert.Equal(t, "ref", deps.Children[0].XMLAttr)
		assert.Equal(t, "foo", second.BomRef.Value())
	})
	t.Run("Should reject self dependencies", func(t *testing.T) {
		a := library("a", "1")
		a.BomRef = model.NewBomRef("a")
		a.DependsOn(a)
		_, err := factory(t, spec.V1_4).Bom(&model.Bom{Components: []*model.Component{a}})
		var nerr *Error
		require.ErrorAs(t, err, &nerr)
		assert.True(t, errors.Is(err, ErrSelfReference))
		assert.Equal(t, KindComponent, nerr.Kind)
		assert.Equal(t, "dependencies", nerr.Field)
		assert.Equal(t, "a", nerr.Ref)
	})
	t.Run("Should filter targets that are not emitted and de-duplicate", func(t *testing.T) {
		a := library("a", "1")
		a.BomRef = model.NewBomRef("a")
		b := library("b", "1")
		b.BomRef = model.NewBomRef("b")
		dropped := &model.Component{Type: model.ComponentTypeData, Name: "d", BomRef: model.NewBomRef("d")}
		a.DependsOn(b, b, dropped)
		graph, err := factory(t, spec.V1_4).DependencyGraph(&model.Bom{Components: []*model.Component{a, b, dropped}})
		require.NoError(t, err)
		require.Len(t, graph.Children, 2)
		require.Len(t, graph.Children[0].Child("dependsOn").Children, 1)
		assert.Equal(t, "b", graph.Children[0].Child("dependsOn").Children[0].Value())
		assert.Nil(t, graph.Children[1].Child("dependsOn"))
	})
	t.Run("Should require a ref on entities that declare dependencies", func(t *testing.T) {
		a := library("a", "1")
		b := library("b", "1")
		b.BomRef = model.NewBomRef("b")
		a.DependsOn(b)
		_, err := factory(t, spec.V1_4).Bom(&model.Bom{Components: []*model.Component{a, b}})
		assert.ErrorIs(t, err, ErrMissingRef)
	})
	t.Run("Should sort entries when requested", func(t *testing.T) {
		z := library("z", "1")
		z.BomRef = model.NewBomRef("z")
		y := library("y", "1")
		y.BomRef = model.NewBomRef("y")
		x := library("x", "1")
		x.BomRef = model.NewBomRef("x")
		z.DependsOn(y, x)
		b := &model.Bom{Components: []*model.Component{z, y, x}}
		graph, err := factory(t, spec.V1_4, WithSortLists(true)).DependencyGraph(b)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z"}, names(graph, "ref"))
		deps := graph.Children[2].Child("dependsOn")
		assert.Equal(t, "x", deps.Children[0].Value())
		assert.Equal(t, "y", deps.Children[1].Value())
	})
	t.Run("Should omit the graph for versions without it", func(t *testing.T) {
		graph, err := factory(t, spec.V1_1).DependencyGraph(&model.Bom{Components: []*model.Component{library("a", "1")}})
		require.NoError(t, err)
		assert.Nil(t, graph)
	})
}

func TestFactory_Repeatable(t *testing.T) {
	t.Run("Should normalize one entity under many versions without leaking state", func(t *testing.T) {
		c := library("x", "")
		c.Licenses = []model.License{&model.LicenseExpression{Expression: "MIT"}}
		for _, v := range spec.All() {
			f := factory(t, v)
			first, err := f.Component(c)
			require.NoError(t, err)
			second, err := f.Component(c)
			require.NoError(t, err)
			assert.Equal(t, first, second, v)
		}
	})
}
