package normalize

import (
	"cmp"
	"errors"
	"slices"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
)

// Component renders c and its nested components. A component whose type the version
// does not know is dropped together with its children.
func (f *Factory) Component(c *model.Component) (*tree.Node, error) {
	return f.newRun().component(c, true)
}

func (r *run) component(c *model.Component, graph bool) (*tree.Node, error) {
	if c == nil {
		return nil, nil
	}
	if !nonBlank(c.Name) {
		return nil, &Error{Kind: KindComponent, Field: "name", Ref: c.BomRef.Value(), Err: ErrMissingName}
	}
	if !r.spec.SupportsComponentType(c.Type) {
		r.log.Debug("dropping component with unsupported type", "component", c.Name, "type", c.Type)
		return nil, nil
	}
	n := tree.Object("component").AddAttr(tree.String("type", string(c.Type)))
	if r.has(spec.FeatureComponentMimeType) {
		n.AddAttr(tree.NonEmpty(tree.Token("mime-type", c.MimeType)))
	}
	n.AddAttr(r.bomRefAttr(c.Ref()))

	if r.has(spec.FeatureComponentSupplier) {
		n.Add(r.entity("supplier", c.Supplier))
	}
	if r.has(spec.FeatureComponentManufacturer) {
		n.Add(r.entity("manufacturer", c.Manufacturer))
	}
	if r.has(spec.FeatureComponentAuthors) {
		n.Add(r.contacts("authors", "author", c.Authors))
	}
	if r.has(spec.FeatureComponentAuthor) {
		n.Add(normalizedString("author", c.Author))
	}
	if r.has(spec.FeatureComponentPublisher) {
		n.Add(normalizedString("publisher", c.Publisher))
	}
	n.Add(
		normalizedString("group", c.Group),
		tree.NormalizedString("name", c.Name),
	)
	if c.Version == "" && r.has(spec.FeatureRequiresComponentVersion) {
		n.Add(tree.NormalizedString("version", ""))
	} else {
		n.Add(normalizedString("version", c.Version))
	}
	n.Add(normalizedString("description", c.Description))
	if r.has(spec.FeatureComponentScope) && c.Scope != "" {
		n.Add(tree.String("scope", string(c.Scope)))
	}
	n.Add(r.hashes(c.Hashes))
	licenses, err := r.Licenses(c.Licenses)
	if err != nil {
		return nil, withRef(err, KindComponent, c.BomRef.Value())
	}
	n.Add(
		licenses,
		normalizedString("copyright", c.Copyright),
		tree.NonEmpty(tree.String("cpe", c.CPE)),
		tree.NonEmpty(tree.String("purl", c.PURL)),
	)
	if r.has(spec.FeatureComponentOmniborID) {
		n.Add(inlineStrings("omniborId", c.OmniborIDs))
	}
	if r.has(spec.FeatureComponentSWHID) {
		n.Add(inlineStrings("swhid", c.SWHIDs))
	}
	if r.has(spec.FeatureComponentModified) {
		n.Add(tree.Bool("modified", c.Modified))
	}
	n.Add(r.externalReferences(c.ExternalReferences), r.properties(c.Properties))

	r.emit(KindComponent, c.Ref(), c.Dependencies, graph)

	children, err := r.components("components", c.Components, graph)
	if err != nil {
		return nil, err
	}
	n.Add(children)
	if r.has(spec.FeatureComponentEvidence) {
		evidence, err := r.ComponentEvidence(c.Evidence)
		if err != nil {
			return nil, withRef(err, KindComponent, c.BomRef.Value())
		}
		n.Add(evidence)
	}
	return n, nil
}

func (r *run) components(name string, cs []*model.Component, graph bool) (*tree.Node, error) {
	if r.opts.SortLists {
		cs = slices.Clone(cs)
		slices.SortStableFunc(cs, compareComponents)
	}
	list := tree.List(name)
	for _, c := range cs {
		n, err := r.component(c, graph)
		if err != nil {
			return nil, err
		}
		list.Add(n)
	}
	return tree.NonEmpty(list), nil
}

func compareComponents(a, b *model.Component) int {
	if a == nil || b == nil {
		return 0
	}
	return cmp.Or(
		cmp.Compare(a.Group, b.Group),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Version, b.Version),
		cmp.Compare(a.BomRef.Value(), b.BomRef.Value()),
	)
}

func (f *Factory) ComponentEvidence(e *model.ComponentEvidence) (*tree.Node, error) {
	if e.IsZero() || !f.has(spec.FeatureComponentEvidence) {
		return nil, nil
	}
	licenses, err := f.Licenses(e.Licenses)
	if err != nil {
		return nil, err
	}
	copyright := tree.List("copyright")
	for _, text := range e.Copyright {
		if text != "" {
			copyright.Add(tree.Object("text").WithText(tree.NormalizedString("text", text)))
		}
	}
	return tree.NonEmpty(tree.Object("evidence", licenses, tree.NonEmpty(copyright))), nil
}

// Service renders s and its nested services.
func (f *Factory) Service(s *model.Service) (*tree.Node, error) {
	return f.newRun().service(s, true)
}

func (r *run) service(s *model.Service, graph bool) (*tree.Node, error) {
	if s == nil || !r.has(spec.FeatureServices) {
		return nil, nil
	}
	if !nonBlank(s.Name) {
		return nil, &Error{Kind: KindService, Field: "name", Ref: s.BomRef.Value(), Err: ErrMissingName}
	}
	n := tree.Object("service").AddAttr(r.bomRefAttr(s.Ref()))
	n.Add(
		r.entity("provider", s.Provider),
		normalizedString("group", s.Group),
		tree.NormalizedString("name", s.Name),
		normalizedString("version", s.Version),
		normalizedString("description", s.Description),
	)
	endpoints := tree.List("endpoints")
	for _, ep := range s.Endpoints {
		if ep != "" {
			endpoints.Add(tree.String("endpoint", ep))
		}
	}
	n.Add(tree.NonEmpty(endpoints))
	if s.Authenticated != nil {
		n.Add(tree.Bool("authenticated", *s.Authenticated))
	}
	if s.XTrustBoundary != nil {
		n.Add(tree.Bool("x-trust-boundary", *s.XTrustBoundary))
	}
	licenses, err := r.Licenses(s.Licenses)
	if err != nil {
		return nil, withRef(err, KindService, s.BomRef.Value())
	}
	n.Add(licenses, r.externalReferences(s.ExternalReferences), r.properties(s.Properties))

	r.emit(KindService, s.Ref(), s.Dependencies, graph)

	children, err := r.services("services", s.Services, graph)
	if err != nil {
		return nil, err
	}
	return n.Add(children), nil
}

func (r *run) services(name string, ss []*model.Service, graph bool) (*tree.Node, error) {
	if !r.has(spec.FeatureServices) {
		return nil, nil
	}
	if r.opts.SortLists {
		ss = slices.Clone(ss)
		slices.SortStableFunc(ss, func(a, b *model.Service) int {
			if a == nil || b == nil {
				return 0
			}
			return cmp.Or(
				cmp.Compare(a.Group, b.Group),
				cmp.Compare(a.Name, b.Name),
				cmp.Compare(a.Version, b.Version),
				cmp.Compare(a.BomRef.Value(), b.BomRef.Value()),
			)
		})
	}
	list := tree.List(name)
	for _, s := range ss {
		n, err := r.service(s, graph)
		if err != nil {
			return nil, err
		}
		list.Add(n)
	}
	return tree.NonEmpty(list), nil
}

func inlineStrings(name string, values []string) *tree.Node {
	list := tree.List(name).Inlined()
	for _, v := range values {
		if v != "" {
			list.Add(tree.String(name, v))
		}
	}
	return tree.NonEmpty(list)
}

// withRef attaches the owning entity to a license error.
func withRef(err error, kind EntityKind, ref string) error {
	var nerr *Error
	if errors.As(err, &nerr) && nerr.Kind == KindLicense {
		return &Error{Kind: kind, Field: "licenses." + nerr.Field, Ref: ref, Err: nerr.Err}
	}
	return err
}
