package normalize

import (
	"errors"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
)

var errNilBom = errors.New("bom is nil")

// Bom renders the document root. Children follow the schema sequence: metadata,
// components, services, externalReferences, dependencies, properties, vulnerabilities,
// formulation.
func (f *Factory) Bom(b *model.Bom) (*tree.Node, error) {
	if b == nil {
		return nil, &Error{Kind: KindBom, Field: "bom", Err: errNilBom}
	}
	r := f.newRun()
	root := tree.Object("bom")
	if f.has(spec.FeatureSerialNumber) && b.SerialNumber != "" {
		root.AddAttr(tree.String("serialNumber", b.SerialNumber))
	}
	root.AddAttr(tree.Int("version", b.EffectiveVersion()))

	metadata, err := r.metadata(b.Metadata)
	if err != nil {
		return nil, err
	}
	components, err := r.components("components", b.Components, true)
	if err != nil {
		return nil, err
	}
	if components == nil && !f.has(spec.FeatureMetadata) {
		// Documents before metadata existed always carry the components element.
		components = tree.List("components")
	}
	services, err := r.services("services", b.Services, true)
	if err != nil {
		return nil, err
	}
	formulation, err := r.formulation(b.Formulation)
	if err != nil {
		return nil, err
	}
	vulnerabilities, err := r.vulnerabilities(b.Vulnerabilities)
	if err != nil {
		return nil, err
	}
	dependencies, err := r.dependencies()
	if err != nil {
		return nil, err
	}
	var properties *tree.Node
	if f.has(spec.FeatureBomProperties) {
		properties = f.properties(b.Properties)
	}
	root.Add(
		metadata,
		components,
		services,
		f.externalReferences(b.ExternalReferences),
		dependencies,
		properties,
		vulnerabilities,
		formulation,
	)
	return root, nil
}

func (f *Factory) Metadata(md *model.Metadata) (*tree.Node, error) {
	return f.newRun().metadata(md)
}

func (r *run) metadata(md *model.Metadata) (*tree.Node, error) {
	if md == nil || !r.has(spec.FeatureMetadata) {
		return nil, nil
	}
	n := tree.Object("metadata", timestamp("timestamp", md.Timestamp))
	if r.has(spec.FeatureMetadataLifecycles) {
		lifecycles := tree.List("lifecycles")
		for _, l := range md.Lifecycles {
			ln, _ := r.Lifecycle(l)
			lifecycles.Add(ln)
		}
		n.Add(tree.NonEmpty(lifecycles))
	}
	tools, err := r.tools(md.Tools)
	if err != nil {
		return nil, err
	}
	n.Add(tools, r.contacts("authors", "author", md.Authors))
	component, err := r.component(md.Component, true)
	if err != nil {
		return nil, err
	}
	n.Add(component)
	if r.has(spec.FeatureMetadataManufacture) {
		n.Add(r.entity("manufacture", md.Manufacture))
	}
	if r.has(spec.FeatureMetadataManufacturer) {
		n.Add(r.entity("manufacturer", md.Manufacturer))
	}
	n.Add(r.entity("supplier", md.Supplier))
	if r.has(spec.FeatureMetadataLicenses) {
		licenses, err := r.Licenses(md.Licenses)
		if err != nil {
			return nil, err
		}
		n.Add(licenses)
	}
	n.Add(r.properties(md.Properties))
	return tree.NonEmpty(n), nil
}

// Lifecycle drops entries that carry both or neither of phase and name.
func (f *Factory) Lifecycle(l model.Lifecycle) (*tree.Node, error) {
	if !f.has(spec.FeatureMetadataLifecycles) || l.Validate() != nil {
		return nil, nil
	}
	if l.Phase != "" {
		return tree.Object("lifecycle", tree.String("phase", string(l.Phase))), nil
	}
	return tree.Object("lifecycle",
		tree.NormalizedString("name", l.Name),
		normalizedString("description", l.Description),
	), nil
}

// Tools renders the structured tools object when the version has tool references and no
// legacy tool is present; otherwise every tool is converted to the legacy list.
func (f *Factory) Tools(t *model.Tools) (*tree.Node, error) {
	return f.newRun().tools(t)
}

func (r *run) tools(t *model.Tools) (*tree.Node, error) {
	if t.IsZero() {
		return nil, nil
	}
	if r.has(spec.FeatureToolReferences) && len(t.Tools) == 0 {
		components, err := r.components("components", t.Components, false)
		if err != nil {
			return nil, err
		}
		services, err := r.services("services", t.Services, false)
		if err != nil {
			return nil, err
		}
		return tree.NonEmpty(tree.Object("tools", components, services)), nil
	}
	if !r.has(spec.FeatureLegacyTools) {
		return nil, nil
	}
	legacy := make([]*model.Tool, 0, len(t.Tools)+len(t.Components)+len(t.Services))
	legacy = append(legacy, t.Tools...)
	for _, c := range t.Components {
		if c != nil {
			legacy = append(legacy, model.ToolFromComponent(c))
		}
	}
	for _, s := range t.Services {
		if s != nil {
			legacy = append(legacy, model.ToolFromService(s))
		}
	}
	list := tree.List("tools")
	for _, tool := range legacy {
		n, _ := r.Tool(tool)
		list.Add(n)
	}
	return tree.NonEmpty(list), nil
}

// Tool renders the legacy tool shape.
func (f *Factory) Tool(t *model.Tool) (*tree.Node, error) {
	if t == nil || !f.has(spec.FeatureLegacyTools) {
		return nil, nil
	}
	n := tree.Object("tool",
		normalizedString("vendor", t.Vendor),
		normalizedString("name", t.Name),
		normalizedString("version", t.Version),
		f.hashes(t.Hashes),
	)
	if f.has(spec.FeatureToolExternalReferences) {
		n.Add(f.externalReferences(t.ExternalReferences))
	}
	return tree.NonEmpty(n), nil
}

func (f *Factory) Formula(fm *model.Formula) (*tree.Node, error) {
	return f.newRun().formula(fm)
}

func (r *run) formula(fm *model.Formula) (*tree.Node, error) {
	if fm == nil || !r.has(spec.FeatureFormulation) {
		return nil, nil
	}
	n := tree.Object("formula").AddAttr(r.bomRefAttr(fm.Ref()))
	r.emit(KindFormula, fm.Ref(), nil, false)
	components, err := r.components("components", fm.Components, false)
	if err != nil {
		return nil, err
	}
	services, err := r.services("services", fm.Services, false)
	if err != nil {
		return nil, err
	}
	return n.Add(components, services, r.properties(fm.Properties)), nil
}

func (r *run) formulation(fs []*model.Formula) (*tree.Node, error) {
	if !r.has(spec.FeatureFormulation) {
		return nil, nil
	}
	list := tree.List("formulation")
	for _, fm := range fs {
		n, err := r.formula(fm)
		if err != nil {
			return nil, err
		}
		list.Add(n)
	}
	return tree.NonEmpty(list), nil
}
