package bomref

import "github.com/compozy/bomkit/engine/model"

// Collect returns the token holder of every referenceable entity in b in document order:
// metadata component, metadata tool components and services, components, services,
// vulnerabilities, then formulas with their components and services. Nested components
// and services follow their parent depth-first.
func Collect(b *model.Bom) []*model.BomRef {
	if b == nil {
		return nil
	}
	c := &collector{}
	if md := b.Metadata; md != nil {
		if md.Component != nil {
			c.components(md.Component)
		}
		if md.Tools != nil {
			c.components(md.Tools.Components...)
			c.services(md.Tools.Services...)
		}
	}
	c.components(b.Components...)
	c.services(b.Services...)
	for _, v := range b.Vulnerabilities {
		if v != nil {
			c.add(v)
		}
	}
	for _, f := range b.Formulation {
		if f == nil {
			continue
		}
		c.add(f)
		c.components(f.Components...)
		c.services(f.Services...)
	}
	return c.refs
}

type collector struct {
	refs []*model.BomRef
}

func (c *collector) add(r model.Referenceable) {
	c.refs = append(c.refs, r.Ref())
}

func (c *collector) components(cs ...*model.Component) {
	for _, comp := range cs {
		if comp == nil {
			continue
		}
		c.add(comp)
		c.components(comp.Components...)
	}
}

func (c *collector) services(ss ...*model.Service) {
	for _, svc := range ss {
		if svc == nil {
			continue
		}
		c.add(svc)
		c.services(svc.Services...)
	}
}

// Session discriminates every ref in b, runs fn and restores the original tokens, even
// when fn fails or panics.
func Session(b *model.Bom, fn func(d *Discriminator) error, opts ...Option) error {
	d := NewDiscriminator(Collect(b), opts...)
	defer d.Reset()
	d.Discriminate()
	return fn(d)
}
