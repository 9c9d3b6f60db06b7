package intake

import (
	"errors"
	"fmt"
	"time"

	"github.com/compozy/bomkit/engine/model"
)

var (
	ErrUnknownRef     = errors.New("unknown bom-ref")
	ErrNotDependable  = errors.New("bom-ref does not name a component or service")
	ErrInvalidLicense = errors.New("license entry needs an id, a name or an expression")
)

// ToModel builds the BOM and resolves every bom-ref string to the entity carrying it.
// When several entities share a token the first one in document order wins.
func (d *Document) ToModel() (*model.Bom, error) {
	c := &converter{refs: make(map[string]*model.BomRef), owners: make(map[string]dependable)}
	b, err := c.bom(d)
	if err != nil {
		return nil, err
	}
	if err := c.link(); err != nil {
		return nil, err
	}
	if err := model.Validate(b); err != nil {
		return nil, err
	}
	return b, nil
}

type dependable interface {
	model.Referenceable
	DependsOn(targets ...model.Referenceable)
}

type pendingEdge struct {
	path  string
	owner string
	on    []string
}

type pendingAffect struct {
	path   string
	target **model.BomRef
	ref    string
}

type converter struct {
	refs    map[string]*model.BomRef
	owners  map[string]dependable
	edges   []pendingEdge
	affects []pendingAffect
	inline  []inlineEdge
}

type inlineEdge struct {
	path  string
	owner dependable
	on    []string
}

func (c *converter) register(token string, e model.Referenceable) {
	if token == "" {
		return
	}
	if _, ok := c.refs[token]; ok {
		return
	}
	c.refs[token] = e.Ref()
	if d, ok := e.(dependable); ok {
		c.owners[token] = d
	}
}

func (c *converter) bom(d *Document) (*model.Bom, error) {
	b := &model.Bom{Version: d.Version, SerialNumber: d.SerialNumber}
	if b.Version == 0 {
		b.Version = 1
	}
	if b.SerialNumber != "" && !model.IsSerialNumber(b.SerialNumber) {
		return nil, fmt.Errorf("serialNumber: %w: %q", model.ErrInvalidSerialNumber, b.SerialNumber)
	}
	var err error
	if d.Metadata != nil {
		if b.Metadata, err = c.metadata(d.Metadata); err != nil {
			return nil, err
		}
	}
	if b.Components, err = c.components("components", d.Components); err != nil {
		return nil, err
	}
	if b.Services, err = c.services("services", d.Services); err != nil {
		return nil, err
	}
	b.ExternalReferences = externalReferences(d.ExternalReferences)
	for i, v := range d.Vulnerabilities {
		vuln, err := c.vulnerability(fmt.Sprintf("vulnerabilities[%d]", i), v)
		if err != nil {
			return nil, err
		}
		b.Vulnerabilities = append(b.Vulnerabilities, vuln)
	}
	for i, f := range d.Formulation {
		if f == nil {
			continue
		}
		path := fmt.Sprintf("formulation[%d]", i)
		formula := &model.Formula{BomRef: model.NewBomRef(f.BomRef), Properties: properties(f.Properties)}
		c.register(f.BomRef, formula)
		if formula.Components, err = c.components(path+".components", f.Components); err != nil {
			return nil, err
		}
		if formula.Services, err = c.services(path+".services", f.Services); err != nil {
			return nil, err
		}
		b.Formulation = append(b.Formulation, formula)
	}
	for i, dep := range d.Dependencies {
		c.edges = append(c.edges, pendingEdge{
			path:  fmt.Sprintf("dependencies[%d]", i),
			owner: dep.Ref,
			on:    dep.DependsOn,
		})
	}
	b.Properties = properties(d.Properties)
	return b, nil
}

func (c *converter) metadata(m *Metadata) (*model.Metadata, error) {
	out := &model.Metadata{
		Authors:      contacts(m.Authors),
		Manufacture:  entity(m.Manufacture),
		Manufacturer: entity(m.Manufacturer),
		Supplier:     entity(m.Supplier),
		Properties:   properties(m.Properties),
	}
	var err error
	if out.Timestamp, err = timestamp("metadata.timestamp", m.Timestamp); err != nil {
		return nil, err
	}
	for _, l := range m.Lifecycles {
		out.Lifecycles = append(out.Lifecycles, model.Lifecycle{
			Phase:       model.LifecyclePhase(l.Phase),
			Name:        l.Name,
			Description: l.Description,
		})
	}
	if out.Tools, err = c.tools(m.Tools); err != nil {
		return nil, err
	}
	if m.Component != nil {
		if out.Component, err = c.component("metadata.component", m.Component); err != nil {
			return nil, err
		}
	}
	if out.Licenses, err = licenses("metadata.licenses", m.Licenses); err != nil {
		return nil, err
	}
	return out, nil
}

// tools accepts both the legacy list of tools and the structured components/services form.
func (c *converter) tools(raw any) (*model.Tools, error) {
	switch raw.(type) {
	case nil:
		return nil, nil
	case []any:
		var legacy []Tool
		if err := decodeInto(raw, &legacy); err != nil {
			return nil, fmt.Errorf("metadata.tools: %w", err)
		}
		out := &model.Tools{}
		for _, t := range legacy {
			out.Tools = append(out.Tools, &model.Tool{
				Vendor:             t.Vendor,
				Name:               t.Name,
				Version:            t.Version,
				Hashes:             hashes(t.Hashes),
				ExternalReferences: externalReferences(t.ExternalReferences),
			})
		}
		return out, nil
	default:
		var structured Tools
		if err := decodeInto(raw, &structured); err != nil {
			return nil, fmt.Errorf("metadata.tools: %w", err)
		}
		out := &model.Tools{}
		var err error
		if out.Components, err = c.components("metadata.tools.components", structured.Components); err != nil {
			return nil, err
		}
		if out.Services, err = c.services("metadata.tools.services", structured.Services); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (c *converter) components(path string, in []*Component) ([]*model.Component, error) {
	var out []*model.Component
	for i, dto := range in {
		if dto == nil {
			continue
		}
		comp, err := c.component(fmt.Sprintf("%s[%d]", path, i), dto)
		if err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
	return out, nil
}

func (c *converter) component(path string, dto *Component) (*model.Component, error) {
	comp, err := model.NewComponent(model.ComponentType(dto.Type), dto.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	comp.MimeType = dto.MimeType
	comp.BomRef = model.NewBomRef(dto.BomRef)
	comp.Supplier = entity(dto.Supplier)
	comp.Manufacturer = entity(dto.Manufacturer)
	comp.Authors = contacts(dto.Authors)
	comp.Author = dto.Author
	comp.Publisher = dto.Publisher
	comp.Group = dto.Group
	comp.Version = dto.Version
	comp.Description = dto.Description
	comp.Scope = model.ComponentScope(dto.Scope)
	comp.Hashes = hashes(dto.Hashes)
	comp.Copyright = dto.Copyright
	comp.CPE = dto.CPE
	comp.PURL = dto.PURL
	comp.OmniborIDs = dto.OmniborID
	comp.SWHIDs = dto.SWHID
	comp.Modified = dto.Modified
	comp.ExternalReferences = externalReferences(dto.ExternalReferences)
	comp.Properties = properties(dto.Properties)
	if comp.Licenses, err = licenses(path+".licenses", dto.Licenses); err != nil {
		return nil, err
	}
	if dto.Evidence != nil {
		ev := &model.ComponentEvidence{}
		if ev.Licenses, err = licenses(path+".evidence.licenses", dto.Evidence.Licenses); err != nil {
			return nil, err
		}
		for _, cr := range dto.Evidence.Copyright {
			ev.Copyright = append(ev.Copyright, cr.Text)
		}
		if !ev.IsZero() {
			comp.Evidence = ev
		}
	}
	c.register(dto.BomRef, comp)
	if len(dto.DependsOn) > 0 {
		c.inline = append(c.inline, inlineEdge{path: path + ".dependsOn", owner: comp, on: dto.DependsOn})
	}
	if comp.Components, err = c.components(path+".components", dto.Components); err != nil {
		return nil, err
	}
	return comp, nil
}

func (c *converter) services(path string, in []*Service) ([]*model.Service, error) {
	var out []*model.Service
	for i, dto := range in {
		if dto == nil {
			continue
		}
		p := fmt.Sprintf("%s[%d]", path, i)
		svc, err := model.NewService(dto.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		svc.BomRef = model.NewBomRef(dto.BomRef)
		svc.Provider = entity(dto.Provider)
		svc.Group = dto.Group
		svc.Version = dto.Version
		svc.Description = dto.Description
		svc.Endpoints = dto.Endpoints
		svc.Authenticated = dto.Authenticated
		svc.XTrustBoundary = dto.XTrustBoundary
		svc.ExternalReferences = externalReferences(dto.ExternalReferences)
		svc.Properties = properties(dto.Properties)
		if svc.Licenses, err = licenses(p+".licenses", dto.Licenses); err != nil {
			return nil, err
		}
		c.register(dto.BomRef, svc)
		if len(dto.DependsOn) > 0 {
			c.inline = append(c.inline, inlineEdge{path: p + ".dependsOn", owner: svc, on: dto.DependsOn})
		}
		if svc.Services, err = c.services(p+".services", dto.Services); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, nil
}

func (c *converter) vulnerability(path string, v *Vulnerability) (*model.Vulnerability, error) {
	if v == nil {
		return nil, fmt.Errorf("%s: empty vulnerability", path)
	}
	out := &model.Vulnerability{
		BomRef:         model.NewBomRef(v.BomRef),
		ID:             v.ID,
		Source:         vulnerabilitySource(v.Source),
		CWEs:           v.CWEs,
		Description:    v.Description,
		Detail:         v.Detail,
		Recommendation: v.Recommendation,
		Properties:     properties(v.Properties),
	}
	for _, r := range v.References {
		out.References = append(out.References, model.VulnerabilityReference{
			ID:     r.ID,
			Source: model.VulnerabilitySource{Name: r.Source.Name, URL: r.Source.URL},
		})
	}
	for _, r := range v.Ratings {
		out.Ratings = append(out.Ratings, model.VulnerabilityRating{
			Source:        vulnerabilitySource(r.Source),
			Score:         r.Score,
			Severity:      model.Severity(r.Severity),
			Method:        model.RatingMethod(r.Method),
			Vector:        r.Vector,
			Justification: r.Justification,
		})
	}
	for _, a := range v.Advisories {
		out.Advisories = append(out.Advisories, model.Advisory{Title: a.Title, URL: a.URL})
	}
	var err error
	if out.Created, err = timestamp(path+".created", v.Created); err != nil {
		return nil, err
	}
	if out.Published, err = timestamp(path+".published", v.Published); err != nil {
		return nil, err
	}
	if out.Updated, err = timestamp(path+".updated", v.Updated); err != nil {
		return nil, err
	}
	if v.Analysis != nil {
		a := &model.VulnerabilityAnalysis{
			State:         model.AnalysisState(v.Analysis.State),
			Justification: model.AnalysisJustification(v.Analysis.Justification),
			Detail:        v.Analysis.Detail,
		}
		for _, r := range v.Analysis.Response {
			a.Responses = append(a.Responses, model.AnalysisResponse(r))
		}
		out.Analysis = a
	}
	out.Affects = make([]model.VulnerabilityAffect, len(v.Affects))
	for i, a := range v.Affects {
		for _, av := range a.Versions {
			out.Affects[i].Versions = append(out.Affects[i].Versions, model.AffectedVersion{
				Version: av.Version,
				Range:   av.Range,
				Status:  model.AffectedStatus(av.Status),
			})
		}
		c.affects = append(c.affects, pendingAffect{
			path:   fmt.Sprintf("%s.affects[%d]", path, i),
			target: &out.Affects[i].Ref,
			ref:    a.Ref,
		})
	}
	if len(out.Affects) == 0 {
		out.Affects = nil
	}
	c.register(v.BomRef, out)
	return out, nil
}

// link resolves the collected reference strings once every entity is registered.
func (c *converter) link() error {
	for _, e := range c.inline {
		targets, err := c.targets(e.path, e.on)
		if err != nil {
			return err
		}
		e.owner.DependsOn(targets...)
	}
	for _, e := range c.edges {
		if e.owner == "" {
			return fmt.Errorf("%s.ref: %w: empty", e.path, ErrUnknownRef)
		}
		owner, ok := c.owners[e.owner]
		if !ok {
			if _, known := c.refs[e.owner]; known {
				return fmt.Errorf("%s.ref: %w: %q", e.path, ErrNotDependable, e.owner)
			}
			return fmt.Errorf("%s.ref: %w: %q", e.path, ErrUnknownRef, e.owner)
		}
		targets, err := c.targets(e.path+".dependsOn", e.on)
		if err != nil {
			return err
		}
		owner.DependsOn(targets...)
	}
	for _, a := range c.affects {
		ref, ok := c.refs[a.ref]
		if !ok {
			return fmt.Errorf("%s.ref: %w: %q", a.path, ErrUnknownRef, a.ref)
		}
		*a.target = ref
	}
	return nil
}

func (c *converter) targets(path string, tokens []string) ([]model.Referenceable, error) {
	out := make([]model.Referenceable, 0, len(tokens))
	for i, token := range tokens {
		owner, ok := c.owners[token]
		if !ok {
			if _, known := c.refs[token]; known {
				return nil, fmt.Errorf("%s[%d]: %w: %q", path, i, ErrNotDependable, token)
			}
			return nil, fmt.Errorf("%s[%d]: %w: %q", path, i, ErrUnknownRef, token)
		}
		out = append(out, owner)
	}
	return out, nil
}

func licenses(path string, in []LicenseEntry) ([]model.License, error) {
	var out []model.License
	for i, entry := range in {
		ack := model.LicenseAcknowledgement(entry.Acknowledgement)
		switch {
		case entry.Expression != "":
			out = append(out, &model.LicenseExpression{Expression: entry.Expression, Acknowledgement: ack})
		case entry.License != nil && entry.License.ID != "":
			l := entry.License
			if l.Acknowledgement != "" {
				ack = model.LicenseAcknowledgement(l.Acknowledgement)
			}
			id, ok := model.LookupSPDXLicense(l.ID)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: %w: %q", path, i, model.ErrUnknownSPDXLicense, l.ID)
			}
			out = append(out, &model.SpdxLicense{ID: id, Text: attachment(l.Text), URL: l.URL, Acknowledgement: ack})
		case entry.License != nil && entry.License.Name != "":
			l := entry.License
			if l.Acknowledgement != "" {
				ack = model.LicenseAcknowledgement(l.Acknowledgement)
			}
			out = append(out, &model.NamedLicense{Name: l.Name, Text: attachment(l.Text), URL: l.URL, Acknowledgement: ack})
		default:
			return nil, fmt.Errorf("%s[%d]: %w", path, i, ErrInvalidLicense)
		}
	}
	return out, nil
}

func timestamp(path, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &t, nil
}

func attachment(a *Attachment) *model.Attachment {
	if a == nil {
		return nil
	}
	return &model.Attachment{Content: a.Content, ContentType: a.ContentType, Encoding: a.Encoding}
}

func vulnerabilitySource(s *VulnerabilitySource) *model.VulnerabilitySource {
	if s == nil {
		return nil
	}
	return &model.VulnerabilitySource{Name: s.Name, URL: s.URL}
}

func entity(e *Entity) *model.OrganizationalEntity {
	if e == nil {
		return nil
	}
	return &model.OrganizationalEntity{Name: e.Name, URLs: e.URL, Contacts: contacts(e.Contact)}
}

func contacts(in []Contact) []model.OrganizationalContact {
	var out []model.OrganizationalContact
	for _, c := range in {
		out = append(out, model.OrganizationalContact{Name: c.Name, Email: c.Email, Phone: c.Phone})
	}
	return out
}

func hashes(in []Hash) []model.Hash {
	var out []model.Hash
	for _, h := range in {
		out = append(out, model.Hash{Algorithm: model.HashAlgorithm(h.Alg), Content: h.Content})
	}
	return out
}

func properties(in []Property) []model.Property {
	var out []model.Property
	for _, p := range in {
		out = append(out, model.Property{Name: p.Name, Value: p.Value})
	}
	return out
}

func externalReferences(in []ExternalReference) []*model.ExternalReference {
	var out []*model.ExternalReference
	for _, r := range in {
		out = append(out, &model.ExternalReference{
			URL:     r.URL,
			Type:    model.ExternalReferenceType(r.Type),
			Comment: r.Comment,
			Hashes:  hashes(r.Hashes),
		})
	}
	return out
}
