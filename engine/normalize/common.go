package normalize

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
)

// Hash returns nil when the algorithm or the digest is not valid for the version.
func (f *Factory) Hash(h model.Hash) (*tree.Node, error) {
	if !f.spec.SupportsHashValue(h.Algorithm, h.Content) {
		f.log.Debug("dropping unsupported hash", "alg", h.Algorithm)
		return nil, nil
	}
	return tree.Object("hash").
		AddAttr(tree.String("alg", string(h.Algorithm))).
		WithText(tree.Token("content", h.Content)), nil
}

func (f *Factory) hashes(hs []model.Hash) *tree.Node {
	if f.opts.SortLists {
		hs = slices.Clone(hs)
		slices.SortStableFunc(hs, func(a, b model.Hash) int {
			return cmp.Or(cmp.Compare(a.Algorithm, b.Algorithm), cmp.Compare(a.Content, b.Content))
		})
	}
	list := tree.List("hashes")
	for _, h := range hs {
		n, _ := f.Hash(h)
		list.Add(n)
	}
	return tree.NonEmpty(list)
}

// ExternalReference drops references whose type is unknown to the version and BomLink
// targets the version cannot express.
func (f *Factory) ExternalReference(ref *model.ExternalReference) (*tree.Node, error) {
	if ref == nil || !f.has(spec.FeatureExternalReferences) {
		return nil, nil
	}
	if !f.spec.SupportsExternalReferenceType(ref.Type) {
		f.log.Debug("dropping external reference with unsupported type", "type", ref.Type)
		return nil, nil
	}
	if model.IsBomLink(ref.URL) && !f.has(spec.FeatureBomLink) {
		f.log.Debug("dropping BomLink external reference", "url", ref.URL)
		return nil, nil
	}
	n := tree.Object("reference").
		AddAttr(tree.String("type", string(ref.Type))).
		Add(
			tree.String("url", ref.URL),
			tree.NonEmpty(tree.String("comment", ref.Comment)),
		)
	if f.has(spec.FeatureExternalReferenceHashes) {
		n.Add(f.hashes(ref.Hashes))
	}
	return n, nil
}

func (f *Factory) externalReferences(refs []*model.ExternalReference) *tree.Node {
	if !f.has(spec.FeatureExternalReferences) {
		return nil
	}
	if f.opts.SortLists {
		refs = slices.Clone(refs)
		slices.SortStableFunc(refs, func(a, b *model.ExternalReference) int {
			if a == nil || b == nil {
				return 0
			}
			return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.URL, b.URL))
		})
	}
	list := tree.List("externalReferences")
	for _, ref := range refs {
		n, _ := f.ExternalReference(ref)
		list.Add(n)
	}
	return tree.NonEmpty(list)
}

func (f *Factory) Property(p model.Property) (*tree.Node, error) {
	if !f.has(spec.FeatureProperties) || p.Name == "" {
		return nil, nil
	}
	return tree.Object("property").
		AddAttr(tree.String("name", p.Name)).
		WithText(tree.String("value", p.Value)), nil
}

func (f *Factory) properties(ps []model.Property) *tree.Node {
	if !f.has(spec.FeatureProperties) {
		return nil
	}
	if f.opts.SortLists {
		ps = slices.Clone(ps)
		slices.SortStableFunc(ps, func(a, b model.Property) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Value, b.Value))
		})
	}
	list := tree.List("properties")
	for _, p := range ps {
		n, _ := f.Property(p)
		list.Add(n)
	}
	return tree.NonEmpty(list)
}

// OrganizationalContact renders c under element name.
func (f *Factory) OrganizationalContact(name string, c model.OrganizationalContact) (*tree.Node, error) {
	if c.IsZero() {
		return nil, nil
	}
	return tree.Object(name,
		tree.NonEmpty(tree.NormalizedString("name", c.Name)),
		tree.NonEmpty(tree.NormalizedString("email", c.Email)),
		tree.NonEmpty(tree.NormalizedString("phone", c.Phone)),
	), nil
}

func (f *Factory) contacts(listName, itemName string, cs []model.OrganizationalContact) *tree.Node {
	list := tree.List(listName)
	for _, c := range cs {
		n, _ := f.OrganizationalContact(itemName, c)
		list.Add(n)
	}
	return tree.NonEmpty(list)
}

// OrganizationalEntity renders e under element name. URLs and contacts repeat in XML.
func (f *Factory) OrganizationalEntity(name string, e *model.OrganizationalEntity) (*tree.Node, error) {
	if e == nil {
		return nil, nil
	}
	urls := tree.List("url").Inlined()
	for _, u := range e.URLs {
		if u != "" {
			urls.Add(tree.String("url", u))
		}
	}
	n := tree.Object(name,
		tree.NonEmpty(tree.NormalizedString("name", e.Name)),
		tree.NonEmpty(urls),
	)
	if c := f.contacts("contact", "contact", e.Contacts); c != nil {
		n.Add(c.Inlined())
	}
	return tree.NonEmpty(n), nil
}

func (f *Factory) entity(name string, e *model.OrganizationalEntity) *tree.Node {
	n, _ := f.OrganizationalEntity(name, e)
	return n
}

// Attachment renders inline content such as license text.
func (f *Factory) Attachment(name string, a *model.Attachment) (*tree.Node, error) {
	if a == nil || a.Content == "" {
		return nil, nil
	}
	return tree.Object(name).
		AddAttr(
			tree.NonEmpty(tree.Token("contentType", a.ContentType).WithXMLName("content-type")),
			tree.NonEmpty(tree.Token("encoding", a.Encoding)),
		).
		WithText(tree.String("content", a.Content)), nil
}

func timestamp(name string, t *time.Time) *tree.Node {
	if t == nil || t.IsZero() {
		return nil
	}
	return tree.String(name, t.UTC().Format(time.RFC3339))
}

func normalizedString(name, value string) *tree.Node {
	return tree.NonEmpty(tree.NormalizedString(name, value))
}

func nonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
