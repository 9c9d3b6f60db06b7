package normalize

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
)

// License renders one license variant. Expressions are dropped for versions without
// expression support; nothing else is substituted for them.
func (f *Factory) License(l model.License) (*tree.Node, error) {
	switch lic := l.(type) {
	case nil:
		return nil, nil
	case *model.SpdxLicense:
		if lic == nil {
			return nil, nil
		}
		if !model.IsSPDXLicenseID(lic.ID) {
			return nil, &Error{Kind: KindLicense, Field: "id", Err: fmt.Errorf("%w: %q", model.ErrUnknownSPDXLicense, lic.ID)}
		}
		return f.licenseObject(tree.Token("id", lic.ID), lic.Text, lic.URL, lic.Acknowledgement), nil
	case *model.NamedLicense:
		if lic == nil {
			return nil, nil
		}
		if !nonBlank(lic.Name) {
			return nil, &Error{Kind: KindLicense, Field: "name", Err: ErrMissingName}
		}
		return f.licenseObject(tree.NormalizedString("name", lic.Name), lic.Text, lic.URL, lic.Acknowledgement), nil
	case *model.LicenseExpression:
		if lic == nil {
			return nil, nil
		}
		if !f.has(spec.FeatureLicenseExpression) {
			f.log.Debug("dropping license expression", "expression", lic.Expression)
			return nil, nil
		}
		return tree.Object("expression").
			AddAttr(f.acknowledgement(lic.Acknowledgement)).
			WithText(tree.NormalizedString("expression", lic.Expression)), nil
	default:
		return nil, fmt.Errorf("normalize license: unsupported variant %T", l)
	}
}

func (f *Factory) licenseObject(
	ident *tree.Node,
	text *model.Attachment,
	url string,
	ack model.LicenseAcknowledgement,
) *tree.Node {
	textNode, _ := f.Attachment("text", text)
	return tree.Object("license",
		ident,
		textNode,
		tree.NonEmpty(tree.String("url", url)),
	).AddAttr(f.acknowledgement(ack)).Wrapped()
}

func (f *Factory) acknowledgement(ack model.LicenseAcknowledgement) *tree.Node {
	if ack == "" || !f.has(spec.FeatureLicenseAcknowledgement) {
		return nil
	}
	return tree.String("acknowledgement", string(ack))
}

// Licenses renders a license choice. A document may carry either license entries or a
// single expression, so when the version supports expressions the first one wins and the
// remaining entries are left out. Returns nil when nothing survives.
func (f *Factory) Licenses(ls []model.License) (*tree.Node, error) {
	if len(ls) == 0 {
		return nil, nil
	}
	if f.has(spec.FeatureLicenseExpression) {
		for _, l := range ls {
			expr, ok := l.(*model.LicenseExpression)
			if !ok || expr == nil {
				continue
			}
			n, err := f.License(expr)
			if err != nil {
				return nil, err
			}
			if len(ls) > 1 {
				f.log.Debug("license expression replaces sibling licenses", "count", len(ls)-1)
			}
			return tree.List("licenses", n), nil
		}
	}
	if f.opts.SortLists {
		ls = slices.Clone(ls)
		slices.SortStableFunc(ls, func(a, b model.License) int {
			return cmp.Compare(licenseKey(a), licenseKey(b))
		})
	}
	list := tree.List("licenses")
	for _, l := range ls {
		n, err := f.License(l)
		if err != nil {
			return nil, err
		}
		list.Add(n)
	}
	return tree.NonEmpty(list), nil
}

func licenseKey(l model.License) string {
	switch lic := l.(type) {
	case *model.SpdxLicense:
		return "1:" + lic.ID
	case *model.NamedLicense:
		return "2:" + lic.Name
	case *model.LicenseExpression:
		return "0:" + lic.Expression
	default:
		return "9:"
	}
}
