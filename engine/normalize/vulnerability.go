package normalize

import (
	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
)

// Vulnerability renders v. Ratings with a method the version does not know are dropped,
// and affects entries are kept only when they point at an entity emitted in the same
// document.
func (f *Factory) Vulnerability(v *model.Vulnerability) (*tree.Node, error) {
	return f.newRun().vulnerability(v, nil)
}

func (r *run) vulnerability(v *model.Vulnerability, known map[string]struct{}) (*tree.Node, error) {
	if v == nil || !r.has(spec.FeatureVulnerabilities) {
		return nil, nil
	}
	n := tree.Object("vulnerability").AddAttr(r.bomRefAttr(v.Ref()))
	n.Add(
		tree.NonEmpty(tree.String("id", v.ID)),
		vulnerabilitySource("source", v.Source),
	)

	references := tree.List("references")
	for _, ref := range v.References {
		if ref.ID == "" {
			continue
		}
		references.Add(tree.Object("reference",
			tree.String("id", ref.ID),
			vulnerabilitySource("source", &ref.Source),
		))
	}
	n.Add(tree.NonEmpty(references), r.ratings(v.Ratings))

	cwes := tree.List("cwes")
	for _, cwe := range v.CWEs {
		if cwe > 0 {
			cwes.Add(tree.Int("cwe", cwe))
		}
	}
	n.Add(
		tree.NonEmpty(cwes),
		tree.NonEmpty(tree.String("description", v.Description)),
		tree.NonEmpty(tree.String("detail", v.Detail)),
		tree.NonEmpty(tree.String("recommendation", v.Recommendation)),
	)

	advisories := tree.List("advisories")
	for _, a := range v.Advisories {
		if a.URL == "" {
			continue
		}
		advisories.Add(tree.Object("advisory",
			tree.NonEmpty(tree.String("title", a.Title)),
			tree.String("url", a.URL),
		))
	}
	n.Add(
		tree.NonEmpty(advisories),
		timestamp("created", v.Created),
		timestamp("published", v.Published),
		timestamp("updated", v.Updated),
		analysis(v.Analysis),
		affects(v.Affects, known),
		r.properties(v.Properties),
	)
	r.emit(KindVulnerability, v.Ref(), nil, false)
	return n, nil
}

func (r *run) vulnerabilities(vs []*model.Vulnerability) (*tree.Node, error) {
	if !r.has(spec.FeatureVulnerabilities) {
		return nil, nil
	}
	known := r.known()
	list := tree.List("vulnerabilities")
	for _, v := range vs {
		n, err := r.vulnerability(v, known)
		if err != nil {
			return nil, err
		}
		list.Add(n)
	}
	return tree.NonEmpty(list), nil
}

func (f *Factory) ratings(rs []model.VulnerabilityRating) *tree.Node {
	list := tree.List("ratings")
	for _, rating := range rs {
		if rating.Method != "" && !f.spec.SupportsRatingMethod(rating.Method) {
			f.log.Debug("dropping rating with unsupported method", "method", rating.Method)
			continue
		}
		n := tree.Object("rating", vulnerabilitySource("source", rating.Source))
		if rating.Score != nil {
			n.Add(tree.Float("score", *rating.Score))
		}
		n.Add(
			tree.NonEmpty(tree.String("severity", string(rating.Severity))),
			tree.NonEmpty(tree.String("method", string(rating.Method))),
			tree.NonEmpty(tree.String("vector", rating.Vector)),
			tree.NonEmpty(tree.String("justification", rating.Justification)),
		)
		list.Add(tree.NonEmpty(n))
	}
	return tree.NonEmpty(list)
}

func vulnerabilitySource(name string, s *model.VulnerabilitySource) *tree.Node {
	if s == nil {
		return nil
	}
	return tree.NonEmpty(tree.Object(name,
		tree.NonEmpty(tree.String("name", s.Name)),
		tree.NonEmpty(tree.String("url", s.URL)),
	))
}

// analysis names the response list "response" in JSON and "responses" in XML.
func analysis(a *model.VulnerabilityAnalysis) *tree.Node {
	if a == nil {
		return nil
	}
	responses := tree.List("response").WithXMLName("responses")
	for _, resp := range a.Responses {
		responses.Add(tree.String("response", string(resp)))
	}
	return tree.NonEmpty(tree.Object("analysis",
		tree.NonEmpty(tree.String("state", string(a.State))),
		tree.NonEmpty(tree.String("justification", string(a.Justification))),
		tree.NonEmpty(responses),
		tree.NonEmpty(tree.String("detail", a.Detail)),
	))
}

// affects keeps targets present in known. A nil known keeps every set target.
func affects(as []model.VulnerabilityAffect, known map[string]struct{}) *tree.Node {
	list := tree.List("affects")
	for _, a := range as {
		ref := a.Ref.Value()
		if ref == "" {
			continue
		}
		if known != nil {
			if _, ok := known[ref]; !ok {
				continue
			}
		}
		versions := tree.List("versions")
		for _, av := range a.Versions {
			var ident *tree.Node
			switch {
			case av.Version != "":
				ident = tree.String("version", av.Version)
			case av.Range != "":
				ident = tree.String("range", av.Range)
			default:
				continue
			}
			versions.Add(tree.Object("version",
				ident,
				tree.NonEmpty(tree.String("status", string(av.Status))),
			))
		}
		list.Add(tree.Object("target", tree.String("ref", ref), tree.NonEmpty(versions)))
	}
	return tree.NonEmpty(list)
}
