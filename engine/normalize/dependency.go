package normalize

import (
	"slices"
	"strings"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
)

// DependencyGraph renders the dependencies of b. Only entities emitted in the document
// take part, so the graph always agrees with the rendered bom-refs.
func (f *Factory) DependencyGraph(b *model.Bom) (*tree.Node, error) {
	if !f.has(spec.FeatureDependencyGraph) {
		return nil, nil
	}
	root, err := f.Bom(b)
	if err != nil {
		return nil, err
	}
	return root.Child("dependencies"), nil
}

type dependencyEntry struct {
	ref       string
	dependsOn []string
}

func (r *run) dependencies() (*tree.Node, error) {
	if !r.has(spec.FeatureDependencyGraph) {
		return nil, nil
	}
	emitted := make(map[string]struct{})
	for _, rec := range r.records {
		if v := rec.ref.Value(); rec.graph && v != "" {
			emitted[v] = struct{}{}
		}
	}
	var entries []*dependencyEntry
	byRef := make(map[string]*dependencyEntry)
	for _, rec := range r.records {
		if !rec.graph {
			continue
		}
		ref := rec.ref.Value()
		if ref == "" {
			if len(rec.deps) > 0 {
				return nil, &Error{Kind: rec.kind, Field: "bom-ref", Err: ErrMissingRef}
			}
			continue
		}
		entry, ok := byRef[ref]
		if !ok {
			entry = &dependencyEntry{ref: ref}
			byRef[ref] = entry
			entries = append(entries, entry)
		}
		for _, dep := range rec.deps {
			target := dep.Value()
			if dep == rec.ref || target == ref {
				return nil, &Error{Kind: rec.kind, Field: "dependencies", Ref: ref, Err: ErrSelfReference}
			}
			if _, ok := emitted[target]; !ok {
				continue
			}
			if !slices.Contains(entry.dependsOn, target) {
				entry.dependsOn = append(entry.dependsOn, target)
			}
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if r.opts.SortLists {
		slices.SortStableFunc(entries, func(a, b *dependencyEntry) int {
			return strings.Compare(a.ref, b.ref)
		})
		for _, e := range entries {
			slices.Sort(e.dependsOn)
		}
	}
	list := tree.List("dependencies")
	for _, e := range entries {
		n := tree.Object("dependency").AddAttr(tree.String("ref", e.ref))
		if len(e.dependsOn) > 0 {
			deps := tree.List("dependsOn").Inlined()
			for _, target := range e.dependsOn {
				deps.Add(tree.String("dependency", target).AsXMLAttr("ref"))
			}
			n.Add(deps)
		}
		list.Add(n)
	}
	return list, nil
}
