// Package normalize turns model entities into format-agnostic trees for one spec version.
//
// Fields a version cannot represent are omitted, fields whose shape changed between
// versions are emitted in the version's shape, and cross-references carry the current
// value of the target's BomRef. Normalizers never mutate their input.
package normalize

import (
	"errors"
	"fmt"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
	"github.com/compozy/bomkit/pkg/logger"
)

var (
	ErrSelfReference = errors.New("entity depends on itself")
	ErrMissingName   = errors.New("name is required")
	ErrMissingRef    = errors.New("bom-ref is required")
)

type EntityKind string

const (
	KindBom           EntityKind = "bom"
	KindComponent     EntityKind = "component"
	KindService       EntityKind = "service"
	KindVulnerability EntityKind = "vulnerability"
	KindFormula       EntityKind = "formula"
	KindLicense       EntityKind = "license"
)

// Error locates a structurally invalid entity.
type Error struct {
	Kind  EntityKind
	Field string
	Ref   string
	Err   error
}

func (e *Error) Error() string {
	where := string(e.Kind)
	if e.Ref != "" {
		where += fmt.Sprintf(" %q", e.Ref)
	}
	return fmt.Sprintf("normalize %s: field %s: %v", where, e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	// SortLists orders semantically unordered collections by stable keys instead of
	// keeping insertion order.
	SortLists bool
	Logger    logger.Logger
}

type Option func(*Options)

func WithSortLists(sort bool) Option {
	return func(o *Options) {
		o.SortLists = sort
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Factory holds the target version. It is immutable and safe for concurrent use.
type Factory struct {
	spec *spec.Spec
	opts Options
	log  logger.Logger
}

func NewFactory(v spec.Version, opts ...Option) (*Factory, error) {
	s, err := spec.Get(v)
	if err != nil {
		return nil, err
	}
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.Logger
	if log == nil {
		log = logger.GetDefault()
	}
	return &Factory{spec: s, opts: o, log: log.With("spec", string(v))}, nil
}

func (f *Factory) Spec() *spec.Spec {
	return f.spec
}

func (f *Factory) Options() Options {
	return f.opts
}

func (f *Factory) has(feature spec.Feature) bool {
	return f.spec.SupportsFeature(feature)
}

// record is one emitted referenceable entity.
type record struct {
	kind EntityKind
	ref  *model.BomRef
	deps []*model.BomRef
	// graph marks entities that get a dependency graph entry.
	graph bool
}

// run carries the per-call state of one normalization.
type run struct {
	*Factory
	records []record
}

func (f *Factory) newRun() *run {
	return &run{Factory: f}
}

func (r *run) emit(kind EntityKind, ref *model.BomRef, deps []*model.BomRef, graph bool) {
	r.records = append(r.records, record{kind: kind, ref: ref, deps: deps, graph: graph})
}

func (r *run) known() map[string]struct{} {
	out := make(map[string]struct{}, len(r.records))
	for _, rec := range r.records {
		if v := rec.ref.Value(); v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

// bomRefAttr returns the bom-ref attribute when the version has one and it is set.
func (f *Factory) bomRefAttr(ref *model.BomRef) *tree.Node {
	if !f.has(spec.FeatureBomRef) || !ref.IsSet() {
		return nil
	}
	return tree.String("bom-ref", ref.Value())
}
