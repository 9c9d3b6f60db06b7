// Package validation checks rendered CycloneDX documents against the schema of their
// version.
//
// Validators resolve their backend lazily through a backend.Resolver. The JSON backend is
// pure Go and always present; the XML backend is the xmllint binary and may be missing,
// in which case Validate reports ErrMissingOptionalDependency instead of failing silently.
// A nil Errors with a nil error means the document is valid.
package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/bomkit/engine/schema"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/pkg/backend"
	"github.com/compozy/bomkit/pkg/logger"
)

type Validator interface {
	Version() spec.Version
	Format() spec.Format
	// Validate returns the structural violations of doc, or an error when validation could
	// not run.
	Validate(ctx context.Context, doc string) (Errors, error)
}

// engine is one loaded validation backend.
type engine interface {
	validate(ctx context.Context, v spec.Version, doc string) (Errors, error)
}

type Option func(*options)

type options struct {
	backends []string
}

// WithBackends replaces the backend candidates, in priority order. Unknown names are kept
// and report as not installed.
func WithBackends(names ...string) Option {
	return func(o *options) {
		o.backends = names
	}
}

// New returns the validator for the format.
func New(v spec.Version, f spec.Format, opts ...Option) (Validator, error) {
	switch f {
	case spec.FormatJSON:
		return NewJSONValidator(v, opts...)
	case spec.FormatXML:
		return NewXMLValidator(v, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", spec.ErrUnknownFormat, f)
	}
}

// base carries what both validators share: version, format and the backend resolver.
type base struct {
	version    spec.Version
	format     spec.Format
	dependency string
	engines    *backend.Resolver[engine]
}

func newBase(
	v spec.Version,
	f spec.Format,
	dependency string,
	defaults *backend.Resolver[engine],
	candidates func() []backend.Candidate[engine],
	opts []Option,
) (*base, error) {
	if _, err := spec.Get(v); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	b := &base{version: v, format: f, dependency: dependency, engines: defaults}
	if o.backends != nil {
		b.engines = backend.NewResolver(defaults.Name(), selectCandidates(candidates(), o.backends)...)
	}
	return b, nil
}

func selectCandidates(all []backend.Candidate[engine], names []string) []backend.Candidate[engine] {
	known := make(map[string]backend.Candidate[engine], len(all))
	for _, c := range all {
		known[c.Name] = c
	}
	out := make([]backend.Candidate[engine], 0, len(names))
	for _, name := range names {
		c, ok := known[name]
		if !ok {
			c = backend.Candidate[engine]{Name: name}
		}
		out = append(out, c)
	}
	return out
}

func (b *base) Version() spec.Version {
	return b.version
}

func (b *base) Format() spec.Format {
	return b.format
}

// Backends lists the candidate backends in priority order.
func (b *base) Backends() []string {
	return b.engines.Candidates()
}

// State reports how far backend resolution has progressed.
func (b *base) State() backend.State {
	return b.engines.State()
}

func (b *base) Validate(ctx context.Context, doc string) (Errors, error) {
	if !schema.Has(b.version, b.format) {
		return nil, &NotImplementedError{Version: b.version, Format: b.format}
	}
	eng, name, err := b.engines.Resolve(ctx)
	if err != nil {
		var unavailable *backend.UnavailableError
		if errors.As(err, &unavailable) {
			return nil, &MissingOptionalDependencyError{
				Dependency: b.dependency,
				Tried:      unavailable.Tried,
				Cause:      err,
			}
		}
		return nil, fmt.Errorf("validate %s: %w", b.format, err)
	}
	start := time.Now()
	errs, err := eng.validate(ctx, b.version, doc)
	if err != nil {
		return nil, err
	}
	schema.RecordValidation(ctx, b.version, b.format, time.Since(start), len(doc), len(errs) == 0)
	logger.FromContext(ctx).Debug("validated document",
		"spec", b.version, "format", b.format, "backend", name, "violations", len(errs))
	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}
