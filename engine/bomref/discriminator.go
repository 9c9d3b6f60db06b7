// Package bomref makes identity tokens unique for the duration of one serialization pass.
package bomref

import (
	"github.com/segmentio/ksuid"

	"github.com/compozy/bomkit/engine/model"
)

// Prefix marks synthesized tokens.
const Prefix = "BomRef."

type Option func(*Discriminator)

// WithGenerator replaces the random token body generator.
func WithGenerator(gen func() string) Option {
	return func(d *Discriminator) {
		if gen != nil {
			d.generate = gen
		}
	}
}

// Discriminator rewrites duplicate or unset tokens and can restore the originals.
// It is not safe for concurrent use.
type Discriminator struct {
	refs     []*model.BomRef
	original []string
	generate func() string

	// seen holds every token observed or assigned since construction.
	seen map[string]struct{}

	// owner maps a token to the ref that last kept it. An entry only counts while the
	// holder still carries that token.
	owner map[string]*model.BomRef
}

// NewDiscriminator captures the current value of every ref. Nil refs and repeated
// pointers are ignored.
func NewDiscriminator(refs []*model.BomRef, opts ...Option) *Discriminator {
	d := &Discriminator{
		seen:     make(map[string]struct{}),
		owner:    make(map[string]*model.BomRef),
		generate: func() string { return ksuid.New().String() },
	}
	for _, opt := range opts {
		opt(d)
	}
	unique := make(map[*model.BomRef]struct{}, len(refs))
	for _, r := range refs {
		if r == nil {
			continue
		}
		if _, dup := unique[r]; dup {
			continue
		}
		unique[r] = struct{}{}
		d.refs = append(d.refs, r)
		d.original = append(d.original, r.Value())
		if v := r.Value(); v != "" {
			d.seen[v] = struct{}{}
		}
	}
	return d
}

// Len returns the number of tracked refs.
func (d *Discriminator) Len() int {
	return len(d.refs)
}

// Discriminate assigns a fresh token to every ref that is unset, repeats a value already
// kept by an earlier ref in this pass, or holds a value another ref kept in a previous
// pass. Refs that keep their token are left untouched, so repeated calls are stable.
// Returns the number of refs rewritten.
func (d *Discriminator) Discriminate() int {
	for _, r := range d.refs {
		if v := r.Value(); v != "" {
			d.seen[v] = struct{}{}
		}
	}
	kept := make(map[string]struct{}, len(d.refs))
	changed := 0
	for _, r := range d.refs {
		value := r.Value()
		_, dup := kept[value]
		if value == "" || dup || d.ownedByOther(value, r) {
			value = d.newToken()
			r.Set(value)
			changed++
		}
		kept[value] = struct{}{}
		d.owner[value] = r
	}
	return changed
}

func (d *Discriminator) ownedByOther(value string, r *model.BomRef) bool {
	holder, ok := d.owner[value]
	if !ok || holder == r {
		return false
	}
	if holder.Value() != value {
		delete(d.owner, value)
		return false
	}
	return true
}

// Reset restores every ref to the value captured at construction.
func (d *Discriminator) Reset() {
	for i, r := range d.refs {
		r.Set(d.original[i])
	}
}

// newToken loops until the token is unknown and records it before returning.
func (d *Discriminator) newToken() string {
	for {
		token := Prefix + d.generate()
		if _, taken := d.seen[token]; taken {
			continue
		}
		d.seen[token] = struct{}{}
		return token
	}
}
