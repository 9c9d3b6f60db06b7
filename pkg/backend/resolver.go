// Package backend picks the first loadable implementation from an ordered list of optional
// engines and memoizes the choice.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/compozy/bomkit/pkg/logger"
)

var ErrUnavailable = errors.New("no backend available")

// UnavailableError is the memoized outcome of a resolver where no candidate loaded.
type UnavailableError struct {
	Resolver string
	Tried    []string
	Causes   []error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v (tried: %s)", e.Resolver, ErrUnavailable, strings.Join(e.Tried, ", "))
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() []error {
	return e.Causes
}

// Candidate is one optional engine. Load reports whether the engine is installed and returns
// its entry point.
type Candidate[T any] struct {
	Name string
	Load func() (T, error)
}

type State int

const (
	StateUnresolved State = iota
	StateResolving
	StateResolved
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unresolved"
	}
}

type outcome[T any] struct {
	name    string
	backend T
	err     error
}

// Resolver is safe for concurrent use. Concurrent first callers share one resolution.
type Resolver[T any] struct {
	name       string
	candidates []Candidate[T]
	group      singleflight.Group

	mu     sync.RWMutex
	state  State
	result *outcome[T]
}

func NewResolver[T any](name string, candidates ...Candidate[T]) *Resolver[T] {
	return &Resolver[T]{name: name, candidates: candidates}
}

func (r *Resolver[T]) Name() string {
	return r.name
}

// Candidates returns the candidate names in priority order.
func (r *Resolver[T]) Candidates() []string {
	out := make([]string, 0, len(r.candidates))
	for _, c := range r.candidates {
		out = append(out, c.Name)
	}
	return out
}

func (r *Resolver[T]) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Resolve returns the selected backend and its candidate name. When nothing loads the error
// is an *UnavailableError, and that outcome is memoized as well.
func (r *Resolver[T]) Resolve(ctx context.Context) (T, string, error) {
	if res := r.cached(); res != nil {
		return res.backend, res.name, res.err
	}
	ch := r.group.DoChan(r.name, func() (any, error) {
		if res := r.cached(); res != nil {
			return res, nil
		}
		r.setState(StateResolving)
		res := r.resolve(ctx)
		r.mu.Lock()
		r.result = res
		if res.err != nil {
			r.state = StateUnavailable
		} else {
			r.state = StateResolved
		}
		r.mu.Unlock()
		return res, nil
	})
	var zero T
	select {
	case <-ctx.Done():
		return zero, "", ctx.Err()
	case v := <-ch:
		res, ok := v.Val.(*outcome[T])
		if !ok {
			return zero, "", fmt.Errorf("%s: unexpected resolution result %T", r.name, v.Val)
		}
		return res.backend, res.name, res.err
	}
}

// MustResolve panics when no backend is available.
func (r *Resolver[T]) MustResolve(ctx context.Context) T {
	b, _, err := r.Resolve(ctx)
	if err != nil {
		panic(err)
	}
	return b
}

// Reset forgets the memoized outcome; intended for tests.
func (r *Resolver[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result = nil
	r.state = StateUnresolved
}

func (r *Resolver[T]) cached() *outcome[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

func (r *Resolver[T]) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Resolver[T]) resolve(ctx context.Context) *outcome[T] {
	log := logger.FromContext(ctx)
	tried := make([]string, 0, len(r.candidates))
	var causes []error
	for _, c := range r.candidates {
		tried = append(tried, c.Name)
		b, err := load(c)
		if err != nil {
			log.Debug("backend candidate unavailable", "resolver", r.name, "candidate", c.Name, "error", err)
			causes = append(causes, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}
		log.Debug("backend resolved", "resolver", r.name, "backend", c.Name)
		return &outcome[T]{name: c.Name, backend: b}
	}
	return &outcome[T]{err: &UnavailableError{Resolver: r.name, Tried: tried, Causes: causes}}
}

// load treats a panicking loader or a nil entry point as not installed.
func load[T any](c Candidate[T]) (b T, err error) {
	if c.Load == nil {
		return b, errors.New("no loader")
	}
	defer func() {
		if p := recover(); p != nil {
			var zero T
			b, err = zero, fmt.Errorf("loader panicked: %v", p)
		}
	}()
	b, err = c.Load()
	if err != nil {
		return b, err
	}
	if any(b) == nil {
		return b, errors.New("loader returned no backend")
	}
	return b, nil
}
