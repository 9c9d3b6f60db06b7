package backend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engine interface {
	Name() string
}

type fakeEngine string

func (f fakeEngine) Name() string { return string(f) }

func missing[T any](name string) Candidate[T] {
	return Candidate[T]{Name: name, Load: func() (T, error) {
		var zero T
		return zero, errors.New("not installed")
	}}
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("Should select the first candidate that loads", func(t *testing.T) {
		r := NewResolver("xml",
			missing[engine]("fast"),
			Candidate[engine]{Name: "slow", Load: func() (engine, error) { return fakeEngine("slow"), nil }},
			Candidate[engine]{Name: "never", Load: func() (engine, error) { return fakeEngine("never"), nil }},
		)
		assert.Equal(t, StateUnresolved, r.State())
		b, name, err := r.Resolve(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "slow", name)
		assert.Equal(t, "slow", b.Name())
		assert.Equal(t, StateResolved, r.State())
	})
	t.Run("Should memoize the selected backend", func(t *testing.T) {
		var calls atomic.Int32
		r := NewResolver("xml", Candidate[engine]{Name: "a", Load: func() (engine, error) {
			calls.Add(1)
			return fakeEngine("a"), nil
		}})
		for range 5 {
			_, _, err := r.Resolve(t.Context())
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), calls.Load())
	})
	t.Run("Should treat panics and nil entry points as not installed", func(t *testing.T) {
		r := NewResolver("xml",
			Candidate[engine]{Name: "panics", Load: func() (engine, error) { panic("boom") }},
			Candidate[engine]{Name: "nil", Load: func() (engine, error) { return nil, nil }},
			Candidate[engine]{Name: "noloader"},
			Candidate[engine]{Name: "ok", Load: func() (engine, error) { return fakeEngine("ok"), nil }},
		)
		_, name, err := r.Resolve(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "ok", name)
	})
	t.Run("Should report every candidate tried when none loads", func(t *testing.T) {
		var calls atomic.Int32
		r := NewResolver("validator",
			missing[engine]("libxml2"),
			Candidate[engine]{Name: "xmllint", Load: func() (engine, error) {
				calls.Add(1)
				return nil, errors.New("not on PATH")
			}},
		)
		_, _, err := r.Resolve(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnavailable)
		var uerr *UnavailableError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "validator", uerr.Resolver)
		assert.Equal(t, []string{"libxml2", "xmllint"}, uerr.Tried)
		assert.Contains(t, err.Error(), "libxml2, xmllint")
		assert.Equal(t, StateUnavailable, r.State())

		_, _, err = r.Resolve(t.Context())
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, int32(1), calls.Load())
	})
	t.Run("Should resolve again after Reset", func(t *testing.T) {
		var installed atomic.Bool
		r := NewResolver("xml", Candidate[engine]{Name: "late", Load: func() (engine, error) {
			if !installed.Load() {
				return nil, errors.New("not installed")
			}
			return fakeEngine("late"), nil
		}})
		_, _, err := r.Resolve(t.Context())
		require.ErrorIs(t, err, ErrUnavailable)
		installed.Store(true)
		r.Reset()
		_, name, err := r.Resolve(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "late", name)
	})
	t.Run("Should return the context error when canceled", func(t *testing.T) {
		release := make(chan struct{})
		r := NewResolver("xml", Candidate[engine]{Name: "blocked", Load: func() (engine, error) {
			<-release
			return fakeEngine("blocked"), nil
		}})
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, _, err := r.Resolve(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		close(release)
		_, name, err := r.Resolve(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "blocked", name)
	})
}

func TestResolver_Concurrent(t *testing.T) {
	t.Run("Should load once under concurrent first use", func(t *testing.T) {
		var calls atomic.Int32
		start := make(chan struct{})
		r := NewResolver("xml", Candidate[engine]{Name: "shared", Load: func() (engine, error) {
			calls.Add(1)
			<-start
			return fakeEngine("shared"), nil
		}})
		const workers = 32
		var wg sync.WaitGroup
		names := make([]string, workers)
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, names[i], errs[i] = r.Resolve(t.Context())
			}()
		}
		close(start)
		wg.Wait()
		for i := range workers {
			require.NoError(t, errs[i])
			assert.Equal(t, "shared", names[i])
		}
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestResolver_MustResolve(t *testing.T) {
	t.Run("Should panic when nothing is available", func(t *testing.T) {
		r := NewResolver("xml", missing[engine]("a"))
		assert.Panics(t, func() { r.MustResolve(t.Context()) })
	})
}
