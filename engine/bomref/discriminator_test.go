package bomref

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/bomkit/engine/model"
)

func refs(values ...string) []*model.BomRef {
	out := make([]*model.BomRef, len(values))
	for i, v := range values {
		r := model.NewBomRef(v)
		out[i] = &r
	}
	return out
}

func valuesOf(rs []*model.BomRef) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Value()
	}
	return out
}

func sequence(values ...string) func() string {
	i := 0
	return func() string {
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestDiscriminator_Discriminate(t *testing.T) {
	t.Run("Should make every token set and unique", func(t *testing.T) {
		rs := refs("", "a", "a", "", "b", "a", "")
		d := NewDiscriminator(rs)
		d.Discriminate()
		seen := map[string]bool{}
		for _, r := range rs {
			require.True(t, r.IsSet())
			assert.False(t, seen[r.Value()], "duplicate %q", r.Value())
			seen[r.Value()] = true
		}
	})
	t.Run("Should not alter tokens that are already unique", func(t *testing.T) {
		rs := refs("a", "b", "c")
		d := NewDiscriminator(rs)
		assert.Equal(t, 0, d.Discriminate())
		assert.Equal(t, []string{"a", "b", "c"}, valuesOf(rs))
	})
	t.Run("Should keep the first holder of a duplicate token", func(t *testing.T) {
		rs := refs("foo", "foo")
		d := NewDiscriminator(rs, WithGenerator(sequence("x")))
		assert.Equal(t, 1, d.Discriminate())
		assert.Equal(t, []string{"foo", "BomRef.x"}, valuesOf(rs))
	})
	t.Run("Should prefix synthesized tokens", func(t *testing.T) {
		rs := refs("")
		NewDiscriminator(rs).Discriminate()
		assert.True(t, strings.HasPrefix(rs[0].Value(), Prefix))
	})
	t.Run("Should regenerate tokens that collide with known values", func(t *testing.T) {
		rs := refs("BomRef.1", "", "")
		d := NewDiscriminator(rs, WithGenerator(sequence("1", "1", "2", "2", "3")))
		d.Discriminate()
		assert.Equal(t, []string{"BomRef.1", "BomRef.2", "BomRef.3"}, valuesOf(rs))
	})
	t.Run("Should avoid original values of later refs", func(t *testing.T) {
		rs := refs("", "BomRef.1")
		d := NewDiscriminator(rs, WithGenerator(sequence("1", "2")))
		d.Discriminate()
		assert.Equal(t, []string{"BomRef.2", "BomRef.1"}, valuesOf(rs))
	})
	t.Run("Should be stable across repeated calls", func(t *testing.T) {
		rs := refs("", "a", "a")
		d := NewDiscriminator(rs)
		d.Discriminate()
		first := valuesOf(rs)
		assert.Equal(t, 0, d.Discriminate())
		assert.Equal(t, first, valuesOf(rs))
	})
	t.Run("Should only touch refs broken by external mutation", func(t *testing.T) {
		rs := refs("a", "b", "c")
		d := NewDiscriminator(rs, WithGenerator(sequence("n1", "n2")))
		d.Discriminate()
		rs[1].Clear()
		rs[2].Set("a")
		assert.Equal(t, 2, d.Discriminate())
		assert.Equal(t, "a", rs[0].Value())
		assert.NotEqual(t, rs[1].Value(), rs[2].Value())
		assert.True(t, rs[1].IsSet())
	})
	t.Run("Should release a token once its previous holder moves on", func(t *testing.T) {
		rs := refs("a", "b")
		d := NewDiscriminator(rs, WithGenerator(sequence("n1")))
		require.Equal(t, 0, d.Discriminate())
		rs[0].Set("c")
		rs[1].Set("a")
		assert.Equal(t, 0, d.Discriminate())
		assert.Equal(t, []string{"c", "a"}, valuesOf(rs))
	})
	t.Run("Should ignore nil and repeated pointers", func(t *testing.T) {
		rs := refs("a")
		d := NewDiscriminator([]*model.BomRef{rs[0], nil, rs[0]})
		assert.Equal(t, 1, d.Len())
		assert.Equal(t, 0, d.Discriminate())
	})
}

func TestDiscriminator_Reset(t *testing.T) {
	t.Run("Should restore every original value including unset", func(t *testing.T) {
		rs := refs("", "foo", "foo", "bar", "")
		original := valuesOf(rs)
		d := NewDiscriminator(rs)
		d.Discriminate()
		assert.NotEqual(t, original, valuesOf(rs))
		d.Reset()
		assert.Equal(t, original, valuesOf(rs))
		assert.False(t, rs[0].IsSet())
	})
	t.Run("Should ignore mutations made after construction", func(t *testing.T) {
		rs := refs("a", "")
		d := NewDiscriminator(rs)
		rs[0].Set("changed")
		rs[1].Set("also-changed")
		d.Reset()
		assert.Equal(t, []string{"a", ""}, valuesOf(rs))
	})
	t.Run("Should handle many duplicates", func(t *testing.T) {
		values := make([]string, 200)
		for i := range values {
			values[i] = fmt.Sprintf("ref-%d", i%7)
		}
		rs := refs(values...)
		d := NewDiscriminator(rs)
		d.Discriminate()
		seen := map[string]bool{}
		for _, r := range rs {
			assert.False(t, seen[r.Value()])
			seen[r.Value()] = true
		}
		d.Reset()
		assert.Equal(t, values, valuesOf(rs))
	})
}

func fixtureBom() (*model.Bom, *model.Component, *model.Component) {
	root := &model.Component{Type: model.ComponentTypeApplication, Name: "app"}
	first := &model.Component{Type: model.ComponentTypeLibrary, Name: "first", BomRef: model.NewBomRef("foo")}
	second := &model.Component{Type: model.ComponentTypeLibrary, Name: "second", BomRef: model.NewBomRef("foo")}
	nested := &model.Component{Type: model.ComponentTypeLibrary, Name: "nested"}
	first.Components = []*model.Component{nested}
	second.DependsOn(first)
	tools := &model.Tools{Services: []*model.Service{{Name: "scanner"}}}
	b := &model.Bom{
		Version:         1,
		Metadata:        &model.Metadata{Component: root, Tools: tools},
		Components:      []*model.Component{first, second},
		Services:        []*model.Service{{Name: "api", Services: []*model.Service{{Name: "inner"}}}},
		Vulnerabilities: []*model.Vulnerability{{ID: "CVE-2024-0001"}},
	}
	builder := &model.Component{Type: model.ComponentTypeApplication, Name: "builder"}
	b.Formulation = []*model.Formula{{Components: []*model.Component{builder}}}
	return b, first, second
}

func TestCollect(t *testing.T) {
	t.Run("Should gather refs in document order", func(t *testing.T) {
		b, first, second := fixtureBom()
		got := Collect(b)
		require.Len(t, got, 10)
		assert.Same(t, b.Metadata.Component.Ref(), got[0])
		assert.Same(t, b.Metadata.Tools.Services[0].Ref(), got[1])
		assert.Same(t, first.Ref(), got[2])
		assert.Same(t, first.Components[0].Ref(), got[3])
		assert.Same(t, second.Ref(), got[4])
		assert.Same(t, b.Services[0].Ref(), got[5])
		assert.Same(t, b.Services[0].Services[0].Ref(), got[6])
		assert.Same(t, b.Vulnerabilities[0].Ref(), got[7])
		assert.Same(t, b.Formulation[0].Ref(), got[8])
		assert.Same(t, b.Formulation[0].Components[0].Ref(), got[9])
	})
	t.Run("Should return nothing for a nil bom", func(t *testing.T) {
		assert.Empty(t, Collect(nil))
	})
}

func TestSession(t *testing.T) {
	t.Run("Should keep dependency targets on the entity that kept its token", func(t *testing.T) {
		b, first, second := fixtureBom()
		var during []string
		err := Session(b, func(_ *Discriminator) error {
			during = []string{first.BomRef.Value(), second.BomRef.Value(), second.Dependencies[0].Value()}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "foo", during[0])
		assert.NotEqual(t, "foo", during[1])
		assert.Equal(t, "foo", during[2])
		assert.Equal(t, "foo", second.BomRef.Value())
		assert.False(t, b.Metadata.Component.BomRef.IsSet())
	})
	t.Run("Should reset even when the callback fails", func(t *testing.T) {
		b, _, second := fixtureBom()
		boom := errors.New("boom")
		err := Session(b, func(_ *Discriminator) error {
			assert.NotEqual(t, "foo", second.BomRef.Value())
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "foo", second.BomRef.Value())
	})
}
