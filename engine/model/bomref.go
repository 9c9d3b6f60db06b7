package model

// BomRef is the identity token of a referenceable entity. The zero value is unset.
//
// Cross-references hold a pointer to the target's BomRef, so rewriting the token
// during discrimination is observed by every reference at once.
type BomRef struct {
	value string
}

func NewBomRef(value string) BomRef {
	return BomRef{value: value}
}

func (r *BomRef) Value() string {
	if r == nil {
		return ""
	}
	return r.value
}

// Set replaces the token. An empty value unsets it.
func (r *BomRef) Set(value string) {
	r.value = value
}

func (r *BomRef) Clear() {
	r.value = ""
}

func (r *BomRef) IsSet() bool {
	return r != nil && r.value != ""
}

func (r *BomRef) String() string {
	return r.Value()
}

// Referenceable is implemented by every entity that owns a BomRef.
type Referenceable interface {
	Ref() *BomRef
}

func refsOf(targets []Referenceable) []*BomRef {
	out := make([]*BomRef, 0, len(targets))
	for _, t := range targets {
		if t == nil {
			continue
		}
		out = append(out, t.Ref())
	}
	return out
}
