package types

import (
	"cmp"
	"maps"
	"slices"
)

// Collection describes the elements of an array (K = int) or the fields of
// an object (K = string).
//
// Known holds the kinds of elements known to exist. Every other element has
// the unknown kind; a closed collection has no unknown kind and reading an
// element it does not know yields null.
type Collection[K cmp.Ordered] struct {
	known      map[K]Kind
	unknown    *Kind
	anyUnknown bool
}

// EmptyCollection returns a closed collection with no known elements.
func EmptyCollection[K cmp.Ordered]() *Collection[K] {
	return &Collection[K]{}
}

// AnyCollection returns an open collection whose elements may be anything.
func AnyCollection[K cmp.Ordered]() *Collection[K] {
	return &Collection[K]{anyUnknown: true}
}

// OpenCollection returns a collection with no known elements whose other
// elements have kind unknown.
func OpenCollection[K cmp.Ordered](unknown Kind) *Collection[K] {
	if unknown.IsAny() {
		return AnyCollection[K]()
	}
	return &Collection[K]{unknown: &unknown}
}

// ClosedCollection returns a closed collection with the given known elements.
func ClosedCollection[K cmp.Ordered](known map[K]Kind) *Collection[K] {
	return &Collection[K]{known: maps.Clone(known)}
}

// Known returns a copy of the known elements.
func (c *Collection[K]) Known() map[K]Kind {
	return maps.Clone(c.known)
}

// Keys returns the known keys in ascending order.
func (c *Collection[K]) Keys() []K {
	return slices.Sorted(maps.Keys(c.known))
}

// Unknown returns the kind of elements not in the known set, and false if
// the collection is closed.
func (c *Collection[K]) Unknown() (Kind, bool) {
	switch {
	case c.anyUnknown:
		return Any(), true
	case c.unknown != nil:
		return *c.unknown, true
	default:
		return Never(), false
	}
}

// IsClosed reports whether the collection has no unknown elements.
func (c *Collection[K]) IsClosed() bool {
	return !c.anyUnknown && c.unknown == nil
}

// Reduced returns the union of every element kind, known or not.
func (c *Collection[K]) Reduced() Kind {
	out := Never()
	for _, k := range c.known {
		out = out.Union(k)
	}
	if u, ok := c.Unknown(); ok {
		out = out.Union(u)
	}
	return out
}

// At returns the kind read from element key.
func (c *Collection[K]) At(key K) Kind {
	if k, ok := c.known[key]; ok {
		return k
	}
	return c.missing()
}

// missing is the kind read from an element that is not known.
func (c *Collection[K]) missing() Kind {
	if u, ok := c.Unknown(); ok {
		return u.Union(Null())
	}
	return Null()
}

func (c *Collection[K]) isAny() bool {
	return c.anyUnknown && len(c.known) == 0
}

func (c *Collection[K]) with(key K, k Kind) *Collection[K] {
	out := &Collection[K]{
		known:      maps.Clone(c.known),
		unknown:    c.unknown,
		anyUnknown: c.anyUnknown,
	}
	if out.known == nil {
		out.known = make(map[K]Kind, 1)
	}
	out.known[key] = k
	return out
}

func (c *Collection[K]) equal(o *Collection[K]) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.anyUnknown != o.anyUnknown || (c.unknown == nil) != (o.unknown == nil) {
		return false
	}
	if c.unknown != nil && !c.unknown.Equal(*o.unknown) {
		return false
	}
	return maps.EqualFunc(c.known, o.known, Kind.Equal)
}

func (c *Collection[K]) isSuperset(o *Collection[K]) bool {
	if c.isAny() {
		return true
	}
	for key, ok := range o.known {
		var have Kind
		if k, found := c.known[key]; found {
			have = k
		} else if u, open := c.Unknown(); open {
			have = u
		} else {
			return false
		}
		if !have.IsSuperset(ok) {
			return false
		}
	}
	ou, oOpen := o.Unknown()
	if !oOpen {
		return true
	}
	cu, cOpen := c.Unknown()
	if !cOpen || !cu.IsSuperset(ou) {
		return false
	}
	for key, k := range c.known {
		if _, found := o.known[key]; !found && !k.IsSuperset(ou) {
			return false
		}
	}
	return true
}

func unionCollections[K cmp.Ordered](a, b *Collection[K]) *Collection[K] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	out := &Collection[K]{anyUnknown: a.anyUnknown || b.anyUnknown}
	if !out.anyUnknown {
		switch {
		case a.unknown != nil && b.unknown != nil:
			u := a.unknown.Union(*b.unknown)
			out.unknown = &u
		case a.unknown != nil:
			out.unknown = a.unknown
		case b.unknown != nil:
			out.unknown = b.unknown
		}
	}

	known := make(map[K]Kind, max(len(a.known), len(b.known)))
	for key, ak := range a.known {
		if bk, ok := b.known[key]; ok {
			known[key] = ak.Union(bk)
		} else {
			known[key] = ak.Union(b.missing())
		}
	}
	for key, bk := range b.known {
		if _, ok := a.known[key]; !ok {
			known[key] = bk.Union(a.missing())
		}
	}
	if out.anyUnknown {
		maps.DeleteFunc(known, func(_ K, k Kind) bool { return k.IsAny() })
	}
	if len(known) > 0 {
		out.known = known
	}
	return out
}

// arrayAt is the kind read from index i. Negative indices count from the
// end, so any element may be selected.
func arrayAt(c *Collection[int], i int) Kind {
	if i >= 0 {
		return c.At(i)
	}
	return c.Reduced().Union(Null())
}

// arrayInsert writes v at rest inside element i. Writing past the end pads
// the array with nulls.
func arrayInsert(c *Collection[int], i int, rest Path, v Kind) *Collection[int] {
	if i < 0 {
		out := &Collection[int]{unknown: c.unknown, anyUnknown: c.anyUnknown}
		if len(c.known) > 0 {
			out.known = make(map[int]Kind, len(c.known))
			for key, k := range c.known {
				out.known[key] = k.Union(k.Insert(rest, v))
			}
		}
		if u, ok := c.Unknown(); ok && !c.anyUnknown {
			nu := u.Union(u.Insert(rest, v))
			out.unknown = &nu
		}
		return out
	}

	if c.IsClosed() && i-len(c.known) > MaxArrayPadding {
		// the write fails at runtime and leaves the array unchanged
		return c
	}
	out := c.with(i, c.At(i).Insert(rest, v))
	if c.IsClosed() {
		for j := range i {
			if _, ok := out.known[j]; !ok {
				out.known[j] = Null()
			}
		}
	}
	return out
}

// objectInsert writes v at rest inside field f.
func objectInsert(c *Collection[string], f string, rest Path, v Kind) *Collection[string] {
	return c.with(f, c.At(f).Insert(rest, v))
}
