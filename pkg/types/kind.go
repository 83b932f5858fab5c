package types

import (
	"strings"
)

// kindBits is the bitset of scalar kinds. Arrays and objects are tracked
// through their collections instead.
type kindBits uint8

const (
	bitString kindBits = 1 << iota
	bitInteger
	bitFloat
	bitBoolean
	bitTimestamp
	bitRegex
	bitNull

	scalarBits = bitString | bitInteger | bitFloat | bitBoolean | bitTimestamp | bitRegex | bitNull
)

var scalarNames = [...]struct {
	bit  kindBits
	name string
}{
	{bitString, "string"},
	{bitInteger, "integer"},
	{bitFloat, "float"},
	{bitBoolean, "boolean"},
	{bitTimestamp, "timestamp"},
	{bitRegex, "regex"},
	{bitNull, "null"},
}

// Kind is the set of shapes a value may take at a program point.
//
// Scalar kinds are a plain set. Array and object kinds carry a [Collection]
// describing the elements or fields known to exist, plus the kind of any
// other element. A nil collection means the value cannot be an array (or
// object).
//
// Kind values are immutable: every operation returns a new Kind and never
// modifies collections shared with its inputs.
type Kind struct {
	bits   kindBits
	array  *Collection[int]
	object *Collection[string]
}

// Never returns the empty kind. It only exists while a kind is being built.
func Never() Kind { return Kind{} }

// Any returns the kind containing every value.
func Any() Kind {
	return Kind{bits: scalarBits, array: AnyCollection[int](), object: AnyCollection[string]()}
}

// String returns the kind of string values.
func String() Kind { return Kind{bits: bitString} }

// Integer returns the kind of integer values.
func Integer() Kind { return Kind{bits: bitInteger} }

// Float returns the kind of float values.
func Float() Kind { return Kind{bits: bitFloat} }

// Boolean returns the kind of boolean values.
func Boolean() Kind { return Kind{bits: bitBoolean} }

// Timestamp returns the kind of timestamp values.
func Timestamp() Kind { return Kind{bits: bitTimestamp} }

// Regex returns the kind of regular expression values.
func Regex() Kind { return Kind{bits: bitRegex} }

// Null returns the kind of the null value.
func Null() Kind { return Kind{bits: bitNull} }

// Numeric returns integer or float.
func Numeric() Kind { return Kind{bits: bitInteger | bitFloat} }

// Scalar returns every non-collection kind.
func Scalar() Kind { return Kind{bits: scalarBits} }

// Array returns an array kind with the given element collection.
func Array(c *Collection[int]) Kind {
	if c == nil {
		c = EmptyCollection[int]()
	}
	return Kind{array: c}
}

// Object returns an object kind with the given field collection.
func Object(c *Collection[string]) Kind {
	if c == nil {
		c = EmptyCollection[string]()
	}
	return Kind{object: c}
}

// AnyArray returns the kind of arrays holding anything.
func AnyArray() Kind { return Kind{array: AnyCollection[int]()} }

// AnyObject returns the kind of objects holding anything.
func AnyObject() Kind { return Kind{object: AnyCollection[string]()} }

// ObjectOf builds a closed object kind from field kinds.
func ObjectOf(fields map[string]Kind) Kind {
	return Object(ClosedCollection(fields))
}

// ArrayOf builds a closed array kind from element kinds.
func ArrayOf(elems ...Kind) Kind {
	known := make(map[int]Kind, len(elems))
	for i, e := range elems {
		known[i] = e
	}
	return Array(ClosedCollection(known))
}

// IsNever reports whether k contains no kind at all.
func (k Kind) IsNever() bool {
	return k.bits == 0 && k.array == nil && k.object == nil
}

// IsAny reports whether k contains every kind with unconstrained collections.
func (k Kind) IsAny() bool {
	return k.bits == scalarBits &&
		k.array != nil && k.array.isAny() &&
		k.object != nil && k.object.isAny()
}

// ContainsString reports whether a value of kind k may be a string.
func (k Kind) ContainsString() bool { return k.bits&bitString != 0 }

// ContainsInteger reports whether a value of kind k may be an integer.
func (k Kind) ContainsInteger() bool { return k.bits&bitInteger != 0 }

// ContainsFloat reports whether a value of kind k may be a float.
func (k Kind) ContainsFloat() bool { return k.bits&bitFloat != 0 }

// ContainsBoolean reports whether a value of kind k may be a boolean.
func (k Kind) ContainsBoolean() bool { return k.bits&bitBoolean != 0 }

// ContainsTimestamp reports whether a value of kind k may be a timestamp.
func (k Kind) ContainsTimestamp() bool { return k.bits&bitTimestamp != 0 }

// ContainsRegex reports whether a value of kind k may be a regex.
func (k Kind) ContainsRegex() bool { return k.bits&bitRegex != 0 }

// ContainsNull reports whether a value of kind k may be null.
func (k Kind) ContainsNull() bool { return k.bits&bitNull != 0 }

// ContainsArray reports whether a value of kind k may be an array.
func (k Kind) ContainsArray() bool { return k.array != nil }

// ContainsObject reports whether a value of kind k may be an object.
func (k Kind) ContainsObject() bool { return k.object != nil }

// IsString reports whether k is exactly string.
func (k Kind) IsString() bool { return k.exactly(bitString) }

// IsInteger reports whether k is exactly integer.
func (k Kind) IsInteger() bool { return k.exactly(bitInteger) }

// IsFloat reports whether k is exactly float.
func (k Kind) IsFloat() bool { return k.exactly(bitFloat) }

// IsBoolean reports whether k is exactly boolean.
func (k Kind) IsBoolean() bool { return k.exactly(bitBoolean) }

// IsTimestamp reports whether k is exactly timestamp.
func (k Kind) IsTimestamp() bool { return k.exactly(bitTimestamp) }

// IsNull reports whether k is exactly null.
func (k Kind) IsNull() bool { return k.exactly(bitNull) }

// IsArray reports whether k is exactly an array.
func (k Kind) IsArray() bool { return k.bits == 0 && k.object == nil && k.array != nil }

// IsObject reports whether k is exactly an object.
func (k Kind) IsObject() bool { return k.bits == 0 && k.array == nil && k.object != nil }

func (k Kind) exactly(b kindBits) bool {
	return k.bits == b && k.array == nil && k.object == nil
}

// ArrayCollection returns the array collection, or nil if k cannot be an array.
func (k Kind) ArrayCollection() *Collection[int] { return k.array }

// ObjectCollection returns the object collection, or nil if k cannot be an object.
func (k Kind) ObjectCollection() *Collection[string] { return k.object }

// Union returns the join of k and other. It is commutative, associative and
// idempotent.
func (k Kind) Union(other Kind) Kind {
	return Kind{
		bits:   k.bits | other.bits,
		array:  unionCollections(k.array, other.array),
		object: unionCollections(k.object, other.object),
	}
}

// Intersects reports whether k and other share at least one top-level kind.
func (k Kind) Intersects(other Kind) bool {
	return k.bits&other.bits != 0 ||
		(k.array != nil && other.array != nil) ||
		(k.object != nil && other.object != nil)
}

// Without removes the top-level kinds of other from k. Collections are
// removed as a whole.
func (k Kind) Without(other Kind) Kind {
	out := Kind{bits: k.bits &^ other.bits, array: k.array, object: k.object}
	if other.array != nil {
		out.array = nil
	}
	if other.object != nil {
		out.object = nil
	}
	return out
}

// IsSuperset reports whether every value of kind other is also a value of
// kind k.
func (k Kind) IsSuperset(other Kind) bool {
	if other.bits&^k.bits != 0 {
		return false
	}
	if other.array != nil && (k.array == nil || !k.array.isSuperset(other.array)) {
		return false
	}
	if other.object != nil && (k.object == nil || !k.object.isSuperset(other.object)) {
		return false
	}
	return true
}

// Equal reports whether k and other describe the same set of values in the
// same representation.
func (k Kind) Equal(other Kind) bool {
	return k.bits == other.bits &&
		k.array.equal(other.array) &&
		k.object.equal(other.object)
}

// Primitives splits k into its top-level members, in a fixed order: the
// scalar kinds first, then array, then object.
func (k Kind) Primitives() []Kind {
	var out []Kind
	for _, s := range scalarNames {
		if k.bits&s.bit != 0 {
			out = append(out, Kind{bits: s.bit})
		}
	}
	if k.array != nil {
		out = append(out, Kind{array: k.array})
	}
	if k.object != nil {
		out = append(out, Kind{object: k.object})
	}
	return out
}

// String renders the kind for diagnostics, e.g. "string or integer".
func (k Kind) String() string {
	if k.IsNever() {
		return "never"
	}
	if k.IsAny() {
		return "any"
	}
	var names []string
	for _, s := range scalarNames {
		if k.bits&s.bit != 0 {
			names = append(names, s.name)
		}
	}
	if k.array != nil {
		names = append(names, "array")
	}
	if k.object != nil {
		names = append(names, "object")
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// At returns the kind found by reading path p from a value of kind k.
// Reading through a value that is not a matching container yields null.
func (k Kind) At(p Path) Kind {
	cur := k
	for _, seg := range p {
		var next Kind
		mismatch := cur.bits != 0
		if seg.IsIndex() {
			mismatch = mismatch || cur.object != nil
			if cur.array != nil {
				next = arrayAt(cur.array, seg.Index)
			}
		} else {
			mismatch = mismatch || cur.array != nil
			if cur.object != nil {
				next = cur.object.At(seg.Field)
			}
		}
		if mismatch || next.IsNever() {
			next = next.Union(Null())
		}
		cur = next
	}
	return cur
}

// Insert returns the kind of a value of kind k after v has been written at
// path p. Intermediate values that are not matching containers are replaced
// by new containers, mirroring what the runtime does.
func (k Kind) Insert(p Path, v Kind) Kind {
	if len(p) == 0 {
		return v
	}
	seg, rest := p[0], p[1:]

	if seg.IsIndex() {
		var coll *Collection[int]
		if k.array != nil {
			coll = arrayInsert(k.array, seg.Index, rest, v)
		}
		if k.bits != 0 || k.object != nil || k.array == nil {
			fresh := arrayInsert(EmptyCollection[int](), seg.Index, rest, v)
			coll = unionCollections(coll, fresh)
		}
		return Kind{array: coll}
	}

	var coll *Collection[string]
	if k.object != nil {
		coll = objectInsert(k.object, seg.Field, rest, v)
	}
	if k.bits != 0 || k.array != nil || k.object == nil {
		fresh := objectInsert(EmptyCollection[string](), seg.Field, rest, v)
		coll = unionCollections(coll, fresh)
	}
	return Kind{object: coll}
}
