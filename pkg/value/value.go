// Package value implements the runtime values of remap programs and the
// Target interface programs read from and write to.
//
// Value is a closed set of variants: String, Integer, Float, Boolean,
// Timestamp, Regex, Null, Array and Object. Programs receive Values from the
// Target and from literals, and built-in functions use the checked
// conversions in this package to narrow them.
package value

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sandrolain/goremap/pkg/types"
)

// Value is a runtime value.
type Value interface {
	// Kind returns the exact kind of the value.
	Kind() types.Kind
	// String renders the value as a remap literal.
	String() string

	isValue()
}

type (
	// String is a UTF-8 string value.
	String string
	// Integer is a 64-bit signed integer value.
	Integer int64
	// Float is a 64-bit floating point value.
	Float float64
	// Boolean is a boolean value.
	Boolean bool
	// Null is the null value.
	Null struct{}
	// Array is an ordered list of values.
	Array []Value
	// Object is a map of field names to values.
	Object map[string]Value
)

// Timestamp is a point in time.
type Timestamp struct{ time.Time }

// Regex is a compiled regular expression.
type Regex struct{ *regexp.Regexp }

// NullValue is the null singleton.
var NullValue Value = Null{}

func (String) isValue()    {}
func (Integer) isValue()   {}
func (Float) isValue()     {}
func (Boolean) isValue()   {}
func (Null) isValue()      {}
func (Array) isValue()     {}
func (Object) isValue()    {}
func (Timestamp) isValue() {}
func (Regex) isValue()     {}

func (String) Kind() types.Kind    { return types.String() }
func (Integer) Kind() types.Kind   { return types.Integer() }
func (Float) Kind() types.Kind     { return types.Float() }
func (Boolean) Kind() types.Kind   { return types.Boolean() }
func (Null) Kind() types.Kind      { return types.Null() }
func (Timestamp) Kind() types.Kind { return types.Timestamp() }
func (Regex) Kind() types.Kind     { return types.Regex() }

func (a Array) Kind() types.Kind {
	elems := make([]types.Kind, len(a))
	for i, v := range a {
		elems[i] = v.Kind()
	}
	return types.ArrayOf(elems...)
}

func (o Object) Kind() types.Kind {
	fields := make(map[string]types.Kind, len(o))
	for k, v := range o {
		fields[k] = v.Kind()
	}
	return types.ObjectOf(fields)
}

func (s String) String() string { return types.Quote(string(s)) }

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) String() string {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

func (Null) String() string { return "null" }

func (t Timestamp) String() string {
	return "t'" + t.UTC().Format(time.RFC3339Nano) + "'"
}

func (r Regex) String() string {
	if r.Regexp == nil {
		return "r''"
	}
	return "r'" + strings.ReplaceAll(r.Regexp.String(), "'", `\'`) + "'"
}

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o Object) String() string {
	if len(o) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(o))
	for _, k := range o.Keys() {
		parts = append(parts, types.Quote(k)+": "+o[k].String())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Keys returns the field names in ascending order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Equal reports whether a and b are the same value. Integers and floats
// compare by numeric value.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Integer:
		switch y := b.(type) {
		case Integer:
			return x == y
		case Float:
			return float64(x) == float64(y)
		}
		return false
	case Float:
		switch y := b.(type) {
		case Float:
			return x == y
		case Integer:
			return float64(x) == float64(y)
		}
		return false
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y
	case Null:
		_, ok := b.(Null)
		return ok
	case Timestamp:
		y, ok := b.(Timestamp)
		return ok && x.Equal(y.Time)
	case Regex:
		y, ok := b.(Regex)
		return ok && x.String() == y.String()
	case Array:
		y, ok := b.(Array)
		return ok && slices.EqualFunc(x, y, Equal)
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of v. Scalars are returned as is.
func Clone(v Value) Value {
	switch x := v.(type) {
	case Array:
		out := make(Array, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case Object:
		out := make(Object, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	}
	return v
}

// IsNull reports whether v is null. A nil Value counts as null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}
