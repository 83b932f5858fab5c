// Package exttypes provides type predicate functions for remap. Unlike the
// assertions of the built-in library, predicates never fail.
package exttypes

import (
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/value"
)

// All returns all type function definitions.
func All() []functions.Function {
	return []functions.Function{
		IsString(),
		IsInteger(),
		IsFloat(),
		IsBoolean(),
		IsTimestamp(),
		IsArray(),
		IsObject(),
		IsNull(),
		IsEmpty(),
		TypeOf(),
	}
}

func predicate(name string, match func(value.Value) bool) *functions.Def {
	return &functions.Def{
		Name:      name,
		Signature: "<x:b>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			return value.Boolean(match(args.Value("value"))), nil
		},
	}
}

func is[T value.Value](v value.Value) bool {
	_, ok := v.(T)
	return ok
}

// IsString returns the definition for is_string(value).
func IsString() *functions.Def { return predicate("is_string", is[value.String]) }

// IsInteger returns the definition for is_integer(value).
func IsInteger() *functions.Def { return predicate("is_integer", is[value.Integer]) }

// IsFloat returns the definition for is_float(value).
func IsFloat() *functions.Def { return predicate("is_float", is[value.Float]) }

// IsBoolean returns the definition for is_boolean(value).
func IsBoolean() *functions.Def { return predicate("is_boolean", is[value.Boolean]) }

// IsTimestamp returns the definition for is_timestamp(value).
func IsTimestamp() *functions.Def { return predicate("is_timestamp", is[value.Timestamp]) }

// IsArray returns the definition for is_array(value).
func IsArray() *functions.Def { return predicate("is_array", is[value.Array]) }

// IsObject returns the definition for is_object(value).
func IsObject() *functions.Def { return predicate("is_object", is[value.Object]) }

// IsNull returns the definition for is_null(value).
func IsNull() *functions.Def {
	return predicate("is_null", func(v value.Value) bool { return v == nil || is[value.Null](v) })
}

// IsEmpty returns the definition for is_empty(value): true for null, "",
// [] and {}.
func IsEmpty() *functions.Def {
	return predicate("is_empty", func(v value.Value) bool {
		switch x := v.(type) {
		case nil, value.Null:
			return true
		case value.String:
			return x == ""
		case value.Array:
			return len(x) == 0
		case value.Object:
			return len(x) == 0
		}
		return false
	})
}

// TypeOf returns the definition for type_of(value): the name of the kind
// of value, such as "string" or "object".
func TypeOf() *functions.Def {
	return &functions.Def{
		Name:      "type_of",
		Signature: "<x:s>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case nil:
				return value.String("null"), nil
			case value.Array:
				return value.String("array"), nil
			case value.Object:
				return value.String("object"), nil
			default:
				return value.String(v.Kind().String()), nil
			}
		},
	}
}
