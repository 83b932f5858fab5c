// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"slices"
	"strings"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// OneOf returns a resolver for a function returning ret whose string
// argument keyword selects one of allowed (case-insensitive). A literal
// argument is checked at compile time: a known name makes the call
// infallible and an unknown one is reported. Anything else is fallible.
func OneOf(keyword string, allowed []string, ret types.Kind) functions.ResolveFunc {
	return func(args *functions.ArgumentTypes) (types.TypeDef, error) {
		lit, ok := args.Literal(keyword)
		if !ok {
			return types.Fallible(ret), nil
		}
		s, ok := lit.(value.String)
		if !ok {
			return types.Fallible(ret), nil
		}
		if err := CheckOneOf(keyword, string(s), allowed); err != nil {
			return types.TypeDef{}, err
		}
		return types.Infallible(ret), nil
	}
}

// CheckOneOf reports whether got is one of allowed, ignoring case.
func CheckOneOf(keyword, got string, allowed []string) error {
	if slices.Contains(allowed, strings.ToLower(got)) {
		return nil
	}
	return types.Errorf(types.ErrFunction, "unsupported %s %q; use %s", keyword, got, strings.Join(allowed, ", "))
}

// Elements returns the kind of any element of the array argument keyword,
// or Any when nothing is known.
func Elements(args *functions.ArgumentTypes, keyword string) types.Kind {
	if c := args.Kind(keyword).ArrayCollection(); c != nil {
		return c.Reduced()
	}
	return types.Any()
}

// Fields returns the kind of any field of the object argument keyword, or
// Any when nothing is known.
func Fields(args *functions.ArgumentTypes, keyword string) types.Kind {
	if c := args.Kind(keyword).ObjectCollection(); c != nil {
		return c.Reduced()
	}
	return types.Any()
}

// StringSlice converts an array of strings, naming the first element of
// another kind in the error.
func StringSlice(arr value.Array) ([]string, error) {
	out := make([]string, len(arr))
	for i, v := range arr {
		s, ok := v.(value.String)
		if !ok {
			return nil, types.Errorf(types.ErrArgumentType, "element %d is %s, not a string", i, kindName(v))
		}
		out[i] = string(s)
	}
	return out, nil
}

func kindName(v value.Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case value.Array:
		return "array"
	case value.Object:
		return "object"
	}
	return v.Kind().String()
}
