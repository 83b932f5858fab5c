// Package extobject provides extended object functions for remap beyond the
// built-in library.
package extobject

import (
	"github.com/sandrolain/goremap/pkg/ext/extutil"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// All returns all extended object function definitions.
func All() []functions.Function {
	return []functions.Function{
		Pick(),
		Omit(),
		Rename(),
		Pairs(),
	}
}

// sameFields resolves to an object whose fields have the kinds of the
// fields of argument "value".
func sameFields(args *functions.ArgumentTypes) (types.TypeDef, error) {
	return types.Infallible(types.Object(types.OpenCollection[string](extutil.Fields(args, "value")))), nil
}

func objectAndKeys(args *functions.Arguments) (value.Object, map[string]bool, error) {
	obj, err := args.Object("value")
	if err != nil {
		return nil, nil, err
	}
	arr, err := args.Array("keys")
	if err != nil {
		return nil, nil, err
	}
	keys, err := extutil.StringSlice(arr)
	if err != nil {
		return nil, nil, err
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return obj, set, nil
}

// Pick returns the definition for pick(value, keys).
// Returns a new object containing only the given keys.
func Pick() *functions.Def {
	return &functions.Def{
		Name:        "pick",
		Signature:   "<o-a<s>:o>",
		Keywords:    []string{"value", "keys"},
		ResolveFunc: sameFields,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			obj, keys, err := objectAndKeys(args)
			if err != nil {
				return nil, err
			}
			out := make(value.Object, len(keys))
			for k, v := range obj {
				if keys[k] {
					out[k] = value.Clone(v)
				}
			}
			return out, nil
		},
	}
}

// Omit returns the definition for omit(value, keys).
// Returns a new object without the given keys.
func Omit() *functions.Def {
	return &functions.Def{
		Name:        "omit",
		Signature:   "<o-a<s>:o>",
		Keywords:    []string{"value", "keys"},
		ResolveFunc: sameFields,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			obj, keys, err := objectAndKeys(args)
			if err != nil {
				return nil, err
			}
			out := make(value.Object, len(obj))
			for k, v := range obj {
				if !keys[k] {
					out[k] = value.Clone(v)
				}
			}
			return out, nil
		},
	}
}

// Rename returns the definition for rename(value, from, to). Objects
// without field from are returned unchanged.
func Rename() *functions.Def {
	return &functions.Def{
		Name:        "rename",
		Signature:   "<o-s-s:o>",
		Keywords:    []string{"value", "from", "to"},
		ResolveFunc: sameFields,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			obj, err := args.Object("value")
			if err != nil {
				return nil, err
			}
			from, err := args.String("from")
			if err != nil {
				return nil, err
			}
			to, err := args.String("to")
			if err != nil {
				return nil, err
			}
			out := value.Clone(obj).(value.Object)
			if v, ok := out[from]; ok {
				delete(out, from)
				out[to] = v
			}
			return out, nil
		},
	}
}

// Pairs returns the definition for pairs(value): [key, value] arrays in
// key order.
func Pairs() *functions.Def {
	return &functions.Def{
		Name:      "pairs",
		Signature: "<o:a<a>>",
		Keywords:  []string{"value"},
		ResolveFunc: func(args *functions.ArgumentTypes) (types.TypeDef, error) {
			pair := types.ArrayOf(types.String(), extutil.Fields(args, "value"))
			return types.Infallible(types.Array(types.OpenCollection[int](pair))), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			obj, err := args.Object("value")
			if err != nil {
				return nil, err
			}
			out := make(value.Array, 0, len(obj))
			for _, k := range obj.Keys() {
				out = append(out, value.Array{value.String(k), value.Clone(obj[k])})
			}
			return out, nil
		},
	}
}
