// Package extarray provides extended array functions for remap beyond the
// built-in library.
package extarray

import (
	"github.com/sandrolain/goremap/pkg/ext/extutil"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// All returns all extended array function definitions.
func All() []functions.Function {
	return []functions.Function{
		First(),
		Last(),
		Take(),
		Flatten(),
		Chunk(),
		Unique(),
		Compact(),
	}
}

// elementOrNull resolves to the element kind of argument "value" or null.
func elementOrNull(args *functions.ArgumentTypes) (types.TypeDef, error) {
	return types.Infallible(extutil.Elements(args, "value").Union(types.Null())), nil
}

// sameArray resolves to an array holding the elements of argument "value".
func sameArray(args *functions.ArgumentTypes) (types.TypeDef, error) {
	return types.Infallible(types.Array(types.OpenCollection[int](extutil.Elements(args, "value")))), nil
}

// First returns the definition for first(value): the first element, or
// null for an empty array.
func First() *functions.Def {
	return &functions.Def{
		Name:        "first",
		Signature:   "<a:x>",
		Keywords:    []string{"value"},
		ResolveFunc: elementOrNull,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			if len(arr) == 0 {
				return value.NullValue, nil
			}
			return arr[0], nil
		},
	}
}

// Last returns the definition for last(value).
func Last() *functions.Def {
	return &functions.Def{
		Name:        "last",
		Signature:   "<a:x>",
		Keywords:    []string{"value"},
		ResolveFunc: elementOrNull,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			if len(arr) == 0 {
				return value.NullValue, nil
			}
			return arr[len(arr)-1], nil
		},
	}
}

// Take returns the definition for take(value, n): the first n elements.
// A negative n takes the last -n elements.
func Take() *functions.Def {
	return &functions.Def{
		Name:        "take",
		Signature:   "<a-i:a>",
		Keywords:    []string{"value", "n"},
		ResolveFunc: sameArray,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			n, err := args.Integer("n")
			if err != nil {
				return nil, err
			}
			size := int64(len(arr))
			switch {
			case n >= size || -n >= size:
				return value.Clone(arr), nil
			case n >= 0:
				return value.Clone(arr[:n]), nil
			}
			return value.Clone(arr[size+n:]), nil
		},
	}
}

// Flatten returns the definition for flatten(value [, depth]).
// A negative depth (the default) flattens completely.
func Flatten() *functions.Def {
	return &functions.Def{
		Name:      "flatten",
		Signature: "<a-i?:a>",
		Keywords:  []string{"value", "depth"},
		Defaults:  map[string]value.Value{"depth": value.Integer(-1)},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			depth, err := args.Integer("depth")
			if err != nil {
				return nil, err
			}
			return flattenArray(arr, depth, make(value.Array, 0, len(arr))), nil
		},
	}
}

func flattenArray(arr value.Array, depth int64, out value.Array) value.Array {
	for _, item := range arr {
		if inner, ok := item.(value.Array); ok && depth != 0 {
			out = flattenArray(inner, depth-1, out)
			continue
		}
		out = append(out, value.Clone(item))
	}
	return out
}

// Chunk returns the definition for chunk(value, size). A literal size must
// be positive; any other size makes the call fallible.
func Chunk() *functions.Def {
	return &functions.Def{
		Name:      "chunk",
		Signature: "<a-i:a<a>>",
		Keywords:  []string{"value", "size"},
		ResolveFunc: func(args *functions.ArgumentTypes) (types.TypeDef, error) {
			ret := types.Array(types.OpenCollection[int](types.Array(types.OpenCollection[int](extutil.Elements(args, "value")))))
			lit, ok := args.Literal("size")
			if !ok {
				return types.Fallible(ret), nil
			}
			if n, _ := value.AsInteger(lit); n <= 0 {
				return types.TypeDef{}, types.Errorf(types.ErrFunction, "size must be a positive integer")
			}
			return types.Infallible(ret), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			size, err := args.Integer("size")
			if err != nil {
				return nil, err
			}
			if size <= 0 {
				return nil, types.Errorf(types.ErrFunction, "size must be a positive integer")
			}
			chunks := make(value.Array, 0, (int64(len(arr))+size-1)/size)
			for i := int64(0); i < int64(len(arr)); i += size {
				end := min(i+size, int64(len(arr)))
				chunks = append(chunks, value.Clone(arr[i:end]))
			}
			return chunks, nil
		},
	}
}

// Unique returns the definition for unique(value): the elements without
// duplicates, keeping first occurrences.
func Unique() *functions.Def {
	return &functions.Def{
		Name:        "unique",
		Signature:   "<a:a>",
		Keywords:    []string{"value"},
		ResolveFunc: sameArray,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			out := make(value.Array, 0, len(arr))
		next:
			for _, v := range arr {
				for _, seen := range out {
					if value.Equal(seen, v) {
						continue next
					}
				}
				out = append(out, value.Clone(v))
			}
			return out, nil
		},
	}
}

// Compact returns the definition for compact(value): the elements that
// are not null.
func Compact() *functions.Def {
	return &functions.Def{
		Name:      "compact",
		Signature: "<a:a>",
		Keywords:  []string{"value"},
		ResolveFunc: func(args *functions.ArgumentTypes) (types.TypeDef, error) {
			elems := extutil.Elements(args, "value").Without(types.Null())
			return types.Infallible(types.Array(types.OpenCollection[int](elems))), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			out := make(value.Array, 0, len(arr))
			for _, v := range arr {
				if _, isNull := v.(value.Null); isNull || v == nil {
					continue
				}
				out = append(out, value.Clone(v))
			}
			return out, nil
		},
	}
}
