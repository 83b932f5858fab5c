package stdlib

import (
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Objects returns the object functions.
func Objects() []functions.Function {
	return []functions.Function{
		Keys(),
		Values(),
		Merge(),
	}
}

// Keys returns the definition for keys(value): the field names in
// ascending order.
func Keys() *functions.Def {
	return &functions.Def{
		Name:      "keys",
		Signature: "<o:a<s>>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			obj, err := args.Object("value")
			if err != nil {
				return nil, err
			}
			out := make(value.Array, 0, len(obj))
			for _, k := range obj.Keys() {
				out = append(out, value.String(k))
			}
			return out, nil
		},
	}
}

// Values returns the definition for values(value): the field values in
// key order.
func Values() *functions.Def {
	return &functions.Def{
		Name:      "values",
		Signature: "<o:a>",
		Keywords:  []string{"value"},
		ResolveFunc: func(args *functions.ArgumentTypes) (types.TypeDef, error) {
			c := args.Kind("value").ObjectCollection()
			if c == nil {
				return types.Infallible(types.AnyArray()), nil
			}
			return types.Infallible(types.Array(types.OpenCollection[int](c.Reduced()))), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			obj, err := args.Object("value")
			if err != nil {
				return nil, err
			}
			out := make(value.Array, 0, len(obj))
			for _, k := range obj.Keys() {
				out = append(out, obj[k])
			}
			return out, nil
		},
	}
}

// Merge returns the definition for merge(to, from [, deep]). Fields of from
// win; with deep set, nested objects are merged instead of replaced.
func Merge() *functions.Def {
	return &functions.Def{
		Name:      "merge",
		Signature: "<o-o-b?:o>",
		Keywords:  []string{"to", "from", "deep"},
		Defaults:  map[string]value.Value{"deep": value.Boolean(false)},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			to, err := args.Object("to")
			if err != nil {
				return nil, err
			}
			from, err := args.Object("from")
			if err != nil {
				return nil, err
			}
			deep, err := args.Boolean("deep")
			if err != nil {
				return nil, err
			}
			return mergeObjects(to, from, deep), nil
		},
	}
}

func mergeObjects(to, from value.Object, deep bool) value.Object {
	out := make(value.Object, len(to)+len(from))
	for k, v := range to {
		out[k] = value.Clone(v)
	}
	for k, v := range from {
		if deep {
			dst, ok1 := out[k].(value.Object)
			src, ok2 := v.(value.Object)
			if ok1 && ok2 {
				out[k] = mergeObjects(dst, src, true)
				continue
			}
		}
		out[k] = value.Clone(v)
	}
	return out
}
