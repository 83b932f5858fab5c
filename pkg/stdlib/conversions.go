package stdlib

import (
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Conversions returns the parsing and coercion functions.
func Conversions() []functions.Function {
	return []functions.Function{
		ParseInt(),
		ToInt(),
		ToFloat(),
		ToBool(),
		ToString(),
	}
}

// ParseInt returns the definition for parse_int(value [, base]). Every
// call is fallible.
func ParseInt() *functions.Def {
	return &functions.Def{
		Name:      "parse_int",
		Signature: "<s-i?:i>",
		Keywords:  []string{"value", "base"},
		Defaults:  map[string]value.Value{"base": value.Integer(10)},
		Fallible:  true,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			base, err := args.Integer("base")
			if err != nil {
				return nil, err
			}
			if base < 2 || base > 36 {
				return nil, types.Errorf(types.ErrArgumentType, "parse_int: base must be between 2 and 36, got %d", base)
			}
			n, err := strconv.ParseInt(s, int(base), 64)
			if err != nil {
				return nil, types.Errorf(types.ErrFunction, "unable to parse %q as an integer in base %d", s, base)
			}
			return value.Integer(n), nil
		},
	}
}

// ToInt returns the definition for to_int(value). Numbers, booleans and
// null always convert; strings are parsed and may fail.
func ToInt() *functions.Def {
	return &functions.Def{
		Name:        "to_int",
		Signature:   "<x:i>",
		Keywords:    []string{"value"},
		ResolveFunc: fallibleUnless("value", types.Numeric().Union(types.Boolean()).Union(types.Null()).Union(types.Timestamp()), types.Integer()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case value.Integer:
				return v, nil
			case value.Null:
				return value.Integer(0), nil
			case value.Timestamp:
				return value.Integer(v.Unix()), nil
			case value.String, value.Float, value.Boolean:
				n, err := cast.ToInt64E(value.ToAny(v))
				if err != nil {
					return nil, types.Errorf(types.ErrFunction, "unable to coerce %s into an integer", v)
				}
				return value.Integer(n), nil
			}
			return nil, coerceError("an integer", args.Value("value"))
		},
	}
}

// ToFloat returns the definition for to_float(value).
func ToFloat() *functions.Def {
	return &functions.Def{
		Name:        "to_float",
		Signature:   "<x:f>",
		Keywords:    []string{"value"},
		ResolveFunc: fallibleUnless("value", types.Numeric().Union(types.Boolean()).Union(types.Null()).Union(types.Timestamp()), types.Float()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case value.Float:
				return v, nil
			case value.Null:
				return value.Float(0), nil
			case value.Boolean:
				if v {
					return value.Float(1), nil
				}
				return value.Float(0), nil
			case value.Timestamp:
				return value.Float(float64(v.UnixNano()) / float64(time.Second)), nil
			case value.String, value.Integer:
				f, err := cast.ToFloat64E(value.ToAny(v))
				if err != nil {
					return nil, types.Errorf(types.ErrFunction, "unable to coerce %s into a float", v)
				}
				return value.Float(f), nil
			}
			return nil, coerceError("a float", args.Value("value"))
		},
	}
}

// ToBool returns the definition for to_bool(value). Numbers are true when
// non-zero; strings accept the forms of strconv.ParseBool.
func ToBool() *functions.Def {
	return &functions.Def{
		Name:        "to_bool",
		Signature:   "<x:b>",
		Keywords:    []string{"value"},
		ResolveFunc: fallibleUnless("value", types.Numeric().Union(types.Boolean()).Union(types.Null()), types.Boolean()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case value.Boolean:
				return v, nil
			case value.Null:
				return value.Boolean(false), nil
			case value.Integer:
				return value.Boolean(v != 0), nil
			case value.Float:
				return value.Boolean(v != 0), nil
			case value.String:
				b, err := cast.ToBoolE(string(v))
				if err != nil {
					return nil, types.Errorf(types.ErrFunction, "unable to coerce %s into a boolean", v)
				}
				return value.Boolean(b), nil
			}
			return nil, coerceError("a boolean", args.Value("value"))
		},
	}
}

// ToString returns the definition for to_string(value). Scalars always
// convert; arrays and objects fail.
func ToString() *functions.Def {
	scalars := types.Scalar()
	return &functions.Def{
		Name:        "to_string",
		Signature:   "<x:s>",
		Keywords:    []string{"value"},
		ResolveFunc: fallibleUnless("value", scalars, types.String()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case value.String:
				return v, nil
			case value.Null:
				return value.String(""), nil
			case value.Timestamp:
				return value.String(v.UTC().Format(time.RFC3339Nano)), nil
			case value.Regex:
				return value.String(v.Regexp.String()), nil
			case value.Float:
				return value.String(strconv.FormatFloat(float64(v), 'f', -1, 64)), nil
			case value.Integer, value.Boolean:
				s, err := cast.ToStringE(value.ToAny(v))
				if err != nil {
					return nil, types.Errorf(types.ErrFunction, "unable to coerce %s into a string", v)
				}
				return value.String(s), nil
			}
			return nil, coerceError("a string", args.Value("value"))
		},
	}
}

func coerceError(want string, v value.Value) error {
	return types.Errorf(types.ErrFunction, "unable to coerce %s into %s", v.Kind(), want)
}
