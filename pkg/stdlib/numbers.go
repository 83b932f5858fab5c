package stdlib

import (
	"math"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Numbers returns the numeric functions. Each returns a value of the same
// kind as its argument.
func Numbers() []functions.Function {
	return []functions.Function{
		Abs(),
		Round(),
		Floor(),
		Ceil(),
	}
}

// Abs returns the definition for abs(value).
func Abs() *functions.Def {
	return &functions.Def{
		Name:        "abs",
		Signature:   "<n:n>",
		Keywords:    []string{"value"},
		ResolveFunc: sameKind("value"),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case value.Integer:
				if v < 0 {
					return -v, nil
				}
				return v, nil
			case value.Float:
				return value.Float(math.Abs(float64(v))), nil
			}
			return nil, types.Errorf(types.ErrArgumentType, "abs: expected integer or float")
		},
	}
}

// Round returns the definition for round(value [, precision]).
func Round() *functions.Def { return rounding("round", math.Round) }

// Floor returns the definition for floor(value [, precision]).
func Floor() *functions.Def { return rounding("floor", math.Floor) }

// Ceil returns the definition for ceil(value [, precision]).
func Ceil() *functions.Def { return rounding("ceil", math.Ceil) }

// rounding builds a function applying fn at precision decimal places.
// Integers are returned unchanged.
func rounding(name string, fn func(float64) float64) *functions.Def {
	return &functions.Def{
		Name:        name,
		Signature:   "<n-i?:n>",
		Keywords:    []string{"value", "precision"},
		Defaults:    map[string]value.Value{"precision": value.Integer(0)},
		ResolveFunc: sameKind("value"),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			precision, err := args.Integer("precision")
			if err != nil {
				return nil, err
			}
			switch v := args.Value("value").(type) {
			case value.Integer:
				return v, nil
			case value.Float:
				scale := math.Pow(10, float64(precision))
				return value.Float(fn(float64(v)*scale) / scale), nil
			}
			return nil, types.Errorf(types.ErrArgumentType, "%s: expected integer or float", name)
		},
	}
}
