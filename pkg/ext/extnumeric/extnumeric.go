// Package extnumeric provides extended numeric functions for remap beyond
// the built-in library.
package extnumeric

import (
	"math"
	"slices"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// All returns all extended numeric function definitions.
func All() []functions.Function {
	return []functions.Function{
		Log(),
		Sign(),
		Clamp(),
		Median(),
		Stddev(),
		Percentile(),
	}
}

// Log returns the definition for log(value [, base]).
// Without base, returns the natural logarithm. Fails for non-positive
// values.
func Log() *functions.Def {
	return &functions.Def{
		Name:      "log",
		Signature: "<n-n?:f>",
		Keywords:  []string{"value", "base"},
		Fallible:  true,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			n, err := args.Float("value")
			if err != nil {
				return nil, err
			}
			if n <= 0 {
				return nil, types.Errorf(types.ErrFunction, "log of non-positive number %v", n)
			}
			if _, ok := args.Get("base"); !ok {
				return value.Float(math.Log(n)), nil
			}
			base, err := args.Float("base")
			if err != nil {
				return nil, err
			}
			if base <= 0 || base == 1 {
				return nil, types.Errorf(types.ErrFunction, "invalid logarithm base %v", base)
			}
			return value.Float(math.Log(n) / math.Log(base)), nil
		},
	}
}

// Sign returns the definition for sign(value): -1, 0 or 1.
func Sign() *functions.Def {
	return &functions.Def{
		Name:      "sign",
		Signature: "<n:i>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			n, err := args.Float("value")
			if err != nil {
				return nil, err
			}
			switch {
			case n > 0:
				return value.Integer(1), nil
			case n < 0:
				return value.Integer(-1), nil
			}
			return value.Integer(0), nil
		},
	}
}

// Clamp returns the definition for clamp(value, min, max). The result is
// an integer when all three arguments are integers.
func Clamp() *functions.Def {
	return &functions.Def{
		Name:      "clamp",
		Signature: "<n-n-n:n>",
		Keywords:  []string{"value", "min", "max"},
		ResolveFunc: func(args *functions.ArgumentTypes) (types.TypeDef, error) {
			if args.Kind("value").IsInteger() && args.Kind("min").IsInteger() && args.Kind("max").IsInteger() {
				return types.Infallible(types.Integer()), nil
			}
			return types.Infallible(types.Numeric()), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			v, lo, hi := args.Value("value"), args.Value("min"), args.Value("max")
			vi, ok1 := v.(value.Integer)
			loi, ok2 := lo.(value.Integer)
			hii, ok3 := hi.(value.Integer)
			if ok1 && ok2 && ok3 {
				return max(loi, min(hii, vi)), nil
			}
			vf, _ := value.AsFloat(v)
			lof, _ := value.AsFloat(lo)
			hif, _ := value.AsFloat(hi)
			return value.Float(math.Max(lof, math.Min(hif, vf))), nil
		},
	}
}

func floats(args *functions.Arguments) ([]float64, error) {
	arr, err := args.Array("values")
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(arr))
	for i, v := range arr {
		f, err := value.AsFloat(v)
		if err != nil {
			return nil, types.Errorf(types.ErrArgumentType, "element %d is not a number", i)
		}
		out[i] = f
	}
	return out, nil
}

// Median returns the definition for median(values). Empty arrays give
// null.
func Median() *functions.Def {
	return &functions.Def{
		Name:      "median",
		Signature: "<a<n>:(fl)>",
		Keywords:  []string{"values"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			nums, err := floats(args)
			if err != nil {
				return nil, err
			}
			if len(nums) == 0 {
				return value.NullValue, nil
			}
			slices.Sort(nums)
			mid := len(nums) / 2
			if len(nums)%2 == 0 {
				return value.Float((nums[mid-1] + nums[mid]) / 2), nil
			}
			return value.Float(nums[mid]), nil
		},
	}
}

// Stddev returns the definition for stddev(values): the population
// standard deviation. Empty arrays give null.
func Stddev() *functions.Def {
	return &functions.Def{
		Name:      "stddev",
		Signature: "<a<n>:(fl)>",
		Keywords:  []string{"values"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			nums, err := floats(args)
			if err != nil {
				return nil, err
			}
			if len(nums) == 0 {
				return value.NullValue, nil
			}
			var mean float64
			for _, n := range nums {
				mean += n
			}
			mean /= float64(len(nums))
			var sum float64
			for _, n := range nums {
				sum += (n - mean) * (n - mean)
			}
			return value.Float(math.Sqrt(sum / float64(len(nums)))), nil
		},
	}
}

// Percentile returns the definition for percentile(values, p), p in
// [0, 100], interpolating linearly between ranks. Empty arrays give null.
func Percentile() *functions.Def {
	return &functions.Def{
		Name:      "percentile",
		Signature: "<a<n>-n:(fl)>",
		Keywords:  []string{"values", "p"},
		ResolveFunc: func(args *functions.ArgumentTypes) (types.TypeDef, error) {
			ret := types.Float().Union(types.Null())
			lit, ok := args.Literal("p")
			if !ok {
				return types.Fallible(ret), nil
			}
			p, _ := value.AsFloat(lit)
			if p < 0 || p > 100 {
				return types.TypeDef{}, types.Errorf(types.ErrFunction, "p must be between 0 and 100")
			}
			return types.Infallible(ret), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			nums, err := floats(args)
			if err != nil {
				return nil, err
			}
			p, err := args.Float("p")
			if err != nil {
				return nil, err
			}
			if p < 0 || p > 100 {
				return nil, types.Errorf(types.ErrFunction, "p must be between 0 and 100")
			}
			if len(nums) == 0 {
				return value.NullValue, nil
			}
			slices.Sort(nums)
			idx := p / 100 * float64(len(nums)-1)
			lo := int(math.Floor(idx))
			hi := int(math.Ceil(idx))
			if lo == hi {
				return value.Float(nums[lo]), nil
			}
			frac := idx - float64(lo)
			return value.Float(nums[lo]*(1-frac) + nums[hi]*frac), nil
		},
	}
}
