// Package stdlib provides the built-in functions of remap programs.
//
// The functions are grouped by category:
//   - strings     – upcase, downcase, contains, length, join, split, match, format_bytes
//   - conversions – parse_int, to_int, to_float, to_bool, to_string
//   - assertions  – int, string, float, bool, object, array, assert
//   - numbers     – abs, round, floor, ceil
//   - time        – now, parse_timestamp, format_timestamp, to_timestamp
//   - objects     – keys, values, merge
//
// # Integration – the whole library
//
//	res, err := compiler.CompileSource(stdlib.Registry(), src, nil, compiler.CompileConfig{})
//
// # Integration – by category, together with host functions
//
//	reg, err := functions.NewRegistry(append(stdlib.Strings(), myFunction)...)
package stdlib

import (
	"slices"
	"sync"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/types"
)

// All returns every built-in function.
func All() []functions.Function {
	return slices.Concat(Strings(), Conversions(), Assertions(), Numbers(), Time(), Objects())
}

var registry = sync.OnceValue(func() *functions.Registry {
	return functions.MustRegistry(All()...)
})

// Registry returns a shared registry holding every built-in function.
func Registry() *functions.Registry {
	return registry()
}

// fallibleUnless returns a resolver for a function returning ret that can
// only fail when argument keyword may hold a kind outside safe.
func fallibleUnless(keyword string, safe, ret types.Kind) functions.ResolveFunc {
	return func(args *functions.ArgumentTypes) (types.TypeDef, error) {
		return types.Infallible(ret).WithFallible(!safe.IsSuperset(args.Kind(keyword))), nil
	}
}

// sameKind returns a resolver whose result has the kind of argument keyword.
func sameKind(keyword string) functions.ResolveFunc {
	return func(args *functions.ArgumentTypes) (types.TypeDef, error) {
		return types.Infallible(args.Kind(keyword)), nil
	}
}
