// Package ext provides optional extension functions for remap programs that
// go beyond the built-in library.
//
// The extension functions live in sub-packages grouped by category:
//   - extstring   – starts_with, ends_with, index_of, camel_case, truncate, …
//   - extnumeric  – log, sign, clamp, median, stddev, percentile
//   - extarray    – first, last, take, flatten, chunk, unique, compact
//   - extobject   – pick, omit, rename, pairs
//   - exttypes    – is_string, is_array, is_empty, type_of, …
//   - extdatetime – date_add, date_diff, start_of, date_components
//   - extcrypto   – uuid, is_uuid, hash, hmac
//   - extformat   – parse_csv, to_csv
//
// # Integration – all extensions at once
//
//	res, err := goremap.Compile(src, ext.Registry())
//
// # Integration – by category
//
//	reg, err := ext.NewRegistry(ext.String(), ext.Array())
//
// # Integration – single function from a sub-package
//
//	reg, err := functions.NewRegistry(append(stdlib.All(), extstring.StartsWith())...)
package ext

import (
	"slices"
	"sync"

	"github.com/sandrolain/goremap/pkg/ext/extarray"
	"github.com/sandrolain/goremap/pkg/ext/extcrypto"
	"github.com/sandrolain/goremap/pkg/ext/extdatetime"
	"github.com/sandrolain/goremap/pkg/ext/extformat"
	"github.com/sandrolain/goremap/pkg/ext/extnumeric"
	"github.com/sandrolain/goremap/pkg/ext/extobject"
	"github.com/sandrolain/goremap/pkg/ext/extstring"
	"github.com/sandrolain/goremap/pkg/ext/exttypes"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/stdlib"
)

// Category is a group of extension functions.
type Category []functions.Function

// String returns the extended string functions.
func String() Category { return extstring.All() }

// Numeric returns the extended numeric functions.
func Numeric() Category { return extnumeric.All() }

// Array returns the extended array functions.
func Array() Category { return extarray.All() }

// Object returns the extended object functions.
func Object() Category { return extobject.All() }

// Types returns the type predicate functions.
func Types() Category { return exttypes.All() }

// DateTime returns the extended date/time functions.
func DateTime() Category { return extdatetime.All() }

// Crypto returns the hashing and identifier functions.
func Crypto() Category { return extcrypto.All() }

// Format returns the CSV functions.
func Format() Category { return extformat.All() }

// All returns every extension function, without the built-in library.
func All() []functions.Function {
	return slices.Concat(String(), Numeric(), Array(), Object(), Types(), DateTime(), Crypto(), Format())
}

// NewRegistry returns a registry holding the built-in library plus the
// given categories. It fails when two functions share a name.
func NewRegistry(categories ...Category) (*functions.Registry, error) {
	fns := stdlib.All()
	for _, c := range categories {
		fns = append(fns, c...)
	}
	return functions.NewRegistry(fns...)
}

var registry = sync.OnceValue(func() *functions.Registry {
	return functions.MustRegistry(slices.Concat(stdlib.All(), All())...)
})

// Registry returns a shared registry holding the built-in library and
// every extension function.
func Registry() *functions.Registry {
	return registry()
}
