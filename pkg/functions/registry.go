// Package functions defines the protocol between the compiler and built-in
// functions, and the registry the compiler looks functions up in.
//
// A host builds a Registry once from the functions it wants to expose and
// hands it to the compiler. The registry is read-only afterwards, so it can
// serve any number of concurrent compilations.
//
// # Example
//
//	reg, err := functions.NewRegistry(stdlib.All()...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fn, ok := reg.Lookup("upcase")
package functions

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// registryIDs hands out registry IDs. Zero is reserved for a nil registry.
var registryIDs atomic.Uint64

// Registry maps function names to Functions.
type Registry struct {
	id    uint64
	fns   map[string]Function
	names []string
}

// validator is implemented by functions that can check their own
// declaration, such as *Def.
type validator interface {
	Validate() error
}

// NewRegistry builds a registry. Duplicate names and invalid declarations
// are rejected.
func NewRegistry(fns ...Function) (*Registry, error) {
	r := &Registry{fns: make(map[string]Function, len(fns))}
	for _, fn := range fns {
		if fn == nil {
			return nil, fmt.Errorf("nil function")
		}
		name := fn.Identifier()
		if name == "" {
			return nil, fmt.Errorf("function with empty name")
		}
		if _, dup := r.fns[name]; dup {
			return nil, fmt.Errorf("duplicate function %q", name)
		}
		if v, ok := fn.(validator); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		r.fns[name] = fn
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)
	r.id = registryIDs.Add(1)
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(fns ...Function) *Registry {
	r, err := NewRegistry(fns...)
	if err != nil {
		panic(fmt.Sprintf("functions: NewRegistry: %v", err))
	}
	return r
}

// ID returns a value that identifies r among every registry built by the
// process. IDs are never reused. A nil registry has ID 0.
func (r *Registry) ID() uint64 {
	if r == nil {
		return 0
	}
	return r.id
}

// Lookup returns the function called name.
func (r *Registry) Lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.fns[name]
	return fn, ok
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.names)
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fns)
}
