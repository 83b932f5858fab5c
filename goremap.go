// Package goremap compiles and runs Remap programs: small scripts that
// transform one event at a time.
//
// Compilation type-checks the whole program before anything runs. Every
// fallible operation must be handled, either with `f!(...)` (abort on
// error), `expr ?? fallback` or `ok, err = expr`; otherwise compilation
// fails with a diagnostic pointing at the call.
//
// # Quick Start
//
//	// Compile once, evaluate many times
//	res, err := goremap.Compile(`.level = downcase(string!(.level))`, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	event := value.NewEvent(data)
//	_, err = res.Program.Evaluate(nil, event)
//
//	// Describe the events to catch typing mistakes early
//	external := state.NewExternalEnv(types.ObjectOf(map[string]types.Kind{
//	    "status": types.Integer(),
//	}), types.AnyObject())
//	res, err = goremap.CompileWithExternal(`.ok = .status < 400`, nil, external, compiler.CompileConfig{})
//
// # More Information
//
//   - Compiler: github.com/sandrolain/goremap/pkg/compiler
//   - Evaluator: github.com/sandrolain/goremap/pkg/evaluator
//   - Functions: github.com/sandrolain/goremap/pkg/functions
//   - Built-ins: github.com/sandrolain/goremap/pkg/stdlib
//   - Types: github.com/sandrolain/goremap/pkg/types
package goremap

import (
	"context"
	"fmt"

	"github.com/sandrolain/goremap/pkg/cache"
	"github.com/sandrolain/goremap/pkg/compiler"
	"github.com/sandrolain/goremap/pkg/evaluator"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/stdlib"
	"github.com/sandrolain/goremap/pkg/value"
)

// Version returns the current version of goremap.
func Version() string {
	return "v0.1.0-dev"
}

// Compile compiles source against an unconstrained event. A nil fns
// selects the built-in library.
//
// On failure the error is a diagnostic.List holding every problem found,
// warnings included.
func Compile(source string, fns *functions.Registry) (*compiler.CompilationResult, error) {
	return CompileWithState(source, fns, nil, compiler.CompileConfig{})
}

// CompileWithExternal compiles source against events described by external.
func CompileWithExternal(source string, fns *functions.Registry, external *state.ExternalEnv, config compiler.CompileConfig) (*compiler.CompilationResult, error) {
	return CompileWithState(source, fns, state.New(external), config)
}

// CompileWithState compiles source starting from st, which may declare
// variables as well as the event shape. st is not modified.
func CompileWithState(source string, fns *functions.Registry, st *state.TypeState, config compiler.CompileConfig) (*compiler.CompilationResult, error) {
	if fns == nil {
		fns = stdlib.Registry()
	}
	return compiler.CompileSource(fns, source, st, config)
}

// CompileCached is like CompileWithState but returns the program cached in
// c when one was compiled from the same inputs.
func CompileCached(c *cache.Cache, source string, fns *functions.Registry, st *state.TypeState, config compiler.CompileConfig) (*compiler.CompilationResult, error) {
	if fns == nil {
		fns = stdlib.Registry()
	}
	key := cache.Fingerprint(source, fns, st, config)
	return c.GetOrCompile(key, func() (*compiler.CompilationResult, error) {
		return compiler.CompileSource(fns, source, st, config)
	})
}

// MustCompile is like Compile but panics if the program cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(source string, fns *functions.Registry) *compiler.Program {
	res, err := Compile(source, fns)
	if err != nil {
		panic(fmt.Sprintf("goremap: Compile(%q): %v", source, err))
	}
	return res.Program
}

// Eval compiles source with the built-in library and evaluates it once
// against target.
//
// For repeated evaluations of the same program, use Compile instead.
func Eval(ctx context.Context, source string, target value.Target, opts ...evaluator.Option) (value.Value, error) {
	res, err := Compile(source, nil)
	if err != nil {
		return nil, err
	}
	ev, err := evaluator.New(opts...)
	if err != nil {
		return nil, err
	}
	return ev.Evaluate(ctx, res.Program, target)
}
