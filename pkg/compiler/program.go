package compiler

import (
	"strings"

	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Program is a compiled remap program. It is immutable and safe to evaluate
// from many goroutines at once, each with its own Context and Target.
type Program struct {
	source string
	root   *Block
	result types.TypeDef
	info   ProgramInfo
	final  *state.TypeState
}

// ProgramInfo summarizes what a program does to its target.
type ProgramInfo struct {
	// Fallible is set when evaluation can fail, through f!(...) or abort.
	Fallible bool
	// Abortable is set when the program contains an abort statement.
	Abortable bool
	// TargetQueries lists the target paths read, in order of first use.
	TargetQueries []types.TargetPath
	// TargetAssignments lists the target paths written, in order of first
	// use.
	TargetAssignments []types.TargetPath
}

// CompilationResult is the outcome of a successful compilation.
type CompilationResult struct {
	Program *Program
	// Warnings holds the non-error diagnostics.
	Warnings diagnostic.List
	// Config is the configuration the program was compiled with.
	Config CompileConfig
}

// Evaluate runs the program against target. A nil ctx evaluates with a
// fresh Context in UTC. The returned value is the value of the last
// statement.
func (p *Program) Evaluate(ctx *runtime.Context, target value.Target) (value.Value, error) {
	if ctx == nil {
		ctx = runtime.NewContext(target, nil)
	} else {
		ctx.SetTarget(target)
	}
	return p.root.Resolve(ctx)
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string { return p.source }

// TypeDef returns the type of the value Evaluate returns.
func (p *Program) TypeDef() types.TypeDef { return p.result }

// Info returns the program summary.
func (p *Program) Info() ProgramInfo { return p.info }

// FinalState returns a copy of the type state after the last statement.
func (p *Program) FinalState() *state.TypeState { return p.final.Clone() }

// TypeInfo returns the final state together with the result type.
func (p *Program) TypeInfo() state.TypeInfo {
	return state.TypeInfo{State: p.FinalState(), Result: p.result}
}

// Statements returns the top-level expressions.
func (p *Program) Statements() []Expression { return p.root.Statements }

// String renders the compiled program as remap source, one statement per
// line. Compiling the rendered text yields an equivalent program.
func (p *Program) String() string {
	parts := make([]string, len(p.root.Statements))
	for i, s := range p.root.Statements {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}
