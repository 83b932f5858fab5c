// Package state tracks what the compiler knows about variables and the
// target at each point of a program.
//
// A TypeState is threaded through compilation left to right. At branch
// points it is cloned, each branch compiles against its own copy, and the
// copies are merged back with Merge. Merging is a per-variable (and
// per-field) union, so it is commutative and associative.
package state

import (
	"maps"
	"slices"

	"github.com/sandrolain/goremap/pkg/types"
)

// LocalEnv maps variable names to the TypeDef of the value they hold.
// Stored TypeDefs are always infallible: a variable holds a value, not a
// computation.
type LocalEnv struct {
	vars map[string]types.TypeDef
}

// NewLocalEnv returns an empty LocalEnv.
func NewLocalEnv() *LocalEnv {
	return &LocalEnv{vars: map[string]types.TypeDef{}}
}

// Get returns the TypeDef of variable name.
func (l *LocalEnv) Get(name string) (types.TypeDef, bool) {
	td, ok := l.vars[name]
	return td, ok
}

// Insert sets the TypeDef of variable name, replacing any previous one.
func (l *LocalEnv) Insert(name string, td types.TypeDef) {
	l.vars[name] = td.AsInfallible()
}

// Names returns the variable names in ascending order.
func (l *LocalEnv) Names() []string {
	return slices.Sorted(maps.Keys(l.vars))
}

// Len returns the number of variables.
func (l *LocalEnv) Len() int { return len(l.vars) }

// Clone returns an independent copy of l.
func (l *LocalEnv) Clone() *LocalEnv {
	return &LocalEnv{vars: maps.Clone(l.vars)}
}

// Merge returns the union of l and o. A variable defined on one side only
// may be undefined at runtime, and reads as null then.
func (l *LocalEnv) Merge(o *LocalEnv) *LocalEnv {
	out := make(map[string]types.TypeDef, max(len(l.vars), len(o.vars)))
	for name, td := range l.vars {
		if otd, ok := o.vars[name]; ok {
			out[name] = td.Union(otd)
		} else {
			out[name] = td.OrNull()
		}
	}
	for name, td := range o.vars {
		if _, ok := l.vars[name]; !ok {
			out[name] = td.OrNull()
		}
	}
	return &LocalEnv{vars: out}
}

// Equal reports whether l and o hold the same variables with equal types.
func (l *LocalEnv) Equal(o *LocalEnv) bool {
	return maps.EqualFunc(l.vars, o.vars, types.TypeDef.Equal)
}

// ExternalEnv describes the target the program runs against: the kind of
// the event root and the kind of the metadata root.
type ExternalEnv struct {
	target   types.Kind
	metadata types.Kind
}

// NewExternalEnv returns an ExternalEnv with the given root kinds.
func NewExternalEnv(target, metadata types.Kind) *ExternalEnv {
	return &ExternalEnv{target: target, metadata: metadata}
}

// DefaultExternalEnv accepts any event and any metadata object.
func DefaultExternalEnv() *ExternalEnv {
	return NewExternalEnv(types.Any(), types.AnyObject())
}

// Target returns the kind of the event root.
func (e *ExternalEnv) Target() types.Kind { return e.target }

// Metadata returns the kind of the metadata root.
func (e *ExternalEnv) Metadata() types.Kind { return e.metadata }

// KindAt returns the kind read from p.
func (e *ExternalEnv) KindAt(p types.TargetPath) types.Kind {
	if p.Prefix == types.PrefixMetadata {
		return e.metadata.At(p.Path)
	}
	return e.target.At(p.Path)
}

// Update records that kind k has been written at p.
func (e *ExternalEnv) Update(p types.TargetPath, k types.Kind) {
	if p.Prefix == types.PrefixMetadata {
		e.metadata = e.metadata.Insert(p.Path, k)
		return
	}
	e.target = e.target.Insert(p.Path, k)
}

// Clone returns an independent copy of e.
func (e *ExternalEnv) Clone() *ExternalEnv {
	cp := *e
	return &cp
}

// Merge returns the union of e and o.
func (e *ExternalEnv) Merge(o *ExternalEnv) *ExternalEnv {
	return &ExternalEnv{
		target:   e.target.Union(o.target),
		metadata: e.metadata.Union(o.metadata),
	}
}

// Equal reports whether e and o describe the same target.
func (e *ExternalEnv) Equal(o *ExternalEnv) bool {
	return e.target.Equal(o.target) && e.metadata.Equal(o.metadata)
}

// TypeState is the compile-time knowledge at one program point.
type TypeState struct {
	Local    *LocalEnv
	External *ExternalEnv
}

// New returns a TypeState with no variables, over a copy of external. A nil
// external stands for DefaultExternalEnv.
func New(external *ExternalEnv) *TypeState {
	if external == nil {
		external = DefaultExternalEnv()
	}
	return &TypeState{Local: NewLocalEnv(), External: external.Clone()}
}

// Clone returns an independent copy of s.
func (s *TypeState) Clone() *TypeState {
	return &TypeState{Local: s.Local.Clone(), External: s.External.Clone()}
}

// Merge returns the union of s and o.
func (s *TypeState) Merge(o *TypeState) *TypeState {
	return &TypeState{
		Local:    s.Local.Merge(o.Local),
		External: s.External.Merge(o.External),
	}
}

// Equal reports whether s and o hold the same knowledge.
func (s *TypeState) Equal(o *TypeState) bool {
	return s.Local.Equal(o.Local) && s.External.Equal(o.External)
}

// TypeInfo pairs the state after an expression with the expression's type.
type TypeInfo struct {
	State  *TypeState
	Result types.TypeDef
}
