package compiler

import (
	"errors"
	"strings"

	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Expression is a compiled, type-checked node of a program. The set of
// implementations is closed.
//
// Expressions are immutable once compiled and may be resolved concurrently
// against different contexts.
type Expression interface {
	// TypeDef returns the static type of the expression.
	TypeDef() types.TypeDef
	// Resolve evaluates the expression.
	Resolve(ctx *runtime.Context) (value.Value, error)
	// Span returns the source range the expression was compiled from.
	Span() diagnostic.Span
	// String renders the expression as remap source.
	String() string

	expression()
}

type node struct {
	span diagnostic.Span
	td   types.TypeDef
}

func (n node) Span() diagnostic.Span { return n.span }

func (n node) TypeDef() types.TypeDef { return n.td }

func (node) expression() {}

func spanOf(n *types.ASTNode) diagnostic.Span {
	return diagnostic.Span{Start: n.Position, End: n.End}
}

// located attaches the span of an expression to a runtime error that has
// none yet.
func located(err error, span diagnostic.Span) error {
	if ee, ok := err.(*types.ExpressionError); ok {
		return ee.WithSpan(span.Start, span.End)
	}
	return types.NewExpressionError(types.ErrRuntime, err.Error()).WithSpan(span.Start, span.End).WithCause(err)
}

// Literal is a constant value.
type Literal struct {
	node
	Value value.Value
}

func (e *Literal) Resolve(*runtime.Context) (value.Value, error) {
	return e.Value, nil
}

func (e *Literal) String() string { return e.Value.String() }

// ArrayLiteral builds a new array from its elements.
type ArrayLiteral struct {
	node
	Elements []Expression
}

func (e *ArrayLiteral) Resolve(ctx *runtime.Context) (value.Value, error) {
	out := make(value.Array, 0, len(e.Elements))
	for _, el := range e.Elements {
		v, err := el.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *ArrayLiteral) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectLiteral builds a new object from its fields. Keys keeps source
// order so that fields are evaluated left to right.
type ObjectLiteral struct {
	node
	Keys   []string
	Values []Expression
}

func (e *ObjectLiteral) Resolve(ctx *runtime.Context) (value.Value, error) {
	out := make(value.Object, len(e.Keys))
	for i, k := range e.Keys {
		v, err := e.Values[i].Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (e *ObjectLiteral) String() string {
	if len(e.Keys) == 0 {
		return "{}"
	}
	parts := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		parts[i] = value.String(k).String() + ": " + e.Values[i].String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Variable reads a local variable. A variable that was never assigned at
// runtime reads as null.
type Variable struct {
	node
	Name string
}

func (e *Variable) Resolve(ctx *runtime.Context) (value.Value, error) {
	v, _ := ctx.Local(e.Name)
	return v, nil
}

func (e *Variable) String() string { return e.Name }

// QueryRoot selects what a Query reads from.
type QueryRoot uint8

const (
	// QueryEvent reads from the event.
	QueryEvent QueryRoot = iota
	// QueryMetadata reads from the event metadata.
	QueryMetadata
	// QueryVariable reads from a local variable.
	QueryVariable
	// QueryExpression reads from the value of another expression.
	QueryExpression
)

// Query reads a path from the target, a variable or an expression.
type Query struct {
	node
	Root QueryRoot
	Name string     // variable name, for QueryVariable
	Base Expression // for QueryExpression
	Path types.Path
}

// TargetPath returns the path read for event and metadata queries.
func (e *Query) TargetPath() (types.TargetPath, bool) {
	switch e.Root {
	case QueryEvent:
		return types.EventPath(e.Path), true
	case QueryMetadata:
		return types.MetadataPath(e.Path), true
	}
	return types.TargetPath{}, false
}

func (e *Query) Resolve(ctx *runtime.Context) (value.Value, error) {
	switch e.Root {
	case QueryVariable:
		v, _ := ctx.Local(e.Name)
		return value.Get(v, e.Path), nil
	case QueryExpression:
		v, err := e.Base.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		return value.Get(v, e.Path), nil
	}
	tp, _ := e.TargetPath()
	target := ctx.Target()
	if target == nil {
		return value.NullValue, nil
	}
	v, err := target.Get(tp)
	if err != nil {
		return nil, located(err, e.span)
	}
	return v, nil
}

func (e *Query) String() string {
	switch e.Root {
	case QueryVariable:
		return e.Name + e.Path.String()
	case QueryExpression:
		return "(" + e.Base.String() + ")" + e.Path.String()
	}
	tp, _ := e.TargetPath()
	return tp.String()
}

// Block evaluates its statements in order and yields the last value. An
// empty block yields null.
type Block struct {
	node
	Statements []Expression
}

func (e *Block) Resolve(ctx *runtime.Context) (value.Value, error) {
	var last value.Value = value.NullValue
	for _, s := range e.Statements {
		v, err := s.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (e *Block) String() string {
	if len(e.Statements) == 0 {
		return "{ }"
	}
	parts := make([]string, len(e.Statements))
	for i, s := range e.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// IfStatement evaluates the predicate and then exactly one arm. A missing
// else arm yields null.
type IfStatement struct {
	node
	Predicate Expression
	Then      *Block
	Else      Expression // *Block, *IfStatement or nil
}

func (e *IfStatement) Resolve(ctx *runtime.Context) (value.Value, error) {
	pv, err := e.Predicate.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := pv.(value.Boolean)
	if !ok {
		return nil, types.Errorf(types.ErrInvalidOperand, "if-statement predicate must be a boolean, got %s", pv.Kind()).
			WithSpan(e.Predicate.Span().Start, e.Predicate.Span().End)
	}
	if b {
		return e.Then.Resolve(ctx)
	}
	if e.Else == nil {
		return value.NullValue, nil
	}
	return e.Else.Resolve(ctx)
}

func (e *IfStatement) String() string {
	s := "if " + e.Predicate.String() + " " + e.Then.String()
	if e.Else != nil {
		s += " else " + e.Else.String()
	}
	return s
}

// Abort stops the program with an error.
type Abort struct {
	node
	Message Expression // nil for a bare abort
}

func (e *Abort) Resolve(ctx *runtime.Context) (value.Value, error) {
	msg := "aborted"
	if e.Message != nil {
		v, err := e.Message.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		s, err := value.AsString(v)
		if err != nil {
			return nil, located(err, e.Message.Span())
		}
		msg = s
	}
	return nil, types.NewExpressionError(types.ErrAborted, msg).WithSpan(e.span.Start, e.span.End)
}

func (e *Abort) String() string {
	if e.Message == nil {
		return "abort"
	}
	return "abort " + e.Message.String()
}

// ErrorExpr stands in for a node that failed to compile, so that the rest
// of the program can still be checked. Programs containing one are never
// returned to callers.
type ErrorExpr struct {
	node
}

func (e *ErrorExpr) Resolve(*runtime.Context) (value.Value, error) {
	return nil, types.NewExpressionError(types.ErrRuntime, "expression failed to compile").WithSpan(e.span.Start, e.span.End)
}

func (e *ErrorExpr) String() string { return "null" }

// isAbort reports whether err stops the whole program, so that no handling
// form may catch it.
func isAbort(err error) bool {
	var ee *types.ExpressionError
	return errors.As(err, &ee) && ee.Code == types.ErrAborted
}
