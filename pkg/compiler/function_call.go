package compiler

import (
	"fmt"
	"strings"

	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// FunctionCall calls a built-in function.
type FunctionCall struct {
	node
	Name      string
	Function  functions.Function
	Arguments []Argument
	// Abort is set for name!(...): a failing call stops the program.
	Abort bool

	params []functions.Parameter
}

// Argument is one positional argument bound to its parameter keyword.
type Argument struct {
	Keyword string
	Expr    Expression
}

func (e *FunctionCall) Resolve(ctx *runtime.Context) (value.Value, error) {
	args := functions.NewArguments(e.Name)
	for _, a := range e.Arguments {
		v, err := a.Expr.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		args.Insert(a.Keyword, v)
	}
	for _, p := range e.params[len(e.Arguments):] {
		if p.Default != nil {
			args.Insert(p.Keyword, p.Default)
		}
	}

	v, err := e.Function.Call(ctx, args)
	if err != nil {
		return nil, e.callError(err)
	}
	if v == nil {
		return value.NullValue, nil
	}
	return v, nil
}

func (e *FunctionCall) callError(err error) error {
	if isAbort(err) {
		return err
	}
	ee, ok := err.(*types.ExpressionError)
	if !ok {
		ee = types.NewExpressionError(types.ErrFunction, err.Error()).WithCause(err)
	}
	if e.Abort {
		return types.Errorf(types.ErrAborted, "function call error for %q at (%d:%d): %s",
			e.Name, e.span.Start, e.span.End, ee.Message).
			WithSpan(e.span.Start, e.span.End).
			WithCause(ee)
	}
	return ee.WithSpan(e.span.Start, e.span.End)
}

func (e *FunctionCall) String() string {
	parts := make([]string, len(e.Arguments))
	for i, a := range e.Arguments {
		parts[i] = a.Expr.String()
	}
	bang := ""
	if e.Abort {
		bang = "!"
	}
	return e.Name + bang + "(" + strings.Join(parts, ", ") + ")"
}

// arity renders the accepted argument count of params.
func arity(params []functions.Parameter) string {
	required := requiredCount(params)
	if required == len(params) {
		return fmt.Sprint(required)
	}
	return fmt.Sprintf("%d to %d", required, len(params))
}

func requiredCount(params []functions.Parameter) int {
	n := 0
	for _, p := range params {
		if p.Required {
			n++
		}
	}
	return n
}

func (c *Compiler) compileFunctionCall(n *types.ASTNode, st *state.TypeState) Expression {
	name := n.StrValue
	args := make([]Expression, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = c.compileExpr(a, st)
	}

	fn, ok := c.fns.Lookup(name)
	if !ok {
		c.errorf(diagnostic.CodeUndefinedFunction, n, "undefined function: %s", name)
		return c.errorExpr(n)
	}

	params := fn.Parameters()
	if len(args) < requiredCount(params) || len(args) > len(params) {
		c.errorf(diagnostic.CodeArity, n, "wrong number of arguments for function %s: expected %s, got %d",
			name, arity(params), len(args))
		return c.errorExpr(n)
	}

	argTypes := functions.NewArgumentTypes()
	bound := make([]Argument, len(args))
	failed := false
	argsFallible := false
	for i, a := range args {
		p := params[i]
		bound[i] = Argument{Keyword: p.Keyword, Expr: a}
		td := a.TypeDef()
		argsFallible = argsFallible || td.IsFallible()

		if isErrorExpr(a) {
			failed = true
			continue
		}
		if !p.Kind.IsSuperset(td.Kind()) {
			c.errorf(diagnostic.CodeArgumentType, n.Arguments[i],
				"invalid argument type for parameter %q of function %s: expected %s, got %s",
				p.Keyword, name, p.Kind, td.Kind())
			failed = true
			continue
		}

		var lit value.Value
		if l, ok := a.(*Literal); ok {
			lit = l.Value
		}
		argTypes.Insert(p.Keyword, td, lit)
	}
	if failed {
		return c.errorExpr(n)
	}

	resolved, err := fn.Resolve(argTypes)
	if err != nil {
		c.errorf(diagnostic.CodeFunctionResolve, n, "%s", errorMessage(err))
		return c.errorExpr(n)
	}

	if d, ok := fn.(functions.Deprecated); ok && d.Deprecation() != "" {
		sev := diagnostic.Warning
		if c.config.DeprecationsAsErrors {
			sev = diagnostic.Error
		}
		c.report(diagnostic.New(sev, diagnostic.CodeDeprecated, spanOf(n), "deprecated function: %s", name).
			WithNote(d.Deprecation()))
	}

	own := resolved.IsFallible()
	if !n.Abort {
		c.checkHandled(n, own, name)
	} else {
		c.info.Fallible = true
	}

	td := resolved.Finalize().WithFallible((own && !n.Abort) || argsFallible)
	return &FunctionCall{
		node:      node{span: spanOf(n), td: td},
		Name:      name,
		Function:  fn,
		Arguments: bound,
		Abort:     n.Abort,
		params:    params,
	}
}
