// Package compiler type-checks remap programs and builds executable
// Programs from them.
//
// Compilation walks the AST once, left to right, threading a
// [state.TypeState] through every node. Each node is checked against the
// state and turned into an [Expression] that carries its [types.TypeDef]
// and knows how to evaluate itself. Problems are collected as diagnostics
// rather than returned one at a time: a node that fails to compile is
// replaced by an [ErrorExpr] and compilation continues, so one run reports
// every error it can find.
//
// # Example
//
//	res, err := compiler.CompileSource(stdlib.Registry(), `.level = upcase!(.level)`, nil, compiler.CompileConfig{})
//	if err != nil {
//	    // err is a diagnostic.List
//	    log.Fatal(err)
//	}
//	out, err := res.Program.Evaluate(nil, value.NewEvent(event))
//
// # Fallibility
//
// An expression is fallible when it can fail at runtime even though it
// type-checked: a function whose resolver says so, or an operator whose
// operand kinds only sometimes fit. Every fallible operation must be
// handled, by the left-hand side of "??", by the right-hand side of an
// "ok, err = ..." assignment, or, for function calls, by calling the
// function as "name!(...)" to stop the program on error.
package compiler

import (
	"errors"
	"regexp"
	"time"

	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/parser"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Compiler holds the state of one compilation. Use Compile or
// CompileSource; a Compiler is not reusable.
type Compiler struct {
	fns      *functions.Registry
	config   CompileConfig
	declared *state.ExternalEnv
	diags    diagnostic.List
	info     ProgramInfo

	// handling counts the enclosing forms that handle errors. Fallible
	// operations compiled while it is zero are reported.
	handling int
}

// CompileSource parses and compiles source. A parse failure is reported as
// a single diagnostic with code 100.
func CompileSource(fns *functions.Registry, source string, st *state.TypeState, config CompileConfig) (*CompilationResult, error) {
	ast, err := parser.Parse(source)
	if err != nil {
		return nil, diagnostic.List{parseDiagnostic(err)}
	}
	res, err := Compile(fns, ast, st, config)
	if err != nil {
		return nil, err
	}
	res.Program.source = source
	return res, nil
}

func parseDiagnostic(err error) diagnostic.Diagnostic {
	span := diagnostic.Span{}
	msg := err.Error()
	var perr *types.Error
	if errors.As(err, &perr) {
		span = diagnostic.Span{Start: perr.Position, End: perr.Position + max(len(perr.Token), 1)}
		msg = perr.Message
	}
	return diagnostic.New(diagnostic.Error, diagnostic.CodeParse, span, "syntax error: %s", msg)
}

// Compile type-checks ast against st and builds a Program. st is cloned
// first; a nil st stands for an empty LocalEnv over the default
// ExternalEnv. The returned error, when non-nil, is a diagnostic.List
// holding every diagnostic found, and the result is nil.
func Compile(fns *functions.Registry, ast *types.ASTNode, st *state.TypeState, config CompileConfig) (*CompilationResult, error) {
	if st == nil {
		st = state.New(nil)
	} else {
		st = st.Clone()
	}

	c := &Compiler{
		fns:      fns,
		config:   config.Clone(),
		declared: st.External.Clone(),
	}

	root := c.compileProgram(ast, st)
	if c.diags.HasErrors() {
		return nil, c.diags
	}

	return &CompilationResult{
		Program: &Program{
			root:   root,
			result: root.TypeDef().Finalize(),
			info:   c.info,
			final:  st,
		},
		Warnings: c.diags,
		Config:   c.config,
	}, nil
}

func (c *Compiler) report(d diagnostic.Diagnostic) {
	c.diags.Add(d)
}

func (c *Compiler) errorf(code diagnostic.Code, n *types.ASTNode, format string, args ...interface{}) {
	c.report(diagnostic.New(diagnostic.Error, code, spanOf(n), format, args...))
}

// errorExpr returns the placeholder for a node that failed to compile. It
// accepts anything and cannot fail, so it never causes further
// diagnostics.
func (c *Compiler) errorExpr(n *types.ASTNode) *ErrorExpr {
	return &ErrorExpr{node{span: spanOf(n), td: types.AnyTypeDef()}}
}

func isErrorExpr(e Expression) bool {
	_, ok := e.(*ErrorExpr)
	return ok
}

func (c *Compiler) compileProgram(ast *types.ASTNode, st *state.TypeState) *Block {
	if ast == nil {
		return &Block{node: node{td: types.Infallible(types.Null())}}
	}
	if ast.Type != types.NodeProgram && ast.Type != types.NodeBlock {
		stmt := c.compileExpr(ast, st)
		return &Block{node: node{span: stmt.Span(), td: stmt.TypeDef()}, Statements: []Expression{stmt}}
	}
	return c.compileBlock(ast, st)
}

func (c *Compiler) compileExpr(n *types.ASTNode, st *state.TypeState) Expression {
	switch n.Type {
	case types.NodeString, types.NodeInteger, types.NodeFloat, types.NodeBoolean,
		types.NodeNull, types.NodeRegex, types.NodeTimestamp:
		return c.compileLiteral(n)
	case types.NodeArray:
		return c.compileArray(n, st)
	case types.NodeObject:
		return c.compileObject(n, st)
	case types.NodeVariable:
		return c.compileVariable(n, st)
	case types.NodeQuery:
		return c.compileQuery(n, st)
	case types.NodeBinary:
		return c.compileBinary(n, st)
	case types.NodeUnary:
		return c.compileUnary(n, st)
	case types.NodeFunction:
		return c.compileFunctionCall(n, st)
	case types.NodeIf:
		return c.compileIf(n, st)
	case types.NodeBlock, types.NodeProgram:
		return c.compileBlock(n, st)
	case types.NodeAssign:
		return c.compileAssignment(n, st)
	case types.NodeAbort:
		return c.compileAbort(n, st)
	}
	c.errorf(diagnostic.CodeParse, n, "unsupported expression: %s", n.Type)
	return c.errorExpr(n)
}

func (c *Compiler) compileLiteral(n *types.ASTNode) Expression {
	var (
		v  value.Value
		ok = true
	)
	switch n.Type {
	case types.NodeString:
		v = value.String(n.StrValue)
	case types.NodeInteger:
		var i int64
		i, ok = n.Value.(int64)
		v = value.Integer(i)
	case types.NodeFloat:
		var f float64
		f, ok = n.Value.(float64)
		v = value.Float(f)
	case types.NodeBoolean:
		var b bool
		b, ok = n.Value.(bool)
		v = value.Boolean(b)
	case types.NodeNull:
		v = value.NullValue
	case types.NodeRegex:
		re, err := regexp.Compile(n.StrValue)
		if err != nil {
			c.errorf(diagnostic.CodeInvalidLiteral, n, "invalid regex literal: %v", err)
			return c.errorExpr(n)
		}
		v = value.Regex{Regexp: re}
	case types.NodeTimestamp:
		t, err := time.Parse(time.RFC3339Nano, n.StrValue)
		if err != nil {
			c.errorf(diagnostic.CodeInvalidLiteral, n, "invalid timestamp literal: %q", n.StrValue)
			return c.errorExpr(n)
		}
		v = value.Timestamp{Time: t}
	}
	if !ok {
		c.errorf(diagnostic.CodeInvalidLiteral, n, "invalid %s literal", n.Type)
		return c.errorExpr(n)
	}
	return &Literal{node: node{span: spanOf(n), td: types.Infallible(v.Kind())}, Value: v}
}

func (c *Compiler) compileArray(n *types.ASTNode, st *state.TypeState) Expression {
	elems := make([]Expression, len(n.Arguments))
	kinds := make([]types.Kind, len(n.Arguments))
	fallible := false
	for i, a := range n.Arguments {
		elems[i] = c.compileExpr(a, st)
		kinds[i] = elems[i].TypeDef().Kind()
		fallible = fallible || elems[i].TypeDef().IsFallible()
	}
	td := types.Infallible(types.ArrayOf(kinds...)).WithFallible(fallible)
	return &ArrayLiteral{node: node{span: spanOf(n), td: td}, Elements: elems}
}

func (c *Compiler) compileObject(n *types.ASTNode, st *state.TypeState) Expression {
	values := make([]Expression, len(n.Expressions))
	fields := make(map[string]types.Kind, len(n.Keys))
	fallible := false
	for i, v := range n.Expressions {
		values[i] = c.compileExpr(v, st)
		fields[n.Keys[i]] = values[i].TypeDef().Kind()
		fallible = fallible || values[i].TypeDef().IsFallible()
	}
	td := types.Infallible(types.ObjectOf(fields)).WithFallible(fallible)
	return &ObjectLiteral{node: node{span: spanOf(n), td: td}, Keys: n.Keys, Values: values}
}

func (c *Compiler) compileVariable(n *types.ASTNode, st *state.TypeState) Expression {
	td, ok := st.Local.Get(n.StrValue)
	if !ok {
		c.errorf(diagnostic.CodeUndefinedVariable, n, "undefined variable: %s", n.StrValue)
		return c.errorExpr(n)
	}
	return &Variable{node: node{span: spanOf(n), td: td}, Name: n.StrValue}
}

func (c *Compiler) compileQuery(n *types.ASTNode, st *state.TypeState) Expression {
	q := &Query{node: node{span: spanOf(n)}, Name: n.StrValue, Path: n.Path}

	switch n.Root {
	case types.QueryEvent, types.QueryMetadata:
		q.Root = QueryEvent
		if n.Root == types.QueryMetadata {
			q.Root = QueryMetadata
		}
		tp, _ := q.TargetPath()
		q.td = types.Infallible(st.External.KindAt(tp))
		c.info.TargetQueries = appendPath(c.info.TargetQueries, tp)
	case types.QueryVariable:
		q.Root = QueryVariable
		td, ok := st.Local.Get(n.StrValue)
		if !ok {
			c.errorf(diagnostic.CodeUndefinedVariable, n, "undefined variable: %s", n.StrValue)
			return c.errorExpr(n)
		}
		q.td = td.At(n.Path)
	case types.QueryExpression:
		q.Root = QueryExpression
		q.Base = c.compileExpr(n.LHS, st)
		q.td = q.Base.TypeDef().At(n.Path)
	}
	return q
}

func appendPath(paths []types.TargetPath, p types.TargetPath) []types.TargetPath {
	for _, q := range paths {
		if q.Equal(p) {
			return paths
		}
	}
	return append(paths, p)
}

func (c *Compiler) compileBlock(n *types.ASTNode, st *state.TypeState) *Block {
	if n.Type != types.NodeBlock && n.Type != types.NodeProgram {
		stmt := c.compileExpr(n, st)
		return &Block{node: node{span: stmt.Span(), td: stmt.TypeDef()}, Statements: []Expression{stmt}}
	}

	stmts := make([]Expression, 0, len(n.Expressions))
	kind := types.Null()
	fallible := false
	for _, s := range n.Expressions {
		e := c.compileExpr(s, st)
		stmts = append(stmts, e)
		kind = e.TypeDef().Kind()
		fallible = fallible || e.TypeDef().IsFallible()
	}
	td := types.Infallible(kind).WithFallible(fallible)
	return &Block{node: node{span: spanOf(n), td: td}, Statements: stmts}
}

func (c *Compiler) compileIf(n *types.ASTNode, st *state.TypeState) Expression {
	pred := c.compileExpr(n.LHS, st)
	if !isErrorExpr(pred) && !pred.TypeDef().Kind().IsBoolean() {
		c.errorf(diagnostic.CodeNonBooleanPredicate, n.LHS, "if-statement predicate must be a boolean, got %s", pred.TypeDef().Kind())
	}

	thenState := st.Clone()
	then := c.compileBlock(n.RHS, thenState)

	var (
		els       Expression
		elseState = st
		elseKind  = types.Null()
		fallible  = pred.TypeDef().IsFallible() || then.TypeDef().IsFallible()
	)
	if n.Else != nil {
		elseState = st.Clone()
		els = c.compileExpr(n.Else, elseState)
		elseKind = els.TypeDef().Kind()
		fallible = fallible || els.TypeDef().IsFallible()
	}

	merged := thenState.Merge(elseState)
	st.Local, st.External = merged.Local, merged.External

	td := types.Infallible(then.TypeDef().Kind().Union(elseKind)).WithFallible(fallible)
	return &IfStatement{node: node{span: spanOf(n), td: td}, Predicate: pred, Then: then, Else: els}
}

func (c *Compiler) compileAbort(n *types.ASTNode, st *state.TypeState) Expression {
	c.info.Abortable = true
	c.info.Fallible = true

	e := &Abort{node: node{span: spanOf(n), td: types.Infallible(types.Never())}}
	if n.RHS != nil {
		e.Message = c.compileExpr(n.RHS, st)
		if !isErrorExpr(e.Message) && !e.Message.TypeDef().Kind().IsString() {
			c.errorf(diagnostic.CodeInvalidOperand, n.RHS, "abort message must be a string, got %s", e.Message.TypeDef().Kind())
		}
		e.td = e.td.WithFallible(e.Message.TypeDef().IsFallible())
	}
	return e
}
