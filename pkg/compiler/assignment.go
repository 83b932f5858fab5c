package compiler

import (
	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// AssignTarget is where an assignment writes: a local variable (optionally
// a path inside it) or a path in the target.
type AssignTarget struct {
	// Local names the variable written. Empty for target paths.
	Local string
	// Path is the path inside the variable, or the target path.
	Path types.TargetPath
}

// IsExternal reports whether the assignment writes to the target.
func (t AssignTarget) IsExternal() bool { return t.Local == "" }

func (t AssignTarget) write(ctx *runtime.Context, v value.Value) error {
	v = value.Clone(v)
	if t.IsExternal() {
		target := ctx.Target()
		if target == nil {
			return types.NewExpressionError(types.ErrRuntime, "no target to assign to")
		}
		return target.Insert(t.Path, v)
	}
	if t.Path.Path.IsRoot() {
		ctx.SetLocal(t.Local, v)
		return nil
	}
	cur, _ := ctx.Local(t.Local)
	nv, err := value.Insert(cur, t.Path.Path, v)
	if err != nil {
		return err
	}
	ctx.SetLocal(t.Local, nv)
	return nil
}

func (t AssignTarget) String() string {
	if t.IsExternal() {
		return t.Path.String()
	}
	return t.Local + t.Path.Path.String()
}

// Assignment writes the value of an expression to a target. In the
// "ok, err = expr" form a failure is stored in Err instead of propagated,
// and Target receives the zero value of the expected kind.
type Assignment struct {
	node
	Target AssignTarget
	Err    *AssignTarget
	Value  Expression

	zero value.Value
}

func (e *Assignment) Resolve(ctx *runtime.Context) (value.Value, error) {
	v, err := e.Value.Resolve(ctx)
	if e.Err == nil {
		if err != nil {
			return nil, err
		}
		if err := e.Target.write(ctx, v); err != nil {
			return nil, located(err, e.span)
		}
		return v, nil
	}

	var errValue value.Value = value.NullValue
	if err != nil {
		if isAbort(err) {
			return nil, err
		}
		v = e.zero
		errValue = value.String(errorMessage(err))
	}
	if err := e.Target.write(ctx, v); err != nil {
		return nil, located(err, e.span)
	}
	if err := e.Err.write(ctx, errValue); err != nil {
		return nil, located(err, e.span)
	}
	return v, nil
}

func (e *Assignment) String() string {
	if e.Err != nil {
		return e.Target.String() + ", " + e.Err.String() + " = " + e.Value.String()
	}
	return e.Target.String() + " = " + e.Value.String()
}

func errorMessage(err error) string {
	if ee, ok := err.(*types.ExpressionError); ok {
		return ee.Message
	}
	return err.Error()
}

// zeroValue returns the value an error assignment stores in its ok target
// when the expression fails: the empty value of k when k is a single
// primitive kind, and null otherwise.
func zeroValue(k types.Kind) value.Value {
	switch {
	case k.IsString():
		return value.String("")
	case k.IsInteger():
		return value.Integer(0)
	case k.IsFloat():
		return value.Float(0)
	case k.IsBoolean():
		return value.Boolean(false)
	case k.IsArray():
		return value.Array{}
	case k.IsObject():
		return value.Object{}
	}
	return value.NullValue
}

func (c *Compiler) compileAssignment(n *types.ASTNode, st *state.TypeState) Expression {
	errForm := n.ErrTarget != nil
	if errForm {
		c.handling++
	}
	rhs := c.compileExpr(n.RHS, st)
	if errForm {
		c.handling--
	}

	target, ok := c.assignTarget(n.LHS)
	if !ok {
		return c.errorExpr(n)
	}
	e := &Assignment{Target: target, Value: rhs}

	rtd := rhs.TypeDef()
	kind := rtd.Kind()
	td := rtd
	if errForm {
		errTarget, ok := c.assignTarget(n.ErrTarget)
		if !ok {
			return c.errorExpr(n)
		}
		e.Err = &errTarget
		e.zero = zeroValue(kind)

		errKind := types.Null()
		switch {
		case isErrorExpr(rhs):
		case rtd.IsInfallible():
			c.report(diagnostic.New(diagnostic.Warning, diagnostic.CodeUnnecessaryErrAssign, spanOf(n),
				"unnecessary error assignment: right-hand side can't fail").
				WithLabel("this expression can't fail", rhs.Span()))
		default:
			kind = kind.Union(e.zero.Kind())
			errKind = types.String().Union(types.Null())
		}
		td = types.Infallible(kind)
		c.assign(errTarget, errKind, n.ErrTarget, st)
	}
	c.assign(target, kind, n.LHS, st)

	e.node = node{span: spanOf(n), td: td}
	return e
}

// assignTarget converts the left-hand side of an assignment.
func (c *Compiler) assignTarget(n *types.ASTNode) (AssignTarget, bool) {
	switch {
	case n.Type == types.NodeVariable:
		return AssignTarget{Local: n.StrValue, Path: types.EventPath(nil)}, true
	case n.Type == types.NodeQuery && n.Root == types.QueryVariable:
		return AssignTarget{Local: n.StrValue, Path: types.EventPath(n.Path)}, true
	case n.Type == types.NodeQuery && n.Root == types.QueryEvent:
		return AssignTarget{Path: types.EventPath(n.Path)}, true
	case n.Type == types.NodeQuery && n.Root == types.QueryMetadata:
		return AssignTarget{Path: types.MetadataPath(n.Path)}, true
	}
	c.errorf(diagnostic.CodeInvalidOperand, n, "invalid assignment target")
	return AssignTarget{}, false
}

// assign records in st that a value of kind k has been written to t.
func (c *Compiler) assign(t AssignTarget, k types.Kind, n *types.ASTNode, st *state.TypeState) {
	if !t.IsExternal() {
		if t.Path.Path.IsRoot() {
			st.Local.Insert(t.Local, types.Infallible(k))
			return
		}
		base := types.Null()
		if td, ok := st.Local.Get(t.Local); ok {
			base = td.Kind()
		}
		st.Local.Insert(t.Local, types.Infallible(base.Insert(t.Path.Path, k)))
		return
	}

	if c.config.IsReadOnly(t.Path) {
		c.errorf(diagnostic.CodeReadOnlyPath, n, "cannot assign to read-only path %s", t.Path)
		return
	}
	if t.Path.Prefix == types.PrefixMetadata && t.Path.Path.IsRoot() && !k.IsObject() {
		c.errorf(diagnostic.CodeInvalidOperand, n, "metadata root must be an object, got %s", k)
		return
	}

	if declared := c.declared.KindAt(t.Path); !declared.IsAny() && !declared.IsSuperset(k) {
		sev := diagnostic.Warning
		if c.config.StrictSchema {
			sev = diagnostic.Error
		}
		c.report(diagnostic.New(sev, diagnostic.CodeSchemaChange, spanOf(n),
			"assignment changes the type of %s from %s to %s", t.Path, declared, k))
	}

	st.External.Update(t.Path, k)
	c.info.TargetAssignments = appendPath(c.info.TargetAssignments, t.Path)
}
