package compiler

import (
	"cmp"
	"math"
	"strings"

	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Op is a binary operation, including error coalescing with "??".
type Op struct {
	node
	Operator string
	LHS      Expression
	RHS      Expression
}

func (e *Op) Resolve(ctx *runtime.Context) (value.Value, error) {
	switch e.Operator {
	case "??":
		v, err := e.LHS.Resolve(ctx)
		if err == nil {
			return v, nil
		}
		if isAbort(err) {
			return nil, err
		}
		return e.RHS.Resolve(ctx)
	case "&&", "||":
		return e.resolveLogical(ctx)
	}

	left, err := e.LHS.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.RHS.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	result, err := applyBinary(e.Operator, left, right)
	if err != nil {
		return nil, located(err, e.span)
	}
	return result, nil
}

// resolveLogical evaluates && and || with short-circuiting. Null counts as
// false.
func (e *Op) resolveLogical(ctx *runtime.Context) (value.Value, error) {
	left, err := e.LHS.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	lb, err := truthy(left)
	if err != nil {
		return nil, located(err, e.LHS.Span())
	}
	if e.Operator == "&&" && !lb {
		return value.Boolean(false), nil
	}
	if e.Operator == "||" && lb {
		return value.Boolean(true), nil
	}

	right, err := e.RHS.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	rb, err := truthy(right)
	if err != nil {
		return nil, located(err, e.RHS.Span())
	}
	return value.Boolean(rb), nil
}

func (e *Op) String() string {
	return "(" + e.LHS.String() + " " + e.Operator + " " + e.RHS.String() + ")"
}

// Unary is a prefix operation: "!" or "-".
type Unary struct {
	node
	Operator string
	Operand  Expression
}

func (e *Unary) Resolve(ctx *runtime.Context) (value.Value, error) {
	v, err := e.Operand.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	result, err := applyUnary(e.Operator, v)
	if err != nil {
		return nil, located(err, e.span)
	}
	return result, nil
}

func (e *Unary) String() string {
	return e.Operator + e.Operand.String()
}

func truthy(v value.Value) (bool, error) {
	switch x := v.(type) {
	case value.Boolean:
		return bool(x), nil
	case value.Null:
		return false, nil
	}
	return false, types.Errorf(types.ErrInvalidOperand, "expected boolean or null, got %s", v.Kind())
}

func invalidOperands(op string, l, r value.Value) error {
	return types.Errorf(types.ErrInvalidOperand, "invalid operands for %s: %s and %s", op, l.Kind(), r.Kind())
}

// applyBinary implements every binary operator except the logical ones.
func applyBinary(op string, l, r value.Value) (value.Value, error) {
	switch op {
	case "==":
		return value.Boolean(value.Equal(l, r)), nil
	case "!=":
		return value.Boolean(!value.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		return compare(op, l, r)
	}

	if op == "+" {
		if ls, ok := l.(value.String); ok {
			if rs, ok := r.(value.String); ok {
				return ls + rs, nil
			}
			return nil, invalidOperands(op, l, r)
		}
	}

	li, lInt := l.(value.Integer)
	ri, rInt := r.(value.Integer)
	if lInt && rInt {
		switch op {
		case "+", "-", "*":
			if res, ok := checkedInt(op, int64(li), int64(ri)); ok {
				return value.Integer(res), nil
			}
			return nil, types.Errorf(types.ErrNumberTooLarge, "integer overflow: %d %s %d", li, op, ri)
		case "%":
			if ri == 0 {
				return nil, types.NewExpressionError(types.ErrDivideByZero, "can't calculate remainder of dividing by zero")
			}
			return li % ri, nil
		}
	}

	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, invalidOperands(op, l, r)
	}

	var res float64
	switch op {
	case "+":
		res = lf + rf
	case "-":
		res = lf - rf
	case "*":
		res = lf * rf
	case "/":
		if rf == 0 {
			return nil, types.NewExpressionError(types.ErrDivideByZero, "can't divide by zero")
		}
		res = lf / rf
	case "%":
		if rf == 0 {
			return nil, types.NewExpressionError(types.ErrDivideByZero, "can't calculate remainder of dividing by zero")
		}
		res = math.Mod(lf, rf)
	default:
		return nil, types.Errorf(types.ErrInvalidOperand, "unknown operator %s", op)
	}
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return nil, types.NewExpressionError(types.ErrNumberTooLarge, "number out of range")
	}
	return value.Float(res), nil
}

// checkedInt applies +, - or * to a and b, and reports false when the result
// does not fit in an int64.
func checkedInt(op string, a, b int64) (int64, bool) {
	switch op {
	case "+":
		res := a + b
		return res, (a >= 0) != (b >= 0) || (res >= 0) == (a >= 0)
	case "-":
		res := a - b
		return res, (a >= 0) == (b >= 0) || (res >= 0) == (a >= 0)
	case "*":
		if a == 0 || b == 0 {
			return 0, true
		}
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, false
		}
		res := a * b
		return res, res/b == a
	}
	return 0, false
}

func toFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return float64(x), true
	case value.Float:
		return float64(x), true
	}
	return 0, false
}

func compare(op string, l, r value.Value) (value.Value, error) {
	var c int
	ls, lStr := l.(value.String)
	rs, rStr := r.(value.String)
	lt, lTime := l.(value.Timestamp)
	rt, rTime := r.(value.Timestamp)
	li, lInt := l.(value.Integer)
	ri, rInt := r.(value.Integer)
	lf, lNum := toFloat(l)
	rf, rNum := toFloat(r)

	switch {
	case lStr && rStr:
		c = strings.Compare(string(ls), string(rs))
	case lTime && rTime:
		c = lt.Compare(rt.Time)
	case lInt && rInt:
		c = cmp.Compare(li, ri)
	case lNum && rNum:
		c = cmp.Compare(lf, rf)
	default:
		return nil, invalidOperands(op, l, r)
	}

	switch op {
	case "<":
		return value.Boolean(c < 0), nil
	case "<=":
		return value.Boolean(c <= 0), nil
	case ">":
		return value.Boolean(c > 0), nil
	}
	return value.Boolean(c >= 0), nil
}

func applyUnary(op string, v value.Value) (value.Value, error) {
	switch op {
	case "!":
		if b, ok := v.(value.Boolean); ok {
			return !b, nil
		}
	case "-":
		switch x := v.(type) {
		case value.Integer:
			if x == math.MinInt64 {
				return nil, types.Errorf(types.ErrNumberTooLarge, "integer overflow: -(%d)", x)
			}
			return -x, nil
		case value.Float:
			return -x, nil
		}
	}
	return nil, types.Errorf(types.ErrInvalidOperand, "invalid operand for %s: %s", op, v.Kind())
}

// binaryKind returns the result kind of op applied to one primitive kind on
// each side, and false when the combination is always a runtime error.
func binaryKind(op string, l, r types.Kind) (types.Kind, bool) {
	numeric := func(k types.Kind) bool { return k.IsInteger() || k.IsFloat() }

	switch op {
	case "==", "!=":
		return types.Boolean(), true
	case "&&", "||":
		ok := func(k types.Kind) bool { return k.IsBoolean() || k.IsNull() }
		return types.Boolean(), ok(l) && ok(r)
	case "<", "<=", ">", ">=":
		switch {
		case numeric(l) && numeric(r),
			l.IsString() && r.IsString(),
			l.IsTimestamp() && r.IsTimestamp():
			return types.Boolean(), true
		}
		return types.Never(), false
	case "+":
		if l.IsString() && r.IsString() {
			return types.String(), true
		}
		fallthrough
	case "-", "*", "%":
		if l.IsInteger() && r.IsInteger() {
			return types.Integer(), true
		}
		fallthrough
	case "/":
		if numeric(l) && numeric(r) {
			return types.Float(), true
		}
	}
	return types.Never(), false
}

// unaryKind is binaryKind for prefix operators.
func unaryKind(op string, k types.Kind) (types.Kind, bool) {
	switch {
	case op == "!" && k.IsBoolean():
		return types.Boolean(), true
	case op == "-" && k.IsInteger():
		return types.Integer(), true
	case op == "-" && k.IsFloat():
		return types.Float(), true
	}
	return types.Never(), false
}

// nonZeroNumber reports whether e is a numeric literal other than zero.
func nonZeroNumber(e Expression) bool {
	lit, ok := e.(*Literal)
	if !ok {
		return false
	}
	switch v := lit.Value.(type) {
	case value.Integer:
		return v != 0
	case value.Float:
		return v != 0
	}
	return false
}

func (c *Compiler) compileBinary(n *types.ASTNode, st *state.TypeState) Expression {
	op := n.StrValue
	if op == "??" {
		return c.compileCoalesce(n, st)
	}

	lhs := c.compileExpr(n.LHS, st)
	var rhs Expression
	if op == "&&" || op == "||" {
		// The right-hand side may not run.
		rhsState := st.Clone()
		rhs = c.compileExpr(n.RHS, rhsState)
		merged := st.Merge(rhsState)
		st.Local, st.External = merged.Local, merged.External
	} else {
		rhs = c.compileExpr(n.RHS, st)
	}
	if isErrorExpr(lhs) || isErrorExpr(rhs) {
		return c.errorExpr(n)
	}

	lk, rk := lhs.TypeDef().Kind(), rhs.TypeDef().Kind()
	operandsFallible := lhs.TypeDef().IsFallible() || rhs.TypeDef().IsFallible()
	if lk.IsNever() || rk.IsNever() {
		return &Op{node: node{span: spanOf(n), td: types.Infallible(types.Never()).WithFallible(operandsFallible)}, Operator: op, LHS: lhs, RHS: rhs}
	}

	result := types.Never()
	partial := false
	for _, l := range lk.Primitives() {
		for _, r := range rk.Primitives() {
			if k, ok := binaryKind(op, l, r); ok {
				result = result.Union(k)
			} else {
				partial = true
			}
		}
	}
	if result.IsNever() {
		c.errorf(diagnostic.CodeInvalidOperand, n, "invalid operands for %s: %s and %s", op, lk, rk)
		return c.errorExpr(n)
	}

	intrinsic := partial || ((op == "/" || op == "%") && !nonZeroNumber(rhs))
	c.checkHandled(n, intrinsic, "")

	td := types.Infallible(result).WithFallible(intrinsic || operandsFallible)
	return &Op{node: node{span: spanOf(n), td: td}, Operator: op, LHS: lhs, RHS: rhs}
}

// compileCoalesce compiles "lhs ?? rhs". Errors raised on the left-hand
// side are handled; the right-hand side only runs when the left fails.
func (c *Compiler) compileCoalesce(n *types.ASTNode, st *state.TypeState) Expression {
	c.handling++
	lhs := c.compileExpr(n.LHS, st)
	c.handling--

	rhsState := st.Clone()
	rhs := c.compileExpr(n.RHS, rhsState)
	merged := st.Merge(rhsState)
	st.Local, st.External = merged.Local, merged.External

	if !isErrorExpr(lhs) && lhs.TypeDef().IsInfallible() {
		c.report(diagnostic.New(diagnostic.Warning, diagnostic.CodeUnnecessaryCoalesce, spanOf(n),
			"unnecessary error coalescing: left-hand side can't fail").
			WithLabel("this expression can't fail", lhs.Span()))
	}

	kind := lhs.TypeDef().Kind().Union(rhs.TypeDef().Kind())
	td := types.Infallible(kind).WithFallible(rhs.TypeDef().IsFallible())
	return &Op{node: node{span: spanOf(n), td: td}, Operator: "??", LHS: lhs, RHS: rhs}
}

func (c *Compiler) compileUnary(n *types.ASTNode, st *state.TypeState) Expression {
	op := n.StrValue
	operand := c.compileExpr(n.RHS, st)
	if isErrorExpr(operand) {
		return c.errorExpr(n)
	}

	k := operand.TypeDef().Kind()
	if k.IsNever() {
		return &Unary{node: node{span: spanOf(n), td: operand.TypeDef()}, Operator: op, Operand: operand}
	}

	result := types.Never()
	partial := false
	for _, p := range k.Primitives() {
		if rk, ok := unaryKind(op, p); ok {
			result = result.Union(rk)
		} else {
			partial = true
		}
	}
	if result.IsNever() {
		c.errorf(diagnostic.CodeInvalidOperand, n, "invalid operand for %s: %s", op, k)
		return c.errorExpr(n)
	}
	c.checkHandled(n, partial, "")

	td := types.Infallible(result).WithFallible(partial || operand.TypeDef().IsFallible())
	return &Unary{node: node{span: spanOf(n), td: td}, Operator: op, Operand: operand}
}

// checkHandled reports an intrinsically fallible node compiled outside
// every handling form. fn names the function for calls.
func (c *Compiler) checkHandled(n *types.ASTNode, fallible bool, fn string) {
	if !fallible || c.handling > 0 {
		return
	}
	note := `handle the error with "??" or with an "ok, err = ..." assignment`
	if fn != "" {
		note += `, or call ` + fn + `!(...) to abort on error`
	}
	c.report(diagnostic.New(diagnostic.Error, diagnostic.CodeUnhandledFallible, spanOf(n),
		"unhandled fallible operation").WithNote(note))
}
