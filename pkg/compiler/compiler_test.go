package compiler

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

func testRegistry() *functions.Registry {
	return functions.MustRegistry(
		&functions.Def{
			Name:      "parse_int",
			Signature: "<s:i>",
			Keywords:  []string{"value"},
			Fallible:  true,
			Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
				s, err := args.String("value")
				if err != nil {
					return nil, err
				}
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return nil, err
				}
				return value.Integer(n), nil
			},
		},
		&functions.Def{
			Name:      "upcase",
			Signature: "<s:s>",
			Keywords:  []string{"value"},
			Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
				s, err := args.String("value")
				if err != nil {
					return nil, err
				}
				return value.String(strings.ToUpper(s)), nil
			},
		},
		&functions.Def{
			Name:      "double",
			Signature: "<i:i>",
			Keywords:  []string{"value"},
			Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
				n, err := args.Integer("value")
				if err != nil {
					return nil, err
				}
				return value.Integer(n * 2), nil
			},
		},
		&functions.Def{
			Name:      "repeat",
			Signature: "<s-i?:s>",
			Keywords:  []string{"value", "times"},
			Defaults:  map[string]value.Value{"times": value.Integer(2)},
			Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
				s, err := args.String("value")
				if err != nil {
					return nil, err
				}
				n, err := args.Integer("times")
				if err != nil {
					return nil, err
				}
				return value.String(strings.Repeat(s, int(n))), nil
			},
		},
		&functions.Def{
			Name:       "legacy",
			Signature:  "<x:x>",
			Keywords:   []string{"value"},
			Deprecated: "use upcase instead",
			Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
				return args.Value("value"), nil
			},
		},
	)
}

func compile(t *testing.T, source string, opts ...CompileOption) *CompilationResult {
	t.Helper()
	res, err := CompileSource(testRegistry(), source, nil, NewConfig(opts...))
	require.NoError(t, err, source)
	return res
}

func compileErr(t *testing.T, source string, opts ...CompileOption) diagnostic.List {
	t.Helper()
	res, err := CompileSource(testRegistry(), source, nil, NewConfig(opts...))
	require.Error(t, err, source)
	assert.Nil(t, res)
	var diags diagnostic.List
	require.True(t, errors.As(err, &diags))
	return diags
}

func codes(l diagnostic.List) []diagnostic.Code {
	out := make([]diagnostic.Code, len(l))
	for i, d := range l {
		out[i] = d.Code
	}
	return out
}

func countCode(l diagnostic.List, code diagnostic.Code) int {
	n := 0
	for _, d := range l {
		if d.Code == code {
			n++
		}
	}
	return n
}

func run(t *testing.T, source string, event value.Value) (value.Value, *value.Event) {
	t.Helper()
	res := compile(t, source)
	target := value.NewEvent(event)
	out, err := res.Program.Evaluate(nil, target)
	require.NoError(t, err, source)
	return out, target
}

func TestCompileIntegerAddition(t *testing.T) {
	res := compile(t, "1 + 1")
	td := res.Program.TypeDef()
	assert.True(t, td.Kind().IsInteger())
	assert.True(t, td.IsInfallible())
	assert.Empty(t, res.Warnings)

	out, err := res.Program.Evaluate(nil, value.NewEvent(nil))
	require.NoError(t, err)
	assert.Equal(t, value.Integer(2), out)
}

func TestCompileUndefinedVariable(t *testing.T) {
	diags := compileErr(t, "foo")
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.CodeUndefinedVariable, diags[0].Code)
	assert.Equal(t, "undefined variable: foo", diags[0].Message)
	assert.Equal(t, diagnostic.Span{Start: 0, End: 3}, diags[0].Span)
}

func TestCompileUnhandledFallibleCall(t *testing.T) {
	diags := compileErr(t, `parse_int("abc")`)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.CodeUnhandledFallible, diags[0].Code)
	assert.Contains(t, diags[0].Notes[0], "parse_int!(...)")

	t.Run("coalesce", func(t *testing.T) {
		out, _ := run(t, `parse_int("abc") ?? 0`, nil)
		assert.Equal(t, value.Integer(0), out)
	})

	t.Run("error assignment", func(t *testing.T) {
		res := compile(t, `x, err = parse_int("abc")`)
		ctx := runtime.NewContext(nil, nil)
		_, err := res.Program.Evaluate(ctx, value.NewEvent(nil))
		require.NoError(t, err)

		x, _ := ctx.Local("x")
		assert.Equal(t, value.Integer(0), x)
		msg, _ := ctx.Local("err")
		s, ok := msg.(value.String)
		require.True(t, ok)
		assert.Contains(t, string(s), "invalid syntax")

		st := res.Program.FinalState()
		errTD, ok := st.Local.Get("err")
		require.True(t, ok)
		assert.True(t, errTD.Kind().Equal(types.String().Union(types.Null())))
	})

	t.Run("abort on error", func(t *testing.T) {
		res := compile(t, `parse_int!("abc")`)
		assert.True(t, res.Program.Info().Fallible)
		assert.True(t, res.Program.TypeDef().IsInfallible())

		_, err := res.Program.Evaluate(nil, value.NewEvent(nil))
		require.Error(t, err)
		var ee *types.ExpressionError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, types.ErrAborted, ee.Code)
		assert.Contains(t, ee.Message, `function call error for "parse_int"`)
	})
}

func TestCompileBranchMergeFeedsArgumentCheck(t *testing.T) {
	src := `if .flag == true { x = "a" } else { x = 1 }`
	res := compile(t, src)
	td, ok := res.Program.FinalState().Local.Get("x")
	require.True(t, ok)
	assert.True(t, td.Kind().Equal(types.String().Union(types.Integer())), td.Kind().String())

	diags := compileErr(t, src+"\ndouble(x)")
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.CodeArgumentType, diags[0].Code)
	assert.Contains(t, diags[0].Message, `parameter "value" of function double`)
}

func TestCompileIfWithoutElse(t *testing.T) {
	res := compile(t, `if .a == 1 { x = 1 }`)
	td, ok := res.Program.FinalState().Local.Get("x")
	require.True(t, ok)
	assert.True(t, td.Kind().Equal(types.Integer().Union(types.Null())))
	assert.True(t, res.Program.TypeDef().Kind().Equal(types.Integer().Union(types.Null())))
}

func TestCompileDiagnostics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		codes  []diagnostic.Code
		msg    string
	}{
		{"syntax", "1 +", []diagnostic.Code{diagnostic.CodeParse}, "syntax error"},
		{"predicate", `if "x" { 1 }`, []diagnostic.Code{diagnostic.CodeNonBooleanPredicate}, "predicate must be a boolean, got string"},
		{"undefined function", `nope()`, []diagnostic.Code{diagnostic.CodeUndefinedFunction}, "undefined function: nope"},
		{"too few", `upcase()`, []diagnostic.Code{diagnostic.CodeArity}, "expected 1, got 0"},
		{"too many", `repeat("a", 1, 2)`, []diagnostic.Code{diagnostic.CodeArity}, "expected 1 to 2, got 3"},
		{"argument type", `upcase(1)`, []diagnostic.Code{diagnostic.CodeArgumentType}, "expected string, got integer"},
		{"invalid operands", `"a" - 1`, []diagnostic.Code{diagnostic.CodeInvalidOperand}, "invalid operands for -"},
		{"invalid unary", `!"a"`, []diagnostic.Code{diagnostic.CodeInvalidOperand}, "invalid operand for !"},
		{"invalid regex", `r'('`, []diagnostic.Code{diagnostic.CodeInvalidLiteral}, "invalid regex literal"},
		{"invalid timestamp", `t'yesterday'`, []diagnostic.Code{diagnostic.CodeInvalidLiteral}, "invalid timestamp literal"},
		{"abort message", `abort 1`, []diagnostic.Code{diagnostic.CodeInvalidOperand}, "abort message must be a string"},
		{"metadata root", `% = 1`, []diagnostic.Code{diagnostic.CodeInvalidOperand}, "metadata root must be an object"},
		{"errors keep going", "foo\nbar", []diagnostic.Code{diagnostic.CodeUndefinedVariable, diagnostic.CodeUndefinedVariable}, "undefined variable: foo"},
		{"no cascade", `upcase(foo) + 1`, []diagnostic.Code{diagnostic.CodeUndefinedVariable}, "undefined variable: foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := compileErr(t, tt.source)
			assert.Equal(t, tt.codes, codes(diags))
			assert.Contains(t, diags[0].Message, tt.msg)
		})
	}
}

func TestCompileWarnings(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   diagnostic.Code
	}{
		{"unnecessary coalesce", `.a ?? 1`, diagnostic.CodeUnnecessaryCoalesce},
		{"unnecessary error assignment", `x, err = 1`, diagnostic.CodeUnnecessaryErrAssign},
		{"deprecated", `legacy(1)`, diagnostic.CodeDeprecated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, tt.source)
			require.Len(t, res.Warnings, 1)
			assert.Equal(t, tt.code, res.Warnings[0].Code)
			assert.Equal(t, diagnostic.Warning, res.Warnings[0].Severity)
		})
	}

	t.Run("deprecations as errors", func(t *testing.T) {
		diags := compileErr(t, `legacy(1)`, WithDeprecationsAsErrors(true))
		require.Len(t, diags, 1)
		assert.Equal(t, diagnostic.Error, diags[0].Severity)
		assert.Equal(t, []string{"use upcase instead"}, diags[0].Notes)
	})
}

func TestCompileUnhandledCount(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{`.a + 1`, 1},
		{`parse_int("1") + parse_int("2")`, 2},
		{`parse_int("1") / 0`, 2},
		{`-.a`, 1},
		{`upcase(parse_int("1") ?? "x")`, 0},
		{`[parse_int("1"), {"a": parse_int("2")}]`, 2},
		{`if .a == 1 { 1 / .b } else { .c - 1 }`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			res, err := CompileSource(testRegistry(), tt.source, nil, CompileConfig{})
			if tt.want == 0 {
				require.Error(t, err)
				assert.Zero(t, countCode(err.(diagnostic.List), diagnostic.CodeUnhandledFallible))
				return
			}
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.want, countCode(err.(diagnostic.List), diagnostic.CodeUnhandledFallible))
		})
	}

	t.Run("non-zero literal divisor", func(t *testing.T) {
		res := compile(t, `10 / 4`)
		assert.True(t, res.Program.TypeDef().Kind().IsFloat())
		assert.True(t, res.Program.TypeDef().IsInfallible())
	})
}

// walk calls fn for e and every expression below it.
func walk(e Expression, fn func(Expression)) {
	if e == nil {
		return
	}
	fn(e)
	switch e := e.(type) {
	case *ArrayLiteral:
		for _, x := range e.Elements {
			walk(x, fn)
		}
	case *ObjectLiteral:
		for _, x := range e.Values {
			walk(x, fn)
		}
	case *Query:
		walk(e.Base, fn)
	case *Block:
		for _, x := range e.Statements {
			walk(x, fn)
		}
	case *IfStatement:
		walk(e.Predicate, fn)
		walk(e.Then, fn)
		walk(e.Else, fn)
	case *Abort:
		walk(e.Message, fn)
	case *Op:
		walk(e.LHS, fn)
		walk(e.RHS, fn)
	case *Unary:
		walk(e.Operand, fn)
	case *FunctionCall:
		for _, a := range e.Arguments {
			walk(a.Expr, fn)
		}
	case *Assignment:
		walk(e.Value, fn)
	}
}

func children(e Expression) []Expression {
	var out []Expression
	switch e := e.(type) {
	case *ArrayLiteral:
		out = e.Elements
	case *ObjectLiteral:
		out = e.Values
	case *Op:
		out = []Expression{e.LHS, e.RHS}
	case *Unary:
		out = []Expression{e.Operand}
	case *FunctionCall:
		for _, a := range e.Arguments {
			out = append(out, a.Expr)
		}
	}
	return out
}

func TestFallibilityPropagatesOutward(t *testing.T) {
	sources := []string{
		`x = (parse_int("1") + 1) ?? 0`,
		`y = [upcase(s'a'), {"n": (double(parse_int("2")) + 1) ?? 0}]`,
		`ok, err = -(parse_int(upcase("1")) * 2)`,
		`z = ((1 / .d) * 2) ?? 0.0`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			res := compile(t, src)
			checked := 0
			for _, stmt := range res.Program.Statements() {
				walk(stmt, func(e Expression) {
					if op, ok := e.(*Op); ok && op.Operator == "??" {
						return
					}
					for _, child := range children(e) {
						if child.TypeDef().IsFallible() {
							checked++
							assert.True(t, e.TypeDef().IsFallible(), "%s wraps fallible %s", e, child)
						}
					}
				})
			}
			assert.Positive(t, checked)
		})
	}
}

func TestTypeStateMergeLaws(t *testing.T) {
	final := func(src string) *state.TypeState {
		return compile(t, src).Program.FinalState()
	}
	a := final("x = 1\n.a = \"s\"")
	b := final("x = \"s\"\ny = true\n%m = 1")
	c := final("z = [1]\n.a = 2\n.b.c = null")

	assert.True(t, a.Merge(b).Equal(b.Merge(a)))
	assert.True(t, a.Merge(b).Merge(c).Equal(a.Merge(b.Merge(c))))
	assert.True(t, a.Merge(a).Equal(a))
}

func TestProgramStringRoundTrip(t *testing.T) {
	sources := []string{
		`.a = 1 + 2 * 3`,
		"x = {\"a\": [1, 2.5, true, null]}\n.y = x.a[1]",
		`if .b == "x" { .c = 1 } else if .b == "y" { .c = 2 } else { .c = 3 }`,
		`ok, err = parse_int("12")`,
		`%meta.k = "v"`,
		`.msg = upcase(s'it\'s')`,
		`.r = r'a\'+'`,
		`.t = t'2024-01-02T03:04:05Z'`,
		`.n = -(1 + 2)`,
		`if .a == 1 { abort "stop" }`,
		`.f = parse_int!("7") ?? 1`,
		`.g = repeat("ab")`,
		`.h = (.a.b)[0].c`,
		`.i = !(.x == 1 && .y != 2 || false)`,
		`{ a = 1; a }`,
		"\"a\x01b\"",
		"\"\xff\"",
		"\"\x00\"",
		"\"tab\tquote\\\"back\\\\slash\x7f\"",
		".\"a\x01\".b = {\"k\\n\xfe\": 1}",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first := compile(t, src).Program
			second := compile(t, first.String()).Program
			if diff := cmp.Diff(first.String(), second.String()); diff != "" {
				t.Errorf("rendering changed after recompiling (-first +second):\n%s", diff)
			}
			assert.True(t, first.TypeDef().Equal(second.TypeDef()))
			assert.True(t, first.FinalState().Equal(second.FinalState()))
		})
	}
}

func TestProgramStringKeepsStringBytes(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"control byte", "a\x01b"},
		{"nul", "\x00"},
		{"invalid utf-8", "\xff"},
		{"truncated rune", "x\xe2\x82"},
		{"escapes", "\"\\\n\r\t"},
		{"delete", "\x7f"},
		{"unicode", "caf\u00e9 \U0001F600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := ".s = " + value.String(tt.text).String()
			first := compile(t, src).Program
			second := compile(t, first.String()).Program
			for _, p := range []*Program{first, second} {
				out, err := p.Evaluate(nil, value.NewEvent(nil))
				require.NoError(t, err)
				assert.Equal(t, value.String(tt.text), out)
			}
		})
	}
}

func TestReadOnlyPaths(t *testing.T) {
	ro := func(path string, recursive bool) CompileOption {
		p, err := types.ParseTargetPath(path)
		require.NoError(t, err)
		return WithReadOnlyPath(p, recursive)
	}
	tests := []struct {
		name    string
		source  string
		opt     CompileOption
		blocked bool
	}{
		{"exact", `.a = 1`, ro(".a", false), true},
		{"child of non-recursive", `.a.b = 1`, ro(".a", false), false},
		{"child of recursive", `.a.b = 1`, ro(".a", true), true},
		{"parent", `. = {}`, ro(".a.b", false), true},
		{"sibling", `.b = 1`, ro(".a", true), false},
		{"metadata is separate", `%a = 1`, ro(".a", true), false},
		{"metadata", `%a.b = 1`, ro("%a", true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CompileSource(testRegistry(), tt.source, nil, NewConfig(tt.opt))
			if !tt.blocked {
				require.NoError(t, err)
				require.NotNil(t, res)
				return
			}
			require.Error(t, err)
			diags := err.(diagnostic.List)
			assert.Equal(t, []diagnostic.Code{diagnostic.CodeReadOnlyPath}, codes(diags))
		})
	}
}

func TestSchemaChange(t *testing.T) {
	ext := state.NewExternalEnv(types.ObjectOf(map[string]types.Kind{"a": types.Integer()}), types.AnyObject())
	st := state.New(ext)

	res, err := CompileSource(testRegistry(), `.a = "x"`, st, CompileConfig{})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, diagnostic.CodeSchemaChange, res.Warnings[0].Code)
	assert.Contains(t, res.Warnings[0].Message, "from integer to string")

	_, err = CompileSource(testRegistry(), `.a = "x"`, st, NewConfig(WithStrictSchema(true)))
	require.Error(t, err)

	res, err = CompileSource(testRegistry(), `.a = 2`, st, NewConfig(WithStrictSchema(true)))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	// the caller's state is not modified
	assert.True(t, st.External.KindAt(types.EventPath(types.Path{types.FieldSegment("a")})).IsInteger())
}

func TestProgramInfo(t *testing.T) {
	res := compile(t, ".b = .a\n.b = .a.c\n%m = .b\nif .x == 1 { abort }")
	info := res.Program.Info()
	assert.True(t, info.Abortable)
	assert.True(t, info.Fallible)

	paths := func(ps []types.TargetPath) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.String()
		}
		return out
	}
	assert.Equal(t, []string{".a", ".a.c", ".b", ".x"}, paths(info.TargetQueries))
	assert.Equal(t, []string{".b", "%m"}, paths(info.TargetAssignments))

	plain := compile(t, `.a = 1`).Program.Info()
	assert.False(t, plain.Fallible)
	assert.False(t, plain.Abortable)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		event  string
		out    string
		after  string
	}{
		{"empty program", ``, `{}`, `null`, `{}`},
		{"assign event", `.b = .a + 1`, `{"a": 1}`, `2`, `{"a": 1, "b": 2}`},
		{"nested insert", `.x.y[1] = "v"`, `{}`, `"v"`, `{"x": {"y": [null, "v"]}}`},
		{"variables", "n = 3\nn = n * 2\n.n = n", `{}`, `6`, `{"n": 6}`},
		{"variable path", "o = {}\no.a.b = 1\n.o = o", `{}`, `{"a": {"b": 1}}`, `{"o": {"a": {"b": 1}}}`},
		{"if else", `if .a > 1 { .r = "big" } else { .r = "small" }`, `{"a": 2}`, `"big"`, `{"a": 2, "r": "big"}`},
		{"if without else", `if .a > 1 { .r = "big" }`, `{"a": 0}`, `null`, `{"a": 0}`},
		{"short circuit", `.r = false && parse_int!("x") == 1`, `{}`, `false`, `{"r": false}`},
		{"null is false", `.r = .missing || true`, `{}`, `true`, `{"r": true}`},
		{"string concat", `.s = "a" + "b"`, `{}`, `"ab"`, `{"s": "ab"}`},
		{"int division is float", `.d = 7 / 2`, `{}`, `3.5`, `{"d": 3.5}`},
		{"modulo", `.m = 7 % 3`, `{}`, `1`, `{"m": 1}`},
		{"mixed numeric equality", `.e = 1 == 1.0`, `{}`, `true`, `{"e": true}`},
		{"defaults", `.r = repeat("ab")`, `{}`, `"abab"`, `{"r": "abab"}`},
		{"value semantics", ".b = .a\n.b.x = 2", `{"a": {"x": 1}}`, `2`, `{"a": {"x": 1}, "b": {"x": 2}}`},
		{"coalesce failure", `.r = (.a / 0) ?? -1`, `{"a": 1}`, `-1`, `{"a": 1, "r": -1}`},
		{"block value", `.r = { a = 1; a + 1 }`, `{}`, `2`, `{"r": 2}`},
		{"negative index", `.r = .l[-1]`, `{"l": [1, 2, 3]}`, `3`, `{"l": [1, 2, 3], "r": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := value.ParseJSON([]byte(tt.event))
			require.NoError(t, err)

			// the event shape is known up front, so operators on its fields
			// type-check without error handling
			st := state.New(state.NewExternalEnv(event.Kind(), types.AnyObject()))
			res, err := CompileSource(testRegistry(), tt.source, st, CompileConfig{})
			require.NoError(t, err)
			target := value.NewEvent(event)
			out, err := res.Program.Evaluate(nil, target)
			require.NoError(t, err)

			wantOut, err := value.ParseJSON([]byte(tt.out))
			require.NoError(t, err)
			wantAfter, err := value.ParseJSON([]byte(tt.after))
			require.NoError(t, err)
			assert.True(t, value.Equal(wantOut, out), "result: got %s, want %s", out, wantOut)
			assert.True(t, value.Equal(wantAfter, target.Value), "event: got %s, want %s", target.Value, wantAfter)
		})
	}
}

func TestEvaluateMetadata(t *testing.T) {
	_, target := run(t, "%source = \"api\"\n.src = %source", nil)
	assert.Equal(t, value.String("api"), target.Metadata["source"])
	assert.True(t, value.Equal(value.Object{"src": value.String("api")}, target.Value))
}

func TestEvaluateAbort(t *testing.T) {
	res := compile(t, `if .level == "debug" { abort "dropped" }; .kept = true`)

	target := value.NewEvent(value.Object{"level": value.String("debug")})
	_, err := res.Program.Evaluate(nil, target)
	require.Error(t, err)
	var ee *types.ExpressionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, types.ErrAborted, ee.Code)
	assert.Equal(t, "dropped", ee.Message)

	target = value.NewEvent(value.Object{"level": value.String("info")})
	_, err = res.Program.Evaluate(nil, target)
	require.NoError(t, err)
	assert.Equal(t, value.Boolean(true), target.Value.(value.Object)["kept"])
}

func TestEvaluateIntegerOverflow(t *testing.T) {
	tests := []struct {
		source  string
		want    value.Integer
		wantErr bool
	}{
		{source: "9223372036854775806 + 1", want: math.MaxInt64},
		{source: "-9223372036854775807 - 1", want: math.MinInt64},
		{source: "-4611686018427387904 * 2", want: math.MinInt64},
		{source: "3037000499 * 3037000499", want: 9223372030926249001},
		{source: "9223372036854775807 + 1", wantErr: true},
		{source: "-9223372036854775807 - 2", wantErr: true},
		{source: "9223372036854775807 - -1", wantErr: true},
		{source: "4611686018427387904 * 2", wantErr: true},
		{source: "(-9223372036854775807 - 1) * -1", wantErr: true},
		{source: "-(-9223372036854775807 - 1)", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			out, err := compile(t, tt.source).Program.Evaluate(nil, value.NewEvent(nil))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, out)
				return
			}
			var ee *types.ExpressionError
			require.True(t, errors.As(err, &ee), "got %v", err)
			assert.Equal(t, types.ErrNumberTooLarge, ee.Code)
			assert.Contains(t, ee.Message, "integer overflow")
		})
	}
}

func TestAbortIsNotCaught(t *testing.T) {
	res := compile(t, `x = parse_int!("nope") ?? 0`)
	_, err := res.Program.Evaluate(nil, value.NewEvent(nil))
	require.Error(t, err)
	assert.True(t, isAbort(err))

	res = compile(t, `x, err = parse_int!("nope") + 1`)
	_, err = res.Program.Evaluate(nil, value.NewEvent(nil))
	require.Error(t, err)
	assert.True(t, isAbort(err))
}

func TestEvaluateCapturedErrors(t *testing.T) {
	res := compile(t, `ok, err = 10 % .d`)
	td, _ := res.Program.FinalState().Local.Get("ok")
	assert.True(t, td.Kind().ContainsNull())

	ctx := runtime.NewContext(nil, nil)
	_, err := res.Program.Evaluate(ctx, value.NewEvent(value.Object{"d": value.Integer(0)}))
	require.NoError(t, err)
	ok, _ := ctx.Local("ok")
	assert.Equal(t, value.NullValue, ok)
	msg, _ := ctx.Local("err")
	assert.Equal(t, value.String("can't calculate remainder of dividing by zero"), msg)

	_, err = res.Program.Evaluate(ctx, value.NewEvent(value.Object{"d": value.Integer(4)}))
	require.NoError(t, err)
	ok, _ = ctx.Local("ok")
	assert.Equal(t, value.Integer(2), ok)
	msg, _ = ctx.Local("err")
	assert.Equal(t, value.NullValue, msg)
}

func TestEvaluateContextReuse(t *testing.T) {
	res := compile(t, `n = .v; .w = n`)
	ctx := runtime.NewContext(nil, nil)
	for i := range 3 {
		target := value.NewEvent(value.Object{"v": value.Integer(int64(i))})
		_, err := res.Program.Evaluate(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, value.Integer(int64(i)), target.Value.(value.Object)["w"])
		ctx.Clear()
	}
}

func TestCompileDoesNotMutateState(t *testing.T) {
	st := state.New(nil)
	st.Local.Insert("seed", types.Infallible(types.Integer()))

	res, err := CompileSource(testRegistry(), `seed = "x"; other = 1`, st, CompileConfig{})
	require.NoError(t, err)

	td, _ := st.Local.Get("seed")
	assert.True(t, td.Kind().IsInteger())
	_, ok := st.Local.Get("other")
	assert.False(t, ok)

	final, _ := res.Program.FinalState().Local.Get("seed")
	assert.True(t, final.Kind().IsString())
}

func FuzzCompile(f *testing.F) {
	for _, s := range []string{
		`.a = 1`,
		`x, err = parse_int(.a) ?? 0`,
		`if .a == 1 { .b = upcase("x") } else { abort }`,
		`.c = [1, {"k": -2.5}][0]`,
		`%m = .a ?? .b`,
		"\"\x00\"",
		"\"a\x01b\xff\"",
	} {
		f.Add(s)
	}
	reg := testRegistry()
	f.Fuzz(func(t *testing.T, src string) {
		res, err := CompileSource(reg, src, nil, CompileConfig{})
		if err != nil {
			var diags diagnostic.List
			if !errors.As(err, &diags) || !diags.HasErrors() {
				t.Fatalf("compile error is not a diagnostic list: %v", err)
			}
			return
		}
		if _, err := CompileSource(reg, res.Program.String(), nil, CompileConfig{}); err != nil {
			t.Fatalf("rendered program %q does not compile: %v", res.Program.String(), err)
		}
	})
}

func BenchmarkCompile(b *testing.B) {
	reg := testRegistry()
	src := `if (.status >= 500) ?? false { .level = "error" } else { .level = "info" }
.msg = upcase("done")
code, err = parse_int("42")`
	b.ReportAllocs()
	for b.Loop() {
		if _, err := CompileSource(reg, src, nil, CompileConfig{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	res, err := CompileSource(testRegistry(), `.total = .a * 2 + .b ?? 0; .tag = "x"`, nil, CompileConfig{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := runtime.NewContext(nil, nil)
	b.ReportAllocs()
	for b.Loop() {
		target := value.NewEvent(value.Object{"a": value.Integer(3), "b": value.Integer(4)})
		if _, err := res.Program.Evaluate(ctx, target); err != nil {
			b.Fatal(err)
		}
		ctx.Clear()
	}
}
