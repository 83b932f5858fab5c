package ext_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goremap/pkg/compiler"
	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/ext"
	"github.com/sandrolain/goremap/pkg/ext/extstring"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/stdlib"
	"github.com/sandrolain/goremap/pkg/value"
)

func eval(t *testing.T, src string, event value.Value) value.Value {
	t.Helper()
	res, err := compiler.CompileSource(ext.Registry(), src, nil, compiler.CompileConfig{})
	require.NoError(t, err, src)
	out, err := res.Program.Evaluate(nil, value.NewEvent(event))
	require.NoError(t, err, src)
	return out
}

func compileCode(t *testing.T, src string) diagnostic.Code {
	t.Helper()
	_, err := compiler.CompileSource(ext.Registry(), src, nil, compiler.CompileConfig{})
	var diags diagnostic.List
	require.True(t, errors.As(err, &diags), "%s: %v", src, err)
	return diags[0].Code
}

func strs(ss ...string) value.Array {
	out := make(value.Array, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}
	return out
}

func TestRegistry(t *testing.T) {
	reg := ext.Registry()
	assert.Same(t, reg, ext.Registry())
	assert.Equal(t, len(stdlib.All())+len(ext.All()), reg.Len())

	for _, name := range []string{"upcase", "starts_with", "median", "chunk", "pick", "type_of", "date_add", "hash", "parse_csv"} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := ext.NewRegistry(ext.String(), ext.Array())
	require.NoError(t, err)

	for name, want := range map[string]bool{"upcase": true, "starts_with": true, "first": true, "hash": false, "pick": false} {
		_, ok := reg.Lookup(name)
		assert.Equal(t, want, ok, name)
	}

	_, err = ext.NewRegistry(ext.String(), ext.String())
	assert.ErrorContains(t, err, "duplicate function")
}

func TestSingleFunction(t *testing.T) {
	reg, err := functions.NewRegistry(extstring.StartsWith())
	require.NoError(t, err)

	res, err := compiler.CompileSource(reg, `starts_with("remap", "re")`, nil, compiler.CompileConfig{})
	require.NoError(t, err)
	out, err := res.Program.Evaluate(nil, value.NewEvent(nil))
	require.NoError(t, err)
	assert.Equal(t, value.Boolean(true), out)
}

func TestStringFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{`starts_with("Hello World", "Hello")`, value.Boolean(true)},
		{`starts_with("Hello World", "World")`, value.Boolean(false)},
		{`ends_with("Hello World", "World")`, value.Boolean(true)},
		{`index_of("héllo", "l")`, value.Integer(2)},
		{`index_of("abc", "x")`, value.Integer(-1)},
		{`capitalize("hELLO world")`, value.String("Hello world")},
		{`camel_case("hello_world")`, value.String("helloWorld")},
		{`snake_case("helloWorld")`, value.String("hello_world")},
		{`kebab_case("Hello World")`, value.String("hello-world")},
		{`words("  a  b ")`, strs("a", "b")},
		{`truncate("abcdef", 3, "...")`, value.String("abc...")},
		{`truncate("abc", 3)`, value.String("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, nil))
		})
	}
}

func TestNumericFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{`log!(1)`, value.Float(0)},
		{`log!(1, 10)`, value.Float(0)},
		{`sign(-3.5)`, value.Integer(-1)},
		{`sign(0)`, value.Integer(0)},
		{`clamp(15, 0, 10)`, value.Integer(10)},
		{`clamp(-1.5, 0, 1)`, value.Float(0)},
		{`median([3, 1, 2])`, value.Float(2)},
		{`median([4, 1, 2, 3])`, value.Float(2.5)},
		{`median([])`, value.NullValue},
		{`stddev([2, 4, 4, 4, 5, 5, 7, 9])`, value.Float(2)},
		{`percentile([1, 2, 3, 4, 5], 50)`, value.Float(3)},
		{`percentile([1, 2], 25)`, value.Float(1.25)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, nil))
		})
	}
}

func TestArrayFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{`first([1, 2])`, value.Integer(1)},
		{`first([])`, value.NullValue},
		{`last([1, 2])`, value.Integer(2)},
		{`take([1, 2, 3], 2)`, value.Array{value.Integer(1), value.Integer(2)}},
		{`take([1, 2, 3], -2)`, value.Array{value.Integer(2), value.Integer(3)}},
		{`take([1], 5)`, value.Array{value.Integer(1)}},
		{`flatten([1, [2, [3]]])`, value.Array{value.Integer(1), value.Integer(2), value.Integer(3)}},
		{`flatten([1, [2, [3]]], 1)`, value.Array{value.Integer(1), value.Integer(2), value.Array{value.Integer(3)}}},
		{`chunk([1, 2, 3], 2)`, value.Array{value.Array{value.Integer(1), value.Integer(2)}, value.Array{value.Integer(3)}}},
		{`unique([1, 1, "a", "a"])`, value.Array{value.Integer(1), value.String("a")}},
		{`compact([1, null, 2])`, value.Array{value.Integer(1), value.Integer(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, nil))
		})
	}
}

func TestObjectFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{`pick({"a": 1, "b": 2}, ["a", "z"])`, value.Object{"a": value.Integer(1)}},
		{`omit({"a": 1, "b": 2}, ["a"])`, value.Object{"b": value.Integer(2)}},
		{`rename({"a": 1}, "a", "b")`, value.Object{"b": value.Integer(1)}},
		{`rename({"a": 1}, "x", "b")`, value.Object{"a": value.Integer(1)}},
		{`pairs({"b": 2, "a": 1})`, value.Array{
			value.Array{value.String("a"), value.Integer(1)},
			value.Array{value.String("b"), value.Integer(2)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, nil))
		})
	}
}

func TestPickLeavesSourceUntouched(t *testing.T) {
	event := value.Object{"user": value.Object{"name": value.String("ada"), "tags": strs("x")}}
	out := eval(t, `.copy = pick(object!(.user), ["tags"])
.user.name`, event)
	assert.Equal(t, value.String("ada"), out)
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{`is_string("x")`, value.Boolean(true)},
		{`is_string(1)`, value.Boolean(false)},
		{`is_integer(1)`, value.Boolean(true)},
		{`is_float(1)`, value.Boolean(false)},
		{`is_boolean(false)`, value.Boolean(true)},
		{`is_timestamp(t'2024-01-01T00:00:00Z')`, value.Boolean(true)},
		{`is_array([])`, value.Boolean(true)},
		{`is_object({})`, value.Boolean(true)},
		{`is_null(null)`, value.Boolean(true)},
		{`is_null(.missing)`, value.Boolean(true)},
		{`is_empty("")`, value.Boolean(true)},
		{`is_empty([0])`, value.Boolean(false)},
		{`type_of(1.5)`, value.String("float")},
		{`type_of([1])`, value.String("array")},
		{`type_of({"a": 1})`, value.String("object")},
		{`type_of(null)`, value.String("null")},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, value.Object{}))
		})
	}
}

func TestDateTimeFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{`format_timestamp(date_add(t'2024-01-31T00:00:00Z', 1, "day"), "2006-01-02")`, value.String("2024-02-01")},
		{`format_timestamp(date_add(t'2024-01-01T10:00:00Z', -90, "MINUTE"), "15:04")`, value.String("08:30")},
		{`format_timestamp(date_add(t'2024-01-01T00:00:00Z', 2, "year"), "2006")`, value.String("2026")},
		{`date_diff(t'2024-01-31T00:00:00Z', t'2024-03-01T00:00:00Z', "month")`, value.Integer(1)},
		{`date_diff(t'2024-01-31T00:00:00Z', t'2024-03-01T00:00:00Z', "day")`, value.Integer(30)},
		{`date_diff(t'2024-03-01T00:00:00Z', t'2022-03-02T00:00:00Z', "year")`, value.Integer(-1)},
		{`date_diff(t'2024-01-01T00:00:00Z', t'2024-01-01T00:00:01.5Z', "millisecond")`, value.Integer(1500)},
		{`format_timestamp(start_of(t'2024-05-17T10:30:15Z', "month"), "2006-01-02T15:04:05")`, value.String("2024-05-01T00:00:00")},
		{`format_timestamp(start_of(t'2024-05-17T10:30:15Z', "hour"), "15:04:05")`, value.String("10:00:00")},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, nil))
		})
	}

	out := eval(t, `date_components(t'2024-05-17T10:30:15.250Z')`, nil)
	assert.Equal(t, value.Object{
		"year": value.Integer(2024), "month": value.Integer(5), "day": value.Integer(17),
		"hour": value.Integer(10), "minute": value.Integer(30), "second": value.Integer(15),
		"millisecond": value.Integer(250), "weekday": value.Integer(5),
	}, out)
}

func TestCryptoFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{`hash("abc", "md5")`, value.String("900150983cd24fb0d6963f7d28e17f72")},
		{`hash("abc", "SHA256")`, value.String("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")},
		{`hmac("The quick brown fox jumps over the lazy dog", "key", "sha256")`,
			value.String("f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8")},
		{`is_uuid(uuid())`, value.Boolean(true)},
		{`is_uuid("not-a-uuid")`, value.Boolean(false)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, nil))
		})
	}

	assert.NotEqual(t, eval(t, `uuid()`, nil), eval(t, `uuid()`, nil))
}

func TestFormatFunctions(t *testing.T) {
	out := eval(t, `parse_csv!("a,b\n1,2\n3")`, nil)
	assert.Equal(t, value.Array{
		value.Object{"a": value.String("1"), "b": value.String("2")},
		value.Object{"a": value.String("3"), "b": value.String("")},
	}, out)

	out = eval(t, `parse_csv!("a;b\nx;y", ";")`, nil)
	assert.Equal(t, value.Array{value.Object{"a": value.String("x"), "b": value.String("y")}}, out)

	out = eval(t, `to_csv!([{"b": 2, "a": "x"}, {"a": "y,z", "c": true}])`, nil)
	assert.Equal(t, value.String("a,b\nx,2\n\"y,z\",\n"), out)

	out = eval(t, `to_csv!([{"a": 1.5, "b": null}], ["b", "a"])`, nil)
	assert.Equal(t, value.String("b,a\n,1.5\n"), out)
}

func TestLiteralArgumentsCheckedAtCompileTime(t *testing.T) {
	for _, src := range []string{
		`hash("x", "crc32")`,
		`hmac("x", "k", "whirlpool")`,
		`date_add(now(), 1, "fortnight")`,
		`chunk([1, 2], 0)`,
		`percentile([1, 2], 101)`,
	} {
		assert.Equal(t, diagnostic.CodeFunctionResolve, compileCode(t, src), src)
	}
}

func TestDynamicArgumentsAreFallible(t *testing.T) {
	assert.Equal(t, diagnostic.CodeUnhandledFallible, compileCode(t, `hash("x", string!(.alg))`))
	assert.Equal(t, diagnostic.CodeUnhandledFallible, compileCode(t, `chunk([1], int!(.n))`))
	assert.Equal(t, diagnostic.CodeUnhandledFallible, compileCode(t, `parse_csv("a")`))

	res, err := compiler.CompileSource(ext.Registry(), `hash!("x", string!(.alg))`, nil, compiler.CompileConfig{})
	require.NoError(t, err)
	_, err = res.Program.Evaluate(nil, value.NewEvent(value.Object{"alg": value.String("crc32")}))
	assert.ErrorContains(t, err, `unsupported algorithm "crc32"`)

	res, err = compiler.CompileSource(ext.Registry(), `to_csv!([{"a": [1]}])`, nil, compiler.CompileConfig{})
	require.NoError(t, err)
	_, err = res.Program.Evaluate(nil, value.NewEvent(nil))
	assert.ErrorContains(t, err, "cannot render array as a csv cell")
}
