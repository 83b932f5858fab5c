package functions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

func upcase() *Def {
	return &Def{
		Name:      "upcase",
		Signature: "<s:s>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			return value.String(strings.ToUpper(s)), nil
		},
	}
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		sig      string
		params   []string
		optional []bool
		ret      string
	}{
		{"<s:s>", []string{"string"}, []bool{false}, "string"},
		{"<s-i?:s>", []string{"string", "integer"}, []bool{false, true}, "string"},
		{"<(sl)n:b>", []string{"string or null", "integer or float"}, []bool{false, false}, "boolean"},
		{"<a<s>s?:s>", []string{"array", "string"}, []bool{false, true}, "string"},
		{"<x>", []string{"any"}, []bool{false}, "any"},
		{"<:t>", nil, nil, "timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			sig, err := ParseSignature(tt.sig)
			require.NoError(t, err)
			require.Len(t, sig.Params, len(tt.params))
			for i, p := range sig.Params {
				assert.Equal(t, tt.params[i], p.Kind.String())
				assert.Equal(t, tt.optional[i], p.Optional)
			}
			assert.Equal(t, tt.ret, sig.Return.String())
		})
	}
}

func TestParseSignatureArraySubtype(t *testing.T) {
	sig, err := ParseSignature("<a<s>:o<i>>")
	require.NoError(t, err)
	assert.True(t, sig.Params[0].Kind.IsSuperset(types.ArrayOf(types.String())))
	assert.False(t, sig.Params[0].Kind.IsSuperset(types.ArrayOf(types.Integer())))
	assert.True(t, sig.Return.IsObject())
}

func TestParseSignatureErrors(t *testing.T) {
	for _, sig := range []string{"", "s:s", "<q>", "<s?s>", "<(s>", "<s<s>>", "<s:s:s>", "<a<s>", "<s:>"} {
		t.Run(sig, func(t *testing.T) {
			_, err := ParseSignature(sig)
			assert.Error(t, err)
		})
	}
}

func TestDefParametersAndResolve(t *testing.T) {
	d := &Def{
		Name:      "pad",
		Signature: "<s-i?:s>",
		Keywords:  []string{"value", "width"},
		Defaults:  map[string]value.Value{"width": value.Integer(8)},
		Fallible:  true,
		Impl: func(*runtime.Context, *Arguments) (value.Value, error) {
			return value.NullValue, nil
		},
	}
	require.NoError(t, d.Validate())

	params := d.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, Parameter{Keyword: "value", Kind: types.String(), Required: true}, params[0])
	assert.Equal(t, "width", params[1].Keyword)
	assert.False(t, params[1].Required)
	assert.Equal(t, value.Integer(8), params[1].Default)

	td, err := d.Resolve(NewArgumentTypes())
	require.NoError(t, err)
	assert.True(t, td.IsFallible())
	assert.True(t, td.Kind().IsString())
}

func TestDefInvalid(t *testing.T) {
	d := upcase()
	d.Keywords = nil
	assert.ErrorContains(t, d.Validate(), "signature has 1 parameters but 0 keywords")
	assert.Nil(t, d.Parameters())

	d = upcase()
	d.Impl = nil
	assert.ErrorContains(t, d.Validate(), "missing implementation")
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(upcase())
	require.NoError(t, err)

	fn, ok := reg.Lookup("upcase")
	require.True(t, ok)
	assert.Equal(t, "upcase", fn.Identifier())
	assert.Equal(t, []string{"upcase"}, reg.Names())
	assert.Equal(t, 1, reg.Len())

	_, ok = reg.Lookup("downcase")
	assert.False(t, ok)

	_, err = NewRegistry(upcase(), upcase())
	assert.EqualError(t, err, `duplicate function "upcase"`)

	bad := upcase()
	bad.Signature = "<q>"
	_, err = NewRegistry(bad)
	assert.Error(t, err)

	var nilReg *Registry
	_, ok = nilReg.Lookup("upcase")
	assert.False(t, ok)
	assert.Zero(t, nilReg.ID())
}

func TestRegistryIDUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for range 100 {
		reg, err := NewRegistry(upcase())
		require.NoError(t, err)
		require.NotZero(t, reg.ID())
		require.False(t, seen[reg.ID()], "id %d reused", reg.ID())
		seen[reg.ID()] = true
	}
}

func TestArguments(t *testing.T) {
	args := NewArguments("upcase")
	args.Insert("value", value.Integer(1))

	_, err := args.String("value")
	var ee *types.ExpressionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, types.ErrArgumentType, ee.Code)
	assert.Equal(t, `function upcase: parameter "value": expected string, got integer`, ee.Message)

	n, err := args.Float("value")
	require.NoError(t, err)
	assert.Equal(t, 1.0, n)

	assert.Equal(t, value.NullValue, args.Value("missing"))
	out, err := upcase().Call(runtime.NewContext(nil, nil), func() *Arguments {
		a := NewArguments("upcase")
		a.Insert("value", value.String("abc"))
		return a
	}())
	require.NoError(t, err)
	assert.Equal(t, value.String("ABC"), out)
}

func TestArgumentTypes(t *testing.T) {
	at := NewArgumentTypes()
	at.Insert("value", types.Infallible(types.String()), value.String("x"))
	at.Insert("other", types.Fallible(types.Integer()), nil)

	lit, ok := at.Literal("value")
	require.True(t, ok)
	assert.Equal(t, value.String("x"), lit)

	_, ok = at.Literal("other")
	assert.False(t, ok)

	assert.True(t, at.Kind("missing").IsNull())
	td, ok := at.Get("other")
	require.True(t, ok)
	assert.True(t, td.IsFallible())
}
