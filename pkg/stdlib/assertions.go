package stdlib

import (
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Assertions returns the type assertion functions and assert.
func Assertions() []functions.Function {
	return []functions.Function{
		AssertInt(),
		AssertString(),
		AssertFloat(),
		AssertBool(),
		AssertObject(),
		AssertArray(),
		Assert(),
	}
}

// typeAssertion builds a function that returns its argument unchanged when
// it has kind want and fails otherwise. A call is infallible when the
// argument is already known to have kind want.
func typeAssertion(name string, want types.Kind) *functions.Def {
	return &functions.Def{
		Name:        name,
		Signature:   "<x>",
		Keywords:    []string{"value"},
		ResolveFunc: fallibleUnless("value", want, want),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			v := args.Value("value")
			if !want.IsSuperset(v.Kind()) {
				return nil, types.Errorf(types.ErrArgumentType, "expected %s, got %s", want, v.Kind())
			}
			return v, nil
		},
	}
}

// AssertInt returns the definition for int(value).
func AssertInt() *functions.Def { return typeAssertion("int", types.Integer()) }

// AssertString returns the definition for string(value).
func AssertString() *functions.Def { return typeAssertion("string", types.String()) }

// AssertFloat returns the definition for float(value).
func AssertFloat() *functions.Def { return typeAssertion("float", types.Float()) }

// AssertBool returns the definition for bool(value).
func AssertBool() *functions.Def { return typeAssertion("bool", types.Boolean()) }

// AssertObject returns the definition for object(value).
func AssertObject() *functions.Def { return typeAssertion("object", types.AnyObject()) }

// AssertArray returns the definition for array(value).
func AssertArray() *functions.Def { return typeAssertion("array", types.AnyArray()) }

// Assert returns the definition for assert(condition [, message]). It
// returns true, or fails with message when condition is false.
func Assert() *functions.Def {
	return &functions.Def{
		Name:      "assert",
		Signature: "<b-s?:b>",
		Keywords:  []string{"condition", "message"},
		Fallible:  true,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			ok, err := args.Boolean("condition")
			if err != nil {
				return nil, err
			}
			if ok {
				return value.Boolean(true), nil
			}
			msg := "assertion failed"
			if v, present := args.Get("message"); present {
				if msg, err = value.AsString(v); err != nil {
					return nil, err
				}
			}
			return nil, types.NewExpressionError(types.ErrFunction, msg)
		},
	}
}
