package functions

import (
	"time"

	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Function is a built-in callable from remap programs.
//
// At compile time the compiler checks the call's arguments against
// Parameters and asks Resolve for the result type. At runtime it calls Call
// with the evaluated arguments. Implementations must not keep state that is
// shared between evaluations; per-call state belongs in the runtime.Context.
type Function interface {
	// Identifier is the name programs call the function by.
	Identifier() string
	// Parameters lists the parameters in positional order.
	Parameters() []Parameter
	// Resolve returns the result type for the given argument types, or an
	// error when the combination is invalid.
	Resolve(args *ArgumentTypes) (types.TypeDef, error)
	// Call runs the function.
	Call(ctx *runtime.Context, args *Arguments) (value.Value, error)
}

// Deprecated is implemented by functions that should no longer be used.
type Deprecated interface {
	// Deprecation returns a note telling users what to use instead.
	Deprecation() string
}

// Parameter describes one parameter of a Function.
type Parameter struct {
	// Keyword names the parameter in diagnostics and in Arguments.
	Keyword string
	// Kind is the set of kinds an argument may have.
	Kind types.Kind
	// Required parameters must be passed.
	Required bool
	// Default is used for an omitted optional parameter. Nil means the
	// argument is absent from Arguments.
	Default value.Value
}

// ArgumentTypes holds the static types of the arguments of one call, by
// parameter keyword.
type ArgumentTypes struct {
	defs     map[string]types.TypeDef
	literals map[string]value.Value
}

// NewArgumentTypes returns an empty ArgumentTypes.
func NewArgumentTypes() *ArgumentTypes {
	return &ArgumentTypes{
		defs:     map[string]types.TypeDef{},
		literals: map[string]value.Value{},
	}
}

// Insert records the type of argument keyword. literal is the argument's
// constant value when it is a literal, and nil otherwise.
func (a *ArgumentTypes) Insert(keyword string, td types.TypeDef, literal value.Value) {
	a.defs[keyword] = td
	if literal != nil {
		a.literals[keyword] = literal
	}
}

// Get returns the type of argument keyword, if it was passed.
func (a *ArgumentTypes) Get(keyword string) (types.TypeDef, bool) {
	td, ok := a.defs[keyword]
	return td, ok
}

// Kind returns the kind of argument keyword, or null if it was not passed.
func (a *ArgumentTypes) Kind(keyword string) types.Kind {
	if td, ok := a.defs[keyword]; ok {
		return td.Kind()
	}
	return types.Null()
}

// Literal returns the constant value of argument keyword, if it is a
// literal.
func (a *ArgumentTypes) Literal(keyword string) (value.Value, bool) {
	v, ok := a.literals[keyword]
	return v, ok
}

// Arguments holds the evaluated arguments of one call, by parameter
// keyword. Defaults of omitted optional parameters are already filled in.
type Arguments struct {
	name   string
	values map[string]value.Value
}

// NewArguments returns an empty Arguments for function name.
func NewArguments(name string) *Arguments {
	return &Arguments{name: name, values: map[string]value.Value{}}
}

// Insert sets argument keyword.
func (a *Arguments) Insert(keyword string, v value.Value) {
	a.values[keyword] = v
}

// Get returns argument keyword, if present.
func (a *Arguments) Get(keyword string) (value.Value, bool) {
	v, ok := a.values[keyword]
	return v, ok
}

// Value returns argument keyword, or null when absent.
func (a *Arguments) Value(keyword string) value.Value {
	if v, ok := a.values[keyword]; ok {
		return v
	}
	return value.NullValue
}

// Len returns the number of arguments present.
func (a *Arguments) Len() int { return len(a.values) }

func (a *Arguments) wrap(keyword string, err error) error {
	return types.Errorf(types.ErrArgumentType, "function %s: parameter %q: %v", a.name, keyword, unwrapMessage(err)).WithCause(err)
}

func unwrapMessage(err error) string {
	if ee, ok := err.(*types.ExpressionError); ok {
		return ee.Message
	}
	return err.Error()
}

// String returns argument keyword as a string.
func (a *Arguments) String(keyword string) (string, error) {
	s, err := value.AsString(a.Value(keyword))
	if err != nil {
		return "", a.wrap(keyword, err)
	}
	return s, nil
}

// Integer returns argument keyword as an integer.
func (a *Arguments) Integer(keyword string) (int64, error) {
	i, err := value.AsInteger(a.Value(keyword))
	if err != nil {
		return 0, a.wrap(keyword, err)
	}
	return i, nil
}

// Float returns argument keyword as a float; integers are widened.
func (a *Arguments) Float(keyword string) (float64, error) {
	f, err := value.AsFloat(a.Value(keyword))
	if err != nil {
		return 0, a.wrap(keyword, err)
	}
	return f, nil
}

// Boolean returns argument keyword as a boolean.
func (a *Arguments) Boolean(keyword string) (bool, error) {
	b, err := value.AsBoolean(a.Value(keyword))
	if err != nil {
		return false, a.wrap(keyword, err)
	}
	return b, nil
}

// Timestamp returns argument keyword as a time.
func (a *Arguments) Timestamp(keyword string) (time.Time, error) {
	t, err := value.AsTimestamp(a.Value(keyword))
	if err != nil {
		return time.Time{}, a.wrap(keyword, err)
	}
	return t, nil
}

// Array returns argument keyword as an array.
func (a *Arguments) Array(keyword string) (value.Array, error) {
	arr, err := value.AsArray(a.Value(keyword))
	if err != nil {
		return nil, a.wrap(keyword, err)
	}
	return arr, nil
}

// Object returns argument keyword as an object.
func (a *Arguments) Object(keyword string) (value.Object, error) {
	obj, err := value.AsObject(a.Value(keyword))
	if err != nil {
		return nil, a.wrap(keyword, err)
	}
	return obj, nil
}
