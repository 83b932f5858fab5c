package value

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/sandrolain/goremap/pkg/types"
)

// FromAny converts a Go value as produced by encoding/json (or built by
// hand) into a Value.
func FromAny(v interface{}) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NullValue, nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case []byte:
		return String(x), nil
	case bool:
		return Boolean(x), nil
	case int:
		return Integer(x), nil
	case int8:
		return Integer(x), nil
	case int16:
		return Integer(x), nil
	case int32:
		return Integer(x), nil
	case int64:
		return Integer(x), nil
	case uint8:
		return Integer(x), nil
	case uint16:
		return Integer(x), nil
	case uint32:
		return Integer(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, types.Errorf(types.ErrNumberTooLarge, "integer %d out of range", x)
		}
		return Integer(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, types.Errorf(types.ErrNumberTooLarge, "integer %d out of range", x)
		}
		return Integer(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return Float(f), nil
	case time.Time:
		return Timestamp{x}, nil
	case *regexp.Regexp:
		return Regex{x}, nil
	case []interface{}:
		out := make(Array, len(x))
		for i, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case []string:
		out := make(Array, len(x))
		for i, e := range x {
			out[i] = String(e)
		}
		return out, nil
	case map[string]interface{}:
		out := make(Object, len(x))
		for k, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case map[string]string:
		out := make(Object, len(x))
		for k, e := range x {
			out[k] = String(e)
		}
		return out, nil
	}
	return nil, types.Errorf(types.ErrCastFailed, "unsupported Go type %T", v)
}

// MustFromAny is like FromAny but panics on unsupported input. It is meant
// for literals in tests and examples.
func MustFromAny(v interface{}) Value {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return out
}

// ToAny converts v into plain Go values: string, int64, float64, bool,
// nil, time.Time, string (for regexes), []interface{} and
// map[string]interface{}.
func ToAny(v Value) interface{} {
	switch x := v.(type) {
	case String:
		return string(x)
	case Integer:
		return int64(x)
	case Float:
		return float64(x)
	case Boolean:
		return bool(x)
	case Timestamp:
		return x.Time
	case Regex:
		if x.Regexp == nil {
			return ""
		}
		return x.Regexp.String()
	case Array:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = ToAny(e)
		}
		return out
	case Object:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = ToAny(e)
		}
		return out
	}
	return nil
}

func typeError(want string, got Value) *types.ExpressionError {
	return types.Errorf(types.ErrArgumentType, "expected %s, got %s", want, kindName(got))
}

func kindName(v Value) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return v.Kind().String()
}

// AsString returns the string held by v.
func AsString(v Value) (string, error) {
	if s, ok := v.(String); ok {
		return string(s), nil
	}
	return "", typeError("string", v)
}

// AsInteger returns the integer held by v.
func AsInteger(v Value) (int64, error) {
	if i, ok := v.(Integer); ok {
		return int64(i), nil
	}
	return 0, typeError("integer", v)
}

// AsFloat returns the number held by v as a float. Integers are widened.
func AsFloat(v Value) (float64, error) {
	switch x := v.(type) {
	case Float:
		return float64(x), nil
	case Integer:
		return float64(x), nil
	}
	return 0, typeError("integer or float", v)
}

// AsBoolean returns the boolean held by v.
func AsBoolean(v Value) (bool, error) {
	if b, ok := v.(Boolean); ok {
		return bool(b), nil
	}
	return false, typeError("boolean", v)
}

// AsTimestamp returns the time held by v.
func AsTimestamp(v Value) (time.Time, error) {
	if t, ok := v.(Timestamp); ok {
		return t.Time, nil
	}
	return time.Time{}, typeError("timestamp", v)
}

// AsRegex returns the regular expression held by v.
func AsRegex(v Value) (*regexp.Regexp, error) {
	if r, ok := v.(Regex); ok && r.Regexp != nil {
		return r.Regexp, nil
	}
	return nil, typeError("regex", v)
}

// AsArray returns the array held by v.
func AsArray(v Value) (Array, error) {
	if a, ok := v.(Array); ok {
		return a, nil
	}
	return nil, typeError("array", v)
}

// AsObject returns the object held by v.
func AsObject(v Value) (Object, error) {
	if o, ok := v.(Object); ok {
		return o, nil
	}
	return nil, typeError("object", v)
}
