package value

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// ParseJSON decodes a JSON document into a Value. Numbers without a
// fraction or exponent that fit in 64 bits become Integers; every other
// number becomes a Float.
func ParseJSON(data []byte) (Value, error) {
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return decodeJSON(raw, typ)
}

func decodeJSON(raw []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse json string: %w", err)
		}
		return String(s), nil
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(raw); err == nil {
			return Integer(i), nil
		}
		f, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("parse json number %q: %w", raw, err)
		}
		return Float(f), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, fmt.Errorf("parse json boolean: %w", err)
		}
		return Boolean(b), nil
	case jsonparser.Null:
		return NullValue, nil
	case jsonparser.Array:
		out := Array{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(v []byte, t jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			elem, err := decodeJSON(v, t)
			if err != nil {
				inner = err
				return
			}
			out = append(out, elem)
		})
		if err != nil {
			return nil, fmt.Errorf("parse json array: %w", err)
		}
		if inner != nil {
			return nil, inner
		}
		return out, nil
	case jsonparser.Object:
		out := Object{}
		err := jsonparser.ObjectEach(raw, func(k, v []byte, t jsonparser.ValueType, _ int) error {
			elem, err := decodeJSON(v, t)
			if err != nil {
				return err
			}
			out[string(k)] = elem
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse json object: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("parse json: unexpected value %q", raw)
}

// MarshalJSON encodes v as JSON. Timestamps are written as RFC 3339
// strings and regexes as their pattern.
func MarshalJSON(v Value) ([]byte, error) {
	return json.Marshal(ToAny(v))
}
