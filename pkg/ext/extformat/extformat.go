// Package extformat provides CSV functions for remap.
package extformat

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/sandrolain/goremap/pkg/ext/extutil"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// All returns all format function definitions.
func All() []functions.Function {
	return []functions.Function{
		ParseCSV(),
		ToCSV(),
	}
}

func separator(args *functions.Arguments) (rune, error) {
	if _, ok := args.Get("separator"); !ok {
		return ',', nil
	}
	sep, err := args.String("separator")
	if err != nil {
		return 0, err
	}
	r, size := utf8.DecodeRuneInString(sep)
	if size == 0 || size != len(sep) || r == '"' || r == '\n' || r == '\r' {
		return 0, types.Errorf(types.ErrFunction, "invalid separator %q", sep)
	}
	return r, nil
}

// ParseCSV returns the definition for parse_csv(value [, separator]).
// The first record is the header; each further record becomes an object
// keyed by header. Short records fill missing fields with "".
func ParseCSV() *functions.Def {
	return &functions.Def{
		Name:      "parse_csv",
		Signature: "<s-s?:a<o>>",
		Keywords:  []string{"value", "separator"},
		ResolveFunc: func(*functions.ArgumentTypes) (types.TypeDef, error) {
			row := types.Object(types.OpenCollection[string](types.String()))
			return types.Fallible(types.Array(types.OpenCollection[int](row))), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			src, err := args.String("value")
			if err != nil {
				return nil, err
			}
			sep, err := separator(args)
			if err != nil {
				return nil, err
			}
			r := csv.NewReader(strings.NewReader(src))
			r.Comma = sep
			r.FieldsPerRecord = -1
			r.TrimLeadingSpace = true
			records, err := r.ReadAll()
			if err != nil {
				return nil, types.Errorf(types.ErrFunction, "unable to parse csv: %v", err)
			}
			out := value.Array{}
			if len(records) < 2 {
				return out, nil
			}
			header := records[0]
			for _, rec := range records[1:] {
				obj := make(value.Object, len(header))
				for i, h := range header {
					var cell string
					if i < len(rec) {
						cell = rec[i]
					}
					obj[h] = value.String(cell)
				}
				out = append(out, obj)
			}
			return out, nil
		},
	}
}

// ToCSV returns the definition for to_csv(value [, columns]). Without
// columns, the sorted keys of the first object are used. Missing fields
// and nulls render as empty cells; nested values fail.
func ToCSV() *functions.Def {
	return &functions.Def{
		Name:      "to_csv",
		Signature: "<a<o>-a<s>?:s>",
		Keywords:  []string{"value", "columns"},
		Fallible:  true,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			if len(arr) == 0 {
				return value.String(""), nil
			}
			columns, err := columnsOf(args, arr)
			if err != nil {
				return nil, err
			}
			var buf bytes.Buffer
			w := csv.NewWriter(&buf)
			if err := w.Write(columns); err != nil {
				return nil, types.Errorf(types.ErrFunction, "unable to write csv: %v", err)
			}
			for i, item := range arr {
				obj, ok := item.(value.Object)
				if !ok {
					return nil, types.Errorf(types.ErrArgumentType, "element %d is not an object", i)
				}
				row := make([]string, len(columns))
				for j, col := range columns {
					if row[j], err = cell(obj[col]); err != nil {
						return nil, types.Errorf(types.ErrFunction, "element %d field %q: %v", i, col, err)
					}
				}
				if err := w.Write(row); err != nil {
					return nil, types.Errorf(types.ErrFunction, "unable to write csv: %v", err)
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return nil, types.Errorf(types.ErrFunction, "unable to write csv: %v", err)
			}
			return value.String(buf.String()), nil
		},
	}
}

func columnsOf(args *functions.Arguments, arr value.Array) ([]string, error) {
	if _, ok := args.Get("columns"); ok {
		cols, err := args.Array("columns")
		if err != nil {
			return nil, err
		}
		return extutil.StringSlice(cols)
	}
	first, ok := arr[0].(value.Object)
	if !ok {
		return nil, types.Errorf(types.ErrArgumentType, "element 0 is not an object")
	}
	return first.Keys(), nil
}

func cell(v value.Value) (string, error) {
	switch x := v.(type) {
	case nil, value.Null:
		return "", nil
	case value.String:
		return string(x), nil
	case value.Timestamp:
		return x.UTC().Format(time.RFC3339Nano), nil
	case value.Array, value.Object:
		return "", types.Errorf(types.ErrArgumentType, "cannot render %s as a csv cell", kindOf(x))
	}
	return cast.ToStringE(value.ToAny(v))
}

func kindOf(v value.Value) string {
	if _, ok := v.(value.Array); ok {
		return "array"
	}
	return "object"
}
