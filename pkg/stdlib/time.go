package stdlib

import (
	"time"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Time returns the timestamp functions. Formats are Go reference layouts,
// such as "2006-01-02 15:04:05".
func Time() []functions.Function {
	return []functions.Function{
		Now(),
		ParseTimestamp(),
		FormatTimestamp(),
		ToTimestamp(),
	}
}

// Now returns the definition for now().
func Now() *functions.Def {
	return &functions.Def{
		Name:      "now",
		Signature: "<:t>",
		Keywords:  []string{},
		Impl: func(ctx *runtime.Context, _ *functions.Arguments) (value.Value, error) {
			return value.Timestamp{Time: ctx.Now()}, nil
		},
	}
}

// ParseTimestamp returns the definition for parse_timestamp(value, format).
// Layouts without a zone are read in the timezone of the evaluation.
func ParseTimestamp() *functions.Def {
	return &functions.Def{
		Name:      "parse_timestamp",
		Signature: "<s-s:t>",
		Keywords:  []string{"value", "format"},
		Fallible:  true,
		Impl: func(ctx *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			layout, err := args.String("format")
			if err != nil {
				return nil, err
			}
			t, err := time.ParseInLocation(layout, s, ctx.Timezone())
			if err != nil {
				return nil, types.Errorf(types.ErrFunction, "unable to parse %q with format %q", s, layout)
			}
			return value.Timestamp{Time: t.UTC()}, nil
		},
	}
}

// FormatTimestamp returns the definition for format_timestamp(value,
// format). The timestamp is rendered in the timezone of the evaluation.
func FormatTimestamp() *functions.Def {
	return &functions.Def{
		Name:      "format_timestamp",
		Signature: "<t-s:s>",
		Keywords:  []string{"value", "format"},
		Impl: func(ctx *runtime.Context, args *functions.Arguments) (value.Value, error) {
			t, err := args.Timestamp("value")
			if err != nil {
				return nil, err
			}
			layout, err := args.String("format")
			if err != nil {
				return nil, err
			}
			return value.String(t.In(ctx.Timezone()).Format(layout)), nil
		},
	}
}

// ToTimestamp returns the definition for to_timestamp(value). Integers are
// seconds since the Unix epoch; strings must be RFC 3339.
func ToTimestamp() *functions.Def {
	return &functions.Def{
		Name:        "to_timestamp",
		Signature:   "<(sit):t>",
		Keywords:    []string{"value"},
		Deprecated:  `use parse_timestamp(value, "2006-01-02T15:04:05Z07:00") instead`,
		ResolveFunc: fallibleUnless("value", types.Integer().Union(types.Timestamp()), types.Timestamp()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case value.Timestamp:
				return v, nil
			case value.Integer:
				return value.Timestamp{Time: time.Unix(int64(v), 0).UTC()}, nil
			case value.String:
				t, err := time.Parse(time.RFC3339Nano, string(v))
				if err != nil {
					return nil, types.Errorf(types.ErrFunction, "unable to parse %s as an RFC 3339 timestamp", v)
				}
				return value.Timestamp{Time: t.UTC()}, nil
			}
			return nil, types.Errorf(types.ErrArgumentType, "to_timestamp: expected string, integer or timestamp")
		},
	}
}
