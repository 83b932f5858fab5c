package stdlib

import (
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Strings returns the string functions.
func Strings() []functions.Function {
	return []functions.Function{
		Upcase(),
		Downcase(),
		Contains(),
		Length(),
		Join(),
		Split(),
		Match(),
		FormatBytes(),
	}
}

// Upcase returns the definition for upcase(value).
func Upcase() *functions.Def {
	return &functions.Def{
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
	}
}

// Downcase returns the definition for downcase(value).
func Downcase() *functions.Def {
	return &functions.Def{
		Name:      "downcase",
		Signature: "<s:s>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			return value.String(strings.ToLower(s)), nil
		},
	}
}

// Contains returns the definition for contains(value, substring
// [, case_sensitive]). Matching is case sensitive unless told otherwise.
func Contains() *functions.Def {
	return &functions.Def{
		Name:      "contains",
		Signature: "<s-s-b?:b>",
		Keywords:  []string{"value", "substring", "case_sensitive"},
		Defaults:  map[string]value.Value{"case_sensitive": value.Boolean(true)},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			sub, err := args.String("substring")
			if err != nil {
				return nil, err
			}
			sensitive, err := args.Boolean("case_sensitive")
			if err != nil {
				return nil, err
			}
			if !sensitive {
				s, sub = strings.ToLower(s), strings.ToLower(sub)
			}
			return value.Boolean(strings.Contains(s, sub)), nil
		},
	}
}

// Length returns the definition for length(value): the number of
// characters of a string, or of elements of an array or object.
func Length() *functions.Def {
	return &functions.Def{
		Name:      "length",
		Signature: "<(sao):i>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			switch v := args.Value("value").(type) {
			case value.String:
				return value.Integer(utf8.RuneCountInString(string(v))), nil
			case value.Array:
				return value.Integer(len(v)), nil
			case value.Object:
				return value.Integer(len(v)), nil
			}
			return nil, types.Errorf(types.ErrArgumentType, "length: expected string, array or object")
		},
	}
}

// Join returns the definition for join(value [, separator]). A call can
// only fail when the array may hold something other than strings.
func Join() *functions.Def {
	return &functions.Def{
		Name:      "join",
		Signature: "<a-s?:s>",
		Keywords:  []string{"value", "separator"},
		Defaults:  map[string]value.Value{"separator": value.String("")},
		ResolveFunc: func(args *functions.ArgumentTypes) (types.TypeDef, error) {
			fallible := true
			if c := args.Kind("value").ArrayCollection(); c != nil {
				fallible = !types.String().IsSuperset(c.Reduced())
			}
			return types.Infallible(types.String()).WithFallible(fallible), nil
		},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			arr, err := args.Array("value")
			if err != nil {
				return nil, err
			}
			sep, err := args.String("separator")
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(arr))
			for i, el := range arr {
				s, ok := el.(value.String)
				if !ok {
					return nil, types.Errorf(types.ErrArgumentType, "join: element %d is %s, not a string", i, el.Kind())
				}
				parts[i] = string(s)
			}
			return value.String(strings.Join(parts, sep)), nil
		},
	}
}

// Split returns the definition for split(value, pattern [, limit]).
// pattern is a string or a regex; a positive limit caps the number of
// parts.
func Split() *functions.Def {
	return &functions.Def{
		Name:      "split",
		Signature: "<s-(sr)-i?:a<s>>",
		Keywords:  []string{"value", "pattern", "limit"},
		Defaults:  map[string]value.Value{"limit": value.Integer(-1)},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			limit, err := args.Integer("limit")
			if err != nil {
				return nil, err
			}
			if limit <= 0 {
				limit = -1
			}

			var parts []string
			switch p := args.Value("pattern").(type) {
			case value.String:
				parts = strings.SplitN(s, string(p), int(limit))
			case value.Regex:
				parts = p.Split(s, int(limit))
			default:
				return nil, types.Errorf(types.ErrArgumentType, "split: pattern must be a string or a regex")
			}

			out := make(value.Array, len(parts))
			for i, part := range parts {
				out[i] = value.String(part)
			}
			return out, nil
		},
	}
}

// Match returns the definition for match(value, pattern).
func Match() *functions.Def {
	return &functions.Def{
		Name:      "match",
		Signature: "<s-r:b>",
		Keywords:  []string{"value", "pattern"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			re, err := value.AsRegex(args.Value("pattern"))
			if err != nil {
				return nil, err
			}
			return value.Boolean(re.MatchString(s)), nil
		},
	}
}

// FormatBytes returns the definition for format_bytes(value [, binary]):
// a byte count in human readable form, "82 kB" or with binary set "80 KiB".
func FormatBytes() *functions.Def {
	return &functions.Def{
		Name:      "format_bytes",
		Signature: "<i-b?:s>",
		Keywords:  []string{"value", "binary"},
		Defaults:  map[string]value.Value{"binary": value.Boolean(false)},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			n, err := args.Integer("value")
			if err != nil {
				return nil, err
			}
			binary, err := args.Boolean("binary")
			if err != nil {
				return nil, err
			}
			return value.String(formatBytes(n, binary)), nil
		},
	}
}

func formatBytes(n int64, binary bool) string {
	sign := ""
	u := uint64(n)
	if n < 0 {
		sign = "-"
		u = uint64(-(n + 1)) + 1
	}
	if binary {
		return sign + humanize.IBytes(u)
	}
	return sign + humanize.Bytes(u)
}
