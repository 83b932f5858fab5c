// Package extstring provides extended string functions for remap beyond the
// built-in library. Register them via functions.NewRegistry or via the
// top-level ext.Registry helper.
package extstring

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/value"
)

// All returns all extended string function definitions.
func All() []functions.Function {
	return []functions.Function{
		StartsWith(),
		EndsWith(),
		IndexOf(),
		Capitalize(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Words(),
		Truncate(),
	}
}

// strings2 builds a function over two strings.
func strings2(name, sig string, keywords []string, fn func(a, b string) value.Value) *functions.Def {
	return &functions.Def{
		Name:      name,
		Signature: sig,
		Keywords:  keywords,
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			a, err := args.String(keywords[0])
			if err != nil {
				return nil, err
			}
			b, err := args.String(keywords[1])
			if err != nil {
				return nil, err
			}
			return fn(a, b), nil
		},
	}
}

// strings1 builds a function mapping a string to a string.
func strings1(name string, fn func(string) string) *functions.Def {
	return &functions.Def{
		Name:      name,
		Signature: "<s:s>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			return value.String(fn(s)), nil
		},
	}
}

// StartsWith returns the definition for starts_with(value, prefix).
func StartsWith() *functions.Def {
	return strings2("starts_with", "<s-s:b>", []string{"value", "prefix"}, func(s, prefix string) value.Value {
		return value.Boolean(strings.HasPrefix(s, prefix))
	})
}

// EndsWith returns the definition for ends_with(value, suffix).
func EndsWith() *functions.Def {
	return strings2("ends_with", "<s-s:b>", []string{"value", "suffix"}, func(s, suffix string) value.Value {
		return value.Boolean(strings.HasSuffix(s, suffix))
	})
}

// IndexOf returns the definition for index_of(value, substring): the rune
// offset of the first match, or -1.
func IndexOf() *functions.Def {
	return strings2("index_of", "<s-s:i>", []string{"value", "substring"}, func(s, sub string) value.Value {
		idx := strings.Index(s, sub)
		if idx < 0 {
			return value.Integer(-1)
		}
		return value.Integer(utf8.RuneCountInString(s[:idx]))
	})
}

// Capitalize returns the definition for capitalize(value).
// Uppercases the first character, lowercases the rest.
func Capitalize() *functions.Def {
	return strings1("capitalize", func(s string) string {
		if s == "" {
			return s
		}
		runes := []rune(strings.ToLower(s))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
}

// splitWordsRe finds word boundaries in camelCase, snake_case, kebab-case
// and space separated text.
var splitWordsRe = regexp.MustCompile(`[_\-\s]+|([a-z0-9])([A-Z])`)

func splitIntoWords(s string) []string {
	expanded := splitWordsRe.ReplaceAllString(s, "$1 $2")
	return strings.Fields(expanded)
}

// CamelCase returns the definition for camel_case(value).
func CamelCase() *functions.Def {
	return strings1("camel_case", func(s string) string {
		words := splitIntoWords(s)
		if len(words) == 0 {
			return ""
		}
		var b strings.Builder
		b.WriteString(strings.ToLower(words[0]))
		for _, w := range words[1:] {
			runes := []rune(strings.ToLower(w))
			runes[0] = unicode.ToUpper(runes[0])
			b.WriteString(string(runes))
		}
		return b.String()
	})
}

func joinLower(s, sep string) string {
	words := splitIntoWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}

// SnakeCase returns the definition for snake_case(value).
func SnakeCase() *functions.Def {
	return strings1("snake_case", func(s string) string { return joinLower(s, "_") })
}

// KebabCase returns the definition for kebab_case(value).
func KebabCase() *functions.Def {
	return strings1("kebab_case", func(s string) string { return joinLower(s, "-") })
}

// Words returns the definition for words(value).
// Splits on whitespace, dropping empty words.
func Words() *functions.Def {
	return &functions.Def{
		Name:      "words",
		Signature: "<s:a<s>>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			parts := strings.Fields(s)
			out := make(value.Array, len(parts))
			for i, p := range parts {
				out[i] = value.String(p)
			}
			return out, nil
		},
	}
}

// Truncate returns the definition for truncate(value, limit [, suffix]).
// Strings longer than limit runes are cut and suffix is appended.
func Truncate() *functions.Def {
	return &functions.Def{
		Name:      "truncate",
		Signature: "<s-i-s?:s>",
		Keywords:  []string{"value", "limit", "suffix"},
		Defaults:  map[string]value.Value{"suffix": value.String("")},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			limit, err := args.Integer("limit")
			if err != nil {
				return nil, err
			}
			suffix, err := args.String("suffix")
			if err != nil {
				return nil, err
			}
			runes := []rune(s)
			if limit < 0 || int64(len(runes)) <= limit {
				return value.String(s), nil
			}
			return value.String(string(runes[:limit]) + suffix), nil
		},
	}
}
