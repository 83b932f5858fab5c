package functions

import (
	"fmt"

	"github.com/sandrolain/goremap/pkg/types"
)

// Type codes used in signatures.
//
//	x any        s string     i integer    f float      n integer or float
//	b boolean    l null       t timestamp  r regex
//	a array      a<s> array of strings
//	o object     o<i> object of integers
//
// A parenthesised list is a union: (sl) is string or null. A trailing ? marks
// an optional parameter.
const typeCodes = "xsifnbltrao"

// Signature is a parsed function signature such as "<s-i?:s>".
type Signature struct {
	Params []SigParam
	Return types.Kind
}

// SigParam is one parameter of a Signature.
type SigParam struct {
	Kind     types.Kind
	Optional bool
}

// ParseSignature parses a signature string. Parameters are separated by an
// optional '-'; the part after ':' is the return kind, any when omitted.
//
// Examples: "<s:s>", "<s-s:b>", "<a<s>s?:s>", "<(sn):i>"
func ParseSignature(sig string) (*Signature, error) {
	if len(sig) < 2 || sig[0] != '<' || sig[len(sig)-1] != '>' {
		return nil, fmt.Errorf("invalid signature %q: must be enclosed in <>", sig)
	}
	body := sig[1 : len(sig)-1]

	parts := splitByColonRespectingBrackets(body)
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid signature %q: more than one return type", sig)
	}

	result := &Signature{Return: types.Any()}

	if len(parts) > 0 && parts[0] != "" {
		params, err := parseParamList(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
		}
		result.Params = params
	}

	if len(parts) == 2 {
		ret, consumed, err := parseParamTypeAt(parts[1], 0)
		if err != nil {
			return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
		}
		if consumed != len(parts[1]) || ret.Optional {
			return nil, fmt.Errorf("invalid signature %q: unexpected characters after return type", sig)
		}
		result.Return = ret.Kind
	}

	seenOptional := false
	for _, p := range result.Params {
		if seenOptional && !p.Optional {
			return nil, fmt.Errorf("invalid signature %q: required parameter after optional one", sig)
		}
		seenOptional = seenOptional || p.Optional
	}

	return result, nil
}

// splitByColonRespectingBrackets splits a string by : but respects nested < >
func splitByColonRespectingBrackets(s string) []string {
	var parts []string
	depth := 0
	start := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ':':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	if start <= len(s) {
		parts = append(parts, s[start:])
	}

	return parts
}

func parseParamList(params string) ([]SigParam, error) {
	var result []SigParam
	i := 0

	for i < len(params) {
		p, consumed, err := parseParamTypeAt(params, i)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
		i += consumed

		if i < len(params) && params[i] == '-' {
			i++
		}
	}

	return result, nil
}

// parseParamTypeAt parses a parameter type starting at position i and
// returns the number of bytes consumed.
func parseParamTypeAt(s string, i int) (SigParam, int, error) {
	if i >= len(s) {
		return SigParam{}, 0, fmt.Errorf("unexpected end of signature")
	}

	start := i
	var p SigParam

	if s[i] == '(' {
		j := i + 1
		for j < len(s) && s[j] != ')' {
			j++
		}
		if j >= len(s) {
			return SigParam{}, 0, fmt.Errorf("unmatched ( at offset %d", i)
		}
		if j == i+1 {
			return SigParam{}, 0, fmt.Errorf("empty union at offset %d", i)
		}
		p.Kind = types.Never()
		for k := i + 1; k < j; k++ {
			kind, err := kindForCode(s[k])
			if err != nil {
				return SigParam{}, 0, err
			}
			p.Kind = p.Kind.Union(kind)
		}
		i = j + 1
	} else {
		code := s[i]
		kind, err := kindForCode(code)
		if err != nil {
			return SigParam{}, 0, err
		}
		i++

		// Element subtype: a<n> for arrays, o<n> for objects
		if i < len(s) && s[i] == '<' {
			if code != 'a' && code != 'o' {
				return SigParam{}, 0, fmt.Errorf("type %c cannot have subtypes", code)
			}
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				if s[j] == '<' {
					depth++
				} else if s[j] == '>' {
					depth--
				}
				j++
			}
			if depth != 0 {
				return SigParam{}, 0, fmt.Errorf("unmatched < at offset %d", i)
			}
			sub := s[i+1 : j-1]
			elem, consumed, err := parseParamTypeAt(sub, 0)
			if err != nil {
				return SigParam{}, 0, err
			}
			if consumed != len(sub) || elem.Optional {
				return SigParam{}, 0, fmt.Errorf("invalid subtype %q", sub)
			}
			if code == 'a' {
				kind = types.Array(types.OpenCollection[int](elem.Kind))
			} else {
				kind = types.Object(types.OpenCollection[string](elem.Kind))
			}
			i = j
		}
		p.Kind = kind
	}

	if i < len(s) && s[i] == '?' {
		p.Optional = true
		i++
	}

	return p, i - start, nil
}

func kindForCode(c byte) (types.Kind, error) {
	switch c {
	case 'x':
		return types.Any(), nil
	case 's':
		return types.String(), nil
	case 'i':
		return types.Integer(), nil
	case 'f':
		return types.Float(), nil
	case 'n':
		return types.Numeric(), nil
	case 'b':
		return types.Boolean(), nil
	case 'l':
		return types.Null(), nil
	case 't':
		return types.Timestamp(), nil
	case 'r':
		return types.Regex(), nil
	case 'a':
		return types.AnyArray(), nil
	case 'o':
		return types.AnyObject(), nil
	}
	return types.Never(), fmt.Errorf("unknown type code %q (want one of %q)", c, typeCodes)
}
