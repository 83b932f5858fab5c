package types

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxArrayPadding is the largest number of nulls a write may insert to
// extend an array up to the written index.
const MaxArrayPadding = 1 << 16

// Segment is one step of a Path: an object field or an array index.
type Segment struct {
	Field string
	Index int
	index bool
}

// FieldSegment returns a segment selecting object field name.
func FieldSegment(name string) Segment { return Segment{Field: name} }

// IndexSegment returns a segment selecting array element i. Negative indices
// count from the end.
func IndexSegment(i int) Segment { return Segment{Index: i, index: true} }

// IsIndex reports whether s selects an array element.
func (s Segment) IsIndex() bool { return s.index }

func (s Segment) String() string {
	if s.index {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if isBareField(s.Field) {
		return "." + s.Field
	}
	return "." + Quote(s.Field)
}

func isBareField(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r == '@' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// Path is a sequence of segments. The empty path is the root.
type Path []Segment

// ParsePath parses a path such as ".a.b[0]" or `."k e y"[1]`. The leading
// dot is optional.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "." {
		return Path{}, nil
	}
	if s[0] != '.' && s[0] != '[' {
		s = "." + s
	}

	var p Path
	for i := 0; i < len(s); {
		switch s[i] {
		case '.':
			i++
			if i < len(s) && s[i] == '[' && len(p) == 0 {
				continue
			}
			if i < len(s) && s[i] == '"' {
				end := i + 1
				for end < len(s) && s[end] != '"' {
					if s[end] == '\\' {
						end++
					}
					end++
				}
				if end >= len(s) {
					return nil, fmt.Errorf("invalid path %q: unterminated quoted field", s)
				}
				name, err := strconv.Unquote(s[i : end+1])
				if err != nil {
					return nil, fmt.Errorf("invalid path %q: %w", s, err)
				}
				p = append(p, FieldSegment(name))
				i = end + 1
				continue
			}
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' && s[i] != ']' {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("invalid path %q: empty field at offset %d", s, start)
			}
			p = append(p, FieldSegment(s[start:i]))
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("invalid path %q: unterminated index", s)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("invalid path %q: %w", s, err)
			}
			p = append(p, IndexSegment(n))
			i += end + 1
		default:
			return nil, fmt.Errorf("invalid path %q: unexpected %q at offset %d", s, s[i], i)
		}
	}
	return p, nil
}

// IsRoot reports whether p is the empty path.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Append returns a new path with segs added to the end of p.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// HasPrefix reports whether q is a prefix of p.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Equal reports whether p and q select the same location.
func (p Path) Equal(q Path) bool {
	return len(p) == len(q) && p.HasPrefix(q)
}

func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// PathPrefix selects the root a TargetPath starts from.
type PathPrefix uint8

const (
	// PrefixEvent is the event root, written ".".
	PrefixEvent PathPrefix = iota
	// PrefixMetadata is the metadata root, written "%".
	PrefixMetadata
)

func (p PathPrefix) String() string {
	if p == PrefixMetadata {
		return "%"
	}
	return "."
}

// TargetPath is a path into the event or its metadata.
type TargetPath struct {
	Prefix PathPrefix
	Path   Path
}

// EventPath returns a TargetPath into the event.
func EventPath(p Path) TargetPath { return TargetPath{Prefix: PrefixEvent, Path: p} }

// MetadataPath returns a TargetPath into the metadata.
func MetadataPath(p Path) TargetPath { return TargetPath{Prefix: PrefixMetadata, Path: p} }

// ParseTargetPath parses ".a.b" as an event path and "%a.b" as a metadata
// path.
func ParseTargetPath(s string) (TargetPath, error) {
	if strings.HasPrefix(s, "%") {
		p, err := ParsePath(s[1:])
		return MetadataPath(p), err
	}
	if !strings.HasPrefix(s, ".") {
		return TargetPath{}, fmt.Errorf("invalid target path %q: must start with . or %%", s)
	}
	p, err := ParsePath(s)
	return EventPath(p), err
}

// Equal reports whether t and o select the same location.
func (t TargetPath) Equal(o TargetPath) bool {
	return t.Prefix == o.Prefix && t.Path.Equal(o.Path)
}

func (t TargetPath) String() string {
	rest := t.Path.String()
	if t.Prefix == PrefixMetadata {
		return "%" + strings.TrimPrefix(rest, ".")
	}
	if rest == "" || strings.HasPrefix(rest, "[") {
		return "." + rest
	}
	return rest
}
