package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
		str  string
	}{
		{".", Path{}, ""},
		{".a", Path{FieldSegment("a")}, ".a"},
		{"a.b", Path{FieldSegment("a"), FieldSegment("b")}, ".a.b"},
		{".a[0].b", Path{FieldSegment("a"), IndexSegment(0), FieldSegment("b")}, ".a[0].b"},
		{".a[-1]", Path{FieldSegment("a"), IndexSegment(-1)}, ".a[-1]"},
		{`."k e y".x`, Path{FieldSegment("k e y"), FieldSegment("x")}, `."k e y".x`},
		{"[2]", Path{IndexSegment(2)}, "[2]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, in := range []string{".a..b", ".a[", ".a[x]", `."open`, ".a]"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePath(in)
			assert.Error(t, err)
		})
	}
}

func TestTargetPath(t *testing.T) {
	tests := []struct {
		in     string
		prefix PathPrefix
		str    string
	}{
		{".", PrefixEvent, "."},
		{".a.b", PrefixEvent, ".a.b"},
		{".[0]", PrefixEvent, ".[0]"},
		{"%", PrefixMetadata, "%"},
		{"%tenant.id", PrefixMetadata, "%tenant.id"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTargetPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, got.Prefix)
			assert.Equal(t, tt.str, got.String())
		})
	}

	_, err := ParseTargetPath("a.b")
	assert.Error(t, err)
}

func TestPathHasPrefix(t *testing.T) {
	p := Path{FieldSegment("a"), FieldSegment("b")}
	assert.True(t, p.HasPrefix(Path{FieldSegment("a")}))
	assert.True(t, p.HasPrefix(Path{}))
	assert.False(t, p.HasPrefix(Path{FieldSegment("b")}))
	assert.False(t, Path{FieldSegment("a")}.HasPrefix(p))
	assert.True(t, p.Equal(p.Append()))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`a"b\c`, `"a\"b\\c"`},
		{"l1\nl2\tx\r", `"l1\nl2\tx\r"`},
		{"a\x01b", `"a\u0001b"`},
		{"\x00\x7f", `"\u0000\u007f"`},
		{"\xff", "\"\xff\""},
		{"café", `"café"`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
	assert.Equal(t, `."a\u0001"`, FieldSegment("a\x01").String())
}
