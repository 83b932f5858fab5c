package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPath(t *testing.T, s string) Path {
	t.Helper()
	p, err := ParsePath(s)
	require.NoError(t, err)
	return p
}

func TestKindString(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{"never", Never(), "never"},
		{"any", Any(), "any"},
		{"string", String(), "string"},
		{"pair", String().Union(Integer()), "string or integer"},
		{"triple", Integer().Union(Float()).Union(Null()), "integer, float or null"},
		{"object", AnyObject(), "object"},
		{"array or null", AnyArray().Union(Null()), "null or array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestKindUnionLaws(t *testing.T) {
	kinds := []Kind{
		String(),
		Integer().Union(Null()),
		ObjectOf(map[string]Kind{"a": Integer()}),
		ObjectOf(map[string]Kind{"a": String(), "b": Boolean()}),
		Object(OpenCollection[string](Float())),
		ArrayOf(String(), Integer()),
		Array(OpenCollection[int](Boolean())),
		Any(),
	}

	for i, a := range kinds {
		assert.True(t, a.Union(a).Equal(a), "idempotent %d", i)
		for j, b := range kinds {
			assert.True(t, a.Union(b).Equal(b.Union(a)), "commutative %d,%d", i, j)
			for k, c := range kinds {
				left := a.Union(b).Union(c)
				right := a.Union(b.Union(c))
				assert.True(t, left.Equal(right), "associative %d,%d,%d: %v vs %v", i, j, k, left, right)
			}
		}
	}
}

func TestKindUnionWithAnyIsAny(t *testing.T) {
	k := ObjectOf(map[string]Kind{"a": Integer()}).Union(Any())
	assert.True(t, k.IsAny())
	assert.Equal(t, "any", k.String())
}

func TestKindUnionFieldOnOneSide(t *testing.T) {
	a := ObjectOf(map[string]Kind{"a": Integer()})
	b := ObjectOf(map[string]Kind{"b": String()})

	u := a.Union(b)
	assert.True(t, u.At(mustPath(t, ".a")).Equal(Integer().Union(Null())))
	assert.True(t, u.At(mustPath(t, ".b")).Equal(String().Union(Null())))
}

func TestKindAt(t *testing.T) {
	event := ObjectOf(map[string]Kind{
		"msg":  String(),
		"tags": ArrayOf(String(), String()),
		"nested": ObjectOf(map[string]Kind{
			"n": Integer(),
		}),
	})

	tests := []struct {
		path string
		want Kind
	}{
		{".", event},
		{".msg", String()},
		{".missing", Null()},
		{".nested.n", Integer()},
		{".tags[1]", String()},
		{".tags[5]", Null()},
		{".tags[-1]", String().Union(Null())},
		{".msg.x", Null()},
		{".msg[0]", Null()},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := event.At(mustPath(t, tt.path))
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}

	assert.True(t, Any().At(mustPath(t, ".a.b[3]")).IsAny())
}

func TestKindInsert(t *testing.T) {
	event := ObjectOf(map[string]Kind{"a": String()})

	t.Run("replace field", func(t *testing.T) {
		got := event.Insert(mustPath(t, ".a"), Integer())
		assert.True(t, got.At(mustPath(t, ".a")).IsInteger())
	})

	t.Run("create intermediates", func(t *testing.T) {
		got := event.Insert(mustPath(t, ".b.c[1]"), Boolean())
		assert.True(t, got.At(mustPath(t, ".b.c[1]")).IsBoolean())
		assert.True(t, got.At(mustPath(t, ".b.c[0]")).IsNull())
		assert.True(t, got.At(mustPath(t, ".a")).IsString())
	})

	t.Run("overwrite scalar intermediate", func(t *testing.T) {
		got := event.Insert(mustPath(t, ".a.b"), Integer())
		assert.True(t, got.At(mustPath(t, ".a")).IsObject())
		assert.True(t, got.At(mustPath(t, ".a.b")).IsInteger())
	})

	t.Run("root", func(t *testing.T) {
		got := event.Insert(Path{}, Integer())
		assert.True(t, got.IsInteger())
	})

	t.Run("index past padding limit", func(t *testing.T) {
		got := event.Insert(mustPath(t, ".b[4000000000]"), Integer())
		assert.True(t, got.At(mustPath(t, ".b")).IsArray())
		assert.False(t, got.At(mustPath(t, ".b[4000000000]")).IsInteger())
		assert.True(t, got.At(mustPath(t, ".a")).IsString())
	})

	t.Run("input unchanged", func(t *testing.T) {
		_ = event.Insert(mustPath(t, ".a"), Integer())
		assert.True(t, event.At(mustPath(t, ".a")).IsString())
	})
}

func TestKindIsSuperset(t *testing.T) {
	tests := []struct {
		name  string
		super Kind
		sub   Kind
		want  bool
	}{
		{"any accepts object", Any(), ObjectOf(map[string]Kind{"a": Integer()}), true},
		{"numeric accepts integer", Numeric(), Integer(), true},
		{"integer rejects numeric", Integer(), Numeric(), false},
		{"string rejects string or integer", String(), String().Union(Integer()), false},
		{"any object accepts closed object", AnyObject(), ObjectOf(map[string]Kind{"a": Integer()}), true},
		{"closed object rejects open", ObjectOf(map[string]Kind{"a": Integer()}), AnyObject(), false},
		{"array of strings", Array(OpenCollection[int](String())), ArrayOf(String(), String()), true},
		{"array of strings rejects ints", Array(OpenCollection[int](String())), ArrayOf(Integer()), false},
		{"scalar rejects array", Scalar(), AnyArray(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.super.IsSuperset(tt.sub))
		})
	}
}

func TestKindPrimitives(t *testing.T) {
	k := Integer().Union(Null()).Union(AnyObject())
	prims := k.Primitives()
	require.Len(t, prims, 3)
	assert.True(t, prims[0].IsInteger())
	assert.True(t, prims[1].IsNull())
	assert.True(t, prims[2].IsObject())
}

func TestTypeDefUnion(t *testing.T) {
	a := Infallible(Integer())
	b := Fallible(String())

	u := a.Union(b)
	assert.True(t, u.IsFallible())
	assert.Equal(t, "fallible integer or string", u.String())
	assert.True(t, u.Kind().Equal(b.Union(a).Kind()))
	assert.True(t, a.Union(a).Equal(a))

	assert.True(t, Infallible(Never()).Finalize().Kind().IsAny())
}
