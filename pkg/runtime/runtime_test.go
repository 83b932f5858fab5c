package runtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goremap/pkg/value"
)

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("ast")
	require.NoError(t, err)
	assert.Equal(t, AST, s)
	assert.Equal(t, "ast", s.String())

	for _, bad := range []string{"", "vm", "AST", "llvm"} {
		_, err := ParseStrategy(bad)
		assert.ErrorIs(t, err, ErrUnknownStrategy, bad)
		assert.EqualError(t, err, "runtime must be ast")
	}
}

func TestStrategyText(t *testing.T) {
	var cfg struct {
		Runtime Strategy `json:"runtime"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"runtime":"ast"}`), &cfg))
	assert.Equal(t, AST, cfg.Runtime)

	err := json.Unmarshal([]byte(`{"runtime":"vm"}`), &cfg)
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"runtime":"ast"}`, string(out))
}

func TestContextLocals(t *testing.T) {
	ctx := NewContext(value.NewEvent(nil), nil)
	assert.Equal(t, time.UTC, ctx.Timezone())

	v, ok := ctx.Local("x")
	assert.False(t, ok)
	assert.Equal(t, value.NullValue, v)

	ctx.SetLocal("x", value.Integer(1))
	clone := ctx.Clone()
	clone.SetLocal("x", value.Integer(2))

	v, ok = ctx.Local("x")
	assert.True(t, ok)
	assert.Equal(t, value.Integer(1), v)

	ctx.Clear()
	assert.Empty(t, ctx.Locals())
	assert.Len(t, clone.Locals(), 1)
}

func TestContextClock(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600))
	ctx := NewContext(nil, nil)
	ctx.SetClock(func() time.Time { return fixed })
	assert.Equal(t, fixed.UTC(), ctx.Now())
	assert.Equal(t, time.UTC, ctx.Now().Location())
}
