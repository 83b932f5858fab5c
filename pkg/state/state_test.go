package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goremap/pkg/types"
)

func stateWith(vars map[string]types.TypeDef, fields map[string]types.Kind) *TypeState {
	s := New(NewExternalEnv(types.ObjectOf(fields), types.AnyObject()))
	for name, td := range vars {
		s.Local.Insert(name, td)
	}
	return s
}

func TestLocalEnvInsertStoresInfallible(t *testing.T) {
	l := NewLocalEnv()
	l.Insert("x", types.Fallible(types.Integer()))

	td, ok := l.Get("x")
	require.True(t, ok)
	assert.True(t, td.IsInfallible())
	assert.True(t, td.Kind().IsInteger())
}

func TestMergeMissingVariableIsNullable(t *testing.T) {
	a := NewLocalEnv()
	a.Insert("x", types.Infallible(types.String()))
	b := NewLocalEnv()

	m := a.Merge(b)
	td, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, "string or null", td.Kind().String())
}

func TestMergeLaws(t *testing.T) {
	states := []*TypeState{
		stateWith(
			map[string]types.TypeDef{"x": types.Infallible(types.String())},
			map[string]types.Kind{"a": types.Integer()},
		),
		stateWith(
			map[string]types.TypeDef{"x": types.Infallible(types.Integer()), "y": types.Infallible(types.Boolean())},
			map[string]types.Kind{"b": types.String()},
		),
		stateWith(
			map[string]types.TypeDef{"z": types.Infallible(types.AnyArray())},
			map[string]types.Kind{"a": types.Float(), "b": types.Null()},
		),
	}

	a, b, c := states[0], states[1], states[2]

	assert.True(t, a.Merge(b).Equal(b.Merge(a)), "commutative")
	assert.True(t, a.Merge(b).Merge(c).Equal(a.Merge(b.Merge(c))), "associative")
	assert.True(t, a.Merge(c).Merge(b).Equal(c.Merge(b).Merge(a)), "order independent")
	assert.True(t, a.Merge(a).Equal(a), "idempotent")
}

func TestCloneIsIndependent(t *testing.T) {
	s := stateWith(nil, map[string]types.Kind{"a": types.Integer()})
	cp := s.Clone()

	cp.Local.Insert("x", types.Infallible(types.Null()))
	p, err := types.ParseTargetPath(".a")
	require.NoError(t, err)
	cp.External.Update(p, types.String())

	_, ok := s.Local.Get("x")
	assert.False(t, ok)
	assert.True(t, s.External.KindAt(p).IsInteger())
	assert.True(t, cp.External.KindAt(p).IsString())
}

func TestExternalEnvMetadata(t *testing.T) {
	e := DefaultExternalEnv()
	p, err := types.ParseTargetPath("%tenant")
	require.NoError(t, err)

	assert.True(t, e.KindAt(p).IsAny())
	e.Update(p, types.String())
	assert.True(t, e.KindAt(p).IsString())
}
