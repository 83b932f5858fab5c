package diagnostic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	d := New(Error, CodeUndefinedVariable, Span{0, 3}, "undefined variable: %s", "foo")
	assert.Equal(t, "undefined variable: foo", d.Message)
	assert.Equal(t, "error[101] at 0..3: undefined variable: foo", d.String())

	d = d.WithNote("did you mean fob?")
	assert.Equal(t, "error[101] at 0..3: undefined variable: foo; note: did you mean fob?", d.Error())
	require.Len(t, d.Labels, 1)
	assert.True(t, d.Labels[0].Primary)
}

func TestListErr(t *testing.T) {
	var l List
	assert.NoError(t, l.Err())

	l.Add(New(Warning, CodeDeprecated, Span{0, 1}, "deprecated function: x"))
	assert.False(t, l.HasErrors())
	assert.NoError(t, l.Err())

	first := New(Error, CodeUndefinedFunction, Span{2, 5}, "undefined function: f")
	l.Add(first)
	l.Add(New(Error, CodeArity, Span{6, 9}, "wrong number of arguments"))

	err := l.Err()
	require.Error(t, err)
	assert.Equal(t, "error[105] at 2..5: undefined function: f (and 1 more errors)", err.Error())
	assert.Len(t, l.Errors(), 2)
	assert.Len(t, l.Warnings(), 1)

	var got List
	require.True(t, errors.As(err, &got))
	assert.Len(t, got, 3)

	var d Diagnostic
	require.True(t, errors.As(err, &d))
	assert.Equal(t, CodeUndefinedFunction, d.Code)

	assert.Equal(t, []string{"deprecated function: x", "undefined function: f", "wrong number of arguments"}, l.Messages())
}
