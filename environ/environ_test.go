package environ

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefineResolve(t *testing.T) {
	env := Empty[int]()
	env.Define("x", 1)
	env.Define("y", 2)

	got, err := env.Resolve("x")
	require.NoError(t, err)
	require.Equal(t, 1, got)

	_, err = env.Resolve("z")
	require.ErrorIs(t, err, ErrUndefined)

	require.Equal(t, 2, env.Len())
	require.Equal(t, []string{"x", "y"}, env.Names())
}

func TestEnclosed(t *testing.T) {
	parent := Empty[string]()
	parent.Define("shared", "outer")
	parent.Define("shadowed", "outer")

	child := Enclosed(parent)
	child.Define("shadowed", "inner")

	got, err := child.Resolve("shared")
	require.NoError(t, err)
	require.Equal(t, "outer", got)

	got, err = child.Resolve("shadowed")
	require.NoError(t, err)
	require.Equal(t, "inner", got)

	// shadowing never writes through to the parent
	got, err = parent.Resolve("shadowed")
	require.NoError(t, err)
	require.Equal(t, "outer", got)
}

func TestClone(t *testing.T) {
	env := Empty[int]()
	env.Define("a", 1)

	kind, ok := env.(interface{ Clone() Environ[int] })
	require.True(t, ok)
	clone := kind.Clone()
	clone.Define("b", 2)

	_, err := env.Resolve("b")
	require.ErrorIs(t, err, ErrUndefined)
	got, err := clone.Resolve("a")
	require.NoError(t, err)
	require.Equal(t, 1, got)
}
