package xpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type caseless struct{}

func (caseless) Compare(left, right string) int {
	if left == right {
		return 0
	}
	return codepointCollator{}.Compare(left, right)
}

func TestCollationDefault(t *testing.T) {
	m := DefaultCollations()
	c, err := m.Get(CodepointUri)
	require.NoError(t, err)
	require.Equal(t, -1, c.Compare("a", "b"))
	require.Equal(t, 0, c.Compare("a", "a"))
	require.Equal(t, 1, c.Compare("b", "a"))
	require.NotNil(t, m.Default())
}

func TestCollationUnknown(t *testing.T) {
	m := DefaultCollations()
	_, err := m.Get("http://example.com/collation")
	require.Error(t, err)
	require.Error(t, m.SetDefault("http://example.com/collation"))
}

func TestCollationCopyIsolation(t *testing.T) {
	const uri = "http://example.com/caseless"

	orig := DefaultCollations()
	snap := orig.Copy()
	snap.Register(uri, caseless{})

	// the copy sees its registration, the original does not
	_, err := snap.Get(uri)
	require.NoError(t, err)
	_, err = orig.Get(uri)
	require.Error(t, err)

	// and the other way around
	orig.Register("http://example.com/other", caseless{})
	_, err = snap.Get("http://example.com/other")
	require.Error(t, err)
}

func TestCollationCopyDefault(t *testing.T) {
	orig := DefaultCollations()
	snap := orig.Copy()
	snap.Register("http://example.com/caseless", caseless{})
	require.NoError(t, snap.SetDefault("http://example.com/caseless"))

	// the original keeps the codepoint default
	require.Equal(t, -1, orig.Default().Compare("a", "b"))
}

func TestCollationUCA(t *testing.T) {
	m := DefaultCollations()
	c, err := m.Get(ucaUriPrefix + "?lang=en")
	require.NoError(t, err)
	require.True(t, c.Compare("apple", "banana") < 0)
	require.Equal(t, 0, c.Compare("same", "same"))

	// resolved once, cached afterwards
	again, err := m.Get(ucaUriPrefix + "?lang=en")
	require.NoError(t, err)
	require.Equal(t, c, again)
}
