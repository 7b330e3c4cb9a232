package xpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, it Iterator) []string {
	t.Helper()
	seq, err := Expand(it)
	require.NoError(t, err)
	return seq.Strings()
}

func TestIteratorProtocol(t *testing.T) {
	tests := []struct {
		Name string
		Make func() Iterator
		Want []string
	}{
		{
			Name: "empty",
			Make: EmptyIterator,
			Want: nil,
		},
		{
			Name: "single",
			Make: func() Iterator { return SingleIterator(NewString("a")) },
			Want: []string{"a"},
		},
		{
			Name: "list",
			Make: func() Iterator {
				return FromSequence(Sequence{NewInteger(1), NewInteger(2), NewInteger(3)})
			},
			Want: []string{"1", "2", "3"},
		},
		{
			Name: "range",
			Make: func() Iterator { return RangeIterator(2, 5) },
			Want: []string{"2", "3", "4", "5"},
		},
		{
			Name: "append",
			Make: func() Iterator {
				return AppendIterator(RangeIterator(1, 2), EmptyIterator(), RangeIterator(5, 6))
			},
			Want: []string{"1", "2", "5", "6"},
		},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			it := c.Make()
			require.Equal(t, 0, it.Position())
			require.Equal(t, c.Want, drain(t, it))

			// exhaustion is stable
			item, err := it.Next()
			require.NoError(t, err)
			require.Nil(t, item)

			// a partially consumed iterator restarts from the top
			it = c.Make()
			it.Next()
			fresh, err := it.Another()
			require.NoError(t, err)
			require.Equal(t, 0, fresh.Position())
			require.Equal(t, c.Want, drain(t, fresh))
		})
	}
}

func TestIteratorPosition(t *testing.T) {
	it := RangeIterator(10, 12)
	for want := 1; want <= 3; want++ {
		item, err := it.Next()
		require.NoError(t, err)
		require.NotNil(t, item)
		require.Equal(t, want, it.Position())
		require.Equal(t, item, it.Current())
	}
}

func TestIteratorReverse(t *testing.T) {
	it := RangeIterator(1, 4)
	rev, err := ReverseIterator(it)
	require.NoError(t, err)
	require.Equal(t, []string{"4", "3", "2", "1"}, drain(t, rev))

	list := FromSequence(Sequence{NewString("a"), NewString("b"), NewString("c")})
	rev, err = ReverseIterator(list)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, drain(t, rev))
}

func TestIteratorCount(t *testing.T) {
	n, err := Count(RangeIterator(1, 100))
	require.NoError(t, err)
	require.Equal(t, 100, n)

	// counting through the capability does not consume the iterator
	it := RangeIterator(1, 3)
	if f, ok := it.(LastPositionFinder); ok {
		last, err := f.LastPosition()
		require.NoError(t, err)
		require.Equal(t, 3, last)
	}
	require.Equal(t, []string{"1", "2", "3"}, drain(t, it))
}
