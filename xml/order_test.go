package xml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) (*Document, *Element) {
	t.Helper()
	doc, err := ParseString(`<root><a><b/><c/></a><d/></root>`)
	require.NoError(t, err)
	root, ok := doc.Root().(*Element)
	require.True(t, ok)
	return doc, root
}

func TestCompare(t *testing.T) {
	doc, root := sample(t)
	a := root.Nodes[0].(*Element)
	d := root.Nodes[1]
	b := a.Nodes[0]
	c := a.Nodes[1]

	require.True(t, Before(doc, root))
	require.True(t, Before(root, a))
	require.True(t, Before(a, b))
	require.True(t, Before(b, c))
	require.True(t, Before(c, d))
	require.True(t, After(d, b))
	require.True(t, IsSame(c, c))
	require.False(t, IsSame(b, c))
	require.Equal(t, 0, Compare(root, root))
}

func TestSortOrder(t *testing.T) {
	_, root := sample(t)
	a := root.Nodes[0].(*Element)
	d := root.Nodes[1]
	b := a.Nodes[0]
	c := a.Nodes[1]

	sorted := SortOrder([]Node{d, c, b, a, c, b})
	require.Len(t, sorted, 4)
	require.True(t, IsSame(sorted[0], a))
	require.True(t, IsSame(sorted[1], b))
	require.True(t, IsSame(sorted[2], c))
	require.True(t, IsSame(sorted[3], d))
}

func TestAttributeOrder(t *testing.T) {
	doc, err := ParseString(`<root a="1">text</root>`)
	require.NoError(t, err)
	root, ok := doc.Root().(*Element)
	require.True(t, ok)
	attr, ok := root.GetAttribute("a")
	require.True(t, ok)
	text := root.Nodes[0]

	// attributes come after their element and before its children
	require.False(t, IsSame(&attr, text))
	require.True(t, Before(root, &attr))
	require.True(t, Before(&attr, text))
}

func TestIdentity(t *testing.T) {
	// identity is the position vector: nodes occupying the same place
	// in equally shaped trees compare as the same node
	left, _ := sample(t)
	right, _ := sample(t)
	require.True(t, IsSame(left.Root(), right.Root()))
	require.Equal(t, left.Root().Identity(), right.Root().Identity())

	// siblings never share a position
	_, root := sample(t)
	require.NotEqual(t, root.Nodes[0].Identity(), root.Nodes[1].Identity())
}
