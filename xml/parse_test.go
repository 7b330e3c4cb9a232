package xml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc, err := ParseString(`<shop><item id="1">tea</item><item id="2">rice</item><!-- end --></shop>`)
	require.NoError(t, err)

	root, ok := doc.Root().(*Element)
	require.True(t, ok)
	require.Equal(t, "shop", root.LocalName())
	require.Len(t, root.Nodes, 3)

	item, ok := root.Nodes[0].(*Element)
	require.True(t, ok)
	require.Equal(t, "tea", item.Value())
	attr, ok := item.GetAttribute("id")
	require.True(t, ok)
	require.Equal(t, "1", attr.Value())

	require.Equal(t, TypeComment, root.Nodes[2].Type())
	// comments do not take part in the element value
	require.Equal(t, "tearice", root.Value())
}

func TestParseNoRoot(t *testing.T) {
	_, err := ParseString("  ")
	require.ErrorIs(t, err, ErrRoot)
}

func TestParseMalformed(t *testing.T) {
	_, err := ParseString("<a><b></a>")
	require.Error(t, err)
}

func TestParseParents(t *testing.T) {
	doc, err := ParseString("<a><b><c/></b></a>")
	require.NoError(t, err)
	a := doc.Root().(*Element)
	b := a.Nodes[0].(*Element)
	c := b.Nodes[0]
	require.Same(t, b, c.Parent())
	require.Same(t, a, b.Parent())
	require.Equal(t, 0, a.Position())
	require.Equal(t, 0, b.Position())
}

func TestWriteNode(t *testing.T) {
	doc, err := ParseString("<a><b>x &amp; y</b></a>")
	require.NoError(t, err)
	str := WriteNode(doc.Root())
	require.True(t, strings.Contains(str, "&amp;"))
	require.True(t, strings.Contains(str, "<b>"))
}
