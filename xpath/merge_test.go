package xpath

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/midbel/xee/xml"
)

// testNodes parses a flat document and returns the children of the
// root element, in document order.
func testNodes(t *testing.T, count int) []xml.Node {
	t.Helper()
	str := "<root>"
	for range count {
		str += "<n/>"
	}
	str += "</root>"
	doc, err := xml.ParseString(str)
	require.NoError(t, err)
	root, ok := doc.Root().(*xml.Element)
	require.True(t, ok)
	require.Len(t, root.Nodes, count)
	return root.Nodes
}

func nodeLiteral(nodes ...xml.Node) Expression {
	var seq Sequence
	for i := range nodes {
		seq.Append(NewNode(nodes[i]))
	}
	return createLiteral(seq)
}

func evalSet(t *testing.T, op rune, left, right []xml.Node) []xml.Node {
	t.Helper()
	expr := NewSet(op, nodeLiteral(left...), nodeLiteral(right...))
	seq, err := EvalSequence(expr, DefaultContext())
	require.NoError(t, err)
	out := make([]xml.Node, 0, seq.Len())
	for i := range seq {
		require.False(t, seq[i].Atomic())
		out = append(out, seq[i].Node())
	}
	return out
}

func TestSetExcept(t *testing.T) {
	nodes := testNodes(t, 4)
	got := evalSet(t, opExcept, nodes, []xml.Node{nodes[1], nodes[3]})
	require.Len(t, got, 2)
	require.True(t, xml.IsSame(nodes[0], got[0]))
	require.True(t, xml.IsSame(nodes[2], got[1]))
}

func TestSetExceptEdges(t *testing.T) {
	nodes := testNodes(t, 3)

	got := evalSet(t, opExcept, nodes, nil)
	require.Len(t, got, 3)

	got = evalSet(t, opExcept, nil, nodes)
	require.Empty(t, got)

	got = evalSet(t, opExcept, nodes, nodes)
	require.Empty(t, got)

	// duplicates on either side collapse before the merge
	got = evalSet(t, opExcept, []xml.Node{nodes[0], nodes[0], nodes[2]}, []xml.Node{nodes[2], nodes[2]})
	require.Len(t, got, 1)
	require.True(t, xml.IsSame(nodes[0], got[0]))
}

func TestSetIntersect(t *testing.T) {
	nodes := testNodes(t, 5)
	got := evalSet(t, opIntersect, nodes[:4], nodes[2:])
	require.Len(t, got, 2)
	require.True(t, xml.IsSame(nodes[2], got[0]))
	require.True(t, xml.IsSame(nodes[3], got[1]))
}

func TestSetUnion(t *testing.T) {
	nodes := testNodes(t, 4)
	// inputs out of order and overlapping
	got := evalSet(t, opUnion, []xml.Node{nodes[3], nodes[0]}, []xml.Node{nodes[2], nodes[0]})
	require.Len(t, got, 3)
	require.True(t, xml.IsSame(nodes[0], got[0]))
	require.True(t, xml.IsSame(nodes[2], got[1]))
	require.True(t, xml.IsSame(nodes[3], got[2]))
}

func TestSetRandomized(t *testing.T) {
	const size = 40
	nodes := testNodes(t, size)
	rng := rand.New(rand.NewSource(1))

	for range 20 {
		var left, right []xml.Node
		inLeft := make(map[int]bool)
		inRight := make(map[int]bool)
		for i := range size {
			if rng.Intn(2) == 0 {
				left = append(left, nodes[i])
				inLeft[i] = true
			}
			if rng.Intn(2) == 0 {
				right = append(right, nodes[i])
				inRight[i] = true
			}
		}
		rng.Shuffle(len(left), func(i, j int) { left[i], left[j] = left[j], left[i] })
		rng.Shuffle(len(right), func(i, j int) { right[i], right[j] = right[j], right[i] })

		var want []xml.Node
		for i := range size {
			if inLeft[i] && !inRight[i] {
				want = append(want, nodes[i])
			}
		}
		got := evalSet(t, opExcept, left, right)
		require.Len(t, got, len(want))
		for i := range want {
			require.True(t, xml.IsSame(want[i], got[i]))
		}
	}
}

func TestSetRejectsAtomics(t *testing.T) {
	nodes := testNodes(t, 2)

	// statically visible atomic operand
	expr := NewSet(opUnion, NewLiteral(int64(1)), nodeLiteral(nodes...))
	_, err := expr.TypeCheck(DefaultStaticContext())
	require.Error(t, err)

	// atomic hiding in a mixed sequence only shows up at run time
	var seq Sequence
	seq.Append(NewNode(nodes[0]))
	seq.Append(NewInteger(1))
	expr = NewSet(opExcept, createLiteral(seq), nodeLiteral(nodes...))
	_, err = EvalSequence(expr, DefaultContext())
	require.Error(t, err)
}

func TestSetRestartIndependence(t *testing.T) {
	nodes := testNodes(t, 3)
	expr := NewSet(opExcept, nodeLiteral(nodes...), nodeLiteral(nodes[1]))
	it, err := expr.Iterate(DefaultContext())
	require.NoError(t, err)

	first, err := it.Next()
	require.NoError(t, err)
	require.True(t, xml.IsSame(nodes[0], first.Node()))

	// consuming a clone does not disturb the original
	fresh, err := it.Another()
	require.NoError(t, err)
	seq, err := Expand(fresh)
	require.NoError(t, err)
	require.Equal(t, 2, seq.Len())
	require.True(t, xml.IsSame(nodes[0], seq[0].Node()))
	require.True(t, xml.IsSame(nodes[2], seq[1].Node()))

	item, err := it.Next()
	require.NoError(t, err)
	require.True(t, xml.IsSame(nodes[2], item.Node()))
	item, err = it.Next()
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestSetLazyOutput(t *testing.T) {
	nodes := testNodes(t, 3)
	expr := NewSet(opUnion, nodeLiteral(nodes...), nodeLiteral())
	it, err := expr.Iterate(DefaultContext())
	require.NoError(t, err)

	item, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Equal(t, 1, it.Position())

	fresh, err := it.Another()
	require.NoError(t, err)
	seq, err := Expand(fresh)
	require.NoError(t, err)
	require.Equal(t, 3, seq.Len())
}
