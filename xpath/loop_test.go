package xpath

import (
	"strings"
	"testing"

	"github.com/midbel/xee/xml"
	"github.com/stretchr/testify/require"
)

func qname(t *testing.T, str string) xml.QName {
	t.Helper()
	name, err := xml.ParseName(str)
	require.NoError(t, err)
	return name
}

func prepare(t *testing.T, expr Expression) (*Query, error) {
	t.Helper()
	return Prepare(expr, DefaultStaticContext())
}

func TestForBindsDeclaration(t *testing.T) {
	// for $x in (1, 2, 3) return $x * 2
	name := qname(t, "x")
	loop := NewFor(name,
		NewLiteral(int64(1), int64(2), int64(3)),
		NewArithmetic(opMul, NewVariableReference(name), NewLiteral(int64(2))),
	)
	query, err := prepare(t, loop)
	require.NoError(t, err)
	require.Equal(t, 1, query.Slots())

	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"2", "4", "6"}, seq.Strings())
}

func TestLetShadowing(t *testing.T) {
	// let $x := 1 to 1 return (let $x := 2 to 2 return $x) + $x
	// range declarations so neither binding gets inlined away
	name := qname(t, "x")
	inner := NewLet(name, NewRange(NewLiteral(int64(2)), NewLiteral(int64(2))), NewVariableReference(name))
	outer := NewLet(name, NewRange(NewLiteral(int64(1)), NewLiteral(int64(1))),
		NewArithmetic(opAdd, inner, NewVariableReference(name)))

	query, err := prepare(t, outer)
	require.NoError(t, err)
	require.Equal(t, 2, query.Slots())

	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"3"}, seq.Strings())
}

func TestUnboundReference(t *testing.T) {
	name := qname(t, "y")
	loop := NewFor(qname(t, "x"), NewLiteral(int64(1)), NewVariableReference(name))
	_, err := prepare(t, loop)
	require.Error(t, err)
}

func TestUnallocatedSlotPanics(t *testing.T) {
	// a declaration evaluated before slot allocation is a phase bug and
	// must fail loudly
	name := qname(t, "x")
	loop := NewFor(name, NewLiteral(int64(1)), NewVariableReference(name))
	ctx := DefaultContext()
	ctx.frame = make([]Sequence, 4)
	require.Panics(t, func() {
		EvalSequence(loop, ctx)
	})
}

func TestSlotAllocationDisjointBranches(t *testing.T) {
	name := qname(t, "x")
	left := NewLet(name, NewLiteral(int64(1)), NewVariableReference(name))
	right := NewLet(name, NewLiteral(int64(2)), NewVariableReference(name))
	expr := NewSequenceExpr(left, right)

	require.Equal(t, 2, AllocateSlots(expr, 0))
}

func TestPromotionHoistsInvariant(t *testing.T) {
	env := DefaultStaticContext()
	env.Define(NewGlobalVariable(qname(t, "g"), int64(4)))

	// $g * $g does not depend on the loop variable and gets lifted out
	query, err := BuildWith("for $x in 1 to 3 return $x + $g * $g", env)
	require.NoError(t, err)

	dumped := Dump(query.Expr())
	require.True(t, strings.HasPrefix(dumped, "let($0hoist"), dumped)

	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"17", "18", "19"}, seq.Strings())
}

func TestPromotionKeepsDependent(t *testing.T) {
	// $x + 1 references the loop variable and must stay inside
	query, err := Build("for $x in 1 to 3 return $x + 1")
	require.NoError(t, err)
	require.False(t, strings.HasPrefix(Dump(query.Expr()), "let("))

	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"2", "3", "4"}, seq.Strings())
}

func TestPromotionKeepsCreative(t *testing.T) {
	// the break must not move even though it ignores the focus
	query, err := Build("iterate $x in 1 to 5 return if ($x gt 2) then break else $x")
	require.NoError(t, err)
	require.False(t, strings.HasPrefix(Dump(query.Expr()), "let("))

	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, seq.Strings())
}

func TestLetInlinesConstant(t *testing.T) {
	query, err := Build("let $x := 2 return $x + $x")
	require.NoError(t, err)
	require.Equal(t, 0, query.Slots())
	require.NotContains(t, Dump(query.Expr()), "let(")

	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"4"}, seq.Strings())
}

func TestLoopRestartIndependence(t *testing.T) {
	query, err := Build("for $x in 1 to 2 return for $y in 1 to 2 return $x * 10 + $y")
	require.NoError(t, err)

	it, err := query.Iterate(DefaultContext())
	require.NoError(t, err)
	first, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, int64(11), first.Value())

	// the clone runs on its own slot frame, so draining it leaves the
	// range variables of the original untouched
	fresh, err := it.Another()
	require.NoError(t, err)
	seq, err := Expand(fresh)
	require.NoError(t, err)
	require.Equal(t, []string{"11", "12", "21", "22"}, seq.Strings())

	for _, want := range []int64{12, 21, 22} {
		item, err := it.Next()
		require.NoError(t, err)
		require.NotNil(t, item)
		require.Equal(t, want, item.Value())
	}
	last, err := it.Next()
	require.NoError(t, err)
	require.Nil(t, last)
}

func TestLetWithoutReferenceFolds(t *testing.T) {
	query, err := Build("let $x := 5 return 42")
	require.NoError(t, err)
	require.Equal(t, "literal([42])\n", Dump(query.Expr()))
}
