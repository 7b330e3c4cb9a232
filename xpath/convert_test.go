package xpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertUntypedSequence(t *testing.T) {
	var seq Sequence
	seq.Append(NewUntyped("3.5"))
	seq.Append(NewInteger(2))

	expr := convertUntyped(createLiteral(seq), TypeDouble)
	got, err := EvalSequence(expr, DefaultContext())
	require.NoError(t, err)

	require.Equal(t, []any{3.5, int64(2)}, got.Values())
	require.Equal(t, TypeDouble, got[0].Type())
	// the typed item went through untouched
	require.Equal(t, TypeInteger, got[1].Type())
}

func TestConvertUntypedFailure(t *testing.T) {
	expr := convertUntyped(createLiteral(Singleton(NewUntyped("abc"))), TypeDouble)
	it, err := expr.Iterate(DefaultContext())
	require.NoError(t, err)
	_, err = it.Next()
	require.Error(t, err)
}

func TestConverterElision(t *testing.T) {
	// typed operand: the analysis removes the converter again
	inner := NewLiteral(int64(1))
	expr := convertUntyped(inner, TypeDouble)
	next, err := expr.TypeCheck(DefaultStaticContext())
	require.NoError(t, err)
	require.Same(t, inner, next)

	// untyped still possible: the converter stays
	expr = convertUntyped(NewContextItem(), TypeDouble)
	next, err = expr.TypeCheck(DefaultStaticContext())
	require.NoError(t, err)
	require.Same(t, expr, next)
}

func TestConverterInsertion(t *testing.T) {
	query, err := Build(". + 1")
	require.NoError(t, err)
	require.Contains(t, Dump(query.Expr()), "convert-untyped(xs:double)")

	// string comparison has no untyped operands, nothing to insert
	query, err = Build("'a' lt 'b'")
	require.NoError(t, err)
	require.NotContains(t, Dump(query.Expr()), "convert-untyped")
}

func TestConverterConstantOperand(t *testing.T) {
	// a constant untyped operand is converted during analysis, not at
	// evaluation time
	inner := createLiteral(Singleton(NewUntyped("4.5")))
	expr := insertConverter(inner, TypeDouble)
	c, ok := expr.(*literal)
	require.True(t, ok)
	require.Equal(t, []any{4.5}, c.seq.Values())
}

func TestNumericPromotion(t *testing.T) {
	var seq Sequence
	seq.Append(NewFloat(1.5))
	seq.Append(NewInteger(2))
	seq.Append(NewUntyped("3.5"))

	expr := promoteNumeric(createLiteral(seq), TypeDouble)
	got, err := EvalSequence(expr, DefaultContext())
	require.NoError(t, err)
	require.Equal(t, []any{1.5, 2.0, 3.5}, got.Values())
	for i := range got {
		require.Equal(t, TypeDouble, got[i].Type())
	}
}

func TestNumericPromotionFailure(t *testing.T) {
	expr := promoteNumeric(createLiteral(Singleton(NewString("no"))), TypeDouble)
	it, err := expr.Iterate(DefaultContext())
	require.NoError(t, err)
	_, err = it.Next()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "XPTY0004"))
}

func TestPromoterElision(t *testing.T) {
	inner := NewLiteral(2.5)
	expr := promoteNumeric(inner, TypeDouble)
	next, err := expr.TypeCheck(DefaultStaticContext())
	require.NoError(t, err)
	require.Same(t, inner, next)
}

func TestConverterElidesOnRange(t *testing.T) {
	expr := convertUntyped(NewRange(NewLiteral(int64(1)), NewLiteral(int64(3))), TypeDouble)
	next, err := expr.TypeCheck(DefaultStaticContext())
	require.NoError(t, err)
	// integer range cannot hold untyped values
	require.NotSame(t, expr, next)
}
