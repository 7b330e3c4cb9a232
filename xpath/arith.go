package xpath

import (
	"math"

	"github.com/cockroachdb/apd/v2"
)

// numeric ranks order the tower used to pick the result type of an
// arithmetic operation: integer < decimal < float < double.
const (
	rankInteger = iota
	rankDecimal
	rankFloat
	rankDouble
)

func numericRank(item Item) (int, error) {
	switch item.Value().(type) {
	case int64:
		return rankInteger, nil
	case *apd.Decimal:
		return rankDecimal, nil
	case float32:
		return rankFloat, nil
	case float64:
		return rankDouble, nil
	default:
		return 0, dynamicErrorf(CodeType, "%s: not a number", itemString(item))
	}
}

func asDecimal(item Item) *apd.Decimal {
	switch v := item.Value().(type) {
	case *apd.Decimal:
		return v
	case int64:
		return apd.New(v, 0)
	default:
		d, _ := toDecimal(v)
		return d
	}
}

func asFloat(item Item) float64 {
	switch v := item.Value().(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case *apd.Decimal:
		f, _ := v.Float64()
		return f
	default:
		return math.NaN()
	}
}

type arithmetic struct {
	base
	op    rune
	left  Expression
	right Expression
}

func NewArithmetic(op rune, left, right Expression) Expression {
	return &arithmetic{
		op:    op,
		left:  left,
		right: right,
	}
}

func (e *arithmetic) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	left, ok1 := e.left.(*literal)
	right, ok2 := e.right.(*literal)
	if !ok1 || !ok2 {
		return e, nil
	}
	if left.seq.Len() != 1 || right.seq.Len() != 1 {
		return e, nil
	}
	item, err := e.apply(left.seq.First(), right.seq.First())
	if err != nil {
		// let evaluation report it with the runtime context
		return e, nil
	}
	return createLiteral(Singleton(item)), nil
}

func (e *arithmetic) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	e.left = insertConverter(e.left, TypeDouble)
	e.right = insertConverter(e.right, TypeDouble)
	e.left, e.right = promotePair(e.left, e.right)
	return e, nil
}

// promotePair widens one operand statically when the other is already
// known to be of a wider numeric type. Operands whose types are only
// known at run time go through the dynamic tower instead.
func promotePair(left, right Expression) (Expression, Expression) {
	lt, ok1 := left.ItemType().(*AtomicType)
	rt, ok2 := right.ItemType().(*AtomicType)
	if !ok1 || !ok2 || !lt.Numeric() || !rt.Numeric() || lt == rt {
		return left, right
	}
	for _, wider := range []*AtomicType{TypeDouble, TypeFloat} {
		if lt == wider {
			return left, insertPromoter(right, wider)
		}
		if rt == wider {
			return insertPromoter(left, wider), right
		}
	}
	return left, right
}

func (e *arithmetic) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *arithmetic) Replace(curr, next Expression) bool {
	switch curr {
	case e.left:
		e.left = next
	case e.right:
		e.right = next
	default:
		return false
	}
	return true
}

func (e *arithmetic) ItemType() ItemType {
	lt, ok1 := e.left.ItemType().(*AtomicType)
	rt, ok2 := e.right.ItemType().(*AtomicType)
	if ok1 && ok2 && lt == rt && lt.Numeric() {
		if lt == TypeInteger && e.op == opDiv {
			return TypeDecimal
		}
		return lt
	}
	return TypeAnyAtomic
}

func (e *arithmetic) Cardinality() Occurrence {
	return ZeroOrOne
}

func (e *arithmetic) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *arithmetic) Iterate(ctx *DynamicContext) (Iterator, error) {
	left, err := EvalItem(e.left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := EvalItem(e.right, ctx)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return EmptyIterator(), nil
	}
	item, err := e.apply(left, right)
	if err != nil {
		return nil, attach(err, e.pos)
	}
	return SingleIterator(item), nil
}

func (e *arithmetic) apply(left, right Item) (Item, error) {
	left, right = atomize(left), atomize(right)
	lr, err := numericRank(left)
	if err != nil {
		return nil, err
	}
	rr, err := numericRank(right)
	if err != nil {
		return nil, err
	}
	rank := max(lr, rr)
	if e.op == opIdiv {
		return e.applyIdiv(left, right, rank)
	}
	switch rank {
	case rankInteger:
		return e.applyInt(left.Value().(int64), right.Value().(int64))
	case rankDecimal:
		return e.applyDecimal(asDecimal(left), asDecimal(right))
	case rankFloat:
		item, err := e.applyDouble(asFloat(left), asFloat(right))
		if err != nil {
			return nil, err
		}
		return NewFloat(float32(item.Value().(float64))), nil
	default:
		return e.applyDouble(asFloat(left), asFloat(right))
	}
}

func (e *arithmetic) applyInt(left, right int64) (Item, error) {
	switch e.op {
	case opAdd:
		return NewInteger(left + right), nil
	case opSub:
		return NewInteger(left - right), nil
	case opMul:
		return NewInteger(left * right), nil
	case opDiv:
		// integer division yields a decimal
		if right == 0 {
			return nil, dynamicError(CodeDivZero, ErrZero.Error())
		}
		return e.applyDecimal(apd.New(left, 0), apd.New(right, 0))
	case opMod:
		if right == 0 {
			return nil, dynamicError(CodeDivZero, ErrZero.Error())
		}
		return NewInteger(left % right), nil
	default:
		return nil, ErrImplemented
	}
}

func (e *arithmetic) applyDecimal(left, right *apd.Decimal) (Item, error) {
	var (
		res apd.Decimal
		err error
	)
	switch e.op {
	case opAdd:
		_, err = decimalContext.Add(&res, left, right)
	case opSub:
		_, err = decimalContext.Sub(&res, left, right)
	case opMul:
		_, err = decimalContext.Mul(&res, left, right)
	case opDiv:
		if right.Sign() == 0 {
			return nil, dynamicError(CodeDivZero, ErrZero.Error())
		}
		_, err = decimalContext.Quo(&res, left, right)
	case opMod:
		if right.Sign() == 0 {
			return nil, dynamicError(CodeDivZero, ErrZero.Error())
		}
		_, err = decimalContext.Rem(&res, left, right)
	default:
		return nil, ErrImplemented
	}
	if err != nil {
		return nil, dynamicErrorf(CodeType, "decimal operation failed: %s", err)
	}
	return NewDecimal(&res), nil
}

func (e *arithmetic) applyDouble(left, right float64) (Item, error) {
	switch e.op {
	case opAdd:
		return NewDouble(left + right), nil
	case opSub:
		return NewDouble(left - right), nil
	case opMul:
		return NewDouble(left * right), nil
	case opDiv:
		// IEEE semantics, infinities and NaN included
		return NewDouble(left / right), nil
	case opMod:
		return NewDouble(math.Mod(left, right)), nil
	default:
		return nil, ErrImplemented
	}
}

func (e *arithmetic) applyIdiv(left, right Item, rank int) (Item, error) {
	if rank == rankInteger {
		y := right.Value().(int64)
		if y == 0 {
			return nil, dynamicError(CodeDivZero, ErrZero.Error())
		}
		return NewInteger(left.Value().(int64) / y), nil
	}
	x, y := asFloat(left), asFloat(right)
	if y == 0 || math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) {
		return nil, dynamicError(CodeDivZero, ErrZero.Error())
	}
	return NewInteger(int64(x / y)), nil
}

func (e *arithmetic) children() []Expression {
	return []Expression{e.left, e.right}
}

type negate struct {
	base
	expr Expression
}

func NewNegate(expr Expression) Expression {
	return &negate{
		expr: expr,
	}
}

func (e *negate) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if c, ok := e.expr.(*literal); ok && c.seq.Len() == 1 {
		if item, err := negateItem(c.seq.First()); err == nil {
			return createLiteral(Singleton(item)), nil
		}
	}
	return e, nil
}

func (e *negate) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	e.expr = insertConverter(e.expr, TypeDouble)
	return e, nil
}

func (e *negate) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *negate) Replace(curr, next Expression) bool {
	if curr != e.expr {
		return false
	}
	e.expr = next
	return true
}

func (e *negate) ItemType() ItemType {
	return e.expr.ItemType()
}

func (e *negate) Cardinality() Occurrence {
	return ZeroOrOne
}

func (e *negate) Dependencies() Dependency {
	return e.expr.Dependencies()
}

func (e *negate) Iterate(ctx *DynamicContext) (Iterator, error) {
	item, err := EvalItem(e.expr, ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return EmptyIterator(), nil
	}
	item, err = negateItem(atomize(item))
	if err != nil {
		return nil, attach(err, e.pos)
	}
	return SingleIterator(item), nil
}

func negateItem(item Item) (Item, error) {
	switch v := item.Value().(type) {
	case int64:
		return NewInteger(-v), nil
	case float64:
		return NewDouble(-v), nil
	case float32:
		return NewFloat(-v), nil
	case *apd.Decimal:
		var res apd.Decimal
		res.Neg(v)
		return NewDecimal(&res), nil
	default:
		return nil, dynamicErrorf(CodeType, "%s: not a number", itemString(item))
	}
}

func (e *negate) children() []Expression {
	return []Expression{e.expr}
}
