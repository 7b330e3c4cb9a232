package xpath

import (
	"time"

	"github.com/cockroachdb/apd/v2"
	"github.com/midbel/xee/xml"
)

// satisfies maps the sign of a comparison onto the relation named by
// the operator token.
func satisfies(op rune, sign int) bool {
	switch op {
	case opValEq, opEq:
		return sign == 0
	case opValNe, opNe:
		return sign != 0
	case opValLt, opLt:
		return sign < 0
	case opValLe, opLe:
		return sign <= 0
	case opValGt, opGt:
		return sign > 0
	case opValGe, opGe:
		return sign >= 0
	default:
		return false
	}
}

// compareItems orders two atomic items of compatible types. Strings go
// through the collation; mixing incompatible kinds is a type error.
func compareItems(left, right Item, coll Collator) (int, error) {
	switch lv := left.Value().(type) {
	case string:
		rv, ok := right.Value().(string)
		if !ok {
			return 0, compareError(left, right)
		}
		return coll.Compare(lv, rv), nil
	case bool:
		rv, ok := right.Value().(bool)
		if !ok {
			return 0, compareError(left, right)
		}
		switch {
		case lv == rv:
			return 0, nil
		case rv:
			return -1, nil
		default:
			return 1, nil
		}
	case int64, float32, float64, *apd.Decimal:
		return compareNumbers(left, right)
	default:
		return compareTimes(left, right)
	}
}

func compareError(left, right Item) error {
	return dynamicErrorf(CodeType, "%s and %s can not be compared",
		left.Type(), right.Type())
}

func compareNumbers(left, right Item) (int, error) {
	lr, err := numericRank(left)
	if err != nil {
		return 0, compareError(left, right)
	}
	rr, err := numericRank(right)
	if err != nil {
		return 0, compareError(left, right)
	}
	if max(lr, rr) <= rankDecimal {
		return asDecimal(left).Cmp(asDecimal(right)), nil
	}
	x, y := asFloat(left), asFloat(right)
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

func compareTimes(left, right Item) (int, error) {
	lv, ok1 := left.Value().(time.Time)
	rv, ok2 := right.Value().(time.Time)
	if !ok1 || !ok2 {
		return 0, compareError(left, right)
	}
	return lv.Compare(rv), nil
}

// comparison covers both the value form (eq, lt, ...) limited to
// singletons and the general form (=, <, ...) quantified over both
// sequences. The operator token says which form it is.
type comparison struct {
	base
	op        rune
	left      Expression
	right     Expression
	collation Collator
}

func NewComparison(op rune, left, right Expression) Expression {
	return &comparison{
		op:    op,
		left:  left,
		right: right,
	}
}

func (e *comparison) general() bool {
	switch e.op {
	case opEq, opNe, opLt, opLe, opGt, opGe:
		return true
	default:
		return false
	}
}

func (e *comparison) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *comparison) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	if e.collation == nil {
		e.collation = env.Collations.Default()
	}
	if !e.general() {
		// the value form treats untyped operands as strings
		e.left = insertConverter(e.left, TypeString)
		e.right = insertConverter(e.right, TypeString)
	}
	return e, nil
}

func (e *comparison) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *comparison) Replace(curr, next Expression) bool {
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

func (e *comparison) ItemType() ItemType {
	return TypeBoolean
}

func (e *comparison) Cardinality() Occurrence {
	if e.general() {
		return One
	}
	return ZeroOrOne
}

func (e *comparison) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *comparison) Iterate(ctx *DynamicContext) (Iterator, error) {
	if e.general() {
		return e.iterateGeneral(ctx)
	}
	return e.iterateValue(ctx)
}

func (e *comparison) iterateValue(ctx *DynamicContext) (Iterator, error) {
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
	sign, err := compareItems(atomize(left), atomize(right), e.collation)
	if err != nil {
		return nil, attach(err, e.pos)
	}
	return SingleIterator(NewBoolean(satisfies(e.op, sign))), nil
}

// iterateGeneral is true when any pair of items from the two operands
// satisfies the relation. The right side is materialized once and the
// left side is streamed against it.
func (e *comparison) iterateGeneral(ctx *DynamicContext) (Iterator, error) {
	right, err := EvalSequence(e.right, ctx)
	if err != nil {
		return nil, err
	}
	source, err := e.left.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	for {
		item, err := source.Next()
		if err != nil {
			return nil, err
		}
		if item == nil {
			break
		}
		for j := range right {
			ok, err := e.pair(atomize(item), atomize(right[j]))
			if err != nil {
				return nil, attach(err, e.pos)
			}
			if ok {
				return SingleIterator(NewBoolean(true)), nil
			}
		}
	}
	return SingleIterator(NewBoolean(false)), nil
}

// pair compares one item from each side, converting an untyped member
// to the type of its partner first.
func (e *comparison) pair(left, right Item) (bool, error) {
	var err error
	switch {
	case isUntyped(left) && isUntyped(right):
		left, err = CastItem(left, TypeString)
		if err == nil {
			right, err = CastItem(right, TypeString)
		}
	case isUntyped(left):
		left, err = CastItem(left, partnerType(right))
	case isUntyped(right):
		right, err = CastItem(right, partnerType(left))
	}
	if err != nil {
		return false, err
	}
	sign, err := compareItems(left, right, e.collation)
	if err != nil {
		return false, err
	}
	return satisfies(e.op, sign), nil
}

func partnerType(item Item) *AtomicType {
	if t, ok := item.Type().(*AtomicType); ok && t.Numeric() {
		return TypeDouble
	}
	return TypeString
}

func (e *comparison) children() []Expression {
	return []Expression{e.left, e.right}
}

type logical struct {
	base
	op    rune
	left  Expression
	right Expression
}

func NewLogical(op rune, left, right Expression) Expression {
	return &logical{
		op:    op,
		left:  left,
		right: right,
	}
}

func (e *logical) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if c, ok := e.left.(*literal); ok {
		ebv := EffectiveBooleanValue(c.seq)
		if e.op == opAnd && !ebv {
			return NewLiteral(false), nil
		}
		if e.op == opOr && ebv {
			return NewLiteral(true), nil
		}
	}
	return e, nil
}

func (e *logical) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *logical) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *logical) Replace(curr, next Expression) bool {
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

func (e *logical) ItemType() ItemType {
	return TypeBoolean
}

func (e *logical) Cardinality() Occurrence {
	return One
}

func (e *logical) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *logical) Iterate(ctx *DynamicContext) (Iterator, error) {
	left, err := EvalSequence(e.left, ctx)
	if err != nil {
		return nil, err
	}
	ebv := EffectiveBooleanValue(left)
	if e.op == opAnd && !ebv {
		return SingleIterator(NewBoolean(false)), nil
	}
	if e.op == opOr && ebv {
		return SingleIterator(NewBoolean(true)), nil
	}
	right, err := EvalSequence(e.right, ctx)
	if err != nil {
		return nil, err
	}
	return SingleIterator(NewBoolean(EffectiveBooleanValue(right))), nil
}

func (e *logical) children() []Expression {
	return []Expression{e.left, e.right}
}

type identityExpr struct {
	base
	left  Expression
	right Expression
}

// NewIdentity builds the node identity test. Identity follows the
// position of the node in its tree, not its content.
func NewIdentity(left, right Expression) Expression {
	return &identityExpr{
		left:  left,
		right: right,
	}
}

func (e *identityExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *identityExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *identityExpr) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *identityExpr) Replace(curr, next Expression) bool {
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

func (e *identityExpr) ItemType() ItemType {
	return TypeBoolean
}

func (e *identityExpr) Cardinality() Occurrence {
	return ZeroOrOne
}

func (e *identityExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *identityExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	left, err := e.operand(e.left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.operand(e.right, ctx)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return EmptyIterator(), nil
	}
	return SingleIterator(NewBoolean(xml.IsSame(left, right))), nil
}

func (e *identityExpr) operand(expr Expression, ctx *DynamicContext) (xml.Node, error) {
	item, err := EvalItem(expr, ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if item.Atomic() {
		return nil, attach(dynamicErrorf(CodeType, "%s: operand of an identity test must be a node",
			itemString(item)), expr.Location())
	}
	return item.Node(), nil
}

func (e *identityExpr) children() []Expression {
	return []Expression{e.left, e.right}
}

type castExpr struct {
	base
	expr       Expression
	target     *AtomicType
	allowEmpty bool
}

func NewCast(expr Expression, target *AtomicType, allowEmpty bool) Expression {
	return &castExpr{
		expr:       expr,
		target:     target,
		allowEmpty: allowEmpty,
	}
}

func (e *castExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if c, ok := e.expr.(*literal); ok && c.seq.Len() == 1 {
		if item, err := CastItem(c.seq.First(), e.target); err == nil {
			return createLiteral(Singleton(item)), nil
		}
	}
	return e, nil
}

func (e *castExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *castExpr) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *castExpr) Replace(curr, next Expression) bool {
	if curr != e.expr {
		return false
	}
	e.expr = next
	return true
}

func (e *castExpr) ItemType() ItemType {
	return e.target
}

func (e *castExpr) Cardinality() Occurrence {
	if e.allowEmpty {
		return ZeroOrOne
	}
	return One
}

func (e *castExpr) Dependencies() Dependency {
	return e.expr.Dependencies()
}

func (e *castExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	item, err := EvalItem(e.expr, ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		if e.allowEmpty {
			return EmptyIterator(), nil
		}
		return nil, attach(dynamicErrorf(CodeType, "cast to %s: empty sequence not allowed", e.target), e.pos)
	}
	item, err = CastItem(item, e.target)
	if err != nil {
		return nil, attach(err, e.pos)
	}
	return SingleIterator(item), nil
}

func (e *castExpr) children() []Expression {
	return []Expression{e.expr}
}

type castableExpr struct {
	base
	expr       Expression
	target     *AtomicType
	allowEmpty bool
}

func NewCastable(expr Expression, target *AtomicType, allowEmpty bool) Expression {
	return &castableExpr{
		expr:       expr,
		target:     target,
		allowEmpty: allowEmpty,
	}
}

func (e *castableExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *castableExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *castableExpr) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *castableExpr) Replace(curr, next Expression) bool {
	if curr != e.expr {
		return false
	}
	e.expr = next
	return true
}

func (e *castableExpr) ItemType() ItemType {
	return TypeBoolean
}

func (e *castableExpr) Cardinality() Occurrence {
	return One
}

func (e *castableExpr) Dependencies() Dependency {
	return e.expr.Dependencies()
}

func (e *castableExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	item, err := EvalItem(e.expr, ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return SingleIterator(NewBoolean(e.allowEmpty)), nil
	}
	_, err = CastItem(item, e.target)
	return SingleIterator(NewBoolean(err == nil)), nil
}

func (e *castableExpr) children() []Expression {
	return []Expression{e.expr}
}
