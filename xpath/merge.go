package xpath

import (
	"slices"

	"github.com/midbel/xee/xml"
)

type setExpr struct {
	base
	op    rune
	left  Expression
	right Expression
	order NodeComparer
}

// NewSet builds a union, intersect or except expression over node
// sequences. Both operands are brought into the comparer's order
// before the merge; the result is ordered and duplicate free.
func NewSet(op rune, left, right Expression) Expression {
	return &setExpr{
		op:    op,
		left:  left,
		right: right,
		order: DocumentOrder,
	}
}

func (e *setExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if c, ok := e.right.(*literal); ok && c.seq.Empty() {
		switch e.op {
		case opIntersect:
			return createLiteral(nil), nil
		case opExcept, opUnion:
			// still sorts and checks the left side
		}
	}
	return e, nil
}

func (e *setExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	if t, ok := e.left.ItemType().(*AtomicType); ok {
		return nil, attach(staticErrorf(CodeStaticType, "%s: operand of a set operation cannot be atomic", t), e.left.Location())
	}
	if t, ok := e.right.ItemType().(*AtomicType); ok {
		return nil, attach(staticErrorf(CodeStaticType, "%s: operand of a set operation cannot be atomic", t), e.right.Location())
	}
	return e, nil
}

func (e *setExpr) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *setExpr) Replace(curr, next Expression) bool {
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

func (e *setExpr) ItemType() ItemType {
	return TypeAnyNode
}

func (e *setExpr) Cardinality() Occurrence {
	return ZeroOrMore
}

func (e *setExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *setExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	left, err := e.nodes(e.left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.nodes(e.right, ctx)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case opUnion:
		return mergeUnion(left, right, e.order), nil
	case opIntersect:
		return mergeIntersect(left, right, e.order), nil
	case opExcept:
		return mergeExcept(left, right, e.order), nil
	default:
		return nil, ErrImplemented
	}
}

// nodes materializes one operand as a sorted, duplicate-free slice of
// nodes. An atomic item in the input is a type error.
func (e *setExpr) nodes(expr Expression, ctx *DynamicContext) ([]xml.Node, error) {
	seq, err := EvalSequence(expr, ctx)
	if err != nil {
		return nil, err
	}
	list := make([]xml.Node, 0, seq.Len())
	for i := range seq {
		if seq[i].Atomic() {
			return nil, attach(dynamicErrorf(CodeType, "%s: set operand contains an atomic value",
				itemString(seq[i])), expr.Location())
		}
		list = append(list, seq[i].Node())
	}
	slices.SortStableFunc(list, e.order.Compare)
	list = slices.CompactFunc(list, func(a, b xml.Node) bool {
		return e.order.Compare(a, b) == 0
	})
	return list, nil
}

func (e *setExpr) children() []Expression {
	return []Expression{e.left, e.right}
}

// mergeIterator walks two sorted node lists in lockstep. The sign of
// the comparison between both cursors decides which side advances and
// whether the candidate is part of the result, according to op.
type mergeIterator struct {
	left  []xml.Node
	right []xml.Node
	cmp   NodeComparer
	op    rune

	i, j int
	curr Item
	pos  int
}

func (m *mergeIterator) Next() (Item, error) {
	for {
		var (
			node xml.Node
			ok   bool
		)
		switch {
		case m.i >= len(m.left) && m.j >= len(m.right):
			return nil, nil
		case m.i >= len(m.left):
			node, ok = m.keep(1)
		case m.j >= len(m.right):
			node, ok = m.keep(-1)
		default:
			node, ok = m.keep(m.cmp.Compare(m.left[m.i], m.right[m.j]))
		}
		if ok {
			item := NewNode(node)
			m.curr = item
			m.pos++
			return item, nil
		}
	}
}

func (m *mergeIterator) keep(sign int) (xml.Node, bool) {
	switch m.op {
	case opUnion:
		switch {
		case sign < 0:
			node := m.left[m.i]
			m.i++
			return node, true
		case sign > 0:
			node := m.right[m.j]
			m.j++
			return node, true
		default:
			node := m.left[m.i]
			m.i++
			m.j++
			return node, true
		}
	case opIntersect:
		switch {
		case sign < 0:
			m.i++
			return nil, false
		case sign > 0:
			m.j++
			return nil, false
		default:
			node := m.left[m.i]
			m.i++
			m.j++
			return node, true
		}
	default:
		switch {
		case sign < 0:
			node := m.left[m.i]
			m.i++
			return node, true
		case sign > 0:
			m.j++
			return nil, false
		default:
			m.i++
			m.j++
			return nil, false
		}
	}
}

func (m *mergeIterator) Current() Item {
	return m.curr
}

func (m *mergeIterator) Position() int {
	return m.pos
}

func (m *mergeIterator) Another() (Iterator, error) {
	return &mergeIterator{
		left:  m.left,
		right: m.right,
		cmp:   m.cmp,
		op:    m.op,
	}, nil
}

func mergeUnion(left, right []xml.Node, cmp NodeComparer) Iterator {
	return &mergeIterator{
		left:  left,
		right: right,
		cmp:   cmp,
		op:    opUnion,
	}
}

func mergeIntersect(left, right []xml.Node, cmp NodeComparer) Iterator {
	return &mergeIterator{
		left:  left,
		right: right,
		cmp:   cmp,
		op:    opIntersect,
	}
}

// mergeExcept keeps the nodes of the left side that have no identical
// node on the right. Identity is positional: two nodes are the same
// only when the comparer says so.
func mergeExcept(left, right []xml.Node, cmp NodeComparer) Iterator {
	return &mergeIterator{
		left:  left,
		right: right,
		cmp:   cmp,
		op:    opExcept,
	}
}
