package xpath

import (
	"fmt"
	"sync/atomic"

	"github.com/midbel/xee/xml"
)

// bindReferences attaches every still-unbound reference to the given
// name. Constructors run bottom-up, so references shadowed by an inner
// declaration are already bound when the outer constructor walks the
// tree, and the nil check skips them.
func bindReferences(e Expression, b Binding) {
	if v, ok := e.(*varRef); ok {
		if v.binding == nil && v.name.Equal(b.Name()) {
			v.binding = b
		}
		return
	}
	for _, c := range e.children() {
		bindReferences(c, b)
	}
}

type letExpr struct {
	base
	localBinding
	declare Expression
	action  Expression
}

// NewLet declares a variable and the expression it scopes over in one
// step. There is no way to obtain the binding without also supplying
// the action, so a declaration can never float free of its scope.
func NewLet(name xml.QName, declare, action Expression) Expression {
	let := &letExpr{
		localBinding: declareLocal(name),
		declare:      declare,
		action:       action,
	}
	bindReferences(let.action, let)
	return let
}

var hoistCount atomic.Int64

// hoistedLet builds a let for an expression lifted out of a loop. The
// generated name cannot clash with user variables: a leading digit is
// not a valid name start.
func hoistedLet(e Expression) *letExpr {
	name := xml.QName{
		Name: fmt.Sprintf("0hoist-%d", hoistCount.Add(1)),
	}
	return &letExpr{
		localBinding: declareLocal(name),
		declare:      e,
	}
}

func (e *letExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if !referencesAny(e.action, []Binding{e}) {
		if e.declare.Dependencies()&DependsCreative == 0 {
			return e.action, nil
		}
	}
	return e, nil
}

func (e *letExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *letExpr) Promote(offer *Offer) (Expression, error) {
	if inlinable(e.declare) {
		sub := Offer{Action: OfferInlineVariable, bindings: []Binding{e}}
		action, err := e.action.Promote(&sub)
		if err != nil {
			return nil, err
		}
		e.action = action
		// references under a nested loop stay out of reach, in which
		// case the binding survives
		if !referencesAny(e.action, []Binding{e}) {
			return e.action.Promote(offer)
		}
	}
	return promoteDefault(e, offer)
}

func (e *letExpr) Replace(curr, next Expression) bool {
	switch curr {
	case e.declare:
		e.declare = next
	case e.action:
		e.action = next
	default:
		return false
	}
	return true
}

func (e *letExpr) ItemType() ItemType {
	return e.action.ItemType()
}

func (e *letExpr) Cardinality() Occurrence {
	return e.action.Cardinality()
}

func (e *letExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *letExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	seq, err := EvalSequence(e.declare, ctx)
	if err != nil {
		return nil, err
	}
	e.assign(ctx, seq)
	return e.action.Iterate(ctx)
}

func (e *letExpr) children() []Expression {
	return []Expression{e.declare, e.action}
}

type forExpr struct {
	base
	localBinding
	declare Expression
	action  Expression
}

func NewFor(name xml.QName, declare, action Expression) Expression {
	loop := &forExpr{
		localBinding: declareLocal(name),
		declare:      declare,
		action:       action,
	}
	bindReferences(loop.action, loop)
	return loop
}

func (e *forExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if c, ok := e.declare.(*literal); ok && c.seq.Empty() {
		return createLiteral(nil), nil
	}
	return e, nil
}

func (e *forExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *forExpr) Promote(offer *Offer) (Expression, error) {
	if next, ok := offer.accept(e); ok {
		return next, nil
	}
	next, err := e.declare.Promote(offer)
	if err != nil {
		return nil, err
	}
	e.declare = next

	sub := offer.forBinding(e)
	next, err = e.action.Promote(sub)
	if err != nil {
		return nil, err
	}
	e.action = next
	return sub.wrap(e), nil
}

func (e *forExpr) Replace(curr, next Expression) bool {
	switch curr {
	case e.declare:
		e.declare = next
	case e.action:
		e.action = next
	default:
		return false
	}
	return true
}

func (e *forExpr) ItemType() ItemType {
	return e.action.ItemType()
}

func (e *forExpr) Cardinality() Occurrence {
	return ZeroOrMore
}

func (e *forExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *forExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	source, err := e.declare.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	return newLoopIterator(source, ctx, e.step, nil), nil
}

func (e *forExpr) step(ctx *DynamicContext, item Item, _ int) (Iterator, error) {
	e.assign(ctx, Singleton(item))
	return e.action.Iterate(ctx)
}

func (e *forExpr) children() []Expression {
	return []Expression{e.declare, e.action}
}

type quantifiedExpr struct {
	base
	localBinding
	every   bool
	declare Expression
	action  Expression
}

// NewQuantified builds a some/every expression. The every flag selects
// universal quantification.
func NewQuantified(name xml.QName, every bool, declare, action Expression) Expression {
	q := &quantifiedExpr{
		localBinding: declareLocal(name),
		every:        every,
		declare:      declare,
		action:       action,
	}
	bindReferences(q.action, q)
	return q
}

func (e *quantifiedExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if c, ok := e.declare.(*literal); ok && c.seq.Empty() {
		return NewLiteral(e.every), nil
	}
	return e, nil
}

func (e *quantifiedExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *quantifiedExpr) Promote(offer *Offer) (Expression, error) {
	if next, ok := offer.accept(e); ok {
		return next, nil
	}
	next, err := e.declare.Promote(offer)
	if err != nil {
		return nil, err
	}
	e.declare = next

	sub := offer.forBinding(e)
	next, err = e.action.Promote(sub)
	if err != nil {
		return nil, err
	}
	e.action = next
	return sub.wrap(e), nil
}

func (e *quantifiedExpr) Replace(curr, next Expression) bool {
	switch curr {
	case e.declare:
		e.declare = next
	case e.action:
		e.action = next
	default:
		return false
	}
	return true
}

func (e *quantifiedExpr) ItemType() ItemType {
	return TypeBoolean
}

func (e *quantifiedExpr) Cardinality() Occurrence {
	return One
}

func (e *quantifiedExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *quantifiedExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	source, err := e.declare.Iterate(ctx)
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
		e.assign(ctx, Singleton(item))
		res, err := EvalSequence(e.action, ctx)
		if err != nil {
			return nil, err
		}
		if EffectiveBooleanValue(res) != e.every {
			return SingleIterator(NewBoolean(!e.every)), nil
		}
	}
	return SingleIterator(NewBoolean(e.every)), nil
}

func (e *quantifiedExpr) children() []Expression {
	return []Expression{e.declare, e.action}
}

type iterateExpr struct {
	base
	localBinding
	declare Expression
	action  Expression
	signal  *ExitSignal
}

// NewIterate builds a loop whose body may request an early exit
// through the returned signal. The signal is created here and handed
// to whatever break expressions the body contains: only this loop can
// be exited by them.
func NewIterate(name xml.QName, declare, action Expression, signal *ExitSignal) Expression {
	loop := &iterateExpr{
		localBinding: declareLocal(name),
		declare:      declare,
		action:       action,
		signal:       signal,
	}
	bindReferences(loop.action, loop)
	return loop
}

func (e *iterateExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *iterateExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *iterateExpr) Promote(offer *Offer) (Expression, error) {
	if next, ok := offer.accept(e); ok {
		return next, nil
	}
	next, err := e.declare.Promote(offer)
	if err != nil {
		return nil, err
	}
	e.declare = next

	sub := offer.forBinding(e)
	next, err = e.action.Promote(sub)
	if err != nil {
		return nil, err
	}
	e.action = next
	return sub.wrap(e), nil
}

func (e *iterateExpr) Replace(curr, next Expression) bool {
	switch curr {
	case e.declare:
		e.declare = next
	case e.action:
		e.action = next
	default:
		return false
	}
	return true
}

func (e *iterateExpr) ItemType() ItemType {
	return e.action.ItemType()
}

func (e *iterateExpr) Cardinality() Occurrence {
	return ZeroOrMore
}

func (e *iterateExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *iterateExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	source, err := e.declare.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	return newLoopIterator(source, ctx, e.step, e.signal), nil
}

func (e *iterateExpr) step(ctx *DynamicContext, item Item, _ int) (Iterator, error) {
	e.assign(ctx, Singleton(item))
	return e.action.Iterate(ctx)
}

func (e *iterateExpr) children() []Expression {
	return []Expression{e.declare, e.action}
}

type stepFunc func(ctx *DynamicContext, item Item, pos int) (Iterator, error)

// loopIterator pulls items from a source and flattens the iterators
// produced by evaluating the body once per item. When a signal is set,
// it is consulted after each body finishes: the items of the step that
// raised it are all delivered before the loop stops. Each iterator
// owns its context so that a clone runs on its own slot frame.
type loopIterator struct {
	source Iterator
	ctx    *DynamicContext
	step   stepFunc
	signal *ExitSignal

	inner Iterator
	curr  Item
	pos   int
	done  bool
}

func newLoopIterator(source Iterator, ctx *DynamicContext, step stepFunc, signal *ExitSignal) Iterator {
	return &loopIterator{
		source: source,
		ctx:    ctx,
		step:   step,
		signal: signal,
	}
}

func (i *loopIterator) Next() (Item, error) {
	for !i.done {
		if i.inner == nil {
			item, err := i.source.Next()
			if err != nil {
				return nil, err
			}
			if item == nil {
				i.done = true
				break
			}
			inner, err := i.step(i.ctx, item, i.source.Position())
			if err != nil {
				return nil, err
			}
			i.inner = inner
		}
		item, err := i.inner.Next()
		if err != nil {
			return nil, err
		}
		if item != nil {
			i.curr = item
			i.pos++
			return item, nil
		}
		i.inner = nil
		if i.signal.Requested() {
			i.signal.Clear()
			i.done = true
		}
	}
	return nil, nil
}

func (i *loopIterator) Current() Item {
	return i.curr
}

func (i *loopIterator) Position() int {
	return i.pos
}

func (i *loopIterator) Another() (Iterator, error) {
	source, err := i.source.Another()
	if err != nil {
		return nil, err
	}
	return newLoopIterator(source, i.ctx.Fork(), i.step, i.signal), nil
}
