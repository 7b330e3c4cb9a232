package xpath

// mappingIterator applies a one-to-one transform to the items of a
// source iterator. Cardinality is preserved, so the last-position
// capability of the source carries through.
type mappingIterator struct {
	source Iterator
	mapf   func(Item) (Item, error)
	curr   Item
}

func mapIterator(source Iterator, mapf func(Item) (Item, error)) Iterator {
	return &mappingIterator{
		source: source,
		mapf:   mapf,
	}
}

func (i *mappingIterator) Next() (Item, error) {
	item, err := i.source.Next()
	if err != nil || item == nil {
		return nil, err
	}
	item, err = i.mapf(item)
	if err != nil {
		return nil, err
	}
	i.curr = item
	return item, nil
}

func (i *mappingIterator) Current() Item {
	return i.curr
}

func (i *mappingIterator) Position() int {
	return i.source.Position()
}

func (i *mappingIterator) Another() (Iterator, error) {
	source, err := i.source.Another()
	if err != nil {
		return nil, err
	}
	return mapIterator(source, i.mapf), nil
}

func (i *mappingIterator) LastPosition() (int, error) {
	if f, ok := i.source.(LastPositionFinder); ok {
		return f.LastPosition()
	}
	fresh, err := i.source.Another()
	if err != nil {
		return 0, err
	}
	return Count(fresh)
}

// untypedConverter casts untyped items of its operand to the required
// type and leaves everything else alone. It is inserted around
// operands whose static type might include untyped atomics; when the
// static type rules it out the converter elides itself during
// analysis, and a constant operand is converted once on the spot.
type untypedConverter struct {
	base
	operand  Expression
	required *AtomicType
}

func convertUntyped(operand Expression, required *AtomicType) Expression {
	c := &untypedConverter{
		operand:  operand,
		required: required,
	}
	c.pos = operand.Location()
	return c
}

// insertConverter wraps the expression only when its static type still
// admits untyped values.
func insertConverter(e Expression, required *AtomicType) Expression {
	if !untypedPossible(e.ItemType()) {
		return e
	}
	if c, ok := e.(*literal); ok {
		if seq, err := convertSequence(c.seq, required); err == nil {
			return createLiteral(seq)
		}
		// conversion fails at evaluation time with a proper error
	}
	return convertUntyped(e, required)
}

func convertSequence(seq Sequence, required *AtomicType) (Sequence, error) {
	var out Sequence
	for i := range seq {
		item, err := convertItem(seq[i], required)
		if err != nil {
			return nil, err
		}
		out.Append(item)
	}
	return out, nil
}

func convertItem(item Item, required *AtomicType) (Item, error) {
	if !item.Atomic() {
		return CastItem(item, required)
	}
	if isUntyped(item) {
		return CastItem(item, required)
	}
	return item, nil
}

func (e *untypedConverter) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *untypedConverter) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	if !untypedPossible(e.operand.ItemType()) {
		return e.operand, nil
	}
	return e, nil
}

func (e *untypedConverter) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *untypedConverter) Replace(curr, next Expression) bool {
	if curr != e.operand {
		return false
	}
	e.operand = next
	return true
}

func (e *untypedConverter) ItemType() ItemType {
	if untypedPossible(e.operand.ItemType()) {
		return e.required
	}
	return e.operand.ItemType()
}

func (e *untypedConverter) Cardinality() Occurrence {
	return e.operand.Cardinality()
}

func (e *untypedConverter) Dependencies() Dependency {
	return e.operand.Dependencies()
}

func (e *untypedConverter) Iterate(ctx *DynamicContext) (Iterator, error) {
	source, err := e.operand.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	mapf := func(item Item) (Item, error) {
		next, err := convertItem(item, e.required)
		if err != nil {
			return nil, attach(err, e.pos)
		}
		return next, nil
	}
	return mapIterator(source, mapf), nil
}

func (e *untypedConverter) children() []Expression {
	return []Expression{e.operand}
}

// numericPromoter widens numeric items to the required type, float to
// double being the common case. Items already of the required type
// pass through untouched; a non-numeric item is a type error reported
// with the operand position.
type numericPromoter struct {
	base
	operand  Expression
	required *AtomicType
}

func promoteNumeric(operand Expression, required *AtomicType) Expression {
	p := &numericPromoter{
		operand:  operand,
		required: required,
	}
	p.pos = operand.Location()
	return p
}

func insertPromoter(e Expression, required *AtomicType) Expression {
	if t, ok := e.ItemType().(*AtomicType); ok {
		if t == required || t.Derives(required) {
			return e
		}
	}
	if c, ok := e.(*literal); ok {
		var out Sequence
		for i := range c.seq {
			item, err := promoteItem(c.seq[i], required)
			if err != nil {
				break
			}
			out.Append(item)
		}
		if out.Len() == c.seq.Len() {
			return createLiteral(out)
		}
	}
	return promoteNumeric(e, required)
}

func promoteItem(item Item, required *AtomicType) (Item, error) {
	t, ok := item.Type().(*AtomicType)
	if !ok || (!t.Numeric() && t != TypeUntypedAtomic) {
		return nil, dynamicErrorf(CodeType, "%s: cannot promote %s to %s",
			itemString(item), item.Type(), required)
	}
	if t == required || t.Derives(required) {
		return item, nil
	}
	return CastItem(item, required)
}

func (e *numericPromoter) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *numericPromoter) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	if t, ok := e.operand.ItemType().(*AtomicType); ok {
		if t == e.required || t.Derives(e.required) {
			return e.operand, nil
		}
	}
	return e, nil
}

func (e *numericPromoter) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *numericPromoter) Replace(curr, next Expression) bool {
	if curr != e.operand {
		return false
	}
	e.operand = next
	return true
}

func (e *numericPromoter) ItemType() ItemType {
	return e.required
}

func (e *numericPromoter) Cardinality() Occurrence {
	return e.operand.Cardinality()
}

func (e *numericPromoter) Dependencies() Dependency {
	return e.operand.Dependencies()
}

func (e *numericPromoter) Iterate(ctx *DynamicContext) (Iterator, error) {
	source, err := e.operand.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	mapf := func(item Item) (Item, error) {
		next, err := promoteItem(item, e.required)
		if err != nil {
			return nil, attach(err, e.pos)
		}
		return next, nil
	}
	return mapIterator(source, mapf), nil
}

func (e *numericPromoter) children() []Expression {
	return []Expression{e.operand}
}
