package xpath

import (
	"github.com/midbel/xee/xml"
)

// Dependency flags describe what parts of the dynamic context an
// expression relies on. They drive the promotion decisions: an
// expression with no focus dependency can be lifted out of a loop.
type Dependency uint8

const (
	DependsContextItem Dependency = 1 << iota
	DependsPosition
	DependsLast
	DependsLocalVars
	// DependsCreative marks expressions whose evaluation has an effect
	// on the current frame beyond producing items. They are pinned
	// where they are: promotion never moves them.
	DependsCreative
)

const DependsFocus = DependsContextItem | DependsPosition | DependsLast

// Expression is a node of the compiled tree. The static pipeline runs
// Simplify, TypeCheck and Promote in that order, each phase recursing
// into children first and splicing replacements in place through
// Replace. Once Iterate has been called the tree must not be rewritten
// again.
type Expression interface {
	Simplify() (Expression, error)
	TypeCheck(env *StaticContext) (Expression, error)
	Promote(offer *Offer) (Expression, error)

	// Replace substitutes exactly one direct child and reports whether
	// the child was found. It is how later phases splice rewritten
	// subtrees without rebuilding the parent.
	Replace(curr, next Expression) bool

	ItemType() ItemType
	Cardinality() Occurrence
	Dependencies() Dependency

	Iterate(ctx *DynamicContext) (Iterator, error)
	Location() Position

	children() []Expression
}

type base struct {
	pos Position
}

func (b *base) Location() Position {
	return b.pos
}

func (b *base) At(pos Position) {
	b.pos = pos
}

// EvalItem evaluates an expression expected to yield at most one item.
func EvalItem(e Expression, ctx *DynamicContext) (Item, error) {
	it, err := e.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	item, err := it.Next()
	if err != nil {
		return nil, attach(err, e.Location())
	}
	return item, nil
}

// EvalSequence evaluates an expression and materializes its result.
func EvalSequence(e Expression, ctx *DynamicContext) (Sequence, error) {
	it, err := e.Iterate(ctx)
	if err != nil {
		return nil, attach(err, e.Location())
	}
	seq, err := Expand(it)
	if err != nil {
		return nil, attach(err, e.Location())
	}
	return seq, nil
}

type literal struct {
	base
	seq Sequence
}

// NewLiteral builds a constant expression. Literal nodes are shared
// read-only leaves: a rewrite may alias them under several parents but
// never mutates them.
func NewLiteral(values ...any) Expression {
	var seq Sequence
	for i := range values {
		seq.Append(createItem(values[i]))
	}
	return &literal{
		seq: seq,
	}
}

func createLiteral(seq Sequence) Expression {
	return &literal{
		seq: seq,
	}
}

func (e *literal) Simplify() (Expression, error) {
	return e, nil
}

func (e *literal) TypeCheck(_ *StaticContext) (Expression, error) {
	return e, nil
}

func (e *literal) Promote(_ *Offer) (Expression, error) {
	return e, nil
}

func (e *literal) Replace(_, _ Expression) bool {
	return false
}

func (e *literal) ItemType() ItemType {
	var kind ItemType
	for i := range e.seq {
		t := e.seq[i].Type()
		if kind == nil {
			kind = t
			continue
		}
		if kind != t {
			return TypeAnyItem
		}
	}
	if kind == nil {
		return TypeAnyItem
	}
	return kind
}

func (e *literal) Cardinality() Occurrence {
	switch e.seq.Len() {
	case 0:
		return ZeroOrOne
	case 1:
		return One
	default:
		return OneOrMore
	}
}

func (e *literal) Dependencies() Dependency {
	return 0
}

func (e *literal) Iterate(_ *DynamicContext) (Iterator, error) {
	return FromSequence(e.seq), nil
}

func (e *literal) children() []Expression {
	return nil
}

type contextItem struct {
	base
}

func NewContextItem() Expression {
	return &contextItem{}
}

func (e *contextItem) Simplify() (Expression, error) {
	return e, nil
}

func (e *contextItem) TypeCheck(env *StaticContext) (Expression, error) {
	if env.ContextType == nil {
		return nil, attach(staticError(CodeContext, "context item is absent from the static context"), e.pos)
	}
	return e, nil
}

func (e *contextItem) Promote(_ *Offer) (Expression, error) {
	return e, nil
}

func (e *contextItem) Replace(_, _ Expression) bool {
	return false
}

func (e *contextItem) ItemType() ItemType {
	return TypeAnyItem
}

func (e *contextItem) Cardinality() Occurrence {
	return One
}

func (e *contextItem) Dependencies() Dependency {
	return DependsContextItem
}

func (e *contextItem) Iterate(ctx *DynamicContext) (Iterator, error) {
	if ctx.Item == nil {
		return nil, attach(dynamicError(CodeContext, "context item is absent"), e.pos)
	}
	return SingleIterator(ctx.Item), nil
}

func (e *contextItem) children() []Expression {
	return nil
}

type varRef struct {
	base
	name    xml.QName
	binding Binding
}

func NewVariableReference(name xml.QName) Expression {
	return &varRef{
		name: name,
	}
}

func newBoundRef(binding Binding) Expression {
	return &varRef{
		name:    binding.Name(),
		binding: binding,
	}
}

func (e *varRef) Simplify() (Expression, error) {
	return e, nil
}

func (e *varRef) TypeCheck(env *StaticContext) (Expression, error) {
	if e.binding != nil {
		return e, nil
	}
	binding, err := env.Vars.Resolve(e.name.QualifiedName())
	if err != nil {
		return nil, attach(staticErrorf(CodeUndefined, "$%s: undefined variable", e.name.QualifiedName()), e.pos)
	}
	e.binding = binding
	return e, nil
}

func (e *varRef) Promote(offer *Offer) (Expression, error) {
	if offer.Action == OfferInlineVariable && offer.inlined(e.binding) {
		if let, ok := e.binding.(*letExpr); ok {
			return let.declare, nil
		}
	}
	return e, nil
}

func (e *varRef) Replace(_, _ Expression) bool {
	return false
}

func (e *varRef) ItemType() ItemType {
	return TypeAnyItem
}

func (e *varRef) Cardinality() Occurrence {
	return ZeroOrMore
}

func (e *varRef) Dependencies() Dependency {
	if e.binding != nil && e.binding.Global() {
		return 0
	}
	return DependsLocalVars
}

func (e *varRef) Iterate(ctx *DynamicContext) (Iterator, error) {
	if e.binding == nil {
		return nil, attach(dynamicErrorf(CodeUndefined, "$%s: variable was never bound", e.name.QualifiedName()), e.pos)
	}
	seq, err := e.binding.EvaluateVariable(ctx)
	if err != nil {
		return nil, attach(err, e.pos)
	}
	return FromSequence(seq), nil
}

func (e *varRef) children() []Expression {
	return nil
}

type sequenceExpr struct {
	base
	all []Expression
}

func NewSequenceExpr(all ...Expression) Expression {
	return &sequenceExpr{
		all: all,
	}
}

func (e *sequenceExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if len(e.all) == 1 {
		return e.all[0], nil
	}
	var seq Sequence
	for i := range e.all {
		c, ok := e.all[i].(*literal)
		if !ok {
			return e, nil
		}
		seq.Concat(c.seq)
	}
	return createLiteral(seq), nil
}

func (e *sequenceExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *sequenceExpr) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *sequenceExpr) Replace(curr, next Expression) bool {
	for i := range e.all {
		if e.all[i] == curr {
			e.all[i] = next
			return true
		}
	}
	return false
}

func (e *sequenceExpr) ItemType() ItemType {
	var kind ItemType
	for i := range e.all {
		t := e.all[i].ItemType()
		if kind == nil {
			kind = t
			continue
		}
		if kind != t {
			return TypeAnyItem
		}
	}
	if kind == nil {
		return TypeAnyItem
	}
	return kind
}

func (e *sequenceExpr) Cardinality() Occurrence {
	if len(e.all) == 0 {
		return ZeroOrOne
	}
	return ZeroOrMore
}

func (e *sequenceExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *sequenceExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	list := make([]Iterator, len(e.all))
	for i := range e.all {
		it, err := e.all[i].Iterate(ctx)
		if err != nil {
			return nil, err
		}
		list[i] = it
	}
	return AppendIterator(list...), nil
}

func (e *sequenceExpr) children() []Expression {
	return e.all
}

type ifExpr struct {
	base
	test Expression
	csq  Expression
	alt  Expression
}

func NewConditional(test, csq, alt Expression) Expression {
	return &ifExpr{
		test: test,
		csq:  csq,
		alt:  alt,
	}
}

func (e *ifExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	if c, ok := e.test.(*literal); ok {
		if EffectiveBooleanValue(c.seq) {
			return e.csq, nil
		}
		return e.alt, nil
	}
	return e, nil
}

func (e *ifExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *ifExpr) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *ifExpr) Replace(curr, next Expression) bool {
	switch curr {
	case e.test:
		e.test = next
	case e.csq:
		e.csq = next
	case e.alt:
		e.alt = next
	default:
		return false
	}
	return true
}

func (e *ifExpr) ItemType() ItemType {
	if e.csq.ItemType() == e.alt.ItemType() {
		return e.csq.ItemType()
	}
	return TypeAnyItem
}

func (e *ifExpr) Cardinality() Occurrence {
	return e.csq.Cardinality().union(e.alt.Cardinality())
}

func (e *ifExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *ifExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	res, err := EvalSequence(e.test, ctx)
	if err != nil {
		return nil, err
	}
	if EffectiveBooleanValue(res) {
		return e.csq.Iterate(ctx)
	}
	return e.alt.Iterate(ctx)
}

func (e *ifExpr) children() []Expression {
	return []Expression{e.test, e.csq, e.alt}
}

type rangeExpr struct {
	base
	left  Expression
	right Expression
}

func NewRange(left, right Expression) Expression {
	return &rangeExpr{
		left:  left,
		right: right,
	}
}

func (e *rangeExpr) Simplify() (Expression, error) {
	if err := simplifyChildren(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *rangeExpr) TypeCheck(env *StaticContext) (Expression, error) {
	if err := typeCheckChildren(e, env); err != nil {
		return nil, err
	}
	e.left = insertConverter(e.left, TypeInteger)
	e.right = insertConverter(e.right, TypeInteger)
	return e, nil
}

func (e *rangeExpr) Promote(offer *Offer) (Expression, error) {
	return promoteDefault(e, offer)
}

func (e *rangeExpr) Replace(curr, next Expression) bool {
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

func (e *rangeExpr) ItemType() ItemType {
	return TypeInteger
}

func (e *rangeExpr) Cardinality() Occurrence {
	return ZeroOrMore
}

func (e *rangeExpr) Dependencies() Dependency {
	return dependenciesOf(e)
}

func (e *rangeExpr) Iterate(ctx *DynamicContext) (Iterator, error) {
	min, err := e.bound(e.left, ctx)
	if err != nil {
		return nil, err
	}
	max, err := e.bound(e.right, ctx)
	if err != nil {
		return nil, err
	}
	if min == nil || max == nil {
		return EmptyIterator(), nil
	}
	lo, err := toInt(atomize(min).Value())
	if err != nil {
		return nil, attach(conversionError(min.Value(), TypeInteger), e.pos)
	}
	hi, err := toInt(atomize(max).Value())
	if err != nil {
		return nil, attach(conversionError(max.Value(), TypeInteger), e.pos)
	}
	return RangeIterator(lo, hi), nil
}

func (e *rangeExpr) bound(expr Expression, ctx *DynamicContext) (Item, error) {
	return EvalItem(expr, ctx)
}

func (e *rangeExpr) children() []Expression {
	return []Expression{e.left, e.right}
}

// simplifyChildren runs Simplify on every direct child and splices the
// replacements back into the parent.
func simplifyChildren(e Expression) error {
	for _, c := range e.children() {
		next, err := c.Simplify()
		if err != nil {
			return err
		}
		if next != c {
			e.Replace(c, next)
		}
	}
	return nil
}

func typeCheckChildren(e Expression, env *StaticContext) error {
	for _, c := range e.children() {
		next, err := c.TypeCheck(env)
		if err != nil {
			return err
		}
		if next != c {
			e.Replace(c, next)
		}
	}
	return nil
}

func dependenciesOf(e Expression) Dependency {
	var deps Dependency
	for _, c := range e.children() {
		deps |= c.Dependencies()
	}
	return deps
}

// referencesAny reports whether the subtree contains a reference to one
// of the given bindings.
func referencesAny(e Expression, bindings []Binding) bool {
	if v, ok := e.(*varRef); ok {
		for i := range bindings {
			if v.binding == bindings[i] {
				return true
			}
		}
		return false
	}
	for _, c := range e.children() {
		if referencesAny(c, bindings) {
			return true
		}
	}
	return false
}
