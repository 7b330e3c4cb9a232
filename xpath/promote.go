package xpath

// OfferAction tells an expression what kind of rewrite the current
// promotion pass is allowed to perform on it.
type OfferAction uint8

const (
	// OfferNone walks the tree without rewriting. Loops use the walk to
	// start their own, narrower offers.
	OfferNone OfferAction = iota
	// OfferFocusIndependent hoists subexpressions that depend neither
	// on the focus nor on the offering loop's bindings.
	OfferFocusIndependent
	// OfferInlineVariable replaces references to cheap bindings with
	// the bound expression itself, letting the binding disappear.
	OfferInlineVariable
)

// Offer is passed down the tree during the promotion phase. A loop
// creates one naming its own bindings; any subexpression that does not
// reference them and does not depend on the focus may accept the offer
// and be evaluated once, outside the loop.
type Offer struct {
	Action   OfferAction
	bindings []Binding
	hoisted  []*letExpr
}

func (o *Offer) forBinding(b Binding) *Offer {
	return &Offer{
		Action:   OfferFocusIndependent,
		bindings: append([]Binding{b}, o.bindings...),
	}
}

func (o *Offer) inlined(b Binding) bool {
	for i := range o.bindings {
		if o.bindings[i] == b {
			return true
		}
	}
	return false
}

// accept decides whether the subtree should be lifted out of the
// offering loop. Accepted subtrees are replaced by a reference to a
// fresh let binding that the loop wraps around itself afterwards.
func (o *Offer) accept(e Expression) (Expression, bool) {
	if o.Action != OfferFocusIndependent {
		return e, false
	}
	switch e.(type) {
	case *literal, *varRef, *contextItem:
		// not worth a binding
		return e, false
	}
	deps := e.Dependencies()
	if deps&(DependsFocus|DependsCreative) != 0 {
		return e, false
	}
	if deps&DependsLocalVars != 0 && referencesAny(e, o.bindings) {
		return e, false
	}
	let := hoistedLet(e)
	o.hoisted = append(o.hoisted, let)
	return newBoundRef(let), true
}

// wrap builds the hoisted lets around the loop that made the offer.
// The most recently hoisted binding ends up innermost.
func (o *Offer) wrap(loop Expression) Expression {
	for i := len(o.hoisted) - 1; i >= 0; i-- {
		let := o.hoisted[i]
		let.action = loop
		loop = let
	}
	o.hoisted = nil
	return loop
}

// promoteDefault first tries to have the whole subtree hoisted, so
// that the largest liftable unit wins, and only recurses into the
// children when the subtree as a whole must stay.
func promoteDefault(e Expression, offer *Offer) (Expression, error) {
	if next, ok := offer.accept(e); ok {
		return next, nil
	}
	if err := promoteChildren(e, offer); err != nil {
		return nil, err
	}
	return e, nil
}

// inlinable reports whether a declaration is cheap enough to duplicate
// at every reference site instead of paying for a slot.
func inlinable(e Expression) bool {
	switch e.(type) {
	case *literal, *varRef:
		return true
	}
	return false
}

func promoteChildren(e Expression, offer *Offer) error {
	for _, c := range e.children() {
		next, err := c.Promote(offer)
		if err != nil {
			return err
		}
		if next != c {
			e.Replace(c, next)
		}
	}
	return nil
}
