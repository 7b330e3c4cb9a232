package xpath

// ExitSignal is the channel between a loop and the break expressions
// in its body. The loop creates it and hands it out at construction
// time; a break can only ever reach the loop that gave it its signal,
// so there is no search for an enclosing loop at evaluation time.
//
// All methods tolerate a nil receiver. A break that was built outside
// any loop carries a nil signal and evaluates to nothing.
type ExitSignal struct {
	requested bool
}

func NewExitSignal() *ExitSignal {
	return &ExitSignal{}
}

func (s *ExitSignal) Request() {
	if s != nil {
		s.requested = true
	}
}

func (s *ExitSignal) Requested() bool {
	return s != nil && s.requested
}

func (s *ExitSignal) Clear() {
	if s != nil {
		s.requested = false
	}
}

type breakExpr struct {
	base
	signal *ExitSignal
}

// NewBreak builds an exit request bound to the given signal. A nil
// signal is allowed and makes the break a no-op.
func NewBreak(signal *ExitSignal) Expression {
	return &breakExpr{
		signal: signal,
	}
}

func (e *breakExpr) Simplify() (Expression, error) {
	return e, nil
}

func (e *breakExpr) TypeCheck(_ *StaticContext) (Expression, error) {
	return e, nil
}

func (e *breakExpr) Promote(_ *Offer) (Expression, error) {
	return e, nil
}

func (e *breakExpr) Replace(_, _ Expression) bool {
	return false
}

func (e *breakExpr) ItemType() ItemType {
	return TypeAnyItem
}

func (e *breakExpr) Cardinality() Occurrence {
	return ZeroOrOne
}

// Dependencies reports the break as creative so that no rewrite ever
// moves it out of its loop body.
func (e *breakExpr) Dependencies() Dependency {
	return DependsCreative
}

func (e *breakExpr) Iterate(_ *DynamicContext) (Iterator, error) {
	e.signal.Request()
	return EmptyIterator(), nil
}

func (e *breakExpr) children() []Expression {
	return nil
}
