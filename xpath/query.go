package xpath

import (
	"io"

	"github.com/midbel/xee/xml"
)

// Query is a fully analyzed expression, ready to evaluate any number
// of times. The analysis runs once: simplification, type analysis,
// promotion and finally slot allocation, in that order.
type Query struct {
	expr  Expression
	slots int
	env   *StaticContext
}

func Build(expr string) (*Query, error) {
	return BuildWith(expr, DefaultStaticContext())
}

func BuildWith(expr string, env *StaticContext) (*Query, error) {
	tree, err := CompileString(expr)
	if err != nil {
		return nil, err
	}
	return Prepare(tree, env)
}

func BuildReader(r io.Reader, env *StaticContext) (*Query, error) {
	tree, err := Compile(r)
	if err != nil {
		return nil, err
	}
	return Prepare(tree, env)
}

// Prepare runs the static pipeline on an already compiled tree.
func Prepare(tree Expression, env *StaticContext) (*Query, error) {
	tree, err := tree.Simplify()
	if err != nil {
		return nil, err
	}
	tree, err = tree.TypeCheck(env)
	if err != nil {
		return nil, err
	}
	tree, err = tree.Promote(&Offer{Action: OfferNone})
	if err != nil {
		return nil, err
	}
	slots := AllocateSlots(tree, 0)
	return &Query{
		expr:  tree,
		slots: slots,
		env:   env,
	}, nil
}

// Find evaluates the query with the given node as context item.
func (q *Query) Find(node xml.Node) (Sequence, error) {
	ctx := contextWithNode(node, q.slots)
	ctx.collations = q.env.Collations.Copy()
	return q.FindContext(ctx)
}

// Eval evaluates the query without a context item. Expressions that
// need one fail with a dynamic error.
func (q *Query) Eval() (Sequence, error) {
	ctx := DefaultContext()
	ctx.frame = make([]Sequence, q.slots)
	ctx.collations = q.env.Collations.Copy()
	return q.FindContext(ctx)
}

func (q *Query) FindContext(ctx *DynamicContext) (Sequence, error) {
	if len(ctx.frame) < q.slots {
		frame := make([]Sequence, q.slots)
		copy(frame, ctx.frame)
		ctx.frame = frame
	}
	return EvalSequence(q.expr, ctx)
}

// Iterate exposes the lazy protocol directly.
func (q *Query) Iterate(ctx *DynamicContext) (Iterator, error) {
	if len(ctx.frame) < q.slots {
		frame := make([]Sequence, q.slots)
		copy(frame, ctx.frame)
		ctx.frame = frame
	}
	return q.expr.Iterate(ctx)
}

func (q *Query) Expr() Expression {
	return q.expr
}

func (q *Query) Context() *StaticContext {
	return q.env
}

func (q *Query) Slots() int {
	return q.slots
}
