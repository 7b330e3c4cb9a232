package xpath

import (
	"github.com/midbel/xee/xml"
)

// slotUnallocated is the slot number every local binding starts with.
// Reading or writing through it panics: slots are only handed out by
// AllocateSlots after the rewriting phases are done, and any access
// before that is a phase-ordering bug.
const slotUnallocated = -1

// Binding is a declaration a variable reference can resolve to. Loop
// and let expressions implement it themselves: the declaration is not
// a separate object but the declaring expression, so a binding cannot
// exist without the expression that gives it a value.
type Binding interface {
	Name() xml.QName
	Global() bool
	EvaluateVariable(ctx *DynamicContext) (Sequence, error)
}

// GlobalVariable is an externally supplied value, fixed for the whole
// evaluation.
type GlobalVariable struct {
	name xml.QName
	seq  Sequence
}

func NewGlobalVariable(name xml.QName, values ...any) *GlobalVariable {
	var seq Sequence
	for i := range values {
		seq.Append(createItem(values[i]))
	}
	return &GlobalVariable{
		name: name,
		seq:  seq,
	}
}

func (g *GlobalVariable) Name() xml.QName {
	return g.name
}

func (g *GlobalVariable) Global() bool {
	return true
}

func (g *GlobalVariable) EvaluateVariable(_ *DynamicContext) (Sequence, error) {
	return g.seq, nil
}

// localBinding is the common part of the expressions that declare a
// variable. It carries the name and the frame slot the value will live
// in once slots are allocated.
type localBinding struct {
	name xml.QName
	slot int
}

func declareLocal(name xml.QName) localBinding {
	return localBinding{
		name: name,
		slot: slotUnallocated,
	}
}

func (b *localBinding) Name() xml.QName {
	return b.name
}

func (b *localBinding) Global() bool {
	return false
}

func (b *localBinding) EvaluateVariable(ctx *DynamicContext) (Sequence, error) {
	return ctx.LocalVariable(b.slot), nil
}

func (b *localBinding) assign(ctx *DynamicContext, seq Sequence) {
	ctx.SetLocalVariable(b.slot, seq)
}

type slotHolder interface {
	allocateSlot(next int) int
}

func (b *localBinding) allocateSlot(next int) int {
	b.slot = next
	return next + 1
}

// AllocateSlots walks the tree and hands a frame slot to every local
// declaration. It returns the frame size. Nested declarations on
// disjoint branches still get distinct slots: the numbering is a plain
// preorder count, trading a few frame entries for not having to reason
// about liveness.
func AllocateSlots(expr Expression, next int) int {
	if h, ok := expr.(slotHolder); ok {
		next = h.allocateSlot(next)
	}
	for _, c := range expr.children() {
		next = AllocateSlots(c, next)
	}
	return next
}
