package xpath

import (
	"slices"
	"time"

	"github.com/midbel/xee/environ"
	"github.com/midbel/xee/xml"
)

// StaticContext carries everything the analysis phases may consult:
// in-scope variables, known collations and the type of the context
// item when one is promised at evaluation time.
type StaticContext struct {
	Vars        environ.Environ[Binding]
	Collations  *CollationMap
	ContextType ItemType
}

func DefaultStaticContext() *StaticContext {
	return &StaticContext{
		Vars:        environ.Empty[Binding](),
		Collations:  DefaultCollations(),
		ContextType: TypeAnyItem,
	}
}

func (s *StaticContext) Sub() *StaticContext {
	return &StaticContext{
		Vars:        environ.Enclosed(s.Vars),
		Collations:  s.Collations,
		ContextType: s.ContextType,
	}
}

func (s *StaticContext) Define(b Binding) {
	s.Vars.Define(b.Name().QualifiedName(), b)
}

// DynamicContext is the evaluation-time state: the focus (item,
// position, size) and the frame of local variable values indexed by
// slot number.
type DynamicContext struct {
	Item Item
	Pos  int
	Size int

	frame      []Sequence
	collations *CollationMap

	Now time.Time
}

func DefaultContext() *DynamicContext {
	return &DynamicContext{
		collations: DefaultCollations(),
		Now:        time.Now(),
	}
}

func contextWithNode(node xml.Node, slots int) *DynamicContext {
	ctx := DefaultContext()
	ctx.Item = NewNode(node)
	ctx.Pos = 1
	ctx.Size = 1
	ctx.frame = make([]Sequence, slots)
	return ctx
}

// Sub returns a context sharing the frame and collations but with its
// own focus. Loop bodies get one per input item.
func (d *DynamicContext) Sub(item Item, pos, size int) *DynamicContext {
	sub := *d
	sub.Item = item
	sub.Pos = pos
	sub.Size = size
	return &sub
}

// Fork returns a context with a private copy of the frame. Iterator
// clones evaluate on a fork so that slot writes on one side do not
// leak into the other.
func (d *DynamicContext) Fork() *DynamicContext {
	fork := *d
	fork.frame = slices.Clone(d.frame)
	return &fork
}

// LocalVariable returns the value stored in the given slot. A slot
// that was never allocated means a phase ran out of order and is a
// programming error, not a user error.
func (d *DynamicContext) LocalVariable(slot int) Sequence {
	if slot == slotUnallocated {
		panic("xpath: local variable read before slot allocation")
	}
	return d.frame[slot]
}

func (d *DynamicContext) SetLocalVariable(slot int, seq Sequence) {
	if slot == slotUnallocated {
		panic("xpath: local variable written before slot allocation")
	}
	if slot >= len(d.frame) {
		frame := make([]Sequence, slot+1)
		copy(frame, d.frame)
		d.frame = frame
	}
	d.frame[slot] = seq
}

func (d *DynamicContext) Collations() *CollationMap {
	if d.collations == nil {
		d.collations = DefaultCollations()
	}
	return d.collations
}

// NodeComparer orders nodes. The merge operators require both inputs
// sorted by the same comparer.
type NodeComparer interface {
	Compare(left, right xml.Node) int
}

type documentOrder struct{}

// DocumentOrder compares nodes by their position in the tree. Two
// nodes compare equal only when they are the same node.
var DocumentOrder NodeComparer = documentOrder{}

func (documentOrder) Compare(left, right xml.Node) int {
	return xml.Compare(left, right)
}
