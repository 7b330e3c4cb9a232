package xpath

import (
	"fmt"

	"github.com/midbel/xee/xml"
)

const schemaNS = "http://www.w3.org/2001/XMLSchema"

// ItemType describes the static type of the items an expression may
// produce: an atomic type from the xs hierarchy, or a node kind.
type ItemType interface {
	Matches(Item) bool
	String() string
}

type AtomicType struct {
	name   xml.QName
	parent *AtomicType
}

func (t *AtomicType) Name() xml.QName {
	return t.name
}

func (t *AtomicType) String() string {
	return t.name.QualifiedName()
}

func (t *AtomicType) Matches(item Item) bool {
	if !item.Atomic() {
		return false
	}
	at, ok := item.Type().(*AtomicType)
	return ok && at.Derives(t)
}

// Derives reports whether t is other or a type derived from it.
func (t *AtomicType) Derives(other *AtomicType) bool {
	for x := t; x != nil; x = x.parent {
		if x == other {
			return true
		}
	}
	return false
}

func (t *AtomicType) Numeric() bool {
	return t.Derives(TypeDecimal) || t.Derives(TypeDouble) || t.Derives(TypeFloat)
}

func newAtomic(name string, parent *AtomicType) *AtomicType {
	qn := xml.QualifiedName(name, "xs")
	qn.Uri = schemaNS
	return &AtomicType{
		name:   qn,
		parent: parent,
	}
}

var (
	TypeAnyAtomic     = newAtomic("anyAtomicType", nil)
	TypeUntypedAtomic = newAtomic("untypedAtomic", TypeAnyAtomic)
	TypeString        = newAtomic("string", TypeAnyAtomic)
	TypeBoolean       = newAtomic("boolean", TypeAnyAtomic)
	TypeDecimal       = newAtomic("decimal", TypeAnyAtomic)
	TypeInteger       = newAtomic("integer", TypeDecimal)
	TypeDouble        = newAtomic("double", TypeAnyAtomic)
	TypeFloat         = newAtomic("float", TypeAnyAtomic)
	TypeDateTime      = newAtomic("dateTime", TypeAnyAtomic)
	TypeDate          = newAtomic("date", TypeDateTime)
)

var atomicTypes = []*AtomicType{
	TypeAnyAtomic,
	TypeUntypedAtomic,
	TypeString,
	TypeBoolean,
	TypeDecimal,
	TypeInteger,
	TypeDouble,
	TypeFloat,
	TypeDateTime,
	TypeDate,
}

func TypeByName(name xml.QName) (*AtomicType, error) {
	for _, t := range atomicTypes {
		if t.name.Name == name.Name {
			return t, nil
		}
	}
	return nil, staticErrorf(CodeUndefined, "%s: unknown type", name.QualifiedName())
}

// KindTest matches nodes of the given kind.
type KindTest struct {
	Kind xml.NodeType
}

func (k KindTest) Matches(item Item) bool {
	if item.Atomic() {
		return false
	}
	node := item.Node()
	return node != nil && node.Type()&k.Kind != 0
}

func (k KindTest) String() string {
	return fmt.Sprintf("%s()", k.Kind)
}

type anyItem struct{}

func (anyItem) Matches(Item) bool {
	return true
}

func (anyItem) String() string {
	return "item()"
}

var (
	TypeAnyItem ItemType = anyItem{}
	TypeAnyNode ItemType = KindTest{Kind: xml.TypeNode}
)

func isNodeType(t ItemType) bool {
	switch t.(type) {
	case KindTest:
		return true
	case anyItem:
		return true
	default:
		return false
	}
}

// untypedPossible reports whether a value of the given static type can,
// at runtime, turn out to be an untyped atomic item. Nodes atomize to
// untyped values, so node kinds count.
func untypedPossible(t ItemType) bool {
	switch t := t.(type) {
	case *AtomicType:
		return t == TypeAnyAtomic || t == TypeUntypedAtomic
	default:
		return true
	}
}

type Occurrence int8

const (
	One Occurrence = iota
	ZeroOrOne
	ZeroOrMore
	OneOrMore
)

func (o Occurrence) String() string {
	switch o {
	case ZeroOrOne:
		return "?"
	case ZeroOrMore:
		return "*"
	case OneOrMore:
		return "+"
	default:
		return ""
	}
}

func (o Occurrence) AllowsEmpty() bool {
	return o == ZeroOrOne || o == ZeroOrMore
}

func (o Occurrence) AllowsMany() bool {
	return o == ZeroOrMore || o == OneOrMore
}

// union widens o so that it also covers occurrences allowed by other.
func (o Occurrence) union(other Occurrence) Occurrence {
	var (
		empty = o.AllowsEmpty() || other.AllowsEmpty()
		many  = o.AllowsMany() || other.AllowsMany()
	)
	switch {
	case empty && many:
		return ZeroOrMore
	case empty:
		return ZeroOrOne
	case many:
		return OneOrMore
	default:
		return One
	}
}

type SequenceType struct {
	Of ItemType
	Occurrence
}

func (t SequenceType) String() string {
	return fmt.Sprintf("%s%s", t.Of, t.Occurrence)
}
