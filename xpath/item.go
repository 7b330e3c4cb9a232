package xpath

import (
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v2"
	"github.com/midbel/xee/xml"
)

type Item interface {
	Atomic() bool
	Node() xml.Node
	Value() any
	True() bool
	Type() ItemType
}

type atomicItem struct {
	kind  *AtomicType
	value any
}

func createAtomic(kind *AtomicType, value any) Item {
	return atomicItem{
		kind:  kind,
		value: value,
	}
}

func NewString(str string) Item {
	return createAtomic(TypeString, str)
}

func NewBoolean(ok bool) Item {
	return createAtomic(TypeBoolean, ok)
}

func NewInteger(val int64) Item {
	return createAtomic(TypeInteger, val)
}

func NewDecimal(dec *apd.Decimal) Item {
	return createAtomic(TypeDecimal, dec)
}

func NewDouble(val float64) Item {
	return createAtomic(TypeDouble, val)
}

func NewFloat(val float32) Item {
	return createAtomic(TypeFloat, val)
}

func NewUntyped(str string) Item {
	return createAtomic(TypeUntypedAtomic, str)
}

func NewDateTime(when time.Time) Item {
	return createAtomic(TypeDateTime, when)
}

func NewDate(when time.Time) Item {
	return createAtomic(TypeDate, when)
}

func (i atomicItem) Atomic() bool {
	return true
}

func (i atomicItem) Node() xml.Node {
	return xml.NewText(i.String())
}

func (i atomicItem) Value() any {
	return i.value
}

func (i atomicItem) Type() ItemType {
	return i.kind
}

func (i atomicItem) True() bool {
	switch v := i.value.(type) {
	case string:
		return v != ""
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case *apd.Decimal:
		return v.Sign() != 0
	case time.Time:
		return !v.IsZero()
	default:
		return false
	}
}

func (i atomicItem) String() string {
	switch v := i.value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatDouble(v)
	case float32:
		return formatDouble(float64(v))
	case *apd.Decimal:
		return v.String()
	case time.Time:
		if i.kind == TypeDate {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	default:
		return ""
	}
}

func formatDouble(val float64) string {
	switch {
	case math.IsInf(val, 1):
		return "INF"
	case math.IsInf(val, -1):
		return "-INF"
	case math.IsNaN(val):
		return "NaN"
	default:
		return strconv.FormatFloat(val, 'g', -1, 64)
	}
}

type nodeItem struct {
	node xml.Node
}

func NewNode(node xml.Node) Item {
	return nodeItem{
		node: node,
	}
}

func (i nodeItem) Atomic() bool {
	return false
}

func (i nodeItem) Node() xml.Node {
	return i.node
}

func (i nodeItem) Value() any {
	return i.node.Value()
}

func (i nodeItem) Type() ItemType {
	return KindTest{Kind: i.node.Type()}
}

func (i nodeItem) True() bool {
	return true
}

// atomize reduces an item to its typed value. Nodes have no type
// annotation in this model, so they atomize to untyped atomics built
// from their string value.
func atomize(item Item) Item {
	if item.Atomic() {
		return item
	}
	return NewUntyped(item.Node().Value())
}

func isUntyped(item Item) bool {
	return item.Type() == TypeUntypedAtomic
}

func itemString(item Item) string {
	if s, ok := item.(interface{ String() string }); ok {
		return s.String()
	}
	return item.Node().Value()
}
