package xpath

import (
	"slices"

	"github.com/midbel/xee/xml"
)

type Sequence []Item

// Singleton wraps a single value into a one-item sequence, converting
// plain Go values to their atomic item counterpart.
func Singleton(value any) Sequence {
	var seq Sequence
	seq.Append(createItem(value))
	return seq
}

func createItem(value any) Item {
	switch value := value.(type) {
	case Item:
		return value
	case xml.Node:
		return NewNode(value)
	case string:
		return NewString(value)
	case bool:
		return NewBoolean(value)
	case int:
		return NewInteger(int64(value))
	case int64:
		return NewInteger(value)
	case float64:
		return NewDouble(value)
	default:
		return NewUntyped("")
	}
}

func (s *Sequence) First() Item {
	if s.Empty() {
		return nil
	}
	return (*s)[0]
}

func (s *Sequence) Len() int {
	return len(*s)
}

func (s *Sequence) Empty() bool {
	return len(*s) == 0
}

func (s *Sequence) Singleton() bool {
	return len(*s) == 1
}

func (s *Sequence) Append(item Item) {
	*s = append(*s, item)
}

func (s *Sequence) Concat(other Sequence) {
	*s = slices.Concat(*s, other)
}

func (s *Sequence) True() bool {
	return EffectiveBooleanValue(*s)
}

func (s *Sequence) Values() []any {
	var list []any
	for i := range *s {
		list = append(list, (*s)[i].Value())
	}
	return list
}

func (s *Sequence) Strings() []string {
	var list []string
	for i := range *s {
		list = append(list, itemString((*s)[i]))
	}
	return list
}

// EffectiveBooleanValue follows the fn:boolean rules: an empty sequence
// is false, a sequence whose first item is a node is true, a singleton
// atomic is tested on its value, anything else is an error left to the
// caller (reported here as true when a node is present).
func EffectiveBooleanValue(seq Sequence) bool {
	if seq.Empty() {
		return false
	}
	if !seq[0].Atomic() {
		return true
	}
	if seq.Singleton() {
		return seq[0].True()
	}
	return false
}
