package xpath

import "slices"

// Iterator is the pull protocol every sequence producer implements.
// Next returns the next item, or nil once the sequence is exhausted;
// calling Next again after exhaustion keeps returning nil. Current is
// the most recently returned item and Position its 1-based ordinal, 0
// before the first call to Next. Another returns a fresh iterator over
// the same logical sequence whose consumption is independent of the
// receiver. After Next returns an error the iterator state is
// unspecified and consumption must stop.
type Iterator interface {
	Next() (Item, error)
	Current() Item
	Position() int
	Another() (Iterator, error)
}

// Reversible is implemented by iterators that can deliver the same
// items in reverse order without materializing the sequence. When the
// forward iterator guarantees document order, the reversed one
// guarantees reverse document order, not merely some permutation.
type Reversible interface {
	Iterator
	Reverse() (Iterator, error)
}

// LastPositionFinder is implemented by iterators that know the total
// number of items without consuming themselves.
type LastPositionFinder interface {
	Iterator
	LastPosition() (int, error)
}

type emptyIterator struct{}

func EmptyIterator() Iterator {
	return emptyIterator{}
}

func (emptyIterator) Next() (Item, error) {
	return nil, nil
}

func (emptyIterator) Current() Item {
	return nil
}

func (emptyIterator) Position() int {
	return 0
}

func (emptyIterator) Another() (Iterator, error) {
	return emptyIterator{}, nil
}

func (emptyIterator) Reverse() (Iterator, error) {
	return emptyIterator{}, nil
}

func (emptyIterator) LastPosition() (int, error) {
	return 0, nil
}

type singleIterator struct {
	item Item
	curr Item
	pos  int
}

func SingleIterator(item Item) Iterator {
	return &singleIterator{
		item: item,
	}
}

func (it *singleIterator) Next() (Item, error) {
	if it.pos > 0 {
		it.curr = nil
		return nil, nil
	}
	it.pos = 1
	it.curr = it.item
	return it.item, nil
}

func (it *singleIterator) Current() Item {
	return it.curr
}

func (it *singleIterator) Position() int {
	return it.pos
}

func (it *singleIterator) Another() (Iterator, error) {
	return SingleIterator(it.item), nil
}

func (it *singleIterator) Reverse() (Iterator, error) {
	return SingleIterator(it.item), nil
}

func (it *singleIterator) LastPosition() (int, error) {
	return 1, nil
}

type listIterator struct {
	items Sequence
	pos   int
}

func FromSequence(seq Sequence) Iterator {
	switch seq.Len() {
	case 0:
		return EmptyIterator()
	case 1:
		return SingleIterator(seq[0])
	default:
		return &listIterator{
			items: seq,
		}
	}
}

func (it *listIterator) Next() (Item, error) {
	if it.pos >= len(it.items) {
		return nil, nil
	}
	it.pos++
	return it.items[it.pos-1], nil
}

func (it *listIterator) Current() Item {
	if it.pos == 0 || it.pos > len(it.items) {
		return nil
	}
	return it.items[it.pos-1]
}

func (it *listIterator) Position() int {
	return it.pos
}

func (it *listIterator) Another() (Iterator, error) {
	return FromSequence(it.items), nil
}

func (it *listIterator) Reverse() (Iterator, error) {
	items := slices.Clone(it.items)
	slices.Reverse(items)
	return FromSequence(items), nil
}

func (it *listIterator) LastPosition() (int, error) {
	return len(it.items), nil
}

type rangeIterator struct {
	min  int64
	max  int64
	curr Item
	pos  int
}

func RangeIterator(min, max int64) Iterator {
	if min > max {
		return EmptyIterator()
	}
	return &rangeIterator{
		min: min,
		max: max,
	}
}

func (it *rangeIterator) Next() (Item, error) {
	next := it.min + int64(it.pos)
	if next > it.max {
		it.curr = nil
		return nil, nil
	}
	it.pos++
	it.curr = NewInteger(next)
	return it.curr, nil
}

func (it *rangeIterator) Current() Item {
	return it.curr
}

func (it *rangeIterator) Position() int {
	return it.pos
}

func (it *rangeIterator) Another() (Iterator, error) {
	return RangeIterator(it.min, it.max), nil
}

func (it *rangeIterator) Reverse() (Iterator, error) {
	return &reverseRangeIterator{
		min: it.min,
		max: it.max,
	}, nil
}

func (it *rangeIterator) LastPosition() (int, error) {
	return int(it.max - it.min + 1), nil
}

type reverseRangeIterator struct {
	min  int64
	max  int64
	curr Item
	pos  int
}

func (it *reverseRangeIterator) Next() (Item, error) {
	next := it.max - int64(it.pos)
	if next < it.min {
		it.curr = nil
		return nil, nil
	}
	it.pos++
	it.curr = NewInteger(next)
	return it.curr, nil
}

func (it *reverseRangeIterator) Current() Item {
	return it.curr
}

func (it *reverseRangeIterator) Position() int {
	return it.pos
}

func (it *reverseRangeIterator) Another() (Iterator, error) {
	return &reverseRangeIterator{
		min: it.min,
		max: it.max,
	}, nil
}

func (it *reverseRangeIterator) Reverse() (Iterator, error) {
	return RangeIterator(it.min, it.max), nil
}

func (it *reverseRangeIterator) LastPosition() (int, error) {
	return int(it.max - it.min + 1), nil
}

// appendIterator chains sub-iterators one after the other.
type appendIterator struct {
	list []Iterator
	ix   int
	curr Item
	pos  int
}

func AppendIterator(list ...Iterator) Iterator {
	if len(list) == 0 {
		return EmptyIterator()
	}
	return &appendIterator{
		list: list,
	}
}

func (it *appendIterator) Next() (Item, error) {
	for it.ix < len(it.list) {
		item, err := it.list[it.ix].Next()
		if err != nil {
			return nil, err
		}
		if item != nil {
			it.pos++
			it.curr = item
			return item, nil
		}
		it.ix++
	}
	it.curr = nil
	return nil, nil
}

func (it *appendIterator) Current() Item {
	return it.curr
}

func (it *appendIterator) Position() int {
	return it.pos
}

func (it *appendIterator) Another() (Iterator, error) {
	list := make([]Iterator, len(it.list))
	for i := range it.list {
		other, err := it.list[i].Another()
		if err != nil {
			return nil, err
		}
		list[i] = other
	}
	return AppendIterator(list...), nil
}

// Expand consumes the iterator and materializes the remaining items.
func Expand(it Iterator) (Sequence, error) {
	var seq Sequence
	for {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}
		if item == nil {
			return seq, nil
		}
		seq.Append(item)
	}
}

// ReverseIterator returns an iterator over the same items in reverse,
// using the Reversible capability when the producer offers it and
// falling back to materializing otherwise.
func ReverseIterator(it Iterator) (Iterator, error) {
	if r, ok := it.(Reversible); ok {
		return r.Reverse()
	}
	seq, err := Expand(it)
	if err != nil {
		return nil, err
	}
	slices.Reverse(seq)
	return FromSequence(seq), nil
}

// Count reports the total number of items, using LastPositionFinder
// when available so the sequence is not consumed.
func Count(it Iterator) (int, error) {
	if f, ok := it.(LastPositionFinder); ok {
		return f.LastPosition()
	}
	seq, err := Expand(it)
	if err != nil {
		return 0, err
	}
	return seq.Len(), nil
}
