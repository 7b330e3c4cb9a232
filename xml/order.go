package xml

import "slices"

// Compare orders two nodes of the same document by their position vector:
// negative when left comes before right, zero when both designate the same
// node, positive otherwise. Equality here is node identity, not value
// equality: two nodes are the same exactly when their position vectors are
// the same. Nodes taken from different documents have no defined order.
func Compare(left, right Node) int {
	var (
		p1 = left.path()
		p2 = right.path()
	)
	for i := 0; i < len(p1) && i < len(p2); i++ {
		if p1[i] != p2[i] {
			if p1[i] < p2[i] {
				return -1
			}
			return 1
		}
	}
	return len(p1) - len(p2)
}

func Before(left, right Node) bool {
	return Compare(left, right) < 0
}

func After(left, right Node) bool {
	return Compare(left, right) > 0
}

func IsSame(left, right Node) bool {
	return Compare(left, right) == 0
}

// SortOrder returns the nodes in document order with duplicates removed
// under node identity. The input slice is left untouched.
func SortOrder(nodes []Node) []Node {
	if len(nodes) < 2 {
		return nodes
	}
	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, Compare)
	return slices.CompactFunc(sorted, IsSame)
}
