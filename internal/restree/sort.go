package restree

import (
	"cmp"
	"slices"
)

// Sort puts the forest into canonical order: top-level nodes and the
// children of every Table are ordered by name using byte-wise string
// comparison. Nodes with equal names keep their relative insertion order, so
// duplicates are never dropped and the result depends only on the names and
// the order in which equal names were added. Array children are never
// reordered.
func (f Forest) Sort() {
	sortNodes(f)

	seen := make(map[*Node]bool)
	for _, n := range f {
		sortTree(n, seen)
	}
}

func sortTree(n *Node, seen map[*Node]bool) {
	if n == nil || seen[n] {
		return
	}

	seen[n] = true

	if n.Kind == KindTable {
		sortNodes(n.Children)
	}

	for _, c := range n.Children {
		sortTree(c, seen)
	}
}

func sortNodes(nodes []*Node) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return cmp.Compare(nameOf(a), nameOf(b))
	})
}

func nameOf(n *Node) string {
	if n == nil {
		return ""
	}

	return n.Name
}
