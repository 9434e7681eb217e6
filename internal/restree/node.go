// Package restree models resource bundles as an ordered tree of String,
// Array, and Table nodes and serializes them to the textual bundle format.
//
// The package is organized around four concerns:
//
//   - Model (node.go): nodes own an ordered child list and remember their
//     owner, so a node's full path can be rebuilt for diagnostics.
//
//   - Assembly (assemble.go): build a tree from a path/value store.
//
//   - Ordering and integrity (sort.go, validate.go): canonical stable order
//     and structural checks run before any byte is written.
//
//   - Serialization (serialize.go): BOM, header comment, nested blocks.
package restree

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	// KindString is a scalar leaf.
	KindString Kind = iota
	// KindArray is an ordered list of unnamed children.
	KindArray
	// KindTable is an ordered list of named children.
	KindTable
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AnnotationNoFallback marks a root table whose bundle must not fall back to
// a parent bundle at read time.
const AnnotationNoFallback = "table(nofallback)"

// Node is one element of a resource tree.
type Node struct {
	Kind Kind

	// Name is required for children of a Table and for top-level nodes.
	// Array elements are usually unnamed.
	Name string

	// Annotation is rendered after the name as "name:annotation".
	Annotation string

	// Value is the scalar of a String node.
	Value string

	Children []*Node

	parent *Node
}

// NewTable returns an empty table.
func NewTable(name string) *Node {
	return &Node{Kind: KindTable, Name: name}
}

// NewArray returns an empty array.
func NewArray(name string) *Node {
	return &Node{Kind: KindArray, Name: name}
}

// NewString returns a string leaf.
func NewString(name, value string) *Node {
	return &Node{Kind: KindString, Name: name, Value: value}
}

// Add appends child to n's children, records n as its owner, and returns
// child.
func (n *Node) Add(child *Node) *Node {
	child.parent = n
	n.Children = append(n.Children, child)

	return child
}

// Parent returns the owning node, or nil for a top-level node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Child returns the first child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// Path rebuilds the full path of n by walking owner links to the root.
// Unnamed nodes are shown by their index within the owner.
func (n *Node) Path() string {
	var segs []string

	seen := make(map[*Node]bool)

	for cur := n; cur != nil; cur = cur.parent {
		if seen[cur] {
			segs = append(segs, "...")
			break
		}

		seen[cur] = true
		segs = append(segs, cur.label())
	}

	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}

	return "/" + strings.Join(segs, "/")
}

func (n *Node) label() string {
	if n.Name != "" {
		return n.Name
	}

	if n.parent != nil {
		for i, c := range n.parent.Children {
			if c == n {
				return fmt.Sprintf("[%d]", i)
			}
		}
	}

	return "<unnamed>"
}

// Forest is the ordered list of top-level nodes of one artifact.
type Forest []*Node
