package restree

import (
	"errors"
	"fmt"
)

// ErrMalformed is the sentinel wrapped by every structural violation.
var ErrMalformed = errors.New("malformed resource")

// MalformedError reports a structural violation at a specific node.
type MalformedError struct {
	// Path is the full path of the offending node.
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed resource at %s: %s", e.Path, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformed).
func (e *MalformedError) Unwrap() error { return ErrMalformed }

func malformed(n *Node, reason string) error {
	return &MalformedError{Path: n.Path(), Reason: reason}
}

// Validate checks the forest for structural violations:
//
//   - a top-level node or a Table child with an empty name
//   - a String node with children
//   - a child whose owner link does not point at the node that lists it
//   - a node reachable more than once (shared or self-referential chain)
//
// The first violation found is returned as a *MalformedError.
func (f Forest) Validate() error {
	seen := make(map[*Node]bool)

	for _, n := range f {
		if n == nil {
			return &MalformedError{Path: "/", Reason: "nil top-level node"}
		}

		if n.Name == "" {
			return malformed(n, "top-level node has no name")
		}

		if n.parent != nil {
			return malformed(n, "top-level node is owned by another node")
		}

		if err := validateNode(n, seen); err != nil {
			return err
		}
	}

	return nil
}

func validateNode(n *Node, seen map[*Node]bool) error {
	if seen[n] {
		return malformed(n, "node is reachable more than once")
	}

	seen[n] = true

	if n.Kind == KindString && len(n.Children) > 0 {
		return malformed(n, "string node has children")
	}

	for i, c := range n.Children {
		if c == nil {
			return &MalformedError{Path: fmt.Sprintf("%s/[%d]", n.Path(), i), Reason: "nil child"}
		}

		if c.parent != n {
			return malformed(c, "child is not owned by the node that lists it")
		}

		if n.Kind == KindTable && c.Name == "" {
			return malformed(c, "table child has no name")
		}

		if err := validateNode(c, seen); err != nil {
			return err
		}
	}

	return nil
}
