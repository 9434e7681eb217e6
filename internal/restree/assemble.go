package restree

import (
	"github.com/hupe1980/ldml2res/internal/pathvalue"
)

// FromStore assembles a single-root forest from a store. The root table is
// named after the store; each path segment becomes a nested table and the
// last segment becomes a leaf:
//
//   - one tuple with one scalar -> String
//   - one tuple with several scalars -> Array of Strings
//   - several tuples -> Array with one element per tuple
//
// Int-vector paths always produce an Array. A path that is both a leaf and
// an interior table is reported as a *MalformedError.
func FromStore(s *pathvalue.Store) (Forest, error) {
	root := NewTable(s.Name)
	if !s.Fallback {
		root.Annotation = AnnotationNoFallback
	}

	for path, tuples := range s.All() {
		segs := pathvalue.Segments(path)
		if len(segs) == 0 {
			return nil, &MalformedError{Path: root.Path() + path, Reason: "empty path"}
		}

		parent := root

		for _, seg := range segs[:len(segs)-1] {
			next := parent.Child(seg)

			switch {
			case next == nil:
				next = parent.Add(NewTable(seg))
			case next.Kind != KindTable:
				return nil, malformed(next, "value is also used as a table")
			}

			parent = next
		}

		name := segs[len(segs)-1]
		if existing := parent.Child(name); existing != nil {
			if existing.Kind == KindTable {
				return nil, malformed(existing, "table is also used as a value")
			}

			return nil, malformed(existing, "value is defined by more than one path")
		}

		parent.Add(leaf(name, tuples))
	}

	return Forest{root}, nil
}

func leaf(name string, tuples []pathvalue.Tuple) *Node {
	if len(tuples) == 1 {
		t := tuples[0]
		if len(t) == 1 && !pathvalue.IsIntVector(name) {
			return NewString(name, t[0])
		}

		return arrayOf(name, t)
	}

	arr := NewArray(name)
	for _, t := range tuples {
		if len(t) == 1 {
			arr.Add(NewString("", t[0]))
			continue
		}

		arr.Add(arrayOf("", t))
	}

	return arr
}

func arrayOf(name string, t pathvalue.Tuple) *Node {
	arr := NewArray(name)
	for _, v := range t {
		arr.Add(NewString("", v))
	}

	return arr
}
