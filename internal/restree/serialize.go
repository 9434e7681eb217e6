package restree

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/ldml2res/internal/pathvalue"
)

// BOM is the UTF-8 byte-order mark that starts every artifact.
const BOM = "\uFEFF"

// Header describes the comment block written before the tree.
type Header struct {
	// Tool is the generator identity.
	Tool string
	// Year is the copyright year. It is the only input that may differ
	// between two runs over the same data.
	Year int
	// Source is the path of the source file; see NormalizeSource.
	Source string
	// Comment is optional free text written after the header.
	Comment string
}

const indentUnit = "    "

// knownRoots are directory names that mark the start of a recognizable data
// tree. A source path is rewritten to begin at the first one found.
var knownRoots = []string{"common", "seed", "exemplars", "keyboards"}

// NormalizeSource rewrites a source file path so that generated headers do
// not depend on where the data was checked out. If one of the known root
// segments occurs in the path, everything before it is replaced by
// "<path>". Otherwise the cleaned path is returned relative, with forward
// slashes.
func NormalizeSource(src string) string {
	if src == "" {
		return ""
	}

	clean := path.Clean(filepath.ToSlash(src))
	segs := strings.Split(clean, "/")

	for i, seg := range segs {
		for _, root := range knownRoots {
			if seg == root {
				return "<path>/" + strings.Join(segs[i:], "/")
			}
		}
	}

	return strings.TrimLeft(clean, "/")
}

// Serialize validates f and writes it to w: the byte-order mark, the header
// comment, and every top-level node in the order it has in f. Call Sort
// first for canonical output. Nothing is written when validation fails.
func (f Forest) Serialize(w io.Writer, h Header) error {
	if err := f.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	writeHeader(bw, h)

	for _, n := range f {
		writeNode(bw, n, 0, false)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing resource bundle: %w", err)
	}

	return nil
}

func writeHeader(w *bufio.Writer, h Header) {
	const rule = "// ***************************************************************************"

	_, _ = w.WriteString(BOM)
	_, _ = w.WriteString(rule + "\n")
	_, _ = w.WriteString("// *\n")
	_, _ = fmt.Fprintf(w, "// * Copyright (C) %d and later: %s authors.\n", h.Year, h.Tool)
	_, _ = fmt.Fprintf(w, "// * Tool: %s\n", h.Tool)
	_, _ = fmt.Fprintf(w, "// * Source File: %s\n", NormalizeSource(h.Source))
	_, _ = w.WriteString("// *\n")
	_, _ = w.WriteString(rule + "\n")

	if h.Comment != "" {
		_, _ = w.WriteString("/**\n")
		for _, line := range strings.Split(strings.TrimRight(h.Comment, "\n"), "\n") {
			_, _ = w.WriteString(strings.TrimRight(" * "+line, " ") + "\n")
		}

		_, _ = w.WriteString(" */\n")
	}
}

// writeNode writes n at the given depth. numeric is set by an integer-typed
// leaf and holds only for the scalars of that leaf; tables reset it.
func writeNode(w *bufio.Writer, n *Node, depth int, numeric bool) {
	indent := strings.Repeat(indentUnit, depth)

	switch {
	case n.Kind == KindTable:
		numeric = false
	case pathvalue.IsIntegerTyped(n.Name):
		numeric = true
	}

	_, _ = w.WriteString(indent)

	named := n.Name != ""
	if named {
		_, _ = w.WriteString(n.Name)
		if n.Annotation != "" {
			_, _ = w.WriteString(":" + n.Annotation)
		}
	}

	switch n.Kind {
	case KindString:
		if named {
			_, _ = w.WriteString("{" + scalar(n.Value, numeric) + "}\n")
		} else {
			_, _ = w.WriteString(scalar(n.Value, numeric) + ",\n")
		}

		return
	case KindArray:
		if numeric && allStrings(n) {
			_, _ = w.WriteString("{" + joinScalars(n, numeric) + "}")
			closeLine(w, named)

			return
		}
	}

	_, _ = w.WriteString("{\n")

	for _, c := range n.Children {
		writeNode(w, c, depth+1, numeric)
	}

	_, _ = w.WriteString(indent + "}")
	closeLine(w, named)
}

func closeLine(w *bufio.Writer, named bool) {
	if !named {
		_, _ = w.WriteString(",")
	}

	_, _ = w.WriteString("\n")
}

func allStrings(n *Node) bool {
	for _, c := range n.Children {
		if c.Kind != KindString || c.Name != "" {
			return false
		}
	}

	return true
}

func joinScalars(n *Node, numeric bool) string {
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, scalar(c.Value, numeric))
	}

	return strings.Join(parts, ",")
}

func scalar(v string, numeric bool) string {
	if numeric {
		return strings.TrimSpace(v)
	}

	return quote(v)
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
