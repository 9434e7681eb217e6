package pathvalue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Well-known paths.
const (
	// VersionPath holds the data version of a dataset.
	VersionPath = "/Version"
	// ParentPath names the artifact to fall back to at read time.
	ParentPath = "/%%Parent"
	// AliasPath marks a dataset that only redirects to another one.
	AliasPath = "/%%ALIAS"
)

// Type suffixes recognised on the last segment of a path.
const (
	SuffixInt       = ":int"
	SuffixIntVector = ":intvector"
	SuffixAlias     = ":alias"
)

// IsIntegerTyped reports whether path ends with exactly ":int" or
// ":intvector".
func IsIntegerTyped(path string) bool {
	return strings.HasSuffix(path, SuffixInt) || strings.HasSuffix(path, SuffixIntVector)
}

// IsIntVector reports whether path ends with ":intvector".
func IsIntVector(path string) bool {
	return strings.HasSuffix(path, SuffixIntVector)
}

// RoutingKey returns the key used to match routing rules for path. A trailing
// ":alias" segment is rewritten to "/" so that an alias declaration routes with
// the subtree it names.
func RoutingKey(path string) string {
	if base, ok := strings.CutSuffix(path, SuffixAlias); ok {
		return base + "/"
	}

	return path
}

// Segments splits path on "/" into its segments. A segment enclosed in double
// quotes may contain "/" and is returned with its quotes. Empty segments
// (leading, trailing, or doubled slashes) are dropped.
func Segments(path string) []string {
	var (
		segs    []string
		cur     strings.Builder
		inQuote bool
	)

	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		c := path[i]

		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == '/' && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
		}
	}

	flush()

	return segs
}

// Join builds a path from segments.
func Join(segs ...string) string {
	return "/" + strings.Join(segs, "/")
}

// CheckName reports an error when name cannot be used as the file name of a
// bundle inside a target directory.
func CheckName(name string) error {
	switch {
	case name == "":
		return errors.New("name is required")
	case name == "." || name == "..":
		return fmt.Errorf("name %q is not a file name", name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("name %q contains a path separator", name)
	}

	return nil
}

func isNumeric(v string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
	return err == nil
}
