// Package manifest renders the per-target build-file lists that tell the
// downstream build which artifacts and aliases a target produced.
package manifest

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

const (
	// FileName is the name of the manifest written into each target directory.
	FileName = "resfiles.mk"

	// Extension is appended to every artifact token.
	Extension = ".txt"

	// TokensPerLine is the number of tokens written before a line break.
	TokensPerLine = 10

	// rootName is always built and never listed.
	rootName = "root"
)

// Input is the data for one target's manifest.
type Input struct {
	// Prefix names the variables, e.g. "GENRB" -> GENRB_SOURCE.
	Prefix string
	// Tool and Year fill the header comment.
	Tool string
	Year int
	// Version is the data version; omitted when empty.
	Version string
	// SyntheticAliases are alias names with no concrete source data.
	SyntheticAliases []string
	// Aliases are other alias artifacts listed after the synthetic ones.
	Aliases []string
	// Sources are the ordinary artifacts, usually the splitter registry.
	Sources []string
}

// Variable names for prefix.
func SyntheticAliasVar(prefix string) string { return prefix + "_SYNTHETIC_ALIAS" }
func AliasSourceVar(prefix string) string    { return prefix + "_ALIAS_SOURCE" }
func SourceVar(prefix string) string         { return prefix + "_SOURCE" }
func VersionVar(prefix string) string        { return prefix + "_CLDR_VERSION" }

// DefaultPrefix derives a variable prefix from a target id: upper-cased,
// with every character that is not a letter or digit replaced by "_".
func DefaultPrefix(target string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}

		return '_'
	}, target)
}

// Generate renders the manifest text for one target.
func Generate(in Input) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# *   Copyright (C) %d and later: %s authors.\n", in.Year, in.Tool)
	fmt.Fprintf(&buf, "# *   Generated by %s. Do not edit.\n", in.Tool)
	buf.WriteString("# A list of txt's to build\n")
	buf.WriteString("#\n")

	if in.Version != "" {
		fmt.Fprintf(&buf, "%s = %s\n\n", VersionVar(in.Prefix), in.Version)
	}

	buf.WriteString("# Aliases without a real source file; generated for fallback only.\n")
	writeList(&buf, SyntheticAliasVar(in.Prefix), names(in.SyntheticAliases))
	buf.WriteString("\n")

	buf.WriteString("# All aliases, synthetic or not.\n")
	aliases := append([]string{"$(" + SyntheticAliasVar(in.Prefix) + ")"}, names(in.Aliases)...)
	writeList(&buf, AliasSourceVar(in.Prefix), aliases)
	buf.WriteString("\n")

	buf.WriteString("# Ordinary resources\n")
	writeList(&buf, SourceVar(in.Prefix), names(in.Sources))

	return buf.Bytes()
}

// names returns a sorted, de-duplicated copy of list without "root".
func names(list []string) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n == rootName || n == "" {
			continue
		}

		out = append(out, n)
	}

	slices.Sort(out)

	return slices.Compact(out)
}

func writeList(buf *bytes.Buffer, variable string, list []string) {
	buf.WriteString(variable + " =")

	for i, name := range list {
		if i > 0 && i%TokensPerLine == 0 {
			buf.WriteString(" \\\n")
		}

		buf.WriteString(" " + Token(name))
	}

	buf.WriteString("\n")
}

// Token renders one list entry: build-variable references such as
// "$(GENRB_SYNTHETIC_ALIAS)" are left bare, everything else gets Extension.
func Token(name string) string {
	if strings.HasPrefix(name, "$(") && strings.HasSuffix(name, ")") {
		return name
	}

	return name + Extension
}
