package pathvalue

// Symbols maps symbolic scalar names to the integer codes that replace them
// under integer-typed paths (for example "monday" -> "2"). A nil table is
// valid and never matches.
type Symbols map[string]string

// Lookup returns the code for sym.
func (s Symbols) Lookup(sym string) (string, bool) {
	code, ok := s[sym]
	return code, ok
}

// Merge returns a new table holding the entries of s overlaid with other.
func (s Symbols) Merge(other Symbols) Symbols {
	out := make(Symbols, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}

	for k, v := range other {
		out[k] = v
	}

	return out
}
