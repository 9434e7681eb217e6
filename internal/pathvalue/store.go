// Package pathvalue implements the ordered path/value multimap that locale
// translators populate and the splitter consumes.
//
// A Store maps slash-delimited paths to an ordered list of value tuples.
// Paths keep their first-insertion order and tuples keep insertion order
// within a path, so iteration over a Store is deterministic.
package pathvalue

import (
	"iter"
	"log/slog"
	"slices"
)

// Tuple is one row of scalars stored under a path.
type Tuple []string

// Store is an ordered multimap from path to value tuples. It carries the
// metadata the serializer needs to name and annotate the produced artifact.
//
// A Store is not safe for concurrent use.
type Store struct {
	// Source is a label for where the data came from, typically the path of
	// the source file. It ends up in the artifact header.
	Source string

	// Name is the dataset id (e.g. "en_US"). It names the root table and the
	// produced artifact.
	Name string

	// Comment is optional free text emitted in the artifact header.
	Comment string

	// Fallback reports whether the artifact may fall back to another artifact
	// at read time. When false the root table is marked nofallback.
	Fallback bool

	symbols Symbols
	logger  *slog.Logger
	order   []string
	values  map[string][]Tuple
}

// Option configures a Store.
type Option func(*Store)

// WithSymbols installs the symbol table used to normalize integer-typed
// paths. Without it, no scalar is ever substituted.
func WithSymbols(symbols Symbols) Option {
	return func(s *Store) {
		s.symbols = symbols
	}
}

// WithLogger sets the logger used for normalization warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty store. Fallback defaults to true; most artifacts may
// fall back to their parent.
func New(source, name string, opts ...Option) *Store {
	s := &Store{
		Source:   source,
		Name:     name,
		Fallback: true,
		logger:   slog.Default(),
		values:   make(map[string][]Tuple),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewLike creates an empty store that copies the metadata, symbol table, and
// logger of s but none of its values.
func (s *Store) NewLike() *Store {
	return &Store{
		Source:   s.Source,
		Name:     s.Name,
		Comment:  s.Comment,
		Fallback: s.Fallback,
		symbols:  s.symbols,
		logger:   s.logger,
		values:   make(map[string][]Tuple),
	}
}

// Add appends a normalized copy of tuple to the values of path.
func (s *Store) Add(path string, tuple Tuple) {
	if _, ok := s.values[path]; !ok {
		s.order = append(s.order, path)
	}

	s.values[path] = append(s.values[path], s.normalize(path, tuple))
}

// Replace discards any tuples stored for path and stores exactly one
// normalized copy of tuple.
func (s *Store) Replace(path string, tuple Tuple) {
	if _, ok := s.values[path]; !ok {
		s.order = append(s.order, path)
	}

	s.values[path] = []Tuple{s.normalize(path, tuple)}
}

// Get returns the tuples stored for path. The second result is false when the
// path is absent.
func (s *Store) Get(path string) ([]Tuple, bool) {
	tuples, ok := s.values[path]
	return tuples, ok
}

// Contains reports whether path has at least one tuple.
func (s *Store) Contains(path string) bool {
	_, ok := s.values[path]
	return ok
}

// Len returns the number of distinct paths.
func (s *Store) Len() int {
	return len(s.order)
}

// Paths returns the paths in first-insertion order.
func (s *Store) Paths() []string {
	return slices.Clone(s.order)
}

// All iterates over (path, tuples) pairs in first-insertion order.
func (s *Store) All() iter.Seq2[string, []Tuple] {
	return func(yield func(string, []Tuple) bool) {
		for _, p := range s.order {
			if !yield(p, s.values[p]) {
				return
			}
		}
	}
}

// CopyFrom appends the tuples of path in src to s without re-normalizing
// them; they were normalized when added to src.
func (s *Store) CopyFrom(src *Store, path string) {
	tuples, ok := src.values[path]
	if !ok {
		return
	}

	if _, exists := s.values[path]; !exists {
		s.order = append(s.order, path)
	}

	for _, t := range tuples {
		s.values[path] = append(s.values[path], slices.Clone(t))
	}
}

// Clone returns an independent deep copy of s.
func (s *Store) Clone() *Store {
	c := s.NewLike()
	for _, p := range s.order {
		c.CopyFrom(s, p)
	}

	return c
}

func (s *Store) normalize(path string, tuple Tuple) Tuple {
	out := slices.Clone(tuple)
	if !IsIntegerTyped(path) {
		return out
	}

	for i, v := range out {
		code, ok := s.symbols.Lookup(v)
		if ok {
			out[i] = code
			continue
		}

		if !isNumeric(v) {
			s.logger.Warn("no integer code for symbol, value is written bare and the artifact will not compile",
				slog.String("dataset", s.Name),
				slog.String("path", path),
				slog.String("value", v),
			)
		}
	}

	return out
}
