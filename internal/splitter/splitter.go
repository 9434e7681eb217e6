// Package splitter partitions one logical dataset across several output
// targets using ordered prefix rules.
//
// Routing is total and deterministic: every path lands in exactly one
// target (the first rule whose prefix matches, otherwise the fallback),
// except the version and parent paths which are replicated into every
// target so each artifact stands on its own.
package splitter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/hupe1980/ldml2res/internal/pathvalue"
)

// ErrConfig is wrapped by every target validation failure.
var ErrConfig = errors.New("invalid split configuration")

// ConfigError reports a target that cannot be written to.
type ConfigError struct {
	Target string
	Dir    string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("target %q: %v", e.Target, e.Err)
	}

	return fmt.Sprintf("target %q (%s): %v", e.Target, e.Dir, e.Err)
}

// Unwrap returns both the cause and ErrConfig.
func (e *ConfigError) Unwrap() []error { return []error{ErrConfig, e.Err} }

// Rule routes every path whose routing key starts with Prefix to Target.
type Rule struct {
	Prefix string `json:"prefix"`
	Target string `json:"target"`
}

// replicated paths are copied into every bucket.
var replicated = []string{pathvalue.VersionPath, pathvalue.ParentPath}

// localePattern matches the lang[_Script][_REGION] naming convention.
var localePattern = regexp.MustCompile(`^[a-z]{2,3}(_[A-Z][a-z]{3})?(_([A-Z]{2}|[0-9]{3}))?$`)

// Splitter routes stores into per-target buckets and remembers which
// datasets contributed to each target.
type Splitter struct {
	rules    []Rule
	fallback string
	root     string
	targets  []string
	registry map[string]map[string]struct{}
	logger   *slog.Logger
	noDirs   bool
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithLogger sets the logger for routing diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) {
		s.logger = logger
	}
}

// WithoutDirectories skips target directory validation. Used for in-memory
// runs that never write.
func WithoutDirectories() Option {
	return func(s *Splitter) {
		s.noDirs = true
	}
}

// New validates the configuration and every target directory under root
// (root/<target>), creating missing directories. It fails before any data
// is processed if a target directory cannot be created or written.
func New(rules []Rule, fallback, root string, opts ...Option) (*Splitter, error) {
	s := &Splitter{
		rules:    slices.Clone(rules),
		fallback: fallback,
		root:     root,
		registry: make(map[string]map[string]struct{}),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if fallback == "" {
		return nil, &ConfigError{Err: errors.New("fallback target is required")}
	}

	for i, r := range rules {
		if r.Prefix == "" || r.Target == "" {
			return nil, &ConfigError{Target: r.Target, Err: fmt.Errorf("rule %d: prefix and target are required", i)}
		}

		if !slices.Contains(s.targets, r.Target) {
			s.targets = append(s.targets, r.Target)
		}
	}

	if !slices.Contains(s.targets, fallback) {
		s.targets = append(s.targets, fallback)
	}

	for _, t := range s.targets {
		if s.noDirs {
			break
		}

		if err := ensureWritable(filepath.Join(root, t)); err != nil {
			return nil, &ConfigError{Target: t, Dir: filepath.Join(root, t), Err: err}
		}
	}

	return s, nil
}

// ensureWritable creates dir if needed and proves it accepts new files.
func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ldml2res-check-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}

	name := tmp.Name()
	_ = tmp.Close()

	if err := os.Remove(name); err != nil {
		return fmt.Errorf("removing write check file: %w", err)
	}

	return nil
}

// Targets returns every target id: rule targets in declaration order, then
// the fallback.
func (s *Splitter) Targets() []string {
	return slices.Clone(s.targets)
}

// Fallback returns the fallback target id.
func (s *Splitter) Fallback() string {
	return s.fallback
}

// Dir returns the output directory of target.
func (s *Splitter) Dir(target string) string {
	return filepath.Join(s.root, target)
}

// Result is the outcome of splitting one store.
type Result struct {
	// Buckets holds the surviving bucket per target id.
	Buckets map[string]*pathvalue.Store
	// Pruned lists the target ids whose stub bucket was dropped.
	Pruned []string

	order []string
}

// Targets returns the ids of the surviving buckets in splitter order.
func (r *Result) Targets() []string {
	out := make([]string, 0, len(r.Buckets))
	for _, t := range r.order {
		if _, ok := r.Buckets[t]; ok {
			out = append(out, t)
		}
	}

	return out
}

// Split partitions store into one bucket per target.
func (s *Splitter) Split(store *pathvalue.Store) *Result {
	buckets := make(map[string]*pathvalue.Store, len(s.targets))
	for _, t := range s.targets {
		buckets[t] = store.NewLike()
	}

	routed := make(map[string]int, len(s.targets))

	for _, path := range store.Paths() {
		if IsReplicated(path) {
			for _, t := range s.targets {
				buckets[t].CopyFrom(store, path)
			}

			continue
		}

		target := s.Route(path)
		buckets[target].CopyFrom(store, path)
		routed[target]++
	}

	for target, n := range routed {
		if n > 0 {
			s.register(target, store.Name)
		}
	}

	res := &Result{Buckets: buckets, order: s.targets}

	for _, t := range s.targets {
		if t == s.fallback {
			continue
		}

		if isPrunableStub(buckets[t]) {
			delete(buckets, t)
			res.Pruned = append(res.Pruned, t)
			s.logger.Info("pruned stub bucket",
				slog.String("dataset", store.Name),
				slog.String("target", t),
			)
		}
	}

	s.logger.Debug("dataset split",
		slog.String("dataset", store.Name),
		slog.Int("paths", store.Len()),
		slog.Int("buckets", len(buckets)),
		slog.Int("pruned", len(res.Pruned)),
	)

	return res
}

// IsReplicated reports whether path is copied into every bucket instead of
// being routed.
func IsReplicated(path string) bool {
	return slices.Contains(replicated, path)
}

// Route returns the target of a non-replicated path: the first rule whose
// prefix is a literal prefix of the routing key, else the fallback.
func (s *Splitter) Route(path string) string {
	key := pathvalue.RoutingKey(path)

	for _, r := range s.rules {
		if strings.HasPrefix(key, r.Prefix) {
			return r.Target
		}
	}

	return s.fallback
}

// Registry returns, per target id, the sorted names of the datasets that
// contributed at least one routed path across all Split calls.
func (s *Splitter) Registry() map[string][]string {
	out := make(map[string][]string, len(s.registry))
	for t, names := range s.registry {
		list := make([]string, 0, len(names))
		for n := range names {
			list = append(list, n)
		}

		slices.Sort(list)
		out[t] = list
	}

	return out
}

func (s *Splitter) register(target, name string) {
	names, ok := s.registry[target]
	if !ok {
		names = make(map[string]struct{})
		s.registry[target] = names
	}

	names[name] = struct{}{}
}

// isPrunableStub reports whether a bucket holds nothing but the version and
// is named like a locale whose stub is not needed. A stub is kept when the
// subtag after the first underscore does not have exactly four characters.
func isPrunableStub(b *pathvalue.Store) bool {
	if b.Len() != 1 || !b.Contains(pathvalue.VersionPath) {
		return false
	}

	if !localePattern.MatchString(b.Name) {
		return false
	}

	_, rest, found := strings.Cut(b.Name, "_")
	if !found {
		return true
	}

	subtag, _, _ := strings.Cut(rest, "_")

	return len(subtag) == 4
}
