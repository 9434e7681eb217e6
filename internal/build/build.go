// Package build drives a complete generation run: it loads the configured
// datasets, splits each one across the output targets, writes one resource
// bundle per surviving bucket, the synthetic alias bundles, and finally one
// manifest per target.
//
// The run is sequential and stops at the first fatal error. Warnings never
// stop a run; they are logged and collected in [Result.Warnings].
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/logging"
	"github.com/hupe1980/ldml2res/internal/manifest"
	"github.com/hupe1980/ldml2res/internal/output"
	"github.com/hupe1980/ldml2res/internal/pathvalue"
	"github.com/hupe1980/ldml2res/internal/restree"
	"github.com/hupe1980/ldml2res/internal/splitter"
	"github.com/hupe1980/ldml2res/internal/version"
)

// ErrConfig is wrapped by errors caused by the build configuration rather
// than by the data.
var ErrConfig = errors.New("invalid build configuration")

// Options configures a run.
type Options struct {
	// Config is the validated build section. Required.
	Config *config.BuildConfig

	// OutputDir overrides Config.OutputDir when set.
	OutputDir string

	// ReportPath overrides Config.Report when set.
	ReportPath string

	// Year is stamped into headers. Zero means the current year.
	Year int

	// DryRun renders every artifact in memory and writes nothing.
	DryRun bool

	// Logger receives progress and warnings. Defaults to the logger in ctx.
	Logger *slog.Logger
}

// Kind classifies an artifact.
type Kind int

const (
	// KindResource is a resource bundle generated from a dataset bucket.
	KindResource Kind = iota
	// KindAlias is a synthetic alias bundle generated from the config.
	KindAlias
	// KindManifest is a per-target manifest.
	KindManifest
)

func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindAlias:
		return "alias"
	case KindManifest:
		return "manifest"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Artifact describes one generated file.
type Artifact struct {
	Target string
	Name   string
	Kind   Kind
	Path   string
	Size   int64
	Digest string

	// Data holds the rendered bytes in dry runs.
	Data []byte
}

// Target summarizes what a run produced for one target.
type Target struct {
	ID        string
	Prefix    string
	Sources   []string
	Aliases   []string
	Synthetic []string
	Pruned    []string
}

// Result is the outcome of a successful run.
type Result struct {
	Root      string
	Version   string
	Artifacts []Artifact
	Targets   []Target
	Warnings  []string
	Report    *output.Report
}

// Summary returns one table row per target.
func (r *Result) Summary() []output.TargetSummary {
	counts := make(map[string]int)

	for _, a := range r.Artifacts {
		if a.Kind != KindManifest {
			counts[a.Target]++
		}
	}

	rows := make([]output.TargetSummary, 0, len(r.Targets))
	for _, t := range r.Targets {
		rows = append(rows, output.TargetSummary{
			Target:    t.ID,
			Artifacts: counts[t.ID],
			Pruned:    len(t.Pruned),
			Sources:   len(t.Sources),
			Aliases:   len(t.Aliases) + len(t.Synthetic),
		})
	}

	return rows
}

// builder carries the state of one run.
type builder struct {
	opts     Options
	cfg      *config.BuildConfig
	logger   *slog.Logger
	year     int
	root     string
	splitter *splitter.Splitter
	result   *Result

	// per target: dataset names whose bucket declares an alias, and every
	// artifact name written.
	aliases map[string]map[string]bool
	written map[string]map[string]bool
	pruned  map[string][]string
	sources map[string]string

	version *semver.Version
}

// Run executes a build.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: no build config", ErrConfig)
	}

	b := newBuilder(ctx, opts)

	// 1. Validate configuration and target directories.
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, w := range b.cfg.Warnings() {
		b.warn(w)
	}

	if err := b.setupSplitter(); err != nil {
		return nil, err
	}

	files, err := b.cfg.ResolveDatasets()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	b.logger.Info("starting build",
		slog.String("output", b.root),
		slog.Int("datasets", len(files)),
		slog.Any("targets", b.splitter.Targets()),
		slog.Bool("dryRun", opts.DryRun),
	)

	// 2-4. Load, split and write every dataset.
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build interrupted before %s: %w", file, err)
		}

		if err := b.processFile(file); err != nil {
			return nil, err
		}
	}

	b.result.Version = b.manifestVersion()

	// 5. Synthetic aliases.
	if err := b.writeSyntheticAliases(); err != nil {
		return nil, err
	}

	// 6-7. Manifests.
	if err := b.writeManifests(); err != nil {
		return nil, err
	}

	// 8. Digest report.
	if err := b.writeReport(); err != nil {
		return nil, err
	}

	b.logger.Info("build complete",
		slog.Int("artifacts", len(b.result.Artifacts)),
		slog.Int("warnings", len(b.result.Warnings)),
		slog.String("version", b.result.Version),
	)

	return b.result, nil
}

func newBuilder(ctx context.Context, opts Options) *builder {
	logger := opts.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}

	root := opts.OutputDir
	if root == "" {
		root = opts.Config.Resolve(opts.Config.OutputDir)
	}

	return &builder{
		opts:    opts,
		cfg:     opts.Config,
		logger:  logger,
		year:    year,
		root:    root,
		result:  &Result{Root: root, Report: &output.Report{Tool: version.GetInfo().Stamp()}},
		aliases: make(map[string]map[string]bool),
		written: make(map[string]map[string]bool),
		pruned:  make(map[string][]string),
		sources: make(map[string]string),
	}
}

func (b *builder) setupSplitter() error {
	rules := make([]splitter.Rule, 0, len(b.cfg.Rules))
	for _, r := range b.cfg.Rules {
		rules = append(rules, splitter.Rule{Prefix: r.Prefix, Target: r.Target})
	}

	opts := []splitter.Option{splitter.WithLogger(b.logger)}
	if b.opts.DryRun {
		opts = append(opts, splitter.WithoutDirectories())
	}

	s, err := splitter.New(rules, b.cfg.Fallback, b.root, opts...)
	if err != nil {
		return err
	}

	b.splitter = s

	return nil
}

func (b *builder) processFile(file string) error {
	b.logger.Debug("loading dataset file", slog.String("file", file))

	stores, err := pathvalue.LoadFile(file,
		pathvalue.WithSymbols(pathvalue.Symbols(b.cfg.Symbols)),
		pathvalue.WithLogger(b.logger),
	)
	if err != nil {
		return fmt.Errorf("loading datasets: %w", err)
	}

	for _, store := range stores {
		if prev, dup := b.sources[store.Name]; dup {
			return fmt.Errorf("dataset %q is defined in both %s and %s", store.Name, prev, file)
		}

		b.sources[store.Name] = file

		if err := b.processStore(store); err != nil {
			return err
		}
	}

	return nil
}

func (b *builder) processStore(store *pathvalue.Store) error {
	if err := config.CheckLocaleID(store.Name); err != nil {
		b.warn(err.Error(), slog.String("dataset", store.Name))
	}

	b.checkVersion(store)

	res := b.splitter.Split(store)

	for _, t := range res.Pruned {
		b.pruned[t] = append(b.pruned[t], store.Name)
	}

	for _, target := range res.Targets() {
		bucket := res.Buckets[target]

		if bucket.Contains(pathvalue.AliasPath) {
			mark(b.aliases, target, store.Name)
		}

		if err := b.writeBucket(target, bucket); err != nil {
			return err
		}
	}

	return nil
}

// checkVersion tracks the highest /Version seen. A value that is not a
// version is reported and counts as 0; the artifact keeps it unchanged.
func (b *builder) checkVersion(store *pathvalue.Store) {
	tuples, ok := store.Get(pathvalue.VersionPath)
	if !ok || len(tuples) == 0 || len(tuples[0]) == 0 {
		return
	}

	raw := tuples[0][0]

	v, err := semver.NewVersion(raw)
	if err != nil {
		b.warn("unparsable version, treating as 0",
			slog.String("dataset", store.Name),
			slog.String("version", raw),
		)

		v = semver.New(0, 0, 0, "", "")
	}

	if b.version == nil || v.GreaterThan(b.version) {
		b.version = v
	}
}

func (b *builder) manifestVersion() string {
	if b.version != nil && b.version.GreaterThan(semver.New(0, 0, 0, "", "")) {
		return b.version.Original()
	}

	return b.cfg.Version
}

func (b *builder) writeBucket(target string, bucket *pathvalue.Store) error {
	forest, asmErr := restree.FromStore(bucket)
	if asmErr == nil {
		forest.Sort()
	}

	header := restree.Header{
		Tool:    b.cfg.Tool,
		Year:    b.year,
		Source:  b.relSource(bucket.Source),
		Comment: bucket.Comment,
	}

	// An assembly failure still goes through the writer so a stale
	// artifact from an earlier run is removed.
	return b.emit(target, bucket.Name, KindResource, func(w io.Writer) error {
		if asmErr != nil {
			return asmErr
		}

		return forest.Serialize(w, header)
	})
}

// relSource makes a dataset file path relative to the config directory so
// headers do not depend on where the tree is checked out.
func (b *builder) relSource(src string) string {
	if b.cfg.BaseDir != "" {
		if rel, err := filepath.Rel(b.cfg.BaseDir, src); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.ToSlash(src)
}

func (b *builder) writeSyntheticAliases() error {
	for _, target := range b.splitter.Targets() {
		for _, a := range b.cfg.AliasesFor(target) {
			if b.written[target][a.From] {
				return fmt.Errorf("%w: alias %q collides with a dataset in target %q", ErrConfig, a.From, target)
			}

			forest := restree.Forest{restree.NewTable(a.From)}
			forest[0].Add(restree.NewString(pathvalue.AliasPath[1:], a.To))

			header := restree.Header{
				Tool:    b.cfg.Tool,
				Year:    b.year,
				Source:  "synthetic",
				Comment: fmt.Sprintf("Alias %s -> %s", a.From, a.To),
			}

			if err := b.emit(target, a.From, KindAlias, func(w io.Writer) error {
				return forest.Serialize(w, header)
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *builder) writeManifests() error {
	registry := b.splitter.Registry()

	for _, target := range b.splitter.Targets() {
		t := Target{
			ID:     target,
			Prefix: b.prefix(target),
			Pruned: b.pruned[target],
		}

		for _, name := range registry[target] {
			if b.aliases[target][name] {
				t.Aliases = append(t.Aliases, name)
			} else {
				t.Sources = append(t.Sources, name)
			}
		}

		for _, a := range b.cfg.AliasesFor(target) {
			t.Synthetic = append(t.Synthetic, a.From)
		}

		slices.Sort(t.Synthetic)

		data := manifest.Generate(manifest.Input{
			Prefix:           t.Prefix,
			Tool:             b.cfg.Tool,
			Year:             b.year,
			Version:          b.result.Version,
			SyntheticAliases: t.Synthetic,
			Aliases:          t.Aliases,
			Sources:          t.Sources,
		})

		if err := b.emitFile(target, manifest.FileName, KindManifest,
			filepath.Join(b.splitter.Dir(target), manifest.FileName),
			func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}); err != nil {
			return err
		}

		b.result.Targets = append(b.result.Targets, t)
	}

	return nil
}

func (b *builder) prefix(target string) string {
	if p, ok := b.cfg.ManifestPrefixes[target]; ok {
		return p
	}

	return manifest.DefaultPrefix(target)
}

func (b *builder) writeReport() error {
	b.result.Report.Version = b.result.Version

	path := b.opts.ReportPath
	if path == "" {
		path = b.cfg.Resolve(b.cfg.Report)
	}

	if path == "" || b.opts.DryRun {
		return nil
	}

	data, err := b.result.Report.Marshal()
	if err != nil {
		return err
	}

	if _, err := output.NewFileWriter(path, output.WithLogger(b.logger)).Write(data); err != nil {
		return err
	}

	b.logger.Info("wrote report", slog.String("path", path))

	return nil
}

// emit writes the bundle for name into target's directory.
func (b *builder) emit(target, name string, kind Kind, fn func(io.Writer) error) error {
	dir := b.splitter.Dir(target)
	path := filepath.Join(dir, name+manifest.Extension)

	if filepath.Dir(path) != filepath.Clean(dir) {
		return fmt.Errorf("bundle %q would be written outside %s", name, dir)
	}

	if err := b.emitFile(target, name, kind, path, fn); err != nil {
		return err
	}

	mark(b.written, target, name)

	return nil
}

func (b *builder) emitFile(target, name string, kind Kind, path string, fn func(io.Writer) error) error {
	a := Artifact{Target: target, Name: name, Kind: kind, Path: path}

	if b.opts.DryRun {
		var buf bytes.Buffer
		if err := fn(&buf); err != nil {
			return fmt.Errorf("rendering %s: %w", path, err)
		}

		a.Data = buf.Bytes()
		a.Size = int64(buf.Len())
		a.Digest = output.Digest(a.Data)
	} else {
		st, err := output.NewFileWriter(path, output.WithLogger(b.logger)).WriteWith(fn)
		if err != nil {
			return err
		}

		a.Size = st.Size
		a.Digest = st.Digest
	}

	b.logger.Debug("wrote artifact",
		slog.String("target", target),
		slog.String("name", name),
		slog.String("kind", kind.String()),
		slog.Int64("size", a.Size),
	)

	b.result.Artifacts = append(b.result.Artifacts, a)

	b.result.Report.Add(b.root, target, name, output.Stat{Path: path, Size: a.Size, Digest: a.Digest})

	return nil
}

// warn logs a warning and records it in the result.
func (b *builder) warn(msg string, attrs ...slog.Attr) {
	b.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)

	text := msg
	for _, a := range attrs {
		text += " " + a.String()
	}

	b.result.Warnings = append(b.result.Warnings, text)
}

func mark(m map[string]map[string]bool, target, name string) {
	set, ok := m[target]
	if !ok {
		set = make(map[string]bool)
		m[target] = set
	}

	set[name] = true
}
