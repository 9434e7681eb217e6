// Package ldml2res provides a public Go API for generating partitioned
// locale resource bundles and their build manifests.
//
// This package exposes the ldml2res build as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result, err := ldml2res.Build(ctx, "i18n/.ldml2res.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range result.Artifacts {
//	    fmt.Println(a.Path, a.Digest)
//	}
//
// With options:
//
//	result, err := ldml2res.Build(ctx, "i18n/.ldml2res.yaml",
//	    ldml2res.WithOutputDir("build/res"),
//	    ldml2res.WithYear(2026),
//	    ldml2res.WithDryRun(),
//	)
package ldml2res

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/ldml2res/internal/build"
	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/logging"
	"github.com/hupe1980/ldml2res/internal/restree"
	"github.com/hupe1980/ldml2res/internal/splitter"
)

// Sentinel errors, usable with errors.Is.
var (
	// ErrConfig marks failures caused by the configuration, including
	// target directories that cannot be written.
	ErrConfig = build.ErrConfig

	// ErrMalformed marks resource data that cannot form a valid tree.
	ErrMalformed = restree.ErrMalformed
)

// Option configures a build.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	outputDir  string
	reportPath string
	fallback   string
	year       int
	dryRun     bool
	logger     *slog.Logger
}

// WithOutputDir overrides the output root from the config.
func WithOutputDir(dir string) Option { return func(o *options) { o.outputDir = dir } }

// WithReport writes a digest report to path.
func WithReport(path string) Option { return func(o *options) { o.reportPath = path } }

// WithFallback overrides the fallback target from the config.
func WithFallback(target string) Option { return func(o *options) { o.fallback = target } }

// WithYear sets the copyright year stamped into headers.
func WithYear(year int) Option { return func(o *options) { o.year = year } }

// WithDryRun renders every artifact in memory without writing.
func WithDryRun() Option { return func(o *options) { o.dryRun = true } }

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// Artifact is one generated file.
type Artifact struct {
	Target string
	Name   string
	// Kind is "resource", "alias", or "manifest".
	Kind   string
	Path   string
	Size   int64
	Digest string
	// Data holds the rendered bytes in dry runs.
	Data []byte
}

// Result holds the output of a successful build.
type Result struct {
	// Root is the output root directory.
	Root string
	// Version is the CLDR version written to the manifests.
	Version string
	// Artifacts lists every generated file in write order.
	Artifacts []Artifact
	// Pruned maps target ids to the datasets whose stub was dropped there.
	Pruned map[string][]string
	// Warnings collects non-fatal diagnostics.
	Warnings []string
}

// Build loads the config file at configPath and runs a complete build.
func Build(ctx context.Context, configPath string, opts ...Option) (*Result, error) {
	if configPath == "" {
		return nil, errors.New("config path must not be empty")
	}

	cfg, err := config.LoadBuildConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return run(ctx, cfg, opts)
}

// BuildFromConfig runs a build from the raw bytes of a config file.
// Relative paths in the config resolve against baseDir.
func BuildFromConfig(ctx context.Context, data []byte, baseDir string, opts ...Option) (*Result, error) {
	cfg, err := config.ParseBuildConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	cfg.BaseDir = baseDir

	return run(ctx, cfg, opts)
}

// IsConfigError reports whether err was caused by the configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, splitter.ErrConfig)
}

func run(ctx context.Context, cfg *config.BuildConfig, opts []Option) (*Result, error) {
	o := &options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	if o.fallback != "" {
		cfg.Fallback = o.fallback
	}

	res, err := build.Run(ctx, build.Options{
		Config:     cfg,
		OutputDir:  o.outputDir,
		ReportPath: o.reportPath,
		Year:       o.year,
		DryRun:     o.dryRun,
		Logger:     o.logger,
	})
	if err != nil {
		return nil, err
	}

	out := &Result{
		Root:     res.Root,
		Version:  res.Version,
		Pruned:   make(map[string][]string),
		Warnings: res.Warnings,
	}

	for _, a := range res.Artifacts {
		out.Artifacts = append(out.Artifacts, Artifact{
			Target: a.Target,
			Name:   a.Name,
			Kind:   a.Kind.String(),
			Path:   a.Path,
			Size:   a.Size,
			Digest: a.Digest,
			Data:   a.Data,
		})
	}

	for _, t := range res.Targets {
		if len(t.Pruned) > 0 {
			out.Pruned[t.ID] = t.Pruned
		}
	}

	return out, nil
}
