package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/ldml2res/internal/pathvalue"
	"github.com/hupe1980/ldml2res/internal/version"
)

// Build defaults.
const (
	DefaultFallback  = "locales"
	DefaultOutputDir = "out"
	DefaultTool      = version.ToolName
)

// RootLocale is the pseudo-locale at the top of every fallback chain.
const RootLocale = "root"

// BuildConfig holds the build section loaded from the config file
// (.ldml2res.yaml).
type BuildConfig struct {
	// OutputDir is the root under which one directory per target is written.
	OutputDir string `json:"outputDir,omitempty"`

	// Fallback is the target receiving every path no rule matches.
	Fallback string `json:"fallback,omitempty"`

	// Datasets lists dataset files or glob patterns, in load order.
	Datasets []string `json:"datasets,omitempty"`

	// Rules route path prefixes to targets. The first match wins.
	Rules []Rule `json:"rules,omitempty"`

	// Symbols maps symbolic names to integer codes for :int paths.
	Symbols map[string]string `json:"symbols,omitempty"`

	// Aliases are synthetic locale aliases written as alias artifacts.
	Aliases []Alias `json:"aliases,omitempty"`

	// ManifestPrefixes overrides the make variable prefix per target.
	ManifestPrefixes map[string]string `json:"manifestPrefixes,omitempty"`

	// Version is the CLDR version written to manifests when no dataset
	// carries a usable /Version.
	Version string `json:"version,omitempty"`

	// Tool is the generator name stamped into artifact headers.
	Tool string `json:"tool,omitempty"`

	// Report is an optional path for the digest report.
	Report string `json:"report,omitempty"`

	// BaseDir resolves relative paths. Set by LoadBuildConfig.
	BaseDir string `json:"-"`
}

// Rule routes paths starting with Prefix to Target.
type Rule struct {
	Prefix string `json:"prefix"`
	Target string `json:"target"`
}

// Alias declares that locale From resolves to locale To.
type Alias struct {
	From string `json:"from"`
	To   string `json:"to"`

	// Targets restricts the alias to the named targets. Empty means every
	// target.
	Targets []string `json:"targets,omitempty"`
}

// ErrNoBuildConfig is returned when no config file is available to build from.
var ErrNoBuildConfig = errors.New("no build config: pass --config or create .ldml2res.yaml")

var prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// LoadBuildConfig reads path and parses its build section. Relative paths in
// the file are resolved against the file's directory.
func LoadBuildConfig(path string) (*BuildConfig, error) {
	if path == "" {
		return nil, ErrNoBuildConfig
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		return nil, fmt.Errorf("reading build config: %w", err)
	}

	cfg, err := ParseBuildConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.BaseDir = filepath.Dir(path)

	return cfg, nil
}

// ParseBuildConfig parses the build section from raw config file bytes and
// applies defaults. Keys belonging to the global config are ignored.
func ParseBuildConfig(data []byte) (*BuildConfig, error) {
	var cfg BuildConfig

	if err := sigsyaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing build config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *BuildConfig) applyDefaults() {
	if c.Fallback == "" {
		c.Fallback = DefaultFallback
	}

	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}

	if c.Tool == "" {
		c.Tool = DefaultTool
	}
}

// Validate checks the build config for correctness.
func (c *BuildConfig) Validate() error {
	if c.Fallback == "" {
		return errors.New("fallback target is required")
	}

	if len(c.Datasets) == 0 {
		return errors.New("at least one dataset is required")
	}

	for i, r := range c.Rules {
		if r.Prefix == "" {
			return fmt.Errorf("rules[%d]: prefix is required", i)
		}

		if r.Target == "" {
			return fmt.Errorf("rules[%d]: target is required", i)
		}
	}

	targets := c.Targets()

	for i, a := range c.Aliases {
		if a.From == "" || a.To == "" {
			return fmt.Errorf("aliases[%d]: from and to are required", i)
		}

		if err := pathvalue.CheckName(a.From); err != nil {
			return fmt.Errorf("aliases[%d]: from: %w", i, err)
		}

		if a.From == a.To {
			return fmt.Errorf("aliases[%d]: %q aliases itself", i, a.From)
		}

		if a.From == RootLocale {
			return fmt.Errorf("aliases[%d]: %q cannot be an alias", i, RootLocale)
		}

		for _, t := range a.Targets {
			if !slices.Contains(targets, t) {
				return fmt.Errorf("aliases[%d]: unknown target %q", i, t)
			}
		}
	}

	for target, prefix := range c.ManifestPrefixes {
		if !prefixPattern.MatchString(prefix) {
			return fmt.Errorf("manifestPrefixes[%s]: %q is not a valid make variable prefix", target, prefix)
		}
	}

	return nil
}

// Targets returns every rule target in declaration order followed by the
// fallback, without duplicates.
func (c *BuildConfig) Targets() []string {
	var out []string

	for _, r := range c.Rules {
		if !slices.Contains(out, r.Target) {
			out = append(out, r.Target)
		}
	}

	if !slices.Contains(out, c.Fallback) {
		out = append(out, c.Fallback)
	}

	return out
}

// AliasesFor returns the aliases that apply to target.
func (c *BuildConfig) AliasesFor(target string) []Alias {
	var out []Alias

	for _, a := range c.Aliases {
		if len(a.Targets) == 0 || slices.Contains(a.Targets, target) {
			out = append(out, a)
		}
	}

	return out
}

// Warnings reports suspicious but accepted values.
func (c *BuildConfig) Warnings() []string {
	var out []string

	for _, a := range c.Aliases {
		for _, id := range []string{a.From, a.To} {
			if err := CheckLocaleID(id); err != nil {
				out = append(out, err.Error())
			}
		}
	}

	return out
}

// Resolve returns p relative to BaseDir unless it is absolute.
func (c *BuildConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}

	return filepath.Join(c.BaseDir, p)
}

// ResolveDatasets expands the dataset patterns into file paths. Each
// pattern's matches are sorted; a file matched twice is loaded once.
func (c *BuildConfig) ResolveDatasets() ([]string, error) {
	var (
		files []string
		seen  = make(map[string]bool)
	)

	for _, pattern := range c.Datasets {
		matches, err := filepath.Glob(c.Resolve(pattern))
		if err != nil {
			return nil, fmt.Errorf("dataset pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			return nil, fmt.Errorf("dataset pattern %q matched no files", pattern)
		}

		slices.Sort(matches)

		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

// CheckLocaleID reports whether id is a well-formed locale identifier once
// underscores are read as BCP 47 separators. The root locale is always
// accepted.
func CheckLocaleID(id string) error {
	if id == RootLocale {
		return nil
	}

	if _, err := language.Parse(strings.ReplaceAll(id, "_", "-")); err != nil {
		return fmt.Errorf("locale id %q is not well-formed: %w", id, err)
	}

	return nil
}
