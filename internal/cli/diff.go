package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ldml2res/internal/build"
	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/manifest"
	"github.com/hupe1980/ldml2res/internal/output"
)

type diffOptions struct {
	buildFlags

	// Compare copyright years too.
	strictYear bool

	// Only list drifted files.
	nameOnly bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the output tree against a fresh build",
		Long: `Diff regenerates every artifact in memory and compares it with the
files currently in the output tree. Missing files, changed files, and
files no longer produced are all reported as drift. The copyright year in
headers is ignored unless --strict-year is given.

Exit codes:
  0  No differences
  1  Error
  2  Invalid configuration or arguments
  8  Drift detected`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(runDiff(cmd.Context(), cmd, opts))
		},
	}

	registerBuildFlags(cmd, &opts.buildFlags)

	f := cmd.Flags()
	f.BoolVar(&opts.strictYear, "strict-year", false, "treat a changed copyright year as drift")
	f.BoolVar(&opts.nameOnly, "name-only", false, "list drifted files without diffs")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, opts *diffOptions) error {
	bcfg, err := loadBuildConfig(ctx)
	if err != nil {
		return err
	}

	res, err := build.Run(ctx, build.Options{
		Config:    bcfg,
		Year:      opts.year,
		DryRun:    true,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	color := !config.FromContext(ctx).NoColor

	drift, err := compareArtifacts(w, res, opts, color)
	if err != nil {
		return err
	}

	stale, err := staleFiles(res)
	if err != nil {
		return err
	}

	for _, p := range stale {
		_, _ = fmt.Fprintf(w, "stale: %s\n", relTo(res.Root, p))
	}

	drift += len(stale)

	if drift > 0 {
		return &ExitError{Code: codeDrift, Err: fmt.Errorf("%d files differ from a fresh build", drift)}
	}

	_, _ = fmt.Fprintln(w, "No differences.")

	return nil
}

// compareArtifacts diffs each generated artifact against its file on disk
// and returns how many differ.
func compareArtifacts(w io.Writer, res *build.Result, opts *diffOptions, color bool) (int, error) {
	drift := 0

	for _, a := range res.Artifacts {
		rel := relTo(res.Root, a.Path)

		existing, err := os.ReadFile(a.Path)
		if errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintf(w, "missing: %s\n", rel)
			drift++

			continue
		}

		if err != nil {
			return 0, &ExitError{Code: codeIO, Err: fmt.Errorf("reading %s: %w", a.Path, err)}
		}

		dopts := output.DefaultDiffOptions()
		dopts.OldLabel = "existing/" + rel
		dopts.NewLabel = "regenerated/" + rel
		dopts.IgnoreYear = !opts.strictYear

		result, err := output.ComputeDiff(string(existing), string(a.Data), dopts)
		if err != nil {
			return 0, err
		}

		if !result.HasDifferences {
			continue
		}

		drift++

		if opts.nameOnly {
			_, _ = fmt.Fprintf(w, "changed: %s\n", rel)
			continue
		}

		output.WriteDiff(w, result, color)
	}

	return drift, nil
}

// staleFiles lists bundles and manifests in the target directories that a
// fresh build would not produce.
func staleFiles(res *build.Result) ([]string, error) {
	generated := make(map[string]bool, len(res.Artifacts))
	for _, a := range res.Artifacts {
		generated[a.Path] = true
	}

	var stale []string

	for _, t := range res.Targets {
		dir := filepath.Join(res.Root, t.ID)

		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, &ExitError{Code: codeIO, Err: fmt.Errorf("reading %s: %w", dir, err)}
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || (name != manifest.FileName && !strings.HasSuffix(name, manifest.Extension)) {
				continue
			}

			if p := filepath.Join(dir, name); !generated[p] {
				stale = append(stale, p)
			}
		}
	}

	return stale, nil
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}

	return filepath.ToSlash(rel)
}
