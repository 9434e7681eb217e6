package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ldml2res/internal/build"
	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/output"
)

type buildOptions struct {
	buildFlags

	report string
	dryRun bool
}

func newBuildCommand() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate resource bundles and manifests",
		Long: `Build loads every dataset named in the config file, splits it across
the configured targets, and writes one resource bundle per surviving
bucket plus a resfiles.mk manifest per target.

The run stops at the first error. A bundle that cannot be written
completely is removed, together with any earlier version of it.

Exit codes:
  0  Success
  1  Error
  2  Invalid configuration or arguments
  6  Output could not be written
  7  Malformed resource data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(runBuild(cmd.Context(), cmd, opts))
		},
	}

	registerBuildFlags(cmd, &opts.buildFlags)
	cmd.Flags().StringVar(&opts.report, "report", "", "write a digest report to this path")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "render everything in memory without writing")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts *buildOptions) error {
	bcfg, err := loadBuildConfig(ctx)
	if err != nil {
		return err
	}

	res, err := build.Run(ctx, build.Options{
		Config:     bcfg,
		ReportPath: opts.report,
		Year:       opts.year,
		DryRun:     opts.dryRun,
	})
	if err != nil {
		return err
	}

	if config.FromContext(ctx).Quiet {
		return nil
	}

	w := cmd.OutOrStdout()
	output.WriteSummary(w, res.Summary())

	if len(res.Warnings) > 0 {
		_, _ = fmt.Fprintf(w, "\n%d warnings (see log)\n", len(res.Warnings))
	}

	return nil
}
