package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ldml2res/internal/build"
	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/logging"
)

// buildFlags are shared by the commands that run the generator. The
// --output-dir and --fallback values reach the build through config.Load,
// which binds them with the same precedence as the global flags.
type buildFlags struct {
	year int
}

func registerBuildFlags(cmd *cobra.Command, opts *buildFlags) {
	f := cmd.Flags()
	f.StringP("output-dir", "o", "", "output root (default: outputDir from the config file)")
	f.String("fallback", "", "override the fallback target")
	f.IntVar(&opts.year, "year", 0, "copyright year stamped into headers (default: current year)")

	_ = cmd.RegisterFlagCompletionFunc("fallback", completeTargets)
	_ = cmd.RegisterFlagCompletionFunc("output-dir", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	})
}

// loadBuildConfig reads the build section of the resolved config file with
// the flag and environment overrides applied.
func loadBuildConfig(ctx context.Context) (*config.BuildConfig, error) {
	cfg, err := config.FromContext(ctx).LoadBuild()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", build.ErrConfig, err)
	}

	logging.FromContext(ctx).Debug("build config loaded",
		slog.String("path", config.ConfigFileFromContext(ctx)),
		slog.Int("datasets", len(cfg.Datasets)),
		slog.Int("rules", len(cfg.Rules)),
		slog.String("fallback", cfg.Fallback),
		slog.String("output", cfg.OutputDir),
	)

	return cfg, nil
}
