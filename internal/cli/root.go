// Package cli implements the cobra command tree for ldml2res.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ldml2res/internal/build"
	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/logging"
	"github.com/hupe1980/ldml2res/internal/output"
	"github.com/hupe1980/ldml2res/internal/restree"
	"github.com/hupe1980/ldml2res/internal/splitter"
)

// Process exit codes.
const (
	codeOK        = 0
	codeError     = 1
	codeUsage     = 2
	codeIO        = 6
	codeMalformed = 7
	codeDrift     = 8
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it under ctx, and returns the exit
// code.
func Execute(ctx context.Context) int {
	cmd, closeLog := newRootCommand()

	err := cmd.ExecuteContext(ctx)

	if cerr := closeLog(); cerr != nil {
		fmt.Fprintln(os.Stderr, "Error: closing log file:", cerr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return codeError
	}

	return codeOK
}

// classify attaches the exit code matching the kind of failure.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		exitErr  *ExitError
		writeErr *output.WriteError
	)

	switch {
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, restree.ErrMalformed):
		return &ExitError{Code: codeMalformed, Err: err}
	case errors.Is(err, build.ErrConfig),
		errors.Is(err, splitter.ErrConfig),
		errors.Is(err, config.ErrNoBuildConfig):
		return &ExitError{Code: codeUsage, Err: err}
	case errors.As(err, &writeErr):
		return &ExitError{Code: codeIO, Err: err}
	default:
		return &ExitError{Code: codeError, Err: err}
	}
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

// newRootCommand also returns a func that closes the log destination opened
// by the command's pre-run hook.
func newRootCommand() (*cobra.Command, func() error) {
	var (
		cfgFile string
		logOut  io.Closer
	)

	closeLog := func() error {
		if logOut == nil {
			return nil
		}

		err := logOut.Close()
		logOut = nil

		return err
	}

	cmd := &cobra.Command{
		Use:   "ldml2res",
		Short: "Generate partitioned locale resource bundles",
		Long: `ldml2res turns locale datasets into textual resource bundles.

Each dataset is split across output targets by path prefix rules, every
surviving bucket is written as a sorted resource bundle, and one build
manifest is generated per target listing the bundles and aliases it holds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: codeUsage, Err: err}
			}

			logger, closer := logging.Setup(cfg)
			logOut = closer

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = config.NewContextWithConfigFile(ctx, cfg.ConfigFile)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("configFile", cfg.ConfigFile),
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .ldml2res.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.String("log-file", "", "write logs to a rotated file instead of stderr")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: codeUsage, Err: err}
	})

	cmd.AddCommand(
		newBuildCommand(),
		newDiffCommand(),
		newInspectCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd, closeLog
}
