package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hupe1980/ldml2res/internal/build"
	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/logging"
	"github.com/hupe1980/ldml2res/internal/pathvalue"
	"github.com/hupe1980/ldml2res/internal/splitter"
)

type inspectOptions struct {
	format string
}

// routedPath is one line of inspect output.
type routedPath struct {
	Path   string `json:"path"`
	Target string `json:"target"`
	Values int    `json:"values"`
}

// inspectedDataset is the inspect view of one dataset.
type inspectedDataset struct {
	Name   string       `json:"name"`
	Source string       `json:"source"`
	Paths  []routedPath `json:"paths"`
	Pruned []string     `json:"pruned,omitempty"`
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <dataset-file>",
		Short: "Show where each path of a dataset would be routed",
		Long: `Inspect loads a dataset file and prints, for every path, the target it
would be routed to under the configured rules. Replicated paths are shown
with target "*". Targets whose bucket would be pruned as a stub are listed
per dataset. Nothing is written.

Without a config file every path goes to the fallback target.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDatasetFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], opts))
		},
	}

	f := cmd.Flags()
	f.String("fallback", "", "override the fallback target")
	f.StringVar(&opts.format, "format", "table", "output format: table, json")

	_ = cmd.RegisterFlagCompletionFunc("fallback", completeTargets)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func runInspect(ctx context.Context, w io.Writer, file string, opts *inspectOptions) error {
	if opts.format != "table" && opts.format != "json" {
		return &ExitError{Code: codeUsage, Err: fmt.Errorf("unsupported format %q: must be table or json", opts.format)}
	}

	logger := logging.FromContext(ctx)

	cfg := config.FromContext(ctx)

	bcfg, err := cfg.LoadBuild()
	if errors.Is(err, config.ErrNoBuildConfig) {
		bcfg = &config.BuildConfig{Fallback: config.DefaultFallback}
		if cfg.Fallback != "" {
			bcfg.Fallback = cfg.Fallback
		}
	} else if err != nil {
		return fmt.Errorf("%w: %w", build.ErrConfig, err)
	}

	rules := make([]splitter.Rule, 0, len(bcfg.Rules))
	for _, r := range bcfg.Rules {
		rules = append(rules, splitter.Rule{Prefix: r.Prefix, Target: r.Target})
	}

	sp, err := splitter.New(rules, bcfg.Fallback, "", splitter.WithoutDirectories(), splitter.WithLogger(logger))
	if err != nil {
		return err
	}

	stores, err := pathvalue.LoadFile(file,
		pathvalue.WithSymbols(pathvalue.Symbols(bcfg.Symbols)),
		pathvalue.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	datasets := make([]inspectedDataset, 0, len(stores))

	for _, store := range stores {
		ds := inspectedDataset{Name: store.Name, Source: store.Source}

		for path, tuples := range store.All() {
			target := "*"
			if !splitter.IsReplicated(path) {
				target = sp.Route(path)
			}

			ds.Paths = append(ds.Paths, routedPath{Path: path, Target: target, Values: len(tuples)})
		}

		ds.Pruned = sp.Split(store).Pruned
		datasets = append(datasets, ds)
	}

	if opts.format == "json" {
		data, err := json.MarshalIndent(datasets, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding inspect output: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	}

	for i, ds := range datasets {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}

		writeInspectTable(w, ds)
	}

	return nil
}

func writeInspectTable(w io.Writer, ds inspectedDataset) {
	_, _ = fmt.Fprintf(w, "Dataset: %s (%s)\n", ds.Name, ds.Source)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Path", "Target", "Values"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, p := range ds.Paths {
		table.Append([]string{p.Path, p.Target, fmt.Sprintf("%d", p.Values)})
	}

	table.Render()

	if len(ds.Pruned) > 0 {
		_, _ = fmt.Fprintf(w, "Pruned stubs: %s\n", strings.Join(ds.Pruned, ", "))
	}
}
