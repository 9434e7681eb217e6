package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ldml2res/internal/config"
	"github.com/hupe1980/ldml2res/internal/version"
)

// versionReport is the --json form of the version command. Stamp is the
// generator identity written into digest reports; Defaults are the build
// settings applied when the config file leaves them out.
type versionReport struct {
	version.Info
	Stamp    string        `json:"stamp"`
	Defaults buildDefaults `json:"defaults"`
}

type buildDefaults struct {
	Fallback   string `json:"fallback"`
	OutputDir  string `json:"outputDir"`
	Tool       string `json:"tool"`
	RootLocale string `json:"rootLocale"`
}

func newVersionReport() versionReport {
	info := version.GetInfo()

	return versionReport{
		Info:  info,
		Stamp: info.Stamp(),
		Defaults: buildDefaults{
			Fallback:   config.DefaultFallback,
			OutputDir:  config.DefaultOutputDir,
			Tool:       config.DefaultTool,
			RootLocale: config.RootLocale,
		},
	}
}

func newVersionCommand() *cobra.Command {
	var (
		jsonOutput bool
		short      bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the build metadata, the generator stamp written into digest
reports, and the build defaults used when the config file omits them.`,
		Args: cobra.NoArgs,
		// Override parent PersistentPreRunE: version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeVersion(cmd.OutOrStdout(), newVersionReport(), jsonOutput, short)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "print only the generator stamp")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}

func writeVersion(w io.Writer, r versionReport, jsonOutput, short bool) error {
	switch {
	case short:
		_, err := fmt.Fprintln(w, r.Stamp)
		return err
	case jsonOutput:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling version info: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	}

	_, err := fmt.Fprintf(w, "%s\nstamp:    %s\ndefaults: fallback=%s output-dir=%s tool=%s root=%s\n",
		r.Info.String(), r.Stamp,
		r.Defaults.Fallback, r.Defaults.OutputDir, r.Defaults.Tool, r.Defaults.RootLocale)

	return err
}
