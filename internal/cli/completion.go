package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/ldml2res/internal/config"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for bash, zsh, fish or powershell.

Besides commands and flags, the scripts complete dataset files for
"inspect" and the targets of the build config for "--fallback":

  $ source <(ldml2res completion bash)
  $ ldml2res completion zsh > "${fpath[1]}/_ldml2res"
  $ ldml2res completion fish > ~/.config/fish/completions/ldml2res.fish
  PS> ldml2res completion powershell | Out-String | Invoke-Expression`,
		// Override parent PersistentPreRunE: completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         completionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

// completeDatasetFiles offers YAML files for a dataset argument.
func completeDatasetFiles(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeTargets offers the targets declared by the build config named with
// --config, or the default fallback when none can be read.
func completeTargets(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var path string
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}

	if path == "" {
		path = ".ldml2res.yaml"
	}

	cfg, err := config.LoadBuildConfig(path)
	if err != nil {
		return []string{config.DefaultFallback}, cobra.ShellCompDirectiveNoFileComp
	}

	return cfg.Targets(), cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
}
