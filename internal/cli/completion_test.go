package cli

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ldml2res/internal/config"
)

func TestCompletionCommand(t *testing.T) {
	for _, shell := range completionShells {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCommand("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "ldml2res")
		})
	}

	_, _, err := executeCommand("completion", "tcsh")
	require.Error(t, err)
}

func TestCompleteTargets_FromBuildConfig(t *testing.T) {
	_, cfgPath := writeProject(t)

	cmd := NewRootCommand()
	require.NoError(t, cmd.PersistentFlags().Set("config", cfgPath))

	got, directive := completeTargets(cmd, nil, "")
	assert.Equal(t, []string{"lang", "locales"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestCompleteTargets_UnreadableConfig(t *testing.T) {
	cmd := NewRootCommand()
	require.NoError(t, cmd.PersistentFlags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")))

	got, _ := completeTargets(cmd, nil, "")
	assert.Equal(t, []string{config.DefaultFallback}, got)
}

func TestCompleteDatasetFiles(t *testing.T) {
	exts, directive := completeDatasetFiles(nil, nil, "")
	assert.Equal(t, []string{"yaml", "yml"}, exts)
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)

	none, directive := completeDatasetFiles(nil, []string{"en.yaml"}, "")
	assert.Empty(t, none)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestInspect_CompletesFormats(t *testing.T) {
	stdout, _, err := executeCommand(cobra.ShellCompRequestCmd, "inspect", "--format", "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "table")
	assert.Contains(t, stdout, "json")
}
