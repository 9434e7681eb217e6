package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRootCmd mirrors the persistent flags of the real root command.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{}
	pf := cmd.PersistentFlags()
	pf.String("config", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.String("log-file", "", "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")

	return cmd
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), ".ldml2res.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default / Validate
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Empty(t, cfg.LogFile)
	assert.False(t, cfg.Quiet)
	assert.Empty(t, cfg.Fallback)
	assert.Empty(t, cfg.OutputDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "debug text", cfg: Config{LogLevel: "debug", LogFormat: "text"}},
		{name: "error json", cfg: Config{LogLevel: "error", LogFormat: "json"}},
		{name: "bad level", cfg: Config{LogLevel: "trace", LogFormat: "text"}, wantErr: "invalid log level"},
		{name: "bad format", cfg: Config{LogLevel: "info", LogFormat: "xml"}, wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())

	cfg.Quiet = true
	assert.Equal(t, LogLevelError, cfg.EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("LDML2RES_LOG_LEVEL", "debug")
	t.Setenv("LDML2RES_LOG_FILE", "/var/log/ldml2res.log")
	t.Setenv("LDML2RES_QUIET", "true")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/ldml2res.log", cfg.LogFile)
	assert.True(t, cfg.Quiet)
}

func TestLoad_ConfigFileWithBuildSection(t *testing.T) {
	p := writeTempConfig(t, `
log-level: warn
log-format: json
fallback: locales
datasets: [data/*.yaml]
rules:
  - prefix: /Languages
    target: lang
`)

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, p, cfg.ConfigFile)
	assert.Equal(t, "locales", cfg.Fallback, "shared key is read by both sections")

	b, err := cfg.LoadBuild()
	require.NoError(t, err)
	assert.Equal(t, []string{"data/*.yaml"}, b.Datasets)
	assert.Equal(t, []string{"lang", "locales"}, b.Targets())
	assert.Equal(t, filepath.Dir(p), b.BaseDir)
	assert.Equal(t, DefaultOutputDir, b.OutputDir)
}

func TestLoadBuild_Overrides(t *testing.T) {
	p := writeTempConfig(t, "datasets: [a.yaml]\nfallback: locales\noutputDir: gen\n")

	t.Setenv("LDML2RES_FALLBACK", "misc")
	t.Setenv("LDML2RES_OUTPUT_DIR", "rel/out")

	cfg, err := Load(nil, p)
	require.NoError(t, err)

	b, err := cfg.LoadBuild()
	require.NoError(t, err)
	assert.Equal(t, "misc", b.Fallback, "env beats file")

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "rel", "out"), b.OutputDir, "relative to the working directory")
	assert.Equal(t, b.OutputDir, b.Resolve(b.OutputDir))

	cmd := newTestRootCmd()
	cmd.Flags().String("fallback", "", "")
	require.NoError(t, cmd.Flags().Set("fallback", "lang"))

	cfg, err = Load(cmd, p)
	require.NoError(t, err)

	b, err = cfg.LoadBuild()
	require.NoError(t, err)
	assert.Equal(t, "lang", b.Fallback, "flag beats env")
}

func TestLoadBuild_NoConfigFile(t *testing.T) {
	_, err := Default().LoadBuild()
	assert.ErrorIs(t, err, ErrNoBuildConfig)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(nil, writeTempConfig(t, ": invalid yaml :"))
	require.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	p := writeTempConfig(t, "log-level: warn\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel, "file beats default")

	t.Setenv("LDML2RES_LOG_LEVEL", "debug")

	cfg, err = Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "env beats file")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

	cfg, err = Load(cmd, p)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel, "flag beats env")
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("LDML2RES_LOG_LEVEL", "verbose")

	_, err := Load(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext_RoundTrip(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	assert.Equal(t, cfg, FromContext(NewContext(context.Background(), cfg)))
	assert.Equal(t, Default(), FromContext(context.Background()))

	ctx := NewContextWithConfigFile(context.Background(), "/etc/ldml2res.yaml")
	assert.Equal(t, "/etc/ldml2res.yaml", ConfigFileFromContext(ctx))
	assert.Empty(t, ConfigFileFromContext(context.Background()))
}
