package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-converter/internal/convert"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/report"
)

// isolate keeps Load from picking up config files outside the test.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, used, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, used)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, convert.DefaultConfig(), cfg.ConvertConfig())
	assert.Equal(t, report.FormatJSON, cfg.ReportFormat())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := isolate(t)

	content := `
[resolution]
min_confidence = 0.9
max_suggestions = 5

[output]
block_style = "docgen"
report_format = "yaml"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	t.Setenv("DOCGEN_RESOLUTION_STRICT", "true")
	t.Setenv("DOCGEN_STORE_PATH", "/var/lib/docgen/state.db")

	cfg, used, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, FileName, filepath.Base(used))
	assert.InDelta(t, 0.9, cfg.Resolution.MinConfidence, 1e-9)
	assert.Equal(t, 5, cfg.Resolution.MaxSuggestions)
	assert.True(t, cfg.Resolution.Strict)
	assert.True(t, cfg.Resolution.AutoMatch)
	assert.Equal(t, "/var/lib/docgen/state.db", cfg.Store.Path)

	cc := cfg.ConvertConfig()
	assert.Equal(t, convert.StyleDocGen, cc.BlockStyle)
	assert.True(t, cc.StrictMode)
	assert.Equal(t, report.FormatYAML, cfg.ReportFormat())
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\njson = true\n"), 0o644))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, LogConfig{JSON: true, Level: "debug"}, cfg.Log)

	_, _, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"confidence above one", func(c *Config) { c.Resolution.MinConfidence = 1.5 }, "resolution.min_confidence"},
		{"negative gap", func(c *Config) { c.Resolution.MinGap = -0.1 }, "resolution.min_gap"},
		{"negative suggestions", func(c *Config) { c.Resolution.MaxSuggestions = -1 }, "resolution.max_suggestions"},
		{"block style", func(c *Config) { c.Output.BlockStyle = "handlebars" }, "output.block_style"},
		{"report format", func(c *Config) { c.Output.ReportFormat = "xml" }, "output.report_format"},
		{"store path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"store disabled", func(c *Config) { c.Store.Path, c.Store.Enabled = "", false }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DOCGEN_OUTPUT_BLOCK_STYLE", "xml")

	_, _, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.block_style")
}

func TestWriteDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "conf", FileName)

	require.NoError(t, WriteDefaults(path, false))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	err = WriteDefaults(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteDefaults(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[resolution]")
	assert.Regexp(t, `block_style = ['"]section['"]`, string(data))
}
