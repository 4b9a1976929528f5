package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090

[storage]
output_dir = "/tmp/payfiles"

[generation]
max_rows = 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, "/tmp/payfiles", cfg.Storage.OutputDir)
	assert.Equal(t, 500, cfg.Generation.MaxRows)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PAYFILE_PORT", "7070")
	t.Setenv("PAYFILE_OUTPUT_DIR", "env-out")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "[server]\nport = 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-out", cfg.Storage.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed toml", body: "[server\nport = 1"},
		{name: "port out of range", body: "[server]\nport = 70000"},
		{name: "zero max rows", body: "[generation]\nmax_rows = 0"},
		{name: "empty output dir", body: "[storage]\noutput_dir = \"\""},
		{name: "unknown log level", body: "[log]\nlevel = \"loud\""},
		{name: "non-numeric port env", env: map[string]string{"PAYFILE_PORT": "http"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 8181
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generation.MaxRows = 0
	path := filepath.Join(t.TempDir(), "config.toml")

	assert.Error(t, Save(path, cfg))
	assert.NoFileExists(t, path)
}
