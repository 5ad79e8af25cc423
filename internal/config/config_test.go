package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, byte('*'), cfg.GearByte())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, t.TempDir(), `gear = "#"
verbose = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#", cfg.Gear)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "memory", cfg.Index)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"bad toml", `gear = `},
		{"unknown key", `colour = "red"`},
		{"long gear", `gear = "**"`},
		{"digit gear", `gear = "7"`},
		{"blank gear", `gear = "."`},
		{"bad index", `index = "redis"`},
		{"bad format", `format = "yaml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestFind_WalksUp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	want := writeConfig(t, root, `index = "sqlite"`)
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got, ok, err := Find(deep)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolve_NoFile(t *testing.T) {
	t.Parallel()
	// Assumes no .schematic.toml exists above the temp directory.
	cfg, path, err := Resolve("", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestResolve_Explicit(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, t.TempDir(), `format = "text"`)
	cfg, got, err := Resolve(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "text", cfg.Format)
}
