package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/earlyalloc/config"
)

// executeRoot runs the root command with args and returns stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	useConfig(t, nil)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return captureOutput(t, rootCmd.Execute)
}

func TestRootCommand_ConfigAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "early.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 2KiB\nregion_size: 256KiB\n"), 0o600))

	tests := []struct {
		name      string
		args      []string
		wantPages uintptr
		wantPage  uintptr
	}{
		{"defaults", []string{"stats", "--json"}, 256, 4096},
		{"config file", []string{"stats", "--json", "--config", path}, 128, 2048},
		{"flag overrides file", []string{"stats", "--json", "--config", path, "--region-size", "64KiB"}, 32, 2048},
		{"flag overrides default", []string{"stats", "--json", "--page-size", "0x400"}, 1024, 0x400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeRoot(t, tt.args...)
			require.NoError(t, err)

			var v statsView
			require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
			assert.Equal(t, tt.wantPages, v.TotalPages)
			assert.Equal(t, tt.wantPage, v.PageSize)
		})
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"page size", []string{"stats", "--page-size", "3000"}},
		{"offset past region", []string{"stats", "--region-size", "4KiB", "--region-offset", "8KiB"}},
		{"log format", []string{"stats", "--log-format", "xml"}},
		{"missing file", []string{"stats", "--config", "/nonexistent/early.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeRoot(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := executeRoot(t, "version", "--config", "/nonexistent/early.yaml")
	require.NoError(t, err)
	assertContains(t, output, []string{"earlyctl dev", "commit: none"})
}

func TestLoadConfig_DefaultsWhenUnset(t *testing.T) {
	_, err := executeRoot(t, "stats", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, config.Default().RegionSize, cfg.RegionSize)
}
