package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spacecomm/internal/testutil"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error makes app.NewApp panic while loading configuration.
	invalidHCL := `
		solar_system "1" {
			frequency = "abc"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")

	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, []string{filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	assert.Contains(t, runErr.Error(), "application startup panicked")
	assert.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_UnavailableDigestIsFatal(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, map[string]string{"galaxy.hcl": testutil.SmallGalaxyHCL})
	err := run(context.Background(), &bytes.Buffer{}, []string{"-algorithm", "md4", dir})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "application startup panicked")
	assert.Contains(t, err.Error(), "unavailable")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		files map[string]string
	}{
		{name: "hcl", files: map[string]string{"galaxy.hcl": testutil.SmallGalaxyHCL}},
		{name: "yaml", files: map[string]string{"galaxy.yaml": `
explorers:
  count: 2
galaxy:
  start: 0
  systems:
    - id: 0
      frequency: abc
      neighbours: [1]
    - id: 1
      frequency: xyz
      neighbours: [0]
`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := testutil.WriteFiles(t, tc.files)
			name := ""
			for n := range tc.files {
				name = n
			}
			out := &testutil.SafeBuffer{}

			err := run(context.Background(), out, []string{"-log-format", "text", filepath.Join(dir, name)})

			require.NoError(t, err, out.String())
			assert.Contains(t, out.String(), "Exploration finished.")
			assert.Contains(t, out.String(), "Discovered ")
		})
	}
}
