package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spacecomm/internal/app"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		want       *app.Config
		shouldExit bool
		errPart    string
	}{
		{
			name: "positional path with defaults",
			args: []string{"galaxy.hcl"},
			want: &app.Config{
				ConfigPaths: []string{"galaxy.hcl"},
				Format:      FormatHCL,
				LogFormat:   "json",
				LogLevel:    "info",
				Workers:     app.Unset,
				HashCount:   app.Unset,
			},
		},
		{
			name: "all flags",
			args: []string{
				"-c", "base.yaml", "-workers", "6", "-hash-count", "0", "-algorithm", "SHA512", "-run-id", "night-shift",
				"-log-level", "DEBUG", "-log-format", "text", "-healthcheck-port", "8081", "extra.yml",
			},
			want: &app.Config{
				ConfigPaths:     []string{"base.yaml", "extra.yml"},
				Format:          FormatYAML,
				LogFormat:       "text",
				LogLevel:        "debug",
				HealthcheckPort: 8081,
				Workers:         6,
				HashCount:       0,
				Algorithm:       "sha512",
				RunID:           "night-shift",
			},
		},
		{
			name: "explicit format wins",
			args: []string{"-format", "yaml", "-config", "conf.d"},
			want: &app.Config{
				ConfigPaths: []string{"conf.d"},
				Format:      FormatYAML,
				LogFormat:   "json",
				LogLevel:    "info",
				Workers:     app.Unset,
				HashCount:   app.Unset,
			},
		},
		{name: "help", args: []string{"-h"}, shouldExit: true},
		{name: "no path prints usage", args: []string{}, shouldExit: true},
		{name: "unknown flag", args: []string{"-nope"}, errPart: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml", "a.hcl"}, errPart: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "a.hcl"}, errPart: "invalid log-level"},
		{name: "bad format", args: []string{"-format", "toml", "a.hcl"}, errPart: "invalid format"},
		{name: "negative workers", args: []string{"-workers", "-4", "a.hcl"}, errPart: "workers must not be negative"},
		{name: "missing env file", args: []string{"-env-file", "/does/not/exist.env", "a.hcl"}, errPart: "failed to load env file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			cfg, shouldExit, err := Parse(tc.args, out)

			// --- Assert ---
			if tc.errPart != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.errPart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.shouldExit, shouldExit)
			if tc.shouldExit {
				assert.Nil(t, cfg)
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestParse_LoadsEnvFiles(t *testing.T) {
	// --- Arrange ---
	const key = "SPACECOMM_CLI_TEST_REDIS_URL"
	t.Cleanup(func() { os.Unsetenv(key) })

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(key+"=redis://from-dotenv:6379/0\n"), 0o600))

	// --- Act ---
	_, _, err := Parse([]string{"-env-file", envFile, "a.hcl"}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "redis://from-dotenv:6379/0", os.Getenv(key))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatHCL, DetectFormat([]string{"dir", "a.hcl"}))
	assert.Equal(t, FormatYAML, DetectFormat([]string{"dir", "b.YML"}))
	assert.Equal(t, FormatYAML, DetectFormat([]string{"c.yaml"}))
	assert.Equal(t, FormatHCL, DetectFormat(nil))
}
