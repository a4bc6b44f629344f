package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vk/spacecomm/internal/app"
	"github.com/vk/spacecomm/internal/digest"
)

// Configuration formats.
const (
	FormatHCL  = "hcl"
	FormatYAML = "yaml"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Env files named with -env-file are loaded into the process environment
// before Parse returns, so configuration files can reference them.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("spacecomm", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
spacecomm - explore a galaxy of solar systems with a pool of decoding explorers.

Usage:
  spacecomm [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to a .hcl/.yaml file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	var envFiles []string
	flagSet.Func("env-file", "Load environment variables from a dotenv file. May be repeated.", func(v string) error {
		envFiles = append(envFiles, v)
		return nil
	})
	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	cFlag := flagSet.String("c", "", "Path to the configuration file or directory (shorthand).")
	formatFlag := flagSet.String("format", "", "Configuration format: 'hcl' or 'yaml'. Detected from file extensions when empty.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Number of explorers. Overrides explorers.count when positive.")
	hashCountFlag := flagSet.Int("hash-count", app.Unset, "Hash rounds per decode. Overrides explorers.hash_count when not negative.")
	runIDFlag := flagSet.String("run-id", "", "Name of the shared visited set. Processes with the same run id split one galaxy. Overrides visited.run_id.")
	algorithmFlag := flagSet.String("algorithm", "", fmt.Sprintf("Hash algorithm. Overrides explorers.algorithm. Options: %s.", strings.Join(digest.Supported(), ", ")))

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	for _, p := range []string{*configFlag, *cFlag} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Config paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, false, usageError("failed to load env file: %v", err)
		}
		slog.Debug("Env files loaded.", "files", envFiles)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	format := strings.ToLower(*formatFlag)
	switch format {
	case "":
		format = DetectFormat(paths)
	case FormatHCL, FormatYAML:
	default:
		return nil, false, usageError("invalid format: must be '%s' or '%s'", FormatHCL, FormatYAML)
	}
	slog.Debug("CLI parameter validation complete.")

	workers := *workersFlag
	if workers == 0 {
		workers = app.Unset
	}

	config, err := app.NewConfig(app.Config{
		ConfigPaths:     paths,
		Format:          format,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Workers:         workers,
		HashCount:       *hashCountFlag,
		Algorithm:       strings.ToLower(*algorithmFlag),
		RunID:           *runIDFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// DetectFormat returns FormatYAML if any path has a YAML extension and
// FormatHCL otherwise.
func DetectFormat(paths []string) string {
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			return FormatYAML
		}
	}
	return FormatHCL
}
