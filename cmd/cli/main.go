package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/spacecomm/internal/app"
	"github.com/vk/spacecomm/internal/cli"
	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/hcl_adapter"
	"github.com/vk/spacecomm/internal/yaml_adapter"
)

// main is the entrypoint for the spacecomm application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()

	// The real main function handles errors and exit codes.
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on fatal startup errors; turn that into an error so
	// main exits with status 1.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	spacecommApp := app.NewApp(outW, appConfig, newLoader(appConfig.Format))

	discoveries, err := spacecommApp.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(outW, "Discovered %d solar systems.\n", len(discoveries))
	return nil
}

func newLoader(format string) config.Loader {
	if format == cli.FormatYAML {
		return yaml_adapter.NewLoader()
	}
	return hcl_adapter.NewLoader()
}
