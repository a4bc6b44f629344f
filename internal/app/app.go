package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/ctxlog"
	"github.com/vk/spacecomm/internal/digest"
	"github.com/vk/spacecomm/internal/explorer"
	"github.com/vk/spacecomm/internal/headquarters"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	model   *config.Model
	decoder *digest.Decoder

	httpServer *http.Server

	// current run, read by the stats endpoint
	mu    sync.Mutex
	runID string
	pool  *explorer.Pool
	hq    *headquarters.Headquarters
}

// NewApp is the constructor for the main application. Configuration that
// cannot be loaded or validated, and a digest that is unavailable in this
// build, are fatal and cause a panic.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	model.ApplyDefaults()
	applyOverrides(model, appConfig)
	if err := model.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger.Debug("Configuration loaded and validated.", "systems", len(model.Galaxy.Systems))
	if ids := unreachable(model.Galaxy); len(ids) > 0 {
		logger.Warn("Some solar systems are unreachable from the start and will not be explored.", "start", model.Galaxy.Start, "unreachable", ids)
	}

	algorithm := model.Explorers.Algorithm
	if algorithm == "" {
		algorithm = digest.DefaultAlgorithm
	}
	decoder, err := digest.New(algorithm, model.Explorers.HashCount)
	if err != nil {
		panic(fmt.Errorf("failed to set up decoder: %w", err))
	}
	logger.Debug("Decoder ready.", "algorithm", decoder.Algorithm(), "rounds", decoder.Rounds())

	return &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		model:   model,
		decoder: decoder,
	}
}

func applyOverrides(model *config.Model, appConfig *Config) {
	if appConfig.Workers > 0 {
		model.Explorers.Count = appConfig.Workers
	}
	if appConfig.HashCount != Unset {
		model.Explorers.HashCount = appConfig.HashCount
	}
	if appConfig.Algorithm != "" {
		model.Explorers.Algorithm = appConfig.Algorithm
	}
	if appConfig.RunID != "" {
		model.Visited.RunID = appConfig.RunID
	}
}

// unreachable returns the sorted ids no path from Start leads to.
func unreachable(g *config.Galaxy) []int {
	reachable := g.Reachable()
	var ids []int
	for _, id := range g.IDs() {
		if !reachable[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Model returns the validated configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Decoder returns the resolved decoder.
func (a *App) Decoder() *digest.Decoder {
	return a.decoder
}
