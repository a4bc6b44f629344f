package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/spacecomm/internal/channel"
	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/ctxlog"
	"github.com/vk/spacecomm/internal/explorer"
	"github.com/vk/spacecomm/internal/headquarters"
	"github.com/vk/spacecomm/internal/relay"
	"github.com/vk/spacecomm/internal/visited"
)

// Run explores the configured galaxy once and returns the discoveries in
// arrival order.
func (a *App) Run(ctx context.Context) ([]headquarters.Discovery, error) {
	runID, shared := a.model.Visited.RunID, true
	if runID == "" {
		runID, shared = uuid.NewString(), false
	}
	logger := a.logger.With("runID", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	if timeout := a.model.Explorers.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	seen, closeSeen, err := a.openVisited(ctx, runID, shared)
	if err != nil {
		return nil, err
	}
	defer closeSeen()

	opts := []headquarters.Option{headquarters.WithObserver(func(d headquarters.Discovery) {
		logger.Info("Solar system discovered.", "parentID", d.Parent, "nodeID", d.ID, "frequency", d.Frequency)
	})}
	if a.model.Relay != nil {
		r, err := relay.Dial(ctx, a.model.Relay)
		if err != nil {
			return nil, fmt.Errorf("failed to connect relay: %w", err)
		}
		defer r.Close()
		opts = append(opts, headquarters.WithRelay(r))
	}

	ch := channel.New()
	pool := explorer.NewPool(a.model.Explorers.Count, ch, seen, a.decoder)
	hq := headquarters.New(a.model.Galaxy, ch, opts...)
	pool.OnDrop(hq.Claimed)
	a.setCurrent(runID, pool, hq)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("🚀 Starting exploration...", "explorers", pool.Size(), "algorithm", a.decoder.Algorithm(), "rounds", a.decoder.Rounds())
	pool.Start(runCtx)
	// A pool that stops without EXIT leaves nobody to answer headquarters.
	go func() {
		<-pool.Done()
		cancel()
	}()

	discoveries, hqErr := hq.Run(runCtx)
	if hqErr != nil {
		pool.Stop()
	}
	poolErr := pool.Wait()

	stats := pool.Stats()
	logger.Info("🏁 Exploration finished.",
		"discovered", len(discoveries),
		"decoded", stats.Decoded,
		"skipped", stats.Skipped,
		"dropped", stats.Dropped,
		"claimedElsewhere", hq.Stats().Claimed,
	)

	switch {
	case poolErr != nil:
		return discoveries, fmt.Errorf("explorer pool failed: %w", poolErr)
	case hqErr != nil:
		return discoveries, fmt.Errorf("exploration interrupted: %w", hqErr)
	}
	return discoveries, nil
}

// openVisited creates the run's visited set and a function that releases it.
// A shared set outlives the run; only a set keyed by a generated id is
// cleared.
func (a *App) openVisited(ctx context.Context, runID string, shared bool) (visited.Set, func(), error) {
	logger := ctxlog.FromContext(ctx)

	if a.model.Visited.Backend != config.BackendRedis {
		return visited.NewMemory(), func() {}, nil
	}

	r, err := visited.NewRedis(ctx, a.model.Visited.URL, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open visited set: %w", err)
	}
	logger.Debug("Using redis visited set.", "key", r.Key(), "shared", shared)

	return r, func() {
		// ctx may already be done here.
		if !shared {
			if err := r.Clear(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to clear visited set.", "key", r.Key(), "error", err)
			}
		}
		if err := r.Close(); err != nil {
			logger.Warn("Failed to close redis client.", "error", err)
		}
	}, nil
}

func (a *App) setCurrent(runID string, pool *explorer.Pool, hq *headquarters.Headquarters) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runID, a.pool, a.hq = runID, pool, hq
}
