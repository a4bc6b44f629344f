package headquarters

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/spacecomm/internal/channel"
	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/ctxlog"
	"github.com/vk/spacecomm/internal/message"
	"github.com/vk/spacecomm/internal/queue"
)

// Discovery is one decoded solar system.
type Discovery struct {
	Parent    int    `json:"parent"`
	ID        int    `json:"id"`
	Frequency string `json:"frequency"`
}

// Relay receives every discovery as it arrives.
type Relay interface {
	Publish(ctx context.Context, d Discovery) error
}

// Stats counts headquarters traffic.
type Stats struct {
	Dispatched  int64 `json:"dispatched"`
	Received    int64 `json:"received"`
	Heartbeats  int64 `json:"heartbeats"`
	Claimed     int64 `json:"claimed_elsewhere"`
	RelayErrors int64 `json:"relay_errors"`
}

// Option configures a Headquarters.
type Option func(*Headquarters)

// WithRelay mirrors discoveries to r. Publish failures are logged and do
// not stop the run.
func WithRelay(r Relay) Option {
	return func(h *Headquarters) { h.relay = r }
}

// WithObserver calls fn for every discovery, in arrival order, from the
// goroutine running Run.
func WithObserver(fn func(Discovery)) Option {
	return func(h *Headquarters) { h.observe = fn }
}

// event is either a decoded result from upstream or a task an explorer
// dropped because its node was already claimed.
type event struct {
	msg     message.Message
	claimed bool
}

// Headquarters coordinates one traversal of a galaxy.
type Headquarters struct {
	galaxy  *config.Galaxy
	ch      *channel.Channel
	sender  *channel.Sender
	relay   Relay
	observe func(Discovery)
	events  *queue.Queue[event]

	mu         sync.Mutex
	dispatched map[int]bool
	open       map[int]bool

	dispatches  atomic.Int64
	received    atomic.Int64
	heartbeats  atomic.Int64
	claimed     atomic.Int64
	relayErrors atomic.Int64
}

// New creates a headquarters for galaxy that talks over ch.
func New(galaxy *config.Galaxy, ch *channel.Channel, opts ...Option) *Headquarters {
	h := &Headquarters{
		galaxy:     galaxy,
		ch:         ch,
		sender:     ch.NewSender(),
		events:     queue.New[event](),
		dispatched: make(map[int]bool),
		open:       make(map[int]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Claimed tells headquarters that the task m was dropped because its node
// is already in the visited set, which happens when another process shares
// the set. No result will arrive for it, so it stops being outstanding.
// Safe for concurrent use; wire it to explorer.Pool.OnDrop.
func (h *Headquarters) Claimed(ctx context.Context, m message.Message) {
	h.events.Put(ctx, event{msg: m, claimed: true})
}

// Run explores the galaxy from its start node and returns the discoveries in
// arrival order. On cancellation it returns what was collected together
// with ctx.Err(); EXIT is not sent in that case.
func (h *Headquarters) Run(ctx context.Context) ([]Discovery, error) {
	logger := ctxlog.FromContext(ctx)

	start, ok := h.galaxy.Systems[h.galaxy.Start]
	if !ok {
		return nil, fmt.Errorf("start solar system %d is not defined", h.galaxy.Start)
	}

	forwardCtx, stopForward := context.WithCancel(ctx)
	defer stopForward()
	go h.forward(forwardCtx)

	logger.Info("Headquarters started.", "start", start.ID, "systems", len(h.galaxy.Systems))
	if err := h.dispatch(ctx, message.NoParent, start); err != nil {
		return nil, err
	}
	h.heartbeat(ctx)

	var discoveries []Discovery
	for h.pending() > 0 {
		ev, ok := h.events.Take(ctx)
		if !ok {
			logger.Warn("Headquarters cancelled.", "discovered", len(discoveries), "outstanding", h.pending())
			return discoveries, ctx.Err()
		}

		m := ev.msg
		if ev.claimed {
			if h.settle(m.Current) {
				h.claimed.Add(1)
				logger.Debug("Solar system claimed elsewhere.", "nodeID", m.Current)
			}
			continue
		}

		h.settle(m.Current)
		d := h.receive(ctx, m)
		discoveries = append(discoveries, d)

		if system, ok := h.galaxy.Systems[m.Current]; ok {
			for _, n := range system.Neighbours {
				if neighbour, ok := h.galaxy.Systems[n]; ok {
					if err := h.dispatch(ctx, system.ID, neighbour); err != nil {
						return discoveries, err
					}
				}
			}
		}
		h.heartbeat(ctx)
	}

	h.sender.Signal(ctx, message.Exit)
	logger.Info("Galaxy explored.", "discovered", len(discoveries), "claimedElsewhere", h.claimed.Load())
	return discoveries, nil
}

// forward moves upstream results into the event queue until ctx is done.
func (h *Headquarters) forward(ctx context.Context) {
	for {
		m, ok := h.ch.TakeUpstream(ctx)
		if !ok {
			return
		}
		h.events.Put(ctx, event{msg: m})
	}
}

// dispatch sends (parent)+(system) as a pair unless system was dispatched
// before.
func (h *Headquarters) dispatch(ctx context.Context, parent int, system *config.SolarSystem) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dispatched[system.ID] {
		return nil
	}

	if err := h.sender.Dispatch(ctx, parent, system.ID, system.Frequency); err != nil {
		return fmt.Errorf("failed to dispatch solar system %d: %w", system.ID, err)
	}
	h.dispatched[system.ID] = true
	h.open[system.ID] = true
	h.dispatches.Add(1)
	ctxlog.FromContext(ctx).Debug("Dispatched solar system.", "parentID", parent, "nodeID", system.ID)
	return nil
}

// settle removes id from the outstanding tasks and reports whether it was
// outstanding.
func (h *Headquarters) settle(id int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.open[id] {
		return false
	}
	delete(h.open, id)
	return true
}

func (h *Headquarters) heartbeat(ctx context.Context) {
	h.sender.Signal(ctx, message.End)
	h.heartbeats.Add(1)
}

func (h *Headquarters) receive(ctx context.Context, m message.Message) Discovery {
	h.received.Add(1)

	d := Discovery{Parent: m.Parent, ID: m.Current, Frequency: m.Payload}
	if h.observe != nil {
		h.observe(d)
	}
	if h.relay != nil {
		if err := h.relay.Publish(ctx, d); err != nil {
			h.relayErrors.Add(1)
			ctxlog.FromContext(ctx).Warn("Failed to relay discovery.", "nodeID", d.ID, "error", err)
		}
	}
	return d
}

func (h *Headquarters) pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.open)
}

// Stats returns a snapshot of the counters. Safe to call while Run is active.
func (h *Headquarters) Stats() Stats {
	return Stats{
		Dispatched:  h.dispatches.Load(),
		Received:    h.received.Load(),
		Heartbeats:  h.heartbeats.Load(),
		Claimed:     h.claimed.Load(),
		RelayErrors: h.relayErrors.Load(),
	}
}
