package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/spacecomm/internal/channel"
	"github.com/vk/spacecomm/internal/ctxlog"
	"github.com/vk/spacecomm/internal/digest"
	"github.com/vk/spacecomm/internal/message"
	"github.com/vk/spacecomm/internal/visited"
)

// ErrExit is returned by Run when the explorer took an EXIT message.
var ErrExit = errors.New("explorer: exit requested")

// Stats counts what an explorer did with the messages it took.
type Stats struct {
	Decoded int64 `json:"decoded"`
	Skipped int64 `json:"skipped"`
	Dropped int64 `json:"dropped"`
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Decoded: s.Decoded + o.Decoded,
		Skipped: s.Skipped + o.Skipped,
		Dropped: s.Dropped + o.Dropped,
	}
}

// Explorer decodes downstream tasks and reports the results upstream.
type Explorer struct {
	id      int
	ch      *channel.Channel
	visited visited.Set
	decoder *digest.Decoder

	// gate, when set, is held shared around every upstream put. The pool
	// holds it exclusively while it cancels on EXIT.
	gate *sync.RWMutex
	// onExit, when set, runs as soon as EXIT is taken, before Run returns.
	onExit func()
	// onDrop, when set, receives every task dropped because its node was
	// already claimed.
	onDrop func(context.Context, message.Message)

	state   atomic.Int32
	decoded atomic.Int64
	skipped atomic.Int64
	dropped atomic.Int64
}

// New creates an explorer. The channel, visited set and decoder are shared
// with every other explorer of the same run.
func New(id int, ch *channel.Channel, seen visited.Set, decoder *digest.Decoder) *Explorer {
	return &Explorer{id: id, ch: ch, visited: seen, decoder: decoder}
}

// ID returns the explorer's id.
func (e *Explorer) ID() int {
	return e.id
}

// State returns the explorer's current state.
func (e *Explorer) State() State {
	return State(e.state.Load())
}

func (e *Explorer) setState(s State) {
	e.state.Store(int32(s))
}

// Stats returns a snapshot of the explorer's counters.
func (e *Explorer) Stats() Stats {
	return Stats{
		Decoded: e.decoded.Load(),
		Skipped: e.skipped.Load(),
		Dropped: e.dropped.Load(),
	}
}

// Run processes downstream messages until EXIT is taken, ctx is cancelled,
// or the visited set fails. It returns ErrExit for EXIT and nil when the
// wait was cancelled.
func (e *Explorer) Run(ctx context.Context) (err error) {
	ctx = ctxlog.With(ctx, "explorerID", e.id)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Explorer started.")
	defer func() {
		e.setState(Terminate)
		logger.Debug("Explorer finished.", "reason", err)
	}()

	for {
		e.setState(Waiting)
		m, ok := e.ch.TakeDownstream(ctx)
		if !ok {
			return nil
		}

		e.setState(Dispatch)
		switch {
		case m.IsExit():
			logger.Info("Exit received.")
			if e.onExit != nil {
				e.onExit()
			}
			return ErrExit
		case m.IsEnd():
			e.setState(Skip)
			e.skipped.Add(1)
			continue
		}

		if err := e.decode(ctx, m); err != nil {
			logger.Error("Decoding failed.", "message", m.String(), "error", err)
			return err
		}
	}
}

// decode claims m.Current and, if the claim succeeds, sends the decoded
// payload upstream. Already visited nodes are dropped without output.
func (e *Explorer) decode(ctx context.Context, m message.Message) error {
	logger := ctxlog.FromContext(ctx)

	added, err := e.visited.Add(ctx, m.Current)
	if err != nil {
		return fmt.Errorf("failed to claim node %d: %w", m.Current, err)
	}
	if !added {
		e.dropped.Add(1)
		logger.Debug("Node already visited, dropping task.", "nodeID", m.Current)
		if e.onDrop != nil {
			e.onDrop(ctx, m)
		}
		return nil
	}

	e.setState(Decode)
	frequency := e.decoder.Decode(m.Payload)
	e.publish(ctx, m.WithPayload(frequency))
	e.decoded.Add(1)
	logger.Debug("Node decoded.", "parentID", m.Parent, "nodeID", m.Current)
	return nil
}

func (e *Explorer) publish(ctx context.Context, m message.Message) {
	if e.gate != nil {
		e.gate.RLock()
		defer e.gate.RUnlock()
	}
	e.ch.PutUpstream(ctx, m)
}
