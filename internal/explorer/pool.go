package explorer

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/spacecomm/internal/channel"
	"github.com/vk/spacecomm/internal/ctxlog"
	"github.com/vk/spacecomm/internal/digest"
	"github.com/vk/spacecomm/internal/message"
	"github.com/vk/spacecomm/internal/visited"
)

// Pool runs a fixed number of explorers over one channel.
type Pool struct {
	explorers []*Explorer

	wg     sync.WaitGroup
	cancel context.CancelFunc
	done   chan struct{}

	// gate orders upstream puts against the EXIT cancel.
	gate sync.RWMutex

	mu      sync.Mutex
	exited  bool
	started bool
	err     error
}

// NewPool creates size explorers sharing ch, seen and decoder.
func NewPool(size int, ch *channel.Channel, seen visited.Set, decoder *digest.Decoder) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{done: make(chan struct{})}
	for i := 0; i < size; i++ {
		e := New(i, ch, seen, decoder)
		e.gate = &p.gate
		e.onExit = p.exit
		p.explorers = append(p.explorers, e)
	}
	return p
}

// OnDrop registers fn to receive tasks that explorers drop because their
// node is already in the visited set. Call it before Start.
func (p *Pool) OnDrop(fn func(context.Context, message.Message)) {
	for _, e := range p.explorers {
		e.onDrop = fn
	}
}

// Size returns the number of explorers.
func (p *Pool) Size() int {
	return len(p.explorers)
}

// Start launches every explorer in its own goroutine. The first explorer
// that takes EXIT or fails cancels the others.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting explorer pool.", "explorers", len(p.explorers))

	for _, e := range p.explorers {
		p.wg.Add(1)
		go p.run(runCtx, e)
	}

	go func() {
		p.wg.Wait()
		cancel()
		close(p.done)
		logger.Debug("Explorer pool stopped.")
	}()
}

func (p *Pool) run(ctx context.Context, e *Explorer) {
	defer p.wg.Done()

	err := e.Run(ctx)
	if err == nil {
		return
	}

	p.mu.Lock()
	if errors.Is(err, ErrExit) {
		p.exited = true
	} else if p.err == nil {
		p.err = err
	}
	p.mu.Unlock()

	p.cancel()
}

// exit marks the pool exited and cancels it. Once it returns no explorer
// can put anything upstream.
func (p *Pool) exit() {
	p.gate.Lock()
	defer p.gate.Unlock()

	p.mu.Lock()
	p.exited = true
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until every explorer has stopped and returns the first
// explorer failure. EXIT and cancellation are not failures.
func (p *Pool) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Run starts the pool and waits for it.
func (p *Pool) Run(ctx context.Context) error {
	p.Start(ctx)
	return p.Wait()
}

// Stop cancels every explorer without waiting.
func (p *Pool) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once every explorer has stopped.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Exited reports whether the pool stopped because of an EXIT message.
func (p *Pool) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

// Stats sums the counters of all explorers.
func (p *Pool) Stats() Stats {
	var total Stats
	for _, e := range p.explorers {
		total = total.add(e.Stats())
	}
	return total
}

// States returns each explorer's current state, indexed by explorer id.
func (p *Pool) States() []State {
	states := make([]State, len(p.explorers))
	for i, e := range p.explorers {
		states[i] = e.State()
	}
	return states
}
