package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/spacecomm/internal/message"
	"github.com/vk/spacecomm/internal/queue"
)

var (
	// ErrUnknownToken is returned by CompletePair for a token that was never
	// issued or whose pair has already been completed.
	ErrUnknownToken = errors.New("channel: unknown pair token")
	// ErrSentinelPair is returned when END or EXIT is offered as either half
	// of a pair.
	ErrSentinelPair = errors.New("channel: sentinel messages cannot start a pair")
)

// SenderID identifies a pairing slot.
type SenderID uuid.UUID

// NewSenderID returns a fresh random identity.
func NewSenderID() SenderID {
	return SenderID(uuid.New())
}

func (id SenderID) String() string {
	return uuid.UUID(id).String()
}

// PairToken is the handle returned by BeginPair.
type PairToken SenderID

func (t PairToken) String() string {
	return SenderID(t).String()
}

// Channel carries messages between headquarters and the explorers.
type Channel struct {
	downstream *queue.Queue[message.Message]
	upstream   *queue.Queue[message.Message]

	mu      sync.Mutex
	pending map[SenderID]message.Message
}

// New creates a channel with empty queues and no pending pairs.
func New() *Channel {
	return &Channel{
		downstream: queue.New[message.Message](),
		upstream:   queue.New[message.Message](),
		pending:    make(map[SenderID]message.Message),
	}
}

// PutUpstream queues a result for headquarters. It is a no-op once ctx is done.
func (c *Channel) PutUpstream(ctx context.Context, m message.Message) {
	c.upstream.Put(ctx, m)
}

// TakeUpstream waits for the next result. ok is false if ctx was cancelled.
func (c *Channel) TakeUpstream(ctx context.Context) (m message.Message, ok bool) {
	return c.upstream.Take(ctx)
}

// TakeDownstream waits for the next task. ok is false if ctx was cancelled,
// which explorers treat as "no more work".
func (c *Channel) TakeDownstream(ctx context.Context) (m message.Message, ok bool) {
	return c.downstream.Take(ctx)
}

// PutDownstream submits m on behalf of from.
//
// Sentinels are queued at once. For data messages the first call from a
// sender only stores m; the next call removes the stored message m0 and
// queues New(m0.Current, m.Current, m.Payload). If ctx is done nothing is
// stored, removed or queued.
func (c *Channel) PutDownstream(ctx context.Context, from SenderID, m message.Message) {
	if ctx.Err() != nil {
		return
	}

	if m.IsSentinel() {
		c.downstream.Put(ctx, m)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	first, ok := c.pending[from]
	if !ok {
		c.pending[from] = m
		return
	}

	if c.downstream.Put(ctx, combine(first, m)) {
		delete(c.pending, from)
	}
}

// BeginPair stores the first half of a pair and returns the token that
// completes it.
func (c *Channel) BeginPair(m message.Message) (PairToken, error) {
	if m.IsSentinel() {
		return PairToken{}, ErrSentinelPair
	}

	token := PairToken(NewSenderID())

	c.mu.Lock()
	c.pending[SenderID(token)] = m
	c.mu.Unlock()

	return token, nil
}

// CompletePair combines m with the message stored under token and queues
// the result downstream. A sentinel is rejected and a cancelled ctx is a
// no-op; both leave the token usable.
func (c *Channel) CompletePair(ctx context.Context, token PairToken, m message.Message) error {
	if m.IsSentinel() {
		return ErrSentinelPair
	}
	if ctx.Err() != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	first, ok := c.pending[SenderID(token)]
	if !ok {
		return ErrUnknownToken
	}

	if c.downstream.Put(ctx, combine(first, m)) {
		delete(c.pending, SenderID(token))
	}
	return nil
}

// Pending returns the number of stored, not yet combined, first halves.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// DownstreamLen returns the number of queued tasks.
func (c *Channel) DownstreamLen() int {
	return c.downstream.Len()
}

// UpstreamLen returns the number of queued results.
func (c *Channel) UpstreamLen() int {
	return c.upstream.Len()
}

func combine(first, second message.Message) message.Message {
	return message.New(first.Current, second.Current, second.Payload)
}
