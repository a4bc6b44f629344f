package channel

import (
	"context"

	"github.com/vk/spacecomm/internal/message"
)

// Sender is one caller's pairing session on a Channel. It is meant to be
// used by a single goroutine at a time; concurrent senders need separate
// sessions.
type Sender struct {
	id SenderID
	ch *Channel
}

// NewSender opens a pairing session with its own slot.
func (c *Channel) NewSender() *Sender {
	return &Sender{id: NewSenderID(), ch: c}
}

// ID returns the session's identity.
func (s *Sender) ID() SenderID {
	return s.id
}

// PutDownstream runs the pairing protocol in this session's slot.
func (s *Sender) PutDownstream(ctx context.Context, m message.Message) {
	s.ch.PutDownstream(ctx, s.id, m)
}

// Dispatch submits a complete task as the two pairing halves: first the
// node the task starts from, then the target node with its payload. A
// sentinel payload would bypass pairing and strand the first half, so it is
// rejected before anything is queued.
func (s *Sender) Dispatch(ctx context.Context, from, to int, payload string) error {
	task := message.New(from, to, payload)
	if task.IsSentinel() {
		return ErrSentinelPair
	}
	s.PutDownstream(ctx, message.New(message.NoParent, from, ""))
	s.PutDownstream(ctx, task)
	return nil
}

// Signal queues a sentinel (END or EXIT) without pairing.
func (s *Sender) Signal(ctx context.Context, payload string) {
	s.PutDownstream(ctx, message.Sentinel(payload))
}
