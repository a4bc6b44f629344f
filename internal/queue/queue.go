// Package queue provides an unbounded FIFO queue that any number of
// goroutines can feed and drain concurrently.
//
// Producers never wait for capacity. Consumers block in Take until a value
// arrives or their context is done. A done context is never reported as an
// error: Put drops the value and Take returns ok == false, and the caller
// decides what "nothing happened" means for it.
package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded, blocking, multi-producer multi-consumer FIFO.
// The zero value is not usable; call New.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	// ready is closed and replaced on every Put to wake all waiting takers.
	ready chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{})}
}

// Put appends v to the tail of the queue. If ctx is already done the value
// is discarded and Put returns false.
func (q *Queue[T]) Put(ctx context.Context, v T) bool {
	if ctx.Err() != nil {
		return false
	}

	q.mu.Lock()
	q.items = append(q.items, v)
	close(q.ready)
	q.ready = make(chan struct{})
	q.mu.Unlock()

	return true
}

// Take removes and returns the head of the queue, waiting for one to arrive
// if the queue is empty. It returns the zero value and false once ctx is done.
func (q *Queue[T]) Take(ctx context.Context) (T, bool) {
	var zero T

	for {
		if ctx.Err() != nil {
			return zero, false
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, true
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return zero, false
		}
	}
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
