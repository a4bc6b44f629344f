package visited

import (
	"context"
	"sync"
	"sync/atomic"
)

// Memory is an in-process Set. The zero value is ready to use.
type Memory struct {
	ids   sync.Map // Key: node id, Value: struct{}
	count atomic.Int64
}

// NewMemory creates an empty set, optionally seeded with ids.
func NewMemory(ids ...int) *Memory {
	m := &Memory{}
	for _, id := range ids {
		m.Add(context.Background(), id)
	}
	return m
}

// Add implements Set.
func (m *Memory) Add(_ context.Context, id int) (bool, error) {
	if _, loaded := m.ids.LoadOrStore(id, struct{}{}); loaded {
		return false, nil
	}
	m.count.Add(1)
	return true, nil
}

// Contains implements Set.
func (m *Memory) Contains(_ context.Context, id int) (bool, error) {
	_, ok := m.ids.Load(id)
	return ok, nil
}

// Len implements Set.
func (m *Memory) Len(_ context.Context) (int, error) {
	return int(m.count.Load()), nil
}
