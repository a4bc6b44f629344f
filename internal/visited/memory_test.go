package visited

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AddAndContains(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(7)

	ok, err := s.Contains(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	added, err := s.Add(ctx, 7)
	require.NoError(t, err)
	assert.False(t, added, "seeded id must not be added twice")

	added, err = s.Add(ctx, 8)
	require.NoError(t, err)
	assert.True(t, added)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err = s.Contains(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestMemory_ConcurrentAddClaimsOnce has many goroutines race to add the same
// ids and checks that each id was claimed by exactly one of them.
func TestMemory_ConcurrentAddClaimsOnce(t *testing.T) {
	const goroutines = 64
	const ids = 100

	s := &Memory{}
	ctx := context.Background()
	var claims [ids]atomic.Int32

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for id := 0; id < ids; id++ {
				if added, _ := s.Add(ctx, id); added {
					claims[id].Add(1)
				}
			}
		}()
	}
	wg.Wait()

	for id := 0; id < ids; id++ {
		assert.Equal(t, int32(1), claims[id].Load(), "id %d", id)
	}
	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, n)
}
