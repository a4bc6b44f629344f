package queue

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFOSingleProducer(t *testing.T) {
	q := New[int]()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.True(t, q.Put(ctx, i))
	}
	assert.Equal(t, 100, q.Len())

	for i := 0; i < 100; i++ {
		v, ok := q.Take(ctx)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Zero(t, q.Len())
}

func TestQueue_TakeBlocksUntilPut(t *testing.T) {
	q := New[string]()
	ctx := context.Background()
	got := make(chan string, 1)

	go func() {
		v, ok := q.Take(ctx)
		if ok {
			got <- v
		}
	}()

	select {
	case v := <-got:
		t.Fatalf("Take returned %q before anything was put", v)
	case <-time.After(50 * time.Millisecond):
	}

	q.Put(ctx, "hello")

	select {
	case v := <-got:
		assert.Equal(t, "hello", v)
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not wake up after Put")
	}
}

func TestQueue_Cancellation(t *testing.T) {
	t.Run("take returns absent when cancelled while waiting", func(t *testing.T) {
		q := New[int]()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan bool, 1)

		go func() {
			_, ok := q.Take(ctx)
			done <- ok
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case ok := <-done:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("Take did not observe cancellation")
		}
	})

	t.Run("put on a cancelled context enqueues nothing", func(t *testing.T) {
		q := New[int]()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.False(t, q.Put(ctx, 42))
		assert.Zero(t, q.Len())
	})

	t.Run("take on a cancelled context leaves queued values alone", func(t *testing.T) {
		q := New[int]()
		q.Put(context.Background(), 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, ok := q.Take(ctx)
		assert.False(t, ok)
		assert.Equal(t, 1, q.Len())
	})
}

// TestQueue_ConcurrentProducersAndConsumers checks that nothing is lost or
// duplicated and that each producer's values come out in the order it put them.
func TestQueue_ConcurrentProducersAndConsumers(t *testing.T) {
	type item struct {
		producer int
		seq      int
	}

	const producers = 8
	const perProducer = 500

	q := New[item]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []item

	var consumers sync.WaitGroup
	for c := 0; c < 4; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				v, ok := q.Take(ctx)
				if !ok {
					return
				}
				mu.Lock()
				received = append(received, v)
				mu.Unlock()
			}
		}()
	}

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Put(context.Background(), item{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == producers*perProducer
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	consumers.Wait()

	perProducerSeqs := make(map[int][]int)
	for _, it := range received {
		perProducerSeqs[it.producer] = append(perProducerSeqs[it.producer], it.seq)
	}
	for p := 0; p < producers; p++ {
		seqs := perProducerSeqs[p]
		require.Len(t, seqs, perProducer)
		sorted := append([]int(nil), seqs...)
		sort.Ints(sorted)
		for i, v := range sorted {
			assert.Equal(t, i, v, "producer %d lost or duplicated a value", p)
		}
	}
}

func TestQueue_SingleConsumerSeesProducerOrder(t *testing.T) {
	q := New[int]()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			q.Put(ctx, i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 1000; i < 1200; i++ {
			q.Put(ctx, i)
		}
	}()
	wg.Wait()

	lastLow, lastHigh := -1, 999
	for i := 0; i < 400; i++ {
		v, ok := q.Take(ctx)
		require.True(t, ok)
		if v < 1000 {
			assert.Greater(t, v, lastLow)
			lastLow = v
		} else {
			assert.Greater(t, v, lastHigh)
			lastHigh = v
		}
	}
}
