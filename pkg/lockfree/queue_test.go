package lockfree

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](8)

	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(i))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}

	_, ok := q.Dequeue()
	assert.False(t, ok, "empty queue must report false")
}

func TestQueueFull(t *testing.T) {
	q := NewQueue[int](4)
	require.Equal(t, 4, q.Cap())

	for i := 0; i < 4; i++ {
		require.True(t, q.Enqueue(i))
	}
	assert.False(t, q.Enqueue(99), "full queue must reject the value")

	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 0, v)
	assert.True(t, q.Enqueue(99), "dequeue must free a slot")
}

func TestQueueCapacityRounding(t *testing.T) {
	assert.Equal(t, 8, NewQueue[int](5).Cap())
	assert.Equal(t, 1, NewQueue[int](1).Cap())
	assert.Equal(t, 16, NewQueue[int](16).Cap())
}

func TestQueueWrapAround(t *testing.T) {
	q := NewQueue[int](4)

	// Cycle enough values through to wrap the ring several times.
	for i := 0; i < 100; i++ {
		require.True(t, q.Enqueue(i))
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueueConcurrent(t *testing.T) {
	const (
		producers = 4
		consumers = 4
		perWorker = 25_000
	)
	q := NewQueue[int](256)

	var produced, consumed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				for !q.Enqueue(1) {
				}
				produced.Add(1)
			}
		}()
	}

	var cwg sync.WaitGroup
	done := make(chan struct{})
	for i := 0; i < consumers; i++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				if v, ok := q.Dequeue(); ok {
					consumed.Add(int64(v))
					continue
				}
				select {
				case <-done:
					if v, ok := q.Dequeue(); ok {
						consumed.Add(int64(v))
						continue
					}
					return
				default:
				}
			}
		}()
	}

	wg.Wait()
	close(done)
	cwg.Wait()

	assert.Equal(t, int64(producers*perWorker), produced.Load())
	assert.Equal(t, produced.Load(), consumed.Load(), "every enqueued value is dequeued exactly once")
}

func TestQueueZeroesSlotsOnDequeue(t *testing.T) {
	q := NewQueue[*int](4)
	v := new(int)
	require.True(t, q.Enqueue(v))
	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, v, got)
	// The slot no longer pins the pointer.
	assert.Nil(t, q.buffer[0].value)
}

func BenchmarkQueue(b *testing.B) {
	q := NewQueue[int](1024)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if q.Enqueue(1) {
				q.Dequeue()
			}
		}
	})
}
