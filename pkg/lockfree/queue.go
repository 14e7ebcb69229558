// Package lockfree provides lock-free data structures for high-performance
// concurrent value exchange.
package lockfree

import (
	"runtime"
	"sync/atomic"
)

// Queue is a bounded, lock-free multi-producer multi-consumer queue using
// per-slot sequence numbers for ordering. Values are stored directly in the
// slots, so no boxing or pointer indirection happens on the hot path.
//
// Enqueue and Dequeue are both safe for arbitrary concurrent callers. The
// queue is bounded: Enqueue reports false when full rather than blocking.
type Queue[T any] struct {
	buffer   []slot[T]
	capacity uint64
	mask     uint64

	// Producer and consumer cursors live on separate cache lines to avoid
	// false sharing.
	enqueuePos atomic.Uint64
	_          [7]uint64 //nolint:unused // padding

	dequeuePos atomic.Uint64
	_          [7]uint64 //nolint:unused // padding
}

// slot holds one value plus the sequence number that publishes it. The
// sequence store is the synchronization point: a consumer only reads value
// after observing sequence == pos+1, which the producer stores after writing
// value.
type slot[T any] struct {
	sequence atomic.Uint64
	value    T
}

// NewQueue creates a queue with the given capacity, rounded up to the next
// power of two for efficient masking.
func NewQueue[T any](capacity int) *Queue[T] {
	c := uint64(1)
	for c < uint64(capacity) {
		c <<= 1
	}

	q := &Queue[T]{
		buffer:   make([]slot[T], c),
		capacity: c,
		mask:     c - 1,
	}
	for i := uint64(0); i < c; i++ {
		q.buffer[i].sequence.Store(i)
	}
	return q
}

// Enqueue adds a value to the queue. It returns false if the queue is full.
func (q *Queue[T]) Enqueue(v T) bool {
	for {
		pos := q.enqueuePos.Load()
		s := &q.buffer[pos&q.mask]
		seq := s.sequence.Load()

		diff := int64(seq) - int64(pos)
		if diff == 0 {
			// Slot is free; try to claim it.
			if q.enqueuePos.CompareAndSwap(pos, pos+1) {
				s.value = v
				s.sequence.Store(pos + 1)
				return true
			}
		} else if diff < 0 {
			return false
		}

		// Another producer owns the slot, retry.
		runtime.Gosched()
	}
}

// Dequeue removes and returns a value. It reports false if the queue is
// empty.
func (q *Queue[T]) Dequeue() (T, bool) {
	for {
		pos := q.dequeuePos.Load()
		s := &q.buffer[pos&q.mask]
		seq := s.sequence.Load()

		diff := int64(seq) - int64(pos+1)
		if diff == 0 {
			if q.dequeuePos.CompareAndSwap(pos, pos+1) {
				v := s.value
				var zero T
				s.value = zero
				s.sequence.Store(pos + q.capacity)
				return v, true
			}
		} else if diff < 0 {
			var zero T
			return zero, false
		}

		runtime.Gosched()
	}
}

// Len returns the approximate number of values in the queue. It may be stale
// the instant after it returns under concurrent mutation.
func (q *Queue[T]) Len() int {
	head := q.dequeuePos.Load()
	tail := q.enqueuePos.Load()
	if tail < head {
		return 0
	}
	n := tail - head
	if n > q.capacity {
		return int(q.capacity)
	}
	return int(n)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return int(q.capacity)
}
