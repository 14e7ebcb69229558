package pool

import (
	"sync"

	"github.com/caelunshun/swimmer/pkg/lockfree"
)

// store is the shared overflow tier: a linearizable multi-producer
// multi-consumer exchange. No two takes may return the same value and no put
// may be lost; len is approximate under concurrent mutation.
type store[T any] interface {
	take() (T, bool)
	put(v T)
	len() int
}

// mutexStore is the default store: a slice guarded by a single mutex. It is
// boring on purpose; the stripes absorb the common case, so this lock is
// rarely contended.
type mutexStore[T any] struct {
	mu    sync.Mutex
	items []T
}

func (s *mutexStore[T]) take() (T, bool) {
	s.mu.Lock()
	n := len(s.items)
	if n == 0 {
		s.mu.Unlock()
		var zero T
		return zero, false
	}
	v := s.items[n-1]
	var zero T
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	s.mu.Unlock()
	return v, true
}

func (s *mutexStore[T]) put(v T) {
	s.mu.Lock()
	s.items = append(s.items, v)
	s.mu.Unlock()
}

func (s *mutexStore[T]) len() int {
	s.mu.Lock()
	n := len(s.items)
	s.mu.Unlock()
	return n
}

// ringStore backs the shared tier with a lock-free bounded ring. Puts that
// find the ring full spill into a mutex-guarded overflow slice so no value is
// ever lost; takes drain the ring before the overflow.
type ringStore[T any] struct {
	ring     *lockfree.Queue[T]
	overflow mutexStore[T]
}

func newRingStore[T any](capacity int) *ringStore[T] {
	return &ringStore[T]{ring: lockfree.NewQueue[T](capacity)}
}

func (s *ringStore[T]) take() (T, bool) {
	if v, ok := s.ring.Dequeue(); ok {
		return v, true
	}
	return s.overflow.take()
}

func (s *ringStore[T]) put(v T) {
	if !s.ring.Enqueue(v) {
		s.overflow.put(v)
	}
}

func (s *ringStore[T]) len() int {
	return s.ring.Len() + s.overflow.len()
}
