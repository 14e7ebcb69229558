package pool

// Local is a private, completely unsynchronized cache view over a pool, for
// worker loops that both check out and return values on a single goroutine.
// Get and Put touch no locks until the local stash is exhausted or full, at
// which point they fall through to the pool's shared tiers.
//
// A Local must only ever be used by the goroutine that created it. There is
// no automatic return path: values held by a Local that is abandoned without
// Flush are garbage collected, which silently sheds that much pool capacity.
// Call Flush before the worker exits to hand the stash back to the pool.
type Local[T any] struct {
	pool     *Pool[T]
	items    []T
	capacity int
}

// Get returns a value from the local stash, falling back to the pool's
// shared tiers or supplier. The caller owns the value until Put.
func (l *Local[T]) Get() T {
	if n := len(l.items); n > 0 {
		v := l.items[n-1]
		var zero T
		l.items[n-1] = zero
		l.items = l.items[:n-1]
		return v
	}
	return l.pool.Detach()
}

// Put recycles v into the local stash, overflowing to the pool's shared
// store when the stash is at capacity.
func (l *Local[T]) Put(v T) {
	v = l.pool.recycle(v)
	if len(l.items) < l.capacity {
		l.items = append(l.items, v)
		return
	}
	l.pool.shared.put(v)
}

// Len returns the number of values in the local stash.
func (l *Local[T]) Len() int {
	return len(l.items)
}

// Flush drains the local stash into the pool's shared store, making the
// values claimable by other goroutines again.
func (l *Local[T]) Flush() {
	for _, v := range l.items {
		l.pool.shared.put(v)
	}
	for i := range l.items {
		var zero T
		l.items[i] = zero
	}
	l.items = l.items[:0]
}
