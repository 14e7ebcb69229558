package pool

import (
	"runtime"
	"sync/atomic"
)

// Pooled is a guard owning one checked-out value. Value is read and written
// directly for the lifetime of the guard; calling Release recycles the value
// and hands it back to the pool the guard came from.
//
// Release is the unconditional return path: pair every checkout with a
// deferred Release so the value comes back on normal return, early return,
// and panic unwinding alike. Guards that are dropped without Release are
// caught by a finalizer that recycles the value into the shared store, so a
// forgotten return costs a GC cycle of latency rather than pool capacity.
type Pooled[T any] struct {
	// Value is the checked-out value. It must not be touched after Release
	// or Discard.
	Value T

	pool     *Pool[T]
	released atomic.Bool
}

func (p *Pool[T]) newPooled(v T) *Pooled[T] {
	p.stats.inUse.Add(1)
	g := &Pooled[T]{Value: v, pool: p}
	if p.leakGuard {
		runtime.SetFinalizer(g, (*Pooled[T]).finalize)
	}
	return g
}

// Release recycles the value and returns it to the pool. It is idempotent:
// a second call is a no-op, so a value can never re-enter the pool twice.
func (g *Pooled[T]) Release() {
	if g == nil || g.released.Swap(true) {
		return
	}
	p := g.pool
	if p.leakGuard {
		runtime.SetFinalizer(g, nil)
	}
	v := g.Value
	var zero T
	g.Value = zero
	p.stats.inUse.Add(-1)
	p.put(p.recycle(v))
}

// Discard drops the value instead of returning it to the pool, shrinking the
// pool's effective capacity by one. Use it for values that grew beyond a
// useful size or whose state cannot be safely reset. Idempotent like Release.
func (g *Pooled[T]) Discard() {
	if g == nil || g.released.Swap(true) {
		return
	}
	p := g.pool
	if p.leakGuard {
		runtime.SetFinalizer(g, nil)
	}
	var zero T
	g.Value = zero
	p.stats.inUse.Add(-1)
	p.stats.discarded.Add(1)
}

// finalize runs when an unreleased guard becomes unreachable. The owning
// goroutine is gone, so the value goes straight to the shared store.
func (g *Pooled[T]) finalize() {
	if g.released.Swap(true) {
		return
	}
	p := g.pool
	p.stats.inUse.Add(-1)
	p.shared.put(p.recycle(g.Value))
}
