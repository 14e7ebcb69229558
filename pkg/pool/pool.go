package pool

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// defaultStripeCapacity is the soft limit on values held per stripe. Returns
// beyond the limit overflow to the shared store rather than being dropped.
const defaultStripeCapacity = 32

// Pool is a thread-safe object pool for values of type T.
//
// A value owned by the pool is in exactly one of three places at any instant:
// a stripe cache, the shared store, or checked out behind a Pooled guard.
// Checkout never fails: the pool allocates a fresh value via its supplier
// when every cache tier misses, so it grows on demand and never blocks.
//
// Construct pools with New, WithSize, or a Builder. The zero value is not
// usable.
type Pool[T any] struct {
	supplier Supplier[T]
	reset    Resetter[T]

	stripes []stripe[T]
	mask    uint32

	shared    store[T]
	stripeCap int
	leakGuard bool
	log       *zap.Logger

	stats struct {
		allocated atomic.Int64
		inUse     atomic.Int64
		hits      atomic.Int64
		misses    atomic.Int64
		discarded atomic.Int64
	}
}

// stripe is one slot of the striped cache tier. Each stripe has its own lock;
// the fast path only ever TryLocks, falling through to the shared store on
// contention. Padding keeps neighboring stripes off the same cache line.
type stripe[T any] struct {
	mu    sync.Mutex
	items []T
	_     [5]uint64 //nolint:unused // padding to separate cache lines
}

// Stats is a snapshot of pool counters, suitable for monitoring and for
// detecting leaks (a steadily growing InUse means guards are not released).
type Stats struct {
	// Allocated is the total number of values created by the supplier.
	Allocated int64
	// InUse is the number of values currently checked out behind guards.
	InUse int64
	// Hits counts checkouts served from a cache tier.
	Hits int64
	// Misses counts checkouts that had to allocate a fresh value.
	Misses int64
	// Discarded counts values dropped via Pooled.Discard.
	Discarded int64
}

// New creates a pool with a supplier and an optional resetter. The pool
// starts empty and grows on demand.
//
// reset may be nil; values implementing Recyclable are still reset on return.
func New[T any](supplier Supplier[T], reset Resetter[T]) *Pool[T] {
	p, err := NewBuilder[T]().WithSupplier(supplier).WithResetter(reset).Build()
	if err != nil {
		// Only a nil supplier can fail the build.
		panic(err)
	}
	return p
}

// WithSize creates a pool eagerly populated with n freshly supplied values.
// The values are placed in the shared store so any goroutine can claim them;
// Size reports n immediately after construction.
func WithSize[T any](n int, supplier Supplier[T]) *Pool[T] {
	p, err := NewBuilder[T]().WithSupplier(supplier).WithStartingSize(n).Build()
	if err != nil {
		panic(err)
	}
	return p
}

// Get checks out a value from the pool, trying a stripe cache first, then the
// shared store, then the supplier. It always succeeds.
//
// The value is wrapped in a Pooled guard that returns it to the pool when
// released; callers should pair every Get with a deferred Release.
func (p *Pool[T]) Get() *Pooled[T] {
	return p.newPooled(p.Detach())
}

// Attach adopts a value that did not come from the pool, wrapping it in a
// guard that will recycle it into the pool on release. Size is unaffected
// until the guard is released.
func (p *Pool[T]) Attach(v T) *Pooled[T] {
	return p.newPooled(v)
}

// Detach checks out a value without a guard. The value will not return to the
// pool unless the caller hands it back via Attach; dropping it simply sheds
// pool capacity.
func (p *Pool[T]) Detach() T {
	v, ok := p.take()
	if !ok {
		v = p.supplier()
		p.stats.allocated.Add(1)
		p.stats.misses.Add(1)
	} else {
		p.stats.hits.Add(1)
	}
	return v
}

// Size returns the number of values immediately available without allocating:
// the sum of all stripe caches and the shared store. The result is exact on a
// quiescent pool and advisory while other goroutines mutate the pool.
func (p *Pool[T]) Size() int {
	n := p.shared.len()
	for i := range p.stripes {
		s := &p.stripes[i]
		s.mu.Lock()
		n += len(s.items)
		s.mu.Unlock()
	}
	return n
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Allocated: p.stats.allocated.Load(),
		InUse:     p.stats.inUse.Load(),
		Hits:      p.stats.hits.Load(),
		Misses:    p.stats.misses.Load(),
		Discarded: p.stats.discarded.Load(),
	}
}

// Clear removes every cached value from the pool, releasing its backing
// storage to the garbage collector. Checked-out values are unaffected and
// will re-enter the (now empty) pool when their guards are released.
func (p *Pool[T]) Clear() {
	removed := 0
	for i := range p.stripes {
		s := &p.stripes[i]
		s.mu.Lock()
		removed += len(s.items)
		s.items = nil
		s.mu.Unlock()
	}
	for {
		if _, ok := p.shared.take(); !ok {
			break
		}
		removed++
	}
	p.log.Debug("pool cleared", zap.Int("removed", removed))
}

// Trim discards cached values until at most max remain available, draining
// the shared store before the stripes. It returns the number of values
// removed. Under concurrent use the post-trim size is approximate.
func (p *Pool[T]) Trim(max int) int {
	if max < 0 {
		max = 0
	}
	excess := p.Size() - max
	removed := 0
	for removed < excess {
		if _, ok := p.shared.take(); !ok {
			break
		}
		removed++
	}
	for i := range p.stripes {
		if removed >= excess {
			break
		}
		s := &p.stripes[i]
		s.mu.Lock()
		for removed < excess && len(s.items) > 0 {
			n := len(s.items)
			var zero T
			s.items[n-1] = zero
			s.items = s.items[:n-1]
			removed++
		}
		s.mu.Unlock()
	}
	if removed > 0 {
		p.log.Debug("pool trimmed", zap.Int("removed", removed), zap.Int("max", max))
	}
	return removed
}

// Local returns an unsynchronized cache view holding up to capacity values.
// See Local's documentation for the ownership rules.
func (p *Pool[T]) Local(capacity int) *Local[T] {
	if capacity <= 0 {
		capacity = defaultStripeCapacity
	}
	return &Local[T]{pool: p, capacity: capacity}
}

// take pops a value from a stripe if one is cheaply available, otherwise from
// the shared store. When both miss it sweeps the remaining stripes before
// giving up, so a quiescent pool never allocates while it still holds values.
func (p *Pool[T]) take() (T, bool) {
	if v, ok := p.takeStripe(&p.stripes[rand.Uint32()&p.mask]); ok {
		return v, true
	}
	if v, ok := p.shared.take(); ok {
		return v, true
	}
	for i := range p.stripes {
		if v, ok := p.takeStripe(&p.stripes[i]); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (p *Pool[T]) takeStripe(s *stripe[T]) (T, bool) {
	if s.mu.TryLock() {
		if n := len(s.items); n > 0 {
			v := s.items[n-1]
			var zero T
			s.items[n-1] = zero
			s.items = s.items[:n-1]
			s.mu.Unlock()
			return v, true
		}
		s.mu.Unlock()
	}
	var zero T
	return zero, false
}

// put stashes an already-recycled value in a stripe, overflowing to the
// shared store when the stripe is at capacity or contended. Values are never
// dropped on this path.
func (p *Pool[T]) put(v T) {
	s := &p.stripes[rand.Uint32()&p.mask]
	if s.mu.TryLock() {
		if len(s.items) < p.stripeCap {
			s.items = append(s.items, v)
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
	p.shared.put(v)
}

// nextPowerOfTwo rounds n up so stripe selection can mask instead of mod.
func nextPowerOfTwo(n int) int {
	c := 1
	for c < n {
		c <<= 1
	}
	return c
}

func numStripes() int {
	return nextPowerOfTwo(runtime.GOMAXPROCS(0))
}
