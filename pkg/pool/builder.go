package pool

import (
	"fmt"

	"go.uber.org/zap"
)

// Builder configures and constructs a Pool. All settings are optional except
// the supplier.
//
//	p, err := pool.NewBuilder[*Frame]().
//		WithSupplier(newFrame).
//		WithStartingSize(256).
//		WithLockFreeStore(1024).
//		Build()
type Builder[T any] struct {
	supplier      Supplier[T]
	reset         Resetter[T]
	startingSize  int
	stripeCap     int
	ringCapacity  int
	disableGuards bool
	log           *zap.Logger
}

// NewBuilder returns a Builder with default settings: empty pool, mutex
// shared store, stripe capacity of 32, leak recovery enabled.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{stripeCap: defaultStripeCapacity}
}

// WithSupplier sets the function used to create fresh values. Required.
func (b *Builder[T]) WithSupplier(supplier Supplier[T]) *Builder[T] {
	b.supplier = supplier
	return b
}

// WithResetter sets the function used to recycle values on return. Without
// one, values implementing Recyclable reset themselves and all other values
// are returned as-is.
func (b *Builder[T]) WithResetter(reset Resetter[T]) *Builder[T] {
	b.reset = reset
	return b
}

// WithStartingSize eagerly populates the pool with n supplied values at
// build time. They are placed in the shared store so any goroutine can claim
// them.
func (b *Builder[T]) WithStartingSize(n int) *Builder[T] {
	b.startingSize = n
	return b
}

// WithStripeCapacity sets the soft limit on values held per stripe cache.
func (b *Builder[T]) WithStripeCapacity(n int) *Builder[T] {
	b.stripeCap = n
	return b
}

// WithLockFreeStore backs the shared store with a lock-free bounded ring of
// the given capacity instead of the default mutex-guarded slice. Puts beyond
// the ring capacity spill to a mutex overflow, so the store stays unbounded.
func (b *Builder[T]) WithLockFreeStore(capacity int) *Builder[T] {
	b.ringCapacity = capacity
	return b
}

// WithoutLeakRecovery disables the finalizer that rescues values from guards
// dropped without Release. Shaves a little off checkout cost in exchange for
// losing capacity on caller bugs.
func (b *Builder[T]) WithoutLeakRecovery() *Builder[T] {
	b.disableGuards = true
	return b
}

// WithLogger attaches a logger for administrative events (warm-up, trim,
// clear). Defaults to a no-op logger.
func (b *Builder[T]) WithLogger(log *zap.Logger) *Builder[T] {
	b.log = log
	return b
}

// Build validates the configuration and constructs the pool.
func (b *Builder[T]) Build() (*Pool[T], error) {
	return b.BuildWith(nil)
}

// BuildWith constructs the pool pre-filled with the given values. If fewer
// values are supplied than the configured starting size, the remainder is
// created by the supplier.
func (b *Builder[T]) BuildWith(items []T) (*Pool[T], error) {
	if b.supplier == nil {
		return nil, fmt.Errorf("pool: supplier is required")
	}
	if b.startingSize < 0 {
		return nil, fmt.Errorf("pool: starting size cannot be negative")
	}
	if b.stripeCap <= 0 {
		return nil, fmt.Errorf("pool: stripe capacity must be positive")
	}
	if b.ringCapacity < 0 {
		return nil, fmt.Errorf("pool: ring capacity cannot be negative")
	}

	log := b.log
	if log == nil {
		log = zap.NewNop()
	}

	n := numStripes()
	p := &Pool[T]{
		supplier:  b.supplier,
		reset:     b.reset,
		stripes:   make([]stripe[T], n),
		mask:      uint32(n - 1),
		stripeCap: b.stripeCap,
		leakGuard: !b.disableGuards,
		log:       log,
	}
	if b.ringCapacity > 0 {
		p.shared = newRingStore[T](b.ringCapacity)
	} else {
		p.shared = &mutexStore[T]{}
	}

	for _, v := range items {
		p.shared.put(v)
	}
	for i := len(items); i < b.startingSize; i++ {
		p.shared.put(b.supplier())
		p.stats.allocated.Add(1)
	}
	if warm := p.shared.len(); warm > 0 {
		log.Debug("pool warmed", zap.Int("values", warm))
	}
	return p, nil
}
