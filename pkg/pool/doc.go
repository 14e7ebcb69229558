// Package pool implements a thread-safe, generic object pool for reusing
// values without reallocating them. It is the core of swimmer and is aimed at
// performance-sensitive code (servers, parsers, serializers) that churns
// through many short-lived objects of the same type.
//
// # Architecture
//
// A Pool[T] distributes ownership of pooled values through two tiers:
//
//   - Striped caches: an array of small, independently locked stashes sized to
//     GOMAXPROCS. The fast path uses TryLock, so checkout and return almost
//     never contend. Goroutines have no stable thread identity in Go, so the
//     stripes stand in for per-thread caches; a goroutine that loses the
//     TryLock race simply moves on to the shared store instead of blocking.
//   - Shared store: a linearizable multi-producer multi-consumer exchange
//     holding values that overflow the stripes or are returned by other
//     goroutines. The default store is a mutex-guarded slice; a lock-free
//     bounded ring (pkg/lockfree) can be selected at build time.
//
// Checkout order is stripe, then shared store, then the supplier function. A
// checkout never fails and never blocks: if no cached value is available the
// pool allocates a fresh one and grows on demand.
//
// Core types:
//
//   - Pool[T]: the user-facing pool handle
//   - Pooled[T]: a guard owning one checked-out value, returned via Release
//   - Local[T]: an unsynchronized cache view for single-goroutine worker loops
//   - Builder[T]: construction with suppliers, sizing and store selection
//
// # Recycling
//
// Values re-enter the pool in a neutral state. Types reset themselves by
// implementing Recyclable, or the pool is given a Resetter function for types
// it does not own (slices, maps, third-party types). Resetting reuses the
// value's backing storage wherever possible; that is the entire point of
// pooling.
//
// # Usage
//
//	bufs := pool.NewBuffers(4096)
//
//	b := bufs.Get()
//	defer b.Release()
//
//	b.Value.WriteString("hello")
//
// Pre-populating a pool so the first checkouts do not allocate:
//
//	p, err := pool.NewBuilder[*bytes.Buffer]().
//		WithSupplier(func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 1024)) }).
//		WithStartingSize(64).
//		Build()
//
// # Lifecycle and sizing
//
// Size reports the number of values immediately available without allocating.
// It is exact on a quiescent pool and advisory while other goroutines mutate
// the pool. The pool never sheds capacity on its own; values are destroyed
// only by Clear, Trim, or Pooled.Discard.
//
// A Local cache is exclusively owned by one goroutine and performs no
// synchronization at all. Values resident in a Local that is abandoned
// without Flush are lost to the pool (they are garbage collected, not
// leaked). This is the documented cost of the unsynchronized fast path.
package pool
