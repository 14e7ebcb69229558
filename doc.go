// Package swimmer provides a thread-safe object pool with per-goroutine
// cache tiers, designed to make recycling expensive values cheap under heavy
// concurrency.
//
// # Architecture
//
// A pool holds values in two tiers. A set of striped caches serves the fast
// path: checkouts and returns touch one stripe under a try-lock, so
// uncontended cycles never block. Behind the stripes sits a shared store,
// either mutex-guarded or a lock-free ring, that absorbs stripe overflow and
// serves checkouts when a stripe is empty. When both tiers miss, the pool
// calls its supplier, so checkout always succeeds and the pool grows on
// demand.
//
// # Quick Start
//
//	p := pool.New(
//	    func() *Frame { return &Frame{} },
//	    func(f *Frame) *Frame { f.Reset(); return f },
//	)
//
//	g := p.Get()
//	defer g.Release()
//	use(g.Value)
//
// Values come wrapped in a Pooled guard. Release recycles the value and
// returns it to the pool; a guard dropped without Release is rescued by a
// finalizer so caller bugs cost latency, not capacity.
//
// # Key Packages
//
//	pkg/pool         - The object pool: Pool, Pooled, Local, Builder
//	pkg/lockfree     - Bounded MPMC queue backing the lock-free shared store
//	pkg/jsonpool     - JSON serialization over pooled buffers
//	pkg/compresspool - Compression with pooled codec handles
//	pkg/metrics      - Prometheus collector for pool statistics
//	pkg/logger       - Structured logging used by the tooling
//
// # Benchmarking
//
// The swimmer-bench command drives configurable checkout/return workloads:
//
//	go run ./cmd/swimmer-bench run --goroutines 16 --cycles 200000
package swimmer
