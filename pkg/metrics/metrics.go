// Package metrics exposes swimmer pool statistics as Prometheus metrics.
//
// Pools register with a Collector under a name; the Collector implements
// prometheus.Collector and snapshots each pool's counters on every scrape,
// so the hot checkout/return path pays nothing for metrics beyond the atomic
// counters it already maintains.
//
//	collector := metrics.NewCollector("swimmer")
//	collector.Track("buffers", bufferPool)
//	prometheus.MustRegister(collector)
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caelunshun/swimmer/pkg/pool"
)

// Source is the view of a pool the collector scrapes. *pool.Pool[T]
// satisfies it for every T.
type Source interface {
	Stats() pool.Stats
	Size() int
}

// Collector gathers statistics from registered pools on each scrape.
// It is safe for concurrent use.
type Collector struct {
	mu    sync.RWMutex
	pools map[string]Source

	available *prometheus.Desc
	inUse     *prometheus.Desc
	allocated *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	discarded *prometheus.Desc
}

// NewCollector creates a collector publishing metrics under the given
// namespace.
func NewCollector(namespace string) *Collector {
	labels := []string{"pool"}
	return &Collector{
		pools: make(map[string]Source),
		available: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "available"),
			"Values immediately available without allocation.",
			labels, nil,
		),
		inUse: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "in_use"),
			"Values currently checked out behind guards.",
			labels, nil,
		),
		allocated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "allocated_total"),
			"Total values created by the pool supplier.",
			labels, nil,
		),
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "hits_total"),
			"Checkouts served from a cache tier.",
			labels, nil,
		),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "misses_total"),
			"Checkouts that allocated a fresh value.",
			labels, nil,
		),
		discarded: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "discarded_total"),
			"Values dropped instead of returned.",
			labels, nil,
		),
	}
}

// Track registers a pool under the given name, replacing any pool previously
// registered under that name.
func (c *Collector) Track(name string, src Source) {
	c.mu.Lock()
	c.pools[name] = src
	c.mu.Unlock()
}

// Forget removes a pool from the collector.
func (c *Collector) Forget(name string) {
	c.mu.Lock()
	delete(c.pools, name)
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.available
	ch <- c.inUse
	ch <- c.allocated
	ch <- c.hits
	ch <- c.misses
	ch <- c.discarded
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, src := range c.pools {
		stats := src.Stats()
		ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, float64(src.Size()), name)
		ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(stats.InUse), name)
		ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(stats.Allocated), name)
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.discarded, prometheus.CounterValue, float64(stats.Discarded), name)
	}
}
