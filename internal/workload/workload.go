// Package workload drives swimmer pools under configurable concurrency and
// reports throughput, pool statistics, and process memory usage. It backs the
// swimmer-bench command.
package workload

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/caelunshun/swimmer/pkg/pool"
)

// Config describes one benchmark scenario.
type Config struct {
	// Name identifies the scenario in reports.
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	// Goroutines is the number of concurrent workers.
	Goroutines int `mapstructure:"goroutines" yaml:"goroutines" json:"goroutines"`
	// Cycles is the number of checkout/return cycles per worker.
	Cycles int `mapstructure:"cycles" yaml:"cycles" json:"cycles"`
	// PayloadBytes is the size of each pooled buffer.
	PayloadBytes int `mapstructure:"payload_bytes" yaml:"payload_bytes" json:"payload_bytes"`
	// StartingSize pre-populates the pool before the clock starts.
	StartingSize int `mapstructure:"starting_size" yaml:"starting_size" json:"starting_size"`
	// LocalCapacity, when positive, gives each worker an unsynchronized
	// cache of that many values instead of hitting the pool directly.
	LocalCapacity int `mapstructure:"local_capacity" yaml:"local_capacity" json:"local_capacity"`
	// LockFreeStore, when positive, backs the shared store with a lock-free
	// ring of that capacity.
	LockFreeStore int `mapstructure:"lock_free_store" yaml:"lock_free_store" json:"lock_free_store"`
}

// DefaultConfig returns a scenario sized to show contention behavior without
// running for long.
func DefaultConfig() Config {
	return Config{
		Name:         "default",
		Goroutines:   8,
		Cycles:       100_000,
		PayloadBytes: 4096,
		StartingSize: 64,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("workload: name is required")
	}
	if c.Goroutines <= 0 {
		return fmt.Errorf("workload: goroutines must be positive, got %d", c.Goroutines)
	}
	if c.Cycles <= 0 {
		return fmt.Errorf("workload: cycles must be positive, got %d", c.Cycles)
	}
	if c.PayloadBytes <= 0 {
		return fmt.Errorf("workload: payload_bytes must be positive, got %d", c.PayloadBytes)
	}
	if c.StartingSize < 0 {
		return fmt.Errorf("workload: starting_size cannot be negative, got %d", c.StartingSize)
	}
	if c.LocalCapacity < 0 {
		return fmt.Errorf("workload: local_capacity cannot be negative, got %d", c.LocalCapacity)
	}
	if c.LockFreeStore < 0 {
		return fmt.Errorf("workload: lock_free_store cannot be negative, got %d", c.LockFreeStore)
	}
	return nil
}

// Result is the outcome of one scenario run.
type Result struct {
	Name      string        `json:"name" yaml:"name"`
	Ops       int64         `json:"ops" yaml:"ops"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	OpsPerSec float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
	FinalSize int           `json:"final_size" yaml:"final_size"`
	Stats     pool.Stats    `json:"stats" yaml:"stats"`
	RSSBytes  uint64        `json:"rss_bytes" yaml:"rss_bytes"`
}

// Run executes one scenario and returns its result. The context cancels the
// run early; a canceled run returns the context error.
func Run(ctx context.Context, cfg Config, log *zap.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	builder := pool.NewBuilder[[]byte]().
		WithSupplier(func() []byte { return make([]byte, 0, cfg.PayloadBytes) }).
		WithResetter(func(b []byte) []byte { return b[:0] }).
		WithStartingSize(cfg.StartingSize).
		WithLogger(log)
	if cfg.LockFreeStore > 0 {
		builder = builder.WithLockFreeStore(cfg.LockFreeStore)
	}
	p, err := builder.Build()
	if err != nil {
		return nil, err
	}

	log.Info("workload starting",
		zap.String("name", cfg.Name),
		zap.Int("goroutines", cfg.Goroutines),
		zap.Int("cycles", cfg.Cycles),
		zap.Int("payload_bytes", cfg.PayloadBytes),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < cfg.Goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cfg.LocalCapacity > 0 {
				runLocal(runCtx, p, cfg)
			} else {
				runShared(runCtx, p, cfg)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		// Workers also bail out early on cancellation, so a finished run
		// still fails when the context is dead.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	case <-ctx.Done():
		cancel()
		<-done
		return nil, ctx.Err()
	}
	elapsed := time.Since(start)

	ops := int64(cfg.Goroutines) * int64(cfg.Cycles)
	result := &Result{
		Name:      cfg.Name,
		Ops:       ops,
		Duration:  elapsed,
		OpsPerSec: float64(ops) / elapsed.Seconds(),
		FinalSize: p.Size(),
		Stats:     p.Stats(),
		RSSBytes:  rss(),
	}

	log.Info("workload finished",
		zap.String("name", cfg.Name),
		zap.Duration("duration", elapsed),
		zap.Float64("ops_per_sec", result.OpsPerSec),
		zap.Int("final_size", result.FinalSize),
		zap.Int64("allocated", result.Stats.Allocated),
	)
	return result, nil
}

// runShared is the direct checkout path: every cycle goes through the pool's
// stripe caches and shared store.
func runShared(ctx context.Context, p *pool.Pool[[]byte], cfg Config) {
	for i := 0; i < cfg.Cycles; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return
		}
		g := p.Get()
		g.Value = append(g.Value, byte(i))
		g.Release()
	}
}

// runLocal routes cycles through a per-worker unsynchronized cache, flushing
// it back to the pool when the worker exits.
func runLocal(ctx context.Context, p *pool.Pool[[]byte], cfg Config) {
	local := p.Local(cfg.LocalCapacity)
	defer local.Flush()
	for i := 0; i < cfg.Cycles; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return
		}
		b := local.Get()
		b = append(b, byte(i))
		local.Put(b)
	}
}

// rss reads the process resident set size, returning 0 when the platform
// does not expose it.
func rss() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return info.RSS
}
