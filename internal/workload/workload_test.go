package workload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"zero goroutines", func(c *Config) { c.Goroutines = 0 }},
		{"zero cycles", func(c *Config) { c.Cycles = 0 }},
		{"zero payload", func(c *Config) { c.PayloadBytes = 0 }},
		{"negative starting size", func(c *Config) { c.StartingSize = -1 }},
		{"negative local capacity", func(c *Config) { c.LocalCapacity = -1 }},
		{"negative lock free store", func(c *Config) { c.LockFreeStore = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRun(t *testing.T) {
	cfg := Config{
		Name:         "small",
		Goroutines:   4,
		Cycles:       2_000,
		PayloadBytes: 256,
		StartingSize: 8,
	}

	result, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "small", result.Name)
	assert.Equal(t, int64(4*2_000), result.Ops)
	assert.Positive(t, result.OpsPerSec)
	assert.Positive(t, result.Duration)
	assert.Equal(t, int64(0), result.Stats.InUse)
	assert.Equal(t, result.Stats.Hits+result.Stats.Misses, result.Ops)
	assert.Equal(t, int(result.Stats.Allocated), result.FinalSize,
		"every allocated value is back in the pool after the run")
}

func TestRunWithLocals(t *testing.T) {
	cfg := Config{
		Name:          "locals",
		Goroutines:    4,
		Cycles:        2_000,
		PayloadBytes:  256,
		StartingSize:  8,
		LocalCapacity: 16,
	}

	result, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Stats.InUse)
	assert.Equal(t, int(result.Stats.Allocated), result.FinalSize)
}

func TestRunLockFree(t *testing.T) {
	cfg := Config{
		Name:          "lockfree",
		Goroutines:    4,
		Cycles:        2_000,
		PayloadBytes:  256,
		StartingSize:  8,
		LockFreeStore: 64,
	}

	result, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Stats.InUse)
}

func TestRunInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{}, zap.NewNop())
	require.Error(t, err)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{
		Name:         "canceled",
		Goroutines:   2,
		Cycles:       50_000_000,
		PayloadBytes: 256,
	}

	start := time.Now()
	_, err := Run(ctx, cfg, zap.NewNop())
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 30*time.Second)
}
