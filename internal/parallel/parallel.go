// Package parallel fans read-only per-example work out over goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Workers      int // Goroutines to use; 1 or less runs sequentially.
	MinChunkSize int // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	return Config{
		Workers:      runtime.NumCPU(),
		MinChunkSize: 64,
	}
}

// WithWorkers returns DefaultConfig with Workers set to n. Zero keeps the
// CPU count.
func WithWorkers(n int) Config {
	cfg := DefaultConfig()
	if n > 0 {
		cfg.Workers = n
	}
	return cfg
}

// For executes f(i) for i in [0, n), splitting the range into contiguous
// chunks. It runs sequentially when parallelism is disabled or n is too
// small to be worth it. f must be safe to call concurrently.
func For(n int, cfg Config, f func(i int)) {
	if cfg.Workers <= 1 || n < 2*cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Map returns f(i) for every i in [0, n). Results are stored by index, so
// the output order does not depend on scheduling.
func Map[T any](n int, cfg Config, f func(i int) T) []T {
	out := make([]T, n)
	For(n, cfg, func(i int) {
		out[i] = f(i)
	})
	return out
}
