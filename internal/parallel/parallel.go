// Package parallel fans independent pieces of one forward pass (attention
// heads, matrix rows) out over goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool `yaml:"enabled"`   // Whether parallel execution is enabled.
	NumWorkers int  `yaml:"workers"`   // Number of worker goroutines to use.
	MinItems   int  `yaml:"min_items"` // Below this many items work runs inline.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinItems:   2,
	}
}

// Sequential returns a Config that always runs inline.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinItems: 1}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
//
// f must only write to state owned by index i; For returns after every call
// has finished.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < max(cfg.MinItems, 2) {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	workers := min(cfg.NumWorkers, n)
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
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
