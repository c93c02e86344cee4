package workers

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
)

// OverrideEnv names the environment variable that pins the worker count.
const OverrideEnv = "THUMBNAIL_WORKERS"

// Count returns multiplier workers per available CPU, at least one, capped
// at limit when limit is positive.
func Count(multiplier float64, limit int) int {
	n := 0
	if override := os.Getenv(OverrideEnv); override != "" {
		if v, err := strconv.Atoi(override); err == nil && v > 0 {
			n = v
		}
	}
	if n == 0 {
		n = max(1, int(float64(runtime.GOMAXPROCS(0))*multiplier))
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// ForCPU sizes a pool for CPU-bound work.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO sizes a pool for I/O-bound work.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed sizes a pool for work that both computes and waits on I/O.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}

// ForEach calls fn for every index in [0, n) using at most limit goroutines.
// It returns the first error, or the context error if ctx ended before all
// tasks started. A limit below one is treated as one.
func ForEach(ctx context.Context, limit, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	limit = min(max(limit, 1), n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	tasks := make(chan int)
	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if err := fn(ctx, i); err != nil {
					fail(err)
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		select {
		case <-ctx.Done():
			fail(ctx.Err())
			break feed
		case tasks <- i:
		}
	}
	close(tasks)
	wg.Wait()

	return firstErr
}
