package queue

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
)

// pools bundles the two resource gates of spec.md §4.5: a thread-pool-style
// I/O gate for blocking network operations, and a CPU gate sized to the
// host core count for the combined scan+classify stage. Both are built on
// sourcegraph/conc's bounded pool, reused for the lifetime of the process —
// submit via runOn, which blocks only the calling goroutine, not the pool.
type pools struct {
	io  *pool.Pool
	cpu *pool.Pool
}

func newPools(ioSize int) *pools {
	cpuSize := runtime.NumCPU()
	if cpuSize < 1 {
		cpuSize = 1
	}
	return &pools{
		io:  pool.New().WithMaxGoroutines(ioSize),
		cpu: pool.New().WithMaxGoroutines(cpuSize),
	}
}

// runOn submits fn to p and blocks the caller (not the pool) until it
// completes, returning fn's result. Concurrency across all callers sharing p
// is still bounded by p's WithMaxGoroutines size.
func runOn[T any](p *pool.Pool, fn func() T) T {
	result := make(chan T, 1)
	p.Go(func() {
		result <- fn()
	})
	return <-result
}

const (
	ioShutdownGrace  = 10 * time.Second
	cpuShutdownGrace = 15 * time.Second
)

// shutdown waits for in-flight pool tasks up to their grace windows; it
// never blocks indefinitely, matching spec.md §4.5's bounded shutdown. A
// grace window that expires before the pool drains is reported, not
// swallowed, so an operator can tell the difference between a clean and a
// forced shutdown from the aggregated error.
func (p *pools) shutdown() error {
	return multierr.Combine(
		waitWithTimeout("io pool", p.io.Wait, ioShutdownGrace),
		waitWithTimeout("cpu pool", p.cpu.Wait, cpuShutdownGrace),
	)
}

func waitWithTimeout(name string, wait func(), grace time.Duration) error {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return fmt.Errorf("%s did not drain within %s", name, grace)
	}
}
