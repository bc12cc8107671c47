// Package queue implements the Job Queue & Worker Pool (C5): an unbounded
// FIFO of scan requests drained by a fixed number of dispatcher goroutines,
// each of which pops an item and spawns its execution fire-and-forget so the
// dispatcher can immediately go back to popping (spec.md §4.5).
package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// queueDepth is a process-wide gauge so every Queue instance (in practice,
// exactly one per process) reports its depth to the same /metrics surface
// the rest of the service uses.
var queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "secretscanner_queue_depth",
	Help: "Current number of items waiting in the job queue.",
})

func init() {
	prometheus.MustRegister(queueDepth)
}

// Queue owns the FIFO, the dispatcher pool, and the I/O/CPU resource pools
// shared by every job in flight.
type Queue struct {
	logger     *zap.Logger
	fifo       *fifo
	pools      *pools
	executor   *executor
	maxWorkers int

	wg          sync.WaitGroup // dispatcher goroutines
	active      sync.WaitGroup // in-flight job executions, for graceful shutdown
	activeCount atomic.Int64   // same population as active, exposed for /health
}

// Config is the subset of config.Config the queue needs, kept narrow so the
// package doesn't import the root config package.
type Config struct {
	MaxWorkers int
	IOPoolSize int
}

// New builds a Queue ready for Start. d supplies every collaborator an
// executed job needs (catalog, classifier, fetcher, courier).
func New(logger *zap.Logger, cfg Config, d Deps) *Queue {
	p := newPools(cfg.IOPoolSize)
	return &Queue{
		logger:     logger,
		fifo:       newFIFO(),
		pools:      p,
		executor:   &executor{deps: d, pools: p},
		maxWorkers: cfg.MaxWorkers,
	}
}

// backPressureFactor matches spec.md §4.5: reject new work once the queue
// depth reaches 2x the dispatcher count.
const backPressureFactor = 2

// Enqueue adds item to the tail of the queue, unless the current depth has
// already reached the back-pressure threshold, in which case it returns
// entity.ErrQueueFull and the caller (C7) surfaces 429 queue_full.
func (q *Queue) Enqueue(project string, item Item) error {
	depth := q.fifo.depth()
	threshold := backPressureFactor * q.maxWorkers
	if depth >= threshold {
		applog.WarnQueueFull(q.logger, project, depth, q.maxWorkers)
		return entity.ErrQueueFull
	}
	q.fifo.push(item)
	queueDepth.Set(float64(depth + 1))
	applog.InfoEnqueue(q.logger, "job enqueued", project, depth+1)
	return nil
}

// Depth reports the current queue length, for the /health surface.
func (q *Queue) Depth() int {
	return q.fifo.depth()
}

// MaxWorkers reports the configured dispatcher count, for the /health
// surface.
func (q *Queue) MaxWorkers() int {
	return q.maxWorkers
}

// ActiveWorkers reports how many jobs are currently executing, for the
// /health surface.
func (q *Queue) ActiveWorkers() int {
	return int(q.activeCount.Load())
}

// Start launches the fixed dispatcher goroutines. Each loops: pop an item,
// spawn its execution in its own goroutine (fire-and-forget), then
// immediately loop back to popping the next item — dispatch throughput is
// never gated on any single job's runtime.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.maxWorkers; i++ {
		q.wg.Add(1)
		go q.dispatchLoop(ctx)
	}
}

func (q *Queue) dispatchLoop(ctx context.Context) {
	defer q.wg.Done()
	for {
		item, ok := q.fifo.pop(ctx)
		if !ok {
			return
		}
		queueDepth.Set(float64(q.fifo.depth()))
		q.active.Add(1)
		q.activeCount.Add(1)
		go func() {
			defer q.active.Done()
			defer q.activeCount.Add(-1)
			q.executor.run(ctx, item)
		}()
	}
}

// Shutdown closes the FIFO so every dispatcher's pop returns, waits for
// dispatcher goroutines to exit, then drains the resource pools up to their
// grace windows. In-flight jobs that exceed the grace window are abandoned,
// not cancelled, matching the best-effort delivery model of C6. A non-nil
// error means at least one pool was still draining when its grace window
// expired.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.fifo.close()
	q.wg.Wait()
	q.active.Wait()
	return q.pools.shutdown()
}
