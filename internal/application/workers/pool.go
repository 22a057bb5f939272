package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Job processes item i of a batch.
type Job func(ctx context.Context, i int) error

// Pool runs batches of jobs on a fixed number of workers.
type Pool struct {
	size   int
	logger *zap.Logger

	mu      sync.RWMutex
	workers []*worker
}

// worker represents a single worker goroutine
type worker struct {
	id      string
	mu      sync.RWMutex
	status  WorkerStatus
	lastJob time.Time
}

// WorkerStatus represents worker status
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusBusy    WorkerStatus = "busy"
	WorkerStatusStopped WorkerStatus = "stopped"
)

// NewPool creates a new worker pool. Sizes below one are raised to one.
func NewPool(size int, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}

	workers := make([]*worker, size)
	for i := range workers {
		workers[i] = &worker{
			id:     fmt.Sprintf("worker-%d", i),
			status: WorkerStatusStopped,
		}
	}

	return &Pool{size: size, logger: logger, workers: workers}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run executes job for every index in [0, n) and blocks until all workers
// have stopped. The first failure cancels the context passed to jobs still
// to run. Batches on the same pool are serialized.
func (p *Pool) Run(ctx context.Context, n int, job Job) error {
	if n == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	queue := make(chan int, n)
	for i := 0; i < n; i++ {
		queue <- i
	}
	close(queue)

	active := p.size
	if n < active {
		active = n
	}

	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		jobErrs error
	)
	for _, w := range p.workers[:active] {
		wg.Add(1)
		w.setStatus(WorkerStatusIdle)
		go func(w *worker) {
			defer wg.Done()
			defer w.setStatus(WorkerStatusStopped)

			for i := range queue {
				if ctx.Err() != nil {
					return
				}

				w.setStatus(WorkerStatusBusy)
				err := job(ctx, i)
				w.setStatus(WorkerStatusIdle)

				if err != nil {
					p.logger.Debug("job failed",
						zap.String("worker_id", w.id),
						zap.Int("job", i),
						zap.Error(err))
					errMu.Lock()
					jobErrs = multierr.Append(jobErrs, err)
					errMu.Unlock()
					cancel()
				}
			}
		}(w)
	}
	wg.Wait()

	if jobErrs != nil {
		return jobErrs
	}
	// Cancellation by the caller may have left jobs unrun.
	return parent.Err()
}

// GetStatus returns the status of all workers
func (p *Pool) GetStatus() map[string]WorkerStatus {
	status := make(map[string]WorkerStatus, len(p.workers))
	for _, w := range p.workers {
		w.mu.RLock()
		status[w.id] = w.status
		w.mu.RUnlock()
	}
	return status
}

func (w *worker) setStatus(s WorkerStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = s
	if s == WorkerStatusBusy {
		w.lastJob = time.Now()
	}
}
