package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Job is a unit of out-of-band work
type Job func(ctx context.Context)

type queuedJob struct {
	ctx context.Context
	fn  Job
}

// Pool runs jobs on a fixed set of workers fed by a bounded queue
type Pool struct {
	queue   chan queuedJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewPool starts workers goroutines reading from a queue of queueSize
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{queue: make(chan queuedJob, queueSize)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	slog.Info("worker pool started", "workers", workers, "queue_size", queueSize)
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for job := range p.queue {
		p.run(job)
	}
}

func (p *Pool) run(job queuedJob) {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("job panic recovered",
				"error", fmt.Sprint(err),
				"stack", string(debug.Stack()),
			)
		}
	}()
	job.fn(job.ctx)
}

// Submit enqueues fn without blocking. The job keeps ctx's values but
// not its cancellation, so it outlives the request that started it.
func (p *Pool) Submit(ctx context.Context, fn Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.queue <- queuedJob{ctx: context.WithoutCancel(ctx), fn: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects new jobs and waits for queued and running ones to finish
// or for ctx to end.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
