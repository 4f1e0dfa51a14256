package usecase

import (
	"context"
	"sync"
)

// Task is a unit of work run by a WorkerPool.
type Task func(ctx context.Context) error

// Result carries the error returned by one Task.
type Result struct {
	Err error
}

// WorkerPool runs submitted tasks on a fixed number of goroutines. Workers stop
// taking new tasks once ctx is done; tasks never started are simply dropped.
type WorkerPool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
}

// NewWorkerPool creates a pool with the given worker count and task buffer.
func NewWorkerPool(workers, buffer int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &WorkerPool{
		workers: workers,
		tasks:   make(chan Task, buffer),
	}
}

// Submit enqueues t. It blocks when the buffer is full.
func (p *WorkerPool) Submit(t Task) {
	if p == nil || t == nil {
		return
	}
	p.tasks <- t
}

// Close signals that no more tasks will be submitted.
func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	close(p.tasks)
}

// Run starts the workers. The returned channel yields one Result per finished
// task and is closed after every worker has exited.
func (p *WorkerPool) Run(ctx context.Context) <-chan Result {
	if p == nil {
		out := make(chan Result)
		close(out)
		return out
	}
	out := make(chan Result, cap(p.tasks)+p.workers)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					if t == nil {
						continue
					}
					err := t(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- Result{Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}
