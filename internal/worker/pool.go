package worker

import (
	"context"
	"sync"
)

// Task is a unit of work producing a value of type T
type Task[T any] func(ctx context.Context) T

// Pool runs tasks on a fixed number of goroutines and collects their values
type Pool[T any] struct {
	size   int
	tasks  chan Task[T]
	out    chan T
	ctx    context.Context
	cancel context.CancelFunc

	workers   sync.WaitGroup
	closeOnce sync.Once
	outOnce   sync.Once
	done      chan struct{}
	results   []T
}

// NewPool creates a pool whose tasks run under ctx; cancelling ctx stops the pool
func NewPool[T any](ctx context.Context, size int) *Pool[T] {
	if size <= 0 {
		size = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[T]{
		size:   size,
		tasks:  make(chan Task[T], size),
		out:    make(chan T, size),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Size returns the number of worker goroutines
func (p *Pool[T]) Size() int {
	return p.size
}

// Start launches the workers and the collector
func (p *Pool[T]) Start() {
	for range p.size {
		p.workers.Go(p.work)
	}
	go p.collect()
}

func (p *Pool[T]) work() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			// The collector always drains out
			p.out <- task(p.ctx)
		}
	}
}

func (p *Pool[T]) collect() {
	defer close(p.done)
	for v := range p.out {
		p.results = append(p.results, v)
	}
}

// Submit queues task and reports whether it was accepted.
// It must not be called after Wait.
func (p *Pool[T]) Submit(task Task[T]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task:
		return true
	}
}

// Wait runs every queued task to completion and returns the collected values
// in completion order
func (p *Pool[T]) Wait() []T {
	p.closeOnce.Do(func() { close(p.tasks) })
	return p.finish()
}

// Shutdown cancels running tasks, drops queued ones and returns what was collected
func (p *Pool[T]) Shutdown() []T {
	p.cancel()
	return p.finish()
}

func (p *Pool[T]) finish() []T {
	p.workers.Wait()
	p.cancel()
	p.outOnce.Do(func() { close(p.out) })
	<-p.done
	return p.results
}
