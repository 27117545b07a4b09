package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is returned when work is submitted to a stopped pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Runner submits a unit of work for bounded execution and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func() error) error
}

// task pairs a unit of work with its completion channel.
type task struct {
	fn   func() error
	done chan error
}

// Pool runs submitted work on a fixed set of worker goroutines behind a
// bounded queue. It is safe for concurrent use. Do blocks only until the
// caller's context expires, regardless of queue saturation, so a burst of
// expensive work cannot stall callers past their own deadlines.
type Pool struct {
	tasks     chan *task
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	workers   int
	closed    bool
}

// NewPool creates a pool with the given worker count and queue capacity.
// queueSize determines how many tasks can be waiting before Do blocks.
func NewPool(workers, queueSize int) *Pool {
	return &Pool{
		tasks:     make(chan *task, queueSize),
		closeChan: make(chan struct{}),
		workers:   workers,
	}
}

// Start launches the worker goroutines. Workers exit when the pool is
// stopped or ctx is canceled, whichever comes first.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	p.mu.RUnlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	return nil
}

// worker executes tasks until the pool stops.
func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.closeChan:
			return
		case t := <-p.tasks:
			if t == nil {
				return
			}
			t.done <- p.run(t.fn)
		}
	}
}

// run executes one task, converting a panic into an error so a poisoned
// task cannot take the process down.
func (p *Pool) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn()
}

// Do submits fn and waits for it to finish, returning fn's error. Both the
// enqueue and the wait respect ctx. When Do returns ctx.Err() the task may
// still execute later; callers must only rely on fn's side effects when Do
// returned fn's own result.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	p.mu.RUnlock()

	t := &task{fn: fn, done: make(chan error, 1)}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closeChan:
		return ErrPoolClosed
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the pool and waits for in-flight tasks to finish, bounded by
// ctx. Tasks still waiting in the queue are abandoned; their callers unblock
// through their own contexts.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.closeChan)
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

// Ensure Pool implements the Runner interface.
var _ Runner = (*Pool)(nil)
