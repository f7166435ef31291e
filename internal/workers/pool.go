// Package workers provides a bounded goroutine pool for parallel
// fork-join workloads.
package workers

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Task is a unit of work.
type Task interface {
	Execute() error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func() error

func (f TaskFunc) Execute() error { return f() }

// Pool runs submitted tasks on a fixed set of worker goroutines. A
// panicking task is recovered and logged; it never takes down a worker.
type Pool struct {
	logger *zap.Logger
	name   string
	queue  chan Task
	wg     sync.WaitGroup
}

// New creates and starts a pool with numWorkers goroutines and a task
// queue of queueSize. Worker counts below 1 are raised to 1.
func New(logger *zap.Logger, name string, numWorkers, queueSize int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 1 {
		queueSize = numWorkers
	}

	p := &Pool{
		logger: logger,
		name:   name,
		queue:  make(chan Task, queueSize),
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.work(i)
	}

	logger.Debug("worker pool started",
		zap.String("pool", name),
		zap.Int("workers", numWorkers),
		zap.Int("queueSize", queueSize))
	return p
}

// Submit enqueues a task, blocking while the queue is full. Submitting
// after Shutdown panics on the closed channel; callers own that ordering.
func (p *Pool) Submit(task Task) {
	p.queue <- task
}

// Shutdown stops accepting tasks and blocks until every queued task has
// finished.
func (p *Pool) Shutdown() {
	close(p.queue)
	p.wg.Wait()
	p.logger.Debug("worker pool drained", zap.String("pool", p.name))
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for task := range p.queue {
		p.runTask(id, task)
	}
}

func (p *Pool) runTask(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked",
				zap.String("pool", p.name),
				zap.Int("worker", id),
				zap.Any("panic", r))
		}
	}()

	if err := task.Execute(); err != nil {
		p.logger.Warn("task failed",
			zap.String("pool", p.name),
			zap.Int("worker", id),
			zap.Error(fmt.Errorf("execute: %w", err)))
	}
}
