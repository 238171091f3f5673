// ABOUTME: Simple worker pool for parallelizing batch tasks
// ABOUTME: Submit-and-wait pattern used to fan out fitness evaluations of one generation

package pool

import (
	"runtime"
	"sync"
)

// WorkerPool manages a fixed set of worker goroutines for parallel task execution
type WorkerPool struct {
	workers  int
	taskChan chan func()
	workerWg sync.WaitGroup // tracks worker goroutines lifetime
	taskWg   sync.WaitGroup // tracks submitted tasks completion

	mu        sync.Mutex
	recovered any // first task panic since the last Wait
}

// NewWorkerPool starts the given number of workers; workers <= 0 uses one per CPU.
// The bufferSize determines the task channel capacity.
func NewWorkerPool(workers, bufferSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &WorkerPool{
		workers:  workers,
		taskChan: make(chan func(), max(0, bufferSize)),
	}

	for range workers {
		p.workerWg.Add(1)

		go func() {
			defer p.workerWg.Done()

			for task := range p.taskChan {
				p.run(task)
			}
		}()
	}

	return p
}

// run executes one task, keeping a panic for Wait to re-raise
func (p *WorkerPool) run(task func()) {
	defer p.taskWg.Done()

	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			if p.recovered == nil {
				p.recovered = r
			}
			p.mu.Unlock()
		}
	}()

	task()
}

// Workers returns the number of worker goroutines
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Submit adds a task to the pool
// Blocks if the task channel is full
func (p *WorkerPool) Submit(task func()) {
	p.taskWg.Add(1)
	p.taskChan <- task
}

// Wait blocks until all submitted tasks have completed.
// If any task panicked, Wait panics with the first recovered value on the caller's goroutine.
func (p *WorkerPool) Wait() {
	p.taskWg.Wait()

	p.mu.Lock()
	r := p.recovered
	p.recovered = nil
	p.mu.Unlock()

	if r != nil {
		panic(r)
	}
}

// Close shuts down the worker pool and waits for all workers to exit
func (p *WorkerPool) Close() {
	close(p.taskChan)
	p.workerWg.Wait()
}
