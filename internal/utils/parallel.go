package utils

import (
	"sync"
)

// RunParallel executes all tasks concurrently and returns results and errors
// positionally aligned with the input. Callers decide per-slot whether an
// error aborts the whole batch or degrades that slot only.
func RunParallel[T any](tasks []func() (T, error)) ([]T, []error) {
	var wg sync.WaitGroup
	results := make([]T, len(tasks))
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(index int, t func() (T, error)) {
			defer wg.Done()
			result, err := t()
			results[index] = result
			errs[index] = err
		}(i, task)
	}

	wg.Wait()
	return results, errs
}

// FirstError returns the first non-nil error in errs, or nil.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// WorkerPool bounds the concurrency of a task batch.
type WorkerPool struct {
	taskChan chan func()
	wg       sync.WaitGroup
}

// NewWorkerPool starts maxWorkers workers.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	pool := &WorkerPool{
		taskChan: make(chan func(), maxWorkers*2),
	}
	for i := 0; i < maxWorkers; i++ {
		go pool.worker()
	}
	return pool
}

func (p *WorkerPool) worker() {
	for task := range p.taskChan {
		task()
		p.wg.Done()
	}
}

// AddTask queues a task on the pool.
func (p *WorkerPool) AddTask(task func()) {
	p.wg.Add(1)
	p.taskChan <- task
}

// Wait blocks until all queued tasks have run.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Close stops the workers. The pool must not be reused afterwards.
func (p *WorkerPool) Close() {
	close(p.taskChan)
}
