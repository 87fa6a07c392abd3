package utils

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunParallelKeepsPositions(t *testing.T) {
	tasks := make([]func() (int, error), 10)
	for i := range tasks {
		i := i
		tasks[i] = func() (int, error) {
			// Later slots finish first.
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i * i, nil
		}
	}

	results, errs := RunParallel(tasks)
	if len(results) != 10 || len(errs) != 10 {
		t.Fatalf("got %d results, %d errors", len(results), len(errs))
	}
	for i, got := range results {
		if got != i*i {
			t.Fatalf("slot %d = %d", i, got)
		}
	}
	if err := FirstError(errs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunParallelIsolatesErrors(t *testing.T) {
	boom := errors.New("boom")
	results, errs := RunParallel([]func() (string, error){
		func() (string, error) { return "ok", nil },
		func() (string, error) { return "", boom },
		func() (string, error) { return "also ok", nil },
	})
	if errs[0] != nil || errs[2] != nil {
		t.Fatal("healthy slots must not carry errors")
	}
	if !errors.Is(errs[1], boom) {
		t.Fatalf("errs[1] = %v", errs[1])
	}
	if results[0] != "ok" || results[2] != "also ok" {
		t.Fatalf("results = %v", results)
	}
	if !errors.Is(FirstError(errs), boom) {
		t.Fatal("FirstError must surface the failure")
	}
}

func TestRunParallelEmpty(t *testing.T) {
	results, errs := RunParallel[int](nil)
	if len(results) != 0 || len(errs) != 0 {
		t.Fatalf("got %v, %v", results, errs)
	}
}

func TestWorkerPoolRunsEverything(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var ran atomic.Int64
	for i := 0; i < 100; i++ {
		pool.AddTask(func() { ran.Add(1) })
	}
	pool.Wait()
	if got := ran.Load(); got != 100 {
		t.Fatalf("ran %d of 100 tasks", got)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var active, peak atomic.Int64
	for i := 0; i < 20; i++ {
		pool.AddTask(func() {
			now := active.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		})
	}
	pool.Wait()
	if got := peak.Load(); got > 2 {
		t.Fatalf("observed %d concurrent tasks with 2 workers", got)
	}
}
