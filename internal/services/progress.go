package services

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// batchProgress tracks one upload batch. Progress is a single weighted
// average across all files: bytes transferred over total batch bytes.
type batchProgress struct {
	total       int64
	transferred atomic.Int64
	done        atomic.Bool
	failed      atomic.Bool
}

// BatchStatus is a point-in-time view of one upload batch. Done means the
// batch is no longer running; Failed qualifies the outcome, so a poller can
// tell an aborted batch from a completed one.
type BatchStatus struct {
	Fraction float64 `json:"progress"`
	Done     bool    `json:"done"`
	Failed   bool    `json:"failed"`
}

// progressBook holds the live upload batches, keyed by batch id.
type progressBook struct {
	mu      sync.Mutex
	batches map[string]*batchProgress
}

func newProgressBook() *progressBook {
	return &progressBook{batches: make(map[string]*batchProgress)}
}

func (b *progressBook) start(id string, total int64) *batchProgress {
	p := &batchProgress{total: total}
	b.mu.Lock()
	b.batches[id] = p
	b.mu.Unlock()
	return p
}

// finish marks the batch done and schedules its eviction, leaving a window
// for a final progress poll.
func (b *progressBook) finish(id string, failed bool) {
	b.mu.Lock()
	if p, ok := b.batches[id]; ok {
		p.failed.Store(failed)
		p.done.Store(true)
	}
	b.mu.Unlock()

	time.AfterFunc(time.Minute, func() {
		b.mu.Lock()
		delete(b.batches, id)
		b.mu.Unlock()
	})
}

// Progress reports the batch's status; the fraction is in [0, 1].
func (b *progressBook) progress(id string) (BatchStatus, bool) {
	b.mu.Lock()
	p, ok := b.batches[id]
	b.mu.Unlock()
	if !ok {
		return BatchStatus{}, false
	}
	status := BatchStatus{Fraction: 1, Done: p.done.Load(), Failed: p.failed.Load()}
	if p.total > 0 {
		status.Fraction = float64(p.transferred.Load()) / float64(p.total)
	}
	return status, true
}

// progressReader counts bytes as they stream into the blob store.
type progressReader struct {
	r        io.Reader
	progress *batchProgress
	onRead   func(n int64)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.progress.transferred.Add(int64(n))
		if pr.onRead != nil {
			pr.onRead(int64(n))
		}
	}
	return n, err
}
