// Package worker runs batches of work on a fixed set of goroutines that
// live as long as the pool.
package worker

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrNoWorkers is returned when a pool is created with fewer than one worker.
	ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
	// ErrPoolClosed is returned by Scatter after Close.
	ErrPoolClosed = errors.New("worker pool closed")
)

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }

// Chunks splits [0, n) into at most parts contiguous ranges of n/parts
// elements; the last range absorbs the remainder.
func Chunks(n, parts int) []Range {
	if n <= 0 || parts <= 0 {
		return nil
	}
	if parts > n {
		parts = n
	}
	size := n / parts
	ranges := make([]Range, parts)
	for i := 0; i < parts; i++ {
		ranges[i] = Range{Start: i * size, End: (i + 1) * size}
	}
	ranges[parts-1].End = n
	return ranges
}

type task struct {
	index int
	span  Range
	fn    func(index int, span Range)
	done  *sync.WaitGroup
}

// Pool is a persistent set of workers. Scatter may be called from one
// goroutine at a time.
type Pool struct {
	workers int
	tasks   chan task
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	once   sync.Once

	batches   atomic.Int64
	totalJobs atomic.Int64
}

// NewPool starts workers goroutines.
func NewPool(workers int) (*Pool, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p, nil
}

func (p *Pool) run() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.fn(t.index, t.span)
		p.totalJobs.Add(1)
		t.done.Done()
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.workers }

// Scatter splits [0, n) with Chunks(n, Size()) and runs fn once per chunk on
// the workers, returning after every chunk has finished. fn receives the
// chunk index so callers can write into per-chunk buffers without locking.
func (p *Pool) Scatter(n int, fn func(index int, span Range)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	ranges := Chunks(n, p.workers)
	if len(ranges) == 0 {
		return nil
	}

	var done sync.WaitGroup
	done.Add(len(ranges))
	for i, r := range ranges {
		p.tasks <- task{index: i, span: r, fn: fn, done: &done}
	}
	done.Wait()
	p.batches.Add(1)
	return nil
}

// Stats returns the number of completed batches and chunks.
func (p *Pool) Stats() (batches, jobs int64) {
	return p.batches.Load(), p.totalJobs.Load()
}

// Close stops the workers after in-flight batches finish. It is safe to call
// more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
