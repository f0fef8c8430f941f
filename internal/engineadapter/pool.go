package engineadapter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool multiplexes Analyze calls over a fixed set of engine workers; any
// idle worker may pick up the next call (spec.md §4.1/§5 "Pool"
// configuration). Concurrency is bounded by len(workers) via a weighted
// semaphore — adopted from hailam-chessplay's indirect golang.org/x/sync
// dependency (pulled in there by ebiten) and put to direct use here for
// the one place this system genuinely fans out concurrent work.
type Pool struct {
	workers []Engine
	idle    chan int
	sem     *semaphore.Weighted
}

// NewPool wraps workers behind a bounded-concurrency Analyze.
func NewPool(workers []Engine) *Pool {
	idle := make(chan int, len(workers))
	for i := range workers {
		idle <- i
	}
	return &Pool{
		workers: workers,
		idle:    idle,
		sem:     semaphore.NewWeighted(int64(len(workers))),
	}
}

// Analyze blocks until a worker is free, then delegates to it. Per-worker
// ordering is FIFO; across workers there is no ordering guarantee, matching
// spec.md §5 ("no ordering guarantees across workers beyond per-worker FIFO").
func (p *Pool) Analyze(ctx context.Context, fen string, depth, multiPV int) (AnalysisResult, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return AnalysisResult{}, err
	}
	defer p.sem.Release(1)

	idx := <-p.idle
	defer func() { p.idle <- idx }()

	return p.workers[idx].Analyze(ctx, fen, depth, multiPV)
}

// Close shuts down every worker, collecting the first error encountered.
func (p *Pool) Close() error {
	var first error
	for _, w := range p.workers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
