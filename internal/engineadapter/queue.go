package engineadapter

import "context"

// Queue serializes every Analyze call behind a single engine via a FIFO
// work channel — spec.md §4.1/§5's "Queue" configuration, for a caller
// that only has one engine license/process to spend.
type Queue struct {
	engine Engine
	work   chan queueJob
	done   chan struct{}
}

type queueJob struct {
	ctx     context.Context
	fen     string
	depth   int
	multiPV int
	result  chan queueResult
}

type queueResult struct {
	analysis AnalysisResult
	err      error
}

// NewQueue starts the FIFO worker goroutine in front of engine.
func NewQueue(engine Engine) *Queue {
	q := &Queue{
		engine: engine,
		work:   make(chan queueJob),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for job := range q.work {
		analysis, err := q.engine.Analyze(job.ctx, job.fen, job.depth, job.multiPV)
		job.result <- queueResult{analysis, err}
	}
	close(q.done)
}

// Analyze enqueues the call and blocks until it has run, in submission order.
func (q *Queue) Analyze(ctx context.Context, fen string, depth, multiPV int) (AnalysisResult, error) {
	job := queueJob{ctx: ctx, fen: fen, depth: depth, multiPV: multiPV, result: make(chan queueResult, 1)}
	select {
	case q.work <- job:
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	}
	select {
	case r := <-job.result:
		return r.analysis, r.err
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	}
}

// Close stops the worker goroutine and closes the underlying engine.
func (q *Queue) Close() error {
	close(q.work)
	<-q.done
	return q.engine.Close()
}
