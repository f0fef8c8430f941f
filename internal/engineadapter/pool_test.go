package engineadapter

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockEngine lets tests stub Analyze via testify/mock, the way the
// investigator/target/orchestrator packages fake the UCI boundary in their tests.
type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Analyze(ctx context.Context, fen string, depth, multiPV int) (AnalysisResult, error) {
	args := m.Called(ctx, fen, depth, multiPV)
	return args.Get(0).(AnalysisResult), args.Error(1)
}

func (m *mockEngine) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestPool_DelegatesToWorker(t *testing.T) {
	worker := &mockEngine{}
	expected := AnalysisResult{BestMoveUCI: "e2e4", EvalCP: 30}
	worker.On("Analyze", mock.Anything, "fen", 10, 1).Return(expected, nil)

	pool := NewPool([]Engine{worker})
	got, err := pool.Analyze(context.Background(), "fen", 10, 1)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	worker.AssertExpectations(t)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var inFlight int32
	var maxInFlight int32
	worker := &slowEngine{
		fn: func() {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				cur := atomic.LoadInt32(&maxInFlight)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		},
	}
	pool := NewPool([]Engine{worker, worker})

	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, _ = pool.Analyze(context.Background(), "fen", 1, 1)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	assert.LessOrEqual(t, int(atomic.LoadInt32(&maxInFlight)), 2)
}

type slowEngine struct {
	fn func()
}

func (s *slowEngine) Analyze(ctx context.Context, fen string, depth, multiPV int) (AnalysisResult, error) {
	s.fn()
	return AnalysisResult{}, nil
}

func (s *slowEngine) Close() error { return nil }

func TestQueue_SerializesCalls(t *testing.T) {
	worker := &mockEngine{}
	worker.On("Analyze", mock.Anything, "fenA", 5, 1).Return(AnalysisResult{BestMoveUCI: "a"}, nil)
	worker.On("Analyze", mock.Anything, "fenB", 5, 1).Return(AnalysisResult{BestMoveUCI: "b"}, nil)
	worker.On("Close").Return(nil)

	q := NewQueue(worker)
	defer q.Close()

	r1, err := q.Analyze(context.Background(), "fenA", 5, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", r1.BestMoveUCI)

	r2, err := q.Analyze(context.Background(), "fenB", 5, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", r2.BestMoveUCI)
}
