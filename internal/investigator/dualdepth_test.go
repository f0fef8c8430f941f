package investigator

import (
	"context"
	"testing"

	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Analyze(ctx context.Context, fen string, depth, multiPV int) (engineadapter.AnalysisResult, error) {
	args := m.Called(fen, depth, multiPV)
	return args.Get(0).(engineadapter.AnalysisResult), args.Error(1)
}

func (m *mockEngine) Close() error { return nil }

func TestOverestimatedMoves_StopsAtDeepBest(t *testing.T) {
	shallowTop := []engineadapter.TopMove{
		{MoveSAN: "Nf3", Rank: 1},
		{MoveSAN: "e4", Rank: 2},
		{MoveSAN: "d4", Rank: 3},
	}
	got := overestimatedMoves(shallowTop, "e4")
	assert.Equal(t, []string{"Nf3"}, got)
}

func TestOverestimatedMoves_DeepBestAbsentMeansEverythingIsOverestimated(t *testing.T) {
	shallowTop := []engineadapter.TopMove{
		{MoveSAN: "Nf3", Rank: 1},
		{MoveSAN: "d4", Rank: 2},
	}
	got := overestimatedMoves(shallowTop, "c4")
	assert.Equal(t, []string{"Nf3", "d4"}, got)
}

func TestBuildTree_ShortCircuitsWhenDepthsMatch(t *testing.T) {
	eng := &mockEngine{}
	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	result := engineadapter.AnalysisResult{
		EvalCP: 20, BestMoveUCI: "e2e4", BestMoveSAN: "e4",
		PVSan: []string{"e4", "e5"}, HasSecondBest: true, SecondBestSAN: "d4", SecondBestCP: 18,
	}
	eng.On("Analyze", fen, 4, 2).Return(result, nil)
	// threat analyzer's null-move FEN always has black to move here.
	eng.On("Analyze", mock.MatchedBy(func(f string) bool { return true }), 4, 2).Return(engineadapter.AnalysisResult{}, nil).Maybe()

	cfg := config.Default()
	cfg.DepthDeep = 4
	cfg.DepthShallow = 4

	node, err := BuildTree(context.Background(), eng, cfg, fen)
	require.NoError(t, err)
	assert.Equal(t, "dual_depth_disabled", node.StopReason)
	assert.True(t, node.Stopped)
	assert.Equal(t, "e4", node.BestMoveDeepSAN)
}
