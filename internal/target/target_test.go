package target

import (
	"context"
	"testing"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/blunext/chessinvestigator/internal/goal"
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

func castleKingsideGoal() *goal.Node {
	return &goal.Node{
		Kind:     goal.KindPredicate,
		PredType: goal.PredCastle,
		Side:     goal.SideWhite,
	}
}

func TestSearch_GoalSatisfiedAtRoot(t *testing.T) {
	eng := &mockEngine{}
	// White to move, already castled (king on g1, rook on f1).
	fen := "r1bq1rk1/pppp1ppp/2n2n2/2b1p3/2B1P3/2NP1N2/PPP2PPP/R1BQ1RK1 w - - 0 1"
	policy := config.Default().TargetSearch

	goalNode := &goal.Node{
		Kind:       goal.KindPredicate,
		PredType:   goal.PredCastle,
		Side:       goal.SideWhite,
		CastleMode: goal.CastleAlready,
	}
	result, err := Search(context.Background(), eng, fen, goalNode, policy, config.Default().NodeLimit)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 0, result.Witnesses[0].Depth)
	assert.Equal(t, 1.0, result.Witnesses[0].Progress)
	eng.AssertNotCalled(t, "Analyze")
}

func TestSearch_CastleNextMoveIsAOneDepthWitness(t *testing.T) {
	eng := &mockEngine{}
	fen := "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/2NP1N2/PPP2PPP/R1BQK2R w KQkq - 0 1"
	policy := config.Default().TargetSearch
	policy.BranchingLimit = 4
	policy.BeamWidth = 4

	eng.On("Analyze", fen, policy.EngineDepthPropose, policy.BranchingLimit).Return(engineadapter.AnalysisResult{
		TopMoves: []engineadapter.TopMove{
			{MoveSAN: "O-O", EvalCP: 40, Rank: 1},
			{MoveSAN: "d4", EvalCP: 20, Rank: 2},
		},
	}, nil)
	// Every other call (the opponent's reply to d4, proposals from the
	// position after it) finds nothing.
	eng.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(engineadapter.AnalysisResult{}, nil)

	goalNode := &goal.Node{
		Kind:       goal.KindPredicate,
		PredType:   goal.PredCastle,
		Side:       goal.SideWhite,
		CastleMode: goal.CastleAlready,
	}
	result, err := Search(context.Background(), eng, fen, goalNode, policy, config.Default().NodeLimit)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	require.NotEmpty(t, result.Witnesses)
	assert.Equal(t, []string{"O-O"}, result.Witnesses[0].LineSAN)
	assert.Equal(t, 1, result.Witnesses[0].Depth)
}

func TestSearch_MaxDepthZeroUnsatisfiedIsFailure(t *testing.T) {
	eng := &mockEngine{}
	policy := config.Default().TargetSearch
	policy.MaxDepth = 0

	goalNode := castleKingsideGoal()
	goalNode.CastleMode = goal.CastleAlready
	result, err := Search(context.Background(), eng, board.InitialFEN, goalNode, policy, config.Default().NodeLimit)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, result.Status)
	assert.Empty(t, result.Witnesses)
}

func TestRankWitnesses_OrdersByDepthThenPliesThenProgressThenScoreThenLine(t *testing.T) {
	ws := []Witness{
		{LineSAN: []string{"b", "move"}, Depth: 2, Plies: 2, Progress: 0.5, ScoreCP: 10},
		{LineSAN: []string{"a", "move"}, Depth: 1, Plies: 1, Progress: 1, ScoreCP: 0},
		{LineSAN: []string{"c", "move"}, Depth: 1, Plies: 1, Progress: 1, ScoreCP: 50},
	}
	ranked := rankWitnesses(ws, 10)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"c", "move"}, ranked[0].LineSAN)
	assert.Equal(t, []string{"a", "move"}, ranked[1].LineSAN)
	assert.Equal(t, []string{"b", "move"}, ranked[2].LineSAN)
}

func TestRankWitnesses_TruncatesToTopK(t *testing.T) {
	ws := []Witness{
		{Depth: 1, LineSAN: []string{"a"}},
		{Depth: 2, LineSAN: []string{"b"}},
		{Depth: 3, LineSAN: []string{"c"}},
	}
	ranked := rankWitnesses(ws, 2)
	assert.Len(t, ranked, 2)
}
