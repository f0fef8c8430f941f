package orchestrator

import (
	"context"
	"testing"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/claims"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/blunext/chessinvestigator/internal/investigator"
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

func TestInvestigate_MalformedFENReturnsMinimalResult(t *testing.T) {
	eng := &mockEngine{}
	o := New(eng, config.Default(), nil, nil)

	result, err := o.Investigate(context.Background(), "not a fen", "")
	require.Error(t, err)
	assert.Equal(t, "unknown", result.GamePhase)
	eng.AssertNotCalled(t, "Analyze")
}

func TestInvestigate_ShortCircuitWhenDepthsMatchAndCachesResult(t *testing.T) {
	eng := &mockEngine{}
	cfg := config.Default()
	cfg.DepthDeep = 8
	cfg.DepthShallow = 8
	o := New(eng, cfg, nil, nil)

	fen := board.InitialFEN
	eng.On("Analyze", fen, 8, 2).Return(engineadapter.AnalysisResult{
		EvalCP: 20, BestMoveSAN: "e4", PVSan: []string{"e4", "e5"},
	}, nil).Once()
	eng.On("Analyze", mock.Anything, 8, 2).Return(engineadapter.AnalysisResult{}, nil) // threat analyzer's null-move probe
	eng.On("Analyze", mock.Anything, 8, 1).Return(engineadapter.AnalysisResult{EvalCP: 20, BestMoveSAN: "e4"}, nil)

	result, err := o.Investigate(context.Background(), fen, "")
	require.NoError(t, err)
	require.NotNil(t, result.Tree)
	assert.True(t, result.Tree.Stopped)
	assert.Equal(t, "dual_depth_disabled", result.Tree.StopReason)

	// Second call should hit the result cache and never call Analyze again
	// with the root's root-analysis signature (Once() above would panic on
	// a second distinct call if the mock required it; absence of a new
	// expectation confirms the cache short-circuited).
	cached, err := o.Investigate(context.Background(), fen, "")
	require.NoError(t, err)
	assert.Equal(t, result.RootFEN, cached.RootFEN)
}

func TestFinalize_BindsAndCanonicalizesClaims(t *testing.T) {
	eng := &mockEngine{}
	o := New(eng, config.Default(), nil, nil)

	result := &investigator.InvestigationResult{
		RootFEN: board.InitialFEN,
		Tree:    &investigator.ExplorationNode{FEN: board.InitialFEN, PVFull: []string{"e4", "e5"}},
		Evidence: investigator.EvidenceLine{
			MovesSAN: []string{"e4", "e5"},
		},
	}

	claim := &claims.Claim{Summary: "A winning idea.", Connector: claims.ConnectorBecause}
	covered, digest := o.Finalize(result, []*claims.Claim{claim}, "", 1)
	require.Len(t, covered, 1)
	assert.Equal(t, claims.ConnectorBecause, covered[0].Connector)
	assert.Equal(t, []string{"e4", "e5"}, covered[0].EvidenceMoves)
	assert.NotNil(t, digest.StructuredFacts)
}
