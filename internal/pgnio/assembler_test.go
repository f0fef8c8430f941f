package pgnio

import (
	"strings"
	"testing"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/investigator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_HeadersCarryFENForNonInitialPosition(t *testing.T) {
	fen := "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	result := &investigator.InvestigationResult{
		RootFEN: fen,
		Tree: &investigator.ExplorationNode{
			FEN:      fen,
			PVFull:   []string{"Kf2"},
			EvalDeep: 50,
		},
	}
	out, err := Assemble(result, config.Default())
	require.NoError(t, err)
	assert.Contains(t, out, `[FEN "4k3/8/8/8/8/8/8/4K2R w K - 0 1"]`)
	assert.Contains(t, out, `[SetUp "1"]`)
	assert.Contains(t, out, "1.Kf2")
	assert.Contains(t, out, "[%eval +0.50]")
}

func TestAssemble_OmitsFENHeaderForInitialPosition(t *testing.T) {
	result := &investigator.InvestigationResult{
		RootFEN: board.InitialFEN,
		Tree: &investigator.ExplorationNode{
			FEN:    board.InitialFEN,
			PVFull: []string{"e4", "e5"},
		},
	}
	out, err := Assemble(result, config.Default())
	require.NoError(t, err)
	assert.NotContains(t, out, "[FEN")
	assert.Regexp(t, `1\.e4 \{.*\} e5 \{`, out)
}

func TestAssemble_BranchRendersAsVariation(t *testing.T) {
	fen := board.InitialFEN
	root := &investigator.ExplorationNode{
		FEN:    fen,
		PVFull: []string{"e4", "e5", "Nf3"},
		Branches: []*investigator.ExplorationNode{
			{
				FEN:           fen,
				MovePlayedSAN: "d4",
				PVFull:        []string{"d5"},
				Stopped:       true,
			},
		},
	}
	result := &investigator.InvestigationResult{RootFEN: fen, Tree: root}
	out, err := Assemble(result, config.Default())
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "(1.d4"), out)
}

func TestAssemble_IllegalBranchMoveTruncatesOnlyThatVariation(t *testing.T) {
	fen := board.InitialFEN
	root := &investigator.ExplorationNode{
		FEN:    fen,
		PVFull: []string{"e4"},
		Branches: []*investigator.ExplorationNode{
			{FEN: fen, MovePlayedSAN: "Qxe8"},
		},
	}
	result := &investigator.InvestigationResult{RootFEN: fen, Tree: root}
	out, err := Assemble(result, config.Default())
	require.NoError(t, err)
	assert.Contains(t, out, "1.e4")
}

func TestAssemble_PGNMaxCharsTruncates(t *testing.T) {
	fen := board.InitialFEN
	root := &investigator.ExplorationNode{FEN: fen, PVFull: []string{"e4", "e5", "Nf3", "Nc6"}}
	result := &investigator.InvestigationResult{RootFEN: fen, Tree: root}
	cfg := config.Default()
	cfg.PGNMaxChars = 10
	out, err := Assemble(result, cfg)
	require.NoError(t, err)
	assert.Len(t, out, 10)
}
