package tags

import (
	"testing"

	"github.com/blunext/chessinvestigator/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFEN(t *testing.T, fen string) board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return pos
}

func hasTagNamed(list []Tag, name string) bool {
	for _, t := range list {
		if t.Name == name {
			return true
		}
	}
	return false
}

func TestAnalyze_BishopPair(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/2B1KB2 w - - 0 1")
	got, _ := Analyze(&pos)
	assert.True(t, hasTagNamed(got, "tag.bishop.pair"))
}

func TestAnalyze_PassedPawn(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/4P3/8/8/8/4K3 w - - 0 1")
	got, _ := Analyze(&pos)
	assert.True(t, hasTagNamed(got, "tag.pawn.passed"))
}

func TestAnalyze_IsolatedAndDoubledPawns(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/4P3/8/2P1P3/4K3 w - - 0 1")
	got, _ := Analyze(&pos)
	assert.True(t, hasTagNamed(got, "tag.pawn.doubled"))
	assert.True(t, hasTagNamed(got, "tag.pawn.isolated"))
}

func TestAnalyze_RookOpenFile(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w Q - 0 1")
	got, _ := Analyze(&pos)
	assert.True(t, hasTagNamed(got, "tag.rook.open_file"))
}

func TestAnalyze_PinnedRole(t *testing.T) {
	// White king on e1, white knight on e4 (pinned), black rook on e8 facing down the e-file.
	pos := mustFEN(t, "4r3/8/8/8/4N3/8/8/4K3 w - - 0 1")
	_, roles := Analyze(&pos)
	found := false
	for _, r := range roles {
		if r.Role == "role.tactical.pinned" && r.PieceID == "white_knight_e4" {
			found = true
		}
	}
	assert.True(t, found, "expected knight on e4 to be pinned to its king: %+v", roles)
}

func TestAnalyze_OverworkedDefender(t *testing.T) {
	// White queen on d1 is the sole defender of rooks on a1 and h1, both
	// attacked down their files by black rooks on a8 and h8.
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/4K3/R2Q3R w - - 0 1")
	tagsOut, roles := Analyze(&pos)
	foundTag := false
	for _, tg := range tagsOut {
		if tg.Name == "tag.piece.overworked.d1" {
			foundTag = true
		}
	}
	foundRole := false
	for _, r := range roles {
		if r.Role == "role.defending.overworked" && r.PieceID == "white_queen_d1" {
			foundRole = true
		}
	}
	assert.True(t, foundTag, "expected overworked tag on d1: %+v", tagsOut)
	assert.True(t, foundRole, "expected overworked role on queen d1: %+v", roles)
}

func TestDiff_StableInstanceBishopPairDoesNotChurn(t *testing.T) {
	before := []Tag{{Name: "tag.bishop.pair", Side: board.White, Squares: []board.Square{2, 5}}}
	after := []Tag{{Name: "tag.bishop.pair", Side: board.White, Squares: []board.Square{2, 29}}}

	gained, lost := Diff(before, after)
	assert.Empty(t, gained)
	assert.Empty(t, lost)
}

func TestDiff_OrdinaryTagChurnsOnSquareChange(t *testing.T) {
	before := []Tag{{Name: "tag.pawn.passed", Side: board.White, Squares: []board.Square{28}, Pieces: []string{"white_pawn_e4"}}}
	after := []Tag{{Name: "tag.pawn.passed", Side: board.White, Squares: []board.Square{36}, Pieces: []string{"white_pawn_e5"}}}

	gained, lost := Diff(before, after)
	require.Len(t, gained, 1)
	require.Len(t, lost, 1)
	assert.Equal(t, "e5", gained[0].Squares[0].String())
	assert.Equal(t, "e4", lost[0].Squares[0].String())
}

func TestDiffRoles_GainedAndLost(t *testing.T) {
	before := []PieceRole{{PieceID: "white_knight_e4", Role: "role.tactical.pinned"}}
	after := []PieceRole{{PieceID: "white_knight_f3", Role: "role.tactical.pinned"}}

	gained, lost := DiffRoles(before, after)
	require.Len(t, gained, 1)
	require.Len(t, lost, 1)
	assert.Equal(t, "white_knight_f3", gained[0].PieceID)
	assert.Equal(t, "white_knight_e4", lost[0].PieceID)
}
