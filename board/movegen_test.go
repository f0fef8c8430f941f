package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanSet(moves []Move) map[string]bool {
	out := make(map[string]bool, len(moves))
	for _, m := range moves {
		out[m.San] = true
	}
	return out
}

func TestLegalMoves_InitialPosition(t *testing.T) {
	pos, err := ParseFEN(InitialFEN)
	require.NoError(t, err)
	moves := pos.LegalMoves()
	assert.Len(t, moves, 20)
	sans := sanSet(moves)
	assert.True(t, sans["e4"])
	assert.True(t, sans["Nf3"])
}

func TestLegalMoves_SingleMoveOnly(t *testing.T) {
	// White king on g1 with only Kh1 available: the black rook on f2,
	// guarded by the g3 pawn, covers f1, f2, g2 and h2. Per spec.md S1
	// (trivial best-move scenario).
	pos, err := ParseFEN("7k/8/8/8/8/6p1/5r2/6K1 w - - 0 1")
	require.NoError(t, err)
	moves := pos.LegalMoves()
	require.NotEmpty(t, moves)
	assert.Len(t, moves, 1)
	assert.Equal(t, "Kh1", moves[0].San)
}

func TestCastling_KingSideAvailable(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	moves := pos.LegalMoves()
	sans := sanSet(moves)
	assert.True(t, sans["O-O"])
	assert.True(t, sans["O-O-O"])
}

func TestCastling_BlockedByAttackedTransitSquare(t *testing.T) {
	// Black rook on f8 attacks f1, the kingside transit square, so O-O
	// is illegal even though neither king is in check.
	pos, err := ParseFEN("4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	require.NoError(t, err)
	sans := sanSet(pos.LegalMoves())
	assert.False(t, sans["O-O"])
	assert.True(t, sans["O-O-O"])
}

func TestEnPassantCapture(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	require.NoError(t, err)
	move, err := pos.ParseSAN("exd6")
	require.NoError(t, err)
	assert.Equal(t, FlagEnPassant, move.Flag)
	next := pos.MakeMove(move)
	piece, _ := next.PieceAt(MakeSquare(3, 4))
	assert.Equal(t, Empty, piece)
}

func TestPromotion(t *testing.T) {
	pos, err := ParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	moves := pos.LegalMoves()
	sans := sanSet(moves)
	assert.True(t, sans["a8=Q"])
	assert.True(t, sans["a8=N"])
}

func TestDisambiguation(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/R3K2R w - - 0 1")
	require.NoError(t, err)
	moves := pos.LegalMoves()
	sans := sanSet(moves)
	assert.True(t, sans["Rad1"] || sans["Rhd1"] || sans["Rd1"])
}

func TestCheckmateDetection(t *testing.T) {
	// Fool's mate final position: black just delivered mate.
	pos, err := ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	assert.True(t, pos.InCheck(White))
	assert.Empty(t, pos.LegalMoves())
}
