package goal

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

func TestCompile_UnknownPredicateType(t *testing.T) {
	n := &Node{Kind: KindPredicate, PredType: "bogus"}
	err := Compile(n)
	assert.Error(t, err)
}

func TestEval_PieceOnSquare(t *testing.T) {
	pos := mustFEN(t, board.InitialFEN)
	sq, _ := board.ParseSquare("e1")
	n := &Node{Kind: KindPredicate, PredType: PredPieceOnSquare, PieceLetter: 'K', Square: sq}
	require.NoError(t, Compile(n))
	assert.True(t, Eval(n, NewPath(pos)))
}

func TestEval_AndShortCircuits(t *testing.T) {
	pos := mustFEN(t, board.InitialFEN)
	always := &Node{Kind: KindPredicate, PredType: PredFENContains, Pattern: "w KQkq"}
	never := &Node{Kind: KindPredicate, PredType: PredFENContains, Pattern: "impossible-substring"}
	n := &Node{Kind: KindAnd, Children: []*Node{always, never}}
	require.NoError(t, Compile(n))
	assert.False(t, Eval(n, NewPath(pos)))
}

func TestEval_Or(t *testing.T) {
	pos := mustFEN(t, board.InitialFEN)
	never := &Node{Kind: KindPredicate, PredType: PredFENContains, Pattern: "impossible-substring"}
	always := &Node{Kind: KindPredicate, PredType: PredFENContains, Pattern: "w KQkq"}
	n := &Node{Kind: KindOr, Children: []*Node{never, always}}
	require.NoError(t, Compile(n))
	assert.True(t, Eval(n, NewPath(pos)))
}

func TestEval_Not(t *testing.T) {
	pos := mustFEN(t, board.InitialFEN)
	always := &Node{Kind: KindPredicate, PredType: PredFENContains, Pattern: "w KQkq"}
	n := &Node{Kind: KindNot, Children: []*Node{always}}
	require.NoError(t, Compile(n))
	assert.False(t, Eval(n, NewPath(pos)))
}

func TestEval_MaterialDeltaAtLeast(t *testing.T) {
	root := mustFEN(t, board.InitialFEN)
	// Remove a black knight to simulate White being up one minor piece.
	ahead := mustFEN(t, "rnbqkb1r/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")

	path := NewPath(root)
	path = path.Extend("Nxb8?!", ahead)

	n := &Node{Kind: KindPredicate, PredType: PredMaterialDeltaAtLeast, Side: SideWhite, Pawns: 2}
	require.NoError(t, Compile(n))
	assert.True(t, Eval(n, path))
}

func TestEval_FENRegex(t *testing.T) {
	pos := mustFEN(t, board.InitialFEN)
	n := &Node{Kind: KindPredicate, PredType: PredFENRegex, Pattern: `^rnbqkbnr/`}
	require.NoError(t, Compile(n))
	assert.True(t, Eval(n, NewPath(pos)))
}

func TestProgress_PieceOnSquareHeuristic(t *testing.T) {
	pos := mustFEN(t, board.InitialFEN)
	target, _ := board.ParseSquare("e4")
	n := &Node{Kind: KindPredicate, PredType: PredPieceOnSquare, PieceLetter: 'P', Square: target}
	require.NoError(t, Compile(n))

	p := Progress(n, NewPath(pos))
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestProgress_SatisfiedReturnsOne(t *testing.T) {
	pos := mustFEN(t, board.InitialFEN)
	sq, _ := board.ParseSquare("e1")
	n := &Node{Kind: KindPredicate, PredType: PredPieceOnSquare, PieceLetter: 'K', Square: sq}
	require.NoError(t, Compile(n))
	assert.Equal(t, 1.0, Progress(n, NewPath(pos)))
}

func TestProgress_CastleCanNextHalfCredit(t *testing.T) {
	// White has not castled yet, but castling is legal this move: half credit.
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	n := &Node{Kind: KindPredicate, PredType: PredCastle, CastleMode: CastleAlready, Side: SideWhite}
	require.NoError(t, Compile(n))
	assert.Equal(t, 0.5, Progress(n, NewPath(pos)))
}
