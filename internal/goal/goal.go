// Package goal compiles the goal AST from spec.md §4.7 into a pure
// predicate over (board, path) plus a [0,1] progress heuristic, used by
// Target Search to decide whether a beam-search witness has reached its
// objective.
package goal

import (
	"regexp"
	"strings"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/errs"
)

// Side restricts a predicate to one player, or the side to move at the
// position under test.
type Side string

const (
	SideToMove Side = "side_to_move"
	SideWhite  Side = "white"
	SideBlack  Side = "black"
)

// NodeKind discriminates composite and leaf AST nodes.
type NodeKind string

const (
	KindAnd       NodeKind = "and"
	KindOr        NodeKind = "or"
	KindNot       NodeKind = "not"
	KindPredicate NodeKind = "predicate"
)

// PredicateType enumerates the leaf predicate kinds spec.md §4.7 supports.
type PredicateType string

const (
	PredCastle                PredicateType = "castle"
	PredPlayMove               PredicateType = "play_move"
	PredPieceOnSquare          PredicateType = "piece_on_square"
	PredPieceOnColor           PredicateType = "piece_on_color"
	PredMaterialDeltaAtLeast   PredicateType = "material_delta_at_least"
	PredFENContains            PredicateType = "fen_contains"
	PredFENRegex               PredicateType = "fen_regex"
)

// CastleMode distinguishes the two castle{} predicate modes.
type CastleMode string

const (
	CastleAlready CastleMode = "already_castled"
	CastleCanNext CastleMode = "can_castle_next"
)

// Node is one AST node: composite (And/Or/Not) or a leaf Predicate.
type Node struct {
	Kind     NodeKind
	Children []*Node // and/or/not

	// Leaf fields, populated when Kind == KindPredicate.
	PredType PredicateType
	Side     Side

	// castle
	CastleMode CastleMode

	// play_move
	MoveSAN string

	// piece_on_square / piece_on_color
	PieceLetter byte
	Square      board.Square
	SquareColor string // "light" | "dark"

	// material_delta_at_least
	Pawns int

	// fen_contains / fen_regex
	Pattern string
	regex   *regexp.Regexp
}

// Path is the move/position trail accumulated by the search so far,
// including the root — Path[0] is the root position, Path[i] is the
// position after the i-th move, MovesSAN[i-1] is the move that produced it.
type Path struct {
	Root         board.Position
	Positions    []board.Position // root included at index 0
	MovesSAN     []string         // len == len(Positions)-1
	RootMaterial int
}

// NewPath seeds a path at root.
func NewPath(root board.Position) Path {
	return Path{
		Root:         root,
		Positions:    []board.Position{root},
		RootMaterial: root.MaterialBalanceCP(),
	}
}

// Extend returns a new Path with one more ply appended.
func (p Path) Extend(moveSAN string, next board.Position) Path {
	positions := append(append([]board.Position{}, p.Positions...), next)
	moves := append(append([]string{}, p.MovesSAN...), moveSAN)
	return Path{Root: p.Root, Positions: positions, MovesSAN: moves, RootMaterial: p.RootMaterial}
}

// Current returns the path's current (latest) position.
func (p Path) Current() board.Position {
	return p.Positions[len(p.Positions)-1]
}

// Compile validates and prepares a Node for evaluation (e.g. pre-compiling
// regex patterns). Unknown predicate types and malformed params produce
// ErrInvalidGoalAST; callers are expected to treat the whole goal as
// unsatisfiable (false), not to propagate the parse failure into search
// control flow, per spec.md §7.
func Compile(n *Node) error {
	if n == nil {
		return errs.ErrInvalidGoalAST
	}
	switch n.Kind {
	case KindAnd, KindOr:
		for _, c := range n.Children {
			if err := Compile(c); err != nil {
				return err
			}
		}
	case KindNot:
		if len(n.Children) != 1 {
			return errs.ErrInvalidGoalAST
		}
		return Compile(n.Children[0])
	case KindPredicate:
		switch n.PredType {
		case PredCastle, PredPlayMove, PredPieceOnSquare, PredPieceOnColor, PredMaterialDeltaAtLeast, PredFENContains:
			// no extra prep needed
		case PredFENRegex:
			re, err := regexp.Compile(n.Pattern)
			if err != nil {
				return errs.ErrInvalidGoalAST
			}
			n.regex = re
		default:
			return errs.ErrInvalidGoalAST
		}
	default:
		return errs.ErrInvalidGoalAST
	}
	return nil
}

// Eval evaluates the compiled AST against path. An uncompiled or malformed
// node (should have been caught by Compile) evaluates to false rather than
// panicking — spec.md §7 requires goal faults to degrade silently.
func Eval(n *Node, path Path) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindAnd:
		for _, c := range n.Children {
			if !Eval(c, path) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range n.Children {
			if Eval(c, path) {
				return true
			}
		}
		return false
	case KindNot:
		if len(n.Children) != 1 {
			return false
		}
		return !Eval(n.Children[0], path)
	case KindPredicate:
		return evalPredicate(n, path)
	default:
		return false
	}
}

func resolveSide(side Side, toMove board.Color) (board.Color, bool) {
	switch side {
	case SideWhite:
		return board.White, true
	case SideBlack:
		return board.Black, true
	case SideToMove, "":
		return toMove, true
	default:
		return board.NoColor, false
	}
}

func evalPredicate(n *Node, path Path) bool {
	cur := path.Current()
	switch n.PredType {
	case PredCastle:
		side, ok := resolveSide(n.Side, cur.SideToMove)
		if !ok {
			return false
		}
		switch n.CastleMode {
		case CastleAlready:
			return hasCastled(path, side)
		case CastleCanNext:
			if cur.SideToMove != side {
				return false
			}
			return canCastleNext(&cur)
		default:
			return false
		}
	case PredPlayMove:
		side, ok := resolveSide(n.Side, cur.SideToMove)
		if !ok {
			return false
		}
		return playedMoveByside(path, n.MoveSAN, side)
	case PredPieceOnSquare:
		piece, color := cur.PieceAt(n.Square)
		return piece.Letter() == n.PieceLetter && matchesSideLetterCase(n, color)
	case PredPieceOnColor:
		return pieceOnSquareColor(&cur, n)
	case PredMaterialDeltaAtLeast:
		return materialDeltaAtLeast(path, n)
	case PredFENContains:
		return strings.Contains(cur.FEN(), n.Pattern)
	case PredFENRegex:
		if n.regex == nil {
			return false
		}
		return n.regex.MatchString(cur.FEN())
	default:
		return false
	}
}

// matchesSideLetterCase checks piece color against n.Side when n.Side names
// an explicit color; side_to_move is treated as "don't care" for color
// since piece_on_square already pins the square.
func matchesSideLetterCase(n *Node, color board.Color) bool {
	switch n.Side {
	case SideWhite:
		return color == board.White
	case SideBlack:
		return color == board.Black
	default:
		return true
	}
}

func hasCastled(path Path, side board.Color) bool {
	for i, moveSAN := range path.MovesSAN {
		mover := path.Positions[i].SideToMove
		if mover == side && (moveSAN == "O-O" || moveSAN == "O-O-O") {
			return true
		}
	}
	// A root position with the king and rook already on their castled
	// squares counts as castled before the search began.
	rank := 0
	if side == board.Black {
		rank = 7
	}
	king := path.Root.King(side)
	for _, kr := range [2][2]int{{6, 5}, {2, 3}} {
		if king != board.MakeSquare(kr[0], rank) {
			continue
		}
		if piece, color := path.Root.PieceAt(board.MakeSquare(kr[1], rank)); piece == board.Rook && color == side {
			return true
		}
	}
	return false
}

func canCastleNext(pos *board.Position) bool {
	for _, m := range pos.LegalMoves() {
		if m.IsCastle() {
			return true
		}
	}
	return false
}

func playedMoveByside(path Path, moveSAN string, side board.Color) bool {
	for i, m := range path.MovesSAN {
		mover := path.Positions[i].SideToMove
		if mover == side && m == moveSAN {
			return true
		}
	}
	return false
}

func pieceOnSquareColor(cur *board.Position, n *Node) bool {
	for sq := board.Square(0); sq < 64; sq++ {
		piece, color := cur.PieceAt(sq)
		if piece.Letter() != n.PieceLetter || !matchesSideLetterCase(n, color) {
			continue
		}
		isLight := sq.IsLight()
		if (n.SquareColor == "light") == isLight {
			return true
		}
	}
	return false
}

func materialDeltaAtLeast(path Path, n *Node) bool {
	cur := path.Current()
	delta := cur.MaterialBalanceCP() - path.RootMaterial
	side, ok := resolveSide(n.Side, cur.SideToMove)
	if !ok {
		return false
	}
	if side == board.Black {
		delta = -delta
	}
	return delta >= n.Pawns*100
}
