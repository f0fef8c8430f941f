package goal

import "github.com/blunext/chessinvestigator/board"

// Progress returns a partial-satisfaction heuristic in [0,1]: exactly 1 iff
// n is satisfied on path; otherwise a predicate-specific estimate, or 0
// when no informative heuristic applies (spec.md §4.7).
func Progress(n *Node, path Path) float64 {
	if n == nil {
		return 0
	}
	if Eval(n, path) {
		return 1
	}
	switch n.Kind {
	case KindAnd:
		min := 1.0
		for _, c := range n.Children {
			if p := Progress(c, path); p < min {
				min = p
			}
		}
		if len(n.Children) == 0 {
			return 0
		}
		return min
	case KindOr:
		max := 0.0
		for _, c := range n.Children {
			if p := Progress(c, path); p > max {
				max = p
			}
		}
		return max
	case KindNot:
		if len(n.Children) != 1 {
			return 0
		}
		return 1 - Progress(n.Children[0], path)
	case KindPredicate:
		return predicateProgress(n, path)
	default:
		return 0
	}
}

func predicateProgress(n *Node, path Path) float64 {
	cur := path.Current()
	switch n.PredType {
	case PredPieceOnSquare:
		return pieceOnSquareProgress(&cur, n)
	case PredCastle:
		side, ok := resolveSide(n.Side, cur.SideToMove)
		if ok && side == cur.SideToMove && canCastleNext(&cur) {
			return 0.5
		}
		return 0
	default:
		return 0
	}
}

func chebyshev(a, b board.Square) int {
	df := a.File() - b.File()
	dr := a.Rank() - b.Rank()
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

func pieceOnSquareProgress(cur *board.Position, n *Node) float64 {
	best := -1
	for sq := board.Square(0); sq < 64; sq++ {
		piece, color := cur.PieceAt(sq)
		if piece.Letter() != n.PieceLetter || !matchesSideLetterCase(n, color) {
			continue
		}
		d := chebyshev(sq, n.Square)
		if best == -1 || d < best {
			best = d
		}
	}
	if best == -1 {
		return 0
	}
	return 1 - float64(best)/8
}
