package board

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func onBoard(f, r int) bool { return f >= 0 && f < 8 && r >= 0 && r < 8 }

// IsAttacked reports whether `by` attacks sq on the current board.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	f, r := sq.File(), sq.Rank()

	// Pawn attacks: a pawn of color `by` attacks diagonally forward from
	// its own perspective, so we look one rank *behind* sq (from by's POV).
	pawnRank := r - 1
	if by == Black {
		pawnRank = r + 1
	}
	for _, df := range [2]int{-1, 1} {
		pf := f + df
		if onBoard(pf, pawnRank) {
			if piece, color := p.PieceAt(MakeSquare(pf, pawnRank)); piece == Pawn && color == by {
				return true
			}
		}
	}

	for _, o := range knightOffsets {
		nf, nr := f+o[0], r+o[1]
		if onBoard(nf, nr) {
			if piece, color := p.PieceAt(MakeSquare(nf, nr)); piece == Knight && color == by {
				return true
			}
		}
	}

	for _, o := range kingOffsets {
		nf, nr := f+o[0], r+o[1]
		if onBoard(nf, nr) {
			if piece, color := p.PieceAt(MakeSquare(nf, nr)); piece == King && color == by {
				return true
			}
		}
	}

	if p.slidingAttack(f, r, rookDirs, by, Rook, Queen) {
		return true
	}
	if p.slidingAttack(f, r, bishopDirs, by, Bishop, Queen) {
		return true
	}
	return false
}

func (p *Position) slidingAttack(f, r int, dirs [4][2]int, by Color, straight, diag Piece) bool {
	for _, d := range dirs {
		nf, nr := f+d[0], r+d[1]
		for onBoard(nf, nr) {
			piece, color := p.PieceAt(MakeSquare(nf, nr))
			if piece != Empty {
				if color == by && (piece == straight || piece == diag) {
					return true
				}
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
	return false
}

// AttackersOf returns every square from which `by` attacks sq, unlike
// IsAttacked which only needs the first. Tag/role analysis (pin and
// overworked-defender detection) needs the full attacker/defender count,
// not just a boolean.
func (p *Position) AttackersOf(sq Square, by Color) []Square {
	var out []Square
	f, r := sq.File(), sq.Rank()

	pawnRank := r - 1
	if by == Black {
		pawnRank = r + 1
	}
	for _, df := range [2]int{-1, 1} {
		pf := f + df
		if onBoard(pf, pawnRank) {
			psq := MakeSquare(pf, pawnRank)
			if piece, color := p.PieceAt(psq); piece == Pawn && color == by {
				out = append(out, psq)
			}
		}
	}

	for _, o := range knightOffsets {
		nf, nr := f+o[0], r+o[1]
		if onBoard(nf, nr) {
			nsq := MakeSquare(nf, nr)
			if piece, color := p.PieceAt(nsq); piece == Knight && color == by {
				out = append(out, nsq)
			}
		}
	}

	for _, o := range kingOffsets {
		nf, nr := f+o[0], r+o[1]
		if onBoard(nf, nr) {
			nsq := MakeSquare(nf, nr)
			if piece, color := p.PieceAt(nsq); piece == King && color == by {
				out = append(out, nsq)
			}
		}
	}

	out = append(out, p.slidingAttackers(f, r, rookDirs, by, Rook, Queen)...)
	out = append(out, p.slidingAttackers(f, r, bishopDirs, by, Bishop, Queen)...)
	return out
}

func (p *Position) slidingAttackers(f, r int, dirs [4][2]int, by Color, straight, diag Piece) []Square {
	var out []Square
	for _, d := range dirs {
		nf, nr := f+d[0], r+d[1]
		for onBoard(nf, nr) {
			nsq := MakeSquare(nf, nr)
			piece, color := p.PieceAt(nsq)
			if piece != Empty {
				if color == by && (piece == straight || piece == diag) {
					out = append(out, nsq)
				}
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
	return out
}

// FirstSliderInDirection returns the first occupied square walking from sq
// in direction (df, dr), and whether it is occupied at all. Used for pin
// detection: the first piece encountered outward from the king.
func (p *Position) FirstSliderInDirection(sq Square, df, dr int) (Square, bool) {
	f, r := sq.File()+df, sq.Rank()+dr
	for onBoard(f, r) {
		s := MakeSquare(f, r)
		if piece, _ := p.PieceAt(s); piece != Empty {
			return s, true
		}
		f += df
		r += dr
	}
	return NoSquare, false
}

// InCheck reports whether color's king is currently attacked.
func (p *Position) InCheck(color Color) bool {
	king := p.King(color)
	if king == NoSquare {
		return false
	}
	return p.IsAttacked(king, color.Opposite())
}
