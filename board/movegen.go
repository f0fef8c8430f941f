package board

// pseudoLegalMoves generates every move for SideToMove that obeys piece
// movement rules, without verifying the mover's own king stays safe.
func (p *Position) pseudoLegalMoves() []Move {
	var moves []Move
	color := p.SideToMove
	for sq := Square(0); sq < 64; sq++ {
		piece, pc := p.PieceAt(sq)
		if piece == Empty || pc != color {
			continue
		}
		switch piece {
		case Pawn:
			moves = append(moves, p.pawnMoves(sq, color)...)
		case Knight:
			moves = append(moves, p.offsetMoves(sq, color, Knight, knightOffsets[:])...)
		case King:
			moves = append(moves, p.offsetMoves(sq, color, King, kingOffsets[:])...)
			moves = append(moves, p.castleMoves(sq, color)...)
		case Bishop:
			moves = append(moves, p.slidingMoves(sq, color, Bishop, bishopDirs[:])...)
		case Rook:
			moves = append(moves, p.slidingMoves(sq, color, Rook, rookDirs[:])...)
		case Queen:
			moves = append(moves, p.slidingMoves(sq, color, Queen, rookDirs[:])...)
			moves = append(moves, p.slidingMoves(sq, color, Queen, bishopDirs[:])...)
		}
	}
	return moves
}

func (p *Position) offsetMoves(sq Square, color Color, piece Piece, offsets [][2]int) []Move {
	var moves []Move
	f, r := sq.File(), sq.Rank()
	for _, o := range offsets {
		nf, nr := f+o[0], r+o[1]
		if !onBoard(nf, nr) {
			continue
		}
		to := MakeSquare(nf, nr)
		target, targetColor := p.PieceAt(to)
		if target != Empty && targetColor == color {
			continue
		}
		moves = append(moves, Move{From: sq, To: to, Piece: piece, Color: color, Captured: capturedOf(target, targetColor, color)})
	}
	return moves
}

func (p *Position) slidingMoves(sq Square, color Color, piece Piece, dirs [][2]int) []Move {
	var moves []Move
	f, r := sq.File(), sq.Rank()
	for _, d := range dirs {
		nf, nr := f+d[0], r+d[1]
		for onBoard(nf, nr) {
			to := MakeSquare(nf, nr)
			target, targetColor := p.PieceAt(to)
			if target == Empty {
				moves = append(moves, Move{From: sq, To: to, Piece: piece, Color: color})
			} else {
				if targetColor != color {
					moves = append(moves, Move{From: sq, To: to, Piece: piece, Color: color, Captured: target})
				}
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
	return moves
}

func capturedOf(target Piece, targetColor, mover Color) Piece {
	if target != Empty && targetColor != mover {
		return target
	}
	return Empty
}

var promotionPieces = [4]Piece{Queen, Rook, Bishop, Knight}

func (p *Position) pawnMoves(sq Square, color Color) []Move {
	var moves []Move
	f, r := sq.File(), sq.Rank()
	dir, startRank, promoRank := 1, 1, 7
	if color == Black {
		dir, startRank, promoRank = -1, 6, 0
	}

	addPawnMove := func(to Square, captured Piece, flag MoveFlag) {
		if to.Rank() == promoRank {
			for _, promo := range promotionPieces {
				moves = append(moves, Move{From: sq, To: to, Piece: Pawn, Color: color, Captured: captured, Promotion: promo, Flag: flag})
			}
		} else {
			moves = append(moves, Move{From: sq, To: to, Piece: Pawn, Color: color, Captured: captured, Flag: flag})
		}
	}

	// Single push.
	if onBoard(f, r+dir) {
		oneAhead := MakeSquare(f, r+dir)
		if piece, _ := p.PieceAt(oneAhead); piece == Empty {
			addPawnMove(oneAhead, Empty, FlagNone)
			// Double push from the start rank.
			if r == startRank && onBoard(f, r+2*dir) {
				twoAhead := MakeSquare(f, r+2*dir)
				if piece, _ := p.PieceAt(twoAhead); piece == Empty {
					moves = append(moves, Move{From: sq, To: twoAhead, Piece: Pawn, Color: color, Flag: FlagDoublePawnPush})
				}
			}
		}
	}

	// Captures (including en passant).
	for _, df := range [2]int{-1, 1} {
		nf, nr := f+df, r+dir
		if !onBoard(nf, nr) {
			continue
		}
		to := MakeSquare(nf, nr)
		target, targetColor := p.PieceAt(to)
		if target != Empty && targetColor != color {
			addPawnMove(to, target, FlagNone)
		} else if to == p.EnPassant && p.EnPassant != NoSquare {
			addPawnMove(to, Pawn, FlagEnPassant)
		}
	}

	return moves
}

func (p *Position) castleMoves(kingSq Square, color Color) []Move {
	var moves []Move
	if p.InCheck(color) {
		return moves
	}
	rank := 0
	if color == Black {
		rank = 7
	}
	if kingSq != MakeSquare(4, rank) {
		return moves
	}
	opp := color.Opposite()

	kingSide := WhiteKingSide
	queenSide := WhiteQueenSide
	if color == Black {
		kingSide, queenSide = BlackKingSide, BlackQueenSide
	}

	if p.Castle&kingSide != 0 {
		fSq, gSq, hSq := MakeSquare(5, rank), MakeSquare(6, rank), MakeSquare(7, rank)
		if empty(p, fSq) && empty(p, gSq) && rookAt(p, hSq, color) {
			if !p.IsAttacked(fSq, opp) && !p.IsAttacked(gSq, opp) {
				moves = append(moves, Move{From: kingSq, To: gSq, Piece: King, Color: color, Flag: FlagCastleKingSide})
			}
		}
	}
	if p.Castle&queenSide != 0 {
		dSq, cSq, bSq, aSq := MakeSquare(3, rank), MakeSquare(2, rank), MakeSquare(1, rank), MakeSquare(0, rank)
		if empty(p, dSq) && empty(p, cSq) && empty(p, bSq) && rookAt(p, aSq, color) {
			if !p.IsAttacked(dSq, opp) && !p.IsAttacked(cSq, opp) {
				moves = append(moves, Move{From: kingSq, To: cSq, Piece: King, Color: color, Flag: FlagCastleQueenSide})
			}
		}
	}
	return moves
}

func empty(p *Position, sq Square) bool {
	piece, _ := p.PieceAt(sq)
	return piece == Empty
}

func rookAt(p *Position, sq Square, color Color) bool {
	piece, c := p.PieceAt(sq)
	return piece == Rook && c == color
}

// LegalMoves returns every pseudo-legal move that does not leave the
// mover's own king in check, with SAN filled in (disambiguated against
// the full legal set, spec.md §6).
func (p *Position) LegalMoves() []Move {
	color := p.SideToMove
	pseudo := p.pseudoLegalMoves()
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		next := p.Clone()
		next.apply(m)
		if !next.InCheck(color) {
			legal = append(legal, m)
		}
	}
	for i := range legal {
		legal[i].San = p.sanFor(legal[i], legal)
	}
	return legal
}

// MakeMove returns the position after playing m (assumed legal/pseudo-legal
// from p). It never mutates p.
func (p *Position) MakeMove(m Move) Position {
	next := p.Clone()
	next.apply(m)
	return next
}

func (p *Position) apply(m Move) {
	mover := m.Piece
	color := m.Color

	p.clear(m.From)

	if m.Flag == FlagEnPassant {
		capturedRank := m.To.Rank() - 1
		if color == Black {
			capturedRank = m.To.Rank() + 1
		}
		p.clear(MakeSquare(m.To.File(), capturedRank))
	}

	placed := mover
	if m.Promotion != Empty {
		placed = m.Promotion
	}
	p.set(m.To, placed, color)

	if m.Flag == FlagCastleKingSide {
		rank := m.From.Rank()
		p.clear(MakeSquare(7, rank))
		p.set(MakeSquare(5, rank), Rook, color)
	} else if m.Flag == FlagCastleQueenSide {
		rank := m.From.Rank()
		p.clear(MakeSquare(0, rank))
		p.set(MakeSquare(3, rank), Rook, color)
	}

	p.updateCastleRights(m)

	if m.Flag == FlagDoublePawnPush {
		epRank := m.From.Rank() + 1
		if color == Black {
			epRank = m.From.Rank() - 1
		}
		p.EnPassant = MakeSquare(m.From.File(), epRank)
	} else {
		p.EnPassant = NoSquare
	}

	if mover == Pawn || m.IsCapture() {
		p.HalfmoveClock = 0
	} else {
		p.HalfmoveClock++
	}

	if color == Black {
		p.FullmoveNumber++
	}

	p.SideToMove = color.Opposite()
}

func (p *Position) updateCastleRights(m Move) {
	lose := func(sq Square, rights CastleRights) {
		if m.From == sq || m.To == sq {
			p.Castle &^= rights
		}
	}
	if m.Piece == King {
		if m.Color == White {
			p.Castle &^= WhiteKingSide | WhiteQueenSide
		} else {
			p.Castle &^= BlackKingSide | BlackQueenSide
		}
	}
	lose(MakeSquare(0, 0), WhiteQueenSide)
	lose(MakeSquare(7, 0), WhiteKingSide)
	lose(MakeSquare(0, 7), BlackQueenSide)
	lose(MakeSquare(7, 7), BlackKingSide)
}
