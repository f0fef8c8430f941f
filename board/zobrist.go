package board

import "math/rand"

// Zobrist hashing gives Target Search's transposition guard (spec.md §4.8)
// its visited-set key; the guard compares these hashes only, not FEN
// strings. Adapted from the teacher's board/zobrist.go.
var (
	zobristPiece    [2][6][64]uint64
	zobristCastle   [16]uint64
	zobristEnPassant [8]uint64
	zobristSide     uint64
)

func init() {
	rng := rand.New(rand.NewSource(0x5EED1DEA))
	for c := 0; c < 2; c++ {
		for pc := 0; pc < 6; pc++ {
			for sq := 0; sq < 64; sq++ {
				zobristPiece[c][pc][sq] = rng.Uint64()
			}
		}
	}
	for i := range zobristCastle {
		zobristCastle[i] = rng.Uint64()
	}
	for i := range zobristEnPassant {
		zobristEnPassant[i] = rng.Uint64()
	}
	zobristSide = rng.Uint64()
}

// Hash computes a Zobrist hash of the position.
func (p *Position) Hash() uint64 {
	var h uint64
	for sq := Square(0); sq < 64; sq++ {
		piece, color := p.PieceAt(sq)
		if piece == Empty {
			continue
		}
		h ^= zobristPiece[color][piece-1][sq]
	}
	h ^= zobristCastle[p.Castle&0xF]
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	if p.SideToMove == Black {
		h ^= zobristSide
	}
	return h
}
