package board

import "strings"

// MoveFlag marks special move semantics beyond a plain from/to.
type MoveFlag uint8

const (
	FlagNone MoveFlag = iota
	FlagDoublePawnPush
	FlagEnPassant
	FlagCastleKingSide
	FlagCastleQueenSide
)

// Move is a single legal move. Captured/Promotion are Empty when not
// applicable. SAN is filled in by the move generator (it needs the full
// legal-move list of the position to disambiguate), so a Move is only
// complete once it comes out of Position.LegalMoves.
type Move struct {
	From      Square
	To        Square
	Piece     Piece
	Color     Color
	Captured  Piece
	Promotion Piece
	Flag      MoveFlag
	San       string
}

// UCI renders the move in UCI long algebraic form ("e2e4", "e7e8q").
func (m Move) UCI() string {
	var sb strings.Builder
	sb.WriteString(m.From.String())
	sb.WriteString(m.To.String())
	if m.Promotion != Empty {
		sb.WriteByte(strings.ToLower(string(m.Promotion.Letter()))[0])
	}
	return sb.String()
}

func (m Move) IsCapture() bool {
	return m.Captured != Empty || m.Flag == FlagEnPassant
}

func (m Move) IsCastle() bool {
	return m.Flag == FlagCastleKingSide || m.Flag == FlagCastleQueenSide
}
