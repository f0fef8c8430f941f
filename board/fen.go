package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blunext/chessinvestigator/internal/errs"
)

var pieceFromLetter = map[byte]Piece{
	'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King,
}

// ParseFEN parses a standard 6-field FEN string. Every field must round
// through ToFEN bit-exactly (spec.md §6/§8).
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return Position{}, fmt.Errorf("%w: expected 6 fields, got %d", errs.ErrMalformedFEN, len(fields))
	}

	pos := NewEmpty()

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Position{}, fmt.Errorf("%w: expected 8 ranks, got %d", errs.ErrMalformedFEN, len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			switch {
			case ch >= '1' && ch <= '8':
				file += int(ch - '0')
			default:
				lower := byte(ch)
				if lower >= 'A' && lower <= 'Z' {
					lower = lower - 'A' + 'a'
				}
				piece, ok := pieceFromLetter[lower]
				if !ok || file > 7 {
					return Position{}, fmt.Errorf("%w: bad piece placement", errs.ErrMalformedFEN)
				}
				color := White
				if byte(ch) == lower {
					color = Black
				}
				pos.set(MakeSquare(file, rank), piece, color)
				file++
			}
		}
		if file != 8 {
			return Position{}, fmt.Errorf("%w: rank %d has %d files", errs.ErrMalformedFEN, i, file)
		}
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fmt.Errorf("%w: bad side to move %q", errs.ErrMalformedFEN, fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				pos.Castle |= WhiteKingSide
			case 'Q':
				pos.Castle |= WhiteQueenSide
			case 'k':
				pos.Castle |= BlackKingSide
			case 'q':
				pos.Castle |= BlackQueenSide
			default:
				return Position{}, fmt.Errorf("%w: bad castling field %q", errs.ErrMalformedFEN, fields[2])
			}
		}
	}

	if fields[3] == "-" {
		pos.EnPassant = NoSquare
	} else {
		sq, ok := ParseSquare(fields[3])
		if !ok {
			return Position{}, fmt.Errorf("%w: bad en passant square %q", errs.ErrMalformedFEN, fields[3])
		}
		pos.EnPassant = sq
	}

	half, err := strconv.Atoi(fields[4])
	if err != nil || half < 0 {
		return Position{}, fmt.Errorf("%w: bad halfmove clock %q", errs.ErrMalformedFEN, fields[4])
	}
	pos.HalfmoveClock = half

	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 {
		return Position{}, fmt.Errorf("%w: bad fullmove number %q", errs.ErrMalformedFEN, fields[5])
	}
	pos.FullmoveNumber = full

	return pos, nil
}

// FEN renders the position back to its 6-field FEN string.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := MakeSquare(file, rank)
			piece := p.squares[sq]
			if piece == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			letter := piece.Letter()
			if p.colors[sq] == Black {
				letter = letter - 'A' + 'a'
			}
			sb.WriteByte(letter)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	castle := ""
	if p.Castle&WhiteKingSide != 0 {
		castle += "K"
	}
	if p.Castle&WhiteQueenSide != 0 {
		castle += "Q"
	}
	if p.Castle&BlackKingSide != 0 {
		castle += "k"
	}
	if p.Castle&BlackQueenSide != 0 {
		castle += "q"
	}
	if castle == "" {
		castle = "-"
	}
	sb.WriteString(castle)

	sb.WriteByte(' ')
	if p.EnPassant == NoSquare {
		sb.WriteByte('-')
	} else {
		sb.WriteString(p.EnPassant.String())
	}

	fmt.Fprintf(&sb, " %d %d", p.HalfmoveClock, p.FullmoveNumber)
	return sb.String()
}
