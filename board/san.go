package board

import (
	"fmt"
	"strings"

	"github.com/blunext/chessinvestigator/internal/errs"
)

// sanFor renders m's standard algebraic notation, disambiguating against
// the other moves in the same legal-move set that share destination and
// piece type.
func (p *Position) sanFor(m Move, legal []Move) string {
	var sb strings.Builder

	switch m.Flag {
	case FlagCastleKingSide:
		sb.WriteString("O-O")
	case FlagCastleQueenSide:
		sb.WriteString("O-O-O")
	default:
		if m.Piece == Pawn {
			if m.IsCapture() {
				sb.WriteByte("abcdefgh"[m.From.File()])
				sb.WriteByte('x')
			}
			sb.WriteString(m.To.String())
			if m.Promotion != Empty {
				sb.WriteByte('=')
				sb.WriteByte(m.Promotion.Letter())
			}
		} else {
			sb.WriteByte(m.Piece.Letter())
			sb.WriteString(disambiguate(m, legal))
			if m.IsCapture() {
				sb.WriteByte('x')
			}
			sb.WriteString(m.To.String())
		}
	}

	next := p.MakeMove(m)
	opp := m.Color.Opposite()
	if next.InCheck(opp) {
		if len(next.LegalMoves()) == 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
	}
	return sb.String()
}

// disambiguate returns the file/rank/square prefix needed so m's SAN is
// unambiguous among sibling moves of the same piece type to the same square.
func disambiguate(m Move, legal []Move) string {
	sameFile, sameRank, ambiguous := false, false, false
	for _, other := range legal {
		if other.Piece != m.Piece || other.Color != m.Color || other.To != m.To || other.From == m.From {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	if !ambiguous {
		return ""
	}
	switch {
	case !sameFile:
		return string("abcdefgh"[m.From.File()])
	case !sameRank:
		return fmt.Sprintf("%d", m.From.Rank()+1)
	default:
		return m.From.String()
	}
}

// ParseSAN converts a SAN string to the matching legal Move from p. Parsing
// is lenient: trailing +, #, !, ?, !!, ?? are stripped and, failing a
// strict structural parse, the input is matched against the legal-move
// SAN set by normalized form (spec.md §6, grounded on zurichess's
// engine/moves.go SANToMove leniency).
func (p *Position) ParseSAN(san string) (Move, error) {
	legal := p.LegalMoves()
	strict := strings.TrimRight(san, "+#!?")
	for _, m := range legal {
		if strings.TrimRight(m.San, "+#!?") == strict {
			return m, nil
		}
	}
	clean := normalizeSAN(san)
	for _, m := range legal {
		if normalizeSAN(m.San) == clean {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("parse SAN %q: %w", san, errs.ErrIllegalMove)
}

// normalizeSAN strips decoration and case so lenient input compares equal
// to our own canonical SAN without caring about letter case.
func normalizeSAN(s string) string {
	s = strings.TrimRight(s, "+#!?")
	s = strings.ReplaceAll(s, "0-0-0", "O-O-O")
	s = strings.ReplaceAll(s, "0-0", "O-O")
	return strings.ToUpper(s)
}
