package investigator

import (
	"strings"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/tags"
)

const overworkedTagPrefix = "tag.piece.overworked."

// applyOverworkedExploitation is the deterministic post-pass from spec.md
// §4.6: for every ply where an overworked-piece tag is lost, check each of
// its recorded defended squares on the after board, and synthesize a
// tag.threat.capture.undefended instance when the square is now
// undefended, attacked, still friendly, and not the king. This is the only
// post-hoc tag injection permitted.
func applyOverworkedExploitation(evidence *EvidenceLine) {
	for i := range evidence.PerMove {
		pm := &evidence.PerMove[i]
		var synthesized []tags.Tag
		for _, lost := range pm.TagsLost {
			if !strings.HasPrefix(lost.Name, overworkedTagPrefix) {
				continue
			}
			defended, ok := lost.Details["defended"]
			if !ok {
				continue
			}
			synthesized = append(synthesized, synthesizeUndefendedThreats(pm.FENAfter, lost.Side, defended)...)
		}
		pm.TagsGained = append(pm.TagsGained, synthesized...)
	}
}

func synthesizeUndefendedThreats(fenAfter string, defendingSide board.Color, defendedCSV string) []tags.Tag {
	pos, err := board.ParseFEN(fenAfter)
	if err != nil {
		return nil
	}
	var out []tags.Tag
	for _, sqStr := range strings.Split(defendedCSV, ",") {
		sqStr = strings.TrimSpace(sqStr)
		if sqStr == "" {
			continue
		}
		sq, ok := board.ParseSquare(sqStr)
		if !ok {
			continue
		}
		piece, color := pos.PieceAt(sq)
		if piece == board.Empty || color != defendingSide || piece == board.King {
			continue
		}
		if len(pos.AttackersOf(sq, defendingSide.Opposite())) == 0 {
			continue
		}
		if len(pos.AttackersOf(sq, defendingSide)) != 0 {
			continue
		}
		out = append(out, tags.Tag{
			Name:    "tag.threat.capture.undefended",
			Side:    defendingSide.Opposite(),
			Squares: []board.Square{sq},
			Pieces:  []string{sqStr},
			Details: map[string]string{"captured_side": defendingSide.String()},
		})
	}
	return out
}
