package investigator

import (
	"context"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/blunext/chessinvestigator/internal/tags"
)

// BuildEvidenceLine implements spec.md §4.5: anchors a canonical 4-8 ply
// SAN line on candidateLine (the player's move followed by the deep PV, or
// the deep PV itself), extending while the shallow-search best move at the
// current board agrees with the next PV move.
func BuildEvidenceLine(ctx context.Context, eng engineadapter.Engine, cfg config.Config, rootFEN string, candidateLine []string) (EvidenceLine, error) {
	pos, err := board.ParseFEN(rootFEN)
	if err != nil {
		return EvidenceLine{}, err
	}

	line := candidateLine
	if len(line) > cfg.EvidencePliesMax {
		line = line[:cfg.EvidencePliesMax]
	}
	baseLen := cfg.EvidencePliesBase
	if baseLen > len(line) {
		baseLen = len(line)
	}
	confirmed := line[:baseLen]

	cur := pos
	for _, san := range confirmed {
		move, perr := cur.ParseSAN(san)
		if perr != nil {
			break
		}
		cur = cur.MakeMove(move)
	}

	for i := baseLen; i < len(line); i++ {
		shallow := analyzeOrEmpty(ctx, eng, cur.FEN(), cfg.DepthShallow, 1)
		if shallow.Empty() || shallow.BestMoveSAN != line[i] {
			break
		}
		move, perr := cur.ParseSAN(line[i])
		if perr != nil {
			break
		}
		cur = cur.MakeMove(move)
		confirmed = append(confirmed, line[i])
	}

	evidence := EvidenceLine{MovesSAN: confirmed}
	walker := pos
	startMaterial := walker.MaterialBalanceCP()
	startTags, startRoles := tags.Analyze(&walker)
	startEval := analyzeOrEmpty(ctx, eng, walker.FEN(), cfg.DepthDeep, 1)
	evidence.EvalStart = EvalDecomposition{
		EvalCP:       startEval.EvalCP,
		MaterialCP:   startMaterial,
		PositionalCP: startEval.EvalCP - startMaterial,
	}

	prevTags, prevRoles := startTags, startRoles
	for i, san := range confirmed {
		fenBefore := walker.FEN()
		move, perr := walker.ParseSAN(san)
		if perr != nil {
			break
		}
		walker = walker.MakeMove(move)
		afterTags, afterRoles := tags.Analyze(&walker)

		tagsGained, tagsLost := tags.Diff(prevTags, afterTags)
		rolesGained, rolesLost := tags.DiffRoles(prevRoles, afterRoles)

		evidence.PerMove = append(evidence.PerMove, PerMoveDelta{
			Ply:         i + 1,
			MoveSAN:     san,
			FENBefore:   fenBefore,
			FENAfter:    walker.FEN(),
			TagsGained:  tagsGained,
			TagsLost:    tagsLost,
			RolesGained: rolesGained,
			RolesLost:   rolesLost,
		})
		prevTags, prevRoles = afterTags, afterRoles
	}

	evidence.TagsGainedNet, evidence.TagsLostNet = netTagDeltas(evidence.PerMove)
	evidence.RolesGainedNet, evidence.RolesLostNet = netRoleDeltas(evidence.PerMove)

	endMaterial := walker.MaterialBalanceCP()
	endEval := analyzeOrEmpty(ctx, eng, walker.FEN(), cfg.DepthDeep, 1)
	evidence.EvalEnd = EvalDecomposition{
		EvalCP:       endEval.EvalCP,
		MaterialCP:   endMaterial,
		PositionalCP: endEval.EvalCP - endMaterial,
	}

	applyOverworkedExploitation(&evidence)
	return evidence, nil
}

// netTagDeltas counting-aggregates tag gain/loss across the whole line:
// a tag gained then later lost (same Identity) cancels; only residuals
// survive, spec.md §3/§4.5.
func netTagDeltas(perMove []PerMoveDelta) (gainedNet, lostNet []tags.Tag) {
	counts := map[string]int{}
	first := map[string]tags.Tag{}
	for _, pm := range perMove {
		for _, t := range pm.TagsGained {
			counts[t.Identity()]++
			if _, ok := first[t.Identity()]; !ok {
				first[t.Identity()] = t
			}
		}
		for _, t := range pm.TagsLost {
			counts[t.Identity()]--
			if _, ok := first[t.Identity()]; !ok {
				first[t.Identity()] = t
			}
		}
	}
	for id, c := range counts {
		t := first[id]
		switch {
		case c > 0:
			gainedNet = append(gainedNet, t)
		case c < 0:
			lostNet = append(lostNet, t)
		}
	}
	return gainedNet, lostNet
}

func netRoleDeltas(perMove []PerMoveDelta) (gainedNet, lostNet []tags.PieceRole) {
	type key struct{ pieceID, role string }
	counts := map[key]int{}
	for _, pm := range perMove {
		for _, r := range pm.RolesGained {
			counts[key{r.PieceID, r.Role}]++
		}
		for _, r := range pm.RolesLost {
			counts[key{r.PieceID, r.Role}]--
		}
	}
	for k, c := range counts {
		r := tags.PieceRole{PieceID: k.pieceID, Role: k.role}
		switch {
		case c > 0:
			gainedNet = append(gainedNet, r)
		case c < 0:
			lostNet = append(lostNet, r)
		}
	}
	return gainedNet, lostNet
}
