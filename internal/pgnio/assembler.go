// Package pgnio implements the PGN Assembler (spec.md §4.10): it renders
// an investigator.ExplorationNode tree as a single valid PGN 1.0 document
// with the deep main line, every overestimated-move branch as a nested
// variation, and per-move inline annotations (eval, win probability,
// themes, tag/role deltas, threats). It reads the tree but never calls the
// engine or recomputes analysis; per spec.md §9, PGN-derived metrics are
// best-effort rendering, never the source of truth for claim binding.
package pgnio

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/investigator"
	"github.com/blunext/chessinvestigator/internal/tags"
)

// Assemble renders result's exploration tree as a PGN document. cfg
// supplies pgn_max_chars (0 = unbounded, spec.md §6).
func Assemble(result *investigator.InvestigationResult, cfg config.Config) (string, error) {
	pos, err := board.ParseFEN(result.RootFEN)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	writeHeaders(&sb, result.RootFEN, &pos)

	if result.Tree != nil {
		a := &assembler{moveNumber: 1, sideToMove: pos.SideToMove}
		a.writeMainLine(&sb, &pos, result.Tree)
	}
	sb.WriteString("*\n")

	out := sb.String()
	if cfg.PGNMaxChars > 0 && len(out) > cfg.PGNMaxChars {
		out = out[:cfg.PGNMaxChars]
	}
	return out, nil
}

func writeHeaders(sb *strings.Builder, fen string, pos *board.Position) {
	sb.WriteString("[Event \"Investigation\"]\n")
	sb.WriteString("[Site \"?\"]\n")
	sb.WriteString("[Date \"????.??.??\"]\n")
	sb.WriteString("[Round \"?\"]\n")
	sb.WriteString("[White \"?\"]\n")
	sb.WriteString("[Black \"?\"]\n")
	sb.WriteString("[Result \"*\"]\n")
	if fen != board.InitialFEN {
		fmt.Fprintf(sb, "[FEN %q]\n", fen)
		sb.WriteString("[SetUp \"1\"]\n")
	}
	startTags, startRoles := tags.Analyze(pos)
	fmt.Fprintf(sb, "[Starting tags: %s]\n", joinTagNames(startTags))
	fmt.Fprintf(sb, "[Starting roles: %s]\n", joinRoleNames(startRoles))
	sb.WriteString("\n")
}

func joinTagNames(ts []tags.Tag) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func joinRoleNames(rs []tags.PieceRole) string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.PieceID + ":" + r.Role
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// assembler threads move-number/side-to-move bookkeeping through the
// recursive tree walk; it is not shared across concurrent Assemble calls.
type assembler struct {
	moveNumber int
	sideToMove board.Color
}

// writeMainLine renders node's own deep PV starting from pos, inserting
// each of node's branches as a parenthesized variation at its ply, then
// recurses into the branch's own subtree.
func (a *assembler) writeMainLine(sb *strings.Builder, pos *board.Position, node *investigator.ExplorationNode) {
	cur := *pos
	line := node.PVFull
	branchesByPly := indexBranchesByPly(node.Branches)

	for i, san := range line {
		move, err := cur.ParseSAN(san)
		if err != nil {
			// Board-state validation (spec.md §4.10): stop this branch,
			// never abort the whole PGN.
			break
		}
		before := cur
		cur = cur.MakeMove(move)
		writeMoveToken(sb, &before, &cur, move, san, node)

		if children, ok := branchesByPly[i]; ok {
			for _, child := range children {
				a.writeVariation(sb, &before, child)
			}
		}
	}
}

// indexBranchesByPly places every direct branch of node at ply 0, so each
// is rendered as a variation right after the first main-line move and its
// MovePlayedSAN is replayed from node's own position. That is the
// divergence point of an overestimated-move branch; a mid-PV branch, whose
// move lies further along the PV, is not placed at its own ply and is
// dropped by writeVariation when its move is not legal from node's position.
func indexBranchesByPly(branches []*investigator.ExplorationNode) map[int][]*investigator.ExplorationNode {
	out := map[int][]*investigator.ExplorationNode{}
	for _, b := range branches {
		out[0] = append(out[0], b)
	}
	return out
}

func (a *assembler) writeVariation(sb *strings.Builder, parentPos *board.Position, node *investigator.ExplorationNode) {
	cur := *parentPos
	move, err := cur.ParseSAN(node.MovePlayedSAN)
	if err != nil {
		// Illegal branch move: truncate this variation, not the whole PGN.
		return
	}
	before := cur
	cur = cur.MakeMove(move)

	var first strings.Builder
	writeMoveToken(&first, &before, &cur, move, node.MovePlayedSAN, node)
	sb.WriteString(" (")
	sb.WriteString(strings.TrimPrefix(first.String(), " "))
	if !node.Stopped || len(node.PVFull) > 0 {
		a.writeMainLine(sb, &cur, node)
	}
	sb.WriteString(")")
}

func writeMoveToken(sb *strings.Builder, before, after *board.Position, move board.Move, san string, node *investigator.ExplorationNode) {
	if before.SideToMove == board.White {
		fmt.Fprintf(sb, " %d.%s", before.FullmoveNumber, san)
	} else {
		sb.WriteString(" " + san)
	}
	sb.WriteString(" " + moveComment(before, after, node))
}

// moveComment builds the inline annotation block from spec.md §4.10: an
// eval (and derived win-probability) glyph, a themes list, and a tag/role
// delta block. Evaluation is taken from the owning node's own deep eval
// (the closest analyzed position at or after this ply); this is a
// best-effort approximation for plies inside a PV segment that were never
// independently analyzed, per spec.md §9.
func moveComment(before, after *board.Position, node *investigator.ExplorationNode) string {
	beforeTags, beforeRoles := tags.Analyze(before)
	afterTags, afterRoles := tags.Analyze(after)
	gained, lost := tags.Diff(beforeTags, afterTags)
	rGained, rLost := tags.DiffRoles(beforeRoles, afterRoles)

	evalPawns := float64(node.EvalDeep) / 100
	winPct := winProbabilityPercent(node.EvalDeep)

	var threats string
	if node.ThreatClaim != nil {
		threats = node.ThreatClaim.ThreatMoveSAN
	}

	return fmt.Sprintf(
		"{[%%eval %s] [%%win %.0f%%] [themes: %s] {[gained: %s], [lost: %s], [roles_gained: %s], [roles_lost: %s], [threats: %s]}}",
		formatEval(evalPawns),
		winPct,
		strings.Join(themesFromTags(append(gained, lost...)), ", "),
		joinTagNames(gained),
		joinTagNames(lost),
		joinRoleNames(rGained),
		joinRoleNames(rLost),
		threats,
	)
}

// themesFromTags collapses dotted tag names (e.g. "tag.pawn.passed") to
// their middle segment ("pawn") as a coarse theme label, deduplicated.
func themesFromTags(ts []tags.Tag) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range ts {
		parts := strings.Split(t.Name, ".")
		if len(parts) < 2 {
			continue
		}
		theme := parts[1]
		if !seen[theme] {
			seen[theme] = true
			out = append(out, theme)
		}
	}
	sort.Strings(out)
	return out
}

func formatEval(pawns float64) string {
	sign := ""
	if pawns > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f", sign, pawns)
}

// winProbabilityPercent derives a win-probability percentage from a
// White-POV centipawn eval via the logistic transform grounded on
// judwhite-lichess-bot's analyze.go rawWinningChances/cpWinningChances
// (spec.md §C.2 of SPEC_FULL.md). The engine's ±10000 mate sentinel
// (spec.md §3) maps to near-certain win/loss since no ply-distance is
// threaded through ExplorationNode.
func winProbabilityPercent(evalCP int) float64 {
	clamped := math.Min(math.Max(float64(evalCP), -1000), 1000)
	chances := 2/(1+math.Exp(-0.004*clamped)) - 1 // [-1, 1]
	return (chances + 1) * 50
}
