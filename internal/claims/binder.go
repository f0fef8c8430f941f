package claims

import (
	"strings"

	"github.com/blunext/chessinvestigator/internal/investigator"
)

const (
	defaultMaxPlies     = 4
	consequenceMaxPlies = 6
)

// BindKind distinguishes the default evidence-selection budget from the
// larger one used for "consequence" claims, spec.md §4.9 step 1.
type BindKind string

const (
	BindDefault     BindKind = "default"
	BindConsequence BindKind = "consequence"
)

// Bind attaches evidence to claim by reading from result, following the
// PGN-line selection priority from spec.md §4.9: (i) the canonical
// evidence line, (ii) the root's deep PV, with the player's move prepended
// when the PV does not already start with it; (iii)/(iv) are not modeled
// here (no separate evidence_index/pre-built-branch store exists in this
// system — the evidence line and tree already cover that ground). With
// neither line available the evidence is the player's move alone, or no
// line at all when there is no player's move.
func Bind(claim *Claim, result *investigator.InvestigationResult, playerMoveSAN string, kind BindKind) {
	maxPlies := defaultMaxPlies
	if kind == BindConsequence {
		maxPlies = consequenceMaxPlies
	}

	line, source := selectLine(result, playerMoveSAN, maxPlies)
	claim.EvidenceMoves = line
	claim.EvidenceSource = source
	claim.Payload = buildPayload(result, line)

	applyMandatoryDowngrade(claim)
}

func selectLine(result *investigator.InvestigationResult, playerMoveSAN string, maxPlies int) ([]string, EvidenceSource) {
	if len(result.Evidence.MovesSAN) > 0 {
		return boundedPrefix(result.Evidence.MovesSAN, maxPlies), SourceEvidenceIndex
	}

	if result.Tree != nil && len(result.Tree.PVFull) > 0 {
		pv := result.Tree.PVFull
		if playerMoveSAN != "" && (len(pv) == 0 || pv[0] != playerMoveSAN) {
			pv = append([]string{playerMoveSAN}, pv...)
		}
		return boundedPrefix(pv, maxPlies), SourcePV
	}

	if playerMoveSAN != "" {
		return []string{playerMoveSAN}, SourcePGN
	}
	return nil, SourcePGN
}

func boundedPrefix(line []string, maxPlies int) []string {
	if len(line) > maxPlies {
		line = line[:maxPlies]
	}
	return append([]string{}, line...)
}

func buildPayload(result *investigator.InvestigationResult, line []string) *EvidencePayload {
	ev := result.Evidence
	payload := &EvidencePayload{
		PGNLine:           strings.Join(line, " "),
		PGNMoves:          line,
		TagsGainedNet:     ev.TagsGainedNet,
		TagsLostNet:       ev.TagsLostNet,
		RolesGainedNet:    ev.RolesGainedNet,
		RolesLostNet:      ev.RolesLostNet,
		EvalBefore:        ev.EvalStart.EvalCP,
		EvalAfter:         ev.EvalEnd.EvalCP,
		EvalDrop:          ev.EvalStart.EvalCP - ev.EvalEnd.EvalCP,
		EvidenceEvalStart: ev.EvalStart.EvalCP,
		EvidenceEvalEnd:   ev.EvalEnd.EvalCP,
		EvidenceMaterialStart: ev.EvalStart.MaterialCP,
		EvidenceMaterialEnd:   ev.EvalEnd.MaterialCP,
		EvidencePositionalStart: ev.EvalStart.PositionalCP,
		EvidencePositionalEnd:   ev.EvalEnd.PositionalCP,
		MaterialChangeNet: ev.EvalEnd.MaterialCP - ev.EvalStart.MaterialCP,
	}
	for _, t := range ev.TagsGainedNet {
		payload.RawTags = append(payload.RawTags, t.Name)
	}
	for _, t := range ev.TagsLostNet {
		payload.RawTags = append(payload.RawTags, t.Name)
	}
	payload.ThemeTags = themesFromTagNames(payload.RawTags)
	return payload
}

// themesFromTagNames collapses dotted tag names (e.g. "tag.pawn.passed")
// to their middle segment ("pawn") as a coarse theme label, deduplicated.
func themesFromTagNames(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range names {
		parts := strings.Split(name, ".")
		if len(parts) < 2 {
			continue
		}
		theme := parts[1]
		if !seen[theme] {
			seen[theme] = true
			out = append(out, theme)
		}
	}
	return out
}

// applyMandatoryDowngrade enforces spec.md §3's invariant: connector !=
// none requires 2-4 evidence moves; otherwise the connector is silently
// downgraded to none.
func applyMandatoryDowngrade(claim *Claim) {
	if claim.Connector == ConnectorNone {
		return
	}
	n := len(claim.EvidenceMoves)
	if n < 2 || n > 4 {
		claim.Connector = ConnectorNone
	}
}
