package claims

import (
	"regexp"
	"strings"
)

var boilerplatePrefixes = []string{
	"note that ",
	"it is worth noting that ",
	"additionally, ",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeSummary strips trailing punctuation, collapses whitespace, and
// drops boilerplate prefixes so near-duplicate summaries compare equal,
// spec.md §4.9.
func normalizeSummary(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, " ")
	for _, prefix := range boilerplatePrefixes {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimRight(s, ".!? ")
	return s
}

func originRank(o Origin) int {
	switch o {
	case OriginLLM:
		return 3
	case OriginBind:
		return 2
	case OriginHammer:
		return 1
	default:
		return 0
	}
}

func sourceRank(s EvidenceSource) int {
	switch s {
	case SourcePV:
		return 3
	case SourcePGN:
		return 2
	case SourceEvidenceIndex:
		return 2
	case SourceValidated:
		return 1
	default:
		return 0
	}
}

// mergeScore ranks a claim for dedup/merge precedence: origin, then
// source, then a large bonus for a causal connector backed by >=2
// evidence moves (spec.md §4.9).
func mergeScore(c *Claim) float64 {
	score := float64(originRank(c.Origin))*100 + float64(sourceRank(c.EvidenceSource))*10
	if c.Connector != ConnectorNone && len(c.EvidenceMoves) >= 2 {
		score += 1000
	}
	return score
}

// Dedup merges claims whose normalized summaries match, keeping the
// highest-scored winner and grafting the loser's richer fields into it.
func Dedup(claims []*Claim) []*Claim {
	byKey := map[string]*Claim{}
	var order []string
	for _, c := range claims {
		key := normalizeSummary(c.Summary)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = c
			order = append(order, key)
			continue
		}
		winner, loser := existing, c
		if mergeScore(c) > mergeScore(existing) {
			winner, loser = c, existing
		}
		graftRicherFields(winner, loser)
		byKey[key] = winner
	}
	out := make([]*Claim, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

func graftRicherFields(winner, loser *Claim) {
	if len(winner.EvidenceMoves) == 0 && len(loser.EvidenceMoves) > 0 {
		winner.EvidenceMoves = loser.EvidenceMoves
	}
	if winner.Payload == nil && loser.Payload != nil {
		winner.Payload = loser.Payload
	}
	if loser.Hints.Priority > winner.Hints.Priority {
		winner.Hints.Priority = loser.Hints.Priority
	}
}

// OneClaimPerEvidenceLine groups claims by payload.PGNLine and keeps the
// highest-scored claim in each group, spec.md §4.9.
func OneClaimPerEvidenceLine(claims []*Claim) []*Claim {
	byLine := map[string]*Claim{}
	var order []string
	var noLine []*Claim
	for _, c := range claims {
		if c.Payload == nil || c.Payload.PGNLine == "" {
			noLine = append(noLine, c)
			continue
		}
		existing, ok := byLine[c.Payload.PGNLine]
		if !ok || mergeScore(c) > mergeScore(existing) {
			if !ok {
				order = append(order, c.Payload.PGNLine)
			}
			byLine[c.Payload.PGNLine] = c
		}
	}
	out := make([]*Claim, 0, len(order)+len(noLine))
	for _, line := range order {
		out = append(out, byLine[line])
	}
	out = append(out, noLine...)
	return out
}

// EnsureAgendaCoverage implements spec.md §4.9's optional agenda-coverage
// pass. It walks claims in order and keeps each claim whose evidence line
// (Payload.PGNLine) differs from the lines kept so far; claims with no
// evidence line are always kept. It stops once min(agendaSize, 3) claims
// are kept (after the first claim when agendaSize <= 0), so later claims
// are not returned, and satisfied reports whether that many were kept. It
// never fabricates evidence and adds no claims to fill a shortfall.
func EnsureAgendaCoverage(claims []*Claim, agendaSize int) (covered []*Claim, satisfied bool) {
	target := agendaSize
	if target > 3 {
		target = 3
	}
	seen := map[string]bool{}
	for _, c := range claims {
		line := ""
		if c.Payload != nil {
			line = c.Payload.PGNLine
		}
		if line == "" || !seen[line] {
			if line != "" {
				seen[line] = true
			}
			covered = append(covered, c)
		}
		if len(covered) >= target {
			break
		}
	}
	return covered, len(covered) >= target
}
