package claims

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blunext/chessinvestigator/internal/investigator"
)

// RejectedAlternative documents one overestimated move the deep search
// refuted, grounded on original_source/backend/investigation_reducer.py's
// rejected_alternatives list (SPEC_FULL.md §C.1). It is a pure readout of
// the exploration tree, never a recomputation.
type RejectedAlternative struct {
	MoveSAN         string
	RefutationEval  int
	RefutationLine  []string
	Reason          string
}

// Digest is a compact, LLM-ready summary of an already-bound claim set,
// supplementing the distilled spec's Claim Binder with the reducer's
// digest stage (SPEC_FULL.md §C.1).
type Digest struct {
	PrimaryClaim        *Claim
	RejectedAlternatives []RejectedAlternative
	Threats              []*investigator.ThreatClaim
	KeyInsights          []string
	NarrativeSummary     string
	StructuredFacts      map[string]string
}

// BuildDigest reduces claims (already bound and canonicalized) plus the
// investigation's exploration tree into a Digest. claims is assumed sorted
// by caller preference; the first claim becomes PrimaryClaim when present.
func BuildDigest(result *investigator.InvestigationResult, claimsIn []*Claim) Digest {
	d := Digest{
		StructuredFacts: map[string]string{},
	}
	if len(claimsIn) > 0 {
		d.PrimaryClaim = claimsIn[0]
	}
	if result == nil {
		return d
	}
	if result.Tree != nil {
		d.RejectedAlternatives = rejectedAlternatives(result.Tree)
		d.Threats = collectThreats(result.Tree)
	}
	d.KeyInsights = keyInsights(claimsIn)
	d.NarrativeSummary = narrativeSummary(d.PrimaryClaim, d.RejectedAlternatives, d.Threats)
	d.StructuredFacts["root_fen"] = result.RootFEN
	d.StructuredFacts["evidence_line"] = strings.Join(result.Evidence.MovesSAN, " ")
	return d
}

// rejectedAlternatives walks the tree collecting each branch that
// represents a refuted overestimated move: its refutation eval and line
// come straight from the child ExplorationNode, never recomputed.
func rejectedAlternatives(node *investigator.ExplorationNode) []RejectedAlternative {
	var out []RejectedAlternative
	for _, child := range node.Branches {
		if child.MovePlayedSAN == "" {
			continue
		}
		reason := child.StopReason
		if reason == "" {
			reason = "refuted_by_deep_search"
		}
		out = append(out, RejectedAlternative{
			MoveSAN:        child.MovePlayedSAN,
			RefutationEval: child.EvalDeep,
			RefutationLine: child.PVFull,
			Reason:         reason,
		})
		out = append(out, rejectedAlternatives(child)...)
	}
	return out
}

func collectThreats(node *investigator.ExplorationNode) []*investigator.ThreatClaim {
	var out []*investigator.ThreatClaim
	if node.ThreatClaim != nil {
		out = append(out, node.ThreatClaim)
	}
	for _, child := range node.Branches {
		out = append(out, collectThreats(child)...)
	}
	return out
}

// keyInsights extracts a short bullet list from the highest-priority
// claims, highest hint priority first.
func keyInsights(claimsIn []*Claim) []string {
	sorted := append([]*Claim{}, claimsIn...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Hints.Priority > sorted[j].Hints.Priority
	})
	var out []string
	for i, c := range sorted {
		if i >= 5 {
			break
		}
		out = append(out, c.Summary)
	}
	return out
}

func narrativeSummary(primary *Claim, rejected []RejectedAlternative, threats []*investigator.ThreatClaim) string {
	var parts []string
	if primary != nil {
		parts = append(parts, primary.Summary)
	}
	if len(rejected) > 0 {
		parts = append(parts, fmt.Sprintf("%d alternative move(s) were considered and refuted by deeper search.", len(rejected)))
	}
	if len(threats) > 0 {
		parts = append(parts, fmt.Sprintf("%d threat(s) were identified along the way.", len(threats)))
	}
	return strings.Join(parts, " ")
}
