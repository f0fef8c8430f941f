package claims

import (
	"testing"

	"github.com/blunext/chessinvestigator/internal/investigator"
	"github.com/stretchr/testify/assert"
)

func TestBuildDigest_CollectsRejectedAlternativesAndThreats(t *testing.T) {
	tree := &investigator.ExplorationNode{
		FEN:      "root",
		EvalDeep: 20,
		ThreatClaim: &investigator.ThreatClaim{
			SignificanceCP: 80,
			ThreatMoveSAN:  "Qxh7#",
		},
		Branches: []*investigator.ExplorationNode{
			{
				MovePlayedSAN: "Nxd5",
				EvalDeep:      -120,
				PVFull:        []string{"Nxd5", "Qxd5"},
				StopReason:    "eval_shallow_below_root_deep",
			},
		},
	}
	result := &investigator.InvestigationResult{RootFEN: "root", Tree: tree}
	primary := &Claim{Summary: "White wins a pawn.", Hints: RenderHints{Priority: 5}}

	d := BuildDigest(result, []*Claim{primary})

	assert.Equal(t, primary, d.PrimaryClaim)
	assert.Len(t, d.RejectedAlternatives, 1)
	assert.Equal(t, "Nxd5", d.RejectedAlternatives[0].MoveSAN)
	assert.Equal(t, "eval_shallow_below_root_deep", d.RejectedAlternatives[0].Reason)
	assert.Len(t, d.Threats, 1)
	assert.Equal(t, "Qxh7#", d.Threats[0].ThreatMoveSAN)
	assert.Contains(t, d.NarrativeSummary, "White wins a pawn.")
	assert.Contains(t, d.NarrativeSummary, "1 alternative move(s)")
	assert.Contains(t, d.NarrativeSummary, "1 threat(s)")
}

func TestBuildDigest_NilResultIsSafe(t *testing.T) {
	d := BuildDigest(nil, nil)
	assert.Nil(t, d.PrimaryClaim)
	assert.Empty(t, d.RejectedAlternatives)
}
