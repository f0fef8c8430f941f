package claims

import (
	"testing"

	"github.com/blunext/chessinvestigator/internal/investigator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_SetsPGNLineFromEvidenceLine(t *testing.T) {
	result := &investigator.InvestigationResult{
		Evidence: investigator.EvidenceLine{MovesSAN: []string{"e4", "e5", "Nf3", "Nc6"}},
	}
	claim := &Claim{Summary: "White seizes the center."}

	Bind(claim, result, "", BindDefault)

	require.NotNil(t, claim.Payload)
	assert.Equal(t, "e4 e5 Nf3 Nc6", claim.Payload.PGNLine)
}

func TestOneClaimPerEvidenceLine_CollapsesClaimsSharingALine(t *testing.T) {
	result := &investigator.InvestigationResult{
		Evidence: investigator.EvidenceLine{MovesSAN: []string{"e4", "e5", "Nf3", "Nc6"}},
	}
	claimA := &Claim{Summary: "White seizes the center."}
	claimB := &Claim{Summary: "A completely different observation."}
	Bind(claimA, result, "", BindDefault)
	Bind(claimB, result, "", BindDefault)
	require.Equal(t, claimA.Payload.PGNLine, claimB.Payload.PGNLine)

	out := OneClaimPerEvidenceLine([]*Claim{claimA, claimB})
	assert.Len(t, out, 1, "two claims bound to an identical evidence line must collapse to one")
}
