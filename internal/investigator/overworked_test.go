package investigator

import (
	"testing"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/tags"
	"github.com/stretchr/testify/assert"
)

func TestApplyOverworkedExploitation_SynthesizesUndefendedThreat(t *testing.T) {
	// After the overworked queen moves away, the rook on h1 is attacked by
	// the black rook on h8 and, with the white king on e1 cutting the first
	// rank, now has zero defenders.
	fenAfter := "r3k2r/8/8/8/8/8/8/R3K2R b - - 0 1"

	evidence := EvidenceLine{
		PerMove: []PerMoveDelta{
			{
				Ply:      1,
				FENAfter: fenAfter,
				TagsLost: []tags.Tag{
					{
						Name:    "tag.piece.overworked.d1",
						Side:    board.White,
						Squares: []board.Square{3},
						Details: map[string]string{"defended": "a1,h1"},
					},
				},
			},
		},
	}

	applyOverworkedExploitation(&evidence)

	found := false
	for _, tg := range evidence.PerMove[0].TagsGained {
		if tg.Name == "tag.threat.capture.undefended" {
			found = true
		}
	}
	assert.True(t, found, "expected synthesized undefended-capture tag: %+v", evidence.PerMove[0].TagsGained)
}

func TestApplyOverworkedExploitation_SkipsWhenStillDefended(t *testing.T) {
	fenAfter := "r3k2r/8/8/8/8/8/8/R2Q3R b - - 0 1"

	evidence := EvidenceLine{
		PerMove: []PerMoveDelta{
			{
				Ply:      1,
				FENAfter: fenAfter,
				TagsLost: []tags.Tag{
					{
						Name:    "tag.piece.overworked.d1",
						Side:    board.White,
						Details: map[string]string{"defended": "a1,h1"},
					},
				},
			},
		},
	}

	applyOverworkedExploitation(&evidence)
	assert.Empty(t, evidence.PerMove[0].TagsGained)
}
