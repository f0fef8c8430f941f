package investigator

import (
	"context"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
)

const defaultThreatSignificanceCP = 60

// AnalyzeThreat implements spec.md §4.4: flip side-to-move without playing
// a move, run deep analysis with multipv=2, and emit a ThreatClaim when the
// best/second-best gap reaches cfg.ThreatSignificanceCP. An engine failure
// degrades to "no threat" (spec.md §7 EngineUnavailable) rather than
// aborting the caller's investigation.
func AnalyzeThreat(ctx context.Context, eng engineadapter.Engine, pos *board.Position, cfg config.Config) *ThreatClaim {
	nullFEN := pos.NullMoveFEN()
	result := analyzeOrEmpty(ctx, eng, nullFEN, cfg.DepthDeep, 2)
	if result.Empty() || !result.HasSecondBest {
		return nil
	}

	significance := result.EvalCP - result.SecondBestCP
	if significance < 0 {
		significance = -significance
	}
	threshold := cfg.ThreatSignificanceCP
	if threshold <= 0 {
		threshold = defaultThreatSignificanceCP
	}
	if significance < threshold {
		return nil
	}

	threateningSide := pos.SideToMove.Opposite()
	return &ThreatClaim{
		SignificanceCP:  significance,
		ThreatMoveSAN:   result.BestMoveSAN,
		ThreatPVSan:     result.PVSan,
		ThreateningSide: threateningSide,
		PositionFEN:     pos.FEN(),
	}
}
