package investigator

import (
	"context"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
)

const defaultCriticalGapCP = 50

// analyzeOrEmpty calls eng.Analyze and degrades an engine failure to a zero
// AnalysisResult rather than propagating the error, per spec.md §7's
// EngineUnavailable recovery: "return an AnalysisResult with null fields;
// propagate null through the tree." Callers treat the zero value the same
// way they treat an engine that legitimately had nothing to say.
func analyzeOrEmpty(ctx context.Context, eng engineadapter.Engine, fen string, depth, multiPV int) engineadapter.AnalysisResult {
	result, err := eng.Analyze(ctx, fen, depth, multiPV)
	if err != nil {
		return engineadapter.AnalysisResult{}
	}
	return result
}

// boundPVPlies truncates pv to cfg's pv_max_plies (spec.md §6), 0 meaning
// unbounded.
func boundPVPlies(pv []string, maxPlies int) []string {
	if maxPlies > 0 && len(pv) > maxPlies {
		return pv[:maxPlies]
	}
	return pv
}

// effectiveBranchingLimit treats cfg.BranchingLimit == 0 as "unbounded"
// per its doc comment in internal/config.
func effectiveBranchingLimit(cfg config.Config) int {
	if cfg.BranchingLimit <= 0 {
		return 1 << 30
	}
	return cfg.BranchingLimit
}

func effectiveCriticalGapCP(cfg config.Config) int {
	if cfg.CriticalGapCP <= 0 {
		return defaultCriticalGapCP
	}
	return cfg.CriticalGapCP
}

// BuildTree runs the dual-depth exploration core (spec.md §4.3) starting
// at fen and returns the root ExplorationNode.
func BuildTree(ctx context.Context, eng engineadapter.Engine, cfg config.Config, fen string) (*ExplorationNode, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	rootDeep := analyzeOrEmpty(ctx, eng, fen, cfg.DepthDeep, 2)
	return investigateNode(ctx, eng, cfg, fen, pos.SideToMove, 0, rootDeep.EvalCP)
}

func investigateNode(ctx context.Context, eng engineadapter.Engine, cfg config.Config, fen string, perspectiveSide board.Color, currentDepth int, rootEvalDeep int) (*ExplorationNode, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}

	deep := analyzeOrEmpty(ctx, eng, fen, cfg.DepthDeep, 2)
	node := &ExplorationNode{
		FEN:                  fen,
		EvalDeep:             deep.EvalCP,
		BestMoveDeepSAN:      deep.BestMoveSAN,
		BestMoveDeepEvalCP:   deep.EvalCP,
		HasSecondBestDeep:    deep.HasSecondBest,
		SecondBestDeepSAN:    deep.SecondBestSAN,
		SecondBestDeepEvalCP: deep.SecondBestCP,
		PVFull:               boundPVPlies(deep.PVSan, cfg.PVMaxPlies),
	}
	if len(node.PVFull) > 0 && node.PVFull[0] != node.BestMoveDeepSAN && node.BestMoveDeepSAN != "" {
		node.PVFull = boundPVPlies(append([]string{node.BestMoveDeepSAN}, node.PVFull...), cfg.PVMaxPlies)
	}
	if deep.HasSecondBest {
		gap := deep.EvalCP - deep.SecondBestCP
		if gap < 0 {
			gap = -gap
		}
		node.IsCritical = gap > effectiveCriticalGapCP(cfg)
		node.IsWinning = (deep.EvalCP > 0) != (deep.SecondBestCP > 0)
	}

	node.ThreatClaim = AnalyzeThreat(ctx, eng, &pos, cfg)
	emitProgress(ctx, EventMoveExplored, fen, node.BestMoveDeepSAN)

	if deep.Empty() {
		// Engine unavailable for this node: return a well-formed, inert
		// leaf instead of guessing at overestimated moves from no data.
		node.Stopped = true
		node.StopReason = "engine_unavailable"
		return node, nil
	}

	if cfg.DepthDeep == cfg.DepthShallow {
		node.Stopped = true
		node.StopReason = "dual_depth_disabled"
		return node, nil
	}

	shallowMultiPV := effectiveBranchingLimit(cfg) + 1
	if shallowMultiPV > 8 {
		shallowMultiPV = 8
	}
	if shallowMultiPV < 2 {
		shallowMultiPV = 2
	}
	shallow := analyzeOrEmpty(ctx, eng, fen, cfg.DepthShallow, shallowMultiPV)
	if shallow.Empty() {
		node.Stopped = true
		node.StopReason = "engine_unavailable"
		return node, nil
	}
	node.EvalShallow = shallow.EvalCP

	overestimated := overestimatedMoves(shallow.TopMoves, node.BestMoveDeepSAN)
	node.OverestimatedMoves = overestimated

	if currentDepth >= cfg.BranchDepthLimit {
		node.Stopped = true
		node.StopReason = "branch_depth_limit"
		return node, nil
	}
	if len(overestimated) == 0 {
		node.Stopped = true
		node.StopReason = "no_overestimated_moves"
	}

	branched := 0
	limit := effectiveBranchingLimit(cfg)
	for _, moveSAN := range overestimated {
		if branched >= limit {
			break
		}
		childFEN, childShallowEval, ok := playAndShallowEval(ctx, eng, &pos, moveSAN, cfg.DepthShallow)
		if !ok {
			continue
		}
		if childShallowEval < rootEvalDeep {
			child := &ExplorationNode{
				FEN:           childFEN,
				MovePlayedSAN: moveSAN,
				Stopped:       true,
				StopReason:    "eval_shallow_below_root_deep",
			}
			node.Branches = append(node.Branches, child)
			branched++
			emitProgress(ctx, EventBranchAdded, child.FEN, child.MovePlayedSAN)
			continue
		}
		child, err := investigateNode(ctx, eng, cfg, childFEN, perspectiveSide, currentDepth+1, rootEvalDeep)
		if err != nil {
			return nil, err
		}
		child.MovePlayedSAN = moveSAN
		node.Branches = append(node.Branches, child)
		branched++
		emitProgress(ctx, EventBranchAdded, child.FEN, child.MovePlayedSAN)
	}

	if pos.SideToMove == perspectiveSide {
		node.Branches = append(node.Branches, exploreMidPVBranches(ctx, eng, cfg, &pos, node.PVFull, perspectiveSide)...)
	}

	return node, nil
}

// overestimatedMoves returns the shallow top moves ranked above the deep
// best move in shallow order (spec.md §4.3 step 4). If the deep best move
// never appears in the shallow top list, every shallow top move counts as
// overestimated: the shallow search never even considered the refutation.
func overestimatedMoves(shallowTop []engineadapter.TopMove, deepBestSAN string) []string {
	var out []string
	for _, tm := range shallowTop {
		if tm.MoveSAN == deepBestSAN {
			return out
		}
		out = append(out, tm.MoveSAN)
	}
	return out
}

// playAndShallowEval plays moveSAN and runs a shallow analysis of the
// resulting position. An illegal move is reported as !ok with no error
// (the move was never a candidate); an engine failure degrades to !ok the
// same way, per spec.md §7, instead of aborting the caller's branch loop.
func playAndShallowEval(ctx context.Context, eng engineadapter.Engine, pos *board.Position, moveSAN string, depthShallow int) (fen string, shallowEval int, ok bool) {
	move, perr := pos.ParseSAN(moveSAN)
	if perr != nil {
		return "", 0, false
	}
	child := pos.MakeMove(move)
	childFEN := child.FEN()
	result := analyzeOrEmpty(ctx, eng, childFEN, depthShallow, 1)
	if result.Empty() {
		return "", 0, false
	}
	return childFEN, result.EvalCP, true
}

// exploreMidPVBranches implements spec.md §4.3 step 7: at every ply along
// pv_full where it is the perspective side's turn, re-run overestimated
// detection. At most two such positions are recorded, each as a stopped
// node carrying its overestimated moves; those moves are not played and
// the node is not expanded further.
func exploreMidPVBranches(ctx context.Context, eng engineadapter.Engine, cfg config.Config, root *board.Position, pvFull []string, perspectiveSide board.Color) []*ExplorationNode {
	var out []*ExplorationNode
	cur := *root
	branched := 0
	for _, moveSAN := range pvFull {
		if branched >= 2 {
			break
		}
		move, err := cur.ParseSAN(moveSAN)
		if err != nil {
			break
		}
		cur = cur.MakeMove(move)
		if cur.SideToMove != perspectiveSide {
			// the perspective side is not to act in this position; skip.
			continue
		}
		fen := cur.FEN()
		node := investigateMidPVNode(ctx, eng, cfg, fen, moveSAN)
		if node == nil {
			continue
		}
		out = append(out, node)
		branched++
	}
	return out
}

// investigateMidPVNode degrades to nil (skip this mid-PV candidate) rather
// than an error whenever the engine has nothing usable to say, per spec.md
// §7. moveSAN is the real SAN move that was just played to reach fen, and
// becomes the node's MovePlayedSAN so downstream consumers (claims digest,
// PGN assembly) can replay it like any other branch.
func investigateMidPVNode(ctx context.Context, eng engineadapter.Engine, cfg config.Config, fen, moveSAN string) *ExplorationNode {
	deep := analyzeOrEmpty(ctx, eng, fen, cfg.DepthDeep, 2)
	if deep.Empty() {
		return nil
	}
	mpv := effectiveBranchingLimit(cfg) + 1
	if mpv > 8 {
		mpv = 8
	}
	shallow := analyzeOrEmpty(ctx, eng, fen, cfg.DepthShallow, mpv)
	if shallow.Empty() {
		return nil
	}
	overestimated := overestimatedMoves(shallow.TopMoves, deep.BestMoveSAN)
	if len(overestimated) == 0 {
		return nil
	}
	return &ExplorationNode{
		FEN:                fen,
		BestMoveDeepSAN:    deep.BestMoveSAN,
		BestMoveDeepEvalCP: deep.EvalCP,
		EvalShallow:        shallow.EvalCP,
		OverestimatedMoves: overestimated,
		MovePlayedSAN:      moveSAN,
		Stopped:            true,
		StopReason:         "branch_depth_limit",
	}
}
