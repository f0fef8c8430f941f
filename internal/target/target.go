// Package target implements Goal-directed Target Search (spec.md §4.8): a
// beam-pruned frontier search over futures that verifies whether a
// compiled goal is reachable within a policy budget, returning ranked
// witness move sequences. It shares the predicate engine (internal/goal)
// and the engine adapter with the investigator but never imports
// internal/investigator — the two search styles are independent entry
// points over the same primitives (spec.md §2).
package target

import (
	"context"
	"sort"
	"strings"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/blunext/chessinvestigator/internal/goal"
)

// Status is the outcome taxonomy from spec.md §4.8.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusUncertain Status = "uncertain"
)

// Witness is one full SAN path that satisfies the goal, spec.md §3/§4.8.
type Witness struct {
	LineSAN  []string
	Depth    int
	Plies    int
	ScoreCP  int // eval relative to root side, White POV before flipping
	Progress float64
}

// Result is the Target Search return value, spec.md §4.8.
type Result struct {
	Status             Status
	Witnesses          []Witness
	BestProgressReached float64
	Assumptions        []string
}

// defaultNodeLimit is used when the caller passes nodeLimit <= 0 (spec.md
// §4.8 step 7's documented default).
const defaultNodeLimit = 5000

type frontierEntry struct {
	pos      board.Position
	path     goal.Path
	lastEval int
}

// Search runs the beam search described in spec.md §4.8. policy is
// expected to already be clamped (internal/config.TargetSearchPolicy.Clamp);
// Search does not re-clamp, it only reads the bounds. nodeLimit bounds total
// expansions across the whole search (internal/config.Config.NodeLimit,
// spec.md §6); exceeding it stops the search and records a
// node_limit_reached assumption, with status=success if a witness was
// already found and status=uncertain otherwise.
func Search(ctx context.Context, eng engineadapter.Engine, rootFEN string, goalNode *goal.Node, policy config.TargetSearchPolicy, nodeLimit int) (Result, error) {
	if nodeLimit <= 0 {
		nodeLimit = defaultNodeLimit
	}
	rootPos, err := board.ParseFEN(rootFEN)
	if err != nil {
		return Result{}, err
	}
	if err := goal.Compile(goalNode); err != nil {
		return Result{Status: StatusFailure}, nil
	}

	rootPath := goal.NewPath(rootPos)
	if goal.Eval(goalNode, rootPath) {
		return Result{
			Status:              StatusSuccess,
			Witnesses:           []Witness{{Depth: 0, Progress: 1}},
			BestProgressReached: 1,
		}, nil
	}
	if policy.MaxDepth == 0 {
		return Result{Status: StatusFailure, BestProgressReached: goal.Progress(goalNode, rootPath)}, nil
	}

	rootWhite := rootPos.SideToMove == board.White
	frontier := []frontierEntry{{pos: rootPos, path: rootPath}}
	visited := map[uint64]bool{rootPos.Hash(): true}

	var witnesses []Witness
	bestProgress := goal.Progress(goalNode, rootPath)
	expansions := 0
	nodeLimitHit := false

	for depth := 1; depth <= policy.MaxDepth && len(frontier) > 0; depth++ {
		var next []frontierEntry

		for _, entry := range frontier {
			if expansions >= nodeLimit {
				nodeLimitHit = true
				break
			}
			expansions++

			candidates, err := proposeCandidates(ctx, eng, &entry.pos, policy.EngineDepthPropose, policy.BranchingLimit)
			if err != nil {
				return Result{}, err
			}
			beam := candidates
			if len(beam) > policy.BeamWidth {
				beam = beam[:policy.BeamWidth]
			}

			for _, cand := range beam {
				move, perr := entry.pos.ParseSAN(cand.MoveSAN)
				if perr != nil {
					continue
				}
				played := entry.pos.MakeMove(move)
				playedPath := entry.path.Extend(cand.MoveSAN, played)

				if p := goal.Progress(goalNode, playedPath); p > bestProgress {
					bestProgress = p
				}
				if goal.Eval(goalNode, playedPath) {
					w := newWitness(playedPath, depth, cand.EvalCP, rootWhite, 1)
					witnesses = append(witnesses, w)
					if policy.TopKWitnesses == 1 {
						return Result{
							Status:              StatusSuccess,
							Witnesses:           rankWitnesses(witnesses, policy.TopKWitnesses),
							BestProgressReached: bestProgress,
						}, nil
					}
					continue
				}

				finalPos, finalPath, ok := applyOpponentReply(ctx, eng, played, playedPath, cand.MoveSAN, policy)
				if !ok {
					next = append(next, frontierEntry{pos: played, path: playedPath, lastEval: cand.EvalCP})
					continue
				}
				if p := goal.Progress(goalNode, finalPath); p > bestProgress {
					bestProgress = p
				}
				if goal.Eval(goalNode, finalPath) {
					w := newWitness(finalPath, depth, cand.EvalCP, rootWhite, progressOrOne(goalNode, finalPath))
					witnesses = append(witnesses, w)
					if policy.TopKWitnesses == 1 {
						return Result{
							Status:              StatusSuccess,
							Witnesses:           rankWitnesses(witnesses, policy.TopKWitnesses),
							BestProgressReached: bestProgress,
						}, nil
					}
					continue
				}
				next = append(next, frontierEntry{pos: finalPos, path: finalPath, lastEval: cand.EvalCP})
			}
			if nodeLimitHit {
				break
			}
		}

		next = dedupeFrontier(next, visited)
		sortFrontierByEval(next, rootWhite)
		if len(next) > policy.BeamWidth {
			next = next[:policy.BeamWidth]
		}
		frontier = next
		if nodeLimitHit {
			break
		}
	}

	var assumptions []string
	status := StatusUncertain
	if len(witnesses) > 0 {
		status = StatusSuccess
	}
	if nodeLimitHit {
		assumptions = append(assumptions, "node_limit_reached")
	}

	return Result{
		Status:              status,
		Witnesses:           rankWitnesses(witnesses, policy.TopKWitnesses),
		BestProgressReached: bestProgress,
		Assumptions:         assumptions,
	}, nil
}

func progressOrOne(n *goal.Node, p goal.Path) float64 {
	if goal.Eval(n, p) {
		return 1
	}
	return goal.Progress(n, p)
}

// proposeCandidates runs a multi-PV "propose" call and returns up to
// branchingLimit ranked candidate first moves (spec.md §4.8 step 3).
func proposeCandidates(ctx context.Context, eng engineadapter.Engine, pos *board.Position, engineDepth, branchingLimit int) ([]engineadapter.TopMove, error) {
	result, err := eng.Analyze(ctx, pos.FEN(), engineDepth, branchingLimit)
	if err != nil {
		return nil, err
	}
	cands := result.TopMoves
	if len(cands) > branchingLimit {
		cands = cands[:branchingLimit]
	}
	return cands, nil
}

// applyOpponentReply plays the opponent's best reply (multipv=1) after a
// candidate move, per spec.md §4.8 step 3's opponent_model == best branch.
// Only the "best" opponent model is tuned in v1 (spec.md §4.8); any other
// value is treated as "best" as well since no alternative is implemented.
func applyOpponentReply(ctx context.Context, eng engineadapter.Engine, played board.Position, playedPath goal.Path, lastMoveSAN string, policy config.TargetSearchPolicy) (board.Position, goal.Path, bool) {
	reply, err := eng.Analyze(ctx, played.FEN(), policy.EngineDepthReply, 1)
	if err != nil || reply.Empty() {
		return played, playedPath, false
	}
	move, perr := played.ParseSAN(reply.BestMoveSAN)
	if perr != nil {
		return played, playedPath, false
	}
	next := played.MakeMove(move)
	nextPath := playedPath.Extend(reply.BestMoveSAN, next)
	return next, nextPath, true
}

func newWitness(path goal.Path, depth int, scoreCP int, rootWhite bool, progress float64) Witness {
	score := scoreCP
	if !rootWhite {
		score = -score
	}
	return Witness{
		LineSAN:  append([]string{}, path.MovesSAN...),
		Depth:    depth,
		Plies:    len(path.MovesSAN),
		ScoreCP:  score,
		Progress: progress,
	}
}

// dedupeFrontier implements spec.md §4.8 step 6: transposition guard only
// at frontier boundaries (intermediate opponent-reply positions are never
// tracked, to avoid cycle locks). The visited set is keyed on the Zobrist
// hash alone, with no FEN comparison: two distinct positions whose hashes
// collide are treated as one, and the later one is skipped.
func dedupeFrontier(entries []frontierEntry, visited map[uint64]bool) []frontierEntry {
	var out []frontierEntry
	for _, e := range entries {
		h := e.pos.Hash()
		if visited[h] {
			continue
		}
		visited[h] = true
		out = append(out, e)
	}
	return out
}

// sortFrontierByEval implements spec.md §4.8 step 5's global pruning: sort
// by eval from root's POV (higher is better for a White root, lower for
// Black), retaining only the best beam_width entries.
func sortFrontierByEval(entries []frontierEntry, rootWhite bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		if rootWhite {
			return entries[i].lastEval > entries[j].lastEval
		}
		return entries[i].lastEval < entries[j].lastEval
	})
}

// rankWitnesses orders witnesses per spec.md §4.8 step 8: depth asc, plies
// asc, progress desc, score desc, SAN line lexicographic, then truncates
// to the top K.
func rankWitnesses(witnesses []Witness, topK int) []Witness {
	out := append([]Witness{}, witnesses...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if a.Plies != b.Plies {
			return a.Plies < b.Plies
		}
		if a.Progress != b.Progress {
			return a.Progress > b.Progress
		}
		if a.ScoreCP != b.ScoreCP {
			return a.ScoreCP > b.ScoreCP
		}
		return strings.Join(a.LineSAN, " ") < strings.Join(b.LineSAN, " ")
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}
