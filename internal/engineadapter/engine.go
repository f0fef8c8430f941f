// Package engineadapter wraps one or more UCI engine processes behind a
// single Analyze operation, normalizing every score to White's point of
// view regardless of side to move (spec.md §4.1).
package engineadapter

import "context"

// TopMove is one ranked candidate from a multi-PV search.
type TopMove struct {
	MoveUCI string
	MoveSAN string
	EvalCP  int
	MateIn  *int // ply distance to mate, nil unless this line is a forced mate
	Rank    int
}

// AnalysisResult is the per-(fen,depth,multipv) engine output, spec.md §3.
// A failed analyze call returns the zero value: every field is its zero
// (nil slice / empty string / zero int), never a partial result.
type AnalysisResult struct {
	EvalCP        int
	MateIn        *int
	BestMoveUCI   string
	BestMoveSAN   string
	PV            []string // UCI moves
	PVSan         []string
	TopMoves      []TopMove
	HasSecondBest bool
	SecondBestUCI string
	SecondBestSAN string
	SecondBestCP  int
	SecondMateIn  *int
}

// Empty reports whether r carries no usable analysis (engine failure case).
func (r AnalysisResult) Empty() bool {
	return r.BestMoveUCI == "" && len(r.PV) == 0
}

// Engine is the one operation every adapter implementation exposes.
// Implementations must never let an engine-process error escape as a
// panic; they return a zero AnalysisResult and a non-nil error instead
// (spec.md §4.1, §7 EngineUnavailable).
type Engine interface {
	Analyze(ctx context.Context, fen string, depth, multiPV int) (AnalysisResult, error)
	Close() error
}
