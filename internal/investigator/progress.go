package investigator

import "context"

// EventKind names one spec.md §6 progress-callback type that the
// dual-depth core itself can observe (the remaining types — status,
// move_investigation_start, move_played, investigation_complete — are
// orchestrator-level and emitted by internal/orchestrator).
type EventKind string

const (
	EventMoveExplored EventKind = "move_explored"
	EventBranchAdded  EventKind = "branch_added"
)

// ProgressFunc receives a fire-and-forget progress hint. Per spec.md §6,
// failures are swallowed: a panicking ProgressFunc must never abort the
// investigation it is observing.
type ProgressFunc func(kind EventKind, fen, moveSAN string)

type progressCtxKey struct{}

// WithProgress attaches fn to ctx so BuildTree emits move_explored and
// branch_added hints as it expands the tree. Threading this through
// context (rather than a BuildTree parameter) keeps the recursive
// investigateNode/exploreMidPVBranches call graph's existing signature
// stable for direct callers and tests that don't care about progress.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressCtxKey{}, fn)
}

func emitProgress(ctx context.Context, kind EventKind, fen, moveSAN string) {
	fn, ok := ctx.Value(progressCtxKey{}).(ProgressFunc)
	if !ok || fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn(kind, fen, moveSAN)
}
