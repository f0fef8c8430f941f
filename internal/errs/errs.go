// Package errs defines the sentinel error kinds from spec.md §7. Every
// fallible operation in this module returns one of these (wrapped with
// %w for context) rather than panicking; callers match with errors.Is.
package errs

import "errors"

var (
	// ErrIllegalMove: SAN does not parse or is not legal from the given FEN.
	ErrIllegalMove = errors.New("illegal move")

	// ErrEngineUnavailable: adapter could not obtain an engine, or the
	// engine returned nothing usable.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrMalformedFEN: FEN failed to parse; fatal to the current operation.
	ErrMalformedFEN = errors.New("malformed FEN")

	// ErrInvalidGoalAST: unknown predicate/composite type or malformed params.
	ErrInvalidGoalAST = errors.New("invalid goal ast")

	// ErrPolicyClamp is never returned to a caller — it documents the
	// silent-clamp-and-record-assumption behavior of target search policy.
	ErrPolicyClamp = errors.New("policy value clamped")

	// ErrNodeLimit: Target Search exceeded its node expansion cap.
	ErrNodeLimit = errors.New("node limit reached")
)
