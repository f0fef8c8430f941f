// Package orchestrator sequences one investigation request end to end:
// cache lookup, dual-depth investigate, evidence-line reduce, claim bind,
// PGN assembly, and progress-event emission (spec.md §2 "Pipeline
// Orchestrator", §6 "Progress callbacks"). It owns no analysis logic of
// its own; every step delegates to the package that implements it.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/cache"
	"github.com/blunext/chessinvestigator/internal/claims"
	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/blunext/chessinvestigator/internal/errs"
	"github.com/blunext/chessinvestigator/internal/goal"
	"github.com/blunext/chessinvestigator/internal/investigator"
	"github.com/blunext/chessinvestigator/internal/pgnio"
	"github.com/blunext/chessinvestigator/internal/target"
	"github.com/blunext/chessinvestigator/internal/telemetry"
)

// EventType enumerates spec.md §6's progress-callback types.
type EventType string

const (
	EventStatus                 EventType = "status"
	EventMoveExplored           EventType = "move_explored"
	EventBranchAdded            EventType = "branch_added"
	EventMoveInvestigationStart EventType = "move_investigation_start"
	EventMovePlayed             EventType = "move_played"
	EventInvestigationComplete  EventType = "investigation_complete"
)

// Event is one fire-and-forget progress hint, spec.md §6.
type Event struct {
	Type    EventType
	Message string
	FEN     string
	MoveSAN string
}

// Callback receives progress events. A panicking callback is recovered by
// the orchestrator, never propagated into the pipeline (spec.md §6,
// "failures are swallowed").
type Callback func(Event)

// Orchestrator sequences a pipeline of requests against one engine and one
// pair of caches. Per spec.md §5, it is single-writer by construction: do
// not share one instance across unrelated concurrent requests unless the
// caller also serializes access.
type Orchestrator struct {
	Engine   engineadapter.Engine
	Config   config.Config
	Leaf     *cache.LeafCache
	Results  *cache.ResultCache[investigator.InvestigationResult]
	Logger   *telemetry.Logger
	Progress Callback
}

// New builds an Orchestrator with fresh leaf/result caches sized per cfg
// and eng wrapped in the leaf-caching decorator.
func New(eng engineadapter.Engine, cfg config.Config, logger *telemetry.Logger, progress Callback) *Orchestrator {
	return &Orchestrator{
		Engine:   eng,
		Config:   cfg,
		Leaf:     cache.NewLeafCache(cfg.LeafCacheSize),
		Results:  cache.NewResultCache[investigator.InvestigationResult](cfg.ResultCacheSize, nil),
		Logger:   logger,
		Progress: progress,
	}
}

func (o *Orchestrator) cachingEngine() engineadapter.Engine {
	return &cache.CachingEngine{Engine: o.Engine, Leaf: o.Leaf}
}

func (o *Orchestrator) emit(e Event) {
	o.Logger.Log(telemetry.Entry{Stage: string(e.Type), FEN: e.FEN, Message: e.Message})
	if o.Progress == nil {
		return
	}
	defer func() { _ = recover() }()
	o.Progress(e)
}

// Investigate runs the full dual-depth investigation pipeline for fen,
// optionally anchored on a specific candidate move (spec.md §4.2's
// (fen, move_san?, kind, variant_tag) cache key; an empty moveSAN
// investigates the position itself as the "primary" kind).
func (o *Orchestrator) Investigate(ctx context.Context, fen, moveSAN string) (*investigator.InvestigationResult, error) {
	rootPos, perr := board.ParseFEN(fen)
	if perr != nil {
		return &investigator.InvestigationResult{GamePhase: "unknown"}, fmt.Errorf("%w: %v", errs.ErrMalformedFEN, perr)
	}

	kind := "primary"
	if moveSAN != "" {
		kind = "alt_move"
	}
	key := cache.ResultKey{
		FEN:        fen,
		MoveSAN:    moveSAN,
		Kind:       kind,
		VariantTag: cache.VariantTag(o.Config.DepthDeep, o.Config.DepthShallow, o.Config.EvidencePliesBase, o.Config.EvidencePliesMax),
	}
	if cached, ok := o.Results.Get(key); ok {
		o.emit(Event{Type: EventStatus, FEN: fen, Message: "cache_hit"})
		result := cached
		return &result, nil
	}

	o.emit(Event{Type: EventMoveInvestigationStart, FEN: fen, MoveSAN: moveSAN})

	investigateFEN := fen
	if moveSAN != "" {
		move, merr := rootPos.ParseSAN(moveSAN)
		if merr != nil {
			return nil, merr
		}
		played := rootPos.MakeMove(move)
		investigateFEN = played.FEN()
		o.emit(Event{Type: EventMovePlayed, FEN: investigateFEN, MoveSAN: moveSAN})
	}

	eng := o.cachingEngine()
	ctx = investigator.WithProgress(ctx, func(kind investigator.EventKind, nodeFEN, nodeMove string) {
		o.emit(Event{Type: EventType(kind), FEN: nodeFEN, MoveSAN: nodeMove})
	})

	tree, err := investigator.BuildTree(ctx, eng, o.Config, investigateFEN)
	if err != nil {
		return nil, err
	}

	candidateLine := tree.PVFull
	if moveSAN != "" {
		candidateLine = append([]string{moveSAN}, tree.PVFull...)
	}
	evidence, err := investigator.BuildEvidenceLine(ctx, eng, o.Config, fen, candidateLine)
	if err != nil {
		return nil, err
	}

	result := &investigator.InvestigationResult{
		RootFEN:   fen,
		GamePhase: rootPos.GamePhase(),
		Tree:      tree,
		Evidence:  evidence,
	}
	o.Results.Set(key, *result)
	o.emit(Event{Type: EventInvestigationComplete, FEN: fen, MoveSAN: moveSAN})
	return result, nil
}

// InvestigateTarget runs the Target Search entry point (spec.md §4.8),
// sharing the same engine and caching policy as Investigate.
func (o *Orchestrator) InvestigateTarget(ctx context.Context, fen string, goalNode *goal.Node, policy config.TargetSearchPolicy) (target.Result, []string) {
	var notes []string
	clamped := policy
	notes = append(notes, clamped.Clamp()...)

	o.emit(Event{Type: EventMoveInvestigationStart, FEN: fen, Message: "target_search"})
	result, err := target.Search(ctx, o.cachingEngine(), fen, goalNode, clamped, o.Config.NodeLimit)
	if err != nil {
		o.emit(Event{Type: EventStatus, FEN: fen, Message: "target_search_error: " + err.Error()})
		return target.Result{Status: target.StatusUncertain}, append(notes, "target_search_error")
	}
	o.emit(Event{Type: EventInvestigationComplete, FEN: fen, Message: "target_search"})
	return result, append(notes, result.Assumptions...)
}

// AssemblePGN renders result's exploration tree via internal/pgnio.
func (o *Orchestrator) AssemblePGN(result *investigator.InvestigationResult) (string, error) {
	return pgnio.Assemble(result, o.Config)
}

// Finalize runs the Claim Binder + canonicalization pipeline over
// candidate claims produced upstream (by an LLM or deterministic rules),
// then reduces the bound set into a digest (spec.md §4.9, SPEC_FULL.md §C.1).
func (o *Orchestrator) Finalize(result *investigator.InvestigationResult, candidates []*claims.Claim, playerMoveSAN string, agendaSize int) ([]*claims.Claim, claims.Digest) {
	for _, c := range candidates {
		kind := claims.BindDefault
		if c.Hints.Role == "consequence" {
			kind = claims.BindConsequence
		}
		claims.Bind(c, result, playerMoveSAN, kind)
	}
	deduped := claims.Dedup(candidates)
	oneLine := claims.OneClaimPerEvidenceLine(deduped)
	covered, _ := claims.EnsureAgendaCoverage(oneLine, agendaSize)

	digest := claims.BuildDigest(result, covered)
	return covered, digest
}
