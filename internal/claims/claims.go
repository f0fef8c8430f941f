// Package claims implements the Claim Binder (spec.md §4.9): attaching
// evidence to candidate summaries by reading (never recomputing) from an
// investigation result, plus canonicalization (dedup, one-claim-per-line,
// agenda coverage) and the supplemental Investigation Reducer/Digest.
package claims

import (
	"github.com/blunext/chessinvestigator/internal/tags"
)

// Connector is the optional causal link a claim's summary carries.
type Connector string

const (
	ConnectorNone        Connector = "none"
	ConnectorBecause     Connector = "because"
	ConnectorAllows      Connector = "allows"
	ConnectorCreates     Connector = "creates"
	ConnectorLeadsTo     Connector = "leads_to"
	ConnectorCauses      Connector = "causes"
	ConnectorResultsIn   Connector = "results_in"
	ConnectorTherefore   Connector = "therefore"
	ConnectorSoThat      Connector = "so_that"
	ConnectorWhichMeans  Connector = "which_means"
)

// EvidenceSource names where a claim's evidence line came from.
type EvidenceSource string

const (
	SourcePV            EvidenceSource = "pv"
	SourcePGN           EvidenceSource = "pgn"
	SourceEvidenceIndex EvidenceSource = "evidence_index"
	SourceValidated     EvidenceSource = "validated"
)

// Origin records which subsystem produced a candidate claim, used by
// canonicalization's merge scoring.
type Origin string

const (
	OriginLLM    Origin = "llm"
	OriginBind   Origin = "bind"
	OriginHammer Origin = "hammer"
)

// RenderHints are opaque-to-logic rendering preferences carried on a claim.
type RenderHints struct {
	Role      string
	Priority  int
	InlinePGN bool
}

// EvidencePayload is referentially copied from the InvestigationResult,
// never recomputed (spec.md §3, §4.9).
type EvidencePayload struct {
	PGNLine             string
	PGNMoves            []string
	ThemeTags           []string
	RawTags             []string
	TacticTags          []string
	TagsGainedNet       []tags.Tag
	TagsLostNet         []tags.Tag
	RolesGainedNet      []tags.PieceRole
	RolesLostNet        []tags.PieceRole
	EvalBefore          int
	EvalAfter           int
	EvalDrop            int
	EvidenceEvalStart   int
	EvidenceEvalEnd     int
	EvidenceMaterialStart int
	EvidenceMaterialEnd   int
	EvidencePositionalStart int
	EvidencePositionalEnd   int
	MaterialChangeNet   int
	KeyEvalBreakdown    string
}

// Claim is a single evidence-bound natural-language claim, spec.md §3.
type Claim struct {
	Summary        string
	Connector      Connector
	EvidenceMoves  []string
	EvidenceSource EvidenceSource
	Payload        *EvidencePayload
	Hints          RenderHints
	Origin         Origin
	Score          float64
}

