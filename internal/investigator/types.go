// Package investigator implements the dual-depth exploration core
// (spec.md §4.3), the threat analyzer (§4.4), the evidence line builder
// (§4.5), and the overworked-exploitation post-pass (§4.6). It drives an
// engineadapter.Engine and board package primitives; it has no notion of
// claims or PGN rendering — those live downstream in claims/pgnio.
package investigator

import (
	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/blunext/chessinvestigator/internal/tags"
)

// ThreatClaim captures a significant reply gap discovered by the threat
// analyzer at a node (spec.md §3, §4.4).
type ThreatClaim struct {
	SignificanceCP int
	ThreatMoveSAN  string
	ThreatPVSan    []string
	ThreateningSide board.Color
	PositionFEN    string
}

// ExplorationNode is one node of the dual-depth exploration tree, spec.md §3.
type ExplorationNode struct {
	FEN                  string
	MovePlayedSAN        string // "" at root
	EvalDeep             int
	EvalShallow          int
	BestMoveDeepSAN      string
	BestMoveDeepEvalCP   int
	SecondBestDeepSAN    string
	SecondBestDeepEvalCP int
	HasSecondBestDeep    bool
	IsCritical           bool // gap > 50cp
	IsWinning            bool // signs differ
	PVFull               []string
	OverestimatedMoves   []string
	ThreatClaim          *ThreatClaim
	Branches             []*ExplorationNode
	Stopped              bool
	StopReason           string
	TerminalTopMovesDeep []engineadapter.TopMove
}

// PerMoveDelta is the tag/role/eval delta for one ply of the evidence line, spec.md §3.
type PerMoveDelta struct {
	Ply        int
	MoveSAN    string
	FENBefore  string
	FENAfter   string
	TagsGained []tags.Tag
	TagsLost   []tags.Tag
	RolesGained []tags.PieceRole
	RolesLost  []tags.PieceRole
}

// EvalDecomposition splits an eval into material and positional parts,
// spec.md §4.5.
type EvalDecomposition struct {
	EvalCP       int
	MaterialCP   int
	PositionalCP int
}

// EvidenceLine is the canonical 4-8 ply proof line, spec.md §4.5.
type EvidenceLine struct {
	MovesSAN    []string
	PerMove     []PerMoveDelta
	TagsGainedNet []tags.Tag
	TagsLostNet   []tags.Tag
	RolesGainedNet []tags.PieceRole
	RolesLostNet   []tags.PieceRole
	EvalStart   EvalDecomposition
	EvalEnd     EvalDecomposition
}

// InvestigationResult is the aggregate result of one investigation, spec.md §3.
type InvestigationResult struct {
	RootFEN     string
	GamePhase   string // coarse observability bucket; see board.Position.GamePhase
	Tree        *ExplorationNode
	Evidence    EvidenceLine
	Assumptions []string
}
