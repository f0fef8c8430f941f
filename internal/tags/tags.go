// Package tags computes structural tags and piece roles from a position,
// and diffs two snapshots into gained/lost sets (spec.md §3, §4 "Tag/Role
// Analyzer"). It has no notion of search; it is pure board inspection.
package tags

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blunext/chessinvestigator/board"
)

// Tag is a structural/tactical property of a position.
type Tag struct {
	Name    string
	Side    board.Color
	Squares []board.Square
	Pieces  []string
	Details map[string]string
}

// PieceRole attaches a functional descriptor to a specific piece instance.
type PieceRole struct {
	PieceID string // color_pieceType_square, e.g. "white_bishop_c1"
	Role    string
}

// stableInstanceTags collapse their identity to (name, side) only, so a
// piece relocation (e.g. the surviving bishop of a pair moving) does not
// register as a loss+gain. Per spec.md §3.
var stableInstanceTags = map[string]bool{
	"tag.bishop.pair": true,
}

// Identity returns the diffing key for a tag instance: full (name, side,
// squares, pieces) for ordinary tags, or (name, side) for stable-instance
// tags (spec.md §3).
func (t Tag) Identity() string {
	if stableInstanceTags[t.Name] {
		return t.Name + "|" + t.Side.String()
	}
	sqs := make([]string, len(t.Squares))
	for i, s := range t.Squares {
		sqs[i] = s.String()
	}
	sort.Strings(sqs)
	pieces := append([]string{}, t.Pieces...)
	sort.Strings(pieces)
	return t.Name + "|" + t.Side.String() + "|" + strings.Join(sqs, ",") + "|" + strings.Join(pieces, ",")
}

func pieceID(color board.Color, piece board.Piece, sq board.Square) string {
	return fmt.Sprintf("%s_%s_%s", color.String(), strings.ToLower(piece.String()), sq.String())
}

// Analyze computes the full structural tag and role set for a position.
func Analyze(pos *board.Position) ([]Tag, []PieceRole) {
	var out []Tag
	out = append(out, pawnStructureTags(pos, board.White)...)
	out = append(out, pawnStructureTags(pos, board.Black)...)
	out = append(out, bishopPairTags(pos)...)
	out = append(out, rookFileTags(pos, board.White)...)
	out = append(out, rookFileTags(pos, board.Black)...)

	overworked, roles := overworkedAndPins(pos)
	out = append(out, overworked...)
	return out, roles
}

func pawnStructureTags(pos *board.Position, color board.Color) []Tag {
	var out []Tag
	pawns := pos.PiecesOf(color, board.Pawn)
	filesOccupied := map[int]int{}
	for _, sq := range pawns {
		filesOccupied[sq.File()]++
	}

	for _, sq := range pawns {
		if filesOccupied[sq.File()] > 1 {
			out = append(out, Tag{
				Name:    "tag.pawn.doubled",
				Side:    color,
				Squares: []board.Square{sq},
				Pieces:  []string{pieceID(color, board.Pawn, sq)},
			})
		}
		if isIsolated(filesOccupied, sq.File()) {
			out = append(out, Tag{
				Name:    "tag.pawn.isolated",
				Side:    color,
				Squares: []board.Square{sq},
				Pieces:  []string{pieceID(color, board.Pawn, sq)},
			})
		}
		if isPassed(pos, color, sq) {
			out = append(out, Tag{
				Name:    "tag.pawn.passed",
				Side:    color,
				Squares: []board.Square{sq},
				Pieces:  []string{pieceID(color, board.Pawn, sq)},
			})
		}
	}
	return out
}

func isIsolated(filesOccupied map[int]int, file int) bool {
	for _, df := range [2]int{-1, 1} {
		f := file + df
		if f < 0 || f > 7 {
			continue
		}
		if filesOccupied[f] > 0 {
			return false
		}
	}
	return true
}

// isPassed reports whether the pawn on sq has no enemy pawn on its own or
// adjacent files strictly ahead of it; an enemy pawn level with it on an
// adjacent file does not count.
func isPassed(pos *board.Position, color board.Color, sq board.Square) bool {
	enemy := color.Opposite()
	rank := sq.Rank()
	for _, enemySq := range pos.PiecesOf(enemy, board.Pawn) {
		df := enemySq.File() - sq.File()
		if df < -1 || df > 1 {
			continue
		}
		if color == board.White && enemySq.Rank() > rank {
			return false
		}
		if color == board.Black && enemySq.Rank() < rank {
			return false
		}
	}
	return true
}

func bishopPairTags(pos *board.Position) []Tag {
	var out []Tag
	for _, color := range [2]board.Color{board.White, board.Black} {
		if pos.HasBishopPair(color) {
			bishops := pos.PiecesOf(color, board.Bishop)
			pieces := make([]string, len(bishops))
			for i, sq := range bishops {
				pieces[i] = pieceID(color, board.Bishop, sq)
			}
			out = append(out, Tag{
				Name:    "tag.bishop.pair",
				Side:    color,
				Squares: bishops,
				Pieces:  pieces,
			})
		}
	}
	return out
}

func rookFileTags(pos *board.Position, color board.Color) []Tag {
	var out []Tag
	enemy := color.Opposite()
	ownPawnFiles := map[int]bool{}
	for _, sq := range pos.PiecesOf(color, board.Pawn) {
		ownPawnFiles[sq.File()] = true
	}
	enemyPawnFiles := map[int]bool{}
	for _, sq := range pos.PiecesOf(enemy, board.Pawn) {
		enemyPawnFiles[sq.File()] = true
	}

	for _, sq := range pos.PiecesOf(color, board.Rook) {
		file := sq.File()
		if ownPawnFiles[file] {
			continue
		}
		name := "tag.rook.open_file"
		if enemyPawnFiles[file] {
			name = "tag.rook.semi_open_file"
		}
		out = append(out, Tag{
			Name:    name,
			Side:    color,
			Squares: []board.Square{sq},
			Pieces:  []string{pieceID(color, board.Rook, sq)},
			Details: map[string]string{"file": string(rune('a' + file))},
		})
	}
	return out
}

// overworkedAndPins computes role.tactical.pinned and role.defending.overworked,
// plus the tag.piece.overworked.<sq> tag that §4.6's post-pass consumes.
func overworkedAndPins(pos *board.Position) ([]Tag, []PieceRole) {
	var tagOut []Tag
	var roles []PieceRole

	for _, color := range [2]board.Color{board.White, board.Black} {
		roles = append(roles, pinnedRoles(pos, color)...)
	}

	// For each side, find pieces that are the *sole* defender of two or
	// more friendly pieces that are each attacked by the opponent.
	for _, color := range [2]board.Color{board.White, board.Black} {
		enemy := color.Opposite()
		defenderCounts := map[board.Square][]board.Square{} // defender sq -> defended squares it alone covers

		for sq := board.Square(0); sq < 64; sq++ {
			piece, pieceColor := pos.PieceAt(sq)
			if piece == board.Empty || pieceColor != color {
				continue
			}
			if len(pos.AttackersOf(sq, enemy)) == 0 {
				continue
			}
			defenders := pos.AttackersOf(sq, color)
			if len(defenders) != 1 {
				continue
			}
			defenderCounts[defenders[0]] = append(defenderCounts[defenders[0]], sq)
		}

		for defenderSq, defended := range defenderCounts {
			if len(defended) < 2 {
				continue
			}
			piece, _ := pos.PieceAt(defenderSq)
			sqStrs := make([]string, len(defended))
			for i, s := range defended {
				sqStrs[i] = s.String()
			}
			sort.Strings(sqStrs)
			roles = append(roles, PieceRole{
				PieceID: pieceID(color, piece, defenderSq),
				Role:    "role.defending.overworked",
			})
			tagOut = append(tagOut, Tag{
				Name:    "tag.piece.overworked." + defenderSq.String(),
				Side:    color,
				Squares: []board.Square{defenderSq},
				Pieces:  []string{pieceID(color, piece, defenderSq)},
				Details: map[string]string{"defended": strings.Join(sqStrs, ",")},
			})
		}
	}
	return tagOut, roles
}

var pinDirections = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// pinnedRoles finds own-color pieces pinned to their king: the first piece
// outward from the king in a ray direction is own-colored, and the next
// piece in that same direction is an enemy slider that attacks along it.
func pinnedRoles(pos *board.Position, color board.Color) []PieceRole {
	king := pos.King(color)
	if king == board.NoSquare {
		return nil
	}
	enemy := color.Opposite()
	var out []PieceRole

	for _, d := range pinDirections {
		isDiagonal := d[0] != 0 && d[1] != 0
		first, ok := pos.FirstSliderInDirection(king, d[0], d[1])
		if !ok {
			continue
		}
		piece, pieceColor := pos.PieceAt(first)
		if pieceColor != color {
			continue
		}
		second, ok := pos.FirstSliderInDirection(first, d[0], d[1])
		if !ok {
			continue
		}
		sPiece, sColor := pos.PieceAt(second)
		if sColor != enemy {
			continue
		}
		isSliderMatch := sPiece == board.Queen ||
			(isDiagonal && sPiece == board.Bishop) ||
			(!isDiagonal && sPiece == board.Rook)
		if !isSliderMatch {
			continue
		}
		out = append(out, PieceRole{
			PieceID: pieceID(color, piece, first),
			Role:    "role.tactical.pinned",
		})
	}
	return out
}

// Diff set-diffs two tag snapshots by Identity(), returning what's gained
// and lost between before and after.
func Diff(before, after []Tag) (gained, lost []Tag) {
	beforeSet := map[string]bool{}
	for _, t := range before {
		beforeSet[t.Identity()] = true
	}
	afterSet := map[string]bool{}
	for _, t := range after {
		afterSet[t.Identity()] = true
	}
	for _, t := range after {
		if !beforeSet[t.Identity()] {
			gained = append(gained, t)
		}
	}
	for _, t := range before {
		if !afterSet[t.Identity()] {
			lost = append(lost, t)
		}
	}
	return gained, lost
}

func (r PieceRole) identity() string { return r.PieceID + ":" + r.Role }

// DiffRoles set-diffs two role snapshots.
func DiffRoles(before, after []PieceRole) (gained, lost []PieceRole) {
	beforeSet := map[string]bool{}
	for _, r := range before {
		beforeSet[r.identity()] = true
	}
	afterSet := map[string]bool{}
	for _, r := range after {
		afterSet[r.identity()] = true
	}
	for _, r := range after {
		if !beforeSet[r.identity()] {
			gained = append(gained, r)
		}
	}
	for _, r := range before {
		if !afterSet[r.identity()] {
			lost = append(lost, r)
		}
	}
	return gained, lost
}
