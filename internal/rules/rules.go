// Package rules adapts a chess rules library to the small surface the ingestion and
// query pipelines consume: start position, FEN parsing, move application and legal moves.
package rules

import (
	"strconv"
	"strings"

	"github.com/vytor/chesslegends/internal/models"
)

// State is an opaque board state produced by an Engine.
type State interface {
	FEN() string
	Turn() models.Color
	MoveNumber() int
}

// Engine is the rules-engine capability.
type Engine interface {
	Start() State
	Parse(fen string) (State, error)
	// Apply plays token (SAN, UCI or long algebraic) and returns the next state and the
	// move in coordinate form, or an error when the token is not a legal move.
	Apply(s State, token string) (State, models.Move, error)
	LegalMoves(s State) []models.Move
}

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// PositionKey drops the halfmove and fullmove counters from a FEN so that the same
// position reached through different move orders shares one key. An en passant square
// is kept only when a pawn of the side to move stands next to the pushed pawn.
func PositionKey(fen string) string {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return strings.TrimSpace(fen)
	}
	if parts[3] != "-" && !enPassantCapturable(parts[0], parts[1], parts[3]) {
		parts[3] = "-"
	}
	return strings.Join(parts[:4], " ")
}

func enPassantCapturable(placement, turn, ep string) bool {
	if len(ep) != 2 {
		return false
	}
	file := int(ep[0] - 'a')
	pawn, rank := byte('P'), 5
	if turn == "b" {
		pawn, rank = 'p', 4
	}
	for _, f := range []int{file - 1, file + 1} {
		if pieceAt(placement, f, rank) == pawn {
			return true
		}
	}
	return false
}

// pieceAt returns the piece letter on file (0-7) and rank (1-8), or 0.
func pieceAt(placement string, file, rank int) byte {
	rows := strings.Split(placement, "/")
	if file < 0 || file > 7 || rank < 1 || rank > 8 || len(rows) != 8 {
		return 0
	}
	f := 0
	for _, c := range []byte(rows[8-rank]) {
		if c >= '1' && c <= '8' {
			f += int(c - '0')
			continue
		}
		if f == file {
			return c
		}
		f++
	}
	return 0
}

// TurnFromFEN reads the side-to-move field.
func TurnFromFEN(fen string) models.Color {
	parts := strings.Fields(fen)
	if len(parts) > 1 && parts[1] == "b" {
		return models.Black
	}
	return models.White
}

// MoveNumberFromFEN reads the fullmove counter, defaulting to 1.
func MoveNumberFromFEN(fen string) int {
	parts := strings.Fields(fen)
	if len(parts) >= 6 {
		if n, err := strconv.Atoi(parts[5]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// Contains reports whether moves holds the coordinate move uci.
func Contains(moves []models.Move, uci string) bool {
	for _, m := range moves {
		if m.UCI() == uci {
			return true
		}
	}
	return false
}

// Find returns the legal move matching uci.
func Find(moves []models.Move, uci string) (models.Move, bool) {
	for _, m := range moves {
		if m.UCI() == uci {
			return m, true
		}
	}
	return models.Move{}, false
}
