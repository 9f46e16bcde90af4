// Package oracle talks to a UCI search engine that supplies best moves and evaluations.
package oracle

import (
	"context"
	"errors"
)

// ErrNoLegalMove is returned when the side to move has no legal move (mate or stalemate).
var ErrNoLegalMove = errors.New("no legal move")

// ErrTimeout is returned when a search outlives the engine's timeout. The late answer
// is discarded.
var ErrTimeout = errors.New("stockfish timeout")

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("engine pool closed")

// Evaluation is the engine's answer for one position.
type Evaluation struct {
	BestMove string `json:"best_move"`
	// CP is centipawns from White's perspective. Mate scores are folded into CP as
	// 10000 minus ten per move.
	CP int `json:"cp"`
	// Mate is the signed distance to mate from White's perspective, or 0.
	Mate int `json:"mate,omitempty"`
}

// Strength is the search budget for one request.
type Strength struct {
	Depth      int
	SkillLevel int
	// InferiorChance is the probability a caller should play a weaker legal move
	// instead of the best one.
	InferiorChance float64
}

// Oracle returns the best move for a position.
type Oracle interface {
	BestMove(ctx context.Context, fen string, s Strength) (Evaluation, error)
}

const (
	MinLevel = 1
	MaxLevel = 20
)

// StrengthForLevel maps a bot level (1-20) to a search budget. Out of range levels
// are clamped.
func StrengthForLevel(level int) Strength {
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return Strength{
		Depth:          4 + level/2,
		SkillLevel:     level,
		InferiorChance: float64(MaxLevel-level) * 0.02,
	}
}

// FullStrength is used when scoring guesses.
func FullStrength(depth int) Strength {
	s := StrengthForLevel(MaxLevel)
	if depth > 0 {
		s.Depth = depth
	}
	return s
}
