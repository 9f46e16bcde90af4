// Package recommend picks a move that imitates a legend, from the legend's position
// index when the position is known and from the oracle otherwise.
package recommend

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/index"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/oracle"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/supersede"
)

// Source says where a recommended move came from.
type Source string

const (
	SourceIndex    Source = "index"
	SourceOracle   Source = "oracle"
	SourceInferior Source = "inferior"
)

var errNoOracle = stderrors.New("no oracle configured")

// Request describes the live game. FEN wins over History when both are set.
type Request struct {
	FEN       string   `json:"fen"`
	History   []string `json:"history"`
	BotLevel  int      `json:"bot_level"`
	SessionID string   `json:"session_id"`
}

// Recommendation is exactly one move plus how it was chosen.
type Recommendation struct {
	Move       string             `json:"move"`
	Source     Source             `json:"source"`
	FEN        string             `json:"fen"`
	Candidates []Candidate        `json:"candidates,omitempty"`
	Evaluation *oracle.Evaluation `json:"evaluation,omitempty"`
}

// Engine is safe for concurrent use.
type Engine struct {
	rules  rules.Engine
	oracle oracle.Oracle
	gate   *supersede.Gate

	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns an engine. o may be nil, in which case index misses fail. A nil rnd is
// replaced by a time-seeded source.
func New(engine rules.Engine, o oracle.Oracle, rnd *rand.Rand) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rules: engine, oracle: o, gate: supersede.NewGate(), rnd: rnd}
}

// Recommend returns one legal move for the position in req. Index hits never consult
// the oracle. Failures are *errors.AppError values.
func (e *Engine) Recommend(ctx context.Context, idx *index.Index, req Request) (Recommendation, error) {
	log := logger.FromContext(ctx).WithPrefix("recommend")

	state, err := e.position(req)
	if err != nil {
		return Recommendation{}, err
	}
	fen := state.FEN()
	legal := e.rules.LegalMoves(state)
	if len(legal) == 0 {
		return Recommendation{}, errors.NewNoLegalMoveError(fen)
	}

	if idx != nil {
		if cands := Weigh(idx.Lookup(fen), legal); len(cands) > 0 {
			move := e.pick(cands)
			log.Debug("index hit with %d candidates, picked %s", len(cands), move)
			return Recommendation{Move: move, Source: SourceIndex, FEN: fen, Candidates: cands}, nil
		}
	}

	log.Debug("index miss, asking oracle at level %d", req.BotLevel)
	return e.fallback(ctx, fen, legal, req)
}

func (e *Engine) position(req Request) (rules.State, error) {
	if req.FEN != "" {
		s, err := e.rules.Parse(req.FEN)
		if err != nil {
			return nil, errors.NewValidationError("fen", err.Error())
		}
		return s, nil
	}

	s := e.rules.Start()
	for i, tok := range req.History {
		next, _, err := e.rules.Apply(s, tok)
		if err != nil {
			return nil, errors.NewValidationError("history", fmt.Sprintf("move %d (%q) is not legal", i+1, tok))
		}
		s = next
	}
	return s, nil
}

func (e *Engine) pick(cands []Candidate) string {
	var total float64
	for _, c := range cands {
		total += c.Weight
	}

	e.mu.Lock()
	r := e.rnd.Float64() * total
	e.mu.Unlock()

	for _, c := range cands {
		r -= c.Weight
		if r < 0 {
			return c.Move
		}
	}
	return cands[len(cands)-1].Move
}

func (e *Engine) float() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Float64()
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(n)
}
