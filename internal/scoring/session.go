// Package scoring runs study sessions: the user guesses a legend's moves through one
// game and every guess is scored against the historical move and the oracle.
package scoring

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/oracle"
	"github.com/vytor/chesslegends/internal/replay"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/supersede"
)

// Scorer creates sessions and scores their guesses. The oracle is optional; without
// it misses are scored as unverified.
type Scorer struct {
	rules    rules.Engine
	replayer *replay.Replayer
	oracle   oracle.Oracle
	strength oracle.Strength
	gate     *supersede.Gate
}

func NewScorer(engine rules.Engine, o oracle.Oracle, depth int) *Scorer {
	return &Scorer{
		rules:    engine,
		replayer: replay.New(engine),
		oracle:   o,
		strength: oracle.FullStrength(depth),
		gate:     supersede.NewGate(),
	}
}

// Session is one study pass over a game. Safe for concurrent use.
type Session struct {
	ID        string             `json:"id"`
	LegendID  string             `json:"legend_id"`
	Record    models.GameRecord  `json:"record"`
	Side      models.Side        `json:"side"`
	Steps     []models.GuessStep `json:"steps"`
	StartedAt time.Time          `json:"started_at"`

	scorer  *Scorer
	mu      sync.Mutex
	cursor  int
	results []models.GuessResult
}

// NewSession builds the guess steps from the legend's plies in rec.
func (s *Scorer) NewSession(id string, rec models.GameRecord, side models.Side) (*Session, error) {
	if _, ok := side.Color(); !ok {
		return nil, errors.NewValidationError("game", "legend did not play in this game")
	}
	res := s.replayer.ReplayColor(rec, side)
	if len(res.Plies) == 0 {
		return nil, errors.NewValidationError("game", "no replayable moves for the legend")
	}

	steps := make([]models.GuessStep, 0, len(res.Plies))
	for _, p := range res.Plies {
		steps = append(steps, models.GuessStep{FEN: p.FENBefore, Historical: p.Move, MoveNumber: p.MoveNumber})
	}
	return &Session{
		ID:        id,
		LegendID:  rec.LegendID,
		Record:    rec,
		Side:      side,
		Steps:     steps,
		StartedAt: time.Now().UTC(),
		scorer:    s,
	}, nil
}

// Current returns the position awaiting a guess.
func (ss *Session) Current() (models.GuessStep, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.cursor >= len(ss.Steps) {
		return models.GuessStep{}, false
	}
	return ss.Steps[ss.cursor], true
}

// Done reports whether every step has been guessed.
func (ss *Session) Done() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cursor >= len(ss.Steps)
}

// Results returns the scored guesses so far.
func (ss *Session) Results() []models.GuessResult {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]models.GuessResult(nil), ss.results...)
}

// Submit scores guess at the current step and advances. Invalid guesses leave the
// session where it was. A submission overtaken by a newer one for the same step is
// discarded with a SUPERSEDED error.
func (ss *Session) Submit(ctx context.Context, guess string) (models.GuessResult, error) {
	ss.mu.Lock()
	if ss.cursor >= len(ss.Steps) {
		ss.mu.Unlock()
		return models.GuessResult{}, errors.NewSessionCompleteError(ss.ID)
	}
	ply := ss.cursor
	step := ss.Steps[ply]
	ss.mu.Unlock()

	ctx, ticket := ss.scorer.gate.Begin(ctx, ss.ID)
	defer ticket.Done()

	res, err := ss.scorer.score(ctx, ply, step, guess)
	if !ticket.Current() {
		return models.GuessResult{}, errors.NewSupersededError(ss.ID)
	}
	if err != nil {
		return models.GuessResult{}, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.cursor != ply {
		return models.GuessResult{}, errors.NewSupersededError(ss.ID)
	}
	ss.results = append(ss.results, res)
	ss.cursor++
	return res, nil
}

// Summary aggregates the results so far.
func (ss *Session) Summary() models.SessionSummary {
	results := ss.Results()
	sum := models.SessionSummary{
		SessionID:    ss.ID,
		LegendID:     ss.LegendID,
		GameID:       ss.Record.ID,
		MaxScore:     len(results) * ScoreExact,
		Results:      results,
		WeaknessTags: WeaknessTags(results),
		FinishedAt:   time.Now().UTC(),
	}
	for _, r := range results {
		sum.TotalScore += r.Score
	}
	return sum
}

func (s *Scorer) score(ctx context.Context, ply int, step models.GuessStep, guess string) (models.GuessResult, error) {
	log := logger.FromContext(ctx).WithPrefix("scoring")

	state, err := s.rules.Parse(step.FEN)
	if err != nil {
		return models.GuessResult{}, errors.NewInternalError(err)
	}
	next, move, err := s.parseGuess(state, guess)
	if err != nil {
		return models.GuessResult{}, errors.NewValidationError("move", err.Error())
	}

	res := models.GuessResult{
		Ply:        ply + 1,
		MoveNumber: step.MoveNumber,
		FEN:        step.FEN,
		Guess:      move.UCI(),
		Historical: step.Historical.UCI(),
	}
	if res.Guess == res.Historical {
		res.Score = ScoreExact
		res.Tags = []models.Tag{models.TagExactMatch}
		return res, nil
	}

	color := state.Turn()
	if s.oracle == nil {
		res.Score = ScoreUnverified
		res.Tags = append(missTags(move, step.Historical, color), models.TagUnverified)
		return res, nil
	}

	best, err := s.oracle.BestMove(ctx, step.FEN, s.strength)
	if err != nil {
		log.Warn("oracle failed at ply %d: %v", ply+1, err)
		return models.GuessResult{}, errors.NewOracleUnavailableError(err)
	}
	if !rules.Contains(s.rules.LegalMoves(state), best.BestMove) {
		log.Warn("oracle returned illegal move %q at ply %d", best.BestMove, ply+1)
		return models.GuessResult{}, errors.NewOracleUnavailableError(fmt.Errorf("oracle returned illegal move %q", best.BestMove))
	}
	res.OracleBest = best.BestMove

	if res.Guess == best.BestMove {
		zero := 0
		res.CPLoss = &zero
		res.Classification = ClassGood
		res.Score = ScoreOracleBest
		res.Tags = []models.Tag{models.TagOracleBest, models.TagDeviation}
		return res, nil
	}

	afterCP, err := s.evalAfter(ctx, next, move, color)
	if err != nil {
		log.Warn("oracle failed after guess at ply %d: %v", ply+1, err)
		return models.GuessResult{}, errors.NewOracleUnavailableError(err)
	}
	loss := CPLoss(best.CP, afterCP, color == models.White)
	res.CPLoss = &loss
	res.Classification = Classify(loss)
	res.Score = scoreFor(res.Classification)
	res.Tags = append(missTags(move, step.Historical, color), classTags(res.Classification)...)
	return res, nil
}

// evalAfter scores the position after the guess from White's perspective. A guess that
// leaves the opponent without moves is mate when it gave check and a draw otherwise.
func (s *Scorer) evalAfter(ctx context.Context, next rules.State, move models.Move, mover models.Color) (int, error) {
	ev, err := s.oracle.BestMove(ctx, next.FEN(), s.strength)
	if stderrors.Is(err, oracle.ErrNoLegalMove) {
		if !move.Check {
			return 0, nil
		}
		if mover == models.White {
			return 10000, nil
		}
		return -10000, nil
	}
	return ev.CP, err
}

func (s *Scorer) parseGuess(state rules.State, guess string) (rules.State, models.Move, error) {
	guess = strings.TrimSpace(guess)
	next, move, err := s.rules.Apply(state, guess)
	if err == nil {
		return next, move, nil
	}
	if norm := NormalizeGuess(guess); norm != guess {
		if next, move, nerr := s.rules.Apply(state, norm); nerr == nil {
			return next, move, nil
		}
	}
	return nil, models.Move{}, err
}

var guessReplacer = strings.NewReplacer("-", "", "x", "", "=", "", "+", "", "#", "", " ", "")

// NormalizeGuess lower-cases a coordinate guess and drops separators and check marks,
// so "E2-E4" and "e7xe8=Q+" become "e2e4" and "e7e8q".
func NormalizeGuess(guess string) string {
	return guessReplacer.Replace(strings.ToLower(strings.TrimSpace(guess)))
}
