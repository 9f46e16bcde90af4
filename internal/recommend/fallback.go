package recommend

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/oracle"
	"github.com/vytor/chesslegends/internal/rules"
)

func (e *Engine) fallback(ctx context.Context, fen string, legal []models.Move, req Request) (Recommendation, error) {
	if e.oracle == nil {
		return Recommendation{}, errors.NewOracleUnavailableError(errNoOracle)
	}
	log := logger.FromContext(ctx).WithPrefix("recommend")
	strength := oracle.StrengthForLevel(req.BotLevel)

	current := func() bool { return true }
	if req.SessionID != "" {
		var done func()
		ctx, current, done = e.begin(ctx, req.SessionID)
		defer done()
	}

	ev, err := e.oracle.BestMove(ctx, fen, strength)
	if !current() {
		log.Debug("discarding oracle answer for superseded session %s", req.SessionID)
		return Recommendation{}, errors.NewSupersededError(req.SessionID)
	}
	if err != nil {
		if stderrors.Is(err, oracle.ErrNoLegalMove) {
			return Recommendation{}, errors.NewNoLegalMoveError(fen)
		}
		log.Warn("oracle failed: %v", err)
		return Recommendation{}, errors.NewOracleUnavailableError(err)
	}
	if !rules.Contains(legal, ev.BestMove) {
		return Recommendation{}, errors.NewOracleUnavailableError(fmt.Errorf("oracle returned illegal move %q", ev.BestMove))
	}

	rec := Recommendation{Move: ev.BestMove, Source: SourceOracle, FEN: fen, Evaluation: &ev}
	if len(legal) > 1 && e.float() < strength.InferiorChance {
		others := make([]models.Move, 0, len(legal)-1)
		for _, m := range legal {
			if m.UCI() != ev.BestMove {
				others = append(others, m)
			}
		}
		rec.Move = others[e.intn(len(others))].UCI()
		rec.Source = SourceInferior
	}
	return rec, nil
}

func (e *Engine) begin(ctx context.Context, key string) (context.Context, func() bool, func()) {
	ctx, ticket := e.gate.Begin(ctx, key)
	return ctx, ticket.Current, ticket.Done
}
