package services

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/repository"
	"github.com/vytor/chesslegends/internal/scoring"
)

// StudyService runs guess-the-move sessions over a legend's games
type StudyService interface {
	Start(ctx context.Context, legendID, gameID string) (*scoring.Session, error)
	Session(ctx context.Context, sessionID string) (*scoring.Session, error)
	Guess(ctx context.Context, sessionID, move string) (models.GuessResult, error)
	Finish(ctx context.Context, sessionID string) (models.SessionSummary, error)
	History(ctx context.Context, legendID string, limit int) ([]models.SessionSummary, error)
}

type studyService struct {
	legends   LegendService
	scorer    *scoring.Scorer
	summaries repository.SummaryRepository

	mu       sync.Mutex
	sessions map[string]*scoring.Session
}

// NewStudyService creates a new StudyService. summaries may be nil, in which case finished
// sessions are not persisted.
func NewStudyService(legends LegendService, scorer *scoring.Scorer, summaries repository.SummaryRepository) StudyService {
	return &studyService{
		legends:   legends,
		scorer:    scorer,
		summaries: summaries,
		sessions:  map[string]*scoring.Session{},
	}
}

// Start opens a session on gameID, or on a random game the legend played when gameID is empty.
func (s *studyService) Start(ctx context.Context, legendID, gameID string) (*scoring.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("study_service")

	snap, err := s.legends.Snapshot(ctx, legendID)
	if err != nil {
		return nil, err
	}

	var (
		rec  models.GameRecord
		side models.Side
	)
	if gameID == "" {
		var candidates []int
		for i, r := range snap.Records {
			if snap.Sides[r.ID] != models.SideAbsent && r.Movetext != "" {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			return nil, errors.NewNotFoundError("game for legend", legendID)
		}
		rec = snap.Records[candidates[rand.IntN(len(candidates))]]
		side = snap.Sides[rec.ID]
	} else {
		var ok bool
		if rec, side, ok = snap.Record(gameID); !ok {
			return nil, errors.NewNotFoundError("game", gameID)
		}
	}

	sess, err := s.scorer.NewSession(uuid.NewString(), rec, side)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Info("started session %s on game %s (%s, %d positions)", sess.ID, rec.ID, side, len(sess.Steps))
	return sess, nil
}

func (s *studyService) Session(ctx context.Context, sessionID string) (*scoring.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return sess, nil
}

func (s *studyService) Guess(ctx context.Context, sessionID, move string) (models.GuessResult, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return models.GuessResult{}, err
	}
	return sess.Submit(ctx, move)
}

// Finish summarizes the session, stores the summary and discards the session.
func (s *studyService) Finish(ctx context.Context, sessionID string) (models.SessionSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("study_service")

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return models.SessionSummary{}, err
	}

	summary := sess.Summary()
	if s.summaries != nil {
		if err := s.summaries.Save(ctx, summary); err != nil {
			log.Error("failed to save summary for session %s: %v", sessionID, err)
			return models.SessionSummary{}, errors.NewInternalError(err)
		}
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	log.Info("finished session %s: %d/%d, weaknesses %v", sessionID, summary.TotalScore, summary.MaxScore, summary.WeaknessTags)
	return summary, nil
}

func (s *studyService) History(ctx context.Context, legendID string, limit int) ([]models.SessionSummary, error) {
	l, err := s.legends.Resolve(ctx, legendID)
	if err != nil {
		return nil, err
	}
	if s.summaries == nil {
		return nil, nil
	}
	out, err := s.summaries.ListByLegend(ctx, l.ID, limit)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("study_service").Error("failed to list summaries: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return out, nil
}
