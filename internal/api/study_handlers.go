package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/scoring"
)

type sessionView struct {
	ID        string            `json:"id"`
	LegendID  string            `json:"legend_id"`
	GameID    string            `json:"game_id"`
	White     string            `json:"white"`
	Black     string            `json:"black"`
	Side      models.Side       `json:"side"`
	Positions int               `json:"positions"`
	Guessed   int               `json:"guessed"`
	Current   *models.GuessStep `json:"current,omitempty"`
	StartedAt time.Time         `json:"started_at"`
}

// viewOf hides the historical move of the position awaiting a guess.
func viewOf(sess *scoring.Session) sessionView {
	v := sessionView{
		ID:        sess.ID,
		LegendID:  sess.LegendID,
		GameID:    sess.Record.ID,
		White:     sess.Record.White.Value,
		Black:     sess.Record.Black.Value,
		Side:      sess.Side,
		Positions: len(sess.Steps),
		Guessed:   len(sess.Results()),
		StartedAt: sess.StartedAt,
	}
	if step, ok := sess.Current(); ok {
		v.Current = &models.GuessStep{FEN: step.FEN, MoveNumber: step.MoveNumber}
	}
	return v
}

type startSessionRequest struct {
	GameID string `json:"game_id"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	sess, err := s.StudyService.Start(r.Context(), chi.URLParam(r, "id"), req.GameID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		handleError(w, r, err)
		return
	}
	history, err := s.StudyService.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if history == nil {
		history = []models.SessionSummary{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"sessions": history})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.StudyService.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, viewOf(sess))
}

type guessRequest struct {
	Move string `json:"move"`
}

type guessResponse struct {
	Result  models.GuessResult `json:"result"`
	Session sessionView        `json:"session"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Move) == "" {
		handleError(w, r, errors.NewValidationError("move", "required"))
		return
	}

	id := chi.URLParam(r, "id")
	res, err := s.StudyService.Guess(r.Context(), id, req.Move)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sess, err := s.StudyService.Session(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, guessResponse{Result: res, Session: viewOf(sess)})
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	summary, err := s.StudyService.Finish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
