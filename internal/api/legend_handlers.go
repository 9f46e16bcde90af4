package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/recommend"
)

func (s *Server) handleLegends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"legends": s.LegendService.Legends(r.Context())})
}

// handleImportGames accepts a raw multi-game PGN body.
func (s *Server) handleImportGames(w http.ResponseWriter, r *http.Request) {
	legendID := chi.URLParam(r, "id")
	log := logger.FromContext(r.Context()).WithField("legend", legendID)

	limit := s.MaxUploadSize
	if limit <= 0 {
		limit = defaultMaxUploadSize
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("could not read body: "+err.Error()))
		return
	}
	if strings.TrimSpace(string(body)) == "" {
		handleError(w, r, errors.NewValidationError("body", "empty PGN"))
		return
	}

	log.Info("importing %d bytes of PGN", len(body))
	res, err := s.LegendService.Import(r.Context(), legendID, string(body))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	l, err := s.LegendService.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	legendID := l.ID
	if s.JobQueue == nil {
		snap, err := s.LegendService.Rebuild(r.Context(), legendID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, statsResponse(snap))
		return
	}
	if err := s.JobQueue.EnqueueRebuild(legendID); err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"legend_id": legendID, "status": "queued"})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		handleError(w, r, err)
		return
	}
	legendID := chi.URLParam(r, "id")

	if fen := r.URL.Query().Get("fen"); fen != "" {
		snap, err := s.LegendService.Snapshot(r.Context(), legendID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"entries": snap.Book.Candidates(fen)})
		return
	}

	entries, err := s.LegendService.Book(r.Context(), legendID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"entries": entries})
}

type stats struct {
	LegendID string       `json:"legend_id"`
	Stats    legend.Stats `json:"stats"`
	Horizon  int          `json:"horizon"`
	BuiltAt  time.Time    `json:"built_at"`
}

func statsResponse(snap *legend.Snapshot) stats {
	return stats{LegendID: snap.Legend.ID, Stats: snap.Stats, Horizon: snap.Book.Horizon(), BuiltAt: snap.BuiltAt}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.LegendService.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, statsResponse(snap))
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rec, err := s.LegendService.Recommend(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}
