package api

import (
	"net/http"

	"github.com/vytor/chesslegends/internal/logger"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports 503 until the database answers and at least one legend is built.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			log.Warn("readiness check failed - database: %v", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
	}

	built := 0
	for _, l := range s.LegendService.Legends(ctx) {
		if l.Built {
			built++
		}
	}
	if built == 0 {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]any{"status": "no legend built", "built": 0})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"status": "ready", "built": built})
}
