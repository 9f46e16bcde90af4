package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(recoverPanics)
	r.Use(securityHeaders)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(withTimeout(60 * time.Second))

		r.Get("/legends", s.handleLegends)
		r.Route("/legends/{id}", func(r chi.Router) {
			r.Post("/games", s.handleImportGames)
			r.Post("/rebuild", s.handleRebuild)
			r.Get("/book", s.handleBook)
			r.Get("/stats", s.handleStats)
			r.Post("/recommend", s.handleRecommend)
			r.Post("/sessions", s.handleStartSession)
			r.Get("/sessions", s.handleSessionHistory)
		})
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/guesses", s.handleGuess)
			r.Post("/finish", s.handleFinishSession)
		})
	})
	return r
}
