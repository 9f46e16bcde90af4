package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/logger"
)

// statusRecorder remembers the first status written so the access log can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	sent   bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.sent {
		return
	}
	sr.status, sr.sent = code, true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.sent = true
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// accessLog attaches a request-scoped logger to the context and logs each request once
// it completes. It expects middleware.RequestID to run first.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		w.Header().Set(middleware.RequestIDHeader, reqID)

		log := logger.Default().WithFields(map[string]any{
			"request_id": reqID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.NewContext(r.Context(), log)))

		log = log.WithFields(map[string]any{
			"status":      rec.status,
			"bytes":       rec.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case rec.status >= 500:
			log.Error("%s %s failed", r.Method, r.URL.Path)
		case rec.status >= 400:
			log.Warn("%s %s rejected", r.Method, r.URL.Path)
		default:
			log.Debug("%s %s ok", r.Method, r.URL.Path)
		}
	})
}

// recoverPanics converts a handler panic into an INTERNAL_ERROR response.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.FromContext(r.Context()).Error("panic serving %s: %v", r.URL.Path, v)
				handleError(w, r, errors.NewInternalError(fmt.Errorf("panic: %v", v)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// withTimeout bounds handler time; the body is a JSON error like every other failure.
func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	body := `{"error":{"code":"INTERNAL_ERROR","message":"request timeout"}}`
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, body)
	}
}
