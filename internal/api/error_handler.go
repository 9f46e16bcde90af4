package api

import (
	stderrors "errors"
	"net/http"

	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/logger"
)

// handleError writes err as a JSON error body, defaulting to INTERNAL_ERROR.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		log.Error("%s %s: %v", r.Method, r.URL.Path, appErr)
	} else {
		log.Warn("%s %s: %s", r.Method, r.URL.Path, appErr.Code)
	}

	writeJSON(w, r, appErr.Status, map[string]any{
		"error": map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
