package api

import (
	"net/http"

	"github.com/vytor/recall/internal/errors"
	"github.com/vytor/recall/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	// Anything that is not already an AppError is reported as internal
	appErr := errors.As(err)

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	writeJSON(w, r, appErr.Status, map[string]any{
		"error": map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	handleError(w, r, &errors.AppError{
		Code:    errors.ErrCodeBadRequest,
		Message: r.Method + " is not allowed on " + r.URL.Path,
		Status:  http.StatusMethodNotAllowed,
	})
}
