package api

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vytor/recall/internal/deckfile"
	"github.com/vytor/recall/internal/errors"
	"github.com/vytor/recall/internal/logger"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	format, err := deckfile.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("format must be yaml or json"))
		return
	}

	// Buffer so an encoding failure can still be reported as an error response.
	var buf bytes.Buffer
	n, err := s.DeckService.Export(r.Context(), &buf, format)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="recall-deck.%s"`, format))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write export of %d items: %v", n, err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := deckfile.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("format must be yaml or json"))
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.maxImportBytes())
	res, err := s.DeckService.Import(r.Context(), body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			handleError(w, r, &errors.AppError{
				Code:    errors.ErrCodeBadRequest,
				Message: fmt.Sprintf("deck exceeds %d bytes", tooLarge.Limit),
				Status:  http.StatusRequestEntityTooLarge,
			})
			return
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
