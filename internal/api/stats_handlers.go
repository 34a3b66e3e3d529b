package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stat, err := s.StatsService.CollectionStats(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stat)
}

func (s *Server) handleItemStats(w http.ResponseWriter, r *http.Request) {
	stat, err := s.StatsService.ItemStats(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stat)
}
