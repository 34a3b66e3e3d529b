package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/recall/internal/errors"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/services"
	"github.com/vytor/recall/internal/srs"
)

type createItemRequest struct {
	Name     string          `json:"name" validate:"required,max=500"`
	Kind     models.Kind     `json:"kind" validate:"required,oneof=flashcard cloze image_cloze quiz file"`
	Payload  json.RawMessage `json:"payload" validate:"required"`
	Priority *int            `json:"priority"`
	Tags     []string        `json:"tags" validate:"max=64,dive,max=64"`
}

type updateItemRequest struct {
	Name     *string   `json:"name" validate:"omitempty,min=1,max=500"`
	Priority *int      `json:"priority"`
	Tags     *[]string `json:"tags"`
}

type itemListResponse struct {
	Items []*models.Item `json:"items"`
	Total int            `json:"total"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := services.ItemQuery{
		Kind:   models.Kind(q.Get("kind")),
		Tag:    q.Get("tag"),
		Status: srs.Status(q.Get("status")),
	}
	var err error
	if query.Limit, err = queryInt(r, "limit"); err != nil {
		handleError(w, r, err)
		return
	}
	if query.Offset, err = queryInt(r, "offset"); err != nil {
		handleError(w, r, err)
		return
	}

	items, total, err := s.ItemService.List(r.Context(), query)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}
	writeJSON(w, r, http.StatusOK, itemListResponse{Items: items, Total: total})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createItemRequest
	if err := decodeRequest(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	payload, err := models.DecodePayload(req.Kind, req.Payload)
	if err != nil {
		log.Warn("invalid payload: %v", err)
		handleError(w, r, errors.NewValidationError("payload", err.Error()))
		return
	}

	item, err := s.ItemService.Add(r.Context(), services.NewItemInput{
		Name:     req.Name,
		Payload:  payload,
		Priority: req.Priority,
		Tags:     req.Tags,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/items/"+item.UID)
	writeJSON(w, r, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.ItemService.Get(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeRequest(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	item, err := s.ItemService.Update(r.Context(), chi.URLParam(r, "uid"), services.ItemPatch{
		Name:     req.Name,
		Priority: req.Priority,
		Tags:     req.Tags,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.ItemService.Remove(r.Context(), chi.URLParam(r, "uid")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
