package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/recall/internal/errors"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/srs"
)

type reviewRequest struct {
	Grade           string  `json:"grade" validate:"required"`
	DurationSeconds float64 `json:"duration_seconds" validate:"min=0"`
}

type previewResponse struct {
	UID     string                  `json:"uid"`
	NextDue map[srs.Grade]time.Time `json:"next_due"`
}

func (s *Server) handleNextReview(w http.ResponseWriter, r *http.Request) {
	next, err := s.ReviewService.Next(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, next)
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	items, err := s.ReviewService.Queue(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]*models.Item{"items": items})
}

func (s *Server) handlePreviewItem(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	preview, err := s.ReviewService.Preview(r.Context(), uid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, previewResponse{UID: uid, NextDue: preview})
}

func (s *Server) handleReviewItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	uid := chi.URLParam(r, "uid")

	var req reviewRequest
	if err := decodeRequest(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	grade, err := srs.ParseGrade(req.Grade)
	if err != nil {
		log.Warn("invalid grade: %s", req.Grade)
		handleError(w, r, errors.NewValidationError("grade", "must be one of again, hard, good, easy"))
		return
	}

	log = log.WithFields(map[string]any{
		"item_uid":         uid,
		"grade":            grade.String(),
		"duration_seconds": req.DurationSeconds,
	})
	log.Debug("reviewing item")

	elapsed := time.Duration(req.DurationSeconds * float64(time.Second))
	item, err := s.ReviewService.Review(r.Context(), uid, grade, elapsed)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("item reviewed, next review at %s", item.NextReview.Format(time.RFC3339))
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleItemHistory(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if _, err := s.ItemService.Get(r.Context(), uid); err != nil {
		handleError(w, r, err)
		return
	}
	recs, err := s.ReviewService.History(r.Context(), uid, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]models.ReviewRecord{"reviews": recs})
}
