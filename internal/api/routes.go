package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Post("/", s.handleCreateItem)
		r.Route("/{uid}", func(r chi.Router) {
			r.Get("/", s.handleGetItem)
			r.Patch("/", s.handleUpdateItem)
			r.Delete("/", s.handleDeleteItem)
			r.Get("/preview", s.handlePreviewItem)
			r.Post("/review", s.handleReviewItem)
			r.Get("/history", s.handleItemHistory)
			r.Get("/stats", s.handleItemStats)
		})
	})

	r.Get("/review/next", s.handleNextReview)
	r.Get("/review/queue", s.handleReviewQueue)
	r.Get("/stats", s.handleStats)
	r.Get("/export", s.handleExport)
	r.Post("/import", s.handleImport)
	return r
}
