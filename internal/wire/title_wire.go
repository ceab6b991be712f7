package wire

import (
	"content-catalog/internal/adaptor"
	"content-catalog/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTitle(r chi.Router, handler *adaptor.Handler, log *zap.Logger) {
	titleHandler := handler.Title

	r.Route("/titles", func(r chi.Router) {
		// ==================== PUBLIC READS, ADMIN WRITES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOrReadOnly(log))

			r.Get("/", titleHandler.GetAllTitles)
			r.Post("/", titleHandler.CreateTitle)
			r.Get("/{title_id}", titleHandler.GetTitleByID)
			r.Patch("/{title_id}", titleHandler.UpdateTitle)
			r.Delete("/{title_id}", titleHandler.DeleteTitle)
		})

		// reviews are writable by any authenticated user
		r.Route("/{title_id}/reviews", func(r chi.Router) {
			wireReview(r, handler.Review, handler.Comment)
		})
	})
}
