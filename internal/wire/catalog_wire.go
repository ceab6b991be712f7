package wire

import (
	"content-catalog/internal/adaptor"
	"content-catalog/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Categories and genres only support list, create and delete. Any other
// verb on these paths is answered with 405 by the router.

func wireCategory(r chi.Router, categoryHandler *adaptor.CategoryHandler, log *zap.Logger) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.GetAllCategories)
		r.With(middleware.Admin(log)).Post("/", categoryHandler.CreateCategory)
		r.With(middleware.Admin(log)).Delete("/{slug}", categoryHandler.DeleteCategory)
	})
}

func wireGenre(r chi.Router, genreHandler *adaptor.GenreHandler, log *zap.Logger) {
	r.Route("/genres", func(r chi.Router) {
		r.Get("/", genreHandler.GetAllGenres)
		r.With(middleware.Admin(log)).Post("/", genreHandler.CreateGenre)
		r.With(middleware.Admin(log)).Delete("/{slug}", genreHandler.DeleteGenre)
	})
}
