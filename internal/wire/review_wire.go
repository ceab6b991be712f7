package wire

import (
	"content-catalog/internal/adaptor"
	"content-catalog/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

// wireReview mounts reviews and their comments. Object-level checks
// (author, moderator or admin) happen in the services.
func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, commentHandler *adaptor.CommentHandler) {
	// ==================== PUBLIC READS, AUTHENTICATED WRITES ====================
	r.Use(middleware.AuthOrReadOnly)

	r.Get("/", reviewHandler.GetTitleReviews)
	r.Post("/", reviewHandler.CreateReview)

	r.Route("/{review_id}", func(r chi.Router) {
		r.Get("/", reviewHandler.GetReview)
		r.Patch("/", reviewHandler.UpdateReview)
		r.Delete("/", reviewHandler.DeleteReview)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", commentHandler.GetReviewComments)
			r.Post("/", commentHandler.CreateComment)

			r.Route("/{comment_id}", func(r chi.Router) {
				r.Get("/", commentHandler.GetComment)
				r.Patch("/", commentHandler.UpdateComment)
				r.Delete("/", commentHandler.DeleteComment)
			})
		})
	})
}
