package wire

import (
	"content-catalog/internal/adaptor"
	"content-catalog/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, limiter *middleware.RateLimiter) {
	// ==================== PUBLIC ROUTES ====================
	// Rate limited per client IP, codes are mailed on every signup
	r.Route("/auth", func(r chi.Router) {
		r.Use(limiter.Handler)

		r.Post("/signup", authHandler.Signup)
		r.Post("/token", authHandler.Token)
	})
}
