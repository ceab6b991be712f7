package wire

import (
	"content-catalog/internal/adaptor"
	"content-catalog/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures user management routes with role-based access control
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, log *zap.Logger) {
	r.Route("/users", func(r chi.Router) {
		// ==================== OWN PROFILE ====================
		r.With(middleware.RequireAuth).Get("/me", userHandler.GetMe)
		r.With(middleware.RequireAuth).Patch("/me", userHandler.UpdateMe)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(log))

			r.Get("/", userHandler.GetAllUsers)             // GET /v1/users?search=&page=1&per_page=10
			r.Post("/", userHandler.CreateUser)             // POST /v1/users
			r.Get("/{username}", userHandler.GetUser)       // GET /v1/users/{username}
			r.Patch("/{username}", userHandler.UpdateUser)  // PATCH /v1/users/{username}
			r.Delete("/{username}", userHandler.DeleteUser) // DELETE /v1/users/{username}
		})
	})
}
