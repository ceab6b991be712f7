package wire

import (
	"net/http"

	"content-catalog/internal/adaptor"
	"content-catalog/internal/data/repository"
	"content-catalog/internal/usecase"
	"content-catalog/pkg/mailer"
	"content-catalog/pkg/middleware"
	"content-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the assembled HTTP stack and the pieces background jobs share
// with it.
type App struct {
	Router      *chi.Mux
	Service     *usecase.Service
	Metrics     *middleware.Metrics
	RateLimiter *middleware.RateLimiter
}

// Wiring builds services, handlers and the router.
func Wiring(repo *repository.Repository, config *utils.Config, mail mailer.Mailer, logger *zap.Logger) *App {
	tokens := utils.NewTokenManager(config.JWT)

	service := usecase.NewService(repo, config, mail, tokens, logger)
	handler := adaptor.NewHandler(service, logger)

	app := &App{
		Service:     service,
		Metrics:     middleware.NewMetrics(),
		RateLimiter: middleware.NewRateLimiter(config.RateLimit, logger),
	}
	app.Router = app.setupRouter(handler, repo, tokens, config, logger)

	return app
}

func (app *App) setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	tokens *utils.TokenManager,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.ResponseNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.ResponseJSON(w, http.StatusMethodNotAllowed, false, "Method not allowed", nil, nil)
	})

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(config.RateLimit.TrustedProxies, logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))
	r.Use(app.Metrics.Instrument)
	r.Use(chimw.StripSlashes)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(repo.User, tokens, logger))

		wireAuth(r, handler.Auth, app.RateLimiter)
		wireUser(r, handler.User, logger)
		wireCategory(r, handler.Category, logger)
		wireGenre(r, handler.Genre, logger)
		wireTitle(r, handler, logger)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.ResponseSuccess(w, "OK", nil)
	})
	r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())

	return r
}
