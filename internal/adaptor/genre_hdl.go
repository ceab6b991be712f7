package adaptor

import (
	"net/http"

	"content-catalog/internal/dto/request"
	"content-catalog/internal/usecase"
	"content-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type GenreHandler struct {
	service usecase.GenreService
	log     *zap.Logger
}

func NewGenreHandler(service usecase.GenreService, log *zap.Logger) *GenreHandler {
	return &GenreHandler{
		service: service,
		log:     log.With(zap.String("handler", "genre")),
	}
}

// GetAllGenres handles GET /v1/genres/ (public)
func (h *GenreHandler) GetAllGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.GetAllGenres(r.Context(), r.URL.Query().Get("search"), parsePagination(r))
	if err != nil {
		handleServiceError(h.log, w, err, "get genres")
		return
	}

	utils.ResponseSuccess(w, "success", genres)
}

// CreateGenre handles POST /v1/genres/ (admin)
func (h *GenreHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGenreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	genre, err := h.service.CreateGenre(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create genre")
		return
	}

	utils.ResponseCreated(w, "Genre created", genre)
}

// DeleteGenre handles DELETE /v1/genres/{slug}/ (admin)
func (h *GenreHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGenre(r.Context(), chi.URLParam(r, "slug")); err != nil {
		handleServiceError(h.log, w, err, "delete genre")
		return
	}

	utils.ResponseNoContent(w)
}
