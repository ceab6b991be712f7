package adaptor

import (
	"net/http"

	"content-catalog/internal/dto/request"
	"content-catalog/internal/usecase"
	"content-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TitleHandler struct {
	service usecase.TitleService
	log     *zap.Logger
}

func NewTitleHandler(service usecase.TitleService, log *zap.Logger) *TitleHandler {
	return &TitleHandler{
		service: service,
		log:     log.With(zap.String("handler", "title")),
	}
}

// GetAllTitles handles GET /v1/titles/ (public)
func (h *TitleHandler) GetAllTitles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.TitleListRequest{
		PaginatedRequest: *parsePagination(r),
		Category:         query.Get("category"),
		Genre:            query.Get("genre"),
		Name:             query.Get("name"),
		Year:             utils.ParseInt(query.Get("year"), 0),
	}

	titles, err := h.service.GetAllTitles(r.Context(), req)
	if err != nil {
		handleServiceError(h.log, w, err, "get titles")
		return
	}

	utils.ResponseSuccess(w, "success", titles)
}

// GetTitleByID handles GET /v1/titles/{title_id}/ (public)
func (h *TitleHandler) GetTitleByID(w http.ResponseWriter, r *http.Request) {
	title, err := h.service.GetTitleByID(r.Context(), chi.URLParam(r, "title_id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get title")
		return
	}

	utils.ResponseSuccess(w, "success", title)
}

// CreateTitle handles POST /v1/titles/ (admin)
func (h *TitleHandler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.service.CreateTitle(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create title")
		return
	}

	utils.ResponseCreated(w, "Title created", title)
}

// UpdateTitle handles PATCH /v1/titles/{title_id}/ (admin)
func (h *TitleHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.service.UpdateTitle(r.Context(), chi.URLParam(r, "title_id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update title")
		return
	}

	utils.ResponseSuccess(w, "Title updated", title)
}

// DeleteTitle handles DELETE /v1/titles/{title_id}/ (admin)
func (h *TitleHandler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTitle(r.Context(), chi.URLParam(r, "title_id")); err != nil {
		handleServiceError(h.log, w, err, "delete title")
		return
	}

	utils.ResponseNoContent(w)
}
