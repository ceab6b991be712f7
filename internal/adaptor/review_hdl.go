package adaptor

import (
	"net/http"

	"content-catalog/internal/dto/request"
	"content-catalog/internal/usecase"
	"content-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// GetTitleReviews handles GET /v1/titles/{title_id}/reviews/ (public)
func (h *ReviewHandler) GetTitleReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetTitleReviews(r.Context(), chi.URLParam(r, "title_id"), parsePagination(r))
	if err != nil {
		handleServiceError(h.log, w, err, "get title reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// GetReview handles GET /v1/titles/{title_id}/reviews/{review_id}/ (public)
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetReview(r.Context(), chi.URLParam(r, "title_id"), chi.URLParam(r, "review_id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get review")
		return
	}

	utils.ResponseSuccess(w, "success", review)
}

// CreateReview handles POST /v1/titles/{title_id}/reviews/ (authenticated)
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), actor, chi.URLParam(r, "title_id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create review")
		return
	}

	utils.ResponseCreated(w, "Review created", review)
}

// UpdateReview handles PATCH /v1/titles/{title_id}/reviews/{review_id}/
// (author, moderator or admin)
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), actor,
		chi.URLParam(r, "title_id"), chi.URLParam(r, "review_id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update review")
		return
	}

	utils.ResponseSuccess(w, "Review updated", review)
}

// DeleteReview handles DELETE /v1/titles/{title_id}/reviews/{review_id}/
// (author, moderator or admin)
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	err := h.service.DeleteReview(r.Context(), actor, chi.URLParam(r, "title_id"), chi.URLParam(r, "review_id"))
	if err != nil {
		handleServiceError(h.log, w, err, "delete review")
		return
	}

	utils.ResponseNoContent(w)
}
