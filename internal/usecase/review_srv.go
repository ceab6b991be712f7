package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/data/repository"
	"content-catalog/internal/dto/request"
	"content-catalog/internal/dto/response"
	"content-catalog/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	GetTitleReviews(ctx context.Context, titleID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetReview(ctx context.Context, titleID, reviewID string) (*response.ReviewResponse, error)

	// Authenticated endpoints
	CreateReview(ctx context.Context, actor Actor, titleID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	UpdateReview(ctx context.Context, actor Actor, titleID, reviewID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, actor Actor, titleID, reviewID string) error
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

// lookupTitleID resolves the parent title of a review route.
func lookupTitleID(ctx context.Context, repo *repository.Repository, titleID string) (uuid.UUID, error) {
	id, err := parseID("title", titleID)
	if err != nil {
		return uuid.Nil, err
	}

	title, err := repo.Title.FindByID(ctx, id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find title: %w", err)
	}
	if title == nil {
		return uuid.Nil, fmt.Errorf("title %s: %w", titleID, ErrNotFound)
	}

	return title.ID, nil
}

// findReview resolves a review that must belong to titleID.
func findReview(ctx context.Context, repo *repository.Repository, titleID, reviewID string) (*entity.Review, error) {
	tid, err := lookupTitleID(ctx, repo, titleID)
	if err != nil {
		return nil, err
	}

	rid, err := parseID("review", reviewID)
	if err != nil {
		return nil, err
	}

	review, err := repo.Review.FindByTitleAndID(ctx, tid, rid)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return nil, fmt.Errorf("review %s of title %s: %w", reviewID, titleID, ErrNotFound)
	}

	return review, nil
}

func (s *reviewService) GetTitleReviews(ctx context.Context, titleID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	normalizePage(req)

	tid, err := lookupTitleID(ctx, s.repo, titleID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.Review.FindByTitleID(ctx, tid, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get title reviews",
			zap.Error(err),
			zap.String("title_id", titleID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get title reviews: %w", err)
	}

	total, err := s.repo.Review.CountByTitleID(ctx, tid)
	if err != nil {
		return nil, fmt.Errorf("count title reviews: %w", err)
	}

	data := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		data[i] = response.ReviewToResponse(review)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *reviewService) GetReview(ctx context.Context, titleID, reviewID string) (*response.ReviewResponse, error) {
	review, err := findReview(ctx, s.repo, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) CreateReview(ctx context.Context, actor Actor, titleID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	req.Text = utils.SanitizeText(req.Text)
	if err := validate(req); err != nil {
		return nil, err
	}

	tid, err := lookupTitleID(ctx, s.repo, titleID)
	if err != nil {
		return nil, err
	}

	duplicate := invalidField("non_field_errors", "You have already reviewed this title")

	existing, err := s.repo.Review.FindByAuthorAndTitle(ctx, actor.ID, tid)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, duplicate
	}

	review := &entity.Review{
		ID:       uuid.New(),
		TitleID:  tid,
		AuthorID: actor.ID,
		Text:     req.Text,
		Score:    req.Score,
		PubDate:  time.Now(),
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicate
		}
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("author_id", actor.ID.String()),
			zap.String("title_id", titleID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("author_id", actor.ID.String()),
		zap.String("title_id", titleID),
		zap.Int("score", req.Score),
	)

	return s.GetReview(ctx, titleID, review.ID.String())
}

func (s *reviewService) UpdateReview(ctx context.Context, actor Actor, titleID, reviewID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	req.Text = utils.SanitizeTextPtr(req.Text)
	if err := validate(req); err != nil {
		return nil, err
	}

	review, err := findReview(ctx, s.repo, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if !actor.CanModify(review.AuthorID) {
		return nil, fmt.Errorf("update review %s: %w", reviewID, ErrForbidden)
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := s.repo.Review.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
		}
		s.log.Error("Failed to update review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.log.Info("Review updated",
		zap.String("review_id", reviewID),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor Actor, titleID, reviewID string) error {
	review, err := findReview(ctx, s.repo, titleID, reviewID)
	if err != nil {
		return err
	}

	if !actor.CanModify(review.AuthorID) {
		return fmt.Errorf("delete review %s: %w", reviewID, ErrForbidden)
	}

	if err := s.repo.Review.Delete(ctx, review.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
		}
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("Review deleted",
		zap.String("review_id", reviewID),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}
