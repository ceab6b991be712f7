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

type CommentService interface {
	GetReviewComments(ctx context.Context, titleID, reviewID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error)
	GetComment(ctx context.Context, titleID, reviewID, commentID string) (*response.CommentResponse, error)
	CreateComment(ctx context.Context, actor Actor, titleID, reviewID string, req *request.CreateCommentRequest) (*response.CommentResponse, error)
	UpdateComment(ctx context.Context, actor Actor, titleID, reviewID, commentID string, req *request.UpdateCommentRequest) (*response.CommentResponse, error)
	DeleteComment(ctx context.Context, actor Actor, titleID, reviewID, commentID string) error
}

type commentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCommentService(repo *repository.Repository, log *zap.Logger) CommentService {
	return &commentService{
		repo: repo,
		log:  log.With(zap.String("service", "comment")),
	}
}

func (s *commentService) findComment(ctx context.Context, titleID, reviewID, commentID string) (*entity.Comment, error) {
	review, err := findReview(ctx, s.repo, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	cid, err := parseID("comment", commentID)
	if err != nil {
		return nil, err
	}

	comment, err := s.repo.Comment.FindByReviewAndID(ctx, review.ID, cid)
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s of review %s: %w", commentID, reviewID, ErrNotFound)
	}

	return comment, nil
}

func (s *commentService) GetReviewComments(ctx context.Context, titleID, reviewID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error) {
	normalizePage(req)

	review, err := findReview(ctx, s.repo, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.Comment.FindByReviewID(ctx, review.ID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get review comments", zap.Error(err), zap.String("review_id", reviewID))
		return nil, fmt.Errorf("get review comments: %w", err)
	}

	total, err := s.repo.Comment.CountByReviewID(ctx, review.ID)
	if err != nil {
		return nil, fmt.Errorf("count review comments: %w", err)
	}

	data := make([]response.CommentResponse, len(comments))
	for i, c := range comments {
		data[i] = response.CommentToResponse(c)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *commentService) GetComment(ctx context.Context, titleID, reviewID, commentID string) (*response.CommentResponse, error) {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) CreateComment(ctx context.Context, actor Actor, titleID, reviewID string, req *request.CreateCommentRequest) (*response.CommentResponse, error) {
	req.Text = utils.SanitizeText(req.Text)
	if err := validate(req); err != nil {
		return nil, err
	}

	review, err := findReview(ctx, s.repo, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ID:       uuid.New(),
		ReviewID: review.ID,
		AuthorID: actor.ID,
		Text:     req.Text,
		PubDate:  time.Now(),
	}

	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		s.log.Error("Failed to create comment",
			zap.Error(err),
			zap.String("author_id", actor.ID.String()),
			zap.String("review_id", reviewID),
		)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.log.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("review_id", reviewID),
	)

	return s.GetComment(ctx, titleID, reviewID, comment.ID.String())
}

func (s *commentService) UpdateComment(ctx context.Context, actor Actor, titleID, reviewID, commentID string, req *request.UpdateCommentRequest) (*response.CommentResponse, error) {
	req.Text = utils.SanitizeTextPtr(req.Text)
	if err := validate(req); err != nil {
		return nil, err
	}

	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if !actor.CanModify(comment.AuthorID) {
		return nil, fmt.Errorf("update comment %s: %w", commentID, ErrForbidden)
	}

	if req.Text != nil {
		comment.Text = *req.Text
	}

	if err := s.repo.Comment.Update(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}
		s.log.Error("Failed to update comment", zap.Error(err), zap.String("comment_id", commentID))
		return nil, fmt.Errorf("update comment: %w", err)
	}

	s.log.Info("Comment updated", zap.String("comment_id", commentID))

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor Actor, titleID, reviewID, commentID string) error {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !actor.CanModify(comment.AuthorID) {
		return fmt.Errorf("delete comment %s: %w", commentID, ErrForbidden)
	}

	if err := s.repo.Comment.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}
		s.log.Error("Failed to delete comment", zap.Error(err), zap.String("comment_id", commentID))
		return fmt.Errorf("delete comment: %w", err)
	}

	s.log.Info("Comment deleted", zap.String("comment_id", commentID))
	return nil
}
