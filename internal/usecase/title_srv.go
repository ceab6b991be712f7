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

type TitleService interface {
	// Public endpoints
	GetAllTitles(ctx context.Context, req *request.TitleListRequest) (*response.PaginatedResponse[response.TitleResponse], error)
	GetTitleByID(ctx context.Context, titleID string) (*response.TitleResponse, error)

	// Admin endpoints
	CreateTitle(ctx context.Context, req *request.CreateTitleRequest) (*response.TitleResponse, error)
	UpdateTitle(ctx context.Context, titleID string, req *request.UpdateTitleRequest) (*response.TitleResponse, error)
	DeleteTitle(ctx context.Context, titleID string) error
}

type titleService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewTitleService(repo *repository.Repository, log *zap.Logger) TitleService {
	return &titleService{
		repo: repo,
		log:  log.With(zap.String("service", "title")),
	}
}

func (s *titleService) GetAllTitles(ctx context.Context, req *request.TitleListRequest) (*response.PaginatedResponse[response.TitleResponse], error) {
	normalizePage(&req.PaginatedRequest)

	filter := entity.TitleFilter{
		CategorySlug: req.Category,
		GenreSlug:    req.Genre,
		Name:         req.Name,
		Year:         req.Year,
	}

	titles, err := s.repo.Title.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get titles", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("get titles: %w", err)
	}

	total, err := s.repo.Title.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count titles: %w", err)
	}

	data, err := s.toResponses(ctx, titles)
	if err != nil {
		return nil, err
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

// toResponses loads genres and categories for a page of titles in two
// queries.
func (s *titleService) toResponses(ctx context.Context, titles []*entity.Title) ([]response.TitleResponse, error) {
	titleIDs := make([]uuid.UUID, 0, len(titles))
	categoryIDs := make([]uuid.UUID, 0, len(titles))
	for _, t := range titles {
		titleIDs = append(titleIDs, t.ID)
		if t.CategoryID != nil {
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
	}

	genres, err := s.repo.Genre.FindByTitleIDs(ctx, titleIDs)
	if err != nil {
		return nil, fmt.Errorf("load title genres: %w", err)
	}

	categories, err := s.repo.Category.FindByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("load title categories: %w", err)
	}

	out := make([]response.TitleResponse, len(titles))
	for i, t := range titles {
		var category *entity.Category
		if t.CategoryID != nil {
			category = categories[*t.CategoryID]
		}
		out[i] = response.TitleToResponse(t, genres[t.ID], category)
	}

	return out, nil
}

func (s *titleService) findTitle(ctx context.Context, titleID string) (*entity.Title, error) {
	id, err := parseID("title", titleID)
	if err != nil {
		return nil, err
	}

	title, err := s.repo.Title.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find title", zap.Error(err), zap.String("title_id", titleID))
		return nil, fmt.Errorf("find title: %w", err)
	}
	if title == nil {
		return nil, fmt.Errorf("title %s: %w", titleID, ErrNotFound)
	}

	return title, nil
}

func (s *titleService) GetTitleByID(ctx context.Context, titleID string) (*response.TitleResponse, error) {
	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	out, err := s.toResponses(ctx, []*entity.Title{title})
	if err != nil {
		return nil, err
	}

	return &out[0], nil
}

// resolveGenres maps slugs to genre ids. Any unknown slug fails the request.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	genres, err := s.repo.Genre.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}

	found := make(map[string]uuid.UUID, len(genres))
	for _, g := range genres {
		found[g.Slug] = g.ID
	}

	ids := make([]uuid.UUID, 0, len(unique))
	for _, slug := range unique {
		id, ok := found[slug]
		if !ok {
			return nil, invalidField("genre", fmt.Sprintf("Genre %q does not exist", slug))
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (uuid.UUID, error) {
	category, err := s.repo.Category.FindBySlug(ctx, slug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve category: %w", err)
	}
	if category == nil {
		return uuid.Nil, invalidField("category", fmt.Sprintf("Category %q does not exist", slug))
	}
	return category.ID, nil
}

func (s *titleService) CreateTitle(ctx context.Context, req *request.CreateTitleRequest) (*response.TitleResponse, error) {
	req.Name = utils.SanitizeText(req.Name)
	req.Description = utils.SanitizeTextPtr(req.Description)
	if err := validate(req); err != nil {
		return nil, err
	}

	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	title := &entity.Title{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  &categoryID,
	}

	if err := s.repo.Title.Create(ctx, title, genreIDs); err != nil {
		s.log.Error("Failed to create title", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("create title: %w", err)
	}

	s.log.Info("Title created",
		zap.String("title_id", title.ID.String()),
		zap.String("name", title.Name),
		zap.Int("genres", len(genreIDs)),
	)

	return s.GetTitleByID(ctx, title.ID.String())
}

func (s *titleService) UpdateTitle(ctx context.Context, titleID string, req *request.UpdateTitleRequest) (*response.TitleResponse, error) {
	req.Name = utils.SanitizeTextPtr(req.Name)
	req.Description = utils.SanitizeTextPtr(req.Description)
	if err := validate(req); err != nil {
		return nil, err
	}

	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, invalidField("name", "This field may not be blank")
		}
		title.Name = *req.Name
	}
	if req.Year != nil {
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &categoryID
	}

	var genreIDs []uuid.UUID
	if req.Genre != nil {
		if genreIDs, err = s.resolveGenres(ctx, req.Genre); err != nil {
			return nil, err
		}
	}

	title.UpdatedAt = time.Now()
	if err := s.repo.Title.Update(ctx, title, genreIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("title %s: %w", titleID, ErrNotFound)
		}
		s.log.Error("Failed to update title", zap.Error(err), zap.String("title_id", titleID))
		return nil, fmt.Errorf("update title: %w", err)
	}

	s.log.Info("Title updated", zap.String("title_id", titleID))

	return s.GetTitleByID(ctx, titleID)
}

func (s *titleService) DeleteTitle(ctx context.Context, titleID string) error {
	id, err := parseID("title", titleID)
	if err != nil {
		return err
	}

	if err := s.repo.Title.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("title %s: %w", titleID, ErrNotFound)
		}
		s.log.Error("Failed to delete title", zap.Error(err), zap.String("title_id", titleID))
		return fmt.Errorf("delete title: %w", err)
	}

	s.log.Info("Title deleted", zap.String("title_id", titleID))
	return nil
}
