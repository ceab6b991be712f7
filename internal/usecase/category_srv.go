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

type CategoryService interface {
	GetAllCategories(ctx context.Context, search string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SlugResponse], error)
	CreateCategory(ctx context.Context, req *request.CreateCategoryRequest) (*response.SlugResponse, error)
	DeleteCategory(ctx context.Context, slug string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	log          *zap.Logger
}

func NewCategoryService(categoryRepo repository.CategoryRepository, log *zap.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		log:          log.With(zap.String("service", "category")),
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context, search string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SlugResponse], error) {
	normalizePage(req)

	categories, err := s.categoryRepo.FindAll(ctx, search, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	total, err := s.categoryRepo.CountAll(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	data := make([]response.SlugResponse, len(categories))
	for i, c := range categories {
		data[i] = response.CategoryToResponse(c)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req *request.CreateCategoryRequest) (*response.SlugResponse, error) {
	req.Name = utils.SanitizeText(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}

	category := &entity.Category{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidField("slug", "A category with that slug already exists")
		}
		s.log.Error("Failed to create category", zap.Error(err), zap.String("slug", req.Slug))
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.log.Info("Category created", zap.String("slug", category.Slug))

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("category %s: %w", slug, ErrNotFound)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	s.log.Info("Category deleted", zap.String("slug", slug))
	return nil
}
