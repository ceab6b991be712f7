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

type GenreService interface {
	GetAllGenres(ctx context.Context, search string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SlugResponse], error)
	CreateGenre(ctx context.Context, req *request.CreateGenreRequest) (*response.SlugResponse, error)
	DeleteGenre(ctx context.Context, slug string) error
}

type genreService struct {
	genreRepo repository.GenreRepository
	log       *zap.Logger
}

func NewGenreService(genreRepo repository.GenreRepository, log *zap.Logger) GenreService {
	return &genreService{
		genreRepo: genreRepo,
		log:       log.With(zap.String("service", "genre")),
	}
}

func (s *genreService) GetAllGenres(ctx context.Context, search string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SlugResponse], error) {
	normalizePage(req)

	genres, err := s.genreRepo.FindAll(ctx, search, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}

	total, err := s.genreRepo.CountAll(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("count genres: %w", err)
	}

	data := make([]response.SlugResponse, len(genres))
	for i, g := range genres {
		data[i] = response.GenreToResponse(g)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *genreService) CreateGenre(ctx context.Context, req *request.CreateGenreRequest) (*response.SlugResponse, error) {
	req.Name = utils.SanitizeText(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}

	genre := &entity.Genre{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidField("slug", "A genre with that slug already exists")
		}
		s.log.Error("Failed to create genre", zap.Error(err), zap.String("slug", req.Slug))
		return nil, fmt.Errorf("create genre: %w", err)
	}

	s.log.Info("Genre created", zap.String("slug", genre.Slug))

	resp := response.GenreToResponse(genre)
	return &resp, nil
}

func (s *genreService) DeleteGenre(ctx context.Context, slug string) error {
	if err := s.genreRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("genre %s: %w", slug, ErrNotFound)
		}
		return fmt.Errorf("delete genre: %w", err)
	}

	s.log.Info("Genre deleted", zap.String("slug", slug))
	return nil
}
