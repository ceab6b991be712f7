package usecase

import (
	"content-catalog/internal/data/repository"
	"content-catalog/internal/dto/request"
	"content-catalog/pkg/mailer"
	"content-catalog/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Category CategoryService
	Genre    GenreService
	Title    TitleService
	Review   ReviewService
	Comment  CommentService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	mail mailer.Mailer,
	tokens *utils.TokenManager,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(repo, config.Code, mail, tokens, log),
		User:     NewUserService(repo.User, log),
		Category: NewCategoryService(repo.Category, log),
		Genre:    NewGenreService(repo.Genre, log),
		Title:    NewTitleService(repo, log),
		Review:   NewReviewService(repo, log),
		Comment:  NewCommentService(repo, log),
	}
}

// normalizePage clamps paging parameters to sane defaults.
func normalizePage(req *request.PaginatedRequest) {
	req.Page = utils.ClampPage(req.Page)
	if req.PerPage < 1 {
		req.PerPage = utils.DefaultPerPage
	}
	if req.PerPage > utils.MaxPerPage {
		req.PerPage = utils.MaxPerPage
	}
}
