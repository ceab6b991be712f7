package repository

import (
	"errors"

	"content-catalog/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by writes that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type Repository struct {
	User             UserRepository
	ConfirmationCode ConfirmationCodeRepository
	Category         CategoryRepository
	Genre            GenreRepository
	Title            TitleRepository
	Review           ReviewRepository
	Comment          CommentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:             NewUserRepository(db, log),
		ConfirmationCode: NewConfirmationCodeRepository(db, log),
		Category:         NewCategoryRepository(db, log),
		Genre:            NewGenreRepository(db, log),
		Title:            NewTitleRepository(db, log),
		Review:           NewReviewRepository(db, log),
		Comment:          NewCommentRepository(db, log),
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// likePattern escapes LIKE wildcards in s and wraps it for substring search.
func likePattern(s string) string {
	r := []rune{}
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return "%" + string(r) + "%"
}
