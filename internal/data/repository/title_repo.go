package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"content-catalog/internal/data/entity"
	"content-catalog/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TitleRepository interface {
	// Create inserts the title and its genre links in one transaction.
	Create(ctx context.Context, title *entity.Title, genreIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Title, error)
	FindAll(ctx context.Context, filter entity.TitleFilter, limit, offset int) ([]*entity.Title, error)
	CountAll(ctx context.Context, filter entity.TitleFilter) (int64, error)
	// Update saves the title; a non-nil genreIDs replaces its genre set.
	Update(ctx context.Context, title *entity.Title, genreIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type titleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTitleRepository(db database.PgxIface, log *zap.Logger) TitleRepository {
	return &titleRepository{
		db:  db,
		log: log.With(zap.String("repository", "title")),
	}
}

// rating is aggregated on read so it never drifts from the reviews table
const titleSelect = `
		SELECT t.id, t.name, t.year, t.description, t.category_id,
		       t.created_at, t.updated_at,
		       (SELECT AVG(r.score)::float8 FROM reviews r WHERE r.title_id = t.id) AS rating
		FROM titles t
`

func scanTitle(row rowScanner) (*entity.Title, error) {
	var title entity.Title
	err := row.Scan(
		&title.ID,
		&title.Name,
		&title.Year,
		&title.Description,
		&title.CategoryID,
		&title.CreatedAt,
		&title.UpdatedAt,
		&title.Rating,
	)
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) Create(ctx context.Context, title *entity.Title, genreIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create title: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO titles (id, name, year, description, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, query,
		title.ID,
		title.Name,
		title.Year,
		title.Description,
		title.CategoryID,
		title.CreatedAt,
		title.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create title",
			zap.Error(err),
			zap.String("name", title.Name),
		)
		return fmt.Errorf("create title %s: %w", title.Name, err)
	}

	if err := r.linkGenres(ctx, tx, title.ID, genreIDs, title.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create title: %w", err)
	}

	return nil
}

func (r *titleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Title, error) {
	title, err := scanTitle(r.db.QueryRow(ctx, titleSelect+` WHERE t.id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find title by ID",
			zap.Error(err),
			zap.String("title_id", id.String()),
		)
		return nil, fmt.Errorf("find title %s: %w", id.String(), err)
	}

	return title, nil
}

// buildTitleFilter renders the WHERE clause for filter starting at
// placeholder $1.
func buildTitleFilter(filter entity.TitleFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM categories c WHERE c.id = t.category_id AND c.slug = $%d)", len(args)))
	}
	if filter.GenreSlug != "" {
		args = append(args, filter.GenreSlug)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM title_genres tg
			         INNER JOIN genres g ON g.id = tg.genre_id
			         WHERE tg.title_id = t.id AND g.slug = $%d)`, len(args)))
	}
	if filter.Name != "" {
		args = append(args, likePattern(filter.Name))
		conditions = append(conditions, fmt.Sprintf("t.name ILIKE $%d", len(args)))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("t.year = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *titleRepository) FindAll(ctx context.Context, filter entity.TitleFilter, limit, offset int) ([]*entity.Title, error) {
	where, args := buildTitleFilter(filter)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(titleSelect)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY t.year DESC, t.name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find all titles",
			zap.Error(err),
			zap.Int("offset", offset),
			zap.Int("limit", limit),
			zap.Any("filter", filter),
		)
		return nil, fmt.Errorf("find titles: %w", err)
	}
	defer rows.Close()

	var titles []*entity.Title
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			r.log.Error("Failed to scan title row", zap.Error(err))
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate title rows: %w", err)
	}

	r.log.Debug("Titles found",
		zap.Int("count", len(titles)),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)

	return titles, nil
}

func (r *titleRepository) CountAll(ctx context.Context, filter entity.TitleFilter) (int64, error) {
	where, args := buildTitleFilter(filter)

	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM titles t`+where, args...).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count titles",
			zap.Error(err),
			zap.Any("filter", filter),
		)
		return 0, fmt.Errorf("count titles: %w", err)
	}

	return total, nil
}

func (r *titleRepository) Update(ctx context.Context, title *entity.Title, genreIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update title: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE titles
		SET name = $2, year = $3, description = $4, category_id = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query,
		title.ID,
		title.Name,
		title.Year,
		title.Description,
		title.CategoryID,
		title.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update title",
			zap.Error(err),
			zap.String("title_id", title.ID.String()),
		)
		return fmt.Errorf("update title %s: %w", title.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("update title %s: %w", title.ID.String(), ErrNotFound)
	}

	if genreIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM title_genres WHERE title_id = $1`, title.ID); err != nil {
			r.log.Error("Failed to clear title genres",
				zap.Error(err),
				zap.String("title_id", title.ID.String()),
			)
			return fmt.Errorf("clear genres of title %s: %w", title.ID.String(), err)
		}
		if err := r.linkGenres(ctx, tx, title.ID, genreIDs, title.UpdatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update title: %w", err)
	}

	return nil
}

// Delete removes the title; genre links, reviews and comments cascade.
func (r *titleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete title",
			zap.Error(err),
			zap.String("title_id", id.String()),
		)
		return fmt.Errorf("delete title %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete title %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Title deleted", zap.String("title_id", id.String()))
	return nil
}

// linkGenres batch-inserts title_genres rows inside tx.
func (r *titleRepository) linkGenres(ctx context.Context, tx pgx.Tx, titleID uuid.UUID, genreIDs []uuid.UUID, now time.Time) error {
	if len(genreIDs) == 0 {
		return nil
	}

	query := `INSERT INTO title_genres (id, title_id, genre_id, created_at) VALUES `
	args := make([]any, 0, len(genreIDs)*4)

	for i, genreID := range genreIDs {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
		args = append(args, uuid.New(), titleID, genreID, now)
	}
	query += ` ON CONFLICT (title_id, genre_id) DO NOTHING`

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to link title genres",
			zap.Error(err),
			zap.String("title_id", titleID.String()),
			zap.Int("count", len(genreIDs)),
		)
		return fmt.Errorf("link genres to title %s: %w", titleID.String(), err)
	}

	return nil
}
