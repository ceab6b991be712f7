package repository

import (
	"context"
	"fmt"

	"content-catalog/internal/data/entity"
	"content-catalog/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConfirmationCodeRepository interface {
	Create(ctx context.Context, code *entity.ConfirmationCode) error
	// FindActiveByUserID returns unused, unexpired codes, newest first.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.ConfirmationCode, error)
	MarkAsUsed(ctx context.Context, id uuid.UUID) error
	// DeleteStale purges used and expired codes and reports how many went.
	DeleteStale(ctx context.Context) (int64, error)
}

type confirmationCodeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewConfirmationCodeRepository(db database.PgxIface, log *zap.Logger) ConfirmationCodeRepository {
	return &confirmationCodeRepository{
		db:  db,
		log: log.With(zap.String("repository", "confirmation_code")),
	}
}

func (r *confirmationCodeRepository) Create(ctx context.Context, code *entity.ConfirmationCode) error {
	query := `
		INSERT INTO confirmation_codes (id, user_id, code_hash, expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		code.ID,
		code.UserID,
		code.CodeHash,
		code.ExpiresAt,
		code.IsUsed,
		code.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create confirmation code",
			zap.Error(err),
			zap.String("user_id", code.UserID.String()),
		)
		return fmt.Errorf("create confirmation code for user %s: %w", code.UserID.String(), err)
	}

	return nil
}

func (r *confirmationCodeRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.ConfirmationCode, error) {
	query := `
		SELECT id, user_id, code_hash, expires_at, is_used, created_at
		FROM confirmation_codes
		WHERE user_id = $1
		  AND is_used = false
		  AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find active confirmation codes",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find active codes for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var codes []*entity.ConfirmationCode
	for rows.Next() {
		var code entity.ConfirmationCode
		err := rows.Scan(
			&code.ID,
			&code.UserID,
			&code.CodeHash,
			&code.ExpiresAt,
			&code.IsUsed,
			&code.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan confirmation code row", zap.Error(err))
			return nil, fmt.Errorf("scan confirmation code row: %w", err)
		}
		codes = append(codes, &code)
	}

	return codes, rows.Err()
}

func (r *confirmationCodeRepository) MarkAsUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE confirmation_codes SET is_used = true WHERE id = $1 AND is_used = false`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark confirmation code as used",
			zap.Error(err),
			zap.String("code_id", id.String()),
		)
		return fmt.Errorf("mark code %s as used: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark code %s as used: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *confirmationCodeRepository) DeleteStale(ctx context.Context) (int64, error) {
	query := `DELETE FROM confirmation_codes WHERE is_used = true OR expires_at < NOW()`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to delete stale confirmation codes", zap.Error(err))
		return 0, fmt.Errorf("delete stale codes: %w", err)
	}

	return result.RowsAffected(), nil
}
