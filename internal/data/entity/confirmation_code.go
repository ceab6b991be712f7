package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmationCode is a one-time code mailed on signup. Only the bcrypt hash
// is persisted.
type ConfirmationCode struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	CodeHash  string    `db:"code_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	IsUsed    bool      `db:"is_used"`
}
