package usecase

import (
	"content-catalog/internal/data/entity"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a write operation.
type Actor struct {
	ID   uuid.UUID
	Role entity.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// CanModify reports whether the actor may edit or delete content written by
// authorID: its author, a moderator or an admin.
func (a Actor) CanModify(authorID uuid.UUID) bool {
	if a.ID == uuid.Nil {
		return false
	}
	return a.ID == authorID || a.Role == entity.RoleModerator || a.Role == entity.RoleAdmin
}
