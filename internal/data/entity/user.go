package entity

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	BaseNoDelete
	Username    string   `db:"username"`
	Email       string   `db:"email"`
	FirstName   string   `db:"first_name"`
	LastName    string   `db:"last_name"`
	Bio         string   `db:"bio"`
	Role        UserRole `db:"role"`
	IsSuperuser bool     `db:"is_superuser"`
}

// IsAdmin is true for admins and superusers.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// EffectiveRole folds the superuser flag into the role.
func (u *User) EffectiveRole() UserRole {
	if u.IsAdmin() {
		return RoleAdmin
	}
	return u.Role
}
