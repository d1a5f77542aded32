package userrepo

import "time"

// Roles recognized by the authorization layer.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
