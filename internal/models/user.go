package models

import "strings"

// UserRole represents the roles carried on host-issued tokens.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleMentor     UserRole = "MENTOR"
)

// IsAdmin reports whether the role sees every student regardless of grants.
func (r UserRole) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// User is a platform account. Owned by the host LMS.
type User struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"firstname" json:"firstname"`
	LastName  string `db:"lastname" json:"lastname"`
	Email     string `db:"email" json:"email"`
}

// SortName renders "Last, First" the way grade pages title a student.
func (u User) SortName() string {
	return strings.TrimSpace(strings.Trim(u.LastName+", "+u.FirstName, ", "))
}

// Requester is the identity of the caller of a search or grade lookup.
type Requester struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// IsAdmin reports whether the requester holds a site administrator role.
func (r Requester) IsAdmin() bool {
	return r.Role.IsAdmin()
}
