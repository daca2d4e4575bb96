package models

// Role defines the closed set of user roles. The role column is free-form in
// the legacy tables; everything past the repository boundary works with this
// enum.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleStudent Role = "Student"
)

// ParseRole maps a stored role string onto the enum. Anything that is not
// exactly "Admin" is treated as a student; the admin gate must never widen on
// an unrecognized value.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleStudent
}

// IsAdmin reports whether the role grants access to administrative operations.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
