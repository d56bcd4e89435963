package domain

import "strings"

type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
)

// ParseRole accepts the role names case-insensitively.
func ParseRole(v string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "employee":
		return RoleEmployee, true
	case "manager":
		return RoleManager, true
	case "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// Principal is the authenticated actor of a call. It is supplied by the
// identity provider and never persisted.
type Principal struct {
	ID         string
	Role       Role
	Department string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
