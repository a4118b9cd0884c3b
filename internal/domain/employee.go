package domain

import "time"

// Role determines an employee's permissions. Managers may act on every
// employee's tickets and role assignments; standard employees only on
// their own tickets.
type Role string

const (
	RoleStandard Role = "STANDARD"
	RoleManager  Role = "MANAGER"
)

var roleNames = map[string]Role{
	"STANDARD": RoleStandard,
	"MANAGER":  RoleManager,
}

// ParseRole maps a request token to a Role. Unknown tokens are rejected;
// role changes are mutations and never fall back to a default.
func ParseRole(s string) (Role, bool) {
	role, ok := roleNames[s]
	return role, ok
}

// Employee is the domain model for anyone who can authenticate.
type Employee struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
