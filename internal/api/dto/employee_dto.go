package dto

import (
	"time"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// CredentialsRequest carries the caller's credentials. Every operation
// except registration re-verifies these against the directory.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangeRoleRequest payload for promote/demote.
type ChangeRoleRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	TargetEmail string `json:"target_email"`
}

// EmployeeResponse is the outward employee shape. Credential material is
// never echoed.
type EmployeeResponse struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuthResponse carries the issued access token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
