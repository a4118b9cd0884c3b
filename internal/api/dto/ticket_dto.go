package dto

import (
	"time"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// SubmitTicketRequest payload. The reimbursement type is optional and
// defaults to OTHER.
type SubmitTicketRequest struct {
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	ReimbursementType string  `json:"reimbursement_type"`
	Amount            float64 `json:"amount"`
	Description       string  `json:"description"`
}

// FinalizeTicketRequest payload.
type FinalizeTicketRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	TicketID  int64  `json:"ticket_id"`
	NewStatus string `json:"new_status"`
}

// ListMyTicketsRequest payload; status and type filters are optional and
// lenient (unrecognized tokens mean no filter).
type ListMyTicketsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Status   string `json:"status"`
	Type     string `json:"type"`
}

// ListTicketsRequest is the manager-wide listing payload; all filters are
// optional.
type ListTicketsRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FromEmployee string `json:"from_employee"`
	Status       string `json:"status"`
	Type         string `json:"type"`
}

// TicketResponse is the outward ticket shape.
type TicketResponse struct {
	ID          int64                    `json:"id"`
	Reference   string                   `json:"reference"`
	EmployeeID  int64                    `json:"employee_id"`
	Type        domain.ReimbursementType `json:"reimbursement_type"`
	Amount      float64                  `json:"amount"`
	Description string                   `json:"description"`
	Status      domain.TicketStatus      `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}
