package events

import (
	"time"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted     EventType = "ticket_submitted"
	EventTicketFinalized     EventType = "ticket_finalized"
	EventEmployeeRoleChanged EventType = "employee_role_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	TicketID   int64                    `json:"ticket_id"`
	Reference  string                   `json:"reference"`
	EmployeeID int64                    `json:"employee_id"`
	Type       domain.ReimbursementType `json:"reimbursement_type"`
	Amount     float64                  `json:"amount"`
}

// TicketFinalizedPayload payload.
type TicketFinalizedPayload struct {
	TicketID   int64               `json:"ticket_id"`
	Reference  string              `json:"reference"`
	EmployeeID int64               `json:"employee_id"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	ManagerID  int64               `json:"manager_id"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	EmployeeID int64       `json:"employee_id"`
	Email      string      `json:"email"`
	NewRole    domain.Role `json:"new_role"`
	ManagerID  int64       `json:"manager_id"`
}
