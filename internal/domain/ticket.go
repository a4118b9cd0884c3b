package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates the ticket lifecycle. Every ticket starts
// PENDING; APPROVED and DENIED are terminal.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusApproved TicketStatus = "APPROVED"
	TicketStatusDenied   TicketStatus = "DENIED"
)

// ReimbursementType categorizes the expense a ticket covers.
type ReimbursementType string

const (
	ReimbursementTravel  ReimbursementType = "TRAVEL"
	ReimbursementLodging ReimbursementType = "LODGING"
	ReimbursementFood    ReimbursementType = "FOOD"
	ReimbursementOther   ReimbursementType = "OTHER"
)

var statusNames = map[string]TicketStatus{
	"PENDING":  TicketStatusPending,
	"APPROVED": TicketStatusApproved,
	"DENIED":   TicketStatusDenied,
}

var typeNames = map[string]ReimbursementType{
	"TRAVEL":  ReimbursementTravel,
	"LODGING": ReimbursementLodging,
	"FOOD":    ReimbursementFood,
	"OTHER":   ReimbursementOther,
}

// ParseStatus is the strict form used by mutating requests: callers must
// reject unknown tokens.
func ParseStatus(s string) (TicketStatus, bool) {
	status, ok := statusNames[strings.ToUpper(strings.TrimSpace(s))]
	return status, ok
}

// ParseReimbursementType is the strict form used by mutating requests.
func ParseReimbursementType(s string) (ReimbursementType, bool) {
	t, ok := typeNames[strings.ToUpper(strings.TrimSpace(s))]
	return t, ok
}

// StatusFilter is the lenient form used by list queries: an empty or
// unrecognized token means "no constraint on status" rather than an error.
func StatusFilter(s string) *TicketStatus {
	if status, ok := ParseStatus(s); ok {
		return &status
	}
	return nil
}

// TypeFilter is the lenient form of ParseReimbursementType for queries.
func TypeFilter(s string) *ReimbursementType {
	if t, ok := ParseReimbursementType(s); ok {
		return &t
	}
	return nil
}

// Ticket is the aggregate for reimbursement requests.
type Ticket struct {
	ID          int64
	Reference   string
	EmployeeID  int64
	Type        ReimbursementType
	Amount      float64
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
