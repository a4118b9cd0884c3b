package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/reimbursement-service/internal/authz"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/events"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle: submission, one-time
// finalization, and filtered listing.
type TicketService struct {
	tickets    repository.TicketRepository
	directory  *DirectoryService
	employees  repository.EmployeeRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborator requirements.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	EmployeeRepo repository.EmployeeRepository
	Directory    *DirectoryService
	Dispatcher   events.Dispatcher
}

// SubmitInput describes a ticket submission.
type SubmitInput struct {
	Email       string
	Password    string
	Type        string
	Amount      float64
	Description string
}

// ListInput describes the optional listing criteria. Unrecognized status
// or type tokens mean "no filter" on queries, never an error.
type ListInput struct {
	Email       string
	Password    string
	OwnerEmail  string
	StatusToken string
	TypeToken   string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		directory:  deps.Directory,
		employees:  deps.EmployeeRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Submit creates a PENDING ticket for the verified caller. A missing type
// defaults to OTHER; a present but unrecognized type is rejected, since
// submission is a mutation.
func (s *TicketService) Submit(ctx context.Context, input SubmitInput) (*domain.Ticket, error) {
	reimbursementType := domain.ReimbursementOther
	if strings.TrimSpace(input.Type) != "" {
		parsed, ok := domain.ParseReimbursementType(input.Type)
		if !ok {
			return nil, apperrors.NewInvalidValue("that is not a valid reimbursement type")
		}
		reimbursementType = parsed
	}

	employee, err := s.directory.Verify(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(employee.Role, authz.ActionSubmitTicket) {
		return nil, apperrors.NewForbidden("you are not authorized to perform this action")
	}

	if input.Amount <= 0 {
		return nil, apperrors.NewInvalidValue("the reimbursement amount must be greater than zero")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewInvalidValue("the ticket description may not be empty")
	}

	ticket := &domain.Ticket{
		Reference:   uuid.NewString(),
		EmployeeID:  employee.ID,
		Type:        reimbursementType,
		Amount:      input.Amount,
		Description: description,
		Status:      domain.TicketStatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketSubmitted,
		Payload: events.TicketSubmittedPayload{
			TicketID:   ticket.ID,
			Reference:  ticket.Reference,
			EmployeeID: ticket.EmployeeID,
			Type:       ticket.Type,
			Amount:     ticket.Amount,
		},
	})
	return ticket, nil
}

// Finalize transitions a PENDING ticket to APPROVED or DENIED under a
// manager's credentials. The transition happens at most once: the
// repository's conditional update decides the winner when calls race.
func (s *TicketService) Finalize(ctx context.Context, email, password string, ticketID int64, statusToken string) (*domain.Ticket, error) {
	newStatus, ok := domain.ParseStatus(statusToken)
	if !ok {
		return nil, apperrors.NewInvalidValue("that is not a valid status to update the ticket to")
	}
	if newStatus == domain.TicketStatusPending {
		return nil, apperrors.NewInvalidValue("tickets cannot be made pending again")
	}

	manager, err := s.directory.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(manager.Role, authz.ActionFinalizeTicket) {
		return nil, apperrors.NewForbidden("only a manager can perform this action")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	updated, err := s.tickets.UpdateStatus(ctx, ticketID, newStatus)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if !updated {
		// The lookup above proved existence, so a no-op update means the
		// ticket left PENDING already (possibly in a concurrent request).
		return nil, apperrors.NewConflict("that ticket has already been finalized")
	}
	ticket.Status = newStatus

	s.publish(ctx, events.Event{
		Type: events.EventTicketFinalized,
		Payload: events.TicketFinalizedPayload{
			TicketID:   ticket.ID,
			Reference:  ticket.Reference,
			EmployeeID: ticket.EmployeeID,
			NewStatus:  newStatus,
			ManagerID:  manager.ID,
		},
	})
	return ticket, nil
}

// ListMine returns the verified caller's own tickets, optionally narrowed
// by status and type.
func (s *TicketService) ListMine(ctx context.Context, input ListInput) ([]domain.Ticket, error) {
	employee, err := s.directory.Verify(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(employee.Role, authz.ActionListOwnTickets) {
		return nil, apperrors.NewForbidden("you are not authorized to perform this action")
	}

	filter := repository.TicketFilter{
		EmployeeID: &employee.ID,
		Status:     domain.StatusFilter(input.StatusToken),
		Type:       domain.TypeFilter(input.TypeToken),
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return tickets, nil
}

// ListAll returns tickets across all employees to a verified manager. An
// owner-email filter naming no known employee matches no tickets, mirroring
// the lenient filter policy.
func (s *TicketService) ListAll(ctx context.Context, input ListInput) ([]domain.Ticket, error) {
	manager, err := s.directory.Verify(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(manager.Role, authz.ActionListAllTickets) {
		return nil, apperrors.NewForbidden("only a manager can perform this action")
	}

	filter := repository.TicketFilter{
		Status: domain.StatusFilter(input.StatusToken),
		Type:   domain.TypeFilter(input.TypeToken),
	}
	if strings.TrimSpace(input.OwnerEmail) != "" {
		owner, err := s.employees.GetByEmail(ctx, input.OwnerEmail)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return []domain.Ticket{}, nil
			}
			return nil, apperrors.NewStorageFailure(err)
		}
		filter.EmployeeID = &owner.ID
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return tickets, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
