package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/api/dto"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/service"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Submit handles POST /tickets/submit.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewMalformedInput("email and password required")
	}

	ticket, err := h.tickets.Submit(c.UserContext(), service.SubmitInput{
		Email:       req.Email,
		Password:    req.Password,
		Type:        req.ReimbursementType,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Finalize handles POST /tickets/finalize (manager only).
func (h *TicketsHandler) Finalize(c *fiber.Ctx) error {
	var req dto.FinalizeTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.TicketID <= 0 || req.NewStatus == "" {
		return apperrors.NewMalformedInput("email, password, ticket_id and new_status required")
	}

	ticket, err := h.tickets.Finalize(c.UserContext(), req.Email, req.Password, req.TicketID, req.NewStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListMine handles POST /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	var req dto.ListMyTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewMalformedInput("email and password required")
	}

	tickets, err := h.tickets.ListMine(c.UserContext(), service.ListInput{
		Email:       req.Email,
		Password:    req.Password,
		StatusToken: req.Status,
		TypeToken:   req.Type,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListAll handles POST /tickets/list (manager only).
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	var req dto.ListTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewMalformedInput("email and password required")
	}

	tickets, err := h.tickets.ListAll(c.UserContext(), service.ListInput{
		Email:       req.Email,
		Password:    req.Password,
		OwnerEmail:  req.FromEmployee,
		StatusToken: req.Status,
		TypeToken:   req.Type,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		Reference:   ticket.Reference,
		EmployeeID:  ticket.EmployeeID,
		Type:        ticket.Type,
		Amount:      ticket.Amount,
		Description: ticket.Description,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}
