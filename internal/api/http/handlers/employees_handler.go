package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/api/dto"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/service"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// EmployeesHandler exposes registration, login and directory endpoints.
type EmployeesHandler struct {
	directory *service.DirectoryService
}

// NewEmployeesHandler constructs the handler.
func NewEmployeesHandler(directory *service.DirectoryService) *EmployeesHandler {
	return &EmployeesHandler{directory: directory}
}

// Register handles POST /register.
func (h *EmployeesHandler) Register(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewMalformedInput("email and password required")
	}

	employee, err := h.directory.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": employeeResponse(employee)})
}

// Login handles POST /login.
func (h *EmployeesHandler) Login(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewMalformedInput("email and password required")
	}

	employee, token, exp, err := h.directory.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"employee": employeeResponse(employee),
		"auth":     dto.AuthResponse{Token: token, ExpiresAt: exp},
	}})
}

// List handles POST /employees/list (manager only).
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewMalformedInput("email and password required")
	}

	employees, err := h.directory.ListEmployees(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, employeeResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Promote handles POST /employees/promote (manager only).
func (h *EmployeesHandler) Promote(c *fiber.Ctx) error {
	return h.changeRole(c, domain.RoleManager)
}

// Demote handles POST /employees/demote (manager only).
func (h *EmployeesHandler) Demote(c *fiber.Ctx) error {
	return h.changeRole(c, domain.RoleStandard)
}

func (h *EmployeesHandler) changeRole(c *fiber.Ctx, newRole domain.Role) error {
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.TargetEmail == "" {
		return apperrors.NewMalformedInput("email, password and target_email required")
	}

	target, err := h.directory.ChangeRole(c.UserContext(), req.Email, req.Password, req.TargetEmail, newRole)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(target)})
}

func employeeResponse(employee *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:        employee.ID,
		Email:     employee.Email,
		Role:      employee.Role,
		CreatedAt: employee.CreatedAt,
	}
}
