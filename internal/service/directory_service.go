package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/authz"
	"github.com/spec-kit/reimbursement-service/internal/config"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/events"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// DirectoryService owns employee records: registration, credential
// verification, role changes and listing.
type DirectoryService struct {
	employees  repository.EmployeeRepository
	limiter    auth.AttemptLimiter
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// DirectoryDependencies bundles collaborator requirements.
type DirectoryDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	Limiter      auth.AttemptLimiter
	Dispatcher   events.Dispatcher
}

// NewDirectoryService builds the service.
func NewDirectoryService(cfg config.Config, deps DirectoryDependencies) *DirectoryService {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = auth.NoopLimiter{}
	}
	return &DirectoryService{
		employees:  deps.EmployeeRepo,
		limiter:    limiter,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Verify checks an email/password pair against the stored record. An
// unknown email and a wrong password produce the identical error so the
// response never reveals whether an account exists.
func (s *DirectoryService) Verify(ctx context.Context, email, password string) (*domain.Employee, error) {
	if s.limiter.Blocked(ctx, email) {
		return nil, apperrors.NewRateLimited("too many failed attempts, try again later")
	}

	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.limiter.RecordFailure(ctx, email)
			return nil, apperrors.NewAuthFailed()
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		s.limiter.RecordFailure(ctx, email)
		return nil, apperrors.NewAuthFailed()
	}

	s.limiter.Reset(ctx, email)
	return employee, nil
}

// Register creates a STANDARD-role employee. The repository's uniqueness
// guarantee is what makes concurrent same-email registrations safe; the
// error mapping below relies on it rather than on a pre-check.
func (s *DirectoryService) Register(ctx context.Context, email, password string) (*domain.Employee, error) {
	if email == "" {
		return nil, apperrors.NewInvalidValue("email may not be empty")
	}
	if password == "" {
		return nil, apperrors.NewInvalidValue("password may not be empty")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	employee := &domain.Employee{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleStandard,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("that email address is already in use")
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	return employee, nil
}

// Login verifies credentials and issues an access token.
func (s *DirectoryService) Login(ctx context.Context, email, password string) (*domain.Employee, string, time.Time, error) {
	employee, err := s.Verify(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(employee)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return employee, token, exp, nil
}

// ChangeRole promotes or demotes the target employee under a manager's
// credentials. The check order is a security invariant: actor credentials
// are verified before the target is even looked up, so this endpoint
// cannot be used to probe which accounts exist.
func (s *DirectoryService) ChangeRole(ctx context.Context, actorEmail, actorPassword, targetEmail string, newRole domain.Role) (*domain.Employee, error) {
	actor, err := s.Verify(ctx, actorEmail, actorPassword)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(actor.Role, authz.ActionChangeRole) {
		return nil, apperrors.NewForbidden("you are not authorized to perform this action")
	}

	target, err := s.employees.GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("employee")
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.employees.UpdateRole(ctx, target.ID, newRole); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("employee")
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	target.Role = newRole

	s.publish(ctx, events.Event{
		Type: events.EventEmployeeRoleChanged,
		Payload: events.RoleChangedPayload{
			EmployeeID: target.ID,
			Email:      target.Email,
			NewRole:    newRole,
			ManagerID:  actor.ID,
		},
	})
	return target, nil
}

// ListEmployees returns every employee record to a verified manager.
func (s *DirectoryService) ListEmployees(ctx context.Context, actorEmail, actorPassword string) ([]domain.Employee, error) {
	actor, err := s.Verify(ctx, actorEmail, actorPassword)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(actor.Role, authz.ActionListEmployees) {
		return nil, apperrors.NewForbidden("only a manager can perform this action")
	}

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return employees, nil
}

func (s *DirectoryService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
