package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// MemoryEmployeeRepository is a mutex-guarded in-memory implementation of
// EmployeeRepository. It enforces the same email-uniqueness guarantee as
// the database constraint, which makes it a faithful double for tests and
// usable for dependency-free local runs.
type MemoryEmployeeRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.Employee
	byEmail map[string]int64
}

// NewMemoryEmployeeRepository constructs an empty store.
func NewMemoryEmployeeRepository() *MemoryEmployeeRepository {
	return &MemoryEmployeeRepository{
		nextID:  1,
		byID:    make(map[int64]*domain.Employee),
		byEmail: make(map[string]int64),
	}
}

func (r *MemoryEmployeeRepository) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryEmployeeRepository) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[employee.Email]; exists {
		return ErrDuplicateEmail
	}
	now := time.Now()
	employee.ID = r.nextID
	employee.CreatedAt = now
	employee.UpdatedAt = now
	r.nextID++

	cp := *employee
	r.byID[cp.ID] = &cp
	r.byEmail[cp.Email] = cp.ID
	return nil
}

func (r *MemoryEmployeeRepository) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	employee, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	employee.Role = role
	employee.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryEmployeeRepository) List(_ context.Context) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Employee, 0, len(r.byID))
	for id := int64(1); id < r.nextID; id++ {
		if employee, ok := r.byID[id]; ok {
			result = append(result, *employee)
		}
	}
	return result, nil
}

// MemoryTicketRepository is the in-memory counterpart of TicketRepository.
// UpdateStatus performs the check-then-set under one lock, matching the
// atomic conditional UPDATE of the Postgres implementation.
type MemoryTicketRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Ticket
}

// NewMemoryTicketRepository constructs an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		nextID: 1,
		byID:   make(map[int64]*domain.Ticket),
	}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	ticket.ID = r.nextID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.nextID++

	cp := *ticket
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ticket
	return &cp, nil
}

func (r *MemoryTicketRepository) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.byID[id]
	if !ok || ticket.Status != domain.TicketStatusPending {
		return false, nil
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryTicketRepository) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for id := int64(1); id < r.nextID; id++ {
		ticket, ok := r.byID[id]
		if !ok {
			continue
		}
		if filter.EmployeeID != nil && ticket.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && ticket.Type != *filter.Type {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}
