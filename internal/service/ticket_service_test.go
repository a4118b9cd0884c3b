package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	"github.com/spec-kit/reimbursement-service/internal/service"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

type ticketEnv struct {
	tickets   *service.TicketService
	directory *service.DirectoryService
	repo      *repository.MemoryTicketRepository
}

// newTicketEnv wires the services over in-memory repositories with
// alice@co.com (STANDARD, pw1) and boss@co.com (MANAGER, bosspw) seeded.
func newTicketEnv(t *testing.T) *ticketEnv {
	t.Helper()
	employeeRepo := repository.NewMemoryEmployeeRepository()
	ticketRepo := repository.NewMemoryTicketRepository()
	directory := service.NewDirectoryService(testConfig(), service.DirectoryDependencies{
		EmployeeRepo: employeeRepo,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		EmployeeRepo: employeeRepo,
		Directory:    directory,
	})

	mustRegister(t, directory, "alice@co.com", "pw1")
	seedManager(t, directory, employeeRepo, "boss@co.com", "bosspw")
	return &ticketEnv{tickets: tickets, directory: directory, repo: ticketRepo}
}

func (e *ticketEnv) submit(t *testing.T, email, password string, reimbursementType string, amount float64, description string) *domain.Ticket {
	t.Helper()
	ticket, err := e.tickets.Submit(context.Background(), service.SubmitInput{
		Email:       email,
		Password:    password,
		Type:        reimbursementType,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return ticket
}

func TestSubmitCreatesPendingTicket(t *testing.T) {
	env := newTicketEnv(t)

	ticket := env.submit(t, "alice@co.com", "pw1", "FOOD", 42.50, "lunch")
	if ticket.Status != domain.TicketStatusPending {
		t.Errorf("new ticket status = %s, want PENDING", ticket.Status)
	}
	if ticket.Type != domain.ReimbursementFood {
		t.Errorf("ticket type = %s, want FOOD", ticket.Type)
	}
	if ticket.ID < 1 {
		t.Errorf("ticket ID = %d, want >= 1", ticket.ID)
	}
	if ticket.Reference == "" {
		t.Error("ticket reference must be assigned")
	}
	if ticket.EmployeeID < 1 {
		t.Errorf("ticket owner = %d, want >= 1", ticket.EmployeeID)
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input service.SubmitInput
		code  string
	}{
		{
			"negative amount",
			service.SubmitInput{Email: "alice@co.com", Password: "pw1", Type: "FOOD", Amount: -5, Description: "lunch"},
			apperrors.CodeInvalidValue,
		},
		{
			"zero amount",
			service.SubmitInput{Email: "alice@co.com", Password: "pw1", Type: "FOOD", Amount: 0, Description: "lunch"},
			apperrors.CodeInvalidValue,
		},
		{
			"empty description",
			service.SubmitInput{Email: "alice@co.com", Password: "pw1", Type: "FOOD", Amount: 10, Description: "   "},
			apperrors.CodeInvalidValue,
		},
		{
			"unknown reimbursement type",
			service.SubmitInput{Email: "alice@co.com", Password: "pw1", Type: "SNACKS", Amount: 10, Description: "snacks"},
			apperrors.CodeInvalidValue,
		},
		{
			"bad credentials",
			service.SubmitInput{Email: "alice@co.com", Password: "nope", Type: "FOOD", Amount: 10, Description: "lunch"},
			apperrors.CodeAuthFailed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tickets.Submit(ctx, tc.input)
			if de := domainErr(t, err); de.Code != tc.code {
				t.Errorf("code = %s, want %s", de.Code, tc.code)
			}
		})
	}

	// No ticket may survive a rejected submission.
	remaining, err := env.repo.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("ListWithFilter: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("%d tickets persisted after rejected submissions, want 0", len(remaining))
	}
}

func TestSubmitDefaultsTypeToOther(t *testing.T) {
	env := newTicketEnv(t)
	ticket := env.submit(t, "alice@co.com", "pw1", "", 10, "misc")
	if ticket.Type != domain.ReimbursementOther {
		t.Errorf("defaulted type = %s, want OTHER", ticket.Type)
	}
}

func TestFinalizeLifecycle(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := env.submit(t, "alice@co.com", "pw1", "FOOD", 42.50, "lunch")

	// A non-manager may not finalize, not even their own ticket.
	_, err := env.tickets.Finalize(ctx, "alice@co.com", "pw1", ticket.ID, "APPROVED")
	if de := domainErr(t, err); de.Code != apperrors.CodeForbidden {
		t.Fatalf("non-manager finalize code = %s, want %s", de.Code, apperrors.CodeForbidden)
	}

	approved, err := env.tickets.Finalize(ctx, "boss@co.com", "bosspw", ticket.ID, "APPROVED")
	if err != nil {
		t.Fatalf("manager finalize: %v", err)
	}
	if approved.Status != domain.TicketStatusApproved {
		t.Errorf("finalized status = %s, want APPROVED", approved.Status)
	}

	// APPROVED is terminal: a second finalize always fails, and the
	// stored status never changes again.
	_, err = env.tickets.Finalize(ctx, "boss@co.com", "bosspw", ticket.ID, "DENIED")
	if de := domainErr(t, err); de.Code != apperrors.CodeConflict {
		t.Errorf("second finalize code = %s, want %s", de.Code, apperrors.CodeConflict)
	}
	stored, err := env.repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.TicketStatusApproved {
		t.Errorf("stored status = %s after rejected finalize, want APPROVED", stored.Status)
	}
}

// Status parsing happens before credential verification, matching the
// failure priority malformed input > credential failure.
func TestFinalizeRejectsBadStatusBeforeCredentials(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	_, err := env.tickets.Finalize(ctx, "boss@co.com", "wrongpw", 1, "PENDING")
	if de := domainErr(t, err); de.Code != apperrors.CodeInvalidValue {
		t.Errorf("re-pend code = %s, want %s", de.Code, apperrors.CodeInvalidValue)
	}
	_, err = env.tickets.Finalize(ctx, "boss@co.com", "wrongpw", 1, "SHREDDED")
	if de := domainErr(t, err); de.Code != apperrors.CodeInvalidValue {
		t.Errorf("unknown status code = %s, want %s", de.Code, apperrors.CodeInvalidValue)
	}
}

func TestFinalizeUnknownTicket(t *testing.T) {
	env := newTicketEnv(t)
	_, err := env.tickets.Finalize(context.Background(), "boss@co.com", "bosspw", 9999, "APPROVED")
	if de := domainErr(t, err); de.Code != apperrors.CodeNotFound {
		t.Errorf("unknown ticket code = %s, want %s", de.Code, apperrors.CodeNotFound)
	}
}

func TestFinalizeConcurrentSingleWinner(t *testing.T) {
	env := newTicketEnv(t)
	ticket := env.submit(t, "alice@co.com", "pw1", "TRAVEL", 100, "flight")

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		status := "APPROVED"
		if i%2 == 1 {
			status = "DENIED"
		}
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			_, err := env.tickets.Finalize(context.Background(), "boss@co.com", "bosspw", ticket.ID, status)
			results <- err
		}(status)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		if de := domainErr(t, err); de.Code != apperrors.CodeConflict {
			t.Errorf("losing finalize code = %s, want %s", de.Code, apperrors.CodeConflict)
		}
	}
	if wins != 1 {
		t.Errorf("concurrent finalize succeeded %d times, want exactly 1", wins)
	}
}

func seedVariety(t *testing.T, env *ticketEnv) {
	t.Helper()
	env.submit(t, "alice@co.com", "pw1", "FOOD", 12, "lunch")
	env.submit(t, "alice@co.com", "pw1", "TRAVEL", 80, "train")
	env.submit(t, "boss@co.com", "bosspw", "FOOD", 30, "client dinner")
	t3 := env.submit(t, "alice@co.com", "pw1", "LODGING", 200, "hotel")
	if _, err := env.tickets.Finalize(context.Background(), "boss@co.com", "bosspw", t3.ID, "APPROVED"); err != nil {
		t.Fatalf("seed finalize: %v", err)
	}
}

func TestListMineScopesAndFilters(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	seedVariety(t, env)

	mine, err := env.tickets.ListMine(ctx, service.ListInput{Email: "alice@co.com", Password: "pw1"})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("alice sees %d tickets, want 3 (never other employees')", len(mine))
	}

	pendingFood, err := env.tickets.ListMine(ctx, service.ListInput{
		Email: "alice@co.com", Password: "pw1", StatusToken: "pending", TypeToken: "food",
	})
	if err != nil {
		t.Fatalf("ListMine filtered: %v", err)
	}
	if len(pendingFood) != 1 || pendingFood[0].Description != "lunch" {
		t.Errorf("status+type filters must compose with AND, got %d tickets", len(pendingFood))
	}

	// Unrecognized filter tokens are a deliberate no-filter, not an error.
	lenient, err := env.tickets.ListMine(ctx, service.ListInput{
		Email: "alice@co.com", Password: "pw1", StatusToken: "bogus", TypeToken: "whatever",
	})
	if err != nil {
		t.Fatalf("ListMine lenient: %v", err)
	}
	if len(lenient) != len(mine) {
		t.Errorf("unknown tokens returned %d tickets, want %d (no filter)", len(lenient), len(mine))
	}
}

func TestListAllRequiresManager(t *testing.T) {
	env := newTicketEnv(t)
	_, err := env.tickets.ListAll(context.Background(), service.ListInput{Email: "alice@co.com", Password: "pw1"})
	if de := domainErr(t, err); de.Code != apperrors.CodeForbidden {
		t.Errorf("standard list-all code = %s, want %s", de.Code, apperrors.CodeForbidden)
	}
}

func TestListAllFilterComposition(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	seedVariety(t, env)

	all, err := env.tickets.ListAll(ctx, service.ListInput{Email: "boss@co.com", Password: "bosspw"})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("ListAll sees %d tickets, want 4", len(all))
	}

	// The unfiltered view equals the union of the per-status slices:
	// single filters partition the full set.
	bySingleStatus := 0
	for _, status := range []string{"PENDING", "APPROVED", "DENIED"} {
		subset, err := env.tickets.ListAll(ctx, service.ListInput{
			Email: "boss@co.com", Password: "bosspw", StatusToken: status,
		})
		if err != nil {
			t.Fatalf("ListAll(%s): %v", status, err)
		}
		bySingleStatus += len(subset)
	}
	if bySingleStatus != len(all) {
		t.Errorf("per-status slices sum to %d, want %d", bySingleStatus, len(all))
	}

	aliceFood, err := env.tickets.ListAll(ctx, service.ListInput{
		Email: "boss@co.com", Password: "bosspw", OwnerEmail: "alice@co.com", TypeToken: "FOOD",
	})
	if err != nil {
		t.Fatalf("ListAll owner+type: %v", err)
	}
	if len(aliceFood) != 1 || aliceFood[0].Description != "lunch" {
		t.Errorf("owner+type filter returned %d tickets", len(aliceFood))
	}
}

func TestListAllUnknownOwnerMatchesNothing(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	seedVariety(t, env)

	tickets, err := env.tickets.ListAll(ctx, service.ListInput{
		Email: "boss@co.com", Password: "bosspw", OwnerEmail: "ghost@co.com",
	})
	if err != nil {
		t.Fatalf("ListAll unknown owner: %v", err)
	}
	if len(tickets) != 0 {
		t.Errorf("unknown owner filter returned %d tickets, want 0", len(tickets))
	}
}
