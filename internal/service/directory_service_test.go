package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/reimbursement-service/internal/config"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	"github.com/spec-kit/reimbursement-service/internal/service"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func newDirectory(t *testing.T) (*service.DirectoryService, *repository.MemoryEmployeeRepository) {
	t.Helper()
	repo := repository.NewMemoryEmployeeRepository()
	directory := service.NewDirectoryService(testConfig(), service.DirectoryDependencies{
		EmployeeRepo: repo,
	})
	return directory, repo
}

func mustRegister(t *testing.T, directory *service.DirectoryService, email, password string) *domain.Employee {
	t.Helper()
	employee, err := directory.Register(context.Background(), email, password)
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return employee
}

func seedManager(t *testing.T, directory *service.DirectoryService, repo *repository.MemoryEmployeeRepository, email, password string) *domain.Employee {
	t.Helper()
	employee := mustRegister(t, directory, email, password)
	if err := repo.UpdateRole(context.Background(), employee.ID, domain.RoleManager); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	employee.Role = domain.RoleManager
	return employee
}

func domainErr(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	return de
}

func TestRegisterAndVerify(t *testing.T) {
	directory, _ := newDirectory(t)
	ctx := context.Background()

	employee := mustRegister(t, directory, "alice@co.com", "pw1")
	if employee.ID < 1 {
		t.Errorf("employee ID = %d, want >= 1", employee.ID)
	}
	if employee.Role != domain.RoleStandard {
		t.Errorf("new employee role = %s, want STANDARD", employee.Role)
	}
	if employee.PasswordHash == "pw1" {
		t.Error("password must be stored hashed")
	}

	verified, err := directory.Verify(ctx, "alice@co.com", "pw1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.ID != employee.ID {
		t.Errorf("verified ID = %d, want %d", verified.ID, employee.ID)
	}
}

// Unknown account and wrong password must be indistinguishable to the
// caller so the verify path cannot be used to enumerate accounts.
func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	directory, _ := newDirectory(t)
	ctx := context.Background()
	mustRegister(t, directory, "alice@co.com", "pw1")

	_, errWrongPassword := directory.Verify(ctx, "alice@co.com", "nope")
	_, errUnknownAccount := directory.Verify(ctx, "ghost@co.com", "nope")

	wrong := domainErr(t, errWrongPassword)
	unknown := domainErr(t, errUnknownAccount)

	if wrong.Code != apperrors.CodeAuthFailed || unknown.Code != apperrors.CodeAuthFailed {
		t.Fatalf("codes = %s, %s, want both %s", wrong.Code, unknown.Code, apperrors.CodeAuthFailed)
	}
	if wrong.Message != unknown.Message || wrong.HTTPStatus != unknown.HTTPStatus {
		t.Errorf("failure responses differ: (%q, %d) vs (%q, %d)",
			wrong.Message, wrong.HTTPStatus, unknown.Message, unknown.HTTPStatus)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	directory, _ := newDirectory(t)
	mustRegister(t, directory, "alice@co.com", "pw1")

	_, err := directory.Register(context.Background(), "alice@co.com", "pw2")
	if de := domainErr(t, err); de.Code != apperrors.CodeConflict {
		t.Errorf("duplicate register code = %s, want %s", de.Code, apperrors.CodeConflict)
	}
}

func TestRegisterConcurrentSameEmailSingleWinner(t *testing.T) {
	directory, _ := newDirectory(t)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := directory.Register(context.Background(), "race@co.com", "pw")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		}
	}
	if successes != 1 {
		t.Errorf("concurrent registrations succeeded %d times, want exactly 1", successes)
	}
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	directory, _ := newDirectory(t)
	ctx := context.Background()

	if _, err := directory.Register(ctx, "", "pw"); domainErr(t, err).Code != apperrors.CodeInvalidValue {
		t.Error("empty email must be rejected as invalid value")
	}
	if _, err := directory.Register(ctx, "a@co.com", ""); domainErr(t, err).Code != apperrors.CodeInvalidValue {
		t.Error("empty password must be rejected as invalid value")
	}
}

// The actor's credentials are checked before the target is looked up, so a
// caller with bad credentials learns nothing about which accounts exist.
func TestChangeRoleChecksCredentialsBeforeTarget(t *testing.T) {
	directory, repo := newDirectory(t)
	ctx := context.Background()
	seedManager(t, directory, repo, "boss@co.com", "bosspw")
	mustRegister(t, directory, "alice@co.com", "pw1")

	_, errExisting := directory.ChangeRole(ctx, "boss@co.com", "wrongpw", "alice@co.com", domain.RoleManager)
	_, errMissing := directory.ChangeRole(ctx, "boss@co.com", "wrongpw", "ghost@co.com", domain.RoleManager)

	existing := domainErr(t, errExisting)
	missing := domainErr(t, errMissing)
	if existing.Code != apperrors.CodeAuthFailed || missing.Code != apperrors.CodeAuthFailed {
		t.Fatalf("codes = %s, %s, want both %s", existing.Code, missing.Code, apperrors.CodeAuthFailed)
	}
	if existing.Message != missing.Message {
		t.Errorf("responses leak target existence: %q vs %q", existing.Message, missing.Message)
	}
}

func TestChangeRoleRequiresManager(t *testing.T) {
	directory, _ := newDirectory(t)
	mustRegister(t, directory, "alice@co.com", "pw1")
	mustRegister(t, directory, "bob@co.com", "pw2")

	_, err := directory.ChangeRole(context.Background(), "alice@co.com", "pw1", "bob@co.com", domain.RoleManager)
	if de := domainErr(t, err); de.Code != apperrors.CodeForbidden {
		t.Errorf("non-manager change role code = %s, want %s", de.Code, apperrors.CodeForbidden)
	}
}

func TestChangeRoleMissingTarget(t *testing.T) {
	directory, repo := newDirectory(t)
	seedManager(t, directory, repo, "boss@co.com", "bosspw")

	_, err := directory.ChangeRole(context.Background(), "boss@co.com", "bosspw", "ghost@co.com", domain.RoleManager)
	if de := domainErr(t, err); de.Code != apperrors.CodeNotFound {
		t.Errorf("missing target code = %s, want %s", de.Code, apperrors.CodeNotFound)
	}
}

func TestChangeRolePromotesAndDemotes(t *testing.T) {
	directory, repo := newDirectory(t)
	ctx := context.Background()
	seedManager(t, directory, repo, "boss@co.com", "bosspw")
	mustRegister(t, directory, "alice@co.com", "pw1")

	promoted, err := directory.ChangeRole(ctx, "boss@co.com", "bosspw", "alice@co.com", domain.RoleManager)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != domain.RoleManager {
		t.Errorf("promoted role = %s, want MANAGER", promoted.Role)
	}

	// The fresh manager can now perform manager actions.
	if _, err := directory.ListEmployees(ctx, "alice@co.com", "pw1"); err != nil {
		t.Errorf("promoted employee should list employees: %v", err)
	}

	demoted, err := directory.ChangeRole(ctx, "boss@co.com", "bosspw", "alice@co.com", domain.RoleStandard)
	if err != nil {
		t.Fatalf("demote: %v", err)
	}
	if demoted.Role != domain.RoleStandard {
		t.Errorf("demoted role = %s, want STANDARD", demoted.Role)
	}
}

func TestListEmployeesRequiresManager(t *testing.T) {
	directory, repo := newDirectory(t)
	ctx := context.Background()
	mustRegister(t, directory, "alice@co.com", "pw1")
	seedManager(t, directory, repo, "boss@co.com", "bosspw")

	if _, err := directory.ListEmployees(ctx, "alice@co.com", "pw1"); domainErr(t, err).Code != apperrors.CodeForbidden {
		t.Error("standard employee must not list employees")
	}

	employees, err := directory.ListEmployees(ctx, "boss@co.com", "bosspw")
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if len(employees) != 2 {
		t.Errorf("listed %d employees, want 2", len(employees))
	}
}

func TestLoginIssuesToken(t *testing.T) {
	directory, _ := newDirectory(t)
	mustRegister(t, directory, "alice@co.com", "pw1")

	employee, token, exp, err := directory.Login(context.Background(), "alice@co.com", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if employee.Email != "alice@co.com" {
		t.Errorf("login email = %s", employee.Email)
	}
	if token == "" {
		t.Error("login must issue a token")
	}
	if !exp.After(time.Now()) {
		t.Errorf("token expiry %v is not in the future", exp)
	}
}

type blockedLimiter struct{}

func (blockedLimiter) Blocked(context.Context, string) bool  { return true }
func (blockedLimiter) RecordFailure(context.Context, string) {}
func (blockedLimiter) Reset(context.Context, string)         {}

func TestVerifyHonorsLimiter(t *testing.T) {
	repo := repository.NewMemoryEmployeeRepository()
	directory := service.NewDirectoryService(testConfig(), service.DirectoryDependencies{
		EmployeeRepo: repo,
		Limiter:      blockedLimiter{},
	})

	_, err := directory.Verify(context.Background(), "alice@co.com", "pw1")
	if de := domainErr(t, err); de.Code != apperrors.CodeRateLimited {
		t.Errorf("blocked verify code = %s, want %s", de.Code, apperrors.CodeRateLimited)
	}
}
