package authz

import "github.com/spec-kit/reimbursement-service/internal/domain"

// Action identifies an operation subject to role-based authorization.
type Action string

const (
	ActionSubmitTicket   Action = "submit_ticket"
	ActionListOwnTickets Action = "list_own_tickets"
	ActionFinalizeTicket Action = "finalize_ticket"
	ActionListAllTickets Action = "list_all_tickets"
	ActionListEmployees  Action = "list_employees"
	ActionChangeRole     Action = "change_role"
)

// permissions is the single source of truth for role checks. Handlers and
// services must consult CanPerform instead of comparing roles inline so
// that adding a role or action is a one-place change.
var permissions = map[Action]map[domain.Role]struct{}{
	ActionSubmitTicket: {
		domain.RoleStandard: {},
		domain.RoleManager:  {},
	},
	ActionListOwnTickets: {
		domain.RoleStandard: {},
		domain.RoleManager:  {},
	},
	ActionFinalizeTicket: {
		domain.RoleManager: {},
	},
	ActionListAllTickets: {
		domain.RoleManager: {},
	},
	ActionListEmployees: {
		domain.RoleManager: {},
	},
	ActionChangeRole: {
		domain.RoleManager: {},
	},
}

// CanPerform reports whether the given role is allowed to perform the
// action. Unknown actions are denied for every role.
func CanPerform(role domain.Role, action Action) bool {
	allowed, ok := permissions[action]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}
