// Package lifecycle is the sole authority for moving claims between statuses.
// The transition table below is the one place legality and permission are
// defined; nothing else in the codebase compares status strings to decide
// what an actor may do.
package lifecycle

import (
	"errors"

	"claimdesk/internal/models"
)

// Sentinel errors raised by the engine. Callers match with errors.Is.
var (
	// ErrInvalidTransition means the event is not legal from the claim's
	// current status.
	ErrInvalidTransition = errors.New("transition not allowed from current status")

	// ErrForbidden means the actor's role lacks permission for an otherwise
	// legal transition.
	ErrForbidden = errors.New("actor is not permitted to perform this transition")
)

// rule is one row of the transition table: the target status and the roles
// that may trigger the event.
type rule struct {
	to    models.ClaimStatus
	roles []models.Role
}

// transitions defines the valid state machine. The outer key is the current
// status, the inner key the event. EventDelete maps to an empty target: the
// claim row is removed rather than moved. EventAdminOverride is handled
// separately by the engine and deliberately absent here.
var transitions = map[models.ClaimStatus]map[models.Event]rule{
	models.StatusDraft: {
		models.EventSubmit: {to: models.StatusPendingApproval, roles: []models.Role{models.RoleClaimant}},
		models.EventDelete: {to: "", roles: []models.Role{models.RoleClaimant}},
	},
	models.StatusPendingApproval: {
		models.EventApprove:       {to: models.StatusApproved, roles: []models.Role{models.RoleApprover}},
		models.EventReject:        {to: models.StatusRejected, roles: []models.Role{models.RoleApprover}},
		models.EventReturnToDraft: {to: models.StatusDraft, roles: []models.Role{models.RoleApprover}},
	},
	models.StatusApproved: {
		models.EventMarkPaid: {to: models.StatusPaid, roles: []models.Role{models.RoleFinance}},
		models.EventCancel:   {to: models.StatusCanceled, roles: []models.Role{models.RoleAdmin}},
	},
	models.StatusRejected: {
		models.EventResubmit: {to: models.StatusDraft, roles: []models.Role{models.RoleClaimant}},
	},
	// Paid and Canceled are terminal: no rows.
	models.StatusPaid:     {},
	models.StatusCanceled: {},
}

// Target returns the status an event leads to from the given status, and
// whether the transition exists at all.
func Target(from models.ClaimStatus, event models.Event) (models.ClaimStatus, bool) {
	r, ok := transitions[from][event]
	return r.to, ok
}

// Allowed is the authorization gate: it reports whether the role may trigger
// the event from the given status. Unknown roles, unknown statuses and
// unknown events are all denied (fail closed). Admin override is the one
// role-gated exception to the table and is allowed from any status.
func Allowed(role models.Role, from models.ClaimStatus, event models.Event) bool {
	if event == models.EventAdminOverride {
		return role == models.RoleAdmin
	}
	r, ok := transitions[from][event]
	if !ok {
		return false
	}
	for _, allowed := range r.roles {
		if role == allowed {
			return true
		}
	}
	return false
}
