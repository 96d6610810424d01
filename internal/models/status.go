package models

// ClaimStatus is the closed set of states a claim can be in.
type ClaimStatus string

const (
	StatusDraft           ClaimStatus = "draft"
	StatusPendingApproval ClaimStatus = "pending_approval"
	StatusApproved        ClaimStatus = "approved"
	StatusRejected        ClaimStatus = "rejected"
	StatusPaid            ClaimStatus = "paid"
	StatusCanceled        ClaimStatus = "canceled"
)

// AllStatuses lists every valid status, in lifecycle order.
var AllStatuses = []ClaimStatus{
	StatusDraft,
	StatusPendingApproval,
	StatusApproved,
	StatusRejected,
	StatusPaid,
	StatusCanceled,
}

// Valid reports whether s is a member of the status enum.
func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions
// (admin override excepted).
func (s ClaimStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCanceled
}

// Event names an action that moves a claim between statuses.
type Event string

const (
	EventSubmit        Event = "submit"
	EventApprove       Event = "approve"
	EventReject        Event = "reject"
	EventReturnToDraft Event = "return_to_draft"
	EventMarkPaid      Event = "mark_paid"
	EventCancel        Event = "cancel"
	EventResubmit      Event = "resubmit"
	EventDelete        Event = "delete"
	EventAdminOverride Event = "admin_override"
)

// Valid reports whether e is a known event.
func (e Event) Valid() bool {
	switch e {
	case EventSubmit, EventApprove, EventReject, EventReturnToDraft,
		EventMarkPaid, EventCancel, EventResubmit, EventDelete, EventAdminOverride:
		return true
	}
	return false
}

// Role is the permission level attached to a user account.
type Role string

const (
	RoleClaimant Role = "claimant"
	RoleApprover Role = "approver"
	RoleFinance  Role = "finance"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role. Unknown roles are always
// denied by the authorization gate, so this is a convenience for input
// validation, not a security check.
func (r Role) Valid() bool {
	switch r {
	case RoleClaimant, RoleApprover, RoleFinance, RoleAdmin:
		return true
	}
	return false
}
