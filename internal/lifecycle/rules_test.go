package lifecycle

import (
	"testing"

	"claimdesk/internal/models"
)

// permitted is the full list of (role, from, event, to) rows the state
// machine allows, apart from admin override.
var permitted = []struct {
	role  models.Role
	from  models.ClaimStatus
	event models.Event
	to    models.ClaimStatus
}{
	{models.RoleClaimant, models.StatusDraft, models.EventSubmit, models.StatusPendingApproval},
	{models.RoleClaimant, models.StatusDraft, models.EventDelete, ""},
	{models.RoleApprover, models.StatusPendingApproval, models.EventApprove, models.StatusApproved},
	{models.RoleApprover, models.StatusPendingApproval, models.EventReject, models.StatusRejected},
	{models.RoleApprover, models.StatusPendingApproval, models.EventReturnToDraft, models.StatusDraft},
	{models.RoleFinance, models.StatusApproved, models.EventMarkPaid, models.StatusPaid},
	{models.RoleAdmin, models.StatusApproved, models.EventCancel, models.StatusCanceled},
	{models.RoleClaimant, models.StatusRejected, models.EventResubmit, models.StatusDraft},
}

func TestPermittedTransitions(t *testing.T) {
	for _, row := range permitted {
		to, ok := Target(row.from, row.event)
		if !ok {
			t.Errorf("Target(%s, %s): transition missing", row.from, row.event)
			continue
		}
		if to != row.to {
			t.Errorf("Target(%s, %s) = %s, want %s", row.from, row.event, to, row.to)
		}
		if !Allowed(row.role, row.from, row.event) {
			t.Errorf("Allowed(%s, %s, %s) = false, want true", row.role, row.from, row.event)
		}
	}
}

func TestGateFailsClosed(t *testing.T) {
	roles := []models.Role{models.RoleClaimant, models.RoleApprover, models.RoleFinance, models.RoleAdmin}
	eventsList := []models.Event{
		models.EventSubmit, models.EventApprove, models.EventReject,
		models.EventReturnToDraft, models.EventMarkPaid, models.EventCancel,
		models.EventResubmit, models.EventDelete,
	}

	isPermitted := func(role models.Role, from models.ClaimStatus, event models.Event) bool {
		for _, row := range permitted {
			if row.role == role && row.from == from && row.event == event {
				return true
			}
		}
		return false
	}

	t.Run("every combination outside the table is denied", func(t *testing.T) {
		for _, role := range roles {
			for _, from := range models.AllStatuses {
				for _, event := range eventsList {
					want := isPermitted(role, from, event)
					if got := Allowed(role, from, event); got != want {
						t.Errorf("Allowed(%s, %s, %s) = %v, want %v",
							role, from, event, got, want)
					}
				}
			}
		}
	})

	t.Run("unknown role is always denied", func(t *testing.T) {
		for _, from := range models.AllStatuses {
			for _, event := range eventsList {
				if Allowed("superuser", from, event) {
					t.Errorf("Unknown role allowed for (%s, %s)", from, event)
				}
			}
		}
		if Allowed("superuser", models.StatusDraft, models.EventAdminOverride) {
			t.Error("Unknown role allowed to admin-override")
		}
	})

	t.Run("terminal statuses admit no table transitions", func(t *testing.T) {
		for _, from := range []models.ClaimStatus{models.StatusPaid, models.StatusCanceled} {
			for _, event := range eventsList {
				if _, ok := Target(from, event); ok {
					t.Errorf("Terminal status %s has transition %s", from, event)
				}
			}
		}
	})

	t.Run("admin override is admin-only and status-independent", func(t *testing.T) {
		for _, from := range models.AllStatuses {
			if !Allowed(models.RoleAdmin, from, models.EventAdminOverride) {
				t.Errorf("Admin denied override from %s", from)
			}
			for _, role := range []models.Role{models.RoleClaimant, models.RoleApprover, models.RoleFinance} {
				if Allowed(role, from, models.EventAdminOverride) {
					t.Errorf("Role %s allowed to override from %s", role, from)
				}
			}
		}
	})
}
