package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"claimdesk/internal/events"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
	"claimdesk/internal/storage/sqlite"
)

type fixture struct {
	store    *sqlite.SQLiteStore
	engine   *Engine
	bus      *events.Bus
	claimant models.Actor
	approver models.Actor
	finance  models.Actor
	admin    models.Actor
	project  *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "claimdesk-engine-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	mkActor := func(name, email string, role models.Role) models.Actor {
		user := &models.User{Name: name, Email: email, PasswordHash: "x", Role: role, Active: true}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		return user.Actor()
	}

	project := &models.Project{Name: "Ops", Code: "OPS"}
	if err := store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	return &fixture{
		store:    store,
		engine:   NewEngine(store, bus),
		bus:      bus,
		claimant: mkActor("Alice", "alice@example.com", models.RoleClaimant),
		approver: mkActor("Boss", "boss@example.com", models.RoleApprover),
		finance:  mkActor("Fin", "fin@example.com", models.RoleFinance),
		admin:    mkActor("Root", "root@example.com", models.RoleAdmin),
		project:  project,
	}
}

func (f *fixture) newClaim(t *testing.T, owner models.Actor) *models.Claim {
	t.Helper()
	claim := &models.Claim{
		ClaimantID:   owner.ID,
		ClaimantName: owner.Name,
		ProjectID:    f.project.ID,
		Title:        "Weekend overtime",
		Hours:        8,
		Amount:       decimal.NewFromInt(100),
	}
	if err := f.store.CreateClaim(context.Background(), claim); err != nil {
		t.Fatalf("CreateClaim failed: %v", err)
	}
	return claim
}

func (f *fixture) apply(t *testing.T, claimID string, event models.Event, actor models.Actor, expected models.ClaimStatus) (*models.Claim, error) {
	t.Helper()
	return f.engine.Apply(context.Background(), Request{
		ClaimID:        claimID,
		Event:          event,
		Actor:          actor,
		ExpectedStatus: expected,
	})
}

func (f *fixture) logLen(t *testing.T, claimID string) int {
	t.Helper()
	entries, err := f.store.ListClaimLog(context.Background(), claimID, false)
	if err != nil {
		t.Fatalf("ListClaimLog failed: %v", err)
	}
	return len(entries)
}

func TestEngineHappyPath(t *testing.T) {
	f := newFixture(t)
	claim := f.newClaim(t, f.claimant)
	received := f.bus.Subscribe()

	steps := []struct {
		event    models.Event
		actor    models.Actor
		expected models.ClaimStatus
		want     models.ClaimStatus
	}{
		{models.EventSubmit, f.claimant, models.StatusDraft, models.StatusPendingApproval},
		{models.EventApprove, f.approver, models.StatusPendingApproval, models.StatusApproved},
		{models.EventMarkPaid, f.finance, models.StatusApproved, models.StatusPaid},
	}

	for i, step := range steps {
		got, err := f.apply(t, claim.ID, step.event, step.actor, step.expected)
		if err != nil {
			t.Fatalf("step %d (%s) failed: %v", i, step.event, err)
		}
		if got.Status != step.want {
			t.Fatalf("step %d: status = %q, want %q", i, got.Status, step.want)
		}
		if n := f.logLen(t, claim.ID); n != i+1 {
			t.Fatalf("step %d: log has %d entries, want %d", i, n, i+1)
		}
	}

	// Each accepted transition was published.
	for i, step := range steps {
		select {
		case tr := <-received:
			if tr.ClaimID != claim.ID || tr.To != step.want {
				t.Errorf("event %d: got %+v, want to=%s", i, tr, step.want)
			}
		default:
			t.Fatalf("missing published event for step %d", i)
		}
	}

	// Paid is terminal for everyone but admin override.
	if _, err := f.apply(t, claim.ID, models.EventSubmit, f.claimant, models.StatusPaid); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from paid, got %v", err)
	}
}

func TestEngineRejectsIllegalAndUnauthorized(t *testing.T) {
	f := newFixture(t)

	t.Run("mark_paid on pending claim is an invalid transition", func(t *testing.T) {
		claim := f.newClaim(t, f.claimant)
		if _, err := f.apply(t, claim.ID, models.EventSubmit, f.claimant, models.StatusDraft); err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		_, err := f.apply(t, claim.ID, models.EventMarkPaid, f.approver, models.StatusPendingApproval)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}

		got, _ := f.store.GetClaim(context.Background(), claim.ID)
		if got.Status != models.StatusPendingApproval {
			t.Errorf("status mutated on failed transition: %q", got.Status)
		}
		if n := f.logLen(t, claim.ID); n != 1 {
			t.Errorf("log grew on failed transition: %d entries", n)
		}
	})

	t.Run("legal transition by wrong role is forbidden", func(t *testing.T) {
		claim := f.newClaim(t, f.claimant)
		if _, err := f.apply(t, claim.ID, models.EventSubmit, f.claimant, models.StatusDraft); err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		_, err := f.apply(t, claim.ID, models.EventApprove, f.finance, models.StatusPendingApproval)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if n := f.logLen(t, claim.ID); n != 1 {
			t.Errorf("log grew on forbidden transition: %d entries", n)
		}
	})

	t.Run("claimant cannot act on another claimant's claim", func(t *testing.T) {
		mallory := models.Actor{ID: "other-id", Name: "Mallory", Role: models.RoleClaimant}
		claim := f.newClaim(t, f.claimant)

		_, err := f.apply(t, claim.ID, models.EventSubmit, mallory, models.StatusDraft)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown claim is not found", func(t *testing.T) {
		_, err := f.apply(t, "missing", models.EventSubmit, f.claimant, models.StatusDraft)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestEngineConcurrentApprovers(t *testing.T) {
	f := newFixture(t)
	claim := f.newClaim(t, f.claimant)
	if _, err := f.apply(t, claim.ID, models.EventSubmit, f.claimant, models.StatusDraft); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Both approvers read the claim as pending. A approves first.
	if _, err := f.apply(t, claim.ID, models.EventApprove, f.approver, models.StatusPendingApproval); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// B rejects against the stale read and must be told to refresh,
	// not that rejecting is illegal.
	_, err := f.apply(t, claim.ID, models.EventReject, f.approver, models.StatusPendingApproval)
	if !errors.Is(err, storage.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	// Retrying with the same stale expectation keeps failing the same way
	// and never duplicates a log entry.
	_, err = f.apply(t, claim.ID, models.EventReject, f.approver, models.StatusPendingApproval)
	if !errors.Is(err, storage.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification on retry, got %v", err)
	}
	if n := f.logLen(t, claim.ID); n != 2 {
		t.Errorf("expected 2 log entries (submit, approve), got %d", n)
	}
}

func TestEngineReturnAndResubmit(t *testing.T) {
	f := newFixture(t)
	claim := f.newClaim(t, f.claimant)
	ctx := context.Background()

	if _, err := f.apply(t, claim.ID, models.EventSubmit, f.claimant, models.StatusDraft); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	t.Run("approver returns to draft with a comment", func(t *testing.T) {
		got, err := f.engine.Apply(ctx, Request{
			ClaimID:        claim.ID,
			Event:          models.EventReturnToDraft,
			Actor:          f.approver,
			ExpectedStatus: models.StatusPendingApproval,
			Comment:        "missing receipt",
		})
		if err != nil {
			t.Fatalf("return_to_draft failed: %v", err)
		}
		if got.Status != models.StatusDraft {
			t.Fatalf("status = %q, want draft", got.Status)
		}

		entries, err := f.store.ListClaimLog(ctx, claim.ID, true)
		if err != nil {
			t.Fatalf("ListClaimLog failed: %v", err)
		}
		if entries[0].Comment != "missing receipt" {
			t.Errorf("comment not recorded: %+v", entries[0])
		}
	})

	t.Run("rejected claim can be resubmitted by its owner", func(t *testing.T) {
		if _, err := f.apply(t, claim.ID, models.EventSubmit, f.claimant, models.StatusDraft); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if _, err := f.apply(t, claim.ID, models.EventReject, f.approver, models.StatusPendingApproval); err != nil {
			t.Fatalf("reject failed: %v", err)
		}

		got, err := f.apply(t, claim.ID, models.EventResubmit, f.claimant, models.StatusRejected)
		if err != nil {
			t.Fatalf("resubmit failed: %v", err)
		}
		if got.Status != models.StatusDraft {
			t.Errorf("status = %q, want draft", got.Status)
		}
	})
}

func TestEngineDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("owner deletes own draft", func(t *testing.T) {
		claim := f.newClaim(t, f.claimant)
		got, err := f.apply(t, claim.ID, models.EventDelete, f.claimant, models.StatusDraft)
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil claim after delete, got %+v", got)
		}
		if _, err := f.store.GetClaim(ctx, claim.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("claim still present after delete: %v", err)
		}
	})

	t.Run("submitted claims cannot be deleted", func(t *testing.T) {
		claim := f.newClaim(t, f.claimant)
		if _, err := f.apply(t, claim.ID, models.EventSubmit, f.claimant, models.StatusDraft); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		_, err := f.apply(t, claim.ID, models.EventDelete, f.claimant, models.StatusPendingApproval)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestEngineAdminOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	paidClaim := func(t *testing.T) *models.Claim {
		claim := f.newClaim(t, f.claimant)
		for _, step := range []struct {
			event    models.Event
			actor    models.Actor
			expected models.ClaimStatus
		}{
			{models.EventSubmit, f.claimant, models.StatusDraft},
			{models.EventApprove, f.approver, models.StatusPendingApproval},
			{models.EventMarkPaid, f.finance, models.StatusApproved},
		} {
			if _, err := f.apply(t, claim.ID, step.event, step.actor, step.expected); err != nil {
				t.Fatalf("%s failed: %v", step.event, err)
			}
		}
		return claim
	}

	t.Run("override requires a reason", func(t *testing.T) {
		claim := paidClaim(t)
		_, err := f.engine.Apply(ctx, Request{
			ClaimID:        claim.ID,
			Event:          models.EventAdminOverride,
			Actor:          f.admin,
			ExpectedStatus: models.StatusPaid,
			OverrideTo:     models.StatusApproved,
		})
		if !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation without reason, got %v", err)
		}
	})

	t.Run("admin can move a paid claim back with a reason", func(t *testing.T) {
		claim := paidClaim(t)
		got, err := f.engine.Apply(ctx, Request{
			ClaimID:        claim.ID,
			Event:          models.EventAdminOverride,
			Actor:          f.admin,
			ExpectedStatus: models.StatusPaid,
			OverrideTo:     models.StatusApproved,
			Comment:        "payment bounced",
		})
		if err != nil {
			t.Fatalf("override failed: %v", err)
		}
		if got.Status != models.StatusApproved {
			t.Fatalf("status = %q, want approved", got.Status)
		}

		entries, err := f.store.ListClaimLog(ctx, claim.ID, true)
		if err != nil {
			t.Fatalf("ListClaimLog failed: %v", err)
		}
		if entries[0].Event != models.EventAdminOverride || entries[0].Comment != "payment bounced" {
			t.Errorf("override not audited: %+v", entries[0])
		}
	})

	t.Run("non-admin override is forbidden", func(t *testing.T) {
		claim := paidClaim(t)
		_, err := f.engine.Apply(ctx, Request{
			ClaimID:        claim.ID,
			Event:          models.EventAdminOverride,
			Actor:          f.approver,
			ExpectedStatus: models.StatusPaid,
			OverrideTo:     models.StatusApproved,
			Comment:        "sneaky",
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("target status outside override is rejected", func(t *testing.T) {
		claim := f.newClaim(t, f.claimant)
		_, err := f.engine.Apply(ctx, Request{
			ClaimID:        claim.ID,
			Event:          models.EventSubmit,
			Actor:          f.claimant,
			ExpectedStatus: models.StatusDraft,
			OverrideTo:     models.StatusPaid,
		})
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}
