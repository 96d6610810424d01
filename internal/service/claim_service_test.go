package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"claimdesk/internal/lifecycle"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
	"claimdesk/internal/storage/sqlite"
)

type testEnv struct {
	store    *sqlite.SQLiteStore
	claims   *ClaimService
	claimant models.Actor
	other    models.Actor
	approver models.Actor
	project  *models.Project
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "claimdesk-svc-*")
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

	return &testEnv{
		store:    store,
		claims:   NewClaimService(store, lifecycle.NewEngine(store, nil)),
		claimant: mkActor("Alice", "alice@example.com", models.RoleClaimant),
		other:    mkActor("Bob", "bob@example.com", models.RoleClaimant),
		approver: mkActor("Boss", "boss@example.com", models.RoleApprover),
		project:  project,
	}
}

func validInput(e *testEnv) ClaimInput {
	return ClaimInput{
		ProjectID: e.project.ID,
		Title:     "Weekend overtime",
		Hours:     8,
		Amount:    decimal.NewFromInt(100),
	}
}

func TestCreateClaim(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	t.Run("creates a draft owned by the actor", func(t *testing.T) {
		claim, err := e.claims.Create(ctx, e.claimant, validInput(e))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if claim.Status != models.StatusDraft {
			t.Errorf("status = %q, want draft", claim.Status)
		}
		if claim.ClaimantID != e.claimant.ID || claim.ClaimantName != e.claimant.Name {
			t.Errorf("ownership not set from actor: %+v", claim)
		}
	})

	t.Run("negative hours fail validation", func(t *testing.T) {
		in := validInput(e)
		in.Hours = -1
		if _, err := e.claims.Create(ctx, e.claimant, in); !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("negative amount fails validation", func(t *testing.T) {
		in := validInput(e)
		in.Amount = decimal.NewFromInt(-5)
		if _, err := e.claims.Create(ctx, e.claimant, in); !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("unknown project fails validation", func(t *testing.T) {
		in := validInput(e)
		in.ProjectID = "nope"
		if _, err := e.claims.Create(ctx, e.claimant, in); !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("archived project rejects new claims", func(t *testing.T) {
		archived := &models.Project{Name: "Legacy", Code: "OLD"}
		if err := e.store.CreateProject(ctx, archived); err != nil {
			t.Fatalf("CreateProject failed: %v", err)
		}
		if err := e.store.SetProjectArchived(ctx, archived.ID, true); err != nil {
			t.Fatalf("SetProjectArchived failed: %v", err)
		}

		in := validInput(e)
		in.ProjectID = archived.ID
		if _, err := e.claims.Create(ctx, e.claimant, in); !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestVisibility(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// Alice: one draft, one approved. Bob: one draft.
	aliceDraft, err := e.claims.Create(ctx, e.claimant, validInput(e))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	aliceApproved, err := e.claims.Create(ctx, e.claimant, validInput(e))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, step := range []struct {
		event    models.Event
		actor    models.Actor
		expected models.ClaimStatus
	}{
		{models.EventSubmit, e.claimant, models.StatusDraft},
		{models.EventApprove, e.approver, models.StatusPendingApproval},
	} {
		if _, err := e.claims.Transition(ctx, step.actor, aliceApproved.ID, step.event, step.expected, "", ""); err != nil {
			t.Fatalf("%s failed: %v", step.event, err)
		}
	}
	bobDraft, err := e.claims.Create(ctx, e.other, validInput(e))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("claimant status filter only returns own claims", func(t *testing.T) {
		page, err := e.claims.Query(ctx, e.claimant, QueryParams{Status: models.StatusDraft})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if page.Total != 1 || len(page.Claims) != 1 {
			t.Fatalf("expected exactly 1 claim, got total=%d len=%d", page.Total, len(page.Claims))
		}
		if page.Claims[0].ID != aliceDraft.ID {
			t.Errorf("got claim %s, want Alice's draft %s", page.Claims[0].ID, aliceDraft.ID)
		}
	})

	t.Run("approver sees all claims", func(t *testing.T) {
		page, err := e.claims.Query(ctx, e.approver, QueryParams{})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if page.Total != 3 {
			t.Errorf("expected total 3, got %d", page.Total)
		}
	})

	t.Run("claimant cannot fetch a foreign claim", func(t *testing.T) {
		if _, err := e.claims.Get(ctx, e.claimant, bobDraft.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for foreign claim, got %v", err)
		}
	})

	t.Run("claimant cannot read a foreign claim's history", func(t *testing.T) {
		if _, err := e.claims.History(ctx, e.claimant, bobDraft.ID, true); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for foreign history, got %v", err)
		}
	})

	t.Run("approver reads any history", func(t *testing.T) {
		entries, err := e.claims.History(ctx, e.approver, aliceApproved.ID, false)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 entries (submit, approve), got %d", len(entries))
		}
	})

	t.Run("unknown status filter fails validation", func(t *testing.T) {
		if _, err := e.claims.Query(ctx, e.approver, QueryParams{Status: "done"}); !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestUpdateDraft(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	t.Run("owner edits a draft", func(t *testing.T) {
		claim, err := e.claims.Create(ctx, e.claimant, validInput(e))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		in := validInput(e)
		in.Title = "Corrected title"
		in.Amount = decimal.RequireFromString("250.50")
		updated, err := e.claims.UpdateDraft(ctx, e.claimant, claim.ID, in)
		if err != nil {
			t.Fatalf("UpdateDraft failed: %v", err)
		}
		if updated.Title != "Corrected title" || !updated.Amount.Equal(decimal.RequireFromString("250.50")) {
			t.Errorf("edit not applied: %+v", updated)
		}
	})

	t.Run("submitted claims are frozen", func(t *testing.T) {
		claim, err := e.claims.Create(ctx, e.claimant, validInput(e))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := e.claims.Transition(ctx, e.claimant, claim.ID, models.EventSubmit, models.StatusDraft, "", ""); err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		_, err = e.claims.UpdateDraft(ctx, e.claimant, claim.ID, validInput(e))
		if !errors.Is(err, lifecycle.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("foreign drafts read as not found", func(t *testing.T) {
		claim, err := e.claims.Create(ctx, e.other, validInput(e))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		_, err = e.claims.UpdateDraft(ctx, e.claimant, claim.ID, validInput(e))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
