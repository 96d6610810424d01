package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"claimdesk/internal/lifecycle"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

// ClaimService owns the claim use cases. All status changes go through the
// lifecycle engine; the service adds input validation and role-based
// visibility on top.
type ClaimService struct {
	store  storage.Store
	engine *lifecycle.Engine
}

// NewClaimService creates a ClaimService with the given storage backend and
// transition engine.
func NewClaimService(store storage.Store, engine *lifecycle.Engine) *ClaimService {
	return &ClaimService{store: store, engine: engine}
}

// ClaimInput carries the caller-editable claim attributes for create and
// draft-edit.
type ClaimInput struct {
	ProjectID   string
	Title       string
	Description string
	Hours       float64
	Amount      decimal.Decimal
	PeriodStart int64
	PeriodEnd   int64
}

// QueryParams selects claims for Query. Status and Keyword compose with AND.
type QueryParams struct {
	Status   models.ClaimStatus
	Keyword  string
	Page     int
	PageSize int
}

// ClaimPage is one page of query results plus the total match count for
// pagination controls.
type ClaimPage struct {
	Claims   []*models.Claim
	Total    int
	Page     int
	PageSize int
}

// Create makes a new draft claim owned by the actor. The project must exist
// and not be archived.
func (s *ClaimService) Create(ctx context.Context, actor models.Actor, in ClaimInput) (*models.Claim, error) {
	claim := &models.Claim{
		ClaimantID:   actor.ID,
		ClaimantName: actor.Name,
		ProjectID:    in.ProjectID,
		Title:        in.Title,
		Description:  in.Description,
		Hours:        in.Hours,
		Amount:       in.Amount,
		PeriodStart:  in.PeriodStart,
		PeriodEnd:    in.PeriodEnd,
		Status:       models.StatusDraft,
	}
	if err := claim.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	if err := s.store.CreateClaim(ctx, claim); err != nil {
		slog.Error("Create claim failed", "claimant_id", actor.ID, "error", err)
		return nil, err
	}

	slog.Info("Claim created", "claim_id", claim.ID, "claimant_id", actor.ID)
	return claim, nil
}

// Get retrieves one claim, enforcing visibility: claimants only see their own
// claims. A foreign claim reads as not found rather than forbidden, so claim
// IDs don't leak.
func (s *ClaimService) Get(ctx context.Context, actor models.Actor, claimID string) (*models.Claim, error) {
	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleClaimant && claim.ClaimantID != actor.ID {
		return nil, fmt.Errorf("claim %s: %w", claimID, storage.ErrNotFound)
	}
	return claim, nil
}

// Query lists claims visible to the actor, filtered and paginated.
func (s *ClaimService) Query(ctx context.Context, actor models.Actor, params QueryParams) (*ClaimPage, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, params.Status)
	}

	filter := storage.ClaimFilter{
		Status:   params.Status,
		Keyword:  params.Keyword,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	// Claimants are scoped to their own claims; the other roles see all.
	if actor.Role == models.RoleClaimant {
		filter.ClaimantID = actor.ID
	}

	claims, total, err := s.store.ListClaims(ctx, filter)
	if err != nil {
		slog.Error("Query claims failed", "actor_id", actor.ID, "error", err)
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	return &ClaimPage{Claims: claims, Total: total, Page: page, PageSize: size}, nil
}

// History returns a claim's audit trail, newest-first by default.
func (s *ClaimService) History(ctx context.Context, actor models.Actor, claimID string, newestFirst bool) ([]*models.ClaimLogEntry, error) {
	// Visibility piggybacks on Get.
	if _, err := s.Get(ctx, actor, claimID); err != nil {
		return nil, err
	}
	return s.store.ListClaimLog(ctx, claimID, newestFirst)
}

// Transition applies a lifecycle event to a claim on behalf of the actor.
func (s *ClaimService) Transition(ctx context.Context, actor models.Actor, claimID string, event models.Event, expected models.ClaimStatus, comment string, overrideTo models.ClaimStatus) (*models.Claim, error) {
	if !event.Valid() {
		return nil, fmt.Errorf("%w: unknown event %q", models.ErrValidation, event)
	}
	if !expected.Valid() {
		return nil, fmt.Errorf("%w: unknown expected status %q", models.ErrValidation, expected)
	}

	claim, err := s.engine.Apply(ctx, lifecycle.Request{
		ClaimID:        claimID,
		Event:          event,
		Actor:          actor,
		ExpectedStatus: expected,
		Comment:        comment,
		OverrideTo:     overrideTo,
	})
	if err != nil {
		slog.Warn("Transition rejected",
			"claim_id", claimID, "event", event, "actor_id", actor.ID, "error", err)
		return nil, err
	}

	if claim == nil {
		slog.Info("Claim deleted", "claim_id", claimID, "actor_id", actor.ID)
		return nil, nil
	}
	slog.Info("Transition applied",
		"claim_id", claim.ID, "event", event, "status", claim.Status, "actor_id", actor.ID)
	return claim, nil
}

// UpdateDraft rewrites the editable attributes of the actor's own draft
// claim. Edits outside draft are rejected as invalid transitions; the content
// of a submitted claim is frozen until an approver returns it.
func (s *ClaimService) UpdateDraft(ctx context.Context, actor models.Actor, claimID string, in ClaimInput) (*models.Claim, error) {
	claim, err := s.Get(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}
	if claim.ClaimantID != actor.ID {
		return nil, fmt.Errorf("claim %s belongs to another claimant: %w",
			claimID, lifecycle.ErrForbidden)
	}
	if claim.Status != models.StatusDraft {
		return nil, fmt.Errorf("cannot edit a %q claim: %w",
			claim.Status, lifecycle.ErrInvalidTransition)
	}

	claim.ProjectID = in.ProjectID
	claim.Title = in.Title
	claim.Description = in.Description
	claim.Hours = in.Hours
	claim.Amount = in.Amount
	claim.PeriodStart = in.PeriodStart
	claim.PeriodEnd = in.PeriodEnd
	if err := claim.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	if err := s.store.UpdateClaimAttributes(ctx, claim, models.StatusDraft); err != nil {
		return nil, err
	}
	slog.Info("Claim updated", "claim_id", claim.ID, "actor_id", actor.ID)
	return claim, nil
}

// checkProject verifies the project exists and accepts new claims.
func (s *ClaimService) checkProject(ctx context.Context, projectID string) error {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: unknown project %q", models.ErrValidation, projectID)
		}
		return err
	}
	if project.Archived {
		return fmt.Errorf("%w: project %q is archived", models.ErrValidation, project.Code)
	}
	return nil
}
