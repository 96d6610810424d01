package lifecycle

import (
	"context"
	"fmt"

	"claimdesk/internal/events"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

// Request carries one transition attempt. ExpectedStatus is the status the
// caller last read; a mismatch against the stored status fails the attempt
// instead of overwriting a concurrent writer.
type Request struct {
	ClaimID        string
	Event          models.Event
	Actor          models.Actor
	ExpectedStatus models.ClaimStatus

	// Comment is optional for most events, required for admin override.
	Comment string

	// OverrideTo is the target status for EventAdminOverride and must be
	// empty for every other event.
	OverrideTo models.ClaimStatus
}

// Engine applies status transitions. It is the only code path that mutates a
// claim's status; handlers and services go through Apply.
type Engine struct {
	store storage.Store
	bus   *events.Bus
}

// NewEngine creates a transition engine. bus may be nil if nobody listens.
func NewEngine(store storage.Store, bus *events.Bus) *Engine {
	return &Engine{store: store, bus: bus}
}

// Apply validates and executes one transition.
//
// Checks run in this order: claim existence, staleness of the caller's
// expected status, legality of (status, event), actor permission, ownership.
// Only when all pass does the store commit the status change and the audit
// entry as one transaction. The returned claim reflects the new state; for
// EventDelete the claim is gone and the returned claim is nil.
func (e *Engine) Apply(ctx context.Context, req Request) (*models.Claim, error) {
	claim, err := e.store.GetClaim(ctx, req.ClaimID)
	if err != nil {
		return nil, err
	}

	// Staleness first: a caller acting on an outdated read should be told to
	// refresh, not that their (now nonsensical) transition is illegal.
	if req.ExpectedStatus != claim.Status {
		return nil, fmt.Errorf("claim %s is %q, expected %q: %w",
			claim.ID, claim.Status, req.ExpectedStatus, storage.ErrConcurrentModification)
	}

	target, err := e.resolveTarget(claim, req)
	if err != nil {
		return nil, err
	}

	if !Allowed(req.Actor.Role, claim.Status, req.Event) {
		return nil, fmt.Errorf("role %q may not %q a %q claim: %w",
			req.Actor.Role, req.Event, claim.Status, ErrForbidden)
	}

	// Claimant actions only apply to the claimant's own claims.
	if req.Actor.Role == models.RoleClaimant && claim.ClaimantID != req.Actor.ID {
		return nil, fmt.Errorf("claim %s belongs to another claimant: %w",
			claim.ID, ErrForbidden)
	}

	if req.Event == models.EventDelete {
		if err := e.store.DeleteClaim(ctx, claim.ID, claim.Status); err != nil {
			return nil, err
		}
		return nil, nil
	}

	entry := &models.ClaimLogEntry{
		ClaimID:    claim.ID,
		FromStatus: claim.Status,
		ToStatus:   target,
		Event:      req.Event,
		ActorID:    req.Actor.ID,
		ActorName:  req.Actor.Name,
		ActorRole:  req.Actor.Role,
		Comment:    req.Comment,
	}

	updated, err := e.store.TransitionClaim(ctx, claim.ID, claim.Status, entry)
	if err != nil {
		return nil, err
	}

	if e.bus != nil {
		e.bus.Publish(events.Transition{
			ClaimID: updated.ID,
			From:    entry.FromStatus,
			To:      entry.ToStatus,
		})
	}
	return updated, nil
}

// resolveTarget determines the destination status for the request, validating
// event-specific inputs along the way.
func (e *Engine) resolveTarget(claim *models.Claim, req Request) (models.ClaimStatus, error) {
	if req.Event == models.EventAdminOverride {
		// Overrides bypass the table (terminal states included) but are
		// still role-gated by Allowed and must state a reason.
		if req.Comment == "" {
			return "", fmt.Errorf("%w: admin override requires a reason", models.ErrValidation)
		}
		if !req.OverrideTo.Valid() {
			return "", fmt.Errorf("%w: unknown override target status %q",
				models.ErrValidation, req.OverrideTo)
		}
		if req.OverrideTo == claim.Status {
			return "", fmt.Errorf("claim %s is already %q: %w",
				claim.ID, claim.Status, ErrInvalidTransition)
		}
		return req.OverrideTo, nil
	}

	if req.OverrideTo != "" {
		return "", fmt.Errorf("%w: target status is only valid for admin override",
			models.ErrValidation)
	}
	target, ok := Target(claim.Status, req.Event)
	if !ok {
		return "", fmt.Errorf("cannot %q a %q claim: %w",
			req.Event, claim.Status, ErrInvalidTransition)
	}
	return target, nil
}
