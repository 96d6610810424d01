package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrValidation is wrapped by every input-validation failure on a model.
// Callers match it with errors.Is.
var ErrValidation = errors.New("validation failed")

// Claim represents one overtime/expense request.
// Status is mutated only by the lifecycle engine; everything else is set at
// creation and may be edited while the claim is still in draft.
type Claim struct {
	// ID is the unique identifier for the claim (UUID format).
	// Immutable after creation.
	ID string

	// ClaimantID is the user who owns the claim. Ownership never transfers.
	ClaimantID string

	// ClaimantName is the owner's display name, denormalized onto the claim
	// so list views and keyword search don't need a join per row.
	ClaimantName string

	// ProjectID references the project the claim is booked against.
	ProjectID string

	// Title is the short human-readable summary of the claim.
	Title string

	// Description is optional free text.
	Description string

	// Hours is the overtime worked. Zero for pure expense claims.
	Hours float64

	// Amount is the monetary value claimed.
	Amount decimal.Decimal

	// PeriodStart and PeriodEnd bound the time range the claim covers,
	// as Unix timestamps. Both zero means "no explicit range".
	PeriodStart int64
	PeriodEnd   int64

	// Status is the current lifecycle state.
	Status ClaimStatus

	// CreatedAt is the Unix timestamp when the claim was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last accepted mutation.
	UpdatedAt int64
}

// Validate checks the creation/edit invariants: non-empty title, non-negative
// hours and amount, a coherent period. Status and identity fields are not
// checked here; they belong to the store and the lifecycle engine.
func (c *Claim) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if c.ProjectID == "" {
		return fmt.Errorf("%w: project is required", ErrValidation)
	}
	if c.Hours < 0 {
		return fmt.Errorf("%w: hours must not be negative", ErrValidation)
	}
	if c.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if c.PeriodStart > c.PeriodEnd {
		return fmt.Errorf("%w: period start is after period end", ErrValidation)
	}
	return nil
}

// Actor is the identity performing an action on a claim. It is derived from
// the verified session token, never from client-supplied fields.
type Actor struct {
	ID   string
	Name string
	Role Role
}
