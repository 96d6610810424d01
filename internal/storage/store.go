// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"claimdesk/internal/models"
)

// Domain error sentinels raised by stores. Callers match with errors.Is.
var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification means the caller's expected claim status no
	// longer matches the stored one; the caller must re-read before retrying.
	ErrConcurrentModification = errors.New("claim was modified concurrently")

	// ErrDuplicate means a uniqueness constraint was violated
	// (email, project code).
	ErrDuplicate = errors.New("already exists")

	// ErrUnavailable means the backing database failed for reasons unrelated
	// to the request. Distinct from the domain errors above; callers may
	// retry with backoff.
	ErrUnavailable = errors.New("storage unavailable")
)

// ClaimFilter selects claims for list queries. Zero values mean "no
// constraint". Filters compose with logical AND.
type ClaimFilter struct {
	// ClaimantID restricts results to one owner. Set for claimant-role
	// callers; empty for roles that see all claims.
	ClaimantID string

	// Status is an exact-match status filter.
	Status models.ClaimStatus

	// Keyword is matched case-insensitively as a substring of the claim
	// title and the claimant name.
	Keyword string

	// Page is 1-based; PageSize bounds the result slice. Page 0 and
	// PageSize 0 fall back to defaults.
	Page     int
	PageSize int
}

// Store defines the interface for claim, audit, user and project persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// --- Claims ---

	// CreateClaim persists a new claim. ID, CreatedAt and UpdatedAt are
	// populated by the store if unset.
	CreateClaim(ctx context.Context, claim *models.Claim) error

	// GetClaim retrieves a claim by ID. Returns ErrNotFound if absent.
	GetClaim(ctx context.Context, claimID string) (*models.Claim, error)

	// TransitionClaim atomically moves a claim from expected to entry.ToStatus
	// and appends the audit entry, as one unit: either both are visible or
	// neither. Fails with ErrNotFound if the claim is absent and
	// ErrConcurrentModification if the stored status differs from expected.
	TransitionClaim(ctx context.Context, claimID string, expected models.ClaimStatus, entry *models.ClaimLogEntry) (*models.Claim, error)

	// UpdateClaimAttributes rewrites the editable fields (title, description,
	// hours, amount, period, project) of a claim, guarded by the expected
	// status. Status itself is never touched here.
	UpdateClaimAttributes(ctx context.Context, claim *models.Claim, expected models.ClaimStatus) error

	// DeleteClaim removes a claim outright, guarded by the expected status.
	// Only draft claims are ever physically deleted; everything else is
	// archived through a status change.
	DeleteClaim(ctx context.Context, claimID string, expected models.ClaimStatus) error

	// ListClaims returns the page of claims matching the filter, ordered by
	// UpdatedAt descending, plus the total match count for pagination.
	ListClaims(ctx context.Context, filter ClaimFilter) ([]*models.Claim, int, error)

	// --- Audit trail ---

	// ListClaimLog returns a claim's audit entries ordered oldest-first, or
	// newest-first when newestFirst is set.
	ListClaimLog(ctx context.Context, claimID string, newestFirst bool) ([]*models.ClaimLogEntry, error)

	// --- Users ---

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// SetUserRole changes a user's role.
	SetUserRole(ctx context.Context, id string, role models.Role) error

	// SetUserActive enables or disables an account.
	SetUserActive(ctx context.Context, id string, active bool) error

	// CountUsers returns the number of registered users (used for first-user
	// admin bootstrap).
	CountUsers(ctx context.Context) (int, error)

	// --- Projects ---

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, includeArchived bool) ([]*models.Project, error)
	SetProjectArchived(ctx context.Context, id string, archived bool) error

	// Close releases any resources held by the store.
	Close() error
}
