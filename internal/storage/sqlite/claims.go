package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

const claimColumns = `id, claimant_id, claimant_name, project_id, title, description,
	hours, amount, period_start, period_end, status, created_at, updated_at`

// scanClaim reads one claim row. The amount column is TEXT holding a decimal
// string.
func scanClaim(row interface{ Scan(...any) error }) (*models.Claim, error) {
	claim := &models.Claim{}
	var amount string
	err := row.Scan(
		&claim.ID, &claim.ClaimantID, &claim.ClaimantName, &claim.ProjectID,
		&claim.Title, &claim.Description, &claim.Hours, &amount,
		&claim.PeriodStart, &claim.PeriodEnd, &claim.Status,
		&claim.CreatedAt, &claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	claim.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for claim %s: %w", claim.ID, err)
	}
	return claim, nil
}

// CreateClaim persists a new claim to the database.
func (s *SQLiteStore) CreateClaim(ctx context.Context, claim *models.Claim) error {
	// Generate identity and timestamps if not set
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if claim.CreatedAt == 0 {
		claim.CreatedAt = now
	}
	if claim.UpdatedAt == 0 {
		claim.UpdatedAt = claim.CreatedAt
	}
	if claim.Status == "" {
		claim.Status = models.StatusDraft
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (`+claimColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		claim.ID, claim.ClaimantID, claim.ClaimantName, claim.ProjectID,
		claim.Title, claim.Description, claim.Hours, claim.Amount.String(),
		claim.PeriodStart, claim.PeriodEnd, claim.Status,
		claim.CreatedAt, claim.UpdatedAt,
	)
	return wrapErr("create claim", err)
}

// GetClaim retrieves a claim by ID.
func (s *SQLiteStore) GetClaim(ctx context.Context, claimID string) (*models.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = ?`, claimID)
	claim, err := scanClaim(row)
	if err != nil {
		return nil, wrapErr("get claim", err)
	}
	return claim, nil
}

// TransitionClaim applies a status change and its audit entry in one
// transaction. The UPDATE is guarded by the expected status, so a concurrent
// writer that got there first makes this call fail with
// ErrConcurrentModification instead of silently overwriting.
func (s *SQLiteStore) TransitionClaim(ctx context.Context, claimID string, expected models.ClaimStatus, entry *models.ClaimLogEntry) (*models.Claim, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("transition claim", err)
	}
	defer tx.Rollback()

	var current models.ClaimStatus
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM claims WHERE id = ?", claimID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition claim %s: %w", claimID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("transition claim", err)
	}
	if current != expected {
		return nil, fmt.Errorf("transition claim %s: status is %q, expected %q: %w",
			claimID, current, expected, storage.ErrConcurrentModification)
	}

	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	// Per-claim timestamp monotonicity: never record a transition earlier
	// than the previous one, even if the wall clock stepped backwards.
	var prev int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(created_at), 0) FROM claim_log WHERE claim_id = ?", claimID,
	).Scan(&prev)
	if err != nil {
		return nil, wrapErr("transition claim", err)
	}
	if entry.CreatedAt < prev {
		entry.CreatedAt = prev
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE claims SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		entry.ToStatus, entry.CreatedAt, claimID, expected,
	)
	if err != nil {
		return nil, wrapErr("transition claim", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, wrapErr("transition claim", err)
	}
	if n != 1 {
		return nil, fmt.Errorf("transition claim %s: %w", claimID, storage.ErrConcurrentModification)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO claim_log (claim_id, from_status, to_status, event,
		     actor_id, actor_name, actor_role, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ClaimID, entry.FromStatus, entry.ToStatus, entry.Event,
		entry.ActorID, entry.ActorName, entry.ActorRole, entry.Comment, entry.CreatedAt,
	)
	if err != nil {
		return nil, wrapErr("append claim log", err)
	}
	if entry.Seq, err = result.LastInsertId(); err != nil {
		return nil, wrapErr("append claim log", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapErr("transition claim", err)
	}

	return s.GetClaim(ctx, claimID)
}

// UpdateClaimAttributes rewrites the editable fields of a claim, guarded by
// the expected status so an edit racing a submit fails instead of reviving a
// submitted claim's draft content.
func (s *SQLiteStore) UpdateClaimAttributes(ctx context.Context, claim *models.Claim, expected models.ClaimStatus) error {
	claim.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE claims SET project_id = ?, title = ?, description = ?, hours = ?,
		     amount = ?, period_start = ?, period_end = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		claim.ProjectID, claim.Title, claim.Description, claim.Hours,
		claim.Amount.String(), claim.PeriodStart, claim.PeriodEnd, claim.UpdatedAt,
		claim.ID, expected,
	)
	if err != nil {
		return wrapErr("update claim", err)
	}
	return s.guardedResult(ctx, "update claim", res, claim.ID)
}

// DeleteClaim removes a claim row, guarded by the expected status.
func (s *SQLiteStore) DeleteClaim(ctx context.Context, claimID string, expected models.ClaimStatus) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM claims WHERE id = ? AND status = ?", claimID, expected)
	if err != nil {
		return wrapErr("delete claim", err)
	}
	return s.guardedResult(ctx, "delete claim", res, claimID)
}

// guardedResult distinguishes "claim absent" from "status was stale" after a
// guarded UPDATE/DELETE that affected no rows.
func (s *SQLiteStore) guardedResult(ctx context.Context, op string, res sql.Result, claimID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM claims WHERE id = ?", claimID).Scan(&exists)
	if err != nil {
		return wrapErr(op, err)
	}
	if exists == 0 {
		return fmt.Errorf("%s %s: %w", op, claimID, storage.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, claimID, storage.ErrConcurrentModification)
}

// ListClaims returns one page of claims matching the filter plus the total
// match count.
func (s *SQLiteStore) ListClaims(ctx context.Context, filter storage.ClaimFilter) ([]*models.Claim, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.ClaimantID != "" {
		where = append(where, "claimant_id = ?")
		args = append(args, filter.ClaimantID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Keyword != "" {
		kw := "%" + strings.ToLower(filter.Keyword) + "%"
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(claimant_name) LIKE ?)")
		args = append(args, kw, kw)
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM claims WHERE "+cond, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, wrapErr("count claims", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	args = append(args, size, (page-1)*size)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE `+cond+`
		 ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, wrapErr("list claims", err)
	}
	defer rows.Close()

	var claims []*models.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, 0, wrapErr("scan claim", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("list claims", err)
	}
	return claims, total, nil
}

// ListClaimLog returns a claim's audit entries ordered by sequence number.
func (s *SQLiteStore) ListClaimLog(ctx context.Context, claimID string, newestFirst bool) ([]*models.ClaimLogEntry, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, claim_id, from_status, to_status, event,
		     actor_id, actor_name, actor_role, comment, created_at
		 FROM claim_log WHERE claim_id = ? ORDER BY seq `+order, claimID)
	if err != nil {
		return nil, wrapErr("list claim log", err)
	}
	defer rows.Close()

	var entries []*models.ClaimLogEntry
	for rows.Next() {
		entry := &models.ClaimLogEntry{}
		err := rows.Scan(
			&entry.Seq, &entry.ClaimID, &entry.FromStatus, &entry.ToStatus,
			&entry.Event, &entry.ActorID, &entry.ActorName, &entry.ActorRole,
			&entry.Comment, &entry.CreatedAt,
		)
		if err != nil {
			return nil, wrapErr("scan claim log", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list claim log", err)
	}
	return entries, nil
}
