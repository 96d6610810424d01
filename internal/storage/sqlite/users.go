package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

const userColumns = "id, name, email, password_hash, role, active, created_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser persists a new user account.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	if user.Role == "" {
		user.Role = models.RoleClaimant
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Role, user.Active, user.CreatedAt,
	)
	return wrapErr("create user", err)
}

// GetUserByEmail retrieves a user by email (the login identifier).
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("get user by email", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("get user by id", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list users", err)
	}
	return users, nil
}

// SetUserRole changes a user's role.
func (s *SQLiteStore) SetUserRole(ctx context.Context, id string, role models.Role) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET role = ? WHERE id = ?", role, id)
	return s.requireRow("set user role", res, err, id)
}

// SetUserActive enables or disables an account.
func (s *SQLiteStore) SetUserActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET active = ? WHERE id = ?", active, id)
	return s.requireRow("set user active", res, err, id)
}

// requireRow turns a zero-row guarded update into ErrNotFound.
func (s *SQLiteStore) requireRow(op string, res sql.Result, err error, id string) error {
	if err != nil {
		return wrapErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, storage.ErrNotFound)
	}
	return nil
}

// CountUsers returns the number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	if err != nil {
		return 0, wrapErr("count users", err)
	}
	return n, nil
}
