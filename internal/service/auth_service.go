package service

import (
	"context"
	"fmt"
	"log/slog"

	"claimdesk/internal/auth"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

// AuthService owns registration, login and user administration.
type AuthService struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
}

// NewAuthService creates an AuthService.
func NewAuthService(store storage.Store, authenticator auth.Authenticator, jwt *auth.JWTManager) *AuthService {
	return &AuthService{store: store, authenticator: authenticator, jwt: jwt}
}

// Register creates a new account. The very first registered user becomes the
// admin so a fresh deployment can be bootstrapped; everyone after that starts
// as a claimant and is promoted by an admin.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	role := models.RoleClaimant
	if count == 0 {
		role = models.RoleAdmin
	}

	user, err := s.authenticator.Register(ctx, email, name, password, role)
	if err != nil {
		slog.Warn("Registration failed", "email", email, "error", err)
		return nil, err
	}
	slog.Info("User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login authenticates the user and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, "", err
	}
	slog.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}

// ListUsers returns all accounts (admin only, enforced at the router).
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

// SetRole changes a user's role.
func (s *AuthService) SetRole(ctx context.Context, userID string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", models.ErrValidation, role)
	}
	if err := s.store.SetUserRole(ctx, userID, role); err != nil {
		return err
	}
	slog.Info("User role changed", "user_id", userID, "role", role)
	return nil
}

// SetActive enables or disables an account. Disabled accounts cannot log in
// and existing tokens stop working on the next request.
func (s *AuthService) SetActive(ctx context.Context, userID string, active bool) error {
	if err := s.store.SetUserActive(ctx, userID, active); err != nil {
		return err
	}
	slog.Info("User active flag changed", "user_id", userID, "active", active)
	return nil
}
