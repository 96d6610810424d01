package auth

import (
	"context"

	"claimdesk/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// SSO, etc.) without changing the handlers.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	// The role is assigned server-side by the caller, never taken from the
	// client.
	Register(ctx context.Context, email, displayName, credential string, role models.Role) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if
	// successful. Deactivated accounts fail authentication.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's
	// requirements.
	ValidateCredential(credential string) error
}
