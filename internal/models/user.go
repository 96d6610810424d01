package models

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name shown on claims and audit entries.
	Name string

	// Email is the login identifier (unique).
	Email string

	// PasswordHash is the bcrypt hash of the password. Never serialized
	// outward.
	PasswordHash string

	// Role determines which transitions the user may trigger.
	Role Role

	// Active is false for deactivated accounts; they cannot log in and
	// their tokens stop being honored on the next request.
	Active bool

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// Actor returns the acting identity for this user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Project is a cost target that claims are booked against.
type Project struct {
	// ID is the unique identifier for the project (UUID format).
	ID string

	// Name is the display name (e.g., "Website Relaunch").
	Name string

	// Code is a short unique handle used in reports (e.g., "WEB-24").
	Code string

	// Archived projects are kept for history but accept no new claims.
	Archived bool

	// CreatedAt is the Unix timestamp when the project was created.
	CreatedAt int64
}
