package service

import (
	"context"

	"github.com/pkg/errors"
)

// ErrIdentityUserNotFound is returned when no account exists for an email.
var ErrIdentityUserNotFound = errors.New("identity user not found")

// ErrIdentityUserExists is returned when account creation loses the race
// against a concurrent registration for the same email.
var ErrIdentityUserExists = errors.New("identity user already exists")

// IdentityUser is the provider's view of an account.
type IdentityUser struct {
	UID         string
	Email       string
	DisplayName string
}

// IdentityProvider is the managed authentication backend. Account creation
// is the authoritative uniqueness gate for emails; the orchestrators'
// existence pre-checks are advisory fast-fails only.
type IdentityProvider interface {
	// FindByEmail looks up an account, returning ErrIdentityUserNotFound
	// when none exists.
	FindByEmail(ctx context.Context, email string) (*IdentityUser, error)

	// CreateUser provisions a new account. Returns ErrIdentityUserExists if
	// the email is already taken.
	CreateUser(ctx context.Context, email, displayName string) (*IdentityUser, error)

	// MintSessionToken issues a short-lived credential the client exchanges
	// for a live session.
	MintSessionToken(ctx context.Context, uid string) (string, error)
}
