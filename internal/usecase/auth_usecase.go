// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"atelier/internal/domain/entity"
)

// --- Input DTOs ---

// CreateRegistrationInput defines the data required to start a registration.
type CreateRegistrationInput struct {
	Email       string
	Name        string
	ContinueURL string
}

// CreateSignInInput defines the data required to request a sign-in link for
// an existing account. The display name is deliberately absent: it is read
// back from the account, never trusted from the caller.
type CreateSignInInput struct {
	Email       string
	ContinueURL string
}

// VerifyInput identifies the token being consumed and where the consuming
// call came from.
type VerifyInput struct {
	Token       string
	RequesterIP string
}

// --- Output DTOs ---

// CreateRequestOutput acknowledges a created request. Token carries the raw
// token for the caller; whether it is ever exposed over HTTP is the
// delivery layer's decision.
type CreateRequestOutput struct {
	Token     string
	ExpiresAt time.Time
}

// VerifyOutput is the result of consuming a token: the preserved request
// data plus a freshly minted session credential.
type VerifyOutput struct {
	Email        string
	Name         string
	ContinueURL  string
	Kind         entity.RequestKind
	UID          string
	SessionToken string
	VerifiedAt   time.Time
}

// CleanupOutput reports how many stale records a reaper run removed.
type CleanupOutput struct {
	Deleted int
}

// AuthRequestUsecase creates pending registration and sign-in requests.
type AuthRequestUsecase interface {
	// CreateRegistration validates the input, rejects emails that already
	// have an account, persists a pending request and dispatches the
	// verification email.
	CreateRegistration(ctx context.Context, input *CreateRegistrationInput) (*CreateRequestOutput, error)

	// CreateSignInRequest is the parallel flow for existing accounts.
	CreateSignInRequest(ctx context.Context, input *CreateSignInInput) (*CreateRequestOutput, error)
}

// VerificationUsecase consumes tokens and bridges them into sessions.
type VerificationUsecase interface {
	// VerifyToken consumes a token at most once, reconciles the identity
	// provider and profile store, and mints a session credential.
	VerifyToken(ctx context.Context, input *VerifyInput) (*VerifyOutput, error)

	// InspectToken returns the current record for a token without touching
	// its state. Diagnostic surface only.
	InspectToken(ctx context.Context, token string) (*entity.AuthRequest, error)
}

// CleanupUsecase is the expiry reaper.
type CleanupUsecase interface {
	// CleanupExpired deletes stale records in bounded batches and returns
	// the number removed. Idempotent.
	CleanupExpired(ctx context.Context) (*CleanupOutput, error)
}
