// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"atelier/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for the token store.
var (
	// ErrRequestNotFound is returned when no record exists for a token.
	ErrRequestNotFound = errors.New("auth request not found")
	// ErrRequestConsumed is returned when the token was already used.
	ErrRequestConsumed = errors.New("auth request already consumed")
	// ErrRequestExpired is returned when the token's TTL has passed.
	ErrRequestExpired = errors.New("auth request has expired")
	// ErrRequestExists is returned when a record already exists for a token.
	ErrRequestExists = errors.New("auth request already exists")
)

// AuthRequestRepository is the durable token store for pending registration
// and sign-in requests. The token is the primary key.
type AuthRequestRepository interface {
	// Create persists a new pending request. It fails with ErrRequestExists
	// if a record already exists for the token.
	Create(ctx context.Context, request *entity.AuthRequest) error

	// Find returns the record for a token, or ErrRequestNotFound. Read-only;
	// it never transitions state. Used by the diagnostic surface.
	Find(ctx context.Context, token string) (*entity.AuthRequest, error)

	// Consume is the single state-transition entry point. In one conditional
	// update it moves a pending, unexpired request to completed, stamping
	// verifiedAt and requesterIP, and returns the preserved record.
	//
	// Failure modes, in check order:
	//   - ErrRequestNotFound if no record exists (including a racing reaper delete)
	//   - ErrRequestConsumed if the request is already completed
	//   - ErrRequestExpired if now is past expiresAt; the record is moved to
	//     expired as a side effect before the error is returned
	//
	// Two concurrent Consume calls on one token must never both succeed:
	// implementations must use a transactional read-modify-write, not a plain
	// read followed by a write.
	Consume(ctx context.Context, token string, now time.Time, requesterIP string) (*entity.AuthRequest, error)

	// ListExpired returns up to limit tokens whose expiresAt is before now,
	// regardless of status. Used by the reaper.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)

	// DeleteBatch removes the given tokens in a single all-or-nothing batch.
	// Callers keep len(tokens) within the store's per-batch write limit.
	DeleteBatch(ctx context.Context, tokens []string) error
}
