package repository

import (
	"context"
	"time"

	"atelier/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrProfileNotFound is returned when no profile document exists for a uid.
var ErrProfileNotFound = errors.New("user profile not found")

// ProfileRepository touches the application profile store as a side effect
// of successful verification. This service does not own profile lifecycle
// beyond the create-or-touch below.
type ProfileRepository interface {
	// Find returns the profile for an identity provider uid.
	Find(ctx context.Context, uid string) (*entity.UserProfile, error)

	// Create writes a fresh profile document after a verified registration.
	Create(ctx context.Context, profile *entity.UserProfile) error

	// RecordLogin updates lastLoginAt, lastLoginIP and the login counter on
	// an existing profile after a verified sign-in.
	RecordLogin(ctx context.Context, uid string, at time.Time, ip string) error
}
