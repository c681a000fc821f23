package entity

import (
	"time"
)

// UserProfile is the application profile document keyed by the identity
// provider's user id. This service only creates the document on a first
// successful registration and touches the login metadata on later sign-ins;
// the rest of its lifecycle belongs to the application.
type UserProfile struct {
	UID         string    // Identity provider user id, also the document id.
	Email       string    // The address the account was verified against.
	Name        string    // Display name captured at registration time.
	CreatedAt   time.Time // When the profile was first written.
	LastLoginAt time.Time // Updated on every verified sign-in.
	LoginCount  int       // Number of verified sign-ins, including the first.
	LastLoginIP string    // Origin of the most recent verification, audit only.
}
