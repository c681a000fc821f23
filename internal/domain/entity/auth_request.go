// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// RequestKind distinguishes a first-time registration from a returning
// user requesting a fresh session. Both kinds share one record shape and
// one state machine.
type RequestKind string

const (
	// KindRegistration marks a request created for a new account.
	KindRegistration RequestKind = "registration"
	// KindSignIn marks a request created for an existing account.
	KindSignIn RequestKind = "signIn"
)

// TokenParam returns the deep-link query parameter name carrying tokens of
// this kind ("registrationToken" or "signInToken").
func (k RequestKind) TokenParam() string {
	return string(k) + "Token"
}

// RequestStatus is the state of a pending auth request.
type RequestStatus string

const (
	// StatusPending is the initial state. Only pending requests can be consumed.
	StatusPending RequestStatus = "pending"
	// StatusCompleted is terminal; the token was consumed exactly once.
	StatusCompleted RequestStatus = "completed"
	// StatusExpired is terminal; the request outlived its TTL unconsumed.
	StatusExpired RequestStatus = "expired"
)

// AuthRequest is a pending cross-device registration or sign-in handshake.
// The token doubles as the record's primary key, so uniqueness is structural.
// The record is written once, transitioned at most once by a conditional
// update, and finally removed by the reaper.
type AuthRequest struct {
	Token       string        // Opaque, unguessable identifier and primary key.
	Email       string        // Normalized email address of the requester.
	DisplayName string        // Human name; only set for registration requests.
	ContinueURL string        // Client-supplied redirect target, opaque to this service.
	Kind        RequestKind   // registration or signIn.
	Status      RequestStatus // pending, completed or expired.
	CreatedAt   time.Time     // When the request was created.
	ExpiresAt   time.Time     // CreatedAt plus the configured TTL.
	VerifiedAt  *time.Time    // When the token was consumed; nil until completed.
	RequesterIP string        // Origin of the verifying call, recorded for audit only.
}

// NewAuthRequest builds a pending request with its expiry derived from now.
func NewAuthRequest(token, email, displayName, continueURL string, kind RequestKind, now time.Time, ttl time.Duration) *AuthRequest {
	return &AuthRequest{
		Token:       token,
		Email:       email,
		DisplayName: displayName,
		ContinueURL: continueURL,
		Kind:        kind,
		Status:      StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// ExpiredAt reports whether the request's TTL has passed at the given instant.
func (r *AuthRequest) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
