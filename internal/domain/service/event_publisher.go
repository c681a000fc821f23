package service

import (
	"context"
	"time"
)

// Auth event types published to the analytics side channel.
const (
	EventRegistrationCreated = "registration_created"
	EventSignInCreated       = "signin_created"
	EventRequestVerified     = "request_verified"
	EventCleanupCompleted    = "cleanup_completed"
)

// AuthEvent describes a milestone in the token handshake. Events are
// observability output only; no control flow depends on them and tokens
// never appear in them.
type AuthEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	Kind       string    `json:"kind,omitempty"`
	Email      string    `json:"email,omitempty"`
	Deleted    int       `json:"deleted,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publishes auth events to the configured channel.
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, event *AuthEvent) error
	Close() error
}
