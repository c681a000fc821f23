// Package client is the application-side counterpart of the token
// handshake: it spots a registration or sign-in token arriving on a deep
// link, exchanges it with the service for a session, and scrubs the token
// from the visible URL.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"atelier/internal/domain/entity"

	"github.com/pkg/errors"
)

// Typed handshake failures, one per stable error code the service returns.
// Each maps to a distinct retry affordance in the UI.
var (
	// ErrInvalidToken means no request exists for the token. The user
	// starts the flow over.
	ErrInvalidToken = errors.New("token is not valid")

	// ErrTokenExpired means the link outlived its TTL. The user requests a
	// fresh link.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenAlreadyUsed means the token was consumed before, possibly on
	// another device. Not an attack in the retry-after-timeout case.
	ErrTokenAlreadyUsed = errors.New("token was already used")
)

// NetworkError wraps transport failures so callers can tell "the service
// said no" apart from "the service was unreachable". The latter is safely
// retried: an unconsumed token stays pending.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Session is the outcome of a successful verification.
type Session struct {
	Email        string
	Name         string
	ContinueURL  string
	Kind         entity.RequestKind
	UID          string
	SessionToken string
	VerifiedAt   time.Time
}

// Result is what handling a URL produced: the cleaned URL always, plus the
// session when a token was present and verified.
type Result struct {
	// URL is the input URL with any token parameter removed.
	URL string

	// Session is nil when the URL carried no token.
	Session *Session
}

const defaultTimeout = 15 * time.Second

// Client talks to the auth service's verify endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// New creates a client for the auth service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TokenFromURL extracts a handshake token from a deep-link URL. ok is false
// when the URL carries neither token parameter.
func TokenFromURL(rawURL string) (token string, kind entity.RequestKind, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}

	query := u.Query()
	for _, k := range []entity.RequestKind{entity.KindRegistration, entity.KindSignIn} {
		if value := query.Get(k.TokenParam()); value != "" {
			return value, k, true
		}
	}

	return "", "", false
}

// StripToken removes both token parameters from a URL, leaving everything
// else intact. Tokens must not linger in browser history or referrers.
func StripToken(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse url")
	}

	query := u.Query()
	query.Del(entity.KindRegistration.TokenParam())
	query.Del(entity.KindSignIn.TokenParam())
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// HandleURL inspects a deep-link URL and, when it carries a token, verifies
// it and returns the minted session alongside the stripped URL. A URL
// without a token is a no-op, which makes a second pass over an
// already-stripped URL safe.
func (c *Client) HandleURL(ctx context.Context, rawURL string) (*Result, error) {
	token, _, ok := TokenFromURL(rawURL)
	if !ok {
		return &Result{URL: rawURL}, nil
	}

	stripped, err := StripToken(rawURL)
	if err != nil {
		return nil, err
	}

	session, err := c.Verify(ctx, token)
	if err != nil {
		// The token leaves the URL even on failure.
		return &Result{URL: stripped}, err
	}

	return &Result{URL: stripped, Session: session}, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Email        string    `json:"email"`
		Name         string    `json:"name"`
		ContinueURL  string    `json:"continueUrl"`
		Kind         string    `json:"kind"`
		UID          string    `json:"uid"`
		SessionToken string    `json:"sessionToken"`
		VerifiedAt   time.Time `json:"verifiedAt"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

// Verify consumes a token at the service and returns the session it minted.
func (c *Client) Verify(ctx context.Context, token string) (*Session, error) {
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode verify request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/verify", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build verify request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &NetworkError{Err: errors.Wrap(err, "failed to decode verify response")}
	}

	if !env.Success {
		return nil, mapErrorCode(&env)
	}

	return &Session{
		Email:        env.Data.Email,
		Name:         env.Data.Name,
		ContinueURL:  env.Data.ContinueURL,
		Kind:         entity.RequestKind(env.Data.Kind),
		UID:          env.Data.UID,
		SessionToken: env.Data.SessionToken,
		VerifiedAt:   env.Data.VerifiedAt,
	}, nil
}

// mapErrorCode keys typed errors off the stable business codes, never off
// HTTP status numbers alone.
func mapErrorCode(env *envelope) error {
	if env.Error == nil {
		return errors.New("verification failed")
	}

	switch env.Error.Code {
	case "INVALID_TOKEN":
		return ErrInvalidToken
	case "TOKEN_EXPIRED":
		return ErrTokenExpired
	case "TOKEN_ALREADY_USED":
		return ErrTokenAlreadyUsed
	default:
		return errors.Errorf("verification failed: %s", env.Error.Code)
	}
}

// UserMessage translates a handshake failure into the copy shown to the
// user. Unknown errors get a generic retry message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return "This link is not valid. Request a new one to continue."
	case errors.Is(err, ErrTokenExpired):
		return "This link has expired. Request a new one to continue."
	case errors.Is(err, ErrTokenAlreadyUsed):
		return "This link was already used, possibly on another device."
	default:
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			return "Could not reach the sign-in service. Check your connection and try again."
		}

		return "Something went wrong. Please try again."
	}
}
