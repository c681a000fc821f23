// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"
	"time"

	"atelier/config"
	"atelier/internal/delivery/http/response"
	"atelier/internal/domain/entity"
	"atelier/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for the token handshake handlers.
type AuthHandler struct {
	requests     usecase.AuthRequestUsecase
	verification usecase.VerificationUsecase
	cleanup      usecase.CleanupUsecase
	cfg          *config.Config
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(
	requests usecase.AuthRequestUsecase,
	verification usecase.VerificationUsecase,
	cleanup usecase.CleanupUsecase,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		requests:     requests,
		verification: verification,
		cleanup:      cleanup,
		cfg:          cfg,
	}
}

// registerRequest is the wire shape of a registration request.
type registerRequest struct {
	Email       string `json:"email" validate:"required"`
	Name        string `json:"name" validate:"required"`
	ContinueURL string `json:"continueUrl" validate:"required"`
}

// signInRequest is the wire shape of a sign-in request.
type signInRequest struct {
	Email       string `json:"email" validate:"required"`
	ContinueURL string `json:"continueUrl" validate:"required"`
}

// verifyRequest carries the token being consumed.
type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// createdResponse acknowledges a pending request. Token is only populated
// when the test-route surface is enabled; production clients get the token
// over email alone.
type createdResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token,omitempty"`
}

// verifiedResponse is the completed handshake.
type verifiedResponse struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ContinueURL  string    `json:"continueUrl"`
	Kind         string    `json:"kind"`
	UID          string    `json:"uid"`
	SessionToken string    `json:"sessionToken"`
	VerifiedAt   time.Time `json:"verifiedAt"`
}

// cleanupResponse reports a reaper run.
type cleanupResponse struct {
	Deleted int `json:"deleted"`
}

// Register handles a registration request for a new account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "VALIDATION_FAILED", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	out, err := h.requests.CreateRegistration(c.Request().Context(), &usecase.CreateRegistrationInput{
		Email:       req.Email,
		Name:        req.Name,
		ContinueURL: req.ContinueURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.created(out), "Verification email sent")
}

// SignIn handles a sign-in request for an existing account.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "VALIDATION_FAILED", "Invalid sign-in input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	out, err := h.requests.CreateSignInRequest(c.Request().Context(), &usecase.CreateSignInInput{
		Email:       req.Email,
		ContinueURL: req.ContinueURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.created(out), "Verification email sent")
}

// Verify consumes an emailed token and returns the minted session.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "VALIDATION_FAILED", "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	out, err := h.verification.VerifyToken(c.Request().Context(), &usecase.VerifyInput{
		Token:       req.Token,
		RequesterIP: c.RealIP(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, verifiedResponse{
		Email:        out.Email,
		Name:         out.Name,
		ContinueURL:  out.ContinueURL,
		Kind:         string(out.Kind),
		UID:          out.UID,
		SessionToken: out.SessionToken,
		VerifiedAt:   out.VerifiedAt,
	}, "Verification successful")
}

// Cleanup triggers an expiry reaper run. Internal surface only.
func (h *AuthHandler) Cleanup(c echo.Context) error {
	out, err := h.cleanup.CleanupExpired(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cleanupResponse{Deleted: out.Deleted}, "Cleanup finished")
}

// Inspect returns the stored state of a token without consuming it. Only
// registered when the test-route surface is enabled.
func (h *AuthHandler) Inspect(c echo.Context) error {
	record, err := h.verification.InspectToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, inspectView(record), "")
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) created(out *usecase.CreateRequestOutput) createdResponse {
	resp := createdResponse{ExpiresAt: out.ExpiresAt}
	if h.cfg.TokensExposed() {
		resp.Token = out.Token
	}

	return resp
}

type inspectResponse struct {
	Status     string     `json:"status"`
	Kind       string     `json:"kind"`
	Email      string     `json:"email"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

func inspectView(record *entity.AuthRequest) inspectResponse {
	return inspectResponse{
		Status:     string(record.Status),
		Kind:       string(record.Kind),
		Email:      record.Email,
		CreatedAt:  record.CreatedAt,
		ExpiresAt:  record.ExpiresAt,
		VerifiedAt: record.VerifiedAt,
	}
}
