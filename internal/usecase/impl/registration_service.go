// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"atelier/config"
	deliverycontext "atelier/internal/delivery/context"
	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/domain/service"
	mailinfra "atelier/internal/infra/mail"
	"atelier/internal/usecase"
)

const (
	maxNameLength = 100

	// mailDispatchTimeout bounds the fire-and-forget email send. Dispatch
	// runs detached from the request context so a fast caller response
	// cannot cancel delivery.
	mailDispatchTimeout = 30 * time.Second
)

// registrationService implements the AuthRequestUsecase interface.
type registrationService struct {
	requests  repository.AuthRequestRepository
	identity  service.IdentityProvider
	generator service.TokenGenerator
	sender    service.MailSender
	publisher service.EventPublisher
	clock     service.Clock
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// RegistrationServiceParams holds dependencies for registrationService, injected by Fx.
type RegistrationServiceParams struct {
	fx.In

	Requests  repository.AuthRequestRepository
	Identity  service.IdentityProvider
	Generator service.TokenGenerator
	Sender    service.MailSender
	Publisher service.EventPublisher
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewRegistrationService is the constructor for registrationService.
func NewRegistrationService(params RegistrationServiceParams) usecase.AuthRequestUsecase {
	return &registrationService{
		requests:  params.Requests,
		identity:  params.Identity,
		generator: params.Generator,
		sender:    params.Sender,
		publisher: params.Publisher,
		clock:     params.Clock,
		tokenTTL:  params.Config.TokenTTL(),
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *registrationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateRegistration starts the handshake for a new account.
func (srv *registrationService) CreateRegistration(ctx context.Context, input *usecase.CreateRegistrationInput) (*usecase.CreateRequestOutput, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("display name must be non-empty and at most 100 characters")
	}

	if err := validateContinueURL(input.ContinueURL); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Starting registration request", slog.String("email", email))

	// Advisory fast-fail. The identity provider's account creation at
	// verification time remains the authoritative uniqueness gate.
	_, err = srv.identity.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domainerrors.ErrUserExists.WrapMessage("account already exists for this email")
	case !errors.Is(err, service.ErrIdentityUserNotFound):
		srv.log(ctx).Error("Identity lookup failed during registration", slog.String("email", email), slog.Any("error", err))

		return nil, domainerrors.NewStorageError(err, "identity lookup failed")
	}

	return srv.createRequest(ctx, email, name, input.ContinueURL, entity.KindRegistration)
}

// CreateSignInRequest starts the handshake for an existing account.
func (srv *registrationService) CreateSignInRequest(ctx context.Context, input *usecase.CreateSignInInput) (*usecase.CreateRequestOutput, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if err := validateContinueURL(input.ContinueURL); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Starting sign-in request", slog.String("email", email))

	_, err = srv.identity.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, service.ErrIdentityUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("no account exists for this email")
		}
		srv.log(ctx).Error("Identity lookup failed during sign-in request", slog.String("email", email), slog.Any("error", err))

		return nil, domainerrors.NewStorageError(err, "identity lookup failed")
	}

	// The display name is not carried on sign-in requests; verification
	// reads it back from the account, so callers cannot rename other users.
	return srv.createRequest(ctx, email, "", input.ContinueURL, entity.KindSignIn)
}

// createRequest persists the pending record and dispatches the email. Both
// kinds share this path; they differ only in kind and display name.
func (srv *registrationService) createRequest(ctx context.Context, email, name, continueURL string, kind entity.RequestKind) (*usecase.CreateRequestOutput, error) {
	token, err := srv.generator.Generate()
	if err != nil {
		srv.log(ctx).Error("Token generation failed", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to generate token")
	}

	request := entity.NewAuthRequest(token, email, name, continueURL, kind, srv.clock.Now(), srv.tokenTTL)
	if err := srv.requests.Create(ctx, request); err != nil {
		srv.log(ctx).Error("Failed to persist auth request", slog.String("kind", string(kind)), slog.Any("error", err))

		return nil, domainerrors.NewStorageError(err, "failed to persist auth request")
	}

	// Record creation and email delivery are deliberately not atomic: a
	// lost email means the user retries from scratch, nothing worse.
	srv.dispatchMail(ctx, request)

	srv.publishEvent(ctx, kind, email)

	srv.log(ctx).Debug("Auth request created",
		slog.String("kind", string(kind)),
		slog.Time("expires_at", request.ExpiresAt))

	return &usecase.CreateRequestOutput{
		Token:     request.Token,
		ExpiresAt: request.ExpiresAt,
	}, nil
}

// dispatchMail sends the verification email without blocking or failing the
// caller. The request logger is captured up front since the request context
// will be gone by the time the send finishes.
func (srv *registrationService) dispatchMail(ctx context.Context, request *entity.AuthRequest) {
	logger := srv.log(ctx)

	link, err := mailinfra.VerificationLink(request.ContinueURL, request.Kind, request.Token)
	if err != nil {
		logger.Error("Failed to build verification link", slog.String("kind", string(request.Kind)), slog.Any("error", err))

		return
	}

	subject, body := mailinfra.VerificationMessage(request.Kind, link)
	recipient := request.Email

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), mailDispatchTimeout)
		defer cancel()

		if err := srv.sender.Send(sendCtx, recipient, subject, body); err != nil {
			logger.Error("Failed to send verification email",
				slog.String("recipient", recipient),
				slog.Any("error", err))
		}
	}()
}

// publishEvent emits a creation event to the analytics channel. Failures
// are logged and never affect the caller.
func (srv *registrationService) publishEvent(ctx context.Context, kind entity.RequestKind, email string) {
	eventType := service.EventRegistrationCreated
	if kind == entity.KindSignIn {
		eventType = service.EventSignInCreated
	}

	event := &service.AuthEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		Kind:       string(kind),
		Email:      email,
		RequestID:  deliverycontext.GetRequestID(ctx),
		OccurredAt: srv.clock.Now(),
	}

	if err := srv.publisher.PublishAuthEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish auth event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}

// normalizeEmail lower-cases and validates the address. The normalized form
// is what gets stored and compared everywhere downstream.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domainerrors.ErrValidationFailed.WrapMessage("email address is not valid")
	}

	return email, nil
}

// validateContinueURL requires an absolute http(s) URL. The target stays
// opaque beyond that; origin allow-listing is a deployment concern.
func validateContinueURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("continueUrl must be an absolute http(s) URL")
	}

	return nil
}
