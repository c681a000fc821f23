package impl

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "atelier/internal/delivery/context"
	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/domain/service"
	"atelier/internal/infra/token"
	"atelier/internal/usecase"
)

// verificationService implements the VerificationUsecase interface.
type verificationService struct {
	requests  repository.AuthRequestRepository
	profiles  repository.ProfileRepository
	identity  service.IdentityProvider
	publisher service.EventPublisher
	clock     service.Clock
	logger    *slog.Logger
}

// VerificationServiceParams holds dependencies for verificationService, injected by Fx.
type VerificationServiceParams struct {
	fx.In

	Requests  repository.AuthRequestRepository
	Profiles  repository.ProfileRepository
	Identity  service.IdentityProvider
	Publisher service.EventPublisher
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewVerificationService is the constructor for verificationService.
func NewVerificationService(params VerificationServiceParams) usecase.VerificationUsecase {
	return &verificationService{
		requests:  params.Requests,
		profiles:  params.Profiles,
		identity:  params.Identity,
		publisher: params.Publisher,
		clock:     params.Clock,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *verificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// VerifyToken consumes a token and turns it into a live session. The store
// transition is the at-most-once gate; everything after it operates on data
// this call alone owns.
func (srv *verificationService) VerifyToken(ctx context.Context, input *usecase.VerifyInput) (*usecase.VerifyOutput, error) {
	if input.Token == "" {
		return nil, domainerrors.ErrInvalidToken.WrapMessage("token is required")
	}
	if !token.Validate(input.Token) {
		return nil, domainerrors.ErrInvalidToken.WrapMessage("token is malformed")
	}

	now := srv.clock.Now()

	request, err := srv.requests.Consume(ctx, input.Token, now, input.RequesterIP)
	if err != nil {
		return nil, srv.mapConsumeError(ctx, err)
	}

	srv.log(ctx).Info("Token consumed",
		slog.String("kind", string(request.Kind)),
		slog.String("email", request.Email))

	var user *service.IdentityUser
	switch request.Kind {
	case entity.KindSignIn:
		user, err = srv.completeSignIn(ctx, request)
	default:
		user, err = srv.completeRegistration(ctx, request)
	}
	if err != nil {
		return nil, err
	}

	sessionToken, err := srv.identity.MintSessionToken(ctx, user.UID)
	if err != nil {
		srv.log(ctx).Error("Failed to mint session token", slog.String("uid", user.UID), slog.Any("error", err))

		return nil, domainerrors.ErrSessionMintFailed.WrapMessage("failed to mint session token")
	}

	srv.publishVerified(ctx, request)

	name := request.DisplayName
	if request.Kind == entity.KindSignIn {
		name = user.DisplayName
	}

	return &usecase.VerifyOutput{
		Email:        request.Email,
		Name:         name,
		ContinueURL:  request.ContinueURL,
		Kind:         request.Kind,
		UID:          user.UID,
		SessionToken: sessionToken,
		VerifiedAt:   *request.VerifiedAt,
	}, nil
}

// InspectToken returns the stored record without transitioning it.
func (srv *verificationService) InspectToken(ctx context.Context, token string) (*entity.AuthRequest, error) {
	request, err := srv.requests.Find(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, domainerrors.ErrInvalidToken.WrapMessage("no request exists for this token")
		}

		return nil, domainerrors.NewStorageError(err, "failed to read auth request")
	}

	return request, nil
}

// completeRegistration provisions the account and profile for a verified
// registration. Account creation is the authoritative uniqueness gate: when
// it reports the email as taken, a concurrent registration won the race and
// this one simply attaches to the existing account.
func (srv *verificationService) completeRegistration(ctx context.Context, request *entity.AuthRequest) (*service.IdentityUser, error) {
	user, err := srv.identity.CreateUser(ctx, request.Email, request.DisplayName)
	if err != nil {
		if !errors.Is(err, service.ErrIdentityUserExists) {
			srv.log(ctx).Error("Failed to create identity user", slog.String("email", request.Email), slog.Any("error", err))

			return nil, domainerrors.NewStorageError(err, "failed to create identity user")
		}

		user, err = srv.identity.FindByEmail(ctx, request.Email)
		if err != nil {
			srv.log(ctx).Error("Failed to load existing identity user", slog.String("email", request.Email), slog.Any("error", err))

			return nil, domainerrors.NewStorageError(err, "failed to load identity user")
		}
	}

	profile := &entity.UserProfile{
		UID:         user.UID,
		Email:       request.Email,
		Name:        request.DisplayName,
		CreatedAt:   *request.VerifiedAt,
		LastLoginAt: *request.VerifiedAt,
		LoginCount:  1,
		LastLoginIP: request.RequesterIP,
	}
	if err := srv.profiles.Create(ctx, profile); err != nil {
		srv.log(ctx).Error("Failed to create profile", slog.String("uid", user.UID), slog.Any("error", err))

		return nil, domainerrors.NewStorageError(err, "failed to create profile")
	}

	return user, nil
}

// completeSignIn touches the login metadata for a verified sign-in.
func (srv *verificationService) completeSignIn(ctx context.Context, request *entity.AuthRequest) (*service.IdentityUser, error) {
	user, err := srv.identity.FindByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, service.ErrIdentityUserNotFound) {
			// The account disappeared between request and verification.
			return nil, domainerrors.ErrUserNotFound.WrapMessage("account no longer exists for this email")
		}
		srv.log(ctx).Error("Identity lookup failed during verification", slog.String("email", request.Email), slog.Any("error", err))

		return nil, domainerrors.NewStorageError(err, "identity lookup failed")
	}

	err = srv.profiles.RecordLogin(ctx, user.UID, *request.VerifiedAt, request.RequesterIP)
	if errors.Is(err, repository.ErrProfileNotFound) {
		// Accounts provisioned outside this flow may not have a profile yet.
		err = srv.profiles.Create(ctx, &entity.UserProfile{
			UID:         user.UID,
			Email:       request.Email,
			Name:        user.DisplayName,
			CreatedAt:   *request.VerifiedAt,
			LastLoginAt: *request.VerifiedAt,
			LoginCount:  1,
			LastLoginIP: request.RequesterIP,
		})
	}
	if err != nil {
		srv.log(ctx).Error("Failed to record login", slog.String("uid", user.UID), slog.Any("error", err))

		return nil, domainerrors.NewStorageError(err, "failed to record login")
	}

	return user, nil
}

// mapConsumeError translates store sentinels into the stable user-facing
// error codes the client keys its retry affordances on.
func (srv *verificationService) mapConsumeError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRequestNotFound):
		return domainerrors.ErrInvalidToken.WrapMessage("no request exists for this token")
	case errors.Is(err, repository.ErrRequestConsumed):
		return domainerrors.ErrTokenAlreadyUsed.WrapMessage("token was already consumed")
	case errors.Is(err, repository.ErrRequestExpired):
		return domainerrors.ErrTokenExpired.WrapMessage("token is past its expiry")
	default:
		srv.log(ctx).Error("Token consume failed", slog.Any("error", err))

		return domainerrors.NewStorageError(err, "failed to consume token")
	}
}

// publishVerified emits a verification event to the analytics channel.
func (srv *verificationService) publishVerified(ctx context.Context, request *entity.AuthRequest) {
	event := &service.AuthEvent{
		EventID:    uuid.New().String(),
		Type:       service.EventRequestVerified,
		Kind:       string(request.Kind),
		Email:      request.Email,
		RequestID:  deliverycontext.GetRequestID(ctx),
		OccurredAt: srv.clock.Now(),
	}

	if err := srv.publisher.PublishAuthEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish auth event", slog.String("event_type", event.Type), slog.Any("error", err))
	}
}
