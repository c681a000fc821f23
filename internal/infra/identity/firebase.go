// Package identity adapts Firebase Authentication to the domain's
// IdentityProvider interface.
package identity

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/fx"
	"google.golang.org/api/option"

	"atelier/config"
	"atelier/internal/domain/service"
	"atelier/internal/errors"
)

type firebaseProvider struct {
	client *auth.Client
	logger *slog.Logger
}

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewFirebaseProvider creates the Firebase-backed identity provider.
func NewFirebaseProvider(params Params) (service.IdentityProvider, error) {
	if params.Config.Firebase == nil || params.Config.Firebase.ProjectID == "" {
		return nil, errors.New("firebase project must be configured")
	}

	var opts []option.ClientOption
	if path := params.Config.Firebase.CredentialsPath; path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}

	app, err := firebase.NewApp(context.Background(), &firebase.Config{
		ProjectID: params.Config.Firebase.ProjectID,
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Auth(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Firebase auth client")
	}

	return &firebaseProvider{
		client: client,
		logger: params.Logger,
	}, nil
}

// FindByEmail looks up an account by its email address.
func (p *firebaseProvider) FindByEmail(ctx context.Context, email string) (*service.IdentityUser, error) {
	record, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, service.ErrIdentityUserNotFound
		}

		return nil, errors.Wrap(err, "failed to look up identity user")
	}

	return toIdentityUser(record), nil
}

// CreateUser provisions the account for a verified registration. The email
// is marked verified because the token handshake has already proven mailbox
// ownership.
func (p *firebaseProvider) CreateUser(ctx context.Context, email, displayName string) (*service.IdentityUser, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		DisplayName(displayName).
		EmailVerified(true)

	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, service.ErrIdentityUserExists
		}

		return nil, errors.Wrap(err, "failed to create identity user")
	}

	p.logger.Info("Created identity user",
		slog.String("uid", record.UID),
		slog.String("email", email))

	return toIdentityUser(record), nil
}

// MintSessionToken issues a custom token the client exchanges for a session.
func (p *firebaseProvider) MintSessionToken(ctx context.Context, uid string) (string, error) {
	token, err := p.client.CustomToken(ctx, uid)
	if err != nil {
		return "", errors.Wrap(err, "failed to mint custom token")
	}

	return token, nil
}

func toIdentityUser(record *auth.UserRecord) *service.IdentityUser {
	return &service.IdentityUser{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}
}
