// Package firestore contains the concrete persistence layer backed by
// Cloud Firestore. The token store leans on Firestore transactions for the
// conditional consume and on transactional batches for reaper deletes.
package firestore

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	"go.uber.org/fx"
	"google.golang.org/api/option"

	"atelier/config"
	"atelier/internal/errors"
)

// Collection names in the backing project.
const (
	authRequestCollection = "authRequests"
	profileCollection     = "profiles"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the Firestore client and ties its shutdown to the fx lifecycle.
func New(params Params) (*firestore.Client, error) {
	if params.Config.Firebase == nil || params.Config.Firebase.ProjectID == "" {
		return nil, errors.New("firebase project must be configured")
	}

	var opts []option.ClientOption
	if path := params.Config.Firebase.CredentialsPath; path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}

	client, err := firestore.NewClient(context.Background(), params.Config.Firebase.ProjectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Firestore client")
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			params.Logger.Info("Closing Firestore client")

			return client.Close()
		},
	})

	return client, nil
}
