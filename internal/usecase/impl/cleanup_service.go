package impl

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"atelier/config"
	deliverycontext "atelier/internal/delivery/context"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/domain/service"
	"atelier/internal/usecase"
)

// cleanupService implements the CleanupUsecase interface.
type cleanupService struct {
	requests  repository.AuthRequestRepository
	publisher service.EventPublisher
	clock     service.Clock
	batchSize int
	logger    *slog.Logger
}

// CleanupServiceParams holds dependencies for cleanupService, injected by Fx.
type CleanupServiceParams struct {
	fx.In

	Requests  repository.AuthRequestRepository
	Publisher service.EventPublisher
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewCleanupService is the constructor for cleanupService.
func NewCleanupService(params CleanupServiceParams) usecase.CleanupUsecase {
	return &cleanupService{
		requests:  params.Requests,
		publisher: params.Publisher,
		clock:     params.Clock,
		batchSize: params.Config.ReaperBatchSize(),
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *cleanupService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CleanupExpired removes every record whose TTL has passed, in bounded
// all-or-nothing batches. A run with nothing to reap deletes nothing and
// reports zero.
func (srv *cleanupService) CleanupExpired(ctx context.Context) (*usecase.CleanupOutput, error) {
	now := srv.clock.Now()
	deleted := 0

	for {
		tokens, err := srv.requests.ListExpired(ctx, now, srv.batchSize)
		if err != nil {
			srv.log(ctx).Error("Failed to list expired requests", slog.Any("error", err))

			return nil, domainerrors.NewStorageError(err, "failed to list expired requests")
		}
		if len(tokens) == 0 {
			break
		}

		if err := srv.requests.DeleteBatch(ctx, tokens); err != nil {
			srv.log(ctx).Error("Failed to delete expired batch",
				slog.Int("batch_size", len(tokens)),
				slog.Int("deleted_so_far", deleted),
				slog.Any("error", err))

			return nil, domainerrors.NewStorageError(err, "failed to delete expired batch")
		}

		deleted += len(tokens)
		if len(tokens) < srv.batchSize {
			break
		}
	}

	if deleted > 0 {
		srv.publishCleanup(ctx, deleted)
	}

	srv.log(ctx).Info("Expiry reaper finished", slog.Int("deleted", deleted))

	return &usecase.CleanupOutput{Deleted: deleted}, nil
}

func (srv *cleanupService) publishCleanup(ctx context.Context, deleted int) {
	event := &service.AuthEvent{
		EventID:    uuid.New().String(),
		Type:       service.EventCleanupCompleted,
		Deleted:    deleted,
		RequestID:  deliverycontext.GetRequestID(ctx),
		OccurredAt: srv.clock.Now(),
	}

	if err := srv.publisher.PublishAuthEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish auth event", slog.String("event_type", event.Type), slog.Any("error", err))
	}
}
