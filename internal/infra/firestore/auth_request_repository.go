package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"atelier/internal/domain/entity"
	"atelier/internal/domain/repository"
	"atelier/internal/errors"
)

// authRequestRepository implements repository.AuthRequestRepository on a
// Firestore collection keyed by token.
type authRequestRepository struct {
	client *firestore.Client
}

// NewAuthRequestRepository is the constructor for authRequestRepository.
func NewAuthRequestRepository(client *firestore.Client) repository.AuthRequestRepository {
	return &authRequestRepository{client: client}
}

func (repo *authRequestRepository) doc(token string) *firestore.DocumentRef {
	return repo.client.Collection(authRequestCollection).Doc(token)
}

// Create persists a new pending request, failing if the token is taken.
func (repo *authRequestRepository) Create(ctx context.Context, request *entity.AuthRequest) error {
	_, err := repo.doc(request.Token).Create(ctx, fromAuthRequestDomain(request))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return repository.ErrRequestExists
		}

		return errors.Wrap(err, "failed to create auth request")
	}

	return nil
}

// Find returns the record for a token without touching its state.
func (repo *authRequestRepository) Find(ctx context.Context, token string) (*entity.AuthRequest, error) {
	snap, err := repo.doc(token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrRequestNotFound
		}

		return nil, errors.Wrap(err, "failed to get auth request")
	}

	var doc authRequestDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode auth request")
	}

	return toAuthRequestDomain(token, &doc), nil
}

// Consume runs the pending->completed transition inside a Firestore
// transaction so a concurrent consume or a racing reaper delete can never
// half-apply. The lazy pending->expired transition commits even though the
// operation reports failure, which is why outcome errors are carried out of
// the transaction function instead of returned from it.
func (repo *authRequestRepository) Consume(ctx context.Context, token string, now time.Time, requesterIP string) (*entity.AuthRequest, error) {
	var (
		consumed   *entity.AuthRequest
		outcomeErr error
	)

	err := repo.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		// The transaction runner may retry this function; start clean.
		consumed = nil
		outcomeErr = nil

		ref := repo.doc(token)
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				outcomeErr = repository.ErrRequestNotFound

				return nil
			}

			return err
		}

		var doc authRequestDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}

		switch entity.RequestStatus(doc.Status) {
		case entity.StatusCompleted:
			outcomeErr = repository.ErrRequestConsumed

			return nil
		case entity.StatusExpired:
			outcomeErr = repository.ErrRequestExpired

			return nil
		}

		if now.After(doc.ExpiresAt) {
			outcomeErr = repository.ErrRequestExpired

			return tx.Update(ref, []firestore.Update{
				{Path: "status", Value: string(entity.StatusExpired)},
			})
		}

		if err := tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(entity.StatusCompleted)},
			{Path: "verifiedAt", Value: now},
			{Path: "requesterIp", Value: requesterIP},
		}); err != nil {
			return err
		}

		doc.Status = string(entity.StatusCompleted)
		verifiedAt := now
		doc.VerifiedAt = &verifiedAt
		doc.RequesterIP = requesterIP
		consumed = toAuthRequestDomain(token, &doc)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to consume auth request")
	}

	if outcomeErr != nil {
		return nil, outcomeErr
	}

	return consumed, nil
}

// ListExpired returns up to limit tokens whose TTL has passed.
func (repo *authRequestRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	iter := repo.client.Collection(authRequestCollection).
		Where("expiresAt", "<", now).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	tokens := make([]string, 0, limit)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list expired auth requests")
		}

		tokens = append(tokens, snap.Ref.ID)
	}

	return tokens, nil
}

// DeleteBatch removes the given tokens in one transaction. Deletes through
// a transaction keep the batch all-or-nothing and mutually exclusive with
// concurrent Consume calls on the same documents.
func (repo *authRequestRepository) DeleteBatch(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	err := repo.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, token := range tokens {
			if err := tx.Delete(repo.doc(token)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete auth request batch")
	}

	return nil
}
