package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"atelier/internal/domain/entity"
	"atelier/internal/domain/repository"
	"atelier/internal/errors"
)

// profileRepository implements repository.ProfileRepository on the profiles
// collection, keyed by identity provider uid.
type profileRepository struct {
	client *firestore.Client
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (repo *profileRepository) doc(uid string) *firestore.DocumentRef {
	return repo.client.Collection(profileCollection).Doc(uid)
}

// Find returns the profile for a uid.
func (repo *profileRepository) Find(ctx context.Context, uid string) (*entity.UserProfile, error) {
	snap, err := repo.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to get profile")
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile")
	}

	return toProfileDomain(uid, &doc), nil
}

// Create writes a fresh profile document.
func (repo *profileRepository) Create(ctx context.Context, profile *entity.UserProfile) error {
	if _, err := repo.doc(profile.UID).Set(ctx, fromProfileDomain(profile)); err != nil {
		return errors.Wrap(err, "failed to create profile")
	}

	return nil
}

// RecordLogin updates the login metadata fields on an existing profile.
func (repo *profileRepository) RecordLogin(ctx context.Context, uid string, at time.Time, ip string) error {
	_, err := repo.doc(uid).Update(ctx, []firestore.Update{
		{Path: "lastLoginAt", Value: at},
		{Path: "lastLoginIp", Value: ip},
		{Path: "loginCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrProfileNotFound
		}

		return errors.Wrap(err, "failed to record login")
	}

	return nil
}
