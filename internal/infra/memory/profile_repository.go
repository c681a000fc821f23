package memory

import (
	"context"
	"sync"
	"time"

	"atelier/internal/domain/entity"
	"atelier/internal/domain/repository"
)

// ProfileRepository is an in-memory profile store for tests and local runs.
type ProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]*entity.UserProfile
}

// NewProfileRepository creates an empty in-memory profile store.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[string]*entity.UserProfile),
	}
}

// Find returns a copy of the profile for a uid.
func (repo *ProfileRepository) Find(_ context.Context, uid string) (*entity.UserProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.profiles[uid]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	clone := *stored

	return &clone, nil
}

// Create writes a fresh profile document.
func (repo *ProfileRepository) Create(_ context.Context, profile *entity.UserProfile) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	clone := *profile
	repo.profiles[profile.UID] = &clone

	return nil
}

// RecordLogin updates the login metadata on an existing profile.
func (repo *ProfileRepository) RecordLogin(_ context.Context, uid string, at time.Time, ip string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.profiles[uid]
	if !ok {
		return repository.ErrProfileNotFound
	}

	stored.LastLoginAt = at
	stored.LastLoginIP = ip
	stored.LoginCount++

	return nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
