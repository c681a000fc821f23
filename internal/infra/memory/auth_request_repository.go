// Package memory provides in-memory repository implementations with the
// same transition semantics as the Firestore backend. They back the test
// suites and local development without emulators.
package memory

import (
	"context"
	"sync"
	"time"

	"atelier/internal/domain/entity"
	"atelier/internal/domain/repository"
)

// AuthRequestRepository is a mutex-guarded token store. The lock spans each
// whole read-modify-write, mirroring the transactional guarantee of the
// Firestore implementation.
type AuthRequestRepository struct {
	mu       sync.Mutex
	requests map[string]*entity.AuthRequest

	// FailDeletes makes DeleteBatch fail without removing anything,
	// for exercising the reaper's all-or-nothing batch contract.
	FailDeletes error
}

// NewAuthRequestRepository creates an empty in-memory token store.
func NewAuthRequestRepository() *AuthRequestRepository {
	return &AuthRequestRepository{
		requests: make(map[string]*entity.AuthRequest),
	}
}

// Create persists a new pending request.
func (repo *AuthRequestRepository) Create(_ context.Context, request *entity.AuthRequest) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.requests[request.Token]; ok {
		return repository.ErrRequestExists
	}

	clone := *request
	repo.requests[request.Token] = &clone

	return nil
}

// Find returns a copy of the record for a token.
func (repo *AuthRequestRepository) Find(_ context.Context, token string) (*entity.AuthRequest, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.requests[token]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}

	clone := *stored

	return &clone, nil
}

// Consume transitions a pending request to completed, or reports why it
// cannot. The whole check-and-set happens under the lock so two concurrent
// calls can never both succeed.
func (repo *AuthRequestRepository) Consume(_ context.Context, token string, now time.Time, requesterIP string) (*entity.AuthRequest, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.requests[token]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}

	if stored.Status == entity.StatusCompleted {
		return nil, repository.ErrRequestConsumed
	}

	if stored.Status == entity.StatusExpired {
		return nil, repository.ErrRequestExpired
	}

	if stored.ExpiredAt(now) {
		// Lazy expiry: the terminal state is recorded before reporting failure.
		stored.Status = entity.StatusExpired

		return nil, repository.ErrRequestExpired
	}

	verifiedAt := now
	stored.Status = entity.StatusCompleted
	stored.VerifiedAt = &verifiedAt
	stored.RequesterIP = requesterIP

	clone := *stored

	return &clone, nil
}

// ListExpired returns up to limit tokens whose TTL has passed.
func (repo *AuthRequestRepository) ListExpired(_ context.Context, now time.Time, limit int) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	tokens := make([]string, 0, limit)
	for token, stored := range repo.requests {
		if !stored.ExpiredAt(now) {
			continue
		}

		tokens = append(tokens, token)
		if len(tokens) == limit {
			break
		}
	}

	return tokens, nil
}

// DeleteBatch removes the given tokens, all or nothing.
func (repo *AuthRequestRepository) DeleteBatch(_ context.Context, tokens []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.FailDeletes != nil {
		return repo.FailDeletes
	}

	for _, token := range tokens {
		delete(repo.requests, token)
	}

	return nil
}

// Len reports the number of stored records. Test helper.
func (repo *AuthRequestRepository) Len() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return len(repo.requests)
}

var _ repository.AuthRequestRepository = (*AuthRequestRepository)(nil)
