package impl

import (
	"context"
	"testing"
	"time"

	"atelier/config"
	"atelier/internal/domain/service"
	"atelier/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupExpired(t *testing.T) {
	t.Run("nothing to reap", func(t *testing.T) {
		fx := newFixture(nil)
		createRegistration(t, fx, "alice@example.com", "Alice")

		out, err := fx.cleanup.CleanupExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, out.Deleted)
		assert.Equal(t, 1, fx.requests.Len())

		for _, event := range fx.publisher.Events() {
			assert.NotEqual(t, service.EventCleanupCompleted, event.Type)
		}
	})

	t.Run("removes only records past their TTL", func(t *testing.T) {
		fx := newFixture(nil)
		createRegistration(t, fx, "alice@example.com", "Alice")
		createRegistration(t, fx, "bob@example.com", "Bob")

		fx.clock.Advance(25 * time.Hour)
		fresh := createRegistration(t, fx, "carol@example.com", "Carol")

		out, err := fx.cleanup.CleanupExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, out.Deleted)
		assert.Equal(t, 1, fx.requests.Len())

		_, err = fx.requests.Find(context.Background(), fresh)
		assert.NoError(t, err)
	})

	t.Run("sweeps consumed records past their TTL too", func(t *testing.T) {
		fx := newFixture(nil)
		token := createRegistration(t, fx, "alice@example.com", "Alice")

		_, err := fx.verification.VerifyToken(context.Background(), &usecase.VerifyInput{Token: token})
		require.NoError(t, err)

		fx.clock.Advance(25 * time.Hour)

		out, err := fx.cleanup.CleanupExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, out.Deleted)
		assert.Equal(t, 0, fx.requests.Len())
	})

	t.Run("drains backlogs larger than one batch", func(t *testing.T) {
		cfg := &config.Config{Auth: &config.AuthConfig{ReaperBatchSize: 2}}
		fx := newFixture(cfg)

		emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"}
		for _, email := range emails {
			createRegistration(t, fx, email, "Artist")
		}

		fx.clock.Advance(25 * time.Hour)

		out, err := fx.cleanup.CleanupExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 5, out.Deleted)
		assert.Equal(t, 0, fx.requests.Len())
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		fx := newFixture(nil)
		createRegistration(t, fx, "alice@example.com", "Alice")
		fx.clock.Advance(25 * time.Hour)

		first, err := fx.cleanup.CleanupExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, first.Deleted)

		second, err := fx.cleanup.CleanupExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, second.Deleted)
	})

	t.Run("publishes how many were removed", func(t *testing.T) {
		fx := newFixture(nil)
		createRegistration(t, fx, "alice@example.com", "Alice")
		fx.clock.Advance(25 * time.Hour)

		_, err := fx.cleanup.CleanupExpired(context.Background())
		require.NoError(t, err)

		var found bool
		for _, event := range fx.publisher.Events() {
			if event.Type == service.EventCleanupCompleted {
				found = true
				assert.Equal(t, 1, event.Deleted)
			}
		}
		assert.True(t, found)
	})

	t.Run("a failed batch deletes nothing", func(t *testing.T) {
		fx := newFixture(nil)
		createRegistration(t, fx, "alice@example.com", "Alice")
		fx.clock.Advance(25 * time.Hour)
		fx.requests.FailDeletes = errStorageDown

		_, err := fx.cleanup.CleanupExpired(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, fx.requests.Len())
	})
}
