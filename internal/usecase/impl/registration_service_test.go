package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/service"
	"atelier/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mailWait = 2 * time.Second

func TestCreateRegistration(t *testing.T) {
	t.Run("creates a pending request and emails the link", func(t *testing.T) {
		fx := newFixture(nil)

		out, err := fx.registration.CreateRegistration(context.Background(), &usecase.CreateRegistrationInput{
			Email:       "alice@example.com",
			Name:        "Alice",
			ContinueURL: "https://app.example.com/welcome",
		})
		require.NoError(t, err)
		require.NotEmpty(t, out.Token)
		assert.Equal(t, testEpoch.Add(24*time.Hour), out.ExpiresAt)

		record, err := fx.requests.Find(context.Background(), out.Token)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPending, record.Status)
		assert.Equal(t, entity.KindRegistration, record.Kind)
		assert.Equal(t, "alice@example.com", record.Email)
		assert.Equal(t, "Alice", record.DisplayName)
		assert.Nil(t, record.VerifiedAt)

		require.Eventually(t, func() bool {
			return len(fx.sender.Messages()) == 1
		}, mailWait, 10*time.Millisecond)

		msg := fx.sender.Messages()[0]
		assert.Equal(t, "alice@example.com", msg.Recipient)
		assert.Contains(t, msg.Body, "expiring in 24 hours")
		assert.Contains(t, msg.Body, "https://app.example.com/welcome?registrationToken="+out.Token)
	})

	t.Run("normalizes the email address", func(t *testing.T) {
		fx := newFixture(nil)

		out, err := fx.registration.CreateRegistration(context.Background(), &usecase.CreateRegistrationInput{
			Email:       "  Alice@Example.COM ",
			Name:        "Alice",
			ContinueURL: "https://app.example.com/welcome",
		})
		require.NoError(t, err)

		record, err := fx.requests.Find(context.Background(), out.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", record.Email)
	})

	t.Run("rejects an email that already has an account", func(t *testing.T) {
		fx := newFixture(nil)
		fx.identity.seedUser("alice@example.com", "Alice")

		_, err := fx.registration.CreateRegistration(context.Background(), &usecase.CreateRegistrationInput{
			Email:       "alice@example.com",
			Name:        "Alice",
			ContinueURL: "https://app.example.com/welcome",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrUserExists))

		// No orphaned record, no email.
		assert.Equal(t, 0, fx.requests.Len())
		assert.Empty(t, fx.sender.Messages())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		fx := newFixture(nil)

		cases := []struct {
			name  string
			input usecase.CreateRegistrationInput
		}{
			{"empty email", usecase.CreateRegistrationInput{Email: "", Name: "Alice", ContinueURL: "https://app.example.com"}},
			{"malformed email", usecase.CreateRegistrationInput{Email: "not-an-address", Name: "Alice", ContinueURL: "https://app.example.com"}},
			{"empty name", usecase.CreateRegistrationInput{Email: "alice@example.com", Name: "   ", ContinueURL: "https://app.example.com"}},
			{"overlong name", usecase.CreateRegistrationInput{Email: "alice@example.com", Name: strings.Repeat("a", 101), ContinueURL: "https://app.example.com"}},
			{"relative continue url", usecase.CreateRegistrationInput{Email: "alice@example.com", Name: "Alice", ContinueURL: "/welcome"}},
			{"non-http scheme", usecase.CreateRegistrationInput{Email: "alice@example.com", Name: "Alice", ContinueURL: "ftp://app.example.com"}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				input := tc.input
				_, err := fx.registration.CreateRegistration(context.Background(), &input)
				require.Error(t, err)
				assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
			})
		}

		assert.Equal(t, 0, fx.requests.Len())
	})

	t.Run("publishes a registration event without the token", func(t *testing.T) {
		fx := newFixture(nil)

		out, err := fx.registration.CreateRegistration(context.Background(), &usecase.CreateRegistrationInput{
			Email:       "alice@example.com",
			Name:        "Alice",
			ContinueURL: "https://app.example.com/welcome",
		})
		require.NoError(t, err)

		events := fx.publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, service.EventRegistrationCreated, events[0].Type)
		assert.Equal(t, "alice@example.com", events[0].Email)
		assert.NotContains(t, events[0].EventID, out.Token)
	})
}

func TestCreateSignInRequest(t *testing.T) {
	t.Run("creates a pending request for an existing account", func(t *testing.T) {
		fx := newFixture(nil)
		fx.identity.seedUser("alice@example.com", "Alice")

		out, err := fx.registration.CreateSignInRequest(context.Background(), &usecase.CreateSignInInput{
			Email:       "alice@example.com",
			ContinueURL: "https://app.example.com/studio",
		})
		require.NoError(t, err)

		record, err := fx.requests.Find(context.Background(), out.Token)
		require.NoError(t, err)
		assert.Equal(t, entity.KindSignIn, record.Kind)
		// The stored name stays empty for sign-ins; the account is the
		// source of truth at verification time.
		assert.Empty(t, record.DisplayName)

		require.Eventually(t, func() bool {
			return len(fx.sender.Messages()) == 1
		}, mailWait, 10*time.Millisecond)

		msg := fx.sender.Messages()[0]
		assert.Contains(t, msg.Body, "signInToken="+out.Token)
		assert.Contains(t, msg.Body, "expiring in 24 hours")
	})

	t.Run("rejects an unknown account without leaving a record", func(t *testing.T) {
		fx := newFixture(nil)

		_, err := fx.registration.CreateSignInRequest(context.Background(), &usecase.CreateSignInInput{
			Email:       "ghost@example.com",
			ContinueURL: "https://app.example.com/studio",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
		assert.Equal(t, 0, fx.requests.Len())
		assert.Empty(t, fx.sender.Messages())
	})

	t.Run("rejects invalid continue url", func(t *testing.T) {
		fx := newFixture(nil)
		fx.identity.seedUser("alice@example.com", "Alice")

		_, err := fx.registration.CreateSignInRequest(context.Background(), &usecase.CreateSignInInput{
			Email:       "alice@example.com",
			ContinueURL: "://broken",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})
}

func TestCreateRequestTokensAreUnique(t *testing.T) {
	fx := newFixture(nil)
	fx.identity.seedUser("alice@example.com", "Alice")

	seen := make(map[string]struct{})
	for range 20 {
		out, err := fx.registration.CreateSignInRequest(context.Background(), &usecase.CreateSignInInput{
			Email:       "alice@example.com",
			ContinueURL: "https://app.example.com/studio",
		})
		require.NoError(t, err)

		_, dup := seen[out.Token]
		require.False(t, dup)
		seen[out.Token] = struct{}{}
	}
}
