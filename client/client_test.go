package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atelier/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromURL(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		wantToken string
		wantKind  entity.RequestKind
		wantOK    bool
	}{
		{"registration token", "https://app.example.com/welcome?registrationToken=abc123", "abc123", entity.KindRegistration, true},
		{"sign-in token", "https://app.example.com/studio?signInToken=xyz789", "xyz789", entity.KindSignIn, true},
		{"token among other params", "https://app.example.com/p?theme=dark&signInToken=tok&lang=en", "tok", entity.KindSignIn, true},
		{"no token", "https://app.example.com/welcome?theme=dark", "", "", false},
		{"empty token value", "https://app.example.com/welcome?registrationToken=", "", "", false},
		{"unparseable url", "://not-a-url", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, kind, ok := TokenFromURL(tc.url)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantToken, token)
			assert.Equal(t, tc.wantKind, kind)
		})
	}
}

func TestStripToken(t *testing.T) {
	t.Run("removes the token and keeps everything else", func(t *testing.T) {
		stripped, err := StripToken("https://app.example.com/p?theme=dark&registrationToken=abc&lang=en")
		require.NoError(t, err)
		assert.NotContains(t, stripped, "abc")
		assert.Contains(t, stripped, "theme=dark")
		assert.Contains(t, stripped, "lang=en")
	})

	t.Run("no-op without a token", func(t *testing.T) {
		stripped, err := StripToken("https://app.example.com/p?theme=dark")
		require.NoError(t, err)
		assert.Contains(t, stripped, "theme=dark")
	})
}

// fakeService mimics the verify endpoint's envelope responses.
func fakeService(t *testing.T, handler func(token string) (int, string)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/verify", r.URL.Path)

		var req struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, body := handler(req.Token)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func successBody() string {
	return `{"success":true,"data":{"email":"alice@example.com","name":"Alice","continueUrl":"https://app.example.com/welcome","kind":"registration","uid":"uid-1","sessionToken":"session-uid-1","verifiedAt":"2026-03-01T12:00:00Z"}}`
}

func errorBody(code string) string {
	return `{"success":false,"error":{"code":"` + code + `","details":""}}`
}

func TestHandleURL(t *testing.T) {
	t.Run("verifies and strips a registration token", func(t *testing.T) {
		srv := fakeService(t, func(token string) (int, string) {
			require.Equal(t, "tok-1", token)

			return http.StatusOK, successBody()
		})
		defer srv.Close()

		c := New(srv.URL)
		result, err := c.HandleURL(context.Background(), "https://app.example.com/welcome?registrationToken=tok-1")
		require.NoError(t, err)
		require.NotNil(t, result.Session)
		assert.Equal(t, "alice@example.com", result.Session.Email)
		assert.Equal(t, "Alice", result.Session.Name)
		assert.Equal(t, "session-uid-1", result.Session.SessionToken)
		assert.NotContains(t, result.URL, "tok-1")
	})

	t.Run("second pass over a stripped url is a no-op", func(t *testing.T) {
		calls := 0
		srv := fakeService(t, func(string) (int, string) {
			calls++

			return http.StatusOK, successBody()
		})
		defer srv.Close()

		c := New(srv.URL)
		first, err := c.HandleURL(context.Background(), "https://app.example.com/welcome?registrationToken=tok-1")
		require.NoError(t, err)

		second, err := c.HandleURL(context.Background(), first.URL)
		require.NoError(t, err)
		assert.Nil(t, second.Session)
		assert.Equal(t, first.URL, second.URL)
		assert.Equal(t, 1, calls)
	})

	t.Run("failure still strips the token", func(t *testing.T) {
		srv := fakeService(t, func(string) (int, string) {
			return http.StatusGone, errorBody("TOKEN_EXPIRED")
		})
		defer srv.Close()

		c := New(srv.URL)
		result, err := c.HandleURL(context.Background(), "https://app.example.com/welcome?signInToken=tok-2")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTokenExpired))
		assert.NotContains(t, result.URL, "tok-2")
	})
}

func TestVerifyErrorMapping(t *testing.T) {
	cases := []struct {
		code    string
		status  int
		wantErr error
	}{
		{"INVALID_TOKEN", http.StatusNotFound, ErrInvalidToken},
		{"TOKEN_EXPIRED", http.StatusGone, ErrTokenExpired},
		{"TOKEN_ALREADY_USED", http.StatusConflict, ErrTokenAlreadyUsed},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			srv := fakeService(t, func(string) (int, string) {
				return tc.status, errorBody(tc.code)
			})
			defer srv.Close()

			c := New(srv.URL)
			_, err := c.Verify(context.Background(), "some-token")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr))
		})
	}
}

func TestVerifyNetworkError(t *testing.T) {
	srv := fakeService(t, func(string) (int, string) {
		return http.StatusOK, successBody()
	})
	srv.Close() // unreachable on purpose

	c := New(srv.URL)
	_, err := c.Verify(context.Background(), "some-token")
	require.Error(t, err)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage(ErrTokenAlreadyUsed), "already used")
	assert.Contains(t, UserMessage(ErrTokenExpired), "expired")
	assert.Contains(t, UserMessage(ErrInvalidToken), "not valid")
	assert.Contains(t, UserMessage(&NetworkError{Err: errors.New("refused")}), "connection")
	assert.Contains(t, UserMessage(errors.New("odd")), "try again")
}
