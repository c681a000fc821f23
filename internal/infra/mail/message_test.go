package mail

import (
	"net/url"
	"testing"

	"atelier/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationLink_RegistrationParam(t *testing.T) {
	link, err := VerificationLink("https://app.example.com/welcome", entity.KindRegistration, "tok-abc")
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", u.Query().Get("registrationToken"))
}

func TestVerificationLink_PreservesExistingQuery(t *testing.T) {
	link, err := VerificationLink("https://app.example.com/back?lang=de", entity.KindSignIn, "tok-abc")
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "de", u.Query().Get("lang"))
	assert.Equal(t, "tok-abc", u.Query().Get("signInToken"))
}

func TestVerificationMessage_StatesExpiryVerbatim(t *testing.T) {
	for _, kind := range []entity.RequestKind{entity.KindRegistration, entity.KindSignIn} {
		t.Run(string(kind), func(t *testing.T) {
			_, body := VerificationMessage(kind, "https://x/y?t=1")
			assert.Contains(t, body, "expiring in 24 hours")
			assert.Contains(t, body, "https://x/y?t=1")
		})
	}
}
