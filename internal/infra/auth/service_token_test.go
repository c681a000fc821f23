package auth

import (
	"testing"
	"time"

	"atelier/config"
	"atelier/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestService(t *testing.T, clock service.Clock) service.ServiceTokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Service = "test-secret"

	svc, err := NewServiceTokenService(cfg, clock)
	require.NoError(t, err)

	return svc
}

func TestServiceToken_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	token, err := svc.MintServiceToken("cleanup-scheduler")
	require.NoError(t, err)

	subject, err := svc.ValidateServiceToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cleanup-scheduler", subject)
}

func TestServiceToken_ExpiredRejected(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	token, err := svc.MintServiceToken("cleanup-scheduler")
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Hour)
	_, err = svc.ValidateServiceToken(token)
	assert.Error(t, err)
}

func TestServiceToken_GarbageRejected(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(t, clock)

	_, err := svc.ValidateServiceToken("not-a-jwt")
	assert.Error(t, err)
}

func TestNewServiceTokenService_RequiresSecret(t *testing.T) {
	_, err := NewServiceTokenService(&config.Config{}, &fakeClock{now: time.Now()})
	assert.Error(t, err)
}
