package impl

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"atelier/config"
	"atelier/internal/domain/service"
	"atelier/internal/infra/mail"
	"atelier/internal/infra/memory"
	"atelier/internal/infra/token"
	"atelier/internal/usecase"

	"github.com/pkg/errors"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable time source shared by a test fixture.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// fakeIdentity is an in-memory identity provider.
type fakeIdentity struct {
	mu      sync.Mutex
	byEmail map[string]*service.IdentityUser
	nextUID int

	findErr error
	mintErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{byEmail: make(map[string]*service.IdentityUser)}
}

func (f *fakeIdentity) FindByEmail(_ context.Context, email string) (*service.IdentityUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}

	user, ok := f.byEmail[email]
	if !ok {
		return nil, service.ErrIdentityUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, displayName string) (*service.IdentityUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byEmail[email]; ok {
		return nil, service.ErrIdentityUserExists
	}

	f.nextUID++
	user := &service.IdentityUser{
		UID:         "uid-" + strconv.Itoa(f.nextUID),
		Email:       email,
		DisplayName: displayName,
	}
	f.byEmail[email] = user
	clone := *user

	return &clone, nil
}

func (f *fakeIdentity) MintSessionToken(_ context.Context, uid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mintErr != nil {
		return "", f.mintErr
	}

	return "session-" + uid, nil
}

// seedUser registers an existing account directly with the provider.
func (f *fakeIdentity) seedUser(email, displayName string) *service.IdentityUser {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextUID++
	user := &service.IdentityUser{
		UID:         "uid-" + strconv.Itoa(f.nextUID),
		Email:       email,
		DisplayName: displayName,
	}
	f.byEmail[email] = user

	return user
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []*service.AuthEvent
	err    error
}

func (p *capturePublisher) PublishAuthEvent(_ context.Context, event *service.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *capturePublisher) Close() error {
	return nil
}

func (p *capturePublisher) Events() []*service.AuthEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*service.AuthEvent, len(p.events))
	copy(out, p.events)

	return out
}

// fixture wires the services against in-memory infrastructure.
type fixture struct {
	requests  *memory.AuthRequestRepository
	profiles  *memory.ProfileRepository
	identity  *fakeIdentity
	sender    *mail.MemorySender
	publisher *capturePublisher
	clock     *fakeClock

	registration usecase.AuthRequestUsecase
	verification usecase.VerificationUsecase
	cleanup      usecase.CleanupUsecase
}

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(cfg *config.Config) *fixture {
	if cfg == nil {
		cfg = &config.Config{}
	}

	fx := &fixture{
		requests:  memory.NewAuthRequestRepository(),
		profiles:  memory.NewProfileRepository(),
		identity:  newFakeIdentity(),
		sender:    mail.NewMemorySender(),
		publisher: &capturePublisher{},
		clock:     newFakeClock(testEpoch),
	}

	logger := newDiscardLogger()
	generator := token.NewGenerator()

	fx.registration = NewRegistrationService(RegistrationServiceParams{
		Requests:  fx.requests,
		Identity:  fx.identity,
		Generator: generator,
		Sender:    fx.sender,
		Publisher: fx.publisher,
		Clock:     fx.clock,
		Config:    cfg,
		Logger:    logger,
	})

	fx.verification = NewVerificationService(VerificationServiceParams{
		Requests:  fx.requests,
		Profiles:  fx.profiles,
		Identity:  fx.identity,
		Publisher: fx.publisher,
		Clock:     fx.clock,
		Logger:    logger,
	})

	fx.cleanup = NewCleanupService(CleanupServiceParams{
		Requests:  fx.requests,
		Publisher: fx.publisher,
		Clock:     fx.clock,
		Config:    cfg,
		Logger:    logger,
	})

	return fx
}

var errStorageDown = errors.New("storage unavailable")
