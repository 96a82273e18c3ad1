package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/security"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

type userRepoMock struct {
	users      map[string]*domain.User
	lastLogins map[string]time.Time
	perms      map[string][]string
}

func newUserRepoMock(users ...*domain.User) *userRepoMock {
	m := &userRepoMock{
		users:      make(map[string]*domain.User),
		lastLogins: make(map[string]time.Time),
		perms:      make(map[string][]string),
	}
	for _, user := range users {
		m.users[user.ID] = user
	}
	return m
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) error {
	m.users[user.ID] = &user
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *userRepoMock) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == identifier || user.Email == identifier {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) Update(_ context.Context, user domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = &user
	return nil
}

func (m *userRepoMock) List(_ context.Context, _ port.UserFilter) ([]domain.User, error) {
	out := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, nil
}

func (m *userRepoMock) SetPermissions(_ context.Context, userID string, codenames []string) error {
	m.perms[userID] = codenames
	return nil
}

func (m *userRepoMock) RecordLogin(_ context.Context, userID string, at time.Time) error {
	m.lastLogins[userID] = at
	return nil
}

type rateLimitMock struct {
	attempts map[string]int
	resets   int
}

func newRateLimitMock() *rateLimitMock {
	return &rateLimitMock{attempts: make(map[string]int)}
}

func (m *rateLimitMock) CountAttempts(_ context.Context, identifier string) (int, error) {
	return m.attempts[identifier], nil
}

func (m *rateLimitMock) RecordAttempt(_ context.Context, identifier string) error {
	m.attempts[identifier]++
	return nil
}

func (m *rateLimitMock) Reset(_ context.Context, identifier string) error {
	delete(m.attempts, identifier)
	m.resets++
	return nil
}

func newAuthFixture(t *testing.T, users *userRepoMock, limits *rateLimitMock, sink *sinkMock, events *eventsMock) *AuthService {
	t.Helper()

	tokens, err := security.NewTokenManager("test-secret-0123456789", "oddl-service", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	return NewAuthService(users, limits, tokens, sink, events, zaptest.NewLogger(t), 3)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	return hash
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	users := newUserRepoMock(&domain.User{
		ID:           "u-1",
		Username:     "amartin",
		Email:        "a.martin@example.com",
		PasswordHash: hashFor(t, "Corr3ct-Horse-Battery"),
		Role:         domain.RoleManager,
		IsActive:     true,
	})
	limits := newRateLimitMock()
	limits.attempts["amartin"] = 2
	svc := newAuthFixture(t, users, limits, &sinkMock{}, &eventsMock{})

	result, err := svc.Login(context.Background(), "amartin", "Corr3ct-Horse-Battery", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected a non-empty access token")
	}
	if result.User.PasswordHash != "" {
		t.Fatal("password hash leaked in login result")
	}
	if _, ok := users.lastLogins["u-1"]; !ok {
		t.Fatal("expected login timestamp to be recorded")
	}
	if limits.resets != 1 {
		t.Fatalf("expected rate limit window reset, got %d resets", limits.resets)
	}
}

func TestLoginWrongPasswordRecordsAttempt(t *testing.T) {
	users := newUserRepoMock(&domain.User{
		ID:           "u-1",
		Username:     "amartin",
		Email:        "a.martin@example.com",
		PasswordHash: hashFor(t, "Corr3ct-Horse-Battery"),
		Role:         domain.RoleEmployee,
		IsActive:     true,
	})
	limits := newRateLimitMock()
	svc := newAuthFixture(t, users, limits, &sinkMock{}, &eventsMock{})

	_, err := svc.Login(context.Background(), "amartin", "wrong", nil)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if limits.attempts["amartin"] != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", limits.attempts["amartin"])
	}
}

func TestLoginUnknownUserRecordsAttempt(t *testing.T) {
	limits := newRateLimitMock()
	svc := newAuthFixture(t, newUserRepoMock(), limits, &sinkMock{}, &eventsMock{})

	_, err := svc.Login(context.Background(), "ghost", "whatever", nil)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if limits.attempts["ghost"] != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", limits.attempts["ghost"])
	}
}

func TestLoginRateLimited(t *testing.T) {
	users := newUserRepoMock(&domain.User{
		ID:           "u-1",
		Username:     "amartin",
		PasswordHash: hashFor(t, "Corr3ct-Horse-Battery"),
		IsActive:     true,
	})
	limits := newRateLimitMock()
	limits.attempts["amartin"] = 3
	svc := newAuthFixture(t, users, limits, &sinkMock{}, &eventsMock{})

	_, err := svc.Login(context.Background(), "amartin", "Corr3ct-Horse-Battery", nil)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestLoginThresholdRaisesSecurityAlert(t *testing.T) {
	users := newUserRepoMock(&domain.User{
		ID:           "u-1",
		Username:     "amartin",
		PasswordHash: hashFor(t, "Corr3ct-Horse-Battery"),
		Role:         domain.RoleEmployee,
		IsActive:     true,
	})
	limits := newRateLimitMock()
	limits.attempts["amartin"] = 2
	sink := &sinkMock{}
	events := &eventsMock{}
	svc := newAuthFixture(t, users, limits, sink, events)

	ip := "203.0.113.7"
	_, err := svc.Login(context.Background(), "amartin", "wrong", &ip)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	recipients := sink.recipients()
	if len(recipients) != 1 || recipients[0] != "u-1" {
		t.Fatalf("expected one security alert for u-1, got %v", recipients)
	}
	if sink.drafts[0].Type != domain.NotificationSecurityAlert {
		t.Fatalf("unexpected notification type %q", sink.drafts[0].Type)
	}
	if len(events.securityEvents) != 1 {
		t.Fatalf("expected 1 security alert event, got %d", len(events.securityEvents))
	}
	if events.securityEvents[0].IPAddress == nil || *events.securityEvents[0].IPAddress != ip {
		t.Fatal("expected security alert event to carry the source IP")
	}
}

func TestLoginInactiveUser(t *testing.T) {
	users := newUserRepoMock(&domain.User{
		ID:           "u-1",
		Username:     "amartin",
		PasswordHash: hashFor(t, "Corr3ct-Horse-Battery"),
		IsActive:     false,
	})
	svc := newAuthFixture(t, users, newRateLimitMock(), &sinkMock{}, &eventsMock{})

	_, err := svc.Login(context.Background(), "amartin", "Corr3ct-Horse-Battery", nil)
	if !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestIdentifyRoundTrip(t *testing.T) {
	users := newUserRepoMock(&domain.User{
		ID:           "u-1",
		Username:     "amartin",
		PasswordHash: hashFor(t, "Corr3ct-Horse-Battery"),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	})
	svc := newAuthFixture(t, users, newRateLimitMock(), &sinkMock{}, &eventsMock{})

	result, err := svc.Login(context.Background(), "amartin", "Corr3ct-Horse-Battery", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	user, err := svc.Identify(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if user.ID != "u-1" {
		t.Fatalf("expected user u-1, got %s", user.ID)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked from Identify")
	}
}

func TestIdentifyRejectsGarbageToken(t *testing.T) {
	svc := newAuthFixture(t, newUserRepoMock(), newRateLimitMock(), &sinkMock{}, &eventsMock{})

	if _, err := svc.Identify(context.Background(), "not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}
