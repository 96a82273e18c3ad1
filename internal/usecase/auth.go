package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/logger"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/security"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the identifier/password pair is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive indicates the account is deactivated.
	ErrUserInactive = errors.New("user account is inactive")
	// ErrTooManyAttempts indicates the rate limit window is exhausted.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// LoginResult carries the authenticated identity and its access token.
type LoginResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService authenticates users. Failed-attempt storms trigger a security
// alert through the notification pipeline.
type AuthService struct {
	users       port.UserRepository
	rateLimits  port.RateLimitStore
	tokens      *security.TokenManager
	sink        port.NotificationSink
	events      port.EventPublisher
	logger      *zap.Logger
	maxAttempts int
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	rateLimits port.RateLimitStore,
	tokens *security.TokenManager,
	sink port.NotificationSink,
	events port.EventPublisher,
	log *zap.Logger,
	maxAttempts int,
) *AuthService {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &AuthService{
		users:       users,
		rateLimits:  rateLimits,
		tokens:      tokens,
		sink:        sink,
		events:      events,
		logger:      log,
		maxAttempts: maxAttempts,
	}
}

// Login verifies the identifier/password pair and issues an access token.
// The identifier may be a username or an email address.
func (s *AuthService) Login(ctx context.Context, identifier, password string, ip *string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	attempts, err := s.rateLimits.CountAttempts(ctx, identifier)
	if err != nil {
		s.logger.Warn("rate limit probe failed", zap.Error(err))
	} else if attempts >= s.maxAttempts {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordFailure(ctx, identifier, nil, ip)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, identifier, user, ip)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
	if err := s.rateLimits.Reset(ctx, identifier); err != nil {
		s.logger.Warn("failed to reset rate limit window", zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	user.PasswordHash = ""
	user.LastLogin = &now
	return &LoginResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Identify resolves a validated token's claims to the stored user.
func (s *AuthService) Identify(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	user.PasswordHash = ""
	return user, nil
}

// recordFailure tracks the miss and, when the account crosses the attempt
// threshold, raises a security alert to its owner.
func (s *AuthService) recordFailure(ctx context.Context, identifier string, user *domain.User, ip *string) {
	if err := s.rateLimits.RecordAttempt(ctx, identifier); err != nil {
		s.logger.Warn("failed to record login attempt", zap.Error(err))
	}

	maskedIP := ""
	if ip != nil {
		maskedIP = logger.MaskIP(*ip)
	}
	s.logger.Info("failed login attempt",
		zap.String("identifier", logger.MaskString(identifier)),
		zap.String("ip", maskedIP),
	)

	if user == nil {
		return
	}

	attempts, err := s.rateLimits.CountAttempts(ctx, identifier)
	if err != nil || attempts < s.maxAttempts {
		return
	}

	dispatcher := NewDispatcher(s.sink, "", nil)
	message := "Plusieurs tentatives de connexion infructueuses ont été détectées sur votre compte."
	if err := dispatcher.NotifySecurityAlert(ctx, user.ID, message); err != nil {
		s.logger.Warn("failed to deliver security alert",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	event := domain.SecurityAlertEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		Message:    message,
		IPAddress:  ip,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishSecurityAlert(ctx, event); err != nil {
		s.logger.Warn("failed to publish security alert event",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
