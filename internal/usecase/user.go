package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/logger"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/security"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists indicates the username or email is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUser indicates the user payload fails validation.
	ErrInvalidUser = errors.New("invalid user")
)

// CreateUserInput captures the payload for provisioning a user.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      domain.Role
	ServiceID *string
	Phone     *string
}

// UpdateUserInput captures the mutable profile fields.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Bio       *string
	ServiceID *string
	IsActive  *bool
}

// UserService provisions accounts and maintains the directory. New users are
// seeded with their role's default permission codenames.
type UserService struct {
	users     port.UserRepository
	access    *AccessService
	validator *security.PasswordValidator
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository, access *AccessService, validator *security.PasswordValidator) *UserService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &UserService{users: users, access: access, validator: validator}
}

// Create provisions a new account with role-default permissions.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	if !s.access.CheckAnyPermission(actor, domain.PermAddUser) {
		return nil, ErrPermissionDenied
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, input.Role)
	}

	if err := s.validator.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}

	if existing, err := s.users.GetByIdentifier(ctx, username); err == nil && existing != nil {
		return nil, ErrUserExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		PasswordAlgo: "argon2id",
		Role:         input.Role,
		ServiceID:    input.ServiceID,
		Permissions:  domain.DefaultPermissions(input.Role),
		Phone:        input.Phone,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.PasswordHash = ""
	return &user, nil
}

// Get returns one user profile.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// List returns the user directory under the given filter.
func (s *UserService) List(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Update mutates a profile. Users may edit themselves; anything else needs
// the change_user codename.
func (s *UserService) Update(ctx context.Context, actor *domain.User, userID string, input UpdateUserInput) (*domain.User, error) {
	if actor == nil {
		return nil, ErrPermissionDenied
	}
	if actor.ID != userID && !s.access.CheckAnyPermission(actor, domain.PermChangeUser) {
		return nil, ErrPermissionDenied
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}

	// Reassignment and deactivation are administrative moves.
	if input.ServiceID != nil || input.IsActive != nil {
		if !s.access.CheckAnyPermission(actor, domain.PermChangeUser) {
			return nil, ErrPermissionDenied
		}
		if input.ServiceID != nil {
			user.ServiceID = input.ServiceID
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
	}

	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// SetRole changes a user's role and reseeds the default permission set.
func (s *UserService) SetRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if !s.access.CheckAnyPermission(actor, domain.PermChangeUser) {
		return nil, ErrPermissionDenied
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, role)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Role = role
	user.Permissions = domain.DefaultPermissions(role)

	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if err := s.users.SetPermissions(ctx, userID, user.Permissions); err != nil {
		return nil, fmt.Errorf("set user permissions: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// MaskedEmail returns a log-safe rendering of the user's email.
func MaskedEmail(user *domain.User) string {
	if user == nil {
		return ""
	}
	return logger.MaskEmail(user.Email)
}
