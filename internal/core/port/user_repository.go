package port

import (
	"context"
	"time"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role      domain.Role
	ServiceID string
	IsActive  *bool
	Limit     int
	Offset    int
}

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	SetPermissions(ctx context.Context, userID string, codenames []string) error
	RecordLogin(ctx context.Context, userID string, at time.Time) error
}
