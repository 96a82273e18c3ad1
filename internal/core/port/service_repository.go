package port

import (
	"context"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// ServiceRepository exposes persistence behavior for organizational units.
type ServiceRepository interface {
	Create(ctx context.Context, service domain.Service) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	Update(ctx context.Context, service domain.Service) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Service, error)
}
