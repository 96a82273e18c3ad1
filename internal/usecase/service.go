package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

var (
	// ErrServiceNotFound indicates the organizational unit does not exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrInvalidService indicates the service payload fails validation.
	ErrInvalidService = errors.New("invalid service")
)

// ServiceInput captures the payload for creating or updating an
// organizational unit.
type ServiceInput struct {
	Name             string
	Description      string
	HeadID           *string
	Color            string
	WorkloadCapacity int
}

// OrgService manages the organizational units users and projects attach to.
type OrgService struct {
	services port.ServiceRepository
	access   *AccessService
}

// NewOrgService constructs an OrgService.
func NewOrgService(services port.ServiceRepository, access *AccessService) *OrgService {
	return &OrgService{services: services, access: access}
}

// Create provisions a new organizational unit.
func (s *OrgService) Create(ctx context.Context, actor *domain.User, input ServiceInput) (*domain.Service, error) {
	if !s.access.CheckAnyPermission(actor, domain.PermAddService) {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidService)
	}

	service := domain.Service{
		ID:               uuid.NewString(),
		Name:             name,
		Description:      input.Description,
		HeadID:           input.HeadID,
		Color:            input.Color,
		WorkloadCapacity: input.WorkloadCapacity,
	}

	if err := s.services.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &service, nil
}

// Get returns one organizational unit.
func (s *OrgService) Get(ctx context.Context, serviceID string) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return service, nil
}

// List returns every organizational unit.
func (s *OrgService) List(ctx context.Context) ([]domain.Service, error) {
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// Update mutates an organizational unit.
func (s *OrgService) Update(ctx context.Context, actor *domain.User, serviceID string, input ServiceInput) (*domain.Service, error) {
	if !s.access.CheckAnyPermission(actor, domain.PermChangeService) {
		return nil, ErrPermissionDenied
	}

	service, err := s.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		service.Name = name
	}
	service.Description = input.Description
	service.HeadID = input.HeadID
	service.Color = input.Color
	if input.WorkloadCapacity > 0 {
		service.WorkloadCapacity = input.WorkloadCapacity
	}

	if err := s.services.Update(ctx, *service); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return service, nil
}

// Delete removes an organizational unit.
func (s *OrgService) Delete(ctx context.Context, actor *domain.User, serviceID string) error {
	if !s.access.CheckAnyPermission(actor, domain.PermDeleteService) {
		return ErrPermissionDenied
	}

	if err := s.services.Delete(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}
