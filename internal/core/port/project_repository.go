package port

import (
	"context"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status    domain.ProjectStatus
	ServiceID string
	Limit     int
	Offset    int
}

// ProjectRepository exposes persistence behavior for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	SetMembers(ctx context.Context, projectID string, memberIDs []string) error
}
