package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

var (
	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidProject indicates the project payload fails validation.
	ErrInvalidProject = errors.New("invalid project")
)

// CreateProjectInput captures the payload for creating a project.
type CreateProjectInput struct {
	Name        string
	Description string
	ServiceID   string
	ServiceIDs  []string
	ChefID      *string
	MemberIDs   []string
	StartDate   *time.Time
	EndDate     *time.Time
	Color       string
}

// UpdateProjectInput captures the mutable project fields.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
	Progress    *int
	StartDate   *time.Time
	EndDate     *time.Time
	RiskLevel   *string
}

// ProjectService owns the project lifecycle: CRUD guarded by the access
// rules, with team fan-out on the changes members care about.
type ProjectService struct {
	projects port.ProjectRepository
	access   *AccessService
	sink     port.NotificationSink
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(
	projects port.ProjectRepository,
	access *AccessService,
	sink port.NotificationSink,
	events port.EventPublisher,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		access:   access,
		sink:     sink,
		events:   events,
		logger:   logger,
	}
}

// Create persists a new project.
func (s *ProjectService) Create(ctx context.Context, actor *domain.User, input CreateProjectInput) (*domain.Project, error) {
	if actor == nil {
		return nil, ErrPermissionDenied
	}
	if !s.access.CheckAnyPermission(actor, domain.PermAddProject) {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProject)
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: input.Description,
		Status:      domain.ProjectStatusPlanning,
		Color:       input.Color,
		CreatedBy:   actor.ID,
		ChefID:      input.ChefID,
		MemberIDs:   input.MemberIDs,
		ServiceID:   input.ServiceID,
		ServiceIDs:  input.ServiceIDs,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	return &project, nil
}

// Get returns one project, applying the visibility rules.
func (s *ProjectService) Get(ctx context.Context, actor *domain.User, projectID string) (*domain.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	visible := s.access.FilterProjects([]domain.Project{*project}, actor)
	if len(visible) == 0 {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// List returns the projects visible to the actor under the given filter.
func (s *ProjectService) List(ctx context.Context, actor *domain.User, filter port.ProjectFilter) ([]domain.Project, error) {
	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return s.access.FilterProjects(projects, actor), nil
}

// Update mutates a project the actor is allowed to edit. Status and date
// changes fan out to the team.
func (s *ProjectService) Update(ctx context.Context, actor *domain.User, projectID string, input UpdateProjectInput) (*domain.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanEditProject(actor, project) {
		return nil, ErrPermissionDenied
	}

	statusChanged := false
	datesChanged := false

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidProject)
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil && *input.Status != project.Status {
		project.Status = *input.Status
		statusChanged = true
	}
	if input.Progress != nil {
		progress := *input.Progress
		if progress < 0 || progress > 100 {
			return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidProject)
		}
		project.Progress = progress
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
		datesChanged = true
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
		datesChanged = true
	}
	if input.RiskLevel != nil {
		project.RiskLevel = *input.RiskLevel
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if statusChanged {
		s.fanOutUpdate(ctx, actor, project, domain.ProjectUpdateStatus)
	}
	if datesChanged {
		s.fanOutUpdate(ctx, actor, project, domain.ProjectUpdateDeadline)
	}

	return project, nil
}

// SetMembers replaces the project roster and fans out a team update.
func (s *ProjectService) SetMembers(ctx context.Context, actor *domain.User, projectID string, memberIDs []string) (*domain.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanEditProject(actor, project) {
		return nil, ErrPermissionDenied
	}

	if err := s.projects.SetMembers(ctx, projectID, memberIDs); err != nil {
		return nil, fmt.Errorf("set project members: %w", err)
	}

	project.MemberIDs = memberIDs
	project.TeamMemberIDs = nil
	project.MemberDetails = nil
	project.UpdatedAt = time.Now().UTC()

	s.fanOutUpdate(ctx, actor, project, domain.ProjectUpdateTeam)

	return project, nil
}

// Delete removes a project the actor is allowed to delete.
func (s *ProjectService) Delete(ctx context.Context, actor *domain.User, projectID string) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if !s.access.CanDeleteProject(actor, project) {
		return ErrPermissionDenied
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) getProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// fanOutUpdate notifies the team and mirrors the change on the event bus.
// Fan-out failures are logged, never fatal to the save.
func (s *ProjectService) fanOutUpdate(ctx context.Context, actor *domain.User, project *domain.Project, kind domain.ProjectUpdateKind) {
	dispatcher := NewDispatcher(s.sink, actor.ID, nil)
	if err := dispatcher.NotifyProjectUpdate(ctx, project, kind); err != nil {
		s.logger.Warn("partial project fan-out failure",
			zap.String("project_id", project.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}

	event := domain.ProjectUpdatedEvent{
		EventID:    uuid.NewString(),
		ProjectID:  project.ID,
		UpdateKind: string(kind),
		UpdatedBy:  actor.ID,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.events.PublishProjectUpdated(ctx, event); err != nil {
		s.logger.Warn("failed to publish project event",
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
	}
}
