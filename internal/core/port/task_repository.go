package port

import (
	"context"
	"time"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status    domain.TaskStatus
	ProjectID string
	ServiceID string
	Limit     int
	Offset    int
}

// TaskRepository exposes persistence behavior for tasks and their comments.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, task domain.Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	SetAssignees(ctx context.Context, taskID string, userIDs []string) error
	// ListDueBetween returns non-completed tasks whose deadline falls in
	// the half-open window (after, until].
	ListDueBetween(ctx context.Context, after, until time.Time) ([]domain.Task, error)
	AddComment(ctx context.Context, comment domain.Comment) error
	ListComments(ctx context.Context, taskID string) ([]domain.Comment, error)
}
