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
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrPermissionDenied indicates the actor may not perform the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTask indicates the task payload fails validation.
	ErrInvalidTask = errors.New("invalid task")
)

// CreateTaskInput captures the payload for creating a task.
type CreateTaskInput struct {
	Title         string
	Description   string
	Priority      domain.TaskPriority
	Deadline      time.Time
	ProjectID     *string
	ServiceID     string
	AssignedTo    []string
	Tags          []string
	EstimatedTime int
}

// UpdateTaskInput captures the mutable task fields.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	Deadline    *time.Time
	Tags        []string
}

// AddCommentInput captures the payload for commenting on a task.
type AddCommentInput struct {
	Content  string
	ParentID *string
}

// TaskService owns the task lifecycle: CRUD guarded by the access rules,
// assignment fan-out, and comment mentions.
type TaskService struct {
	tasks  port.TaskRepository
	users  port.UserRepository
	access *AccessService
	sink   port.NotificationSink
	events port.EventPublisher
	logger *zap.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(
	tasks port.TaskRepository,
	users port.UserRepository,
	access *AccessService,
	sink port.NotificationSink,
	events port.EventPublisher,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		access: access,
		sink:   sink,
		events: events,
		logger: logger,
	}
}

// Create persists a new task and notifies its initial assignees.
func (s *TaskService) Create(ctx context.Context, actor *domain.User, input CreateTaskInput) (*domain.Task, error) {
	if actor == nil {
		return nil, ErrPermissionDenied
	}
	if !s.access.CheckAnyPermission(actor, domain.PermAddTask) {
		return nil, ErrPermissionDenied
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   input.Description,
		Status:        domain.TaskStatusTodo,
		Priority:      priority,
		Deadline:      input.Deadline,
		CreatedBy:     actor.ID,
		AssignedTo:    input.AssignedTo,
		ProjectID:     input.ProjectID,
		ServiceID:     input.ServiceID,
		Tags:          input.Tags,
		EstimatedTime: input.EstimatedTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if len(task.AssignedTo) > 0 {
		s.fanOutAssignment(ctx, actor, &task, task.AssignedTo)
	}

	return &task, nil
}

// Get returns one task, applying the visibility rules.
func (s *TaskService) Get(ctx context.Context, actor *domain.User, taskID string) (*domain.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	visible := s.access.FilterTasks([]domain.Task{*task}, actor)
	if len(visible) == 0 {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// List returns the tasks visible to the actor under the given filter.
func (s *TaskService) List(ctx context.Context, actor *domain.User, filter port.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return s.access.FilterTasks(tasks, actor), nil
}

// Update mutates a task the actor is allowed to edit.
func (s *TaskService) Update(ctx context.Context, actor *domain.User, taskID string, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanEditTask(actor, task) {
		return nil, ErrPermissionDenied
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
		if task.Status == domain.TaskStatusCompleted && task.CompletedAt == nil {
			completedAt := time.Now().UTC()
			task.CompletedAt = &completedAt
		}
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Deadline != nil {
		task.Deadline = *input.Deadline
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, *task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

// Delete removes a task the actor is allowed to delete.
func (s *TaskService) Delete(ctx context.Context, actor *domain.User, taskID string) error {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}

	if !s.access.CanDeleteTask(actor, task) {
		return ErrPermissionDenied
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Assign replaces the task's assignee set and notifies the newly added
// users. Existing assignees are not re-notified.
func (s *TaskService) Assign(ctx context.Context, actor *domain.User, taskID string, assigneeIDs []string) (*domain.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanEditTask(actor, task) {
		return nil, ErrPermissionDenied
	}

	previous := make(map[string]struct{}, len(task.AssignedTo))
	for _, id := range task.AssignedTo {
		previous[id] = struct{}{}
	}

	added := make([]string, 0, len(assigneeIDs))
	for _, id := range assigneeIDs {
		if _, ok := previous[id]; !ok {
			added = append(added, id)
		}
	}

	if err := s.tasks.SetAssignees(ctx, taskID, assigneeIDs); err != nil {
		return nil, fmt.Errorf("set task assignees: %w", err)
	}
	task.AssignedTo = assigneeIDs

	if len(added) > 0 {
		s.fanOutAssignment(ctx, actor, task, added)
	}

	return task, nil
}

// Comment creates a task comment, resolves @-mentions against the user
// directory, and notifies the mentioned users.
func (s *TaskService) Comment(ctx context.Context, actor *domain.User, taskID string, input AddCommentInput) (*domain.Comment, error) {
	if actor == nil {
		return nil, ErrPermissionDenied
	}

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrInvalidTask)
	}

	directory, err := s.users.List(ctx, port.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("list users for mention resolution: %w", err)
	}

	dispatcher := NewDispatcher(s.sink, actor.ID, directory)
	mentionIDs := dispatcher.ResolveMentionIDs(ExtractMentions(content))

	comment := domain.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Content:   content,
		AuthorID:  actor.ID,
		Mentions:  mentionIDs,
		ParentID:  input.ParentID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.tasks.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	if len(mentionIDs) > 0 {
		if err := dispatcher.NotifyCommentMention(ctx, &comment, task, mentionIDs); err != nil {
			s.logger.Warn("partial mention fan-out failure",
				zap.String("comment_id", comment.ID),
				zap.Error(err),
			)
		}
	}

	return &comment, nil
}

// Comments lists the comments of a task the actor can see.
func (s *TaskService) Comments(ctx context.Context, actor *domain.User, taskID string) ([]domain.Comment, error) {
	if _, err := s.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}

	comments, err := s.tasks.ListComments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *TaskService) getTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// fanOutAssignment notifies the given assignees and mirrors each assignment
// on the event bus. Fan-out failures are logged, never fatal to the save.
func (s *TaskService) fanOutAssignment(ctx context.Context, actor *domain.User, task *domain.Task, assigneeIDs []string) {
	dispatcher := NewDispatcher(s.sink, actor.ID, nil)
	if err := dispatcher.NotifyTaskAssigned(ctx, task, assigneeIDs); err != nil {
		s.logger.Warn("partial assignment fan-out failure",
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
	}

	assignedAt := time.Now().UTC()
	for _, assigneeID := range assigneeIDs {
		if assigneeID == actor.ID {
			continue
		}
		event := domain.TaskAssignedEvent{
			EventID:    uuid.NewString(),
			TaskID:     task.ID,
			TaskTitle:  task.Title,
			AssigneeID: assigneeID,
			AssignedBy: actor.ID,
			Priority:   string(task.Priority),
			AssignedAt: assignedAt,
		}
		if err := s.events.PublishTaskAssigned(ctx, event); err != nil {
			s.logger.Warn("failed to publish assignment event",
				zap.String("task_id", task.ID),
				zap.Error(err),
			)
		}
	}
}
