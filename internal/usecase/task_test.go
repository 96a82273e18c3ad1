package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

type taskRepoMock struct {
	tasks     map[string]*domain.Task
	comments  map[string][]domain.Comment
	assignErr error
}

func newTaskRepoMock(tasks ...*domain.Task) *taskRepoMock {
	m := &taskRepoMock{
		tasks:    make(map[string]*domain.Task),
		comments: make(map[string][]domain.Comment),
	}
	for _, task := range tasks {
		m.tasks[task.ID] = task
	}
	return m
}

func (m *taskRepoMock) Create(_ context.Context, task domain.Task) error {
	m.tasks[task.ID] = &task
	return nil
}

func (m *taskRepoMock) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *task
	return &clone, nil
}

func (m *taskRepoMock) Update(_ context.Context, task domain.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return repository.ErrNotFound
	}
	m.tasks[task.ID] = &task
	return nil
}

func (m *taskRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *taskRepoMock) List(_ context.Context, _ port.TaskFilter) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		out = append(out, *task)
	}
	return out, nil
}

func (m *taskRepoMock) SetAssignees(_ context.Context, taskID string, userIDs []string) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return repository.ErrNotFound
	}
	task.AssignedTo = userIDs
	return nil
}

func (m *taskRepoMock) ListDueBetween(_ context.Context, after, until time.Time) ([]domain.Task, error) {
	out := make([]domain.Task, 0)
	for _, task := range m.tasks {
		if task.Status == domain.TaskStatusCompleted {
			continue
		}
		if task.Deadline.After(after) && !task.Deadline.After(until) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *taskRepoMock) AddComment(_ context.Context, comment domain.Comment) error {
	m.comments[comment.TaskID] = append(m.comments[comment.TaskID], comment)
	return nil
}

func (m *taskRepoMock) ListComments(_ context.Context, taskID string) ([]domain.Comment, error) {
	return m.comments[taskID], nil
}

type taskFixture struct {
	repo    *taskRepoMock
	users   *userRepoMock
	sink    *sinkMock
	events  *eventsMock
	service *TaskService
}

func newTaskFixture(t *testing.T, repo *taskRepoMock, users *userRepoMock) *taskFixture {
	t.Helper()

	sink := &sinkMock{}
	events := &eventsMock{}
	return &taskFixture{
		repo:    repo,
		users:   users,
		sink:    sink,
		events:  events,
		service: NewTaskService(repo, users, NewAccessService(), sink, events, zaptest.NewLogger(t)),
	}
}

func employeeUser(id, username string, perms ...string) *domain.User {
	return &domain.User{
		ID:          id,
		Username:    username,
		Email:       username + "@gptc.ga",
		Role:        domain.RoleEmployee,
		Permissions: perms,
		IsActive:    true,
	}
}

func TestTaskCreateNotifiesInitialAssignees(t *testing.T) {
	fx := newTaskFixture(t, newTaskRepoMock(), newUserRepoMock())
	actor := employeeUser("u-1", "marie", domain.PermAddTask)

	task, err := fx.service.Create(context.Background(), actor, CreateTaskInput{
		Title:      "Préparer la revue",
		Priority:   domain.TaskPriorityHigh,
		Deadline:   time.Now().Add(48 * time.Hour),
		ServiceID:  "svc-1",
		AssignedTo: []string{"u-1", "u-2", "u-3"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.Status != domain.TaskStatusTodo {
		t.Errorf("expected new task to start in todo, got %s", task.Status)
	}

	recipients := fx.sink.recipients()
	if len(recipients) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(recipients))
	}
	if containsID(recipients, "u-1") {
		t.Error("creator must not be notified of their own assignment")
	}
	if len(fx.events.taskEvents) != 2 {
		t.Fatalf("expected 2 assignment events, got %d", len(fx.events.taskEvents))
	}
}

func TestTaskCreateRequiresPermission(t *testing.T) {
	fx := newTaskFixture(t, newTaskRepoMock(), newUserRepoMock())
	actor := employeeUser("u-1", "marie")

	_, err := fx.service.Create(context.Background(), actor, CreateTaskInput{Title: "X"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(fx.repo.tasks) != 0 {
		t.Error("denied create must not persist anything")
	}
}

func TestTaskCreateRejectsBlankTitle(t *testing.T) {
	fx := newTaskFixture(t, newTaskRepoMock(), newUserRepoMock())
	actor := employeeUser("u-1", "marie", domain.PermAddTask)

	_, err := fx.service.Create(context.Background(), actor, CreateTaskInput{Title: "   "})
	if !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}
}

func TestTaskAssignNotifiesOnlyNewAssignees(t *testing.T) {
	existing := &domain.Task{
		ID:         "t-1",
		Title:      "Migrer la base",
		Status:     domain.TaskStatusInProgress,
		Priority:   domain.TaskPriorityMedium,
		CreatedBy:  "u-1",
		AssignedTo: []string{"u-2"},
		ServiceID:  "svc-1",
	}
	fx := newTaskFixture(t, newTaskRepoMock(existing), newUserRepoMock())
	actor := employeeUser("u-1", "marie")

	task, err := fx.service.Assign(context.Background(), actor, "t-1", []string{"u-2", "u-3", "u-4"})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if len(task.AssignedTo) != 3 {
		t.Fatalf("expected 3 assignees, got %d", len(task.AssignedTo))
	}

	recipients := fx.sink.recipients()
	if len(recipients) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(recipients))
	}
	if containsID(recipients, "u-2") {
		t.Error("already-assigned user must not be re-notified")
	}
	if !containsID(recipients, "u-3") || !containsID(recipients, "u-4") {
		t.Errorf("expected the new assignees to be notified, got %v", recipients)
	}

	if len(fx.events.taskEvents) != 2 {
		t.Fatalf("expected 2 assignment events, got %d", len(fx.events.taskEvents))
	}
	for _, event := range fx.events.taskEvents {
		if event.AssignedBy != "u-1" {
			t.Errorf("expected assigned_by u-1, got %s", event.AssignedBy)
		}
	}
}

func TestTaskAssignDeniedForOutsider(t *testing.T) {
	existing := &domain.Task{ID: "t-1", Title: "x", CreatedBy: "u-1", ServiceID: "svc-1"}
	fx := newTaskFixture(t, newTaskRepoMock(existing), newUserRepoMock())
	actor := employeeUser("u-9", "paul")

	_, err := fx.service.Assign(context.Background(), actor, "t-1", []string{"u-9"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if fx.sink.delivers != 0 {
		t.Error("denied assignment must not notify anyone")
	}
}

func TestTaskCommentResolvesMentions(t *testing.T) {
	existing := &domain.Task{ID: "t-1", Title: "Rédiger le rapport", CreatedBy: "u-1", ServiceID: "svc-1"}
	users := newUserRepoMock(
		employeeUser("u-1", "marie"),
		employeeUser("u-2", "paul"),
		employeeUser("u-3", "claire"),
	)
	fx := newTaskFixture(t, newTaskRepoMock(existing), users)
	actor := employeeUser("u-1", "marie")

	comment, err := fx.service.Comment(context.Background(), actor, "t-1", AddCommentInput{
		Content: "Vu avec @paul et @claire, on valide. cc @inconnu",
	})
	if err != nil {
		t.Fatalf("Comment returned error: %v", err)
	}
	if len(comment.Mentions) != 2 {
		t.Fatalf("expected 2 resolved mentions, got %v", comment.Mentions)
	}

	recipients := fx.sink.recipients()
	if len(recipients) != 2 {
		t.Fatalf("expected 2 mention deliveries, got %d", len(recipients))
	}
	if containsID(recipients, "u-1") {
		t.Error("author must not be notified of their own comment")
	}

	stored, err := fx.repo.ListComments(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("ListComments returned error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored comment, got %d", len(stored))
	}
}

func TestTaskCommentSelfMentionIsSuppressed(t *testing.T) {
	existing := &domain.Task{ID: "t-1", Title: "x", CreatedBy: "u-1", ServiceID: "svc-1"}
	users := newUserRepoMock(employeeUser("u-1", "marie"))
	fx := newTaskFixture(t, newTaskRepoMock(existing), users)
	actor := employeeUser("u-1", "marie")

	comment, err := fx.service.Comment(context.Background(), actor, "t-1", AddCommentInput{
		Content: "Je m'en occupe @marie",
	})
	if err != nil {
		t.Fatalf("Comment returned error: %v", err)
	}
	if len(comment.Mentions) != 1 {
		t.Fatalf("expected the mention to resolve, got %v", comment.Mentions)
	}
	if fx.sink.delivers != 0 {
		t.Error("self-mention must not produce a delivery")
	}
}

func TestTaskDeleteCreatorOverride(t *testing.T) {
	existing := &domain.Task{ID: "t-1", Title: "x", CreatedBy: "u-1", ServiceID: "svc-1"}
	fx := newTaskFixture(t, newTaskRepoMock(existing), newUserRepoMock())

	creator := employeeUser("u-1", "marie")
	if err := fx.service.Delete(context.Background(), creator, "t-1"); err != nil {
		t.Fatalf("creator delete returned error: %v", err)
	}
	if len(fx.repo.tasks) != 0 {
		t.Error("expected the task to be removed")
	}
}

func TestTaskDeleteDeniedWithoutCapability(t *testing.T) {
	existing := &domain.Task{ID: "t-1", Title: "x", CreatedBy: "u-1", AssignedTo: []string{"u-2"}, ServiceID: "svc-1"}
	fx := newTaskFixture(t, newTaskRepoMock(existing), newUserRepoMock())

	// Assignees may edit, never delete.
	assignee := employeeUser("u-2", "paul")
	if err := fx.service.Delete(context.Background(), assignee, "t-1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestTaskUpdateStampsCompletion(t *testing.T) {
	existing := &domain.Task{ID: "t-1", Title: "x", Status: domain.TaskStatusInProgress, CreatedBy: "u-1", ServiceID: "svc-1"}
	fx := newTaskFixture(t, newTaskRepoMock(existing), newUserRepoMock())
	actor := employeeUser("u-1", "marie")

	status := domain.TaskStatusCompleted
	task, err := fx.service.Update(context.Background(), actor, "t-1", UpdateTaskInput{Status: &status})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if task.CompletedAt == nil {
		t.Fatal("expected completion timestamp to be set")
	}
}

func TestTaskGetInvisibleLooksLikeMissing(t *testing.T) {
	existing := &domain.Task{ID: "t-1", Title: "x", CreatedBy: "u-1", ServiceID: "svc-1"}
	fx := newTaskFixture(t, newTaskRepoMock(existing), newUserRepoMock())
	outsider := employeeUser("u-9", "paul")

	_, err := fx.service.Get(context.Background(), outsider, "t-1")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for invisible task, got %v", err)
	}
}

func TestTaskListFiltersByVisibility(t *testing.T) {
	svc := "svc-1"
	fx := newTaskFixture(t, newTaskRepoMock(
		&domain.Task{ID: "t-1", Title: "mine", CreatedBy: "u-1", ServiceID: "svc-1"},
		&domain.Task{ID: "t-2", Title: "assigned", CreatedBy: "u-9", AssignedTo: []string{"u-1"}, ServiceID: "svc-2"},
		&domain.Task{ID: "t-3", Title: "other", CreatedBy: "u-9", ServiceID: "svc-2"},
	), newUserRepoMock())

	employee := employeeUser("u-1", "marie")
	tasks, err := fx.service.List(context.Background(), employee, port.TaskFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 visible tasks, got %d", len(tasks))
	}

	manager := &domain.User{ID: "u-5", Role: domain.RoleManager, ServiceID: &svc, IsActive: true}
	tasks, err = fx.service.List(context.Background(), manager, port.TaskFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t-1" {
		t.Fatalf("expected the manager to supervise only their service's task, got %v", tasks)
	}
}
