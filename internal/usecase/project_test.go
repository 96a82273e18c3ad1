package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

type projectRepoMock struct {
	projects map[string]*domain.Project
}

func newProjectRepoMock(projects ...*domain.Project) *projectRepoMock {
	m := &projectRepoMock{projects: make(map[string]*domain.Project)}
	for _, project := range projects {
		m.projects[project.ID] = project
	}
	return m
}

func (m *projectRepoMock) Create(_ context.Context, project domain.Project) error {
	m.projects[project.ID] = &project
	return nil
}

func (m *projectRepoMock) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *project
	return &clone, nil
}

func (m *projectRepoMock) Update(_ context.Context, project domain.Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return repository.ErrNotFound
	}
	m.projects[project.ID] = &project
	return nil
}

func (m *projectRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *projectRepoMock) List(_ context.Context, _ port.ProjectFilter) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(m.projects))
	for _, project := range m.projects {
		out = append(out, *project)
	}
	return out, nil
}

func (m *projectRepoMock) SetMembers(_ context.Context, projectID string, memberIDs []string) error {
	project, ok := m.projects[projectID]
	if !ok {
		return repository.ErrNotFound
	}
	project.MemberIDs = memberIDs
	project.TeamMemberIDs = nil
	project.MemberDetails = nil
	return nil
}

type projectFixture struct {
	repo    *projectRepoMock
	sink    *sinkMock
	events  *eventsMock
	service *ProjectService
}

func newProjectFixture(t *testing.T, repo *projectRepoMock) *projectFixture {
	t.Helper()

	sink := &sinkMock{}
	events := &eventsMock{}
	return &projectFixture{
		repo:    repo,
		sink:    sink,
		events:  events,
		service: NewProjectService(repo, NewAccessService(), sink, events, zaptest.NewLogger(t)),
	}
}

func TestProjectCreateRequiresPermission(t *testing.T) {
	fx := newProjectFixture(t, newProjectRepoMock())
	actor := employeeUser("u-1", "marie")

	_, err := fx.service.Create(context.Background(), actor, CreateProjectInput{Name: "Refonte"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	actor.Permissions = []string{domain.PermAddProject}
	project, err := fx.service.Create(context.Background(), actor, CreateProjectInput{Name: "Refonte"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if project.Status != domain.ProjectStatusPlanning {
		t.Errorf("expected new project to start in planning, got %s", project.Status)
	}
	if project.CreatedBy != "u-1" {
		t.Errorf("expected creator u-1, got %s", project.CreatedBy)
	}
}

func TestProjectUpdateStatusFansOutToTeam(t *testing.T) {
	existing := &domain.Project{
		ID:        "p-1",
		Name:      "Refonte du portail",
		Status:    domain.ProjectStatusPlanning,
		CreatedBy: "u-1",
		MemberIDs: []string{"u-1", "u-2", "u-3"},
	}
	fx := newProjectFixture(t, newProjectRepoMock(existing))
	actor := employeeUser("u-1", "marie")

	status := domain.ProjectStatusActive
	project, err := fx.service.Update(context.Background(), actor, "p-1", UpdateProjectInput{Status: &status})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if project.Status != domain.ProjectStatusActive {
		t.Fatalf("expected active status, got %s", project.Status)
	}

	recipients := fx.sink.recipients()
	if len(recipients) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(recipients))
	}
	if containsID(recipients, "u-1") {
		t.Error("acting member must not be notified of their own change")
	}
	for _, draft := range fx.sink.drafts {
		if draft.Type != domain.NotificationProjectUpdate {
			t.Errorf("unexpected type: %s", draft.Type)
		}
		if !strings.Contains(draft.Message, "statut") {
			t.Errorf("expected a status message, got %q", draft.Message)
		}
	}

	if len(fx.events.projectEvents) != 1 {
		t.Fatalf("expected 1 project event, got %d", len(fx.events.projectEvents))
	}
	if fx.events.projectEvents[0].UpdateKind != string(domain.ProjectUpdateStatus) {
		t.Errorf("unexpected update kind: %s", fx.events.projectEvents[0].UpdateKind)
	}
}

func TestProjectUpdateSameStatusIsQuiet(t *testing.T) {
	existing := &domain.Project{
		ID:        "p-1",
		Name:      "Refonte",
		Status:    domain.ProjectStatusActive,
		CreatedBy: "u-1",
		MemberIDs: []string{"u-2"},
	}
	fx := newProjectFixture(t, newProjectRepoMock(existing))
	actor := employeeUser("u-1", "marie")

	status := domain.ProjectStatusActive
	if _, err := fx.service.Update(context.Background(), actor, "p-1", UpdateProjectInput{Status: &status}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if fx.sink.delivers != 0 {
		t.Error("unchanged status must not fan out")
	}
	if len(fx.events.projectEvents) != 0 {
		t.Error("unchanged status must not publish an event")
	}
}

func TestProjectUpdateRejectsBadProgress(t *testing.T) {
	existing := &domain.Project{ID: "p-1", Name: "Refonte", CreatedBy: "u-1"}
	fx := newProjectFixture(t, newProjectRepoMock(existing))
	actor := employeeUser("u-1", "marie")

	progress := 120
	_, err := fx.service.Update(context.Background(), actor, "p-1", UpdateProjectInput{Progress: &progress})
	if !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("expected ErrInvalidProject, got %v", err)
	}
}

func TestProjectSetMembersFansOutTeamUpdate(t *testing.T) {
	existing := &domain.Project{
		ID:            "p-1",
		Name:          "Refonte",
		CreatedBy:     "u-1",
		TeamMemberIDs: []string{"u-2"},
	}
	fx := newProjectFixture(t, newProjectRepoMock(existing))
	actor := employeeUser("u-1", "marie")

	project, err := fx.service.SetMembers(context.Background(), actor, "p-1", []string{"u-2", "u-3"})
	if err != nil {
		t.Fatalf("SetMembers returned error: %v", err)
	}
	if len(project.MemberIDs) != 2 || project.TeamMemberIDs != nil {
		t.Fatalf("expected the roster to collapse onto MemberIDs, got %+v", project)
	}

	recipients := fx.sink.recipients()
	if len(recipients) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(recipients))
	}
	for _, draft := range fx.sink.drafts {
		if !strings.Contains(draft.Message, "équipe") {
			t.Errorf("expected a team message, got %q", draft.Message)
		}
	}
}

func TestProjectDeleteCreatorIsNotEnough(t *testing.T) {
	existing := &domain.Project{ID: "p-1", Name: "Refonte", CreatedBy: "u-1"}
	fx := newProjectFixture(t, newProjectRepoMock(existing))

	// Creators may edit their project but, unlike tasks, not delete it.
	creator := employeeUser("u-1", "marie")
	if err := fx.service.Delete(context.Background(), creator, "p-1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for creator, got %v", err)
	}

	admin := &domain.User{ID: "u-9", Role: domain.RoleAdmin, IsActive: true}
	if err := fx.service.Delete(context.Background(), admin, "p-1"); err != nil {
		t.Fatalf("admin delete returned error: %v", err)
	}
	if len(fx.repo.projects) != 0 {
		t.Error("expected the project to be removed")
	}
}

func TestProjectListFiltersByMembership(t *testing.T) {
	svc := "svc-1"
	fx := newProjectFixture(t, newProjectRepoMock(
		&domain.Project{ID: "p-1", Name: "mine", CreatedBy: "u-1"},
		&domain.Project{ID: "p-2", Name: "member", CreatedBy: "u-9", TeamMemberIDs: []string{"u-1"}},
		&domain.Project{ID: "p-3", Name: "service", CreatedBy: "u-9", ServiceID: "svc-1"},
		&domain.Project{ID: "p-4", Name: "other", CreatedBy: "u-9"},
	))

	employee := employeeUser("u-1", "marie")
	projects, err := fx.service.List(context.Background(), employee, port.ProjectFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 visible projects, got %d", len(projects))
	}

	manager := &domain.User{ID: "u-5", Role: domain.RoleManager, ServiceID: &svc, IsActive: true}
	projects, err = fx.service.List(context.Background(), manager, port.ProjectFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p-3" {
		t.Fatalf("expected the manager to see their service's project, got %v", projects)
	}

	viewer := employeeUser("u-7", "paul", domain.PermViewProject)
	projects, err = fx.service.List(context.Background(), viewer, port.ProjectFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(projects) != 4 {
		t.Fatalf("expected the view-all holder to see everything, got %d", len(projects))
	}
}

func TestProjectGetInvisibleLooksLikeMissing(t *testing.T) {
	existing := &domain.Project{ID: "p-1", Name: "Refonte", CreatedBy: "u-1"}
	fx := newProjectFixture(t, newProjectRepoMock(existing))
	outsider := employeeUser("u-9", "paul")

	_, err := fx.service.Get(context.Background(), outsider, "p-1")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound for invisible project, got %v", err)
	}
}
