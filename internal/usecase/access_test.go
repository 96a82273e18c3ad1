package usecase

import (
	"testing"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

func strPtr(s string) *string {
	return &s
}

func managerInService(serviceID string) *domain.User {
	return &domain.User{
		ID:        "mgr-1",
		Role:      domain.RoleManager,
		ServiceID: strPtr(serviceID),
	}
}

func TestResolveCapabilitiesNilUser(t *testing.T) {
	access := NewAccessService()

	caps := access.ResolveCapabilities(nil)
	if caps != (Capabilities{}) {
		t.Fatalf("expected all-false capabilities for nil user, got %+v", caps)
	}
}

func TestResolveCapabilitiesMapsCodenames(t *testing.T) {
	access := NewAccessService()

	user := &domain.User{
		ID:   "user-1",
		Role: domain.RoleEmployee,
		Permissions: []string{
			domain.PermAddProject,
			domain.PermChangeUser,
			domain.PermViewTask,
			domain.PermAddSettings,
		},
	}

	caps := access.ResolveCapabilities(user)

	if !caps.CanCreateProjects {
		t.Error("expected CanCreateProjects from add_project")
	}
	if caps.CanEditProjects {
		t.Error("did not expect CanEditProjects without change_project")
	}
	if !caps.CanManageUsers {
		t.Error("expected CanManageUsers from change_user alone")
	}
	if !caps.CanViewAllTasks {
		t.Error("expected CanViewAllTasks from view_task")
	}
	if !caps.CanViewAnalytics {
		t.Error("expected CanViewAnalytics from view_task")
	}
	if caps.CanViewAllProjects {
		t.Error("did not expect CanViewAllProjects without view_project")
	}
	if !caps.CanAccessSettings {
		t.Error("expected CanAccessSettings from add_settings")
	}
}

func TestResolveCapabilitiesNoCodenames(t *testing.T) {
	access := NewAccessService()

	user := &domain.User{ID: "user-1", Role: domain.RoleEmployee}
	if caps := access.ResolveCapabilities(user); caps != (Capabilities{}) {
		t.Fatalf("expected all-false capabilities without codenames, got %+v", caps)
	}
}

func TestCheckAnyPermissionAdminOverride(t *testing.T) {
	access := NewAccessService()

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	if !access.CheckAnyPermission(admin, "nonexistent_codename") {
		t.Error("expected admin to pass any-permission check regardless of codename")
	}
	if !access.CheckAllPermissions(admin, "nonexistent_codename", "another") {
		t.Error("expected admin to pass all-permission check regardless of codenames")
	}

	employee := &domain.User{
		ID:          "emp-1",
		Role:        domain.RoleEmployee,
		Permissions: []string{domain.PermViewTask},
	}
	if !access.CheckAnyPermission(employee, domain.PermViewTask, domain.PermDeleteTask) {
		t.Error("expected any-permission to pass with one matching codename")
	}
	if access.CheckAllPermissions(employee, domain.PermViewTask, domain.PermDeleteTask) {
		t.Error("expected all-permission to fail with one missing codename")
	}
	if access.CheckAnyPermission(nil, domain.PermViewTask) {
		t.Error("expected nil user to fail any-permission check")
	}
}

func TestCanEditProject(t *testing.T) {
	access := NewAccessService()

	project := &domain.Project{
		ID:        "proj-1",
		CreatedBy: "creator-1",
		MemberIDs: []string{"member-1"},
	}

	creator := &domain.User{ID: "creator-1", Role: domain.RoleEmployee}
	if !access.CanEditProject(creator, project) {
		t.Error("expected creator to edit own project")
	}

	editor := &domain.User{
		ID:          "editor-1",
		Role:        domain.RoleEmployee,
		Permissions: []string{domain.PermChangeProject},
	}
	if !access.CanEditProject(editor, project) {
		t.Error("expected change_project capability to grant edit")
	}

	memberManager := &domain.User{ID: "member-1", Role: domain.RoleManager}
	if !access.CanEditProject(memberManager, project) {
		t.Error("expected manager member to edit project")
	}

	memberEmployee := &domain.User{ID: "member-1", Role: domain.RoleEmployee}
	if access.CanEditProject(memberEmployee, project) {
		t.Error("did not expect non-manager member to edit project")
	}

	if access.CanEditProject(nil, project) {
		t.Error("did not expect nil user to edit project")
	}
}

func TestCanEditProjectAliasedMembership(t *testing.T) {
	access := NewAccessService()
	manager := &domain.User{ID: "mgr-1", Role: domain.RoleManager}

	byTeamMembers := &domain.Project{CreatedBy: "other", TeamMemberIDs: []string{"mgr-1"}}
	byMemberIDs := &domain.Project{CreatedBy: "other", MemberIDs: []string{"mgr-1"}}
	byDetails := &domain.Project{CreatedBy: "other", MemberDetails: []domain.MemberRef{{ID: "mgr-1"}}}

	for name, project := range map[string]*domain.Project{
		"team_members":   byTeamMembers,
		"member_ids":     byMemberIDs,
		"member_details": byDetails,
	} {
		if !access.CanEditProject(manager, project) {
			t.Errorf("expected membership via %s to grant edit", name)
		}
	}
}

func TestCanDeleteProjectAsymmetry(t *testing.T) {
	access := NewAccessService()

	project := &domain.Project{ID: "proj-1", CreatedBy: "creator-1"}

	// Creating a project does not entitle deleting it.
	creator := &domain.User{ID: "creator-1", Role: domain.RoleEmployee}
	if access.CanDeleteProject(creator, project) {
		t.Error("did not expect creator to delete project without capability")
	}

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	if !access.CanDeleteProject(admin, project) {
		t.Error("expected admin to delete any project")
	}

	deleter := &domain.User{
		ID:          "user-2",
		Role:        domain.RoleEmployee,
		Permissions: []string{domain.PermDeleteProject},
	}
	if !access.CanDeleteProject(deleter, project) {
		t.Error("expected delete_project capability to grant delete")
	}
}

func TestCanDeleteTaskCreatorAlwaysAllowed(t *testing.T) {
	access := NewAccessService()

	task := &domain.Task{ID: "task-1", CreatedBy: "creator-1"}

	creator := &domain.User{ID: "creator-1", Role: domain.RoleEmployee}
	if !access.CanDeleteTask(creator, task) {
		t.Error("expected task creator to delete own task")
	}

	other := &domain.User{ID: "user-2", Role: domain.RoleEmployee}
	if access.CanDeleteTask(other, task) {
		t.Error("did not expect unrelated user to delete task")
	}

	deleter := &domain.User{
		ID:          "user-3",
		Role:        domain.RoleEmployee,
		Permissions: []string{domain.PermDeleteTask},
	}
	if !access.CanDeleteTask(deleter, task) {
		t.Error("expected delete_task capability to grant delete")
	}
}

func TestCanEditTask(t *testing.T) {
	access := NewAccessService()

	task := &domain.Task{
		ID:         "task-1",
		CreatedBy:  "creator-1",
		AssignedTo: []string{"assignee-1"},
	}

	assignee := &domain.User{ID: "assignee-1", Role: domain.RoleEmployee}
	if !access.CanEditTask(assignee, task) {
		t.Error("expected assignee to edit task")
	}

	// The capability alone is not enough for employees.
	employee := &domain.User{
		ID:          "emp-1",
		Role:        domain.RoleEmployee,
		Permissions: []string{domain.PermChangeTask},
	}
	if access.CanEditTask(employee, task) {
		t.Error("did not expect employee with change_task to edit unrelated task")
	}

	manager := &domain.User{
		ID:          "mgr-1",
		Role:        domain.RoleManager,
		Permissions: []string{domain.PermChangeTask},
	}
	if !access.CanEditTask(manager, task) {
		t.Error("expected manager with change_task to edit task")
	}
}

func TestFilterProjectsNilUser(t *testing.T) {
	access := NewAccessService()

	projects := []domain.Project{{ID: "proj-1"}}
	if got := access.FilterProjects(projects, nil); len(got) != 0 {
		t.Fatalf("expected empty result for nil user, got %d projects", len(got))
	}
}

func TestFilterProjectsViewAll(t *testing.T) {
	access := NewAccessService()

	projects := []domain.Project{{ID: "proj-1"}, {ID: "proj-2"}}
	viewer := &domain.User{
		ID:          "viewer-1",
		Role:        domain.RoleDirector,
		Permissions: []string{domain.PermViewProject},
	}

	if got := access.FilterProjects(projects, viewer); len(got) != len(projects) {
		t.Fatalf("expected view_project to see all %d projects, got %d", len(projects), len(got))
	}
}

func TestFilterProjectsManagerServiceScope(t *testing.T) {
	access := NewAccessService()
	manager := managerInService("svc-1")

	projects := []domain.Project{
		{ID: "own", CreatedBy: "mgr-1"},
		{ID: "member", MemberIDs: []string{"mgr-1"}},
		{ID: "primary-service", ServiceID: "svc-1"},
		{ID: "secondary-service", ServiceIDs: []string{"svc-9", "svc-1"}},
		{ID: "chef", ChefID: strPtr("mgr-1")},
		{ID: "chef-details", ChefDetails: &domain.MemberRef{ID: "mgr-1"}},
		{ID: "unrelated", ServiceID: "svc-2", CreatedBy: "other"},
	}

	got := access.FilterProjects(projects, manager)
	if len(got) != 6 {
		t.Fatalf("expected 6 visible projects, got %d", len(got))
	}
	for _, project := range got {
		if project.ID == "unrelated" {
			t.Error("unrelated project leaked into manager scope")
		}
	}
}

func TestFilterProjectsEmployeeScope(t *testing.T) {
	access := NewAccessService()

	employee := &domain.User{ID: "emp-1", Role: domain.RoleEmployee, ServiceID: strPtr("svc-1")}
	projects := []domain.Project{
		{ID: "own", CreatedBy: "emp-1"},
		{ID: "member-details", MemberDetails: []domain.MemberRef{{ID: "emp-1"}}},
		{ID: "same-service-only", ServiceID: "svc-1"},
	}

	got := access.FilterProjects(projects, employee)
	if len(got) != 2 {
		t.Fatalf("expected 2 visible projects, got %d", len(got))
	}
	for _, project := range got {
		if project.ID == "same-service-only" {
			t.Error("service scope must not apply to employees")
		}
	}
}

func TestFilterTasks(t *testing.T) {
	access := NewAccessService()
	manager := managerInService("svc-1")

	tasks := []domain.Task{
		{ID: "own", CreatedBy: "mgr-1"},
		{ID: "assigned", AssignedTo: []string{"mgr-1", "other"}},
		{ID: "service", ServiceID: "svc-1"},
		{ID: "unrelated", ServiceID: "svc-2", CreatedBy: "other"},
	}

	got := access.FilterTasks(tasks, manager)
	if len(got) != 3 {
		t.Fatalf("expected 3 visible tasks, got %d", len(got))
	}

	employee := &domain.User{ID: "emp-1", Role: domain.RoleEmployee, ServiceID: strPtr("svc-1")}
	got = access.FilterTasks(tasks, employee)
	if len(got) != 0 {
		t.Fatalf("expected no visible tasks for uninvolved employee, got %d", len(got))
	}

	if got := access.FilterTasks(tasks, nil); len(got) != 0 {
		t.Fatalf("expected empty result for nil user, got %d", len(got))
	}

	viewer := &domain.User{ID: "v-1", Role: domain.RoleDirector, Permissions: []string{domain.PermViewTask}}
	if got := access.FilterTasks(tasks, viewer); len(got) != len(tasks) {
		t.Fatalf("expected view_task to see all tasks, got %d", len(got))
	}
}

func TestFilterTasksNilAssignmentSlices(t *testing.T) {
	access := NewAccessService()

	// Absent arrays read as empty rather than panicking.
	tasks := []domain.Task{{ID: "bare"}}
	user := &domain.User{ID: "user-1", Role: domain.RoleEmployee}

	if got := access.FilterTasks(tasks, user); len(got) != 0 {
		t.Fatalf("expected bare task to be invisible, got %d", len(got))
	}
}
