package usecase

import (
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// Capabilities is the structured record derived from a user's raw permission
// codenames. Each flag names one allowed platform action.
type Capabilities struct {
	CanCreateProjects      bool
	CanEditProjects        bool
	CanDeleteProjects      bool
	CanCreateTasks         bool
	CanEditTasks           bool
	CanDeleteTasks         bool
	CanManageUsers         bool
	CanManageServices      bool
	CanViewAnalytics       bool
	CanViewAllProjects     bool
	CanViewAllTasks        bool
	CanManageNotifications bool
	CanAccessSettings      bool
}

// AccessService derives capabilities from permission codenames and filters
// collections down to what a user may see. All methods are pure functions
// over their arguments; a nil user always resolves to the most restrictive
// answer instead of an error.
type AccessService struct{}

// NewAccessService constructs an AccessService.
func NewAccessService() *AccessService {
	return &AccessService{}
}

// ResolveCapabilities maps the user's codename list onto the capability
// record. A nil user yields the zero record (every flag false).
func (s *AccessService) ResolveCapabilities(user *domain.User) Capabilities {
	if user == nil {
		return Capabilities{}
	}

	return Capabilities{
		CanCreateProjects: user.HasPermission(domain.PermAddProject),
		CanEditProjects:   user.HasPermission(domain.PermChangeProject),
		CanDeleteProjects: user.HasPermission(domain.PermDeleteProject),
		CanCreateTasks:    user.HasPermission(domain.PermAddTask),
		CanEditTasks:      user.HasPermission(domain.PermChangeTask),
		CanDeleteTasks:    user.HasPermission(domain.PermDeleteTask),
		CanManageUsers: user.HasPermission(domain.PermAddUser) ||
			user.HasPermission(domain.PermChangeUser) ||
			user.HasPermission(domain.PermDeleteUser),
		CanManageServices: user.HasPermission(domain.PermAddService) ||
			user.HasPermission(domain.PermChangeService) ||
			user.HasPermission(domain.PermDeleteService),
		CanViewAnalytics: user.HasPermission(domain.PermViewProject) ||
			user.HasPermission(domain.PermViewTask),
		CanViewAllProjects: user.HasPermission(domain.PermViewProject),
		CanViewAllTasks:    user.HasPermission(domain.PermViewTask),
		CanManageNotifications: user.HasPermission(domain.PermAddNotification) ||
			user.HasPermission(domain.PermChangeNotification) ||
			user.HasPermission(domain.PermDeleteNotification),
		CanAccessSettings: user.HasPermission(domain.PermChangeSettings) ||
			user.HasPermission(domain.PermAddSettings),
	}
}

// CheckAnyPermission reports whether the user holds at least one of the
// requested codenames. Admins pass regardless of the list.
func (s *AccessService) CheckAnyPermission(user *domain.User, codenames ...string) bool {
	if user == nil {
		return false
	}
	if user.Role == domain.RoleAdmin {
		return true
	}
	for _, codename := range codenames {
		if user.HasPermission(codename) {
			return true
		}
	}
	return false
}

// CheckAllPermissions reports whether the user holds every requested
// codename. Admins pass regardless of the list.
func (s *AccessService) CheckAllPermissions(user *domain.User, codenames ...string) bool {
	if user == nil {
		return false
	}
	if user.Role == domain.RoleAdmin {
		return true
	}
	for _, codename := range codenames {
		if !user.HasPermission(codename) {
			return false
		}
	}
	return true
}

// CanEditProject reports whether the user may edit the project: the edit
// capability, being the creator, or being a manager who is a member through
// any of the aliased membership fields. Any one condition suffices.
func (s *AccessService) CanEditProject(user *domain.User, project *domain.Project) bool {
	if user == nil || project == nil {
		return false
	}
	if s.ResolveCapabilities(user).CanEditProjects {
		return true
	}
	if project.CreatedBy == user.ID {
		return true
	}
	return user.Role == domain.RoleManager && project.HasMember(user.ID)
}

// CanDeleteProject reports whether the user may delete the project. Only the
// delete capability or the ADMIN role qualifies; creators and members do not.
func (s *AccessService) CanDeleteProject(user *domain.User, project *domain.Project) bool {
	if user == nil || project == nil {
		return false
	}
	if s.ResolveCapabilities(user).CanDeleteProjects {
		return true
	}
	return user.Role == domain.RoleAdmin
}

// CanEditTask reports whether the user may edit the task: the creator or any
// assignee always can, otherwise the edit capability combined with an
// ADMIN or MANAGER role.
func (s *AccessService) CanEditTask(user *domain.User, task *domain.Task) bool {
	if user == nil || task == nil {
		return false
	}
	if task.CreatedBy == user.ID {
		return true
	}
	if task.IsAssignee(user.ID) {
		return true
	}
	caps := s.ResolveCapabilities(user)
	return caps.CanEditTasks && (user.Role == domain.RoleAdmin || user.Role == domain.RoleManager)
}

// CanDeleteTask reports whether the user may delete the task. Unlike
// projects, task creators may always delete their own tasks.
func (s *AccessService) CanDeleteTask(user *domain.User, task *domain.Task) bool {
	if user == nil || task == nil {
		return false
	}
	if s.ResolveCapabilities(user).CanDeleteTasks {
		return true
	}
	return task.CreatedBy == user.ID
}

// FilterProjects returns the projects visible to the user. A nil user sees
// nothing; the view-all capability sees everything; managers additionally
// see every project touching their service or led by them; everyone else
// sees projects they created or belong to through any membership alias.
func (s *AccessService) FilterProjects(projects []domain.Project, user *domain.User) []domain.Project {
	if user == nil {
		return []domain.Project{}
	}

	caps := s.ResolveCapabilities(user)
	if caps.CanViewAllProjects {
		return projects
	}

	visible := make([]domain.Project, 0, len(projects))
	if user.Role == domain.RoleManager && user.ServiceID != nil {
		for _, project := range projects {
			p := project
			if p.CreatedBy == user.ID ||
				p.HasMember(user.ID) ||
				p.InvolvesService(*user.ServiceID) ||
				p.HasChef(user.ID) {
				visible = append(visible, project)
			}
		}
		return visible
	}

	for _, project := range projects {
		p := project
		if p.CreatedBy == user.ID || p.HasMember(user.ID) {
			visible = append(visible, project)
		}
	}
	return visible
}

// FilterTasks returns the tasks visible to the user: everything with the
// view-all capability, otherwise tasks the user created, is assigned to, or
// supervises as a manager of the task's service.
func (s *AccessService) FilterTasks(tasks []domain.Task, user *domain.User) []domain.Task {
	if user == nil {
		return []domain.Task{}
	}

	caps := s.ResolveCapabilities(user)
	if caps.CanViewAllTasks {
		return tasks
	}

	visible := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		t := task
		if t.CreatedBy == user.ID || t.IsAssignee(user.ID) || s.supervisesTask(user, &t) {
			visible = append(visible, task)
		}
	}
	return visible
}

func (s *AccessService) supervisesTask(user *domain.User, task *domain.Task) bool {
	return user.Role == domain.RoleManager &&
		user.ServiceID != nil &&
		task.ServiceID == *user.ServiceID
}
