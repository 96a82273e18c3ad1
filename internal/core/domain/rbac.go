package domain

import "strings"

// Permission codenames assigned server-side per model, mirroring the
// add_/change_/delete_/view_ convention of the upstream authorization system.
const (
	PermAddProject    = "add_project"
	PermChangeProject = "change_project"
	PermDeleteProject = "delete_project"
	PermViewProject   = "view_project"

	PermAddTask    = "add_task"
	PermChangeTask = "change_task"
	PermDeleteTask = "delete_task"
	PermViewTask   = "view_task"

	PermAddUser    = "add_user"
	PermChangeUser = "change_user"
	PermDeleteUser = "delete_user"
	PermViewUser   = "view_user"

	PermAddService    = "add_service"
	PermChangeService = "change_service"
	PermDeleteService = "delete_service"
	PermViewService   = "view_service"

	PermAddNotification    = "add_notification"
	PermChangeNotification = "change_notification"
	PermDeleteNotification = "delete_notification"
	PermViewNotification   = "view_notification"

	PermAddSettings    = "add_settings"
	PermChangeSettings = "change_settings"
)

// allCodenames lists every codename the platform assigns.
var allCodenames = []string{
	PermAddProject, PermChangeProject, PermDeleteProject, PermViewProject,
	PermAddTask, PermChangeTask, PermDeleteTask, PermViewTask,
	PermAddUser, PermChangeUser, PermDeleteUser, PermViewUser,
	PermAddService, PermChangeService, PermDeleteService, PermViewService,
	PermAddNotification, PermChangeNotification, PermDeleteNotification, PermViewNotification,
	PermAddSettings, PermChangeSettings,
}

// DefaultPermissions returns the codenames a role is seeded with. Admins get
// everything, managers everything except delete, employees view and add,
// directors a read-only view of the whole platform.
func DefaultPermissions(role Role) []string {
	keep := func(codename string) bool {
		switch role {
		case RoleAdmin:
			return true
		case RoleManager:
			return strings.HasPrefix(codename, "view_") ||
				strings.HasPrefix(codename, "add_") ||
				strings.HasPrefix(codename, "change_")
		case RoleEmployee:
			return strings.HasPrefix(codename, "view_") || strings.HasPrefix(codename, "add_")
		case RoleDirector:
			return strings.HasPrefix(codename, "view_")
		}
		return false
	}

	perms := make([]string, 0, len(allCodenames))
	for _, codename := range allCodenames {
		if keep(codename) {
			perms = append(perms, codename)
		}
	}
	return perms
}
