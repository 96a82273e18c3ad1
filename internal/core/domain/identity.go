package domain

import "time"

// Role enumerates the closed set of platform roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
	RoleDirector Role = "DIRECTOR"
)

// Valid reports whether the role belongs to the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleDirector:
		return true
	}
	return false
}

// User mirrors the persisted representation in the users table.
// Permissions carries the server-assigned codenames (add_project,
// change_task, ...); the capability layer derives UI-level booleans from it.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	PasswordAlgo string
	Role         Role
	ServiceID    *string
	Permissions  []string
	Phone        *string
	Bio          *string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// FullName joins first and last name for display and mention resolution.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasPermission reports whether the user carries the given codename.
func (u *User) HasPermission(codename string) bool {
	if u == nil {
		return false
	}
	for _, perm := range u.Permissions {
		if perm == codename {
			return true
		}
	}
	return false
}

// InService reports whether the user belongs to the given service.
func (u *User) InService(serviceID string) bool {
	if u == nil || u.ServiceID == nil || serviceID == "" {
		return false
	}
	return *u.ServiceID == serviceID
}

// LoginAttempt records authentication attempts for throttling and audit.
type LoginAttempt struct {
	ID         string
	UserID     *string
	Identifier string
	Succeeded  bool
	IP         *string
	UserAgent  *string
	CreatedAt  time.Time
}
