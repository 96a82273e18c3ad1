package domain

import "time"

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// MemberRef is the detailed membership shape some upstream endpoints return
// instead of a plain id list.
type MemberRef struct {
	ID       string
	FullName string
	Role     string
}

// Project carries the membership relation under several historical field
// names (TeamMemberIDs, MemberIDs, MemberDetails); different API versions
// populated different ones, so readers must go through MemberSet rather than
// touching any single field.
type Project struct {
	ID            string
	Name          string
	Description   string
	Status        ProjectStatus
	Progress      int
	Color         string
	RiskLevel     string
	CreatedBy     string
	ChefID        *string
	ChefDetails   *MemberRef
	TeamMemberIDs []string
	MemberIDs     []string
	MemberDetails []MemberRef
	ServiceID     string
	ServiceIDs    []string
	StartDate     *time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MemberSet normalizes the aliased membership fields into one canonical set.
// Nil slices read as empty; no field shape causes a panic.
func (p *Project) MemberSet() map[string]struct{} {
	members := make(map[string]struct{})
	if p == nil {
		return members
	}
	for _, id := range p.TeamMemberIDs {
		members[id] = struct{}{}
	}
	for _, id := range p.MemberIDs {
		members[id] = struct{}{}
	}
	for _, ref := range p.MemberDetails {
		if ref.ID != "" {
			members[ref.ID] = struct{}{}
		}
	}
	return members
}

// HasMember reports membership through any of the aliased fields.
func (p *Project) HasMember(userID string) bool {
	if p == nil || userID == "" {
		return false
	}
	_, ok := p.MemberSet()[userID]
	return ok
}

// HasChef reports whether the user leads the project, via either the plain
// id field or the detailed reference.
func (p *Project) HasChef(userID string) bool {
	if p == nil || userID == "" {
		return false
	}
	if p.ChefID != nil && *p.ChefID == userID {
		return true
	}
	return p.ChefDetails != nil && p.ChefDetails.ID == userID
}

// InvolvesService reports whether the service appears as the primary service
// or in the secondary service list.
func (p *Project) InvolvesService(serviceID string) bool {
	if p == nil || serviceID == "" {
		return false
	}
	if p.ServiceID == serviceID {
		return true
	}
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
