package domain

// Service is an organizational unit (department/team) users belong to.
type Service struct {
	ID               string
	Name             string
	Description      string
	HeadID           *string
	MemberIDs        []string
	Color            string
	WorkloadCapacity int
}

// HasMember reports whether the user belongs to the unit roster.
func (s *Service) HasMember(userID string) bool {
	if s == nil {
		return false
	}
	for _, id := range s.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
