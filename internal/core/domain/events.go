package domain

import "time"

// NotificationCreatedEvent represents the payload for oddl.notification.created messages.
type NotificationCreatedEvent struct {
	EventID        string
	NotificationID string
	UserID         string
	Type           string
	Priority       string
	RelatedID      *string
	CreatedAt      time.Time
	Metadata       map[string]any
}

// TaskAssignedEvent represents the payload for oddl.task.assigned messages.
type TaskAssignedEvent struct {
	EventID    string
	TaskID     string
	TaskTitle  string
	AssigneeID string
	AssignedBy string
	Priority   string
	AssignedAt time.Time
	Metadata   map[string]any
}

// ProjectUpdatedEvent represents the payload for oddl.project.updated messages.
type ProjectUpdatedEvent struct {
	EventID    string
	ProjectID  string
	UpdateKind string
	UpdatedBy  string
	UpdatedAt  time.Time
	Metadata   map[string]any
}

// SecurityAlertEvent represents the payload for oddl.security.alert messages.
type SecurityAlertEvent struct {
	EventID    string
	UserID     string
	Message    string
	IPAddress  *string
	OccurredAt time.Time
	Metadata   map[string]any
}
