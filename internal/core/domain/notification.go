package domain

import "time"

// NotificationType enumerates the closed set of notification kinds.
type NotificationType string

const (
	NotificationTaskAssigned        NotificationType = "task_assigned"
	NotificationCommentMention      NotificationType = "comment_mention"
	NotificationDeadlineApproaching NotificationType = "deadline_approaching"
	NotificationProjectUpdate       NotificationType = "project_update"
	NotificationSecurityAlert       NotificationType = "security_alert"
)

// NotificationPriority enumerates delivery urgency.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// NotificationDraft is the payload handed to the persistence sink. ID and
// CreatedAt are assigned by the sink, never by the producer.
type NotificationDraft struct {
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Priority  NotificationPriority
	RelatedID *string
	IsRead    bool
}

// Notification mirrors the persisted representation in the notifications table.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Priority  NotificationPriority
	RelatedID *string
	IsRead    bool
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// ProjectUpdateKind enumerates the project changes that fan out to the team.
type ProjectUpdateKind string

const (
	ProjectUpdateStatus   ProjectUpdateKind = "status"
	ProjectUpdateTeam     ProjectUpdateKind = "team"
	ProjectUpdateDeadline ProjectUpdateKind = "deadline"
)
