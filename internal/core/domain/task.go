package domain

import "time"

// TaskStatus enumerates task board columns.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority enumerates task urgency levels.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task mirrors the persisted representation in the tasks table.
type Task struct {
	ID            string
	Title         string
	Description   string
	Status        TaskStatus
	Priority      TaskPriority
	Deadline      time.Time
	CreatedBy     string
	AssignedTo    []string
	ProjectID     *string
	ServiceID     string
	Tags          []string
	TimeTracked   int
	EstimatedTime int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// IsAssignee reports whether the user appears in the assignment list.
// A nil assignment list reads as empty.
func (t *Task) IsAssignee(userID string) bool {
	if t == nil || userID == "" {
		return false
	}
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// DueWithin reports whether the deadline falls inside the half-open window
// (now, now+horizon]. Tasks exactly at or past the deadline are excluded.
func (t *Task) DueWithin(now time.Time, horizon time.Duration) bool {
	if t == nil || t.Deadline.IsZero() {
		return false
	}
	return t.Deadline.After(now) && !t.Deadline.After(now.Add(horizon))
}
