package domain

import "time"

// Comment is a task discussion entry. Mentions holds the resolved user ids
// extracted from the content at creation time.
type Comment struct {
	ID        string
	TaskID    string
	Content   string
	AuthorID  string
	Mentions  []string
	ParentID  *string
	IsEdited  bool
	CreatedAt time.Time
	EditedAt  *time.Time
}
