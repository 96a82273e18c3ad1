package port

import (
	"context"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// NotificationFilter narrows notification listings for one recipient.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationRepository exposes persistence behavior for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, filter NotificationFilter) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) error
}
