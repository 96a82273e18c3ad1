package port

import (
	"context"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// EventPublisher pushes domain events to the message bus.
type EventPublisher interface {
	PublishNotificationCreated(ctx context.Context, event domain.NotificationCreatedEvent) error
	PublishTaskAssigned(ctx context.Context, event domain.TaskAssignedEvent) error
	PublishProjectUpdated(ctx context.Context, event domain.ProjectUpdatedEvent) error
	PublishSecurityAlert(ctx context.Context, event domain.SecurityAlertEvent) error
}
