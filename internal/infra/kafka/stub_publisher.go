package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishNotificationCreated logs oddl.notification.created events.
func (p *StubPublisher) PublishNotificationCreated(_ context.Context, event domain.NotificationCreatedEvent) error {
	payload := map[string]any{
		"notification_id": event.NotificationID,
		"user_id":         event.UserID,
		"type":            event.Type,
		"priority":        event.Priority,
		"related_id":      event.RelatedID,
		"created_at":      event.CreatedAt,
		"metadata":        event.Metadata,
	}
	p.logEvent("notification.created", event.UserID, event.CreatedAt, payload)
	return nil
}

// PublishTaskAssigned logs oddl.task.assigned events.
func (p *StubPublisher) PublishTaskAssigned(_ context.Context, event domain.TaskAssignedEvent) error {
	payload := map[string]any{
		"task_id":     event.TaskID,
		"task_title":  event.TaskTitle,
		"assignee_id": event.AssigneeID,
		"assigned_by": event.AssignedBy,
		"priority":    event.Priority,
		"assigned_at": event.AssignedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("task.assigned", event.AssigneeID, event.AssignedAt, payload)
	return nil
}

// PublishProjectUpdated logs oddl.project.updated events.
func (p *StubPublisher) PublishProjectUpdated(_ context.Context, event domain.ProjectUpdatedEvent) error {
	payload := map[string]any{
		"project_id":  event.ProjectID,
		"update_kind": event.UpdateKind,
		"updated_by":  event.UpdatedBy,
		"updated_at":  event.UpdatedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("project.updated", event.UpdatedBy, event.UpdatedAt, payload)
	return nil
}

// PublishSecurityAlert logs oddl.security.alert events.
func (p *StubPublisher) PublishSecurityAlert(_ context.Context, event domain.SecurityAlertEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"message":     event.Message,
		"ip_address":  event.IPAddress,
		"occurred_at": event.OccurredAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("security.alert", event.UserID, event.OccurredAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
