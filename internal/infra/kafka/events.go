package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishNotificationCreated publishes oddl.notification.created events.
func (p *EventPublisher) PublishNotificationCreated(ctx context.Context, event domain.NotificationCreatedEvent) error {
	payload := struct {
		NotificationID string         `json:"notification_id"`
		UserID         string         `json:"user_id"`
		Type           string         `json:"type"`
		Priority       string         `json:"priority"`
		RelatedID      *string        `json:"related_id,omitempty"`
		CreatedAt      time.Time      `json:"created_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		NotificationID: event.NotificationID,
		UserID:         event.UserID,
		Type:           event.Type,
		Priority:       event.Priority,
		RelatedID:      event.RelatedID,
		CreatedAt:      event.CreatedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "notification.created", event.UserID, event.CreatedAt, payload)
}

// PublishTaskAssigned publishes oddl.task.assigned events.
func (p *EventPublisher) PublishTaskAssigned(ctx context.Context, event domain.TaskAssignedEvent) error {
	payload := struct {
		TaskID     string         `json:"task_id"`
		TaskTitle  string         `json:"task_title"`
		AssigneeID string         `json:"assignee_id"`
		AssignedBy string         `json:"assigned_by"`
		Priority   string         `json:"priority"`
		AssignedAt time.Time      `json:"assigned_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		TaskID:     event.TaskID,
		TaskTitle:  event.TaskTitle,
		AssigneeID: event.AssigneeID,
		AssignedBy: event.AssignedBy,
		Priority:   event.Priority,
		AssignedAt: event.AssignedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "task.assigned", event.AssigneeID, event.AssignedAt, payload)
}

// PublishProjectUpdated publishes oddl.project.updated events.
func (p *EventPublisher) PublishProjectUpdated(ctx context.Context, event domain.ProjectUpdatedEvent) error {
	payload := struct {
		ProjectID  string         `json:"project_id"`
		UpdateKind string         `json:"update_kind"`
		UpdatedBy  string         `json:"updated_by"`
		UpdatedAt  time.Time      `json:"updated_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		ProjectID:  event.ProjectID,
		UpdateKind: event.UpdateKind,
		UpdatedBy:  event.UpdatedBy,
		UpdatedAt:  event.UpdatedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "project.updated", event.UpdatedBy, event.UpdatedAt, payload)
}

// PublishSecurityAlert publishes oddl.security.alert events.
func (p *EventPublisher) PublishSecurityAlert(ctx context.Context, event domain.SecurityAlertEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		Message    string         `json:"message"`
		IPAddress  *string        `json:"ip_address,omitempty"`
		OccurredAt time.Time      `json:"occurred_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		Message:    event.Message,
		IPAddress:  event.IPAddress,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "security.alert", event.UserID, event.OccurredAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
