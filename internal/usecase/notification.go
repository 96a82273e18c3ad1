package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

var (
	// ErrNotificationNotFound indicates the notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNotRecipient indicates the caller does not own the notification.
	ErrNotRecipient = errors.New("user is not the notification recipient")
)

// NotificationService persists notifications and keeps the unread counter
// cache and the event bus in step. It implements the sink contract consumed
// by the Dispatcher: Deliver assigns the id and creation timestamp.
type NotificationService struct {
	notifications port.NotificationRepository
	unreadCounts  port.UnreadCountCache
	events        port.EventPublisher
	logger        *zap.Logger
	dispatched    *prometheus.CounterVec
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(
	notifications port.NotificationRepository,
	unreadCounts port.UnreadCountCache,
	events port.EventPublisher,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		unreadCounts:  unreadCounts,
		events:        events,
		logger:        logger,
	}
}

var _ port.NotificationSink = (*NotificationService)(nil)

// WithMetrics attaches the dispatch counter, labelled by type and outcome.
func (s *NotificationService) WithMetrics(dispatched *prometheus.CounterVec) *NotificationService {
	s.dispatched = dispatched
	return s
}

func (s *NotificationService) observe(kind domain.NotificationType, outcome string) {
	if s.dispatched == nil {
		return
	}
	s.dispatched.WithLabelValues(string(kind), outcome).Inc()
}

// Deliver persists one notification draft. The cache bump and the bus event
// are best-effort: a failure there is logged but does not undo persistence.
func (s *NotificationService) Deliver(ctx context.Context, draft domain.NotificationDraft) error {
	if draft.UserID == "" {
		return fmt.Errorf("notification recipient is required")
	}

	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    draft.UserID,
		Type:      draft.Type,
		Title:     draft.Title,
		Message:   draft.Message,
		Priority:  draft.Priority,
		RelatedID: draft.RelatedID,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		s.observe(notification.Type, "error")
		return fmt.Errorf("create notification: %w", err)
	}
	s.observe(notification.Type, "delivered")

	if err := s.unreadCounts.Increment(ctx, notification.UserID); err != nil {
		s.logger.Warn("failed to bump unread counter",
			zap.String("user_id", notification.UserID),
			zap.Error(err),
		)
	}

	event := domain.NotificationCreatedEvent{
		EventID:        uuid.NewString(),
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Type:           string(notification.Type),
		Priority:       string(notification.Priority),
		RelatedID:      notification.RelatedID,
		CreatedAt:      notification.CreatedAt,
	}
	if err := s.events.PublishNotificationCreated(ctx, event); err != nil {
		s.logger.Warn("failed to publish notification event",
			zap.String("notification_id", notification.ID),
			zap.Error(err),
		)
	}

	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, filter port.NotificationFilter) ([]domain.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	notifications, err := s.notifications.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount serves the counter from cache when warm, falling back to the
// database and repopulating the cache on a miss.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	if count, err := s.unreadCounts.Get(ctx, userID); err == nil {
		return count, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("unread counter cache read failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	if err := s.unreadCounts.Set(ctx, userID, count); err != nil {
		s.logger.Warn("failed to repopulate unread counter",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return count, nil
}

// MarkRead flags one notification as read on behalf of its recipient.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("get notification: %w", err)
	}

	if notification.UserID != userID {
		return ErrNotRecipient
	}

	if notification.IsRead {
		return nil
	}

	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if err := s.unreadCounts.Decrement(ctx, userID); err != nil {
		s.logger.Warn("failed to decrement unread counter",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return nil
}

// MarkAllRead flags every unread notification of the user as read and
// resets the cached counter.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	updated, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	if err := s.unreadCounts.Set(ctx, userID, 0); err != nil {
		s.logger.Warn("failed to reset unread counter",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return updated, nil
}

// Delete removes one notification on behalf of its recipient. The unread
// counter is invalidated rather than adjusted so the next read recounts.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("get notification: %w", err)
	}

	if notification.UserID != userID {
		return ErrNotRecipient
	}

	if err := s.notifications.Delete(ctx, notificationID); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if err := s.unreadCounts.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate unread counter",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return nil
}
