package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

// NotificationRepository implements port.NotificationRepository using PostgreSQL.
type NotificationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewNotificationRepository wires a PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var notificationColumns = []string{
	"id",
	"user_id",
	"type",
	"title",
	"message",
	"priority",
	"related_id",
	"is_read",
	"created_at",
	"expires_at",
}

// Create inserts a new notification row.
func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) error {
	stmt, args, err := r.builder.Insert("oddl.notifications").
		Columns(notificationColumns...).
		Values(
			notification.ID,
			notification.UserID,
			notification.Type,
			notification.Title,
			notification.Message,
			notification.Priority,
			notification.RelatedID,
			notification.IsRead,
			notification.CreatedAt,
			notification.ExpiresAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert notification sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		notification domain.Notification
		relatedID    sql.NullString
		expiresAt    *time.Time
	)

	if err := row.Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Type,
		&notification.Title,
		&notification.Message,
		&notification.Priority,
		&relatedID,
		&notification.IsRead,
		&notification.CreatedAt,
		&expiresAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}

	notification.ExpiresAt = expiresAt
	if relatedID.Valid {
		val := relatedID.String
		notification.RelatedID = &val
	}

	return &notification, nil
}

// GetByID retrieves a notification by id.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	stmt, args, err := r.builder.Select(notificationColumns...).
		From("oddl.notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select notification sql: %w", err)
	}

	return r.scanNotification(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByUser returns a recipient's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, filter port.NotificationFilter) ([]domain.Notification, error) {
	query := r.builder.Select(notificationColumns...).
		From("oddl.notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if filter.UnreadOnly {
		query = query.Where(squirrel.Eq{"is_read": false})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list notifications sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		notification, err := r.scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread returns the recipient's unread notification count.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("oddl.notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count unread sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan unread count: %w", err)
	}

	return int(count), nil
}

// MarkRead flags a single notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("oddl.notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark read sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkAllRead flags every unread notification for the recipient and returns
// the number of rows touched.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	stmt, args, err := r.builder.Update("oddl.notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark all read sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

// Delete removes a notification.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("oddl.notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete notification sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.NotificationRepository = (*NotificationRepository)(nil)
