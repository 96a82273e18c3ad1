package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

const defaultUnreadCountPrefix = "oddl:unread_count"

// UnreadCountRepository caches per-user unread notification counters so the
// badge endpoint avoids a database count on every poll.
type UnreadCountRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewUnreadCountRepository constructs an unread counter cache helper.
func NewUnreadCountRepository(client *red.Client, keyPrefix string, ttl time.Duration) *UnreadCountRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultUnreadCountPrefix
	}

	return &UnreadCountRepository{client: client, prefix: prefix, ttl: ttl}
}

// Get fetches the cached counter, returning ErrNotFound on cache miss.
func (r *UnreadCountRepository) Get(ctx context.Context, userID string) (int, error) {
	key := r.key(userID)
	if key == "" {
		return 0, fmt.Errorf("user id is required")
	}

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("redis get unread count: %w", err)
	}

	parsed, parseErr := strconv.Atoi(value)
	if parseErr != nil {
		return 0, fmt.Errorf("parse cached unread count: %w", parseErr)
	}

	return parsed, nil
}

// Increment bumps the counter by one, leaving a miss as a miss so the next
// read repopulates from the database.
func (r *UnreadCountRepository) Increment(ctx context.Context, userID string) error {
	key := r.key(userID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis exists unread count: %w", err)
	}
	if exists == 0 {
		return nil
	}

	if err := r.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis incr unread count: %w", err)
	}

	return nil
}

// Decrement lowers the counter by one, floored at zero.
func (r *UnreadCountRepository) Decrement(ctx context.Context, userID string) error {
	key := r.key(userID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis exists unread count: %w", err)
	}
	if exists == 0 {
		return nil
	}

	value, err := r.client.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis decr unread count: %w", err)
	}
	if value < 0 {
		if err := r.client.Set(ctx, key, 0, r.ttl).Err(); err != nil {
			return fmt.Errorf("redis floor unread count: %w", err)
		}
	}

	return nil
}

// Set stores the authoritative counter with the configured TTL.
func (r *UnreadCountRepository) Set(ctx context.Context, userID string, count int) error {
	key := r.key(userID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}

	if count < 0 {
		count = 0
	}

	if err := r.client.Set(ctx, key, count, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set unread count: %w", err)
	}

	return nil
}

// Invalidate drops the cached counter.
func (r *UnreadCountRepository) Invalidate(ctx context.Context, userID string) error {
	key := r.key(userID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del unread count: %w", err)
	}

	return nil
}

func (r *UnreadCountRepository) key(userID string) string {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}

var _ port.UnreadCountCache = (*UnreadCountRepository)(nil)
