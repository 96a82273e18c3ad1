package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	red "github.com/redis/go-redis/v9"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
)

// SlidingWindowConfig tunes the rate limit window bookkeeping.
type SlidingWindowConfig struct {
	KeyPrefix string
	Window    time.Duration
	TTL       time.Duration
}

// RateLimitRepository tracks attempts in a Redis sorted set keyed by
// identifier, scored by attempt time.
type RateLimitRepository struct {
	client *red.Client
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a sliding-window attempt store.
func NewRateLimitRepository(client *red.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "oddl:rate-limit"
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cfg.Window * 2
	}
	return &RateLimitRepository{client: client, cfg: cfg}
}

// CountAttempts returns the number of attempts inside the current window,
// trimming expired entries first.
func (r *RateLimitRepository) CountAttempts(ctx context.Context, identifier string) (int, error) {
	key := r.key(identifier)
	if key == "" {
		return 0, fmt.Errorf("identifier is required")
	}

	now := time.Now().UTC()
	cutoff := now.Add(-r.cfg.Window)

	if err := r.client.ZRemRangeByScore(ctx, key, "-inf", formatScore(cutoff)).Err(); err != nil {
		return 0, fmt.Errorf("redis trim rate limit window: %w", err)
	}

	count, err := r.client.ZCount(ctx, key, formatScore(cutoff), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis count attempts: %w", err)
	}

	return int(count), nil
}

// RecordAttempt appends an attempt at the current time.
func (r *RateLimitRepository) RecordAttempt(ctx context.Context, identifier string) error {
	key := r.key(identifier)
	if key == "" {
		return fmt.Errorf("identifier is required")
	}

	now := time.Now().UTC()
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, red.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, key, r.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record attempt: %w", err)
	}

	return nil
}

// Reset clears the identifier's window, e.g. after a successful login.
func (r *RateLimitRepository) Reset(ctx context.Context, identifier string) error {
	key := r.key(identifier)
	if key == "" {
		return fmt.Errorf("identifier is required")
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis reset attempts: %w", err)
	}

	return nil
}

func (r *RateLimitRepository) key(identifier string) string {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, trimmed)
}

func formatScore(t time.Time) string {
	return fmt.Sprintf("%d", t.UnixNano())
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
