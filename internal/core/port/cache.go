package port

import "context"

// UnreadCountCache keeps per-user unread notification counters hot so list
// views avoid a database count on every poll.
type UnreadCountCache interface {
	Get(ctx context.Context, userID string) (int, error)
	Increment(ctx context.Context, userID string) error
	Decrement(ctx context.Context, userID string) error
	Set(ctx context.Context, userID string, count int) error
	Invalidate(ctx context.Context, userID string) error
}

// RateLimitStore tracks request attempts inside a sliding window.
type RateLimitStore interface {
	CountAttempts(ctx context.Context, identifier string) (int, error)
	RecordAttempt(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}
