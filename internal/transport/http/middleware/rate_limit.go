package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
)

// IdentifierFunc extracts the identifier used to scope rate limits (e.g., client IP).
type IdentifierFunc func(*gin.Context) (string, bool)

// ClientIPIdentifier scopes limits by the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimiter throttles endpoints through a sliding-window attempt store.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger}
}

// Limit returns a Gin middleware allowing at most limit attempts per window
// for each identifier the scope name yields.
func (rl *RateLimiter) Limit(name string, limit int, identify IdentifierFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.store == nil || limit <= 0 || identify == nil {
			c.Next()
			return
		}

		identifier, ok := identify(c)
		if !ok {
			c.Next()
			return
		}
		key := fmt.Sprintf("%s:%s", name, identifier)

		ctx := c.Request.Context()
		count, err := rl.store.CountAttempts(ctx, key)
		if err != nil {
			rl.logger.Warn("rate limit check failed",
				zap.String("scope", name),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count >= limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				newErrorResponse(c, "too many requests, try again later"))
			return
		}

		if err := rl.store.RecordAttempt(ctx, key); err != nil {
			rl.logger.Warn("failed to record rate limit attempt",
				zap.String("scope", name),
				zap.Error(err),
			)
		}

		c.Next()
	}
}
