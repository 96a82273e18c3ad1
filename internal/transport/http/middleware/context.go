package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

const (
	// TraceIDHeader is the HTTP header name for the trace ID.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key for the trace ID.
	TraceIDKey = "trace_id"
	// CurrentUserKey is the gin context key for the authenticated user.
	CurrentUserKey = "current_user"
)

// EnrichContext assigns a trace ID to each request and echoes it back.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the gin context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// CurrentUser retrieves the authenticated user stored by RequireAuth.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}
