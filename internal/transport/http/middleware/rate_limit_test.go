package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type attemptStoreMock struct {
	attempts map[string]int
}

func (m *attemptStoreMock) CountAttempts(_ context.Context, identifier string) (int, error) {
	return m.attempts[identifier], nil
}

func (m *attemptStoreMock) RecordAttempt(_ context.Context, identifier string) error {
	if m.attempts == nil {
		m.attempts = make(map[string]int)
	}
	m.attempts[identifier]++
	return nil
}

func (m *attemptStoreMock) Reset(_ context.Context, identifier string) error {
	delete(m.attempts, identifier)
	return nil
}

func newLimitedRouter(t *testing.T, store *attemptStoreMock, limit int) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t))
	router.POST("/login", limiter.Limit("login", limit, ClientIPIdentifier()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	store := &attemptStoreMock{attempts: map[string]int{}}
	router := newLimitedRouter(t, store, 3)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:4242"
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	store := &attemptStoreMock{attempts: map[string]int{"login:203.0.113.7": 3}}
	router := newLimitedRouter(t, store, 3)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.7:4242"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimiterScopesByIdentifier(t *testing.T) {
	store := &attemptStoreMock{attempts: map[string]int{"login:203.0.113.7": 3}}
	router := newLimitedRouter(t, store, 3)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "198.51.100.9:4242"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a different client, got %d", rec.Code)
	}
}
