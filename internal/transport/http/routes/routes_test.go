package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/config"
	httproutes "github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/routes"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	return httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: logger,
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestEngine()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestEngine()

	for _, path := range []string{
		"/api/v1/tasks",
		"/api/v1/projects",
		"/api/v1/notifications",
		"/api/v1/users",
		"/api/v1/services",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", path, w.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestEngine()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
