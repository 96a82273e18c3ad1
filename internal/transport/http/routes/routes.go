package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/config"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/handlers"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Access        *usecase.AccessService
	Users         *usecase.UserService
	Services      *usecase.OrgService
	Projects      *usecase.ProjectService
	Tasks         *usecase.TaskService
	Notifications *usecase.NotificationService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Access)
		authHandler.RegisterRoutes(authGroup, buildLoginMiddlewares(deps)...)

		userGroup := api.Group("/users")
		userGroup.Use(authMiddleware)
		handlers.NewUserHandler(deps.Services.Users).RegisterRoutes(userGroup)

		serviceGroup := api.Group("/services")
		serviceGroup.Use(authMiddleware)
		handlers.NewServiceHandler(deps.Services.Services).RegisterRoutes(serviceGroup)

		projectGroup := api.Group("/projects")
		projectGroup.Use(authMiddleware)
		handlers.NewProjectHandler(deps.Services.Projects).RegisterRoutes(projectGroup)

		taskGroup := api.Group("/tasks")
		taskGroup.Use(authMiddleware)
		handlers.NewTaskHandler(deps.Services.Tasks).RegisterRoutes(taskGroup)

		notificationGroup := api.Group("/notifications")
		notificationGroup.Use(authMiddleware)
		handlers.NewNotificationHandler(deps.Services.Notifications).RegisterRoutes(notificationGroup)
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	return []gin.HandlerFunc{
		deps.RateLimiter.Limit("auth_login_ip", limit, middleware.ClientIPIdentifier()),
	}
}
