package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/config"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/database"
	kafkainfra "github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/kafka"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/logger"
	redisinfra "github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/redis"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/security"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/telemetry"
	postgresrepo "github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository/postgres"
	redisrepo "github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository/redis"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/routes"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// Application bundles the composed service with its long-lived resources.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	deadline *usecase.DeadlineChecker
}

// New composes configuration, infrastructure, repositories, services, and the
// HTTP router into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokenManager, err := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	unreadCountTTL := cfg.Redis.UnreadCountTTL
	if unreadCountTTL <= 0 {
		unreadCountTTL = 10 * time.Minute
	}
	unreadCounts := redisrepo.NewUnreadCountRepository(redisClient.Client(), cfg.Redis.UnreadCountPrefix, unreadCountTTL)

	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		Window:    cfg.RateLimit.WindowDuration,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	accessService := usecase.NewAccessService()
	notificationService := usecase.NewNotificationService(repos.Notifications, unreadCounts, eventPublisher, log).
		WithMetrics(provider.NotificationsCounter())
	authService := usecase.NewAuthService(
		repos.Users,
		rateLimitStore,
		tokenManager,
		notificationService,
		eventPublisher,
		log,
		cfg.RateLimit.LoginMaxAttempts,
	)
	userService := usecase.NewUserService(repos.Users, accessService, security.DefaultPasswordValidator())
	orgService := usecase.NewOrgService(repos.Services, accessService)
	projectService := usecase.NewProjectService(repos.Projects, accessService, notificationService, eventPublisher, log)
	taskService := usecase.NewTaskService(repos.Tasks, repos.Users, accessService, notificationService, eventPublisher, log)
	deadlineChecker := usecase.NewDeadlineChecker(repos.Tasks, notificationService, log, cfg.Notifications.DeadlineInterval).
		WithMetrics(provider.DeadlineScansCounter())

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Access:        accessService,
			Users:         userService,
			Services:      orgService,
			Projects:      projectService,
			Tasks:         taskService,
			Notifications: notificationService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		deadline: deadlineChecker,
	}, nil
}

// Run starts the HTTP server and the deadline checker and blocks until the
// context is canceled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	go a.deadline.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting ODDL API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
