package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/infra/config"
	"github.com/coursehub/coursehub-api/internal/infra/database"
	"github.com/coursehub/coursehub-api/internal/infra/logger"
	redisinfra "github.com/coursehub/coursehub-api/internal/infra/redis"
	mongorepo "github.com/coursehub/coursehub-api/internal/repository/mongo"
	redisrepo "github.com/coursehub/coursehub-api/internal/repository/redis"
	"github.com/coursehub/coursehub-api/internal/transport/http/middleware"
	"github.com/coursehub/coursehub-api/internal/transport/http/routes"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	mongo  *database.Mongo
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	mongoDB, err := database.NewMongo(ctx, cfg.Mongo, log)
	if err != nil {
		return nil, fmt.Errorf("init mongo: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoDB.Close(closeCtx)
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := mongorepo.NewRepositories(mongoDB.Database())
	if err := repos.EnsureIndexes(ctx); err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoDB.Close(closeCtx)
		_ = redisClient.Close()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	catalogCache := redisrepo.NewCatalogCache(redisClient.Client(), "")

	authService := usecase.NewAuthService(cfg, repos.Accounts, log)
	courseService := usecase.NewCourseService(repos.Courses, catalogCache, cfg.Catalog.CacheTTL, log)
	enrollmentService := usecase.NewEnrollmentService(repos.Enrollments, repos.Courses, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		log.Warn("failed to init http metrics", zap.Error(err))
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Database: mongoDB,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Auth:        authService,
			Courses:     courseService,
			Enrollments: enrollmentService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		mongo:  mongoDB,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.mongo != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.mongo.Close(closeCtx)
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting LMS API",
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
