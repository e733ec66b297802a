package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/infra/config"
	"github.com/coursehub/coursehub-api/internal/transport/http/handlers"
	"github.com/coursehub/coursehub-api/internal/transport/http/middleware"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth        *usecase.AuthService
	Courses     *usecase.CourseService
	Enrollments *usecase.EnrollmentService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Metrics  *middleware.HTTPMetrics
	Database DatabaseChecker
	Cache    CacheChecker
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
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
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

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Status)
		api.GET("/health/ready", healthHandler.Readiness)

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Logger)
		authGroup := api.Group("/auth")
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/user", authMiddleware, authHandler.CurrentUser)
		authGroup.GET("/me", authMiddleware, authHandler.CurrentUser)
		authGroup.GET("/logout", authHandler.Logout)
		authGroup.PUT("/updatedetails", authMiddleware, authHandler.UpdateDetails)

		courseHandler := handlers.NewCourseHandler(deps.Services.Courses, deps.Services.Enrollments, deps.Logger)
		coursesGroup := api.Group("/courses")
		coursesGroup.GET("", courseHandler.List)
		coursesGroup.GET("/user/courses", authMiddleware, courseHandler.MyCourses)
		coursesGroup.GET("/:id", courseHandler.Get)
		coursesGroup.POST("", authMiddleware, middleware.RequireRole(domain.RoleAdmin), courseHandler.Create)
		coursesGroup.POST("/:id/enroll", authMiddleware, courseHandler.Enroll)
		coursesGroup.PUT("/:id/progress", authMiddleware, courseHandler.UpdateProgress)
	}

	return r
}
