package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/infra/config"
	"github.com/Pierre48/hrcard/internal/infra/security"
	"github.com/Pierre48/hrcard/internal/transport/http/handlers"
	"github.com/Pierre48/hrcard/internal/transport/http/middleware"
	"github.com/Pierre48/hrcard/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Accounts      *usecase.AccountService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	JWTManager  *security.JWTManager
	Metrics     *middleware.HTTPMetrics
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
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Config != nil && len(deps.Config.App.CORSOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSOrigins))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

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

	authMiddleware := middleware.RequireAuth(deps.JWTManager)

	api := r.Group("/api/v1")
	{
		isDev := deps.Config != nil && deps.Config.App.Env == "development"
		dispatcher := handlers.NewLoggingNotificationDispatcher(deps.Logger)

		tokenTTL := 0
		if deps.Config != nil {
			tokenTTL = int(deps.Config.JWT.TokenTTL.Seconds())
		}
		authHandler := handlers.NewAuthHandler(deps.Services.Accounts, deps.JWTManager, tokenTTL)
		authHandler.RegisterRoutes(api)

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration, dispatcher, isDev)
		if registerLimits := buildRegisterMiddlewares(deps); len(registerLimits) > 0 {
			registerGroup := api.Group("")
			registerGroup.Use(registerLimits...)
			registrationHandler.RegisterRoutes(registerGroup)
		} else {
			registrationHandler.RegisterRoutes(api)
		}

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, dispatcher, isDev)

		accountHandler := handlers.NewAccountHandler(deps.Services.Accounts)
		accountGroup := api.Group("/account")
		accountGroup.GET("", authMiddleware, accountHandler.GetAccount)
		accountGroup.POST("", authMiddleware, accountHandler.UpdateAccount)
		accountGroup.POST("/change-password", authMiddleware, passwordHandler.ChangePassword)

		resetGroup := accountGroup.Group("/reset-password")
		if resetLimits := buildResetMiddlewares(deps); len(resetLimits) > 0 {
			resetGroup.Use(resetLimits...)
		}
		resetGroup.POST("/init", passwordHandler.ResetPasswordInit)
		resetGroup.POST("/finish", passwordHandler.ResetPasswordFinish)

		adminGroup := api.Group("/admin")
		adminGroup.Use(authMiddleware, middleware.RequireAuthority(domain.AuthorityAdmin))
		adminHandler := handlers.NewAdminUserHandler(deps.Services.Accounts, dispatcher, isDev)
		adminHandler.RegisterRoutes(adminGroup)
	}

	return r
}

func buildRegisterMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.RegisterMaxAttempts
	if limit <= 0 {
		return nil
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       "register",
		Limit:      limit,
		Window:     deps.Config.RateLimit.WindowDuration,
		Identifier: middleware.ClientIPIdentifier(),
	})}
}

func buildResetMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.PasswordResetMaxAttempts
	if limit <= 0 {
		return nil
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       "password_reset",
		Limit:      limit,
		Window:     deps.Config.RateLimit.WindowDuration,
		Identifier: middleware.ClientIPIdentifier(),
	})}
}
