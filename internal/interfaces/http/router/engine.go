package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/infrastructure/auth"
	"github.com/tutorcenter/backend/internal/infrastructure/config"
	"github.com/tutorcenter/backend/internal/infrastructure/logger"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
)

// EngineConfig carries what the engine needs besides the handlers
type EngineConfig struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Swagger     config.SwaggerConfig
	Telemetry   config.TelemetryConfig
	JWT         *auth.JWTService
	Blacklist   auth.TokenBlacklist
	Logger      *zap.Logger
	// RateLimiter and AuthRateLimiter are optional; the caller owns and stops them
	RateLimiter     *middleware.RateLimiter
	AuthRateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the global middleware chain, the
// swagger UI and the /api/v1 routes.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, logger.WithQuietPaths("/health", "/api/v1/health")))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	jwtConfig := middleware.DefaultJWTConfig(cfg.JWT)
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths, "/api/v1/system/info")
	jwtConfig.TokenBlacklist = cfg.Blacklist
	jwtConfig.Logger = log

	engine.GET("/health", h.Health.Health)
	swaggerJWT := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     cfg.JWT,
		TokenBlacklist: cfg.Blacklist,
		Logger:         log,
	})
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, swaggerJWT),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	var authLimit gin.HandlerFunc
	if cfg.AuthRateLimiter != nil {
		authLimit = middleware.AuthRateLimit(cfg.AuthRateLimiter)
	}

	r := NewRouter(engine, WithAPIVersion("v1")).Use(
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.TracingAttributeInjector(),
		middleware.ProfilingAttributeInjector(),
	)
	for _, g := range APIGroups(h, authLimit) {
		r.Register(g)
	}
	r.Setup()
	return engine
}
