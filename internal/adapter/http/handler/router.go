package handler

import (
	"payment-event-pipeline/internal/adapter/http/middleware"
	redisStore "payment-event-pipeline/internal/adapter/storage/redis"
	"payment-event-pipeline/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	PipelineSvc    ports.PipelineService
	ReprocessSvc   ports.ReprocessService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
	MaxBodyBytes   int64
	OpenAPISpec    []byte // served at /swagger/spec when present
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec(deps.OpenAPISpec))
	}

	rules := middleware.DefaultRateLimitRules()

	// rl returns the group's rate limiter, or a no-op without a store.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Provider notifications (signature-authenticated in the pipeline) ---
	webhookHandler := NewWebhookHandler(deps.PipelineSvc)
	r.POST("/webhooks/provider", rl("webhooks"), middleware.MaxBodySize(maxBody), webhookHandler.Receive)

	// --- Operator routes (JWT, operator role) ---
	if deps.ReprocessSvc != nil {
		admin := r.Group("/api/v1/admin",
			middleware.MaxBodySize(maxBody),
			middleware.OperatorAuth(deps.TokenSvc, deps.Logger),
			rl("operator"),
		)
		if deps.AuditSvc != nil {
			admin.Use(middleware.AuditLog(deps.AuditSvc))
		}

		reprocessHandler := NewReprocessHandler(deps.ReprocessSvc)
		events := admin.Group("/webhook-events")
		{
			events.POST("/reprocess", reprocessHandler.Reprocess)
			events.GET("/:id", reprocessHandler.Inspect)
		}
	}

	return r
}
