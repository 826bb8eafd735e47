// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, rate limiting and quotas.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/ai-content-studio/internal/config"
	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/http/handlers"
	"github.com/tbourn/ai-content-studio/internal/http/middleware"
	"github.com/tbourn/ai-content-studio/internal/repo"
	"github.com/tbourn/ai-content-studio/internal/services"
)

// Endpoint classes charged by the quota middleware.
const (
	ClassScriptGeneration = "script_generation"
	ClassVideoCreation    = "video_creation"
	ClassAPICall          = "api_call"
)

const (
	apiBase      = "/api"
	maxBodyBytes = 1 << 20
)

// idempotencyRepo adapts the repository free functions to
// middleware.IdempotencyStore.
type idempotencyRepo struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewIdempotencyStore returns a store persisting Idempotency-Key results in
// db for ttl.
func NewIdempotencyStore(db *gorm.DB, ttl time.Duration) middleware.IdempotencyStore {
	return idempotencyRepo{db: db, ttl: ttl}
}

// Lookup proxies repo.GetIdempotency.
func (r idempotencyRepo) Lookup(ctx context.Context, userID, scope, key string, now time.Time) (string, bool, error) {
	rec, err := repo.GetIdempotency(ctx, r.db, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.ResourceID, true, nil
}

// Remember proxies repo.CreateIdempotency. A concurrent duplicate is not an
// error: the first completion wins.
func (r idempotencyRepo) Remember(ctx context.Context, userID, scope, key, resourceID string, status int) error {
	_, err := repo.CreateIdempotency(ctx, r.db, userID, scope, key, resourceID, status, r.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Deps is everything RegisterRoutes mounts.
type Deps struct {
	handlers.Deps

	// Idempotency persists Idempotency-Key results. Nil disables replays;
	// keys are still validated.
	Idempotency middleware.IdempotencyStore
	// APICalls records every /api request. Nil skips tracking.
	APICalls middleware.APICallRecorder
	// Usage charges registered callers one api_call. Nil skips it.
	Usage middleware.UsageFunc
}

// UsageFromUsers charges api_call usage through m. RecordUsage ignores
// callers that are not registered users.
func UsageFromUsers(m *services.UserManager) middleware.UsageFunc {
	return func(ctx context.Context, userID string) error {
		return m.RecordUsage(ctx, userID, domain.UsageAPICall)
	}
}

// classify maps the matched route to its quota class.
func classify(c *gin.Context) string {
	switch c.FullPath() {
	case apiBase + "/scripts/generate":
		return ClassScriptGeneration
	case apiBase + "/videos/create":
		return ClassVideoCreation
	default:
		return ClassAPICall
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, the
// bundled pages, and then mounts the public API under /api.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID + caller identity: correlation id and X-User-ID
//  3. ContextLogger + RedactingLogger: request-scoped logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers
//
// The /api group adds analytics tracking and per-class quotas.
func RegisterRoutes(r *gin.Engine, cfg config.Config, d Deps) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())
	r.Use(middleware.UserIdentity())

	// 3) Structured logging with redaction
	r.Use(middleware.ContextLogger())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"Proxy-Authorization"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, d.Idempotency))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	h := handlers.New(d.Deps)

	// Liveness/health
	r.GET("/health", h.Health)

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Bundled pages
	pages := r.Group("", middleware.ContentSecurityPolicy(middleware.DefaultPagePolicy))
	for path, file := range handlers.Pages {
		pages.GET(path, handlers.Page(file))
	}

	// Public API
	quota := middleware.NewQuota(middleware.QuotaOptions{
		Window: cfg.Quotas.Window,
		Limits: map[string]int{
			ClassScriptGeneration: cfg.Quotas.ScriptsPerHour,
			ClassVideoCreation:    cfg.Quotas.VideosPerHour,
			ClassAPICall:          cfg.Quotas.APICallsPerHour,
		},
	})
	api := r.Group(apiBase, middleware.TrackAPICalls(d.APICalls, d.Usage), quota.Handler(classify))
	{
		// Scripts
		api.POST("/scripts/generate", h.GenerateScript)
		api.GET("/scripts", h.ListScripts)
		api.GET("/scripts/search", h.SearchScripts)
		api.GET("/scripts/:id", h.GetScript)

		// Videos
		api.POST("/videos/create", h.CreateVideo)
		api.GET("/videos", h.ListVideos)
		api.GET("/videos/:id", h.GetVideo)

		// Analytics
		api.GET("/analytics/dashboard", h.Dashboard)
		api.GET("/analytics/top-users", h.TopUsers)
		api.GET("/analytics/users/:id", h.UserAnalytics)

		// Users
		api.POST("/users", h.RegisterUser)
		api.POST("/users/register", h.RegisterUser)
		api.GET("/users/:id", h.GetUser)
		api.GET("/users/:id/stats", h.GetUserStats)
		api.PUT("/users/:id/plan", h.ChangePlan)

		// Costs
		api.GET("/costs", h.CostAnalysis)
		api.GET("/costs/estimate", h.EstimateCost)
		api.POST("/costs/optimize", h.OptimizeCosts)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
