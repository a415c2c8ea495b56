// Package httpapi wires the HTTP transport (Gin) to the session registry,
// the catalog, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, session resolution,
// logging/redaction, panic recovery, metrics, CORS, security headers,
// idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → session → logging → recovery)
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

	_ "github.com/tbourn/marketplace-state/docs"
	"github.com/tbourn/marketplace-state/internal/config"
	"github.com/tbourn/marketplace-state/internal/http/handlers"
	"github.com/tbourn/marketplace-state/internal/http/middleware"
	"github.com/tbourn/marketplace-state/internal/repo"
)

// idempotencyRepoShim adapts the repository free functions to the
// handlers.IdempotencyStore interface.
type idempotencyRepoShim struct {
	db  *gorm.DB
	ttl time.Duration
}

// Lookup proxies repo.GetIdempotency; a missing or expired record is not an
// error.
func (s idempotencyRepoShim) Lookup(ctx context.Context, sessionID, threadID, key string, now time.Time) (string, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, sessionID, threadID, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.MessageID, true, nil
}

// Remember proxies repo.CreateIdempotency. A concurrent duplicate already
// holds the key and is not an error.
func (s idempotencyRepoShim) Remember(ctx context.Context, sessionID, threadID, key, messageID string) error {
	_, err := repo.CreateIdempotency(ctx, s.db, sessionID, threadID, key, messageID, http.StatusCreated, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Deps are the collaborators the routes are built over.
type Deps struct {
	// Sessions resolves session ids to their stores. Required.
	Sessions handlers.Sessions
	// Catalog may be nil; catalog endpoints then answer 503.
	Catalog handlers.Catalog
	// DB holds idempotency records. When nil, Idempotency-Key headers are
	// validated but not recorded.
	DB *gorm.DB
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), session
// resolution, idempotency and rate limiting, CORS and security headers,
// health and metrics endpoints, and then mounts the versioned public API
// under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. CORS: answer preflights before any validation
//  4. SessionID: reject malformed X-Session-ID early
//  5. Logger: structured logs (redacted outside debug mode)
//  6. Recovery: capture panics after logger
//  7. Body size limiter, gzip
//  8. Metrics
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per session/IP, bypass on replay)
//  11. Security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderSessionID, middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", handlers.HeaderStateRevision, middleware.HeaderIdempotencyReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
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
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 4) Session resolution
	r.Use(middleware.SessionID())

	// 5) Structured logging; full request detail only while debugging
	if gin.Mode() == gin.DebugMode {
		r.Use(middleware.Logger())
	} else {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-API-Key"},
		}))
	}

	// 6) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 7) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 8) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9) Idempotency validation (before rate limiting)
	var idem handlers.IdempotencyStore
	var lookup middleware.IdempotencyLookup
	if deps.DB != nil {
		shim := idempotencyRepoShim{db: deps.DB, ttl: cfg.IdempotencyTTL}
		idem = shim
		lookup = func(ctx context.Context, sessionID, threadID, key string, now time.Time) (bool, error) {
			_, found, err := shim.Lookup(ctx, sessionID, threadID, key, now)
			return found, err
		}
	}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, lookup))

	// 10) Token-bucket rate limiter per session/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySessionOrIP())
	r.Use(rl.Handler())

	// 11) Security headers (HSTS only when enabled and request is HTTPS).
	// Responses stay cacheable so clients can revalidate with ETags.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
		VarySession:  true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Sessions, deps.Catalog, idem, handlers.Options{
		AutoReply:       cfg.Chat.AutoReply,
		ReplyDelay:      cfg.Chat.ReplyDelay,
		MaxMessageRunes: cfg.Chat.MaxMessageRunes,
	})

	// Public API
	h.Mount(groupWithPrefix(r, cfg.APIBasePath)) // e.g. "/api/v1"
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

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
