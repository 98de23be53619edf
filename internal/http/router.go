// Package httpapi wires the HTTP transport (Gin) to the lead service,
// middleware and route handlers. Tracing, correlation IDs, redacted logging,
// panic recovery, metrics, idempotency, CORS and security headers are set up
// here once for every route.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/http/handlers"
	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/services"
)

// FunctionsPath is the ingestion endpoint's path on the serverless
// deployment. Deployed sites still post there.
const FunctionsPath = "/functions/v1/send-lead-notification"

// TablePath is the table API used by the client's direct-insert strategy.
const TablePath = "/rest/v1/leads"

// maxBodyBytes caps lead payloads; a contact form never gets close.
const maxBodyBytes = 64 << 10

// Deps are the collaborators RegisterRoutes wires into the handlers.
type Deps struct {
	// DB backs the lead table and, unless Replays is set, idempotency replays.
	DB *gorm.DB
	// Notifier sends the operator email. Nil disables it.
	Notifier services.LeadNotifier
	// Replays overrides the replay store (e.g. Redis). Nil uses the DB.
	Replays services.ReplayStore
	// ReadyChecks are extra readiness checks, keyed by name.
	ReadyChecks map[string]healthcheck.Check
}

// RegisterRoutes attaches all middleware and endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. Idempotency validator (marks replays before the rate limiter runs)
//  8. CORS, preflight short-circuit and security headers
//
// Lead routes then run bearer auth and the per-client rate limiter, so the
// limiter can key on the authenticated subject.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	replays := deps.Replays
	if replays == nil && deps.DB != nil {
		replays = &services.DBReplayStore{DB: deps.DB}
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Client-Info"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200, Scope: leadScope(cfg.APIBasePath)},
		replayLookup(replays),
	))

	r.Use(corsMiddleware(cfg.CORS)...)
	r.Use(preflight())
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// Health
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutines", healthcheck.GoroutineCountCheck(10000))
	if deps.DB != nil {
		if sqlDB, err := deps.DB.DB(); err == nil {
			health.AddReadinessCheck("database", healthcheck.DatabasePingCheck(sqlDB, time.Second))
		}
	}
	for name, check := range deps.ReadyChecks {
		health.AddReadinessCheck(name, check)
	}
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/live", gin.WrapF(health.LiveEndpoint))
	r.GET("/ready", gin.WrapF(health.ReadyEndpoint))

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: service ← db/notifier
	rules := domain.BasicRules
	if cfg.StrictValidation {
		rules = domain.StrictRules
	}
	svc := &services.LeadService{DB: deps.DB, Notifier: deps.Notifier, Rules: rules}
	h := handlers.New(svc, replays, cfg.IdempotencyTTL)

	auth := middleware.BearerAuth(cfg.Auth.BearerToken, cfg.Auth.JWTSecret)
	limit := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClient()).Handler()

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(auth, limit)
	{
		api.POST("/leads", h.IngestLead)
		api.POST("/leads/:id/notify", h.NotifyLead)
	}

	r.POST(FunctionsPath, auth, limit, h.IngestLead)
	r.POST(TablePath, auth, middleware.APIKey(cfg.Auth.TableAPIKey), limit, h.InsertLeadRow)
}

// LeadReplayScope is the replay namespace shared by every route that stores a
// lead, so a key reused across the client's fallback chain finds the lead
// whichever route stored it.
const LeadReplayScope = "leads"

func leadScope(apiBase string) func(string) string {
	ingest := strings.TrimRight(apiBase, "/") + "/leads"
	return func(route string) string {
		switch route {
		case ingest, FunctionsPath, TablePath:
			return LeadReplayScope
		}
		return ""
	}
}

// replayLookup adapts a ReplayStore to the idempotency middleware.
func replayLookup(store services.ReplayStore) middleware.IdempotencyLookup {
	if store == nil {
		return nil
	}
	return func(ctx context.Context, scope, key string) (bool, error) {
		rep, err := store.Get(ctx, scope, key)
		return rep != nil, err
	}
}

// allowedHeaders are the request headers browsers may send cross-origin.
var allowedHeaders = []string{
	"Authorization",
	"X-Client-Info",
	middleware.HeaderAPIKey,
	"Content-Type",
	middleware.HeaderIdempotencyKey,
}

// corsMiddleware allows any origin unless an allowlist is configured. With
// no allowlist ACAO: * is set on every response, including ones without an
// Origin header.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		base.AllowOrigins = cfg.AllowedOrigins
		return []gin.HandlerFunc{cors.New(base)}
	}

	base.AllowAllOrigins = true
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		},
		cors.New(base),
	}
}

// preflight answers any OPTIONS request that CORS did not already handle
// with 204 and no body.
func preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// limitBody caps the request body at maxBytes; larger bodies fail to decode.
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
