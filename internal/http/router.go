// Package httpapi mounts the journal API on a Gin engine: the middleware
// stack, health and metrics endpoints, optional Swagger UI and the journal,
// deviation and distribution routes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/navikt/bidrag-dokument-arkiv/internal/config"
	"github.com/navikt/bidrag-dokument-arkiv/internal/docs"
	"github.com/navikt/bidrag-dokument-arkiv/internal/http/handlers"
	"github.com/navikt/bidrag-dokument-arkiv/internal/http/middleware"
	"github.com/navikt/bidrag-dokument-arkiv/internal/repo"
)

const maxBodyBytes = 1 << 20

// Services bundles the application services the journal endpoints call.
type Services struct {
	Journalposter handlers.JournalpostLeser
	Avvik         handlers.AvvikBehandler
	Endre         handlers.JournalpostEndrer
	Distribusjon  handlers.Distribuerer
}

// idempotencyStore adapts the repository free functions to the
// middleware.IdempotencyStore interface.
type idempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// Get proxies repo.GetIdempotency; a miss is reported as nil, nil.
func (s idempotencyStore) Get(ctx context.Context, operasjon, journalpostID, key string, now time.Time) (*middleware.StoredResponse, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, operasjon, journalpostID, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &middleware.StoredResponse{Status: rec.Status, Body: []byte(rec.Respons)}, nil
}

// Save proxies repo.CreateIdempotency. A concurrent duplicate is not an error:
// the first answer stays authoritative.
func (s idempotencyStore) Save(ctx context.Context, operasjon, journalpostID, key string, resp middleware.StoredResponse) error {
	_, err := repo.CreateIdempotency(ctx, s.db, operasjon, journalpostID, key, string(resp.Body), resp.Status, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// idempotentOperasjon names the mutating operations covered by Idempotency-Key.
func idempotentOperasjon(basePath string) func(c *gin.Context) string {
	base := strings.TrimRight(basePath, "/")
	avvik := base + "/journal/:jpid/avvik"
	endre := base + "/journal/:jpid"
	return func(c *gin.Context) string {
		switch route := c.FullPath(); {
		case c.Request.Method == http.MethodPost && route == avvik:
			return "avvik"
		case c.Request.Method == http.MethodPatch && route == endre:
			return "endre"
		default:
			return ""
		}
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the journal API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. Saksbehandler: ident from the bearer token (rate limit key, log field)
//  8. Idempotency (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per case handler/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, svc Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"Nav-Consumer-Token"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit and response compression
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Case handler ident
	r.Use(middleware.Saksbehandler())

	// 8) Idempotency-Key replay for avvik and edits
	r.Use(middleware.Idempotency(
		middleware.IdempotencyOptions{
			MaxLen:    200,
			Operasjon: idempotentOperasjon(cfg.APIBasePath),
		},
		idempotencyStore{db: db, ttl: cfg.IdempotencyTTL},
	))

	// 9) Token-bucket rate limiter per case handler/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySaksbehandlerOrIP(), "/health", "/metrics")
	r.Use(rl.Handler())

	// 10) CORS posture (allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		"X_ENHET", "Nav-Call-Id", middleware.HeaderIdempotencyKey,
	}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "Warning", middleware.HeaderIdempotentReplay}
	methods := []string{"GET", "POST", "PATCH", "OPTIONS"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
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
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// Journal answers carry personal data and must not be cached.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
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
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc.Journalposter, svc.Avvik, svc.Endre, svc.Distribusjon)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Journal entries
		api.GET("/journal/:jpid", h.HentJournalpost)
		api.PATCH("/journal/:jpid", h.EndreJournalpost)

		// Deviations
		api.GET("/journal/:jpid/avvik", h.HentAvvik)
		api.POST("/journal/:jpid/avvik", h.BehandleAvvik)

		// Distribution
		api.POST("/journal/distribuer/:jpid", h.Distribuer)
		api.GET("/journal/distribuer/:jpid/enabled", h.KanDistribuere)

		// Case journal
		api.GET("/sak/:saksnummer/journal", h.HentSakJournal)
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

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
