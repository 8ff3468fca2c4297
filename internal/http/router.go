// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-ecommerce-backend/docs"
	"github.com/tbourn/go-ecommerce-backend/internal/config"
	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	"github.com/tbourn/go-ecommerce-backend/internal/http/handlers"
	"github.com/tbourn/go-ecommerce-backend/internal/http/middleware"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
	"github.com/tbourn/go-ecommerce-backend/internal/services"
	"github.com/tbourn/go-ecommerce-backend/internal/storage"
	"github.com/tbourn/go-ecommerce-backend/internal/ws"
)

// Deps carries the long-lived infrastructure the router wires handlers to.
// All fields are required.
type Deps struct {
	// Store is the upload object store; it signs slot URLs and receives the
	// PUT bodies.
	Store *storage.UploadStore
	// Registry tracks live import WebSocket connections.
	Registry *ws.Registry
	// Bus fans application events out to the audit recorder and e-mail worker.
	Bus *events.Bus
}

// invoiceReaderShim adapts the repository free functions to the
// handlers.InvoiceReader interface. This keeps handlers decoupled from the
// concrete repo package while reusing existing functions.
type invoiceReaderShim struct{ db *gorm.DB }

// GetInvoice proxies repo.GetInvoice.
func (s invoiceReaderShim) GetInvoice(ctx context.Context, customerName, invoiceNumber string) (*domain.Invoice, error) {
	return repo.GetInvoice(ctx, s.db, customerName, invoiceNumber)
}

// ListInvoices proxies repo.ListInvoicesByCustomer.
func (s invoiceReaderShim) ListInvoices(ctx context.Context, customerName string) ([]domain.Invoice, error) {
	return repo.ListInvoicesByCustomer(ctx, s.db, customerName)
}

// ListEvents proxies repo.ListEventsByEmail, scoped to non-expired rows.
func (s invoiceReaderShim) ListEvents(ctx context.Context, email, eventType string) ([]domain.Event, error) {
	return repo.ListEventsByEmail(ctx, s.db, email, eventType, time.Now().UTC())
}

// idempotencyShim adapts the idempotency repository to the
// handlers.IdempotencyStore interface used for order placement replays.
type idempotencyShim struct {
	db  *gorm.DB
	ttl time.Duration
}

// Find returns the stored order id for (userID, key) when a non-expired
// record exists.
func (s idempotencyShim) Find(ctx context.Context, userID, key string) (string, bool) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, key, time.Now().UTC())
	if err != nil || rec == nil {
		return "", false
	}
	return rec.OrderID, true
}

// Save records the produced order id for (userID, key). A duplicate means a
// concurrent request already saved; that is fine.
func (s idempotencyShim) Save(ctx context.Context, userID, key, orderID string) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, key, orderID, http.StatusCreated, s.ttl)
	if err == repo.ErrDuplicate {
		return nil
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, the
// invoice upload and WebSocket import endpoints, and then mounts the versioned
// public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Response compression (upload and socket paths excluded)
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, deps Deps) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compression; skip the socket upgrade, raw uploads, and /metrics
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{
		`^/ws/.*`, `^/upload/.*`, `^/metrics$`,
	})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
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
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
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

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (off by default)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))
	}

	// Dependency injection: services ← repo/db/store/registry/bus
	productSvc := services.NewProductService(db, deps.Bus)
	orderSvc := services.NewOrderService(db, deps.Bus)

	slotSvc := services.NewSlotService(db, services.GormLedgerRepo{}, deps.Store, deps.Registry, "/ws/invoices")
	slotSvc.URLTTL = cfg.Upload.URLTTL
	slotSvc.LedgerTTL = cfg.Import.LedgerTTL

	cancelSvc := &services.CancelService{
		DB:       db,
		Ledger:   services.GormLedgerRepo{},
		Notifier: deps.Registry,
	}

	h := handlers.New(
		productSvc,
		orderSvc,
		invoiceReaderShim{db: db},
		idempotencyShim{db: db, ttl: cfg.IdempotencyTTL},
	)
	uploadH := &handlers.UploadHandler{Store: deps.Store}
	wsH := handlers.NewWSHandler(deps.Registry, slotSvc, cancelSvc)

	// Import channel endpoints live outside the versioned base: the upload
	// path is baked into signed URLs and the socket path into ledger rows.
	r.PUT("/upload/:token", uploadH.PutInvoice)
	r.GET("/ws/invoices", wsH.Serve)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Products
		api.POST("/products", h.CreateProduct)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		// Orders
		api.POST("/orders", h.PlaceOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/events", h.ListEvents)
		api.GET("/orders/:id", h.GetOrder)
		api.DELETE("/orders/:id", h.DeleteOrder)

		// Invoices and audit events
		api.GET("/invoices", h.ListInvoices)
		api.GET("/invoices/:customer/:number", h.GetInvoice)
		api.GET("/events", h.ListEvents)
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
