// Command server runs the e-commerce backend: the REST API for products,
// orders, invoices and audit events, the WebSocket invoice import channel,
// and the background pipeline workers (ingestion, expiry reaper, audit
// recorder, order e-mail worker).
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-ecommerce-backend/internal/config"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	httpapi "github.com/tbourn/go-ecommerce-backend/internal/http"
	"github.com/tbourn/go-ecommerce-backend/internal/observability"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
	"github.com/tbourn/go-ecommerce-backend/internal/services"
	"github.com/tbourn/go-ecommerce-backend/internal/storage"
	"github.com/tbourn/go-ecommerce-backend/internal/sysutil"
	"github.com/tbourn/go-ecommerce-backend/internal/ws"
)

const version = "1.0.0"

// @title        E-commerce Backend API
// @version      1.0
// @description  Product catalog, order placement, and the WebSocket-driven
// @description  invoice import pipeline (signed upload URLs, status pushes,
// @description  cancellation, expiry).
// @BasePath     /api/v1
func main() {
	// .env is optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}

	store, err := storage.NewUploadStore(afero.NewOsFs(), cfg.Upload.Dir, signingKey(cfg), cfg.Upload.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("upload store setup failed")
	}

	registry := ws.NewRegistry()
	bus := events.NewBus()

	ingest := &services.IngestService{
		DB:       db,
		Ledger:   services.GormLedgerRepo{},
		Invoices: services.GormInvoiceRepo{},
		Store:    store,
		Notifier: registry,
		Bus:      bus,
	}
	reaper := services.NewReaperService(db, services.GormLedgerRepo{}, registry, repo.PurgeExpiredEvents)
	reaper.Interval = cfg.Import.ReaperInterval
	recorder := services.NewEventRecorder(db)
	recorder.TTL = cfg.Import.EventTTL
	mailer := services.NewEmailWorker(nil)

	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, cfg, httpapi.Deps{
		Store:    store,
		Registry: registry,
		Bus:      bus,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Background pipeline workers.
	g.Go(func() error {
		ingest.Run(gctx, store.Arrivals())
		return nil
	})
	g.Go(func() error {
		reaper.Run(gctx)
		return nil
	})
	g.Go(func() error {
		recorder.Run(gctx, bus.Subscribe("audit-recorder", 256))
		return nil
	})
	g.Go(func() error {
		mailer.Run(gctx, bus.Subscribe("order-mailer", 64))
		return nil
	})
	g.Go(func() error {
		services.AuditLogger{}.Run(gctx, bus.Subscribe("audit-log", 64))
		return nil
	})
	g.Go(func() error {
		services.BillingLogger{}.Run(gctx, bus.Subscribe("billing-log", 64))
		return nil
	})

	// HTTP server plus its shutdown watcher.
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	bus.Close()
	store.Close()
	if otelErr := shutdownOTel(context.Background()); otelErr != nil {
		log.Warn().Err(otelErr).Msg("otel shutdown failed")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

// signingKey returns the configured upload URL signing key, or a fresh
// ephemeral one when none is set. An ephemeral key invalidates outstanding
// upload URLs on restart, which only matters across deploys; configure
// UPLOAD_SIGNING_KEY to keep them valid.
func signingKey(cfg config.Config) []byte {
	if cfg.Upload.SigningKey != "" {
		return []byte(cfg.Upload.SigningKey)
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		log.Fatal().Err(err).Msg("generate upload signing key failed")
	}
	key := hex.EncodeToString(raw)
	log.Warn().Msg("UPLOAD_SIGNING_KEY not set; using an ephemeral key, upload URLs will not survive restarts")
	return []byte(key)
}
