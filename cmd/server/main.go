// Command server runs the WhatsApp lead backend HTTP API.
//
//	@title						Lead Backend API
//	@version					1.0
//	@description				WhatsApp Business lead capture, enrichment and dashboard API.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/dedupe"
	"github.com/tbourn/go-lead-backend/internal/extraction"
	httpapi "github.com/tbourn/go-lead-backend/internal/http"
	"github.com/tbourn/go-lead-backend/internal/observability"
	"github.com/tbourn/go-lead-backend/internal/repo"
	"github.com/tbourn/go-lead-backend/internal/services"
	"github.com/tbourn/go-lead-backend/internal/sysutil"
	"github.com/tbourn/go-lead-backend/internal/whatsapp"
)

const (
	shutdownTimeout = 30 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	logger := sysutil.SetupLogging(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	version := sysutil.Version()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	shutdownTracing, err := observability.StartTracing(ctx, cfg.OTEL, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing setup failed")
	}

	db, err := repo.Open(cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	deduper, closeDedupe := buildDeduper(ctx, logger, db, cfg)
	defer closeDedupe()

	extractor, closeExtractor := buildExtractor(ctx, logger, cfg.Extraction)
	defer closeExtractor()

	wa := whatsapp.NewClient(whatsapp.Config{
		BaseURL:     cfg.WhatsApp.APIBase,
		APIVersion:  cfg.WhatsApp.APIVersion,
		AccessToken: cfg.WhatsApp.AccessToken,
		Timeout:     cfg.WhatsApp.Timeout,
	})
	if cfg.WhatsApp.AccessToken == "" {
		logger.Warn().Msg("WHATSAPP_ACCESS_TOKEN not set; welcome templates will not be sent")
	}
	if cfg.WhatsApp.VerifyToken == "" {
		logger.Warn().Msg("WHATSAPP_VERIFY_TOKEN not set; webhook verification will be refused")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET not set; dashboard authentication is disabled")
	}

	webhookSvc := services.NewWebhookService(db, &cfg, extractor, wa, deduper, observability.NewWebhookMetrics(nil))

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{DB: db, Webhook: webhookSvc}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go purgeLoop(ctx, logger, db)

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownTracing(sctx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("server stopped")
}

// buildDeduper prefers Redis when configured and falls back to the
// database-backed claim table.
func buildDeduper(ctx context.Context, logger zerolog.Logger, db *gorm.DB, cfg config.Config) (dedupe.Deduper, func()) {
	client, err := dedupe.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable; using database deduplication")
	}
	if client != nil {
		rd, err := dedupe.NewRedisDeduper(client, "leads:", cfg.DedupeTTL)
		if err == nil {
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis deduplication enabled")
			return rd, func() { _ = client.Close() }
		}
		_ = client.Close()
		logger.Warn().Err(err).Msg("redis deduper init failed; using database deduplication")
	}
	return dedupe.NewStoreDeduper(db, "whatsapp", cfg.DedupeTTL), func() {}
}

// buildExtractor returns the Gemini extractor, or the no-op one when no API
// key is configured or the client cannot be created.
func buildExtractor(ctx context.Context, logger zerolog.Logger, cfg config.ExtractionConfig) (extraction.Extractor, func()) {
	if cfg.APIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set; lead extraction disabled")
		return extraction.Noop{}, func() {}
	}
	g, err := extraction.NewGeminiExtractor(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Error().Err(err).Msg("gemini client init failed; lead extraction disabled")
		return extraction.Noop{}, func() {}
	}
	return g, func() { _ = g.Close() }
}

// purgeLoop deletes expired webhook claims until ctx is cancelled.
func purgeLoop(ctx context.Context, logger zerolog.Logger, db *gorm.DB) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredEvents(ctx, db, now.UTC())
			if err != nil {
				logger.Warn().Err(err).Msg("purge processed events")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("rows", n).Msg("purged processed events")
			}
		}
	}
}
