package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/afterclass/afterclass-backend/internal/config"
	"github.com/afterclass/afterclass-backend/internal/handler"
	"github.com/afterclass/afterclass-backend/internal/middleware"
	"github.com/afterclass/afterclass-backend/internal/repository/postgres"
	"github.com/afterclass/afterclass-backend/internal/repository/storage"
	"github.com/afterclass/afterclass-backend/internal/search"
	"github.com/afterclass/afterclass-backend/internal/service"
	"github.com/afterclass/afterclass-backend/internal/ws"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize search index client. An unreachable index is not fatal:
	// writes fall into the sync ledger and reads fall back to the database.
	index, err := search.NewElasticIndex(cfg.ElasticsearchURLs, cfg.ElasticsearchIndex, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create search index client")
	}
	if !index.Ping() {
		log.Warn().Msg("Search index is unreachable at startup, continuing with database fallback")
	}

	// Initialize repositories
	workshopRepo := postgres.NewWorkshopRepository(pool)
	syncRepo := postgres.NewSyncRecordRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	socialGroupRepo := postgres.NewSocialGroupRepository(pool)

	// Initialize photo storage if configured
	var photoStorage storage.PhotoStorage
	if cfg.PhotoStorageEnabled() {
		s3Store, err := storage.NewS3PhotoStorage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize photo storage")
		}
		photoStorage = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Photo storage enabled")
	} else {
		log.Info().Msg("Photo storage disabled (no S3_BUCKET configured)")
	}

	// WebSocket hub
	hub := ws.NewHub()

	// Initialize services
	workshopService := service.NewWorkshopService(workshopRepo)
	combiner := service.NewWorkshopCombiner(workshopService, index, syncRepo, hub)
	syncService := service.NewSyncService(syncRepo, workshopRepo, index, hub)
	categoryService := service.NewCategoryService(categoryRepo)
	socialGroupService := service.NewSocialGroupService(socialGroupRepo)
	photoService := service.NewPhotoService(photoStorage)

	// Start the background reconciler
	syncWorker := service.NewSyncWorker(syncService, log.Logger, cfg.SyncInterval)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	syncWorker.Start(workerCtx)

	// Initialize handlers
	workshopHandler := handler.NewWorkshopHandler(combiner)
	catalogHandler := handler.NewCatalogHandler(categoryService, socialGroupService)
	photoHandler := handler.NewPhotoHandler(photoService, combiner)
	syncHandler := handler.NewSyncHandler(syncService, syncWorker)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Per-client rate limiting
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()
	e.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		status := map[string]string{"status": "ok", "search": "ok"}
		if !index.Ping() {
			status["search"] = "unreachable"
		}
		return c.JSON(http.StatusOK, status)
	})

	// Register API routes
	handler.RegisterRoutes(e, workshopHandler, catalogHandler, photoHandler, syncHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	syncWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
