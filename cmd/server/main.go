package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/infrastructure/cache"
	"github.com/kanban/backend/internal/infrastructure/config"
	"github.com/kanban/backend/internal/infrastructure/event"
	"github.com/kanban/backend/internal/infrastructure/logger"
	"github.com/kanban/backend/internal/infrastructure/persistence"
	"github.com/kanban/backend/internal/infrastructure/storage"
	"github.com/kanban/backend/internal/infrastructure/telemetry"
	"github.com/kanban/backend/internal/interfaces/http/handler"
	"github.com/kanban/backend/internal/interfaces/http/middleware"
	"github.com/kanban/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Kanban Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with the zap-backed GORM logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize OpenTelemetry providers (if enabled)
	var meterProvider *telemetry.MeterProvider
	var tracerProvider *telemetry.TracerProvider
	var kanbanMetrics *telemetry.KanbanMetrics
	if cfg.Telemetry.Enabled {
		meterProvider, err = telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		tracerProvider, err = telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		if cfg.Telemetry.LogsEnabled {
			loggerProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
				Enabled:           true,
				CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
				ServiceName:       cfg.Telemetry.ServiceName,
				Insecure:          cfg.Telemetry.Insecure,
			}, log)
			if err != nil {
				log.Warn("Failed to initialize logs bridge", zap.Error(err))
			} else {
				defer func() {
					if err := loggerProvider.Shutdown(context.Background()); err != nil {
						log.Error("Error shutting down logger provider", zap.Error(err))
					}
				}()
				level, parseErr := zapcore.ParseLevel(cfg.Log.Level)
				if parseErr != nil {
					level = zapcore.InfoLevel
				}
				// All subsequent log entries reach stdout and the collector
				log = telemetry.BridgeLogger(log, loggerProvider, cfg.Telemetry.ServiceName, level)
			}
		}

		// SQL-level metrics via GORM callbacks
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("kanban.db"), telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to initialize database metrics", zap.Error(err))
		} else if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register database metrics plugin", zap.Error(err))
		}

		if cfg.Telemetry.DBTraceEnabled {
			dbTracingCfg := telemetry.DefaultDBTracingConfig()
			dbTracingCfg.Enabled = true
			dbTracing := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
			if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
				log.Warn("Failed to register database tracing", zap.Error(err))
			}
		}

		// Board-level gauges (card counts, WIP breaches) collected periodically
		kanbanMetrics, err = telemetry.NewKanbanMetrics(telemetry.KanbanMetricsConfig{
			Meter:         meterProvider.Meter("kanban.board"),
			Logger:        log,
			BoardProvider: telemetry.NewGormBoardMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize board metrics", zap.Error(err))
		} else {
			kanbanMetrics.StartPeriodicCollection(context.Background(), telemetry.NewGormTenantProvider(db.DB), 0)
			defer kanbanMetrics.Stop()
		}
	}

	// Continuous profiling (if enabled)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Profiler.ApplicationName,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Initialize repositories
	workspaceRepo := persistence.NewGormWorkspaceRepository(db.DB)
	boardRepo := persistence.NewGormBoardRepository(db.DB)
	columnRepo := persistence.NewGormColumnRepository(db.DB)
	cardRepo := persistence.NewGormCardRepository(db.DB)
	commentRepo := persistence.NewGormCommentRepository(db.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Transaction scope used by placement-sensitive operations so the
	// sibling read and the position write share one transaction
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Board detail cache (Redis when enabled, in-memory otherwise)
	boardCache, err := cache.NewBoardCacheFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to initialize board cache", zap.Error(err))
	}

	// Object storage for card attachments
	var objectStorage kanbanapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage enabled",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Info("Object storage disabled, attachment URLs are stubs")
	}

	// Initialize application services
	workspaceService := kanbanapp.NewWorkspaceService(workspaceRepo)
	boardService := kanbanapp.NewBoardService(boardRepo, columnRepo, workspaceRepo)
	boardService.SetCache(boardCache)
	columnService := kanbanapp.NewColumnService(columnRepo, boardRepo, cardRepo, txScope)
	cardService := kanbanapp.NewCardService(cardRepo, columnRepo, txScope)
	commentService := kanbanapp.NewCommentService(commentRepo, cardRepo)
	attachmentService := kanbanapp.NewAttachmentService(attachmentRepo, cardRepo, objectStorage)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Audit trail subscribes to every domain event
	auditEventHandler := kanbanapp.NewAuditHandler(auditRepo, log)
	eventBus.Subscribe(auditEventHandler)

	// Column changes invalidate the cached board detail
	cacheInvalidator := kanbanapp.NewBoardCacheInvalidator(boardCache)
	eventBus.Subscribe(cacheInvalidator, cacheInvalidator.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("cache_invalidation_events", cacheInvalidator.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	workspaceService.SetEventPublisher(eventBus)
	boardService.SetEventPublisher(eventBus)
	columnService.SetEventPublisher(eventBus)
	cardService.SetEventPublisher(eventBus)
	commentService.SetEventPublisher(eventBus)
	attachmentService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	boardHandler := handler.NewBoardHandler(boardService)
	columnHandler := handler.NewColumnHandler(columnService)
	cardHandler := handler.NewCardHandler(cardService)
	commentHandler := handler.NewCommentHandler(commentService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	auditHandler := handler.NewAuditHandler(auditRepo)
	systemHandler := handler.NewSystemHandler(db.DB)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tenant - Resolve tenant from X-Tenant-ID header
	// 8. Telemetry - HTTP metrics, tracing, profiling labels (if enabled)
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Tenant resolution; health and system endpoints stay tenant-free
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Telemetry middleware (if enabled)
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	if cfg.Profiler.Enabled {
		engine.Use(middleware.Profiling())
	}

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness and readiness endpoints (outside API versioning)
	engine.GET("/healthz", systemHandler.Healthz)
	engine.GET("/readyz", systemHandler.Readyz)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Workspace routes
	workspaceRoutes := router.NewDomainGroup("workspaces", "/workspaces")
	workspaceRoutes.POST("", workspaceHandler.Create)
	workspaceRoutes.GET("", workspaceHandler.List)
	workspaceRoutes.GET("/:id", workspaceHandler.GetByID)
	workspaceRoutes.PUT("/:id", workspaceHandler.Update)
	workspaceRoutes.DELETE("/:id", workspaceHandler.Delete)

	// Board routes
	boardRoutes := router.NewDomainGroup("boards", "/boards")
	boardRoutes.POST("", boardHandler.Create)
	boardRoutes.GET("", boardHandler.List)
	boardRoutes.GET("/:id", boardHandler.GetByID)
	boardRoutes.GET("/:id/detail", boardHandler.GetDetail)
	boardRoutes.PUT("/:id", boardHandler.Update)
	boardRoutes.DELETE("/:id", boardHandler.Delete)
	boardRoutes.GET("/:id/columns", columnHandler.ListByBoard)
	boardRoutes.GET("/:id/cards", cardHandler.ListByBoard)

	// Column routes
	columnRoutes := router.NewDomainGroup("columns", "/columns")
	columnRoutes.POST("", columnHandler.Create)
	columnRoutes.GET("/:id", columnHandler.GetByID)
	columnRoutes.PUT("/:id", columnHandler.Update)
	columnRoutes.POST("/:id/reorder", columnHandler.Reorder)
	columnRoutes.DELETE("/:id", columnHandler.Delete)
	columnRoutes.GET("/:id/cards", cardHandler.ListByColumn)

	// Card routes
	cardRoutes := router.NewDomainGroup("cards", "/cards")
	cardRoutes.POST("", cardHandler.Create)
	cardRoutes.GET("/:id", cardHandler.GetByID)
	cardRoutes.PUT("/:id", cardHandler.Update)
	cardRoutes.POST("/:id/reorder", cardHandler.Reorder)
	cardRoutes.POST("/:id/move", cardHandler.Move)
	cardRoutes.DELETE("/:id", cardHandler.Delete)
	cardRoutes.POST("/:id/comments", commentHandler.Create)
	cardRoutes.GET("/:id/comments", commentHandler.ListByCard)
	cardRoutes.POST("/:id/attachments", attachmentHandler.InitiateUpload)
	cardRoutes.GET("/:id/attachments", attachmentHandler.ListByCard)

	// Comment routes
	commentRoutes := router.NewDomainGroup("comments", "/comments")
	commentRoutes.PUT("/:id", commentHandler.Update)
	commentRoutes.DELETE("/:id", commentHandler.Delete)

	// Attachment routes
	attachmentRoutes := router.NewDomainGroup("attachments", "/attachments")
	attachmentRoutes.GET("/:id/download", attachmentHandler.GetDownloadURL)
	attachmentRoutes.DELETE("/:id", attachmentHandler.Delete)

	// Audit trail routes
	auditRoutes := router.NewDomainGroup("audit", "/audit")
	auditRoutes.GET("", auditHandler.List)

	// Register all domain groups
	r.Register(workspaceRoutes).
		Register(boardRoutes).
		Register(columnRoutes).
		Register(cardRoutes).
		Register(commentRoutes).
		Register(attachmentRoutes).
		Register(auditRoutes)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
