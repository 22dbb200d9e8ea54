package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	employeeapp "github.com/etiqueta/backend/internal/application/employee"
	"github.com/etiqueta/backend/internal/application/labeling"
	"github.com/etiqueta/backend/internal/infrastructure/cache"
	"github.com/etiqueta/backend/internal/infrastructure/config"
	"github.com/etiqueta/backend/internal/infrastructure/logger"
	"github.com/etiqueta/backend/internal/infrastructure/persistence"
	"github.com/etiqueta/backend/internal/infrastructure/postal"
	"github.com/etiqueta/backend/internal/infrastructure/printing"
	"github.com/etiqueta/backend/internal/infrastructure/storage"
	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"github.com/etiqueta/backend/internal/interfaces/http/handler"
	"github.com/etiqueta/backend/internal/interfaces/http/middleware"
	"github.com/etiqueta/backend/internal/interfaces/http/router"
	"github.com/etiqueta/backend/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	logsCfg := telemetryCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logProvider.Bridge(log, zapcore.InfoLevel)

	log.Info("Starting label server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		ServiceName:       cfg.Telemetry.ServiceName,
		Namespace:         "etiqueta",
		PrometheusEnabled: cfg.Metrics.Enabled,
		WithRuntime:       true,
		OTLPEnabled:       cfg.Telemetry.Enabled && cfg.Metrics.OTLPEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Metrics.ExportInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	var metrics *telemetry.Metrics
	if meterProvider.IsEnabled() {
		metrics, err = telemetry.NewMetrics(meterProvider.Meter(telemetry.MeterName))
		if err != nil {
			log.Fatal("Failed to create metric instruments", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		DBSystem: dbSystem(db.Driver()),
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil && metrics != nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	lookupCache, err := cache.NewLookupCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create lookup cache", zap.Error(err))
	}

	postalClient := postal.NewClient(postal.ClientConfig{
		URLTemplate:     cfg.Postal.URLTemplate,
		Timeout:         cfg.Postal.Timeout,
		BreakerFailures: cfg.Postal.BreakerFailures,
		BreakerOpenFor:  cfg.Postal.BreakerOpenFor,
		BreakerHalfOpen: cfg.Postal.BreakerHalfOpen,
	}, postal.WithLogger(log), postal.WithMetrics(metrics))
	postalLookup := postal.NewCachedLookup(postalClient, lookupCache, cfg.Postal.CacheTTL, metrics, log)

	archive, err := newArchive(ctx, &cfg.Archive, log)
	if err != nil {
		log.Fatal("Failed to initialize label archive", zap.Error(err))
	}

	labelService := labeling.NewService(
		printing.NewLabelRenderer(printing.WithLogger(log)),
		labeling.Config{LogoPath: cfg.Label.LogoPath, RenderTimeout: cfg.Label.RenderTimeout},
		labeling.WithArchive(archive),
		labeling.WithMetrics(metrics),
		labeling.WithLogger(log),
	)
	employeeService := employeeapp.NewService(persistence.NewGormEmployeeRepository(db.DB), metrics, log)

	page, err := handler.NewPageHandler(web.PageData{
		APIBase:           cfg.HTTP.APIBasePath,
		PostalURLTemplate: cfg.HTTP.APIBasePath + "/cep/{cep}/json",
	})
	if err != nil {
		log.Fatal("Failed to load form page", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	skipPaths := []string{"/health", cfg.Metrics.Path}
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		SkipPaths:   skipPaths,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.Profiling(profiler.IsEnabled()))
	engine.Use(middleware.HTTPMetrics(metrics, skipPaths...))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if h := meterProvider.Handler(); h != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(h))
	}

	var labelMiddleware []gin.HandlerFunc
	if cfg.HTTP.LabelRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.LabelRateLimit, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		labelMiddleware = append(labelMiddleware, middleware.RateLimit(limiter))
	}

	router.Mount(engine, router.Handlers{
		Page:            page,
		Label:           handler.NewLabelHandler(labelService, log),
		Employee:        handler.NewEmployeeHandler(employeeService, log),
		Postal:          handler.NewPostalHandler(postalLookup, log),
		System:          handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, db),
		Static:          web.Static(),
		LabelMiddleware: labelMiddleware,
	}, router.WithBasePath(cfg.HTTP.APIBasePath))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := lookupCache.Close(); err != nil {
		log.Error("Error closing lookup cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newArchive builds the configured label archive
func newArchive(ctx context.Context, cfg *config.ArchiveConfig, log *zap.Logger) (printing.LabelArchive, error) {
	switch cfg.Driver {
	case config.ArchiveFileSystem:
		return printing.NewFileSystemArchive(&printing.FileSystemArchiveConfig{
			BasePath: cfg.BasePath,
			Logger:   log,
		})
	case config.ArchiveS3:
		s3Archive, err := storage.NewS3LabelArchive(cfg, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Archive, nil
	default:
		return printing.NopArchive{}, nil
	}
}

func dbSystem(driver string) string {
	if driver == config.DriverPostgres {
		return "postgresql"
	}
	return driver
}
