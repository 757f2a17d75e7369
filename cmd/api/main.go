package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airlink/internal/core/services"
	httphandlers "airlink/internal/handlers/http"
	"airlink/internal/infrastructure/live"
	"airlink/internal/infrastructure/middleware"
	"airlink/internal/infrastructure/monitoring"
	"airlink/internal/infrastructure/notify"
	"airlink/internal/infrastructure/repositories"
	"airlink/internal/infrastructure/scheduler"
	"airlink/internal/infrastructure/webhook"
	"airlink/pkg/config"
	"airlink/pkg/logger"
	"airlink/pkg/tracing"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/airlink/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.App.Env,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repoFactory, err := repositories.NewRepositoryFactory(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	licenseRepo := repoFactory.CreateLicenseRepository()
	sessionRepo := repoFactory.CreateSessionRepository()
	listenerRepo := repoFactory.CreateListenerRepository()
	eventRepo := repoFactory.CreateEventRepository()
	outboxRepo := repoFactory.CreateOutboxRepository()
	pinCache := repoFactory.CreatePINCache()

	collector := monitoring.NewPrometheusCollector()

	sender := webhook.NewSender(webhook.SenderConfig{
		URL:             cfg.Webhook.URL,
		Secret:          cfg.Webhook.Secret,
		SignatureHeader: cfg.Webhook.SignatureHeader,
		Timeout:         cfg.Webhook.Timeout,
		MaxRetries:      cfg.Webhook.MaxRetries,
	}, log)
	dispatcher := webhook.NewDispatcher(outboxRepo, sender, cfg.Webhook.URL != "", collector, log)

	hub := live.NewHub(log)
	notifier := notify.New(cfg.Notify.WebhookURL, cfg.Notify.Timeout, log)

	eventService := services.NewEventService(eventRepo, dispatcher, hub, log)
	licenseService := services.NewLicenseService(licenseRepo, eventService, collector, log)
	sessionService := services.NewSessionService(
		licenseRepo, sessionRepo, listenerRepo, pinCache,
		eventService, notifier, collector, log,
	)
	authService := services.NewAuthService(cfg.Auth.AdminSecret, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	statsService := services.NewStatsService(
		sessionRepo, listenerRepo, eventRepo,
		repoFactory, cfg.App.Version, 5*time.Second, log,
	)

	licenseHandler := httphandlers.NewLicenseHandler(licenseService)
	sessionHandler := httphandlers.NewSessionHandler(sessionService)
	eventHandler := httphandlers.NewEventHandler(eventService, cfg.Webhook.Secret, cfg.Webhook.SignatureHeader, cfg.Webhook.MaxSkew)
	statsHandler := httphandlers.NewStatsHandler(statsService)
	adminHandler := httphandlers.NewAdminHandler(authService, licenseService, eventService, statsService, hub)
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("database", repoFactory.Ping, 3*time.Second)
	if repoFactory.RedisClient() != nil {
		healthChecker.AddCheck("redis", repoFactory.HealthCheck, 2*time.Second)
	}
	healthHandler := httphandlers.NewHealthHandler(repoFactory, healthChecker, sessionRepo, eventRepo, cfg.App.Name, cfg.App.Version)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestLoggerMiddleware(zapLogger))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	licenseHandler.SetupRoutes(router)
	sessionHandler.SetupRoutes(router)
	eventHandler.SetupRoutes(router)
	statsHandler.SetupRoutes(router)
	adminHandler.SetupRoutes(router, middleware.AdminAuthMiddleware(authService))
	healthHandler.SetupRoutes(router)

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	if cfg.Scheduler.Enabled {
		sweeper := scheduler.NewSweeper(sessionService, repoFactory.RedisClient(), cfg.Scheduler.SweepInterval, log)
		go sweeper.Start(ctx)
		defer sweeper.Stop()

		go dispatcher.Run(ctx, cfg.Scheduler.RetryInterval, cfg.Scheduler.RetryBatchLimit)
		log.Infow("background scheduler started",
			"sweep_interval", cfg.Scheduler.SweepInterval,
			"retry_interval", cfg.Scheduler.RetryInterval,
		)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting AirLink API server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down AirLink API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer", "error", err)
	}

	log.Info("AirLink API server stopped")
}
