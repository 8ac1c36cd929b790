package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/analysis"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/api"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/config"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/database"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/logging"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/middleware"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/storage"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Setup(cfg.LogLevel, cfg.Environment)

	if err := telemetry.Init(cfg.Environment); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("Failed to shutdown telemetry")
		}
	}()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redis.Close()

	// Service layer wiring. The analysis repository is both the durable sync
	// target of uploads and the cloud source the reconciler hydrates from.
	analysisClient := analysis.NewClient(cfg.Analysis)
	analysisRepo := storage.NewAnalysisRepository(db.Pool)

	contentTTL := config.Duration(cfg.Upload.ContentCacheTTL, 24*time.Hour)
	snapshots := blotter.NewSnapshotStore(redis.Client, contentTTL)
	contents := blotter.NewContentCache(redis.Client, contentTTL)

	reconciler := services.NewReconciler(analysisRepo)
	sessions := services.NewSessionManager(reconciler, snapshots, contents, analysisClient, cfg.Upload.MaxChatFileBytes)
	orchestrator := services.NewUploadOrchestrator(analysisClient, analysisRepo, contents, cfg.Upload.MaxFileBytes)
	selections := services.NewAssetSelectionStore(redis.Client)
	priceAlerts := services.NewPriceAlertService(cfg.PriceAlerts)
	notifications := services.NewNotificationPrefsClient(cfg.Notifications)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(telemetry.ServiceName))

	api.SetupRoutes(router, api.Dependencies{
		DB:            db,
		Redis:         redis,
		Auth:          middleware.NewAuthMiddleware(cfg.Security.JWTSecret),
		Sessions:      sessions,
		Orchestrator:  orchestrator,
		Selections:    selections,
		PriceAlerts:   priceAlerts,
		Notifications: notifications,
	})

	// Upload requests block on the analysis pipeline, so the write timeout has
	// to outlast it.
	uploadTimeout := config.Duration(cfg.Analysis.UploadTimeout, 3*time.Minute)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       uploadTimeout,
		WriteTimeout:      uploadTimeout + 30*time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"service": telemetry.ServiceName,
			"version": telemetry.ServiceVersion,
			"port":    cfg.Server.Port,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrus.Info("Server exited")
	return nil
}
