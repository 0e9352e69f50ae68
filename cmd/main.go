package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beachref/livesync/config"
	"github.com/beachref/livesync/db"
	"github.com/beachref/livesync/handlers"
	"github.com/beachref/livesync/repositories"
	api "github.com/beachref/livesync/routes"
	"github.com/beachref/livesync/services"
	"github.com/beachref/livesync/storage"
	"github.com/beachref/livesync/vis"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Missing credentials are setup-fatal: abort before any work.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	visClient, err := vis.NewHTTPClient(vis.ClientConfig{
		BaseURL: cfg.VISAPIBaseURL,
		APIKey:  cfg.VISAPIKey,
	})
	if err != nil {
		logger.Error("failed to initialize VIS client", slog.Any("error", err))
		os.Exit(1)
	}

	// Pass-result archiving is optional; the pipeline runs without it.
	var archiver storage.FileUploader
	if cfg.ArchiveEnabled() {
		archiver, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("pass-result archiving enabled", slog.String("bucket", cfg.R2BucketName))
	}

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	perfLogRepo := repositories.NewPostgresPerformanceLogRepository(dbConn)

	// The scheduler is the only state that outlives a pass. It is built once
	// here and passed by reference, never kept as package state.
	scheduler := services.NewPriorityScheduler(services.NewPerformanceTracker())
	gate := services.NewScheduleGate(tournamentRepo, logger)
	syncService := services.NewSyncService(
		tournamentRepo,
		matchRepo,
		perfLogRepo,
		visClient,
		scheduler,
		archiver,
		logger,
	)
	logger.Info("services initialized")

	syncHandler := handlers.NewSyncHandler(gate, syncService, scheduler, logger)
	healthHandler := handlers.NewHealthHandler(dbConn, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, syncHandler, healthHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // a pass must finish within the trigger's window
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
