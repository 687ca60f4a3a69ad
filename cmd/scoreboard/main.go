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

	"github.com/Dosada05/scoreboard/config"
	"github.com/Dosada05/scoreboard/db"
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/metrics"
	"github.com/Dosada05/scoreboard/realtime"
	"github.com/Dosada05/scoreboard/repositories"
	api "github.com/Dosada05/scoreboard/routes"
	"github.com/Dosada05/scoreboard/scoring"
	"github.com/Dosada05/scoreboard/services"
	"github.com/Dosada05/scoreboard/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Инициализация загрузчика логотипов (Cloudflare R2)
	uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
		Endpoint:        cfg.R2Endpoint,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Инициализация WebSocket Hub
	hub := realtime.NewHub(logger, m)
	go hub.Run(ctx)
	logger.Info("WebSocket hub started")

	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)

	teamService := services.NewTeamService(teamRepo, uploader, hub, services.TeamServiceConfig{
		Rules: scoring.Rules{
			KillPointMultiplier:   cfg.KillPointMultiplier,
			StrictRoundSequencing: cfg.StrictRoundSequencing,
		},
		BatchConcurrency: cfg.BatchConcurrency,
	}, logger, m)
	notificationService := services.NewNotificationService(notificationRepo, teamRepo, hub, logger, m)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Team:         handlers.NewTeamHandler(teamService),
		Round:        handlers.NewRoundHandler(teamService),
		Notification: handlers.NewNotificationHandler(notificationService),
		WebSocket:    handlers.NewWebSocketHandler(hub, teamService, notificationService, cfg.CORSOrigins, logger),
	}, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
		Metrics:     m,
		Hub:         hub,
		Gatherer:    registry,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

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
