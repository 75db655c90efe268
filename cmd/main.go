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

	"github.com/courtpulse/badminton-system/config"
	"github.com/courtpulse/badminton-system/db"
	"github.com/courtpulse/badminton-system/handlers"
	"github.com/courtpulse/badminton-system/middleware"
	"github.com/courtpulse/badminton-system/notifications"
	"github.com/courtpulse/badminton-system/repositories"
	api "github.com/courtpulse/badminton-system/routes"
	"github.com/courtpulse/badminton-system/services"
	"github.com/courtpulse/badminton-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// inviteSweepInterval is how often expired circle invites get purged.
const inviteSweepInterval = time.Hour

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := notifications.NewHub(logger)
	go wsHub.Run()
	logger.Info("notification hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	circleRepo := repositories.NewPostgresCircleRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	achievementRepo := repositories.NewPostgresAchievementRepository(dbConn)
	settingsRepo := repositories.NewPostgresSettingsRepository(dbConn)
	logger.Info("repositories initialized")

	notifier := services.NewHubNotifier(wsHub)
	authService := services.NewAuthService(userRepo)
	achievementService := services.NewAchievementService(dbConn, achievementRepo, userRepo, matchRepo, settingsRepo, notifier, logger)
	userService := services.NewUserService(dbConn, userRepo, achievementService, uploader, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, userRepo, achievementService, uploader, notifier, logger)
	statsService := services.NewStatsService(matchRepo)
	circleService := services.NewCircleService(dbConn, circleRepo, membershipRepo, userRepo, notifier, logger)
	inviteService := services.NewInviteService(dbConn, inviteRepo, circleRepo, membershipRepo, logger)
	dashboardService := services.NewDashboardService(userRepo, matchRepo, circleRepo, achievementRepo)
	logger.Info("services initialized")

	go func() {
		ticker := time.NewTicker(inviteSweepInterval)
		defer ticker.Stop()
		logger.Info("invite expiry sweeper started", slog.Duration("interval", inviteSweepInterval))

		for range ticker.C {
			removed, err := inviteService.DeleteExpired(context.Background())
			if err != nil {
				logger.Error("invite sweep failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Info("expired invites removed", slog.Int64("count", removed))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	matchHandler := handlers.NewMatchHandler(matchService)
	statsHandler := handlers.NewStatsHandler(statsService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	circleHandler := handlers.NewCircleHandler(circleService, inviteService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		middleware.NewAuthenticator(cfg.JWTSecretKey),
		authHandler,
		userHandler,
		matchHandler,
		statsHandler,
		achievementHandler,
		circleHandler,
		dashboardHandler,
		webSocketHandler,
	)
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

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
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
