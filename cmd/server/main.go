package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "redib-coa-backend/internal/api/http"
	"redib-coa-backend/internal/config"
	"redib-coa-backend/internal/logger"
	"redib-coa-backend/internal/repository/postgres"
	"redib-coa-backend/internal/security"
	"redib-coa-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ReDIB COA Portal backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	repos := store.Repos()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Services
	emailSvc := service.NewSendGridEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.Email.PortalURL,
	)
	authz := service.NewAuthorizer(store.UserRepository)

	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	userSvc := service.NewUserService(store.UserRepository)
	appSvc := service.NewApplicationService(repos, store, emailSvc)
	feasibilitySvc := service.NewFeasibilityService(repos, store, authz, emailSvc)
	evaluationSvc := service.NewEvaluationService(repos, store, authz, emailSvc, cfg.Workflow.EvaluatorsPerApplication)
	resolutionSvc := service.NewResolutionService(repos, store, authz, emailSvc, cfg.Workflow.AcceptanceWindowDays)
	acceptanceSvc := service.NewAcceptanceService(repos, store, authz, emailSvc, cfg.Workflow.AcceptanceReminderDays)
	callSvc := service.NewCallService(store.CallRepository, authz)
	publicationSvc := service.NewPublicationService(repos, authz)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	handler := &httpapi.Handler{
		Auth:         authSvc,
		Users:        userSvc,
		Applications: appSvc,
		Feasibility:  feasibilitySvc,
		Evaluations:  evaluationSvc,
		Resolutions:  resolutionSvc,
		Acceptance:   acceptanceSvc,
		Calls:        callSvc,
		Publications: publicationSvc,
		Notes:        noteSvc,
	}

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      httpapi.NewRouter(handler, tokenManager),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down...", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
