package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"redib-coa-backend/internal/config"
	"redib-coa-backend/internal/jobs"
	"redib-coa-backend/internal/logger"
	"redib-coa-backend/internal/repository/postgres"
	"redib-coa-backend/internal/scheduler"
	"redib-coa-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-acceptances', 'all-daily', 'all-monthly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ReDIB COA cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Services
	emailService := service.NewSendGridEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.Email.PortalURL,
	)
	authz := service.NewAuthorizer(store.UserRepository)
	acceptanceService := service.NewAcceptanceService(repos, store, authz, emailService, cfg.Workflow.AcceptanceReminderDays)

	jobServices := &jobs.Services{
		Email:      emailService,
		Acceptance: acceptanceService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, repos, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "expire-acceptances":
		jobRunner.ExpireAcceptances()
	case "send-acceptance-reminders":
		jobRunner.SendAcceptanceReminders()
	case "send-feasibility-reminders":
		jobRunner.SendFeasibilityReminders()
	case "send-publication-followups":
		jobRunner.SendPublicationFollowups()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	case "all-monthly":
		jobRunner.RunAllMonthlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expire-acceptances\n")
		fmt.Printf("  - send-acceptance-reminders\n")
		fmt.Printf("  - send-feasibility-reminders\n")
		fmt.Printf("  - send-publication-followups\n")
		fmt.Printf("  - all-daily\n")
		fmt.Printf("  - all-monthly\n")
	}
}
