package jobs

import (
	"database/sql"

	"redib-coa-backend/internal/config"
	"redib-coa-backend/internal/logger"
	"redib-coa-backend/internal/repository"
	"redib-coa-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	repos    *repository.Repos
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email      service.EmailService
	Acceptance service.AcceptanceService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, repos *repository.Repos, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		repos:    repos,
		services: services,
		config:   cfg,
	}
}

// Config exposes the configuration for the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.ExpireAcceptances()
	jr.SendAcceptanceReminders()
	jr.SendFeasibilityReminders()
}

// RunAllMonthlyJobs runs all monthly jobs (for manual execution)
func (jr *JobRunner) RunAllMonthlyJobs() {
	jr.SendPublicationFollowups()
}
