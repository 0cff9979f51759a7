package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the portal configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Workflow  WorkflowConfig  `yaml:"workflow"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	PortalURL      string `yaml:"portal_url"`
}

// JWTConfig contains access token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// WorkflowConfig contains the lifecycle knobs
type WorkflowConfig struct {
	AcceptanceWindowDays      int `yaml:"acceptance_window_days"`
	AcceptanceReminderDays    int `yaml:"acceptance_reminder_days"`
	EvaluatorsPerApplication  int `yaml:"evaluators_per_application"`
	FeasibilityReminderDays   int `yaml:"feasibility_reminder_days"`
	PublicationFollowupMonths int `yaml:"publication_followup_months"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireAcceptances        string `yaml:"expire_acceptances"`
	SendAcceptanceReminders  string `yaml:"send_acceptance_reminders"`
	SendFeasibilityReminders string `yaml:"send_feasibility_reminders"`
	SendPublicationFollowups string `yaml:"send_publication_followups"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.FromEmail = val
	}
	if val := os.Getenv("PORTAL_URL"); val != "" {
		c.Email.PortalURL = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Email.FromEmail == "" {
		return fmt.Errorf("email from address is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Workflow defaults
	if c.Workflow.AcceptanceWindowDays == 0 {
		c.Workflow.AcceptanceWindowDays = 10
	}
	if c.Workflow.AcceptanceReminderDays == 0 {
		c.Workflow.AcceptanceReminderDays = 7
	}
	if c.Workflow.EvaluatorsPerApplication == 0 {
		c.Workflow.EvaluatorsPerApplication = 2
	}
	if c.Workflow.FeasibilityReminderDays == 0 {
		c.Workflow.FeasibilityReminderDays = 5
	}
	if c.Workflow.PublicationFollowupMonths == 0 {
		c.Workflow.PublicationFollowupMonths = 6
	}

	// Scheduler defaults
	if c.Scheduler.ExpireAcceptances == "" {
		c.Scheduler.ExpireAcceptances = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.SendAcceptanceReminders == "" {
		c.Scheduler.SendAcceptanceReminders = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.SendFeasibilityReminders == "" {
		c.Scheduler.SendFeasibilityReminders = "0 30 8 * * *" // 8:30 AM UTC
	}
	if c.Scheduler.SendPublicationFollowups == "" {
		c.Scheduler.SendPublicationFollowups = "0 0 9 1 * *" // 1st of month at 9 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
