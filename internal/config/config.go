package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                         string
	Origin                       string
	Environment                  string
	JWTSecret                    string
	Database                     DatabaseConfig
	Mailer                       MailerConfig
	Meeting                      MeetingConfig
	SessionExpirationDays        int
	SweepIntervalMinutes         int
	PendingPaymentTimeoutMinutes int
	AppURL                       string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	Transport   string
	DefaultFrom string
}

// MeetingConfig holds video-meeting provider configuration
type MeetingConfig struct {
	Provider string
	APIURL   string
	APIKey   string
	BaseURL  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "telehealth"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	// Load mailer configuration
	mailerConfig := MailerConfig{
		Transport:   getEnv("MAILER_TRANSPORT", ""),
		DefaultFrom: getEnv("MAILER_DEFAULT_FROM", "no-reply@telehealth.local"),
	}

	// Load video-meeting provider configuration
	meetingConfig := MeetingConfig{
		Provider: getEnv("MEETING_PROVIDER", "zoom"),
		APIURL:   getEnv("MEETING_API_URL", ""),
		APIKey:   getEnv("MEETING_API_KEY", ""),
		BaseURL:  getEnv("MEETING_BASE_URL", "https://meet.telehealth.local"),
	}

	sessionExpDays, err := strconv.Atoi(getEnv("SESSION_EXPIRATION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_EXPIRATION_DAYS: %w", err)
	}

	sweepInterval, err := strconv.Atoi(getEnv("SWEEP_INTERVAL_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_MINUTES: %w", err)
	}

	paymentTimeout, err := strconv.Atoi(getEnv("PENDING_PAYMENT_TIMEOUT_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid PENDING_PAYMENT_TIMEOUT_MINUTES: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:                         getEnv("PORT", "3001"),
		Origin:                       getEnv("ORIGIN", "http://localhost:4200"),
		Environment:                  getEnv("APP_ENV", "development"),
		JWTSecret:                    getEnv("JWT_SECRET", "default_jwt_secret"),
		Database:                     dbConfig,
		Mailer:                       mailerConfig,
		Meeting:                      meetingConfig,
		SessionExpirationDays:        sessionExpDays,
		SweepIntervalMinutes:         sweepInterval,
		PendingPaymentTimeoutMinutes: paymentTimeout,
		AppURL:                       getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
