package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Database                  DatabaseConfig
	Scheduling                SchedulingConfig
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

// SchedulingConfig holds the clinic's scheduling policy knobs.
type SchedulingConfig struct {
	// Timezone the clinic operates in. Timestamps arriving without a UTC
	// offset are interpreted in this location.
	Timezone *time.Location

	// Minimum notice windows before an appointment's start.
	RescheduleNotice time.Duration
	CancelNotice     time.Duration

	// Fallbacks when a doctor profile or booking request omits them.
	DefaultSlotMinutes        int
	DefaultAppointmentMinutes int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "clinic"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	schedCfg, err := loadSchedulingConfig()
	if err != nil {
		return nil, err
	}

	// Return complete configuration
	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("APP_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Database:                  dbConfig,
		Scheduling:                schedCfg,
	}, nil
}

func loadSchedulingConfig() (SchedulingConfig, error) {
	tzName := getEnv("CLINIC_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return SchedulingConfig{}, fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", tzName, err)
	}

	rescheduleHours, err := strconv.Atoi(getEnv("RESCHEDULE_NOTICE_HOURS", "24"))
	if err != nil {
		return SchedulingConfig{}, fmt.Errorf("invalid RESCHEDULE_NOTICE_HOURS: %w", err)
	}

	cancelHours, err := strconv.Atoi(getEnv("CANCEL_NOTICE_HOURS", "4"))
	if err != nil {
		return SchedulingConfig{}, fmt.Errorf("invalid CANCEL_NOTICE_HOURS: %w", err)
	}

	slotMinutes, err := strconv.Atoi(getEnv("DEFAULT_SLOT_MINUTES", "30"))
	if err != nil {
		return SchedulingConfig{}, fmt.Errorf("invalid DEFAULT_SLOT_MINUTES: %w", err)
	}

	apptMinutes, err := strconv.Atoi(getEnv("DEFAULT_APPOINTMENT_MINUTES", "30"))
	if err != nil {
		return SchedulingConfig{}, fmt.Errorf("invalid DEFAULT_APPOINTMENT_MINUTES: %w", err)
	}

	return SchedulingConfig{
		Timezone:                  loc,
		RescheduleNotice:          time.Duration(rescheduleHours) * time.Hour,
		CancelNotice:              time.Duration(cancelHours) * time.Hour,
		DefaultSlotMinutes:        slotMinutes,
		DefaultAppointmentMinutes: apptMinutes,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
