package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	BackupPath     string // Directory holding backup archives
	UploadPath     string // Base path for uploaded media (cigar photos)
	BackupSchedule string // Cron expression for automatic backups; empty disables them
	MaxUploadBytes int64  // Size cap for uploaded backup archives
	AllowedOrigins []string
	AppEnv         string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	maxUploadStr := getEnv("MAX_BACKUP_UPLOAD_BYTES", "104857600") // 100MB
	maxUpload, err := strconv.ParseInt(maxUploadStr, 10, 64)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./humidor.db"),
		BackupPath:     getEnv("BACKUP_PATH", "./backups"),
		UploadPath:     getEnv("UPLOAD_PATH", "./uploads"),
		BackupSchedule: getEnv("BACKUP_SCHEDULE", ""),
		MaxUploadBytes: maxUpload,
		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
		AppEnv:         getEnv("APP_ENV", "development"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
