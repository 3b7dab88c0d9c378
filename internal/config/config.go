package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Port      string
	DBPath    string
	JobDir    string
	ExportDir string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads configuration from the environment, with .env as a
// fallback source for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      envOr("PORT", ":8080"),
		DBPath:    envOr("DB_PATH", "./data/fleet.db"),
		JobDir:    envOr("JOB_DIR", "./data/jobs"),
		ExportDir: envOr("EXPORT_DIR", "./data/exports"),

		SMTPHost:     envOr("SMTP_HOST", ""),
		SMTPPort:     envIntOr("SMTP_PORT", 587),
		SMTPUser:     envOr("SMTP_USER", ""),
		SMTPPassword: envOr("SMTP_PASSWORD", ""),
		SMTPFrom:     envOr("SMTP_FROM", "reports@localhost"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
