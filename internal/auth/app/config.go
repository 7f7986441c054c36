package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/querydeck/querydeck/pkg/cryptox"
)

type Config struct {
	JWTSecret    string // Required in prod: shared HMAC secret for tokens
	JWTAlgorithm string // Optional: HS256, HS384, HS512 (default: HS256)

	TokenTTL           time.Duration // Token lifetime (default: 24h)
	SessionTTL         time.Duration // Session lifetime (default: 720h)
	PasswordMinLength  int           // Minimum password length (default: 8)
	PasswordIterations int           // PBKDF2 iteration count (default: 100000)

	AdminUsername string // Bootstrap admin username (default: admin)
	AdminPassword string // Bootstrap admin password
	AdminEmail    string // Bootstrap admin email

	DatabaseFile         string        // Path to SQLite database file (default: ./querydeck.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-session sweep interval (default: 1h)
}

// LoadConfig reads configuration from the environment, after loading a .env
// file when one is present. Every knob has a development default.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		JWTSecret:    getEnvOrDefault("AUTH_JWT_SECRET", "dev-secret-change-me"),
		JWTAlgorithm: getEnvOrDefault("AUTH_JWT_ALGORITHM", "HS256"),

		TokenTTL:           getEnvDurationOrDefault("AUTH_TOKEN_TTL", 24*time.Hour),
		SessionTTL:         getEnvDurationOrDefault("AUTH_SESSION_TTL", 30*24*time.Hour),
		PasswordMinLength:  getEnvIntOrDefault("AUTH_PASSWORD_MIN_LENGTH", 8),
		PasswordIterations: getEnvIntOrDefault("AUTH_PASSWORD_ITERATIONS", cryptox.DefaultIterations),

		AdminUsername: getEnvOrDefault("AUTH_ADMIN_USERNAME", "admin"),
		AdminPassword: getEnvOrDefault("AUTH_ADMIN_PASSWORD", "querydeck2024"),
		AdminEmail:    getEnvOrDefault("AUTH_ADMIN_EMAIL", "admin@querydeck.local"),

		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "querydeck.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
