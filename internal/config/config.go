package config

import (
	"os"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	FrontendURL string
	TablePrefix string

	// Token signing. The secret is loaded once here and handed to the token
	// service and scope codec at construction; nothing else reads it.
	JWTSecret string
	TokenTTL  time.Duration // identity token lifetime
	ScopeTTL  time.Duration // resource scope token lifetime

	// Google OAuth hand-off
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleJWKSURL      string

	// Object storage
	S3Bucket string
	S3Region string

	// Debug flags
	Debug bool

	// LogDir, when set, mirrors logs into timestamped files there.
	LogDir string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		TablePrefix: tablePrefix,

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),
		ScopeTTL:  getDuration("SCOPE_TTL", time.Hour),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		GoogleJWKSURL:      getEnv("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs"),

		S3Bucket: getEnv("S3_BUCKET", "studybuddy-files"),
		S3Region: getEnv("S3_REGION", "us-east-1"),

		// Debug defaults to true outside prod
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",

		LogDir: getEnv("LOG_DIR", ""),
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
