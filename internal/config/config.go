package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                   string
	DBUrl                  string
	JWTSecret              string
	TokenTTL               time.Duration
	StorageURL             string
	StorageBucket          string
	StorageServiceKey      string
	AppEnv                 string
	EnableDocs             bool
	DefaultClientUsername  string
	DefaultClientPassword  string
	DefaultTrainerUsername string
	DefaultTrainerPassword string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	return &Config{
		Port:                   getEnv("PORT", "5001"),
		DBUrl:                  getEnv("DB_URL", ""),
		JWTSecret:              jwtSecret,
		TokenTTL:               tokenTTL,
		StorageURL:             getEnv("STORAGE_URL", ""),
		StorageBucket:          getEnv("STORAGE_BUCKET", ""),
		StorageServiceKey:      getEnv("STORAGE_SERVICE_KEY", ""),
		AppEnv:                 normalizeEnv(getEnv("APP_ENV", "production")),
		EnableDocs:             getEnvBool("ENABLE_API_DOCS", false),
		DefaultClientUsername:  getEnv("DEFAULT_CLIENT_USERNAME", ""),
		DefaultClientPassword:  getEnv("DEFAULT_CLIENT_PASSWORD", ""),
		DefaultTrainerUsername: getEnv("DEFAULT_TRAINER_USERNAME", ""),
		DefaultTrainerPassword: getEnv("DEFAULT_TRAINER_PASSWORD", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}
