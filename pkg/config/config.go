package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	LogLevel   string

	// Record store (LivingApps-style REST API).
	StoreBaseURL      string
	StoreAppID        string
	StoreSessionToken string

	// Extraction backend: "llm" or "browser".
	ExtractorMode string

	AnthropicAPIKey string
	LLMModel        string
	LLMTimeout      time.Duration

	PageLoadTimeout time.Duration

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StoreBaseURL:      getEnv("LIVINGAPPS_BASE_URL", "https://my.living-apps.de/rest"),
		StoreAppID:        getEnv("LIVINGAPPS_APP_ID", ""),
		StoreSessionToken: getEnv("LIVINGAPPS_SESSION_TOKEN", ""),
		ExtractorMode:     getEnv("EXTRACTOR_MODE", "llm"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", ""),
		LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT_SECONDS", 60) * time.Second,
		PageLoadTimeout:   getEnvAsDuration("PAGE_LOAD_TIMEOUT_SECONDS", 60) * time.Second,
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:      getEnv("POSTGRES_USER", "user"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:        getEnv("POSTGRES_DB", "linkcleaner"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback))
}
