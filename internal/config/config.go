package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL       string
	DBMaxConns        int
	DBMinConns        int
	DBMaxConnLifetime time.Duration
	DBMaxConnIdleTime time.Duration

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Storage for uploaded vocabulary spreadsheets
	StoragePath string

	// Frontend
	FrontendURL string

	// Training
	TrainingSessionTTL time.Duration
	RandomSeed         int64

	// Limits and workers
	AuthRateLimitPerMinute int
	WorkerCount            int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "8080"),
		Env:                    getEnvOrDefault("ENV", "development"),
		DatabaseURL:            mustGetEnv("DATABASE_URL"),
		DBMaxConns:             getEnvAsIntOrDefault("DB_MAX_CONNS", 10),
		DBMinConns:             getEnvAsIntOrDefault("DB_MIN_CONNS", 1),
		DBMaxConnLifetime:      getEnvAsDurationOrDefault("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		DBMaxConnIdleTime:      getEnvAsDurationOrDefault("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		RedisURL:               mustGetEnv("REDIS_URL"),
		JWTSecret:              mustGetEnv("JWT_SECRET"),
		StoragePath:            getEnvOrDefault("STORAGE_PATH", "./uploads"),
		FrontendURL:            getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		TrainingSessionTTL:     getEnvAsDurationOrDefault("TRAINING_SESSION_TTL", 12*time.Hour),
		RandomSeed:             int64(getEnvAsIntOrDefault("RANDOM_SEED", 0)),
		AuthRateLimitPerMinute: getEnvAsIntOrDefault("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		WorkerCount:            getEnvAsIntOrDefault("WORKER_COUNT", 2),
	}

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go durations ("90m") or plain seconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}
