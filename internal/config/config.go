package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	DBURL             string
	JWTSecret         string
	TokenTTLMins      int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	RedisURL      string
	RedisPassword string
	CacheTTLSecs  int

	RecommendationDefaultLimit int
	RecommendationMaxLimit     int

	RateLimitRequests   int
	RateLimitWindowSecs int

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file, then configuration from environment
// variables, applying defaults and validation. Variables already set in the
// environment win over the file.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:                       getEnv("PORT", "8080"),
		DBURL:                      os.Getenv("DB_URL"),
		JWTSecret:                  os.Getenv("JWT_SECRET"),
		TokenTTLMins:               getEnvInt("TOKEN_TTL_MINS", 1440),
		ReadTimeoutSecs:            getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:           getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:            getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:                 getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:                 getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:              getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:              getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:          getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:           getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		RedisURL:                   os.Getenv("REDIS_URL"),
		RedisPassword:              os.Getenv("REDIS_PASSWORD"),
		CacheTTLSecs:               getEnvInt("CACHE_TTL_SECS", 300),
		RecommendationDefaultLimit: getEnvInt("RECOMMENDATION_DEFAULT_LIMIT", 20),
		RecommendationMaxLimit:     getEnvInt("RECOMMENDATION_MAX_LIMIT", 100),
		RateLimitRequests:          getEnvInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindowSecs:        getEnvInt("RATE_LIMIT_WINDOW_SECS", 60),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "json"),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTLMins <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL_MINS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.CacheTTLSecs <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL_SECS must be positive")
	}
	if cfg.RecommendationMaxLimit <= 0 {
		return Config{}, fmt.Errorf("RECOMMENDATION_MAX_LIMIT must be positive")
	}
	if cfg.RecommendationDefaultLimit <= 0 || cfg.RecommendationDefaultLimit > cfg.RecommendationMaxLimit {
		return Config{}, fmt.Errorf("RECOMMENDATION_DEFAULT_LIMIT must be between 1 and RECOMMENDATION_MAX_LIMIT")
	}
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindowSecs <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW_SECS must be positive")
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
