package config

import (
	"fmt"
	"time"

	"github.com/praxisgrid/veritas/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// Redis
	RedisHost     string
	RedisPassword string

	// Gemini Judge
	GeminiBaseURL     string
	GeminiAPIKey      string
	GeminiModel       string
	JudgeTimeout      time.Duration
	JudgeCacheTTL     time.Duration
	AIDetectorEnabled bool

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Concurrency
	MaxConcurrentCompare int
	BatchWorkers         int

	// Comparison
	CompareTimeout time.Duration
	BatchTimeout   time.Duration
	MaxSourceBytes int

	// Similarity Thresholds
	SuspiciousThreshold float64
	HighThreshold       float64

	// Logging
	LogLevel string

	// Server
	ServerPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")

	// Gemini Judge
	cfg.GeminiBaseURL = env.GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	cfg.GeminiAPIKey = env.GetEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = env.GetEnv("GEMINI_MODEL", "gemini-2.5-flash-lite")
	judgeTimeoutSeconds := env.GetEnvInt("JUDGE_TIMEOUT_SECONDS", 20)
	cfg.JudgeTimeout = time.Duration(judgeTimeoutSeconds) * time.Second
	cacheTTLHours := env.GetEnvInt("JUDGE_CACHE_TTL_HOURS", 24)
	cfg.JudgeCacheTTL = time.Duration(cacheTTLHours) * time.Hour
	cfg.AIDetectorEnabled = env.GetEnvBool("AI_DETECTOR_ENABLED", true)

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "veritas")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)
	cfg.RateLimitBurst = env.GetEnvInt("RATE_LIMIT_BURST", 20)

	// Concurrency
	cfg.MaxConcurrentCompare = env.GetEnvInt("MAX_CONCURRENT_COMPARISONS", 8)
	cfg.BatchWorkers = env.GetEnvInt("BATCH_WORKERS", 0)

	// Comparison
	compareTimeoutSeconds := env.GetEnvInt("COMPARE_TIMEOUT_SECONDS", 30)
	cfg.CompareTimeout = time.Duration(compareTimeoutSeconds) * time.Second
	batchTimeoutSeconds := env.GetEnvInt("BATCH_TIMEOUT_SECONDS", 300)
	cfg.BatchTimeout = time.Duration(batchTimeoutSeconds) * time.Second
	cfg.MaxSourceBytes = env.GetEnvInt("MAX_SOURCE_BYTES", 500*1024)

	// Similarity Thresholds
	cfg.SuspiciousThreshold = env.GetEnvFloat("SUSPICIOUS_THRESHOLD", 0.30)
	cfg.HighThreshold = env.GetEnvFloat("HIGH_THRESHOLD", 0.60)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentCompare <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPARISONS must be greater than 0")
	}
	if c.CompareTimeout <= 0 {
		return fmt.Errorf("COMPARE_TIMEOUT_SECONDS must be greater than 0")
	}
	if c.BatchTimeout <= 0 {
		return fmt.Errorf("BATCH_TIMEOUT_SECONDS must be greater than 0")
	}
	if c.MaxSourceBytes <= 0 {
		return fmt.Errorf("MAX_SOURCE_BYTES must be greater than 0")
	}
	if c.SuspiciousThreshold <= 0 || c.SuspiciousThreshold >= c.HighThreshold {
		return fmt.Errorf("SUSPICIOUS_THRESHOLD must be positive and below HIGH_THRESHOLD")
	}
	if c.HighThreshold > 1.0 {
		return fmt.Errorf("HIGH_THRESHOLD must not exceed 1.0")
	}
	return nil
}
