package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort  string
	DatabaseURL string

	JWTSecret     string
	JWTTTLMinutes string

	ExaAPIKey       string
	GeminiAPIKey    string
	GeminiChatModel string
	LLMTimeoutSecs  string

	WhatsAppToken         string
	WhatsAppPhoneNumberID string

	CacheTTLMinutes        string
	IngestionIntervalHours string
	ScraperRenderJS        string

	LogLevel  string
	LogFormat string
}

// SimplifiedRateLimitConfig holds politeness settings for page backfill
type SimplifiedRateLimitConfig struct {
	RequestsPerSecond float64       `json:"requests_per_second"`
	PolitenessDelay   time.Duration `json:"politeness_delay"`
}

// DefaultRateLimitConfig returns default rate limiting configuration for politeness
func DefaultRateLimitConfig() *SimplifiedRateLimitConfig {
	return &SimplifiedRateLimitConfig{
		RequestsPerSecond: 2.0,
		PolitenessDelay:   500 * time.Millisecond,
	}
}

// GetCacheTTL returns the scheme cache TTL, 30 minutes unless overridden
func (c *Config) GetCacheTTL() time.Duration {
	return parseDuration("CACHE_TTL_MINUTES", c.CacheTTLMinutes, time.Minute, 30*time.Minute)
}

// GetIngestionInterval returns how often the ingestion job runs
func (c *Config) GetIngestionInterval() time.Duration {
	return parseDuration("INGESTION_INTERVAL_HOURS", c.IngestionIntervalHours, time.Hour, 6*time.Hour)
}

// GetJWTTTL returns the lifetime of issued access tokens
func (c *Config) GetJWTTTL() time.Duration {
	return parseDuration("JWT_TTL_MINUTES", c.JWTTTLMinutes, time.Minute, time.Hour)
}

// GetLLMTimeout bounds a single generative-text call
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration("LLM_TIMEOUT_SECONDS", c.LLMTimeoutSecs, time.Second, 30*time.Second)
}

func (c *Config) RenderJS() bool {
	enabled, err := strconv.ParseBool(c.ScraperRenderJS)
	return err == nil && enabled
}

func parseDuration(key, raw string, unit, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logrus.Warnf("Invalid %s value: %s, using default %s", key, raw, fallback)
		return fallback
	}

	return time.Duration(n) * unit
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTTTLMinutes:          getEnv("JWT_TTL_MINUTES", "60"),
		ExaAPIKey:              getEnv("EXA_API_KEY", ""),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiChatModel:        getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),
		LLMTimeoutSecs:         getEnv("LLM_TIMEOUT_SECONDS", "30"),
		WhatsAppToken:          getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID:  getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		CacheTTLMinutes:        getEnv("CACHE_TTL_MINUTES", "30"),
		IngestionIntervalHours: getEnv("INGESTION_INTERVAL_HOURS", "6"),
		ScraperRenderJS:        getEnv("SCRAPER_RENDER_JS", "false"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
