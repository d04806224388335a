package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Text generation (Gemini)
	GeminiAPIKey string
	GeminiModel  string
	GeminiTier   string

	// Image generation (OpenAI Images)
	OpenAIAPIKey    string
	OpenAIImageURL  string
	OpenAIImageSize string

	// Instagram Graph API
	InstagramAPIBase     string
	InstagramAccountID   string
	InstagramAccessToken string

	// Scheduling
	AgentTimezone string
	CronSecret    string

	// Per external call timeout in seconds (text, image, publish)
	ExternalCallTimeout int

	// Redis Configuration (asynq broker + health checks)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// SMTP alerting
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	AdminEmails []string

	// Tracing
	OTLPEndpoint   string
	TracingEnabled bool

	// Rate Limiting
	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/insta_agent"),
		DBName:      getEnv("DB_NAME", "insta_agent"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:   getEnv("GEMINI_TIER", "free"),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIImageURL:  getEnv("OPENAI_IMAGE_URL", "https://api.openai.com/v1/images/generations"),
		OpenAIImageSize: getEnv("OPENAI_IMAGE_SIZE", "1024x1024"),

		InstagramAPIBase:     getEnv("INSTAGRAM_API_BASE", "https://graph.facebook.com/v21.0"),
		InstagramAccountID:   getEnv("INSTAGRAM_ACCOUNT_ID", ""),
		InstagramAccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),

		AgentTimezone: getEnv("AGENT_TIMEZONE", "UTC"),
		CronSecret:    getEnv("CRON_SECRET", ""),

		ExternalCallTimeout: getEnvInt("EXTERNAL_CALL_TIMEOUT", 60),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		SMTPFrom:    getEnv("SMTP_FROM", ""),
		AdminEmails: strings.Split(getEnv("ADMIN_EMAILS", ""), ","),

		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TracingEnabled: getEnvBool("TRACING_ENABLED", false),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if _, err := time.LoadLocation(cfg.AgentTimezone); err != nil {
		return nil, fmt.Errorf("AGENT_TIMEZONE %q is not a valid IANA timezone: %v", cfg.AgentTimezone, err)
	}

	return cfg, nil
}

// Location resolves the reference timezone against which dailyTime and
// day boundaries are evaluated. LoadConfig already validated the name,
// so the UTC fallback only covers hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AgentTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
