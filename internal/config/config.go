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
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	OTP        OTPConfig
	Email      EmailConfig
	Moderation ModerationConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type OTPConfig struct {
	// FingerprintKey keys the one-way email/code fingerprints.
	// Raw emails and codes are never persisted or logged.
	FingerprintKey []byte
	// TicketKey is the PASETO symmetric key for verification tickets
	// (must be 32 bytes for v4.local).
	TicketKey       []byte
	TicketDuration  time.Duration
	Expiry          time.Duration
	RateLimitWindow time.Duration
	MaxAttempts     int
	CleanupInterval time.Duration
}

type EmailConfig struct {
	SendGridAPIKey string
	FromName       string
	FromAddress    string
}

type ModerationConfig struct {
	OpenAIAPIKey string // empty disables the AI stage
	Timeout      time.Duration
	CacheTTL     time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables
// Call godotenv.Load() before this if using .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "campuscompass"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		OTP: OTPConfig{
			FingerprintKey:  []byte(getEnv("OTP_FINGERPRINT_KEY", "")),
			TicketKey:       []byte(getEnv("OTP_TICKET_KEY", "")),
			TicketDuration:  getDurationEnv("OTP_TICKET_DURATION", 15*time.Minute),
			Expiry:          getDurationEnv("OTP_EXPIRY", 10*time.Minute),
			RateLimitWindow: getDurationEnv("OTP_RATE_LIMIT_WINDOW", 1*time.Minute),
			MaxAttempts:     getIntEnv("OTP_MAX_ATTEMPTS", 5),
			CleanupInterval: getDurationEnv("OTP_CLEANUP_INTERVAL", 1*time.Hour),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromName:       getEnv("EMAIL_FROM_NAME", "Campus Compass"),
			FromAddress:    getEnv("EMAIL_FROM_ADDRESS", "no-reply@campuscompass.app"),
		},
		Moderation: ModerationConfig{
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			Timeout:      getDurationEnv("MODERATION_AI_TIMEOUT", 8*time.Second),
			CacheTTL:     getDurationEnv("MODERATION_CACHE_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 20),
			Window:   getDurationEnv("RATE_LIMIT_WINDOW", 60*time.Second),
		},
	}

	// An unkeyed digest would let anyone with a table dump brute-force
	// 6-digit codes offline, so the fingerprint key is not optional.
	if len(cfg.OTP.FingerprintKey) < 32 {
		return nil, fmt.Errorf("OTP_FINGERPRINT_KEY must be at least 32 bytes, got %d", len(cfg.OTP.FingerprintKey))
	}

	// Validate PASETO key length (must be 32 bytes for v4.local)
	if len(cfg.OTP.TicketKey) != 32 {
		return nil, fmt.Errorf("OTP_TICKET_KEY must be exactly 32 bytes, got %d", len(cfg.OTP.TicketKey))
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
