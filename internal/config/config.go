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
	Development bool
	// API configuration
	APIPort        int
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Claim configuration
	CooldownDurationMs int64
	MinimumCoupons     int
	ReplenishCount     int
	InitialSeedCount   int

	// Alerting configuration
	TelegramBotToken string
	TelegramChatID   string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPSender       string
	AlertRecipient   string
}

// CooldownDuration returns the configured cooldown as a time.Duration.
func (c *Config) CooldownDuration() time.Duration {
	return time.Duration(c.CooldownDurationMs) * time.Millisecond
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "dispensa"),

		CooldownDurationMs: getEnvAsInt64("COOLDOWN_DURATION_MS", 30000),
		MinimumCoupons:     getEnvAsInt("MINIMUM_COUPONS", 20),
		ReplenishCount:     getEnvAsInt("REPLENISH_COUNT", 50),
		InitialSeedCount:   getEnvAsInt("INITIAL_SEED_COUNT", 100),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPSender:       getEnv("SMTP_SENDER", ""),
		AlertRecipient:   getEnv("ALERT_RECIPIENT", ""),

		APIPort:        getEnvAsInt("API_PORT", 8080),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", "*"),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	if c.CooldownDurationMs <= 0 {
		return fmt.Errorf("COOLDOWN_DURATION_MS must be positive")
	}

	if c.MinimumCoupons < 0 {
		return fmt.Errorf("MINIMUM_COUPONS must not be negative")
	}

	if c.ReplenishCount <= 0 {
		return fmt.Errorf("REPLENISH_COUNT must be positive")
	}

	if c.InitialSeedCount < 0 {
		return fmt.Errorf("INITIAL_SEED_COUNT must not be negative")
	}

	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}

	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsInt64(name string, defaultValue int64) int64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable into a slice,
// trimming whitespace around each entry.
func getEnvAsList(name string, defaultValue string) []string {
	valueStr := getEnv(name, defaultValue)
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
