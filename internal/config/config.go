package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"orderdesk/internal/schedule"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Discount DiscountConfig
	Redis    RedisConfig
	Health   HealthConfig
	Checkout CheckoutConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	Migrate         bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for discount files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "discounts/")
}

// DiscountConfig lists the discount catalogue files, loaded in order.
type DiscountConfig struct {
	FilePaths []string
}

// RedisConfig holds the Redis connection used for submission locks.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	LockTTL  int // seconds
}

// HealthConfig holds the gRPC health endpoint configuration.
type HealthConfig struct {
	Enabled  bool
	GRPCPort int
}

// CheckoutConfig holds slot generation and payment settings, plus the
// client-side settings used by the checkout command.
type CheckoutConfig struct {
	SlotStepMinutes   int
	MaxSlots          int
	MaxScanSteps      int
	RoundingMinutes   int
	Currency          string
	PaymentTimeout    int    // seconds
	SimulatedPayLimit string // decimal amount, empty disables the limit
	APIURL            string
	PrefillTTLHours   int
}

// Load loads configuration from environment variables. Values in a .env
// file in the working directory fill in variables that are not set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "orderdesk"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			Migrate:         getEnvAsBool("DB_MIGRATE", true),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "eu-central-1"),
			Prefix:  getEnv("S3_PREFIX", "discounts/"),
		},
		Discount: DiscountConfig{
			FilePaths: getEnvAsSlice("DISCOUNT_FILES", []string{"data/discounts/discounts.gz"}),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			LockTTL:  getEnvAsInt("REDIS_LOCK_TTL", 30),
		},
		Health: HealthConfig{
			Enabled:  getEnvAsBool("HEALTH_GRPC_ENABLED", true),
			GRPCPort: getEnvAsInt("HEALTH_GRPC_PORT", 50051),
		},
		Checkout: CheckoutConfig{
			SlotStepMinutes:   getEnvAsInt("SLOT_STEP_MINUTES", 15),
			MaxSlots:          getEnvAsInt("SLOT_MAX_COUNT", 20),
			MaxScanSteps:      getEnvAsInt("SLOT_MAX_SCAN_STEPS", 96),
			RoundingMinutes:   getEnvAsInt("SLOT_ROUNDING_MINUTES", 5),
			Currency:          getEnv("CURRENCY", "EUR"),
			PaymentTimeout:    getEnvAsInt("PAYMENT_TIMEOUT", 5),
			SimulatedPayLimit: getEnv("PAYMENT_SIMULATED_LIMIT", ""),
			APIURL:            getEnv("CHECKOUT_API_URL", "http://localhost:8080"),
			PrefillTTLHours:   getEnvAsInt("CHECKOUT_PREFILL_TTL_HOURS", 90*24),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if c.Redis.LockTTL < 1 {
			return fmt.Errorf("redis lock TTL must be at least 1 second")
		}
	}

	if c.Health.Enabled && (c.Health.GRPCPort < 1 || c.Health.GRPCPort > 65535) {
		return fmt.Errorf("invalid health gRPC port: %d", c.Health.GRPCPort)
	}

	if c.Health.Enabled && c.Health.GRPCPort == c.Server.Port {
		return fmt.Errorf("health gRPC port must differ from server port")
	}

	if c.Checkout.SlotStepMinutes < 1 {
		return fmt.Errorf("slot step must be at least 1 minute")
	}

	if c.Checkout.MaxSlots < 1 {
		return fmt.Errorf("max slots must be at least 1")
	}

	if c.Checkout.MaxScanSteps < c.Checkout.MaxSlots {
		return fmt.Errorf("slot scan steps cannot be fewer than max slots")
	}

	if len(c.Checkout.Currency) != 3 {
		return fmt.Errorf("invalid currency: %q (must be an ISO 4217 code)", c.Checkout.Currency)
	}

	if c.Checkout.PaymentTimeout < 1 {
		return fmt.Errorf("payment timeout must be at least 1 second")
	}

	if c.Checkout.SimulatedPayLimit != "" {
		limit, err := decimal.NewFromString(c.Checkout.SimulatedPayLimit)
		if err != nil || limit.IsNegative() {
			return fmt.Errorf("invalid simulated payment limit: %q", c.Checkout.SimulatedPayLimit)
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the gRPC health listen address.
func (c *HealthConfig) Address() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// SlotConfig converts the checkout settings for the slot generator.
func (c *CheckoutConfig) SlotConfig() schedule.Config {
	return schedule.Config{
		Step:     time.Duration(c.SlotStepMinutes) * time.Minute,
		MaxSlots: c.MaxSlots,
		MaxSteps: c.MaxScanSteps,
		Rounding: time.Duration(c.RoundingMinutes) * time.Minute,
	}
}

// PaymentTimeoutDuration returns the payment confirmation timeout.
func (c *CheckoutConfig) PaymentTimeoutDuration() time.Duration {
	return time.Duration(c.PaymentTimeout) * time.Second
}

// PaymentLimit returns the simulated provider's limit. Zero means no limit.
func (c *CheckoutConfig) PaymentLimit() decimal.Decimal {
	limit, err := decimal.NewFromString(c.SimulatedPayLimit)
	if err != nil {
		return decimal.Zero
	}
	return limit
}

// PrefillTTL returns how long saved customer details are kept.
func (c *CheckoutConfig) PrefillTTL() time.Duration {
	return time.Duration(c.PrefillTTLHours) * time.Hour
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
