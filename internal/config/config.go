package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Booking  BookingConfig
	Ops      OpsConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// RedisConfig holds redis configuration for hold locks and the sweep lock
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds the lifecycle event stream configuration
type KafkaConfig struct {
	Brokers      []string
	EventsTopic  string
	WriteTimeout time.Duration
}

// BookingConfig holds every booking lifecycle policy knob. The grace period
// is the single system-wide value applied to holds without an explicit
// expiry; no per-endpoint overrides exist.
type BookingConfig struct {
	HoldTTL               time.Duration // default expiry for a new hold
	PaymentDeadlineOffset time.Duration // payment deadline = hold_until - offset
	MaxHoldTTL            time.Duration // cap on client-requested hold durations
	GracePeriod           time.Duration // stale cutoff for holds without expires_at
	SweepInterval         time.Duration // scheduled sweep cadence
	SweepTimeout          time.Duration // overall budget for one sweep run
	AuditRetentionDays    int
}

// OpsConfig guards operator-only endpoints. TokenHash is a bcrypt hash of the
// operations token; the plaintext never lives in config.
type OpsConfig struct {
	TokenHash string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads the full server configuration from environment variables
func Load() (*Config, error) {
	config := fromEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadMaintenance loads configuration for the one-shot maintenance commands.
// Only the database and booking sections are validated; the auth and ops
// secrets the server needs are not required.
func LoadMaintenance() (*Config, error) {
	config := fromEnv()
	if err := config.validateCore(); err != nil {
		return nil, err
	}
	return config, nil
}

func fromEnv() *Config {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			EventsTopic:  getEnv("KAFKA_EVENTS_TOPIC", "booking-events"),
			WriteTimeout: time.Duration(getEnvAsInt("KAFKA_WRITE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Booking: BookingConfig{
			HoldTTL:               time.Duration(getEnvAsInt("HOLD_TTL_HOURS", 24)) * time.Hour,
			PaymentDeadlineOffset: time.Duration(getEnvAsInt("PAYMENT_DEADLINE_OFFSET_MINUTES", 60)) * time.Minute,
			MaxHoldTTL:            time.Duration(getEnvAsInt("MAX_HOLD_TTL_HOURS", 72)) * time.Hour,
			GracePeriod:           time.Duration(getEnvAsInt("GRACE_PERIOD_MINUTES", 8)) * time.Minute,
			SweepInterval:         time.Duration(getEnvAsInt("SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
			SweepTimeout:          time.Duration(getEnvAsInt("SWEEP_TIMEOUT_SECONDS", 120)) * time.Second,
			AuditRetentionDays:    getEnvAsInt("AUDIT_RETENTION_DAYS", 90),
		},
		Ops: OpsConfig{
			TokenHash: getEnv("OPS_TOKEN_HASH", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Ops-Token"}),
		},
	}
}

// Validate validates the full server configuration
func (c *Config) Validate() error {
	if err := c.validateCore(); err != nil {
		return err
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Server.Environment == "production" && c.Ops.TokenHash == "" {
		return fmt.Errorf("OPS_TOKEN_HASH is required in production")
	}

	return nil
}

// validateCore checks the sections every command needs.
func (c *Config) validateCore() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Booking.HoldTTL <= 0 {
		return fmt.Errorf("HOLD_TTL_HOURS must be positive")
	}

	if c.Booking.GracePeriod <= 0 {
		return fmt.Errorf("GRACE_PERIOD_MINUTES must be positive")
	}

	if c.Booking.PaymentDeadlineOffset >= c.Booking.HoldTTL {
		return fmt.Errorf("PAYMENT_DEADLINE_OFFSET_MINUTES must be shorter than the hold TTL")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
