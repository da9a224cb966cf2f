package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"ledger-service/internal/database"
	"ledger-service/internal/logger"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	StoreDriver string
	StorePath   string

	Database database.Config

	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	HTTPAddr  string
	JWTSecret string
	TokenTTL  time.Duration

	StoreName       string
	Currency        string
	VATRate         decimal.Decimal
	InvoiceSequence string

	AdminPassword   string
	SellerPassword  string
	ManagerPassword string

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// LoadEnvFile reads .env into the process environment. A missing file is
// reported to the caller, who usually only warns about it.
func LoadEnvFile(paths ...string) error {
	return godotenv.Load(paths...)
}

func Load() (*Config, error) {
	vat, err := decimal.NewFromString(getEnv("VAT_RATE", "20"))
	if err != nil {
		return nil, fmt.Errorf("VAT_RATE must be a number: %w", err)
	}
	redisTTL, err := getEnvAsDuration("REDIS_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getEnvAsDuration("TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
		StorePath:   getEnv("STORE_PATH", "./data"),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "app_user"),
			Password: getEnv("DB_PASSWORD", "postgres_password"),
			DBName:   getEnv("DB_NAME", "app_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		RedisTTL:        redisTTL,
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        tokenTTL,
		StoreName:       getEnv("STORE_NAME", "Retail Store"),
		Currency:        getEnv("CURRENCY", "EUR"),
		VATRate:         vat,
		InvoiceSequence: strings.ToLower(getEnv("INVOICE_SEQUENCE", "global")),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		SellerPassword:  getEnv("SELLER_PASSWORD", ""),
		ManagerPassword: getEnv("MANAGER_PASSWORD", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:       getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.StoreDriver)
	}
	if c.StoreDriver != DriverMemory && c.StoreDriver != DriverPostgres && c.StorePath == "" {
		return fmt.Errorf("STORE_PATH is required for the %s driver", c.StoreDriver)
	}
	if c.VATRate.IsNegative() {
		return fmt.Errorf("VAT_RATE cannot be negative")
	}
	switch c.InvoiceSequence {
	case "global", "monthly":
	default:
		return fmt.Errorf("INVOICE_SEQUENCE %q is not supported", c.InvoiceSequence)
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
