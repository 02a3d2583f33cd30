package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// GatewayConfig holds the card-payment provider configuration.
// MerchantKey may be left empty when a secrets backend is configured; it is
// then resolved from MerchantKeyPath at startup.
type GatewayConfig struct {
	Environment     string // "sandbox" or "production"
	MerchantID      string
	MerchantKey     string
	MerchantKeyPath string // secret path when using a secrets backend
	ConnectTimeout  time.Duration
	SocketTimeout   time.Duration
	MaxConnections  int
}

// SecretsConfig selects the secret backend: "env", "local", "aws" or "vault".
type SecretsConfig struct {
	Backend string

	// Local backend
	LocalPath string

	// AWS backend
	AWSRegion   string
	AWSEndpoint string

	// Vault backend
	VaultAddress string
	VaultToken   string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "cielo_gateway"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Gateway: GatewayConfig{
			Environment:     getEnv("CIELO_ENVIRONMENT", "sandbox"),
			MerchantID:      getEnv("CIELO_MERCHANT_ID", ""),
			MerchantKey:     getEnv("CIELO_MERCHANT_KEY", ""),
			MerchantKeyPath: getEnv("CIELO_MERCHANT_KEY_PATH", ""),
			ConnectTimeout:  getEnvAsDuration("CIELO_CONNECT_TIMEOUT", 30*time.Second),
			SocketTimeout:   getEnvAsDuration("CIELO_SOCKET_TIMEOUT", 60*time.Second),
			MaxConnections:  getEnvAsInt("CIELO_MAX_CONNECTIONS", 10),
		},
		Secrets: SecretsConfig{
			Backend:      getEnv("SECRETS_BACKEND", "env"),
			LocalPath:    getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			AWSRegion:    getEnv("SECRETS_AWS_REGION", "sa-east-1"),
			AWSEndpoint:  getEnv("SECRETS_AWS_ENDPOINT", ""),
			VaultAddress: getEnv("VAULT_ADDR", ""),
			VaultToken:   getEnv("VAULT_TOKEN", ""),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Gateway.MerchantID == "" {
		return nil, fmt.Errorf("CIELO_MERCHANT_ID is required")
	}
	if cfg.Gateway.MerchantKey == "" && cfg.Gateway.MerchantKeyPath == "" {
		return nil, fmt.Errorf("one of CIELO_MERCHANT_KEY or CIELO_MERCHANT_KEY_PATH is required")
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// Accept both Go durations ("30s") and bare milliseconds ("30000")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
