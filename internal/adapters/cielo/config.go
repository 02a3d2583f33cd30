package cielo

import (
	"fmt"
	"time"
)

// Environment selects the provider endpoints.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment parses an environment name, defaulting to sandbox for the
// empty string.
func ParseEnvironment(s string) (Environment, error) {
	switch s {
	case "", "sandbox":
		return EnvironmentSandbox, nil
	case "production":
		return EnvironmentProduction, nil
	}
	return "", fmt.Errorf("unknown environment %q", s)
}

// Config holds provider credentials and transport settings.
type Config struct {
	Environment Environment
	MerchantID  string
	MerchantKey string

	// ConnectTimeout bounds TCP connection establishment; SocketTimeout
	// bounds the whole request including reading the response.
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration

	// MaxConnections sizes the pooled transport to the provider host.
	MaxConnections int
}

// DefaultConfig returns sandbox defaults matching the provider's documented
// operational limits.
func DefaultConfig() *Config {
	return &Config{
		Environment:    EnvironmentSandbox,
		ConnectTimeout: 30 * time.Second,
		SocketTimeout:  60 * time.Second,
		MaxConnections: 10,
	}
}

// Validate checks that required credentials are present.
func (c *Config) Validate() error {
	if c.MerchantID == "" {
		return fmt.Errorf("merchant id is required")
	}
	if c.MerchantKey == "" {
		return fmt.Errorf("merchant key is required")
	}
	return nil
}

// RequestBaseURL is the endpoint for sale creation and modification calls.
func (c *Config) RequestBaseURL() string {
	if c.Environment == EnvironmentProduction {
		return "https://api.cieloecommerce.cielo.com.br"
	}
	return "https://apisandbox.cieloecommerce.cielo.com.br"
}

// QueryBaseURL is the endpoint for sale lookups.
func (c *Config) QueryBaseURL() string {
	if c.Environment == EnvironmentProduction {
		return "https://apiquery.cieloecommerce.cielo.com.br"
	}
	return "https://apiquerysandbox.cieloecommerce.cielo.com.br"
}
