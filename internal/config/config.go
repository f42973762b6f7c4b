// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/infrastructure/storage/postgres"
)

// Config holds runtime configuration for the repair desk.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DBMaxConns   int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns   int32  `envconfig:"DB_MIN_CONNS" default:"2"`
	RedisEnabled bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	LockTTL time.Duration `envconfig:"LOCK_TTL" default:"30s"`

	CodeMaxAttempts  int           `envconfig:"CODE_MAX_ATTEMPTS" default:"5"`
	CodeRetryBackoff time.Duration `envconfig:"CODE_RETRY_BACKOFF" default:"50ms"`
	CodeSequencePad  int           `envconfig:"CODE_SEQUENCE_PAD" default:"5"`

	DefaultVATRate    string `envconfig:"DEFAULT_VAT_RATE" default:"22"`
	LedgerCodeRetries int    `envconfig:"LEDGER_CODE_RETRIES" default:"3"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Load produces with an empty environment.
func Default() *Config {
	return &Config{
		AppEnv:            "development",
		LogLevel:          "info",
		DBMaxConns:        25,
		DBMinConns:        2,
		RedisAddr:         "127.0.0.1:6379",
		LockTTL:           30 * time.Second,
		CodeMaxAttempts:   5,
		CodeRetryBackoff:  50 * time.Millisecond,
		CodeSequencePad:   5,
		DefaultVATRate:    "22",
		LedgerCodeRetries: 3,
	}
}

func (c *Config) validate() error {
	if c.CodeMaxAttempts < 1 {
		return errors.New("CODE_MAX_ATTEMPTS must be at least 1")
	}
	if c.CodeSequencePad < 1 {
		return errors.New("CODE_SEQUENCE_PAD must be at least 1")
	}
	if _, err := decimal.NewFromString(c.DefaultVATRate); err != nil {
		return errors.New("DEFAULT_VAT_RATE must be a decimal number")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// VATRate returns the default VAT percentage.
func (c *Config) VATRate() decimal.Decimal {
	return decimal.RequireFromString(c.DefaultVATRate)
}

// NumeratorOptions converts the code settings for the generator.
func (c *Config) NumeratorOptions() corenumerator.Options {
	return corenumerator.Options{
		MaxAttempts:  c.CodeMaxAttempts,
		RetryBackoff: c.CodeRetryBackoff,
		PadWidth:     c.CodeSequencePad,
	}
}

// PoolConfig converts the database settings for the connection pool.
func (c *Config) PoolConfig() postgres.PoolConfig {
	pc := postgres.DefaultPoolConfig(c.DatabaseURL)
	pc.MaxConns = c.DBMaxConns
	pc.MinConns = c.DBMinConns
	return pc
}
