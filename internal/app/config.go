package app

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrEmptyRunAddress      = errors.New("run address is required")
	ErrInvalidFlushInterval = errors.New("stats flush interval must be positive")
)

type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS"`
	DatabaseURI    string        `env:"DATABASE_URI"`
	LogLevel       string        `env:"LOG_LEVEL"`
	JWTSecretKey   string        `env:"JWT_SECRET_KEY"`
	MigrationsPath string        `env:"MIGRATIONS_PATH"`
	FlushInterval  time.Duration `env:"STATS_FLUSH_INTERVAL"`

	// IssueTokenFor prints an operator token for the given subject and exits.
	IssueTokenFor string
}

// NewConfig reads flags from args, then lets .env and the environment
// override them.
func NewConfig(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("paymentref", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "localhost:8080", "Server address (env: RUN_ADDRESS)")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "Database URI, in-memory stats when empty (env: DATABASE_URI)")
	fs.StringVar(&cfg.LogLevel, "l", "info", "Log level (debug|info|warn|error) (env: LOG_LEVEL)")
	fs.StringVar(&cfg.JWTSecretKey, "jwt-secret", "", "JWT secret key for the stats endpoint (env: JWT_SECRET_KEY)")
	fs.StringVar(&cfg.MigrationsPath, "migrations", "./migrations", "Path to migrations folder (env: MIGRATIONS_PATH)")
	fs.DurationVar(&cfg.FlushInterval, "flush", 10*time.Second, "Stats flush interval (env: STATS_FLUSH_INTERVAL)")
	fs.StringVar(&cfg.IssueTokenFor, "issue-token", "", "Print an operator token for this subject and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// a missing .env file is fine
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RunAddress == "" {
		return ErrEmptyRunAddress
	}
	if c.FlushInterval <= 0 {
		return ErrInvalidFlushInterval
	}
	return nil
}

func (c *Config) MaskDBPassword() string {
	u, err := url.Parse(c.DatabaseURI)
	if err != nil {
		return c.DatabaseURI
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
