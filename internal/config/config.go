// Package config loads folio settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// minSecretLength is enforced on JWT_SECRET outside development.
const minSecretLength = 32

// Config holds all application configuration.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Flash store (Redis). Empty falls back to cookie flashes.
	RedisURL string `env:"REDIS_URL"`

	// Sessions
	JWTSecret  string `env:"JWT_SECRET,required,notEmpty"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"10"`
	// CookieSecure is a pointer so an unset value can default by environment.
	CookieSecure *bool `env:"COOKIE_SECURE"`

	// Object storage (S3 compatible)
	S3Bucket         string `env:"S3_BUCKET,required,notEmpty"`
	S3Region         string `env:"S3_REGION,required,notEmpty"`
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	S3PublicBaseURL  string `env:"S3_PUBLIC_BASE_URL"`
	AWSAccessKeyID   string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey     string `env:"AWS_SECRET_ACCESS_KEY"`

	// Upload limit in bytes (default 5MiB)
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// Behaviour switches
	RequireAuth          bool `env:"REQUIRE_AUTH" envDefault:"false"`
	ReleaseImageOnDelete bool `env:"RELEASE_IMAGE_ON_DELETE" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// SecureCookies reports whether session cookies carry the Secure flag.
// Unset defaults to true everywhere except development.
func (c *Config) SecureCookies() bool {
	if c.CookieSecure != nil {
		return *c.CookieSecure
	}
	return !c.IsDevelopment()
}

// Validate checks rules that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if !c.IsDevelopment() && len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if (c.AWSAccessKeyID == "") != (c.AWSSecretKey == "") {
		errs = append(errs, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
