// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the
// application and by the quillctl administration tool.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Insecure development defaults that must be overridden in production.
const (
	defaultDBPassword = "changeme"
	defaultJWTSecret  = "dev-secret-change-me"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string `env:"APP_HOST" env-default:"0.0.0.0"`
	Port string `env:"APP_PORT" env-default:"8080"`
	Env  string `env:"APP_ENV" env-default:"development"` // "development", "production", "testing"

	// StoreDriver selects the persistence backend: "postgres" or "memory".
	StoreDriver string `env:"STORE_DRIVER" env-default:"postgres"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" env-default:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" env-default:"5432"`
	DBUser     string `env:"POSTGRES_USER" env-default:"quillpress"`
	DBPassword string `env:"POSTGRES_PASSWORD" env-default:"changeme"`
	DBName     string `env:"POSTGRES_DB" env-default:"quillpress"`

	// Valkey (Redis-compatible) holds revoked tokens. Empty host disables it.
	ValkeyHost     string `env:"VALKEY_HOST"`
	ValkeyPort     string `env:"VALKEY_PORT" env-default:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	// Bearer tokens
	JWTSecret string        `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	JWTIssuer string        `env:"JWT_ISSUER" env-default:"quillpress"`
	JWTTTL    time.Duration `env:"JWT_TTL" env-default:"720h"`

	// S3-compatible object storage for featured images. When unset,
	// images are written to UploadDir and served under /uploads.
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET" env-default:"quillpress-public"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	UploadDir      string `env:"UPLOAD_DIR" env-default:"./uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" env-default:"1000000"`

	CORSAllowedOrigins      []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	RateLimitPerMinute      int      `env:"RATE_LIMIT_PER_MINUTE" env-default:"300"`
	LoginRateLimitPerMinute int      `env:"LOGIN_RATE_LIMIT_PER_MINUTE" env-default:"10"`

	// Development seed account, created when the user table is empty.
	AdminEmail    string `env:"ADMIN_EMAIL" env-default:"admin@quillpress.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"admin123"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.StoreDriver))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	if c.Env == "production" {
		if c.StoreDriver == DriverPostgres && c.DBPassword == defaultDBPassword {
			errs = append(errs, errors.New("POSTGRES_PASSWORD must be set in production"))
		}
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
		}
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// S3Enabled reports whether object storage credentials are configured.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
