package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string `env:"ENV" envDefault:"development"` // "development", "production", etc.

	// Server
	ServerAddr  string `env:"SERVER_ADDR" envDefault:":3000"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	CORSOrigins string `env:"CORS_ORIGINS"` // Comma-separated allowed origins

	// TLS
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// Record store
	StoreDriver           string        `env:"STORE_DRIVER" envDefault:"postgres"` // "postgres" or "memory"
	DatabaseURL           string        `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/luxeleads?sslmode=disable"`
	ListenerRetryInterval time.Duration `env:"LISTENER_RETRY_INTERVAL" envDefault:"5s"`
	SeedDevData           bool          `env:"SEED_DEV_DATA"`

	// Redis backs the capture rate limiter when set; in-memory otherwise.
	RedisURL string `env:"REDIS_URL"`

	// RabbitMQ carries lead events when set; events are dispatched in-process otherwise.
	AMQPURL string `env:"AMQP_URL"`

	// Admin API
	AdminAPIKey string `env:"ADMIN_API_KEY"`                        // Required bearer token for /api/admin when set
	ActorHeader string `env:"ACTOR_HEADER" envDefault:"X-Actor-ID"` // Set by the trusted proxy in front of the admin UI

	// Lead capture
	CaptureRateLimit int `env:"CAPTURE_RATE_LIMIT" envDefault:"10"` // submissions per minute per IP

	// Analytics
	AnalyticsTimezone string `env:"ANALYTICS_TIMEZONE" envDefault:"Local"`
	TrendDateLayout   string `env:"TREND_DATE_LAYOUT" envDefault:"1/2/2006"`
	TrendWindowDays   int    `env:"TREND_WINDOW_DAYS" envDefault:"30"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@luxejewelry.com"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Luxe Jewelry"`

	// Notifications
	SalesEmail string `env:"SALES_EMAIL" envDefault:"sales@luxejewelry.com"`
	AdminPhone string `env:"ADMIN_PHONE"`

	// Catalog
	CatalogFile string `env:"CATALOG_FILE" envDefault:"catalog.yaml"`

	// Site Branding
	SiteTitle string `env:"SITE_TITLE" envDefault:"Luxe Jewelry"`
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	if c.TrendWindowDays <= 0 {
		return fmt.Errorf("TREND_WINDOW_DAYS must be positive, got %d", c.TrendWindowDays)
	}
	if c.CaptureRateLimit <= 0 {
		return fmt.Errorf("CAPTURE_RATE_LIMIT must be positive, got %d", c.CaptureRateLimit)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("ANALYTICS_TIMEZONE: %w", err)
	}
	return nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsTLSEnabled returns true if a certificate pair is configured.
func (c *Config) IsTLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Location returns the default location for calendar-day analytics.
func (c *Config) Location() (*time.Location, error) {
	if c.AnalyticsTimezone == "" || c.AnalyticsTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.AnalyticsTimezone)
}
