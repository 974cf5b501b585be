package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the chat service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CHAT_API_PORT" envDefault:"8288"`
	LogLevel        string        `env:"CHAT_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"CHAT_LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// MongoDB (required, no default)
	MongoURI      string        `env:"CHAT_MONGO_URI,notEmpty"`
	MongoDatabase string        `env:"CHAT_MONGO_DB" envDefault:"chat"`
	MongoTimeout  time.Duration `env:"CHAT_MONGO_TIMEOUT" envDefault:"10s"`
	MongoMaxPool  int           `env:"CHAT_MONGO_MAX_POOL" envDefault:"15"`
	MongoMinPool  int           `env:"CHAT_MONGO_MIN_POOL" envDefault:"0"`

	// CORS
	ClientURL string `env:"CLIENT_URL"`

	// Authentication
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"true"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL"`

	// Upload credential issuing (S3-compatible storage)
	S3Endpoint     string        `env:"CHAT_S3_ENDPOINT"`
	S3Region       string        `env:"CHAT_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string        `env:"CHAT_S3_BUCKET"`
	S3AccessKeyID  string        `env:"CHAT_S3_ACCESS_KEY_ID"`
	S3SecretKey    string        `env:"CHAT_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool          `env:"CHAT_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL   time.Duration `env:"CHAT_S3_PRESIGN_TTL" envDefault:"15m"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
