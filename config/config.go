package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	Language string `env:"SITE_LANGUAGE" envDefault:"en" validate:"oneof=en ar"`

	DatabaseURL    string `env:"DATABASE_URL,required" validate:"required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"25" validate:"min=1"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret    string `env:"JWT_SECRET,required" validate:"required,min=32"`
	ResendAPIKey string `env:"RESEND_API_KEY"      validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"         validate:"required_if=Env production,required_if=Env staging"`

	CryptorSecret    string `env:"CRYPTOR_SECRET,required" validate:"required,min=32"`
	CryptorLegacyKey string `env:"CRYPTOR_LEGACY_KEY"`
	CryptorLegacyIV  string `env:"CRYPTOR_LEGACY_IV" validate:"required_with=CryptorLegacyKey"`

	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"local" validate:"oneof=local s3"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./uploads" validate:"required_if=StorageDriver local"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880" validate:"min=1"`
	S3Bucket       string `env:"S3_BUCKET"     validate:"required_if=StorageDriver s3"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY" validate:"required_if=StorageDriver s3"`
	S3SecretKey    string `env:"S3_SECRET_KEY" validate:"required_if=StorageDriver s3"`

	RecaptchaPublicKey string `env:"RECAPTCHA_PUBLIC_KEY"`
	NonceSecret        string `env:"NONCE_SECRET"`
	AssetsDir          string `env:"ASSETS_DIR" envDefault:"./assets"`

	NotificationsLimit int    `env:"NOTIFICATIONS_LIMIT" envDefault:"20" validate:"min=1"`
	PruneSchedule      string `env:"PRUNE_SCHEDULE" envDefault:"daily" validate:"required"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto slog levels. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NonceKey is the HMAC key for form nonces. It falls back to the JWT secret.
func (c *Config) NonceKey() []byte {
	if c.NonceSecret != "" {
		return []byte(c.NonceSecret)
	}
	return []byte(c.JWTSecret)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
