package config_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/ninjahub/ninjahub-core/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/ninjahub")
	t.Setenv("JWT_SECRET", strings.Repeat("j", 32))
	t.Setenv("CRYPTOR_SECRET", strings.Repeat("c", 32))
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "local" {
		t.Errorf("Env = %q, want local", cfg.Env)
	}
	if cfg.NotificationsLimit != 20 {
		t.Errorf("NotificationsLimit = %d, want 20", cfg.NotificationsLimit)
	}
	if cfg.UploadMaxBytes != 5242880 {
		t.Errorf("UploadMaxBytes = %d, want 5242880", cfg.UploadMaxBytes)
	}
	if cfg.PruneSchedule != "daily" {
		t.Errorf("PruneSchedule = %q, want daily", cfg.PruneSchedule)
	}
}

func TestLoad_MissingCryptorSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ninjahub")
	t.Setenv("JWT_SECRET", strings.Repeat("j", 32))
	t.Setenv("CRYPTOR_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing CRYPTOR_SECRET")
	}
}

func TestLoad_ProductionRequiresResend(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when RESEND_API_KEY is missing in production")
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "s3")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when S3 settings are missing")
	}
}

func TestLoad_LegacyKeyNeedsIV(t *testing.T) {
	setRequired(t)
	t.Setenv("CRYPTOR_LEGACY_KEY", "old-key")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when CRYPTOR_LEGACY_IV is missing")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		c := &config.Config{LogLevel: in}
		if got := c.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNonceKey_FallsBackToJWTSecret(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if string(cfg.NonceKey()) != strings.Repeat("j", 32) {
		t.Errorf("NonceKey = %q, want the JWT secret", cfg.NonceKey())
	}

	t.Setenv("NONCE_SECRET", "separate")
	if cfg, err = config.Load(); err != nil {
		t.Fatal(err)
	}
	if string(cfg.NonceKey()) != "separate" {
		t.Errorf("NonceKey = %q, want separate", cfg.NonceKey())
	}
}
