package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/opshub",
		Environment:        "development",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		SessionTTL:         8 * time.Hour,
		TaskRiskWindow:     48 * time.Hour,
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty DATABASE_URL")
	}
}

func TestValidateProductionRequiresJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}
	cfg.JWTSecret = "secret"
	cfg.RunSeed = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsTinyBodyLimit(t *testing.T) {
	cfg := validConfig()
	cfg.MaxBodyBytes = 512
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for MAX_BODY_BYTES below 1024")
	}
}

func TestValidateEmailRequiresHost(t *testing.T) {
	cfg := validConfig()
	cfg.EmailEnabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when EMAIL_ENABLED without SMTP_HOST")
	}
}

func TestValidateRejectsZeroRiskWindow(t *testing.T) {
	cfg := validConfig()
	cfg.TaskRiskWindow = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero TASK_RISK_WINDOW")
	}
}
