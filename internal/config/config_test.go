package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "x")
	t.Setenv("DB_NAME", "voiceivr")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DASHBOARD_API_KEY", "dash-key")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
}

func TestLoad_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoad_LocalDefaults(t *testing.T) {
	setBaseEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Conversation.OfferedPlan != "$200/month for 5 months" {
		t.Fatalf("unexpected plan default: %q", c.Conversation.OfferedPlan)
	}
	if c.Conversation.AmountOwed != 1000 {
		t.Fatalf("unexpected amount default: %v", c.Conversation.AmountOwed)
	}
	if c.Conversation.ConfidenceThreshold != 50 || c.Conversation.MaxClarifyRetries != 3 {
		t.Fatalf("unexpected decision defaults: %+v", c.Conversation)
	}
	if c.Classifier.Model != "claude-3-5-haiku-latest" || c.Classifier.Timeout != 10*time.Second {
		t.Fatalf("unexpected classifier defaults: %+v", c.Classifier)
	}
	if c.HTTPAddr() != ":8080" {
		t.Fatalf("HTTPAddr = %q", c.HTTPAddr())
	}
	if c.RedisAddr() != "localhost:6379" {
		t.Fatalf("RedisAddr = %q", c.RedisAddr())
	}
	if !strings.Contains(c.PostgresDSN(), "dbname=voiceivr") {
		t.Fatalf("DSN missing dbname: %q", c.PostgresDSN())
	}
}

func TestLoad_ProductionRequiresSSLMode(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ISSUER", "voice-ivr")
	t.Setenv("JWT_AUDIENCE", "dashboard")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestLoad_RejectsBadThreshold(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONFIDENCE_THRESHOLD", "150")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range threshold")
	}
}

func TestLoad_AggregatesParseErrors(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_PORT", "not-a-port")
	t.Setenv("AMOUNT_OWED", "lots")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	for _, want := range []string{"APP_PORT", "AMOUNT_OWED"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should mention %s: %v", want, err)
		}
	}
}

func TestLoad_SplitsCORSOrigins(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.App.CORSAllowedOrigins) != 2 || c.App.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", c.App.CORSAllowedOrigins)
	}
}
