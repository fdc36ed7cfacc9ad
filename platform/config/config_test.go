package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/network")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("PROSPECT_STRICT_TRANSITIONS", "")
	t.Setenv("PHONE_DEFAULT_REGION", "mx")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.GetProspectStrictTransitions() {
		t.Fatalf("expected strict transitions by default")
	}
	if cfg.GetPhoneDefaultRegion() != "MX" {
		t.Fatalf("expected region MX, got %q", cfg.GetPhoneDefaultRegion())
	}
	if cfg.GetLineageIntegrityInterval() != time.Hour {
		t.Fatalf("expected hourly integrity check, got %s", cfg.GetLineageIntegrityInterval())
	}
	if len(cfg.GetCORSOrigins()) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.GetCORSOrigins())
	}
}

func TestLoadLaxTransitions(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/network")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("PROSPECT_STRICT_TRANSITIONS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetProspectStrictTransitions() {
		t.Fatalf("expected lax transitions when disabled")
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/network")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for wildcard origins with credentials")
	}
}
