package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "not-a-duration")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("OTEL_ENABLED", "yes")

	cfg, _ := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port: got=%q want=%q", cfg.Port, "9090")
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("jwt ttl should fall back to default, got=%v", cfg.JWTTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors origins: got=%v", cfg.CORSOrigins)
	}
	if !cfg.OtelEnabled {
		t.Fatalf("otel should be enabled")
	}
}

func TestIsProduction(t *testing.T) {
	for env, want := range map[string]bool{"production": true, "PROD": true, "development": false, "": false} {
		c := &Config{AppEnv: env}
		if got := c.IsProduction(); got != want {
			t.Errorf("IsProduction(%q) = %v, want %v", env, got, want)
		}
	}
}
