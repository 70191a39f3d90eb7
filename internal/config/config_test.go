package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_PATH", "REDIS_ENABLED", "RATE_LIMIT_ENABLED", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.App.Port != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.App.Port)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %s", cfg.DB.Driver)
	}
	if cfg.DB.Path != "co2_devices.db" {
		t.Errorf("expected default db path co2_devices.db, got %s", cfg.DB.Path)
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis disabled by default")
	}
	if cfg.RateLimit.Enabled {
		t.Error("expected rate limiting disabled by default")
	}
	if cfg.App.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout 10s, got %v", cfg.App.ShutdownTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "42")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := Load()

	if cfg.App.Port != "8081" {
		t.Errorf("expected port 8081, got %s", cfg.App.Port)
	}
	if cfg.DB.Driver != "postgres" {
		t.Errorf("expected driver postgres, got %s", cfg.DB.Driver)
	}
	if !cfg.Redis.Enabled {
		t.Error("expected redis enabled")
	}
	if cfg.RateLimit.RequestsPerSecond != 42 {
		t.Errorf("expected 42 rps, got %d", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.App.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.App.ShutdownTimeout)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("DEBUG", "maybe")

	cfg := Load()

	if cfg.RateLimit.Burst != 20 {
		t.Errorf("expected fallback burst 20, got %d", cfg.RateLimit.Burst)
	}
	if cfg.App.Debug {
		t.Error("expected debug fallback false")
	}
}

func TestLoad_DBPortDefaultsPerDriver(t *testing.T) {
	tests := []struct {
		driver string
		port   string
	}{
		{"postgres", "5432"},
		{"mysql", "3306"},
		{"sqlite", "5432"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			t.Setenv("DB_DRIVER", tt.driver)
			t.Setenv("DB_PORT", "")

			if port := Load().DB.Port; port != tt.port {
				t.Errorf("expected port %s, got %s", tt.port, port)
			}
		})
	}

	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PORT", "3307")
	if port := Load().DB.Port; port != "3307" {
		t.Errorf("expected explicit port 3307, got %s", port)
	}
}
