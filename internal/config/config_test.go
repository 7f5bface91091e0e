package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "")
	t.Setenv("PAGINATION_MAX_LIMIT", "")
	t.Setenv("AMQP_EXCHANGE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.DSN != "" {
		t.Fatalf("expected memory mode")
	}
	if cfg.Auth.Mode != AuthModeJWT || cfg.Auth.Timeout() != 5*time.Second {
		t.Fatalf("unexpected auth defaults %+v", cfg.Auth)
	}
	if cfg.Pagination.DefaultLimit != 10 || cfg.Pagination.MaxLimit != 100 {
		t.Fatalf("unexpected pagination %+v", cfg.Pagination)
	}
	if cfg.Broker.Exchange != "incidents.events" {
		t.Fatalf("unexpected exchange %q", cfg.Broker.Exchange)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("AUTH_SERVICE_URL", "")
	// godotenv never overrides variables that are already set
	os.Unsetenv("APP_PORT")
	os.Unsetenv("AUTH_MODE")
	os.Unsetenv("AUTH_SERVICE_URL")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "APP_PORT=9090\nAUTH_MODE=remote\nAUTH_SERVICE_URL=http://auth.local/verify\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Fatalf("env file not applied: %+v", cfg.App)
	}
	if cfg.Auth.Mode != AuthModeRemote || cfg.Auth.ServiceURL != "http://auth.local/verify" {
		t.Fatalf("unexpected auth %+v", cfg.Auth)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown auth mode":    {"AUTH_MODE": "ldap"},
		"remote without url":   {"AUTH_MODE": "remote", "AUTH_SERVICE_URL": ""},
		"max below default":    {"AUTH_MODE": "jwt", "PAGINATION_DEFAULT_LIMIT": "50", "PAGINATION_MAX_LIMIT": "20"},
		"non numeric redis db": {"AUTH_MODE": "jwt", "REDIS_DB": "zero"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for key, value := range env {
				t.Setenv(key, value)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
