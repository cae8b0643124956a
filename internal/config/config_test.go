package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_ACCESS_TOKEN", "token")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("POSTGRES_USER", "chat")
	t.Setenv("POSTGRES_DB", "chat")
	t.Setenv("POSTGRES_PASSWORD", "pass")
	t.Setenv("POSTGRES_SSLMODE", "disable")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.App.Addr)
	}
	if cfg.Sync.ProfileConcurrency != 8 {
		t.Fatalf("expected default profile concurrency 8, got %d", cfg.Sync.ProfileConcurrency)
	}
	if cfg.Sync.RequestTimeout != 10*time.Second {
		t.Fatalf("expected default request timeout, got %s", cfg.Sync.RequestTimeout)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr())
	}

	want := "host=localhost port=5432 user=chat password=pass dbname=chat sslmode=disable"
	if cfg.Database.DSN() != want {
		t.Fatalf("unexpected dsn %q", cfg.Database.DSN())
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	os.Unsetenv("SESSION_ACCESS_TOKEN")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SESSION_ACCESS_TOKEN is unset")
	}
}
